package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	recoverynode "github.com/tala-demo/recoveries-agent/agent/nodes"
)

func (o *Orchestrator) compileHandleMessageGraph(
	ctx context.Context,
) (compose.Runnable[recoverynode.GraphInput, recoverynode.GraphOutput], error) {
	graph := compose.NewGraph[recoverynode.GraphInput, recoverynode.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in recoverynode.GraphInput) (*recoverynode.GraphState, error) {
			return recoverynode.ValidateRequest(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_session",
		compose.InvokableLambda(func(ctx context.Context, in *recoverynode.GraphState) (*recoverynode.GraphState, error) {
			return recoverynode.LoadSession(ctx, in, o.store, o.customerID, o.loanID)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_session: %w", err)
	}

	if err := graph.AddLambdaNode("load_customer_context",
		compose.InvokableLambda(func(ctx context.Context, in *recoverynode.GraphState) (*recoverynode.GraphState, error) {
			return recoverynode.LoadCustomerContext(ctx, in, o.tools)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_customer_context: %w", err)
	}

	if err := graph.AddLambdaNode("append_user_turn",
		compose.InvokableLambda(func(ctx context.Context, in *recoverynode.GraphState) (*recoverynode.GraphState, error) {
			return recoverynode.AppendUserTurn(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node append_user_turn: %w", err)
	}

	if err := graph.AddLambdaNode("generate_draft",
		compose.InvokableLambda(func(ctx context.Context, in *recoverynode.GraphState) (*recoverynode.GraphState, error) {
			return recoverynode.GenerateDraft(ctx, in, o.models)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node generate_draft: %w", err)
	}

	if err := graph.AddLambdaNode("run_tools",
		compose.InvokableLambda(func(ctx context.Context, in *recoverynode.GraphState) (*recoverynode.GraphState, error) {
			return recoverynode.RunTools(ctx, in, o.tools, o.models)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node run_tools: %w", err)
	}

	if err := graph.AddLambdaNode("extract_ptp",
		compose.InvokableLambda(func(ctx context.Context, in *recoverynode.GraphState) (*recoverynode.GraphState, error) {
			return recoverynode.ExtractPTP(ctx, in, o.models, o.tools, o.rules)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node extract_ptp: %w", err)
	}

	if err := graph.AddLambdaNode("save_session",
		compose.InvokableLambda(func(ctx context.Context, in *recoverynode.GraphState) (*recoverynode.GraphState, error) {
			return recoverynode.SaveSession(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node save_session: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *recoverynode.GraphState) (recoverynode.GraphOutput, error) {
			return recoverynode.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_session"},
		{"load_session", "load_customer_context"},
		{"load_customer_context", "append_user_turn"},
		{"append_user_turn", "generate_draft"},
		{"generate_draft", "run_tools"},
		{"run_tools", "extract_ptp"},
		{"extract_ptp", "save_session"},
		{"save_session", "finalize_reply"},
		{"finalize_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.handle_message"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
