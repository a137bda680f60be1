package negotiator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
	toolx "github.com/tala-demo/recoveries-agent/agent/tool"
)

type negotiatorImpl struct {
	toolRunner  compose.Runnable[contractx.NegotiationRequest, *schema.Message]
	finalRunner compose.Runnable[contractx.NegotiationRequest, *schema.Message]

	systemPrompt string
	allowedTools map[string]struct{}
}

func newNegotiator(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	tools []*schema.ToolInfo,
) (*negotiatorImpl, error) {
	n := &negotiatorImpl{
		systemPrompt: systemPrompt,
		allowedTools: make(map[string]struct{}, len(tools)),
	}
	for _, t := range tools {
		if t == nil || strings.TrimSpace(t.Name) == "" {
			continue
		}
		n.allowedTools[t.Name] = struct{}{}
	}

	toolModel, err := chatModel.WithTools(tools)
	if err != nil {
		return nil, fmt.Errorf("%w: bind negotiation tools: %v", contractx.ErrProvider, err)
	}
	toolRunner, err := compileChatGraph(ctx, toolModel, n.assemble, "negotiator.tool_round")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrProvider, err)
	}
	finalRunner, err := compileChatGraph(ctx, chatModel, n.assemble, "negotiator.finalize_round")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrProvider, err)
	}

	n.toolRunner = toolRunner
	n.finalRunner = finalRunner
	return n, nil
}

// Run produces the assistant's next turn. The first pass may request tools;
// a pass that carries tool results must finish with text, so it runs against
// the unbound model.
func (n *negotiatorImpl) Run(ctx context.Context, req contractx.NegotiationRequest) (contractx.NegotiationResponse, error) {
	runner := n.toolRunner
	if len(req.ToolResults) > 0 {
		runner = n.finalRunner
	}

	msg, err := runner.Invoke(ctx, req)
	if err != nil {
		return contractx.NegotiationResponse{}, fmt.Errorf("%w: negotiation invoke: %v", contractx.ErrProvider, err)
	}
	if msg == nil {
		return contractx.NegotiationResponse{}, fmt.Errorf("%w: empty negotiation response", contractx.ErrProvider)
	}

	toolRequests, err := n.toToolRequests(msg.ToolCalls)
	if err != nil {
		return contractx.NegotiationResponse{}, err
	}

	return contractx.NegotiationResponse{
		Message:      strings.TrimSpace(msg.Content),
		ToolRequests: toolRequests,
	}, nil
}

func (n *negotiatorImpl) assemble(_ context.Context, req contractx.NegotiationRequest) ([]*schema.Message, error) {
	if strings.TrimSpace(req.UserMessage) == "" {
		return nil, fmt.Errorf("%w: user message is required", contractx.ErrValidation)
	}

	messages := []*schema.Message{schema.SystemMessage(n.systemPrompt)}
	if strings.TrimSpace(req.CustomerContext) != "" {
		messages = append(messages, schema.SystemMessage(req.CustomerContext))
	}
	messages = append(messages, historyMessages(req.History)...)
	messages = append(messages, schema.UserMessage(req.UserMessage))

	if len(req.ToolResults) > 0 {
		encoded, err := json.Marshal(toolx.WrapResults(req.ToolResults))
		if err != nil {
			return nil, fmt.Errorf("%w: marshal tool results: %v", contractx.ErrValidation, err)
		}
		messages = append(messages, schema.SystemMessage(
			"TOOL RESULTS for the tools you requested. Use them to answer the customer:\n"+string(encoded),
		))
	}
	return messages, nil
}

func (n *negotiatorImpl) toToolRequests(calls []schema.ToolCall) ([]contractx.ToolRequest, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	reqs := make([]contractx.ToolRequest, 0, len(calls))
	for _, call := range calls {
		tool := strings.TrimSpace(call.Function.Name)
		if tool == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}
		if _, ok := n.allowedTools[tool]; !ok {
			return nil, fmt.Errorf("%w: tool=%s is not offered to the negotiator", contractx.ErrSchemaViolation, tool)
		}

		args := map[string]any{}
		rawArgs := strings.TrimSpace(call.Function.Arguments)
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, tool, err)
			}
		}
		reqs = append(reqs, contractx.ToolRequest{Tool: tool, Args: args})
	}
	return reqs, nil
}
