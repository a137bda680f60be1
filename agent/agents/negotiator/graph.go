package negotiator

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
)

// compileChatGraph wires an assemble lambda into a chat model node. The
// lambda builds the full message list, so multi-turn history never passes
// through a string template.
func compileChatGraph[In any](
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	assemble func(context.Context, In) ([]*schema.Message, error),
	graphName string,
) (compose.Runnable[In, *schema.Message], error) {
	graph := compose.NewGraph[In, *schema.Message]()

	if err := graph.AddLambdaNode("assemble", compose.InvokableLambda(assemble)); err != nil {
		return nil, fmt.Errorf("add assemble node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "assemble"); err != nil {
		return nil, fmt.Errorf("add edge start->assemble: %w", err)
	}
	if err := graph.AddEdge("assemble", "model"); err != nil {
		return nil, fmt.Errorf("add edge assemble->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(graphName))
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", graphName, err)
	}
	return runner, nil
}

// compileStructuredGraph adds a JSON parser behind the model so the graph
// returns a typed value instead of raw message content.
func compileStructuredGraph[In any, Out any](
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	assemble func(context.Context, In) ([]*schema.Message, error),
	graphName string,
) (compose.Runnable[In, Out], error) {
	parser := schema.NewMessageJSONParser[Out](&schema.MessageJSONParseConfig{
		ParseFrom: schema.MessageParseFromContent,
	})

	graph := compose.NewGraph[In, Out]()
	if err := graph.AddLambdaNode("assemble", compose.InvokableLambda(assemble)); err != nil {
		return nil, fmt.Errorf("add assemble node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add model node: %w", err)
	}
	if err := graph.AddLambdaNode("parse_json", compose.MessageParser(parser)); err != nil {
		return nil, fmt.Errorf("add parser node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "assemble"); err != nil {
		return nil, fmt.Errorf("add edge start->assemble: %w", err)
	}
	if err := graph.AddEdge("assemble", "model"); err != nil {
		return nil, fmt.Errorf("add edge assemble->model: %w", err)
	}
	if err := graph.AddEdge("model", "parse_json"); err != nil {
		return nil, fmt.Errorf("add edge model->parse: %w", err)
	}
	if err := graph.AddEdge("parse_json", compose.END); err != nil {
		return nil, fmt.Errorf("add edge parse->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(graphName))
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", graphName, err)
	}
	return runner, nil
}

func historyMessages(turns []contractx.Turn) []*schema.Message {
	out := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		if turn.Content == "" {
			continue
		}
		switch turn.Role {
		case contractx.RoleUser:
			out = append(out, schema.UserMessage(turn.Content))
		case contractx.RoleAssistant:
			out = append(out, schema.AssistantMessage(turn.Content, nil))
		}
	}
	return out
}
