package recoverynode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
)

// maxToolRequests caps one turn's tool fan-out; the model has no business
// requesting more than the whole catalog.
const maxToolRequests = 4

// RunTools dispatches the draft's tool requests, then runs at most one more
// generation round to fold the results into a customer-facing reply. No
// further tool requests are honored after that round.
func RunTools(
	ctx context.Context,
	in *GraphState,
	tools contractx.ToolGateway,
	models contractx.Registry,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.TurnError != "" {
		return in, nil
	}
	if len(in.Draft.ToolRequests) == 0 {
		in.Reply = in.Draft.Message
		if in.Reply == "" {
			in.Reply = FallbackReply
			in.TurnError = "model returned an empty reply"
		}
		return in, nil
	}

	requests := in.Draft.ToolRequests
	if len(requests) > maxToolRequests {
		requests = requests[:maxToolRequests]
	}

	results := make([]contractx.ToolResult, 0, len(requests))
	for _, req := range requests {
		result := contractx.ToolResult{Tool: req.Tool}
		out, err := tools.Dispatch(ctx, req.Tool, req.Args)
		if err != nil {
			log.Warn().Err(err).
				Str("session_id", in.SessionID).
				Str("tool", req.Tool).
				Msg("tool dispatch failed during turn")
			result.Error = err.Error()
		} else {
			result.Result = out
		}
		results = append(results, result)
	}
	in.ToolResults = results

	final, err := models.Negotiator().Run(ctx, contractx.NegotiationRequest{
		UserMessage:     in.Text,
		CustomerContext: in.Session.CustomerContext,
		History:         in.Session.Turns[:len(in.Session.Turns)-1],
		ToolResults:     results,
	})
	if err != nil {
		log.Error().Err(err).
			Str("session_id", in.SessionID).
			Msg("tool result round failed")
		in.Reply = FallbackReply
		in.TurnError = err.Error()
		return in, nil
	}

	in.Reply = final.Message
	if in.Reply == "" {
		in.Reply = FallbackReply
		in.TurnError = "model returned an empty reply after tools"
	}
	return in, nil
}
