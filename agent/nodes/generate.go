package recoverynode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
)

func AppendUserTurn(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	in.Session.AppendTurn(contractx.RoleUser, in.Text, "", in.Now)
	return in, nil
}

// GenerateDraft runs the first negotiation round. The model may answer
// directly or request tools; either way the turn survives a provider
// failure with the fallback reply and an error marker.
func GenerateDraft(
	ctx context.Context,
	in *GraphState,
	models contractx.Registry,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	turns := in.Session.Turns
	history := turns
	if n := len(turns); n > 0 && turns[n-1].Role == contractx.RoleUser {
		history = turns[:n-1]
	}

	draft, err := models.Negotiator().Run(ctx, contractx.NegotiationRequest{
		UserMessage:     in.Text,
		CustomerContext: in.Session.CustomerContext,
		History:         history,
	})
	if err != nil {
		log.Error().Err(err).
			Str("session_id", in.SessionID).
			Msg("negotiation round failed")
		in.Reply = FallbackReply
		in.TurnError = err.Error()
		return in, nil
	}

	in.Draft = draft
	return in, nil
}
