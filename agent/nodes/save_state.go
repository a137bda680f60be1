package recoverynode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
	statex "github.com/tala-demo/recoveries-agent/agent/state"
)

// SaveSession appends the assistant turn (error marker included when the
// provider failed) and persists the session. Turn numbering stays strictly
// increasing whether or not the turn succeeded.
func SaveSession(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	in.Session.AppendTurn(contractx.RoleAssistant, in.Reply, in.TurnError, in.Now)
	in.Session.Touch(in.Now)

	if err := store.Save(ctx, in.Session); err != nil {
		return nil, fmt.Errorf("save session %s: %w", in.SessionID, err)
	}
	return in, nil
}

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: empty reply survived the turn", contractx.ErrValidation)
	}

	return GraphOutput{
		Reply:        reply,
		SessionID:    in.SessionID,
		CustomerID:   in.Session.CustomerID,
		PTPRecorded:  in.Session.PTPRecorded,
		PTPViolation: in.PTPViolation,
		ErrorMarker:  in.TurnError,
	}, nil
}
