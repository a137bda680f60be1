package recoverynode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
	statex "github.com/tala-demo/recoveries-agent/agent/state"
)

func LoadSession(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
	customerID string,
	loanID string,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	st, err := store.Load(ctx, in.SessionID)
	if err != nil {
		if !errors.Is(err, statex.ErrStateNotFound) {
			return nil, fmt.Errorf("load session %s: %w", in.SessionID, err)
		}
		st = statex.NewSessionState(in.SessionID, customerID, loanID, in.Now)
	}

	st.SeedHistory(in.History, in.Now)
	in.Session = st
	return in, nil
}
