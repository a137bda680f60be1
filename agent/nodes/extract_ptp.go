package recoverynode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
	ptpx "github.com/tala-demo/recoveries-agent/agent/ptp"
	toolx "github.com/tala-demo/recoveries-agent/agent/tool"
)

// ExtractPTP looks for an explicit payment commitment in the finished turn
// and records it through the tool gateway. Extraction never fails the turn:
// every reject path logs and moves on, and a promise matching the one
// already recorded this session is dropped before it reaches the store.
func ExtractPTP(
	ctx context.Context,
	in *GraphState,
	models contractx.Registry,
	tools contractx.ToolGateway,
	rules ptpx.Rules,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.TurnError != "" {
		return in, nil
	}
	if !ptpx.LooksLikeCommitment(in.Text) {
		return in, nil
	}
	if in.Loan == nil {
		log.Debug().Str("session_id", in.SessionID).Msg("no loan context, skipping extraction")
		return in, nil
	}

	// The assistant reply is not in the transcript yet; extraction sees it
	// as a pending turn so agreements sealed this turn are visible.
	transcript := append(append([]contractx.Turn(nil), in.Session.Turns...), contractx.Turn{
		Number:  len(in.Session.Turns) + 1,
		Role:    contractx.RoleAssistant,
		Content: in.Reply,
		At:      in.Now,
	})

	draft, err := models.Extractor().Extract(ctx, contractx.ExtractionRequest{
		CustomerContext: in.Session.CustomerContext,
		Transcript:      transcript,
		Today:           in.Now.Format("2006-01-02"),
	})
	if err != nil {
		log.Warn().Err(err).Str("session_id", in.SessionID).Msg("ptp extraction failed")
		return in, nil
	}
	if draft == nil {
		return in, nil
	}

	draft = ptpx.Normalize(draft)
	if in.Session.MatchesRecordedPTP(draft.Amount, draft.PaymentDate) {
		log.Debug().
			Str("session_id", in.SessionID).
			Float64("amount", draft.Amount).
			Msg("promise already recorded this session")
		return in, nil
	}

	if err := rules.Validate(draft, in.Loan, in.Now); err != nil {
		log.Info().Err(err).
			Str("session_id", in.SessionID).
			Float64("amount", draft.Amount).
			Str("payment_date", draft.PaymentDate).
			Msg("extracted promise rejected")
		in.PTPViolation = err.Error()
		return in, nil
	}

	if _, err := tools.Dispatch(ctx, toolx.ToolRecordPTP, map[string]any{
		"customer_id":  in.Session.CustomerID,
		"session_id":   in.SessionID,
		"amount":       draft.Amount,
		"payment_date": draft.PaymentDate,
		"notes":        draft.Notes,
	}); err != nil {
		log.Warn().Err(err).Str("session_id", in.SessionID).Msg("record_ptp dispatch failed")
		in.PTPViolation = err.Error()
		return in, nil
	}

	in.Session.MarkPTPRecorded(draft.Amount, draft.PaymentDate)
	log.Info().
		Str("session_id", in.SessionID).
		Float64("amount", draft.Amount).
		Str("payment_date", draft.PaymentDate).
		Msg("promise to pay recorded")
	return in, nil
}
