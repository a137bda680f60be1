package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
)

var (
	ErrTurnOrder = errors.New("turn numbers must be strictly increasing")
)

// SessionState is everything the orchestrator keeps between turns of one
// chat session: the ordered transcript, the cached customer context block,
// and the PTP idempotence marker. Different sessions never share state.
type SessionState struct {
	SessionID  string `json:"session_id"`
	CustomerID string `json:"customer_id"`
	LoanID     string `json:"loan_id"`

	Turns []contractx.Turn `json:"turns,omitempty"`

	// Customer context, rendered once from the first successful
	// get_customer_info/get_loan_details round and reused in every
	// generation afterwards.
	CustomerContext string  `json:"customer_context,omitempty"`
	TotalOwed       float64 `json:"total_owed,omitempty"`
	ContextReady    bool    `json:"context_ready,omitempty"`

	// Recorded agreement, used to suppress duplicate record_ptp calls
	// unless the amount or date materially changes.
	PTPRecorded    bool    `json:"ptp_recorded,omitempty"`
	PTPAmount      float64 `json:"ptp_amount,omitempty"`
	PTPPaymentDate string  `json:"ptp_payment_date,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewSessionState(sessionID, customerID, loanID string, now time.Time) *SessionState {
	return &SessionState{
		SessionID:  sessionID,
		CustomerID: customerID,
		LoanID:     loanID,
		UpdatedAt:  now.UTC(),
	}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// AppendTurn appends one transcript entry with the next turn number and
// returns it. errMarker is non-empty when the assistant failed this turn.
func (s *SessionState) AppendTurn(role contractx.Role, content, errMarker string, now time.Time) contractx.Turn {
	turn := contractx.Turn{
		Number:  len(s.Turns) + 1,
		Role:    role,
		Content: content,
		Error:   errMarker,
		At:      now.UTC(),
	}
	s.Turns = append(s.Turns, turn)
	return turn
}

// SeedHistory installs a transcript provided by the caller. It is only
// honored on a fresh session; an existing transcript wins.
func (s *SessionState) SeedHistory(history []contractx.Turn, now time.Time) {
	if len(s.Turns) > 0 || len(history) == 0 {
		return
	}
	for _, h := range history {
		if strings.TrimSpace(h.Content) == "" {
			continue
		}
		role := h.Role
		if role != contractx.RoleUser && role != contractx.RoleAssistant {
			continue
		}
		at := h.At
		if at.IsZero() {
			at = now
		}
		s.AppendTurn(role, h.Content, "", at)
	}
}

// MatchesRecordedPTP reports whether an extracted draft repeats the already
// recorded agreement. Amounts within a cent and an identical date are the
// same promise; anything else is a new negotiation.
func (s *SessionState) MatchesRecordedPTP(amount float64, paymentDate string) bool {
	if !s.PTPRecorded {
		return false
	}
	diff := s.PTPAmount - amount
	if diff < 0 {
		diff = -diff
	}
	return diff < 0.01 && s.PTPPaymentDate == paymentDate
}

func (s *SessionState) MarkPTPRecorded(amount float64, paymentDate string) {
	s.PTPRecorded = true
	s.PTPAmount = amount
	s.PTPPaymentDate = paymentDate
}

func (s *SessionState) Validate() error {
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSession
	}
	for i, turn := range s.Turns {
		if turn.Number != i+1 {
			return fmt.Errorf("%w: turn %d has number %d", ErrTurnOrder, i+1, turn.Number)
		}
		if turn.Role != contractx.RoleUser && turn.Role != contractx.RoleAssistant {
			return fmt.Errorf("invalid role %q at turn %d", turn.Role, turn.Number)
		}
	}
	return nil
}

func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	out := *s
	out.Turns = append([]contractx.Turn(nil), s.Turns...)
	return &out
}
