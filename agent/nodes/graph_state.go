package recoverynode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
	statex "github.com/tala-demo/recoveries-agent/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

// FallbackReply is what the customer sees when the model is unreachable.
// The turn still lands in the transcript with an error marker.
const FallbackReply = "I'm sorry, I'm having trouble responding right now. Could you give me a moment and try again?"

type GraphInput struct {
	SessionID string
	Text      string

	// Optional transcript supplied by a stateless client. Only honored
	// when the session has no stored turns of its own.
	History []contractx.Turn
}

type GraphOutput struct {
	Reply        string
	SessionID    string
	CustomerID   string
	PTPRecorded  bool
	PTPViolation string
	ErrorMarker  string
}

type GraphState struct {
	SessionID string
	Text      string
	History   []contractx.Turn
	Now       time.Time

	Session  *statex.SessionState
	Customer *contractx.Customer
	Loan     *contractx.Loan

	Draft       contractx.NegotiationResponse
	ToolResults []contractx.ToolResult

	Reply        string
	TurnError    string
	PTPViolation string
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		History:   in.History,
		Now:       nowFn().UTC(),
	}, nil
}
