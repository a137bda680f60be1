package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
	recoverynode "github.com/tala-demo/recoveries-agent/agent/nodes"
	ptpx "github.com/tala-demo/recoveries-agent/agent/ptp"
	statex "github.com/tala-demo/recoveries-agent/agent/state"
)

var (
	ErrInvalidMessage = recoverynode.ErrInvalidMessage
	ErrInvalidSession = recoverynode.ErrInvalidSession
)

type Config struct {
	CustomerID string
	LoanID     string
	Rules      ptpx.Rules
}

// Orchestrator drives one conversation turn end to end: session load,
// generation, tool dispatch, PTP extraction, persistence.
type Orchestrator struct {
	store  statex.Store
	models contractx.Registry
	tools  contractx.ToolGateway

	graphRunner compose.Runnable[recoverynode.GraphInput, recoverynode.GraphOutput]

	customerID string
	loanID     string
	rules      ptpx.Rules

	now func() time.Time
}

func New(
	store statex.Store,
	models contractx.Registry,
	tools contractx.ToolGateway,
	cfg Config,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if models == nil {
		return nil, errors.New("model registry is required")
	}
	if tools == nil {
		return nil, errors.New("tool gateway is required")
	}

	customerID := strings.TrimSpace(cfg.CustomerID)
	if customerID == "" {
		customerID = "CUST001"
	}
	loanID := strings.TrimSpace(cfg.LoanID)
	if loanID == "" {
		loanID = "LOAN12345"
	}

	rules := cfg.Rules
	if rules.MinPercent == 0 && rules.MaxDays == 0 && rules.MaxBalanceMultiple == 0 {
		rules = ptpx.Rules{MinPercent: 0.25, MaxDays: 90, MaxBalanceMultiple: 2}
	}

	o := &Orchestrator{
		store:      store,
		models:     models,
		tools:      tools,
		customerID: customerID,
		loanID:     loanID,
		rules:      rules,
		now:        time.Now,
	}

	graphRunner, err := o.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// TurnResult is what the HTTP layer renders back to the chat client.
type TurnResult struct {
	Reply        string
	SessionID    string
	CustomerID   string
	PTPRecorded  bool
	PTPViolation string
	ErrorMarker  string
}

func (o *Orchestrator) HandleMessage(
	ctx context.Context,
	sessionID string,
	text string,
	history []contractx.Turn,
) (TurnResult, error) {
	out, err := o.graphRunner.Invoke(ctx, recoverynode.GraphInput{
		SessionID: sessionID,
		Text:      text,
		History:   history,
	})
	if err != nil {
		return TurnResult{}, err
	}
	return TurnResult{
		Reply:        out.Reply,
		SessionID:    out.SessionID,
		CustomerID:   out.CustomerID,
		PTPRecorded:  out.PTPRecorded,
		PTPViolation: out.PTPViolation,
		ErrorMarker:  out.ErrorMarker,
	}, nil
}
