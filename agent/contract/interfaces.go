package contract

import "context"

// DataStore is the persistence boundary: point reads by primary key and a
// single PTP insert. The insert must enforce the
// (session_id, amount, payment_date) uniqueness guard.
type DataStore interface {
	CustomerByID(ctx context.Context, id string) (*Customer, error)
	LoanByID(ctx context.Context, id string) (*Loan, error)
	InsertPTP(ctx context.Context, p *PTP) (*PTP, error)
}

// CompletionProvider is the opaque text-completion service.
type CompletionProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// ToolGateway dispatches one named tool call and returns the handler's
// domain object untouched.
type ToolGateway interface {
	Dispatch(ctx context.Context, tool string, args map[string]any) (any, error)
}

type Negotiator interface {
	Run(ctx context.Context, req NegotiationRequest) (NegotiationResponse, error)
}

// Extractor decides whether the transcript contains a committed payment
// agreement. A nil draft means no agreement yet.
type Extractor interface {
	Extract(ctx context.Context, req ExtractionRequest) (*PTPDraft, error)
}

type Registry interface {
	Negotiator() Negotiator
	Extractor() Extractor
}
