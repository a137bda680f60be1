package contract

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a session's ordered transcript. Number is strictly
// increasing per session. Error carries a marker when the assistant failed to
// produce a real reply for this turn.
type Turn struct {
	Number  int       `json:"number"`
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}

type Customer struct {
	ID             string `json:"customer_id"`
	Name           string `json:"name"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
	PreviousLoans  int    `json:"previous_loans"`
	PaymentHistory string `json:"payment_history"`
}

type LoanStatus string

const (
	LoanActive    LoanStatus = "active"
	LoanOverdue   LoanStatus = "overdue"
	LoanPaid      LoanStatus = "paid"
	LoanDefaulted LoanStatus = "defaulted"
)

type Loan struct {
	ID               string     `json:"loan_id"`
	CustomerID       string     `json:"customer_id"`
	OriginalAmount   float64    `json:"original_amount"`
	CurrentBalance   float64    `json:"current_balance"`
	Fees             float64    `json:"fees"`
	Interest         float64    `json:"interest"`
	DaysOverdue      int        `json:"days_overdue"`
	DisbursementDate string     `json:"disbursement_date,omitempty"`
	DueDate          string     `json:"due_date,omitempty"`
	Status           LoanStatus `json:"status"`
}

type PTPStatus string

const (
	PTPPending PTPStatus = "pending"
	PTPKept    PTPStatus = "kept"
	PTPBroken  PTPStatus = "broken"
)

// PTP is a recorded Promise to Pay. PaymentDate is a calendar date in
// YYYY-MM-DD form. Duplicate is set when an insert was suppressed by the
// store's (session_id, amount, payment_date) uniqueness guard and the
// previously recorded row is returned instead.
type PTP struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customer_id"`
	LoanID      string    `json:"loan_id,omitempty"`
	SessionID   string    `json:"session_id"`
	Amount      float64   `json:"amount"`
	PaymentDate string    `json:"payment_date"`
	Notes       string    `json:"notes,omitempty"`
	Status      PTPStatus `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Duplicate   bool      `json:"duplicate,omitempty"`
}

// PTPDraft is the extraction policy's positive verdict: the customer has
// committed to a concrete amount and date, but nothing is persisted yet.
type PTPDraft struct {
	Amount      float64 `json:"amount"`
	PaymentDate string  `json:"payment_date"`
	Notes       string  `json:"notes,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

type CompletionMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type CompletionRequest struct {
	Messages []CompletionMessage `json:"messages"`
	System   string              `json:"system,omitempty"`
	Model    string              `json:"model,omitempty"`
}

type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

type CompletionResponse struct {
	Content string      `json:"content"`
	Model   string      `json:"model"`
	Usage   *TokenUsage `json:"usage,omitempty"`
}

type NegotiationRequest struct {
	UserMessage     string       `json:"user_message"`
	CustomerContext string       `json:"customer_context"`
	History         []Turn       `json:"history,omitempty"`
	ToolResults     []ToolResult `json:"tool_results,omitempty"`
}

type NegotiationResponse struct {
	Message      string        `json:"message"`
	ToolRequests []ToolRequest `json:"tool_requests,omitempty"`
}

type ExtractionRequest struct {
	CustomerContext string `json:"customer_context"`
	Transcript      []Turn `json:"transcript"`
	Today           string `json:"today"`
}
