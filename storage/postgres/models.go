package postgres

import (
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
)

type customerRow struct {
	bun.BaseModel `bun:"table:customers"`

	ID             string `bun:"customer_id,pk"`
	Name           string `bun:"name"`
	Phone          string `bun:"phone"`
	Email          string `bun:"email"`
	PreviousLoans  int    `bun:"previous_loans"`
	PaymentHistory string `bun:"payment_history"`
}

func (r *customerRow) toContract() *contractx.Customer {
	return &contractx.Customer{
		ID:             r.ID,
		Name:           r.Name,
		Phone:          r.Phone,
		Email:          r.Email,
		PreviousLoans:  r.PreviousLoans,
		PaymentHistory: r.PaymentHistory,
	}
}

type loanRow struct {
	bun.BaseModel `bun:"table:loans"`

	ID               string  `bun:"loan_id,pk"`
	CustomerID       string  `bun:"customer_id"`
	OriginalAmount   float64 `bun:"original_amount"`
	CurrentBalance   float64 `bun:"current_balance"`
	Fees             float64 `bun:"fees"`
	Interest         float64 `bun:"interest"`
	DaysOverdue      int     `bun:"days_overdue"`
	DisbursementDate string  `bun:"disbursement_date"`
	DueDate          string  `bun:"due_date"`
	Status           string  `bun:"status"`
}

func (r *loanRow) toContract() *contractx.Loan {
	return &contractx.Loan{
		ID:               r.ID,
		CustomerID:       r.CustomerID,
		OriginalAmount:   r.OriginalAmount,
		CurrentBalance:   r.CurrentBalance,
		Fees:             r.Fees,
		Interest:         r.Interest,
		DaysOverdue:      r.DaysOverdue,
		DisbursementDate: r.DisbursementDate,
		DueDate:          r.DueDate,
		Status:           contractx.LoanStatus(r.Status),
	}
}

// ptpRow expects a unique index on (session_id, amount, payment_date); the
// insert path relies on it for duplicate suppression.
type ptpRow struct {
	bun.BaseModel `bun:"table:ptps"`

	ID          string    `bun:"id,pk"`
	CustomerID  string    `bun:"customer_id"`
	LoanID      string    `bun:"loan_id"`
	SessionID   string    `bun:"session_id"`
	Amount      float64   `bun:"amount"`
	PaymentDate string    `bun:"payment_date"`
	Notes       string    `bun:"notes"`
	Status      string    `bun:"status"`
	CreatedAt   time.Time `bun:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at"`
}

func (r *ptpRow) toContract() *contractx.PTP {
	return &contractx.PTP{
		ID:          r.ID,
		CustomerID:  r.CustomerID,
		LoanID:      r.LoanID,
		SessionID:   r.SessionID,
		Amount:      r.Amount,
		PaymentDate: r.PaymentDate,
		Notes:       r.Notes,
		Status:      contractx.PTPStatus(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func ptpRowFromContract(p *contractx.PTP) *ptpRow {
	return &ptpRow{
		ID:          p.ID,
		CustomerID:  p.CustomerID,
		LoanID:      p.LoanID,
		SessionID:   p.SessionID,
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate,
		Notes:       p.Notes,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
