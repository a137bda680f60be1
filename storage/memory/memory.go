// Package memory provides an in-memory DataStore used by tests and by the
// explicit demo-data mode. It is never a silent fallback for a failing
// production store.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
)

type Store struct {
	mu        sync.RWMutex
	customers map[string]contractx.Customer
	loans     map[string]contractx.Loan
	ptps      []contractx.PTP

	now func() time.Time
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		customers: make(map[string]contractx.Customer),
		loans:     make(map[string]contractx.Loan),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDemoStore returns a store seeded with the demo account used by the
// mobile mockup UI.
func NewDemoStore(opts ...Option) *Store {
	s := NewStore(opts...)
	s.PutCustomer(contractx.Customer{
		ID:             "CUST001",
		Name:           "Sarah Omondi",
		Phone:          "+254700123456",
		Email:          "sarah.omondi@example.com",
		PreviousLoans:  3,
		PaymentHistory: "2 on-time, 1 late",
	})
	s.PutLoan(contractx.Loan{
		ID:             "LOAN12345",
		CustomerID:     "CUST001",
		OriginalAmount: 500.00,
		CurrentBalance: 562.50,
		Fees:           22.50,
		Interest:       40.00,
		DaysOverdue:    45,
		Status:         contractx.LoanOverdue,
	})
	return s
}

func (s *Store) PutCustomer(c contractx.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = c
}

func (s *Store) PutLoan(l contractx.Loan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loans[l.ID] = l
}

func (s *Store) CustomerByID(_ context.Context, id string) (*contractx.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return nil, fmt.Errorf("%w: customer %q", contractx.ErrNotFound, id)
	}
	out := c
	return &out, nil
}

func (s *Store) LoanByID(_ context.Context, id string) (*contractx.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.loans[id]
	if !ok {
		return nil, fmt.Errorf("%w: loan %q", contractx.ErrNotFound, id)
	}
	out := l
	return &out, nil
}

// InsertPTP records a promise once per (session_id, amount, payment_date).
// A duplicate insert returns the previously recorded row flagged Duplicate.
func (s *Store) InsertPTP(_ context.Context, p *contractx.PTP) (*contractx.PTP, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil ptp", contractx.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.ptps {
		existing := &s.ptps[i]
		if existing.SessionID == p.SessionID &&
			existing.Amount == p.Amount &&
			existing.PaymentDate == p.PaymentDate {
			out := *existing
			out.Duplicate = true
			return &out, nil
		}
	}

	row := *p
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.Status == "" {
		row.Status = contractx.PTPPending
	}
	now := s.now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	s.ptps = append(s.ptps, row)

	out := row
	return &out, nil
}

// PTPs returns a snapshot of everything recorded, for tests.
func (s *Store) PTPs() []contractx.PTP {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]contractx.PTP(nil), s.ptps...)
}
