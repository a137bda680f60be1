package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
)

// Store implements contract.DataStore on Postgres via bun.
type Store struct {
	db  *bun.DB
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

func NewStore(db *bun.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) CustomerByID(ctx context.Context, id string) (*contractx.Customer, error) {
	var row customerRow
	err := s.db.NewSelect().Model(&row).Where("customer_id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: customer %q", contractx.ErrNotFound, id)
		}
		return nil, fmt.Errorf("select customer %q: %w", id, err)
	}
	return row.toContract(), nil
}

func (s *Store) LoanByID(ctx context.Context, id string) (*contractx.Loan, error) {
	var row loanRow
	err := s.db.NewSelect().Model(&row).Where("loan_id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: loan %q", contractx.ErrNotFound, id)
		}
		return nil, fmt.Errorf("select loan %q: %w", id, err)
	}
	return row.toContract(), nil
}

// InsertPTP performs the single idempotent insert. The caller may already
// have detached from request cancellation; the store detaches again so an
// abandoned HTTP request can never abort a promise mid-write.
func (s *Store) InsertPTP(ctx context.Context, p *contractx.PTP) (*contractx.PTP, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil ptp", contractx.ErrValidation)
	}
	ctx = context.WithoutCancel(ctx)

	row := ptpRowFromContract(p)
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.Status == "" {
		row.Status = string(contractx.PTPPending)
	}
	now := s.now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	res, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (session_id, amount, payment_date) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("insert ptp: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("insert ptp rows affected: %w", err)
	}
	if affected > 0 {
		return row.toContract(), nil
	}

	// Duplicate suppressed; hand back what was recorded the first time.
	var existing ptpRow
	err = s.db.NewSelect().
		Model(&existing).
		Where("session_id = ?", row.SessionID).
		Where("amount = ?", row.Amount).
		Where("payment_date = ?", row.PaymentDate).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select duplicate ptp: %w", err)
	}

	out := existing.toContract()
	out.Duplicate = true
	return out, nil
}
