package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
)

func frozen() time.Time {
	return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
}

func TestDemoSeed(t *testing.T) {
	t.Parallel()
	store := NewDemoStore(WithClock(frozen))

	customer, err := store.CustomerByID(context.Background(), "CUST001")
	if err != nil {
		t.Fatalf("CustomerByID: %v", err)
	}
	if customer.Name != "Sarah Omondi" || customer.PreviousLoans != 3 {
		t.Fatalf("unexpected seed customer: %+v", customer)
	}

	loan, err := store.LoanByID(context.Background(), "LOAN12345")
	if err != nil {
		t.Fatalf("LoanByID: %v", err)
	}
	if loan.CurrentBalance != 562.50 || loan.DaysOverdue != 45 || loan.Status != contractx.LoanOverdue {
		t.Fatalf("unexpected seed loan: %+v", loan)
	}
}

func TestNotFound(t *testing.T) {
	t.Parallel()
	store := NewDemoStore(WithClock(frozen))

	if _, err := store.CustomerByID(context.Background(), "NOPE"); !errors.Is(err, contractx.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := store.LoanByID(context.Background(), "NOPE"); !errors.Is(err, contractx.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestInsertPTPDedupe(t *testing.T) {
	t.Parallel()
	store := NewStore(WithClock(frozen))

	first, err := store.InsertPTP(context.Background(), &contractx.PTP{
		CustomerID:  "CUST001",
		SessionID:   "sess-1",
		Amount:      200,
		PaymentDate: "2025-06-15",
	})
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if first.ID == "" || first.Duplicate || first.Status != contractx.PTPPending {
		t.Fatalf("unexpected first record: %+v", first)
	}

	dup, err := store.InsertPTP(context.Background(), &contractx.PTP{
		CustomerID:  "CUST001",
		SessionID:   "sess-1",
		Amount:      200,
		PaymentDate: "2025-06-15",
	})
	if err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}
	if !dup.Duplicate || dup.ID != first.ID {
		t.Fatalf("duplicate not suppressed: %+v", dup)
	}

	// Different session, same terms: a separate promise.
	other, err := store.InsertPTP(context.Background(), &contractx.PTP{
		CustomerID:  "CUST001",
		SessionID:   "sess-2",
		Amount:      200,
		PaymentDate: "2025-06-15",
	})
	if err != nil {
		t.Fatalf("other session insert: %v", err)
	}
	if other.Duplicate || other.ID == first.ID {
		t.Fatalf("cross-session insert wrongly deduplicated: %+v", other)
	}

	if n := len(store.PTPs()); n != 2 {
		t.Fatalf("want 2 records, got %d", n)
	}
}
