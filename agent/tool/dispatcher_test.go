package tool

import (
	"context"
	"errors"
	"testing"
	"time"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
	"github.com/tala-demo/recoveries-agent/storage/memory"
)

type fakeProvider struct {
	lastReq contractx.CompletionRequest
	resp    contractx.CompletionResponse
	err     error
}

func (f *fakeProvider) Complete(_ context.Context, req contractx.CompletionRequest) (contractx.CompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return contractx.CompletionResponse{}, f.err
	}
	return f.resp, nil
}

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
}

func newTestDispatcher(t *testing.T, provider contractx.CompletionProvider) (*Dispatcher, *memory.Store) {
	t.Helper()
	store := memory.NewDemoStore(memory.WithClock(fixedClock))
	d, err := New(store, provider, WithClock(fixedClock))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d, store
}

func TestDispatchUnknownTool(t *testing.T) {
	t.Parallel()
	d, _ := newTestDispatcher(t, &fakeProvider{})

	_, err := d.Dispatch(context.Background(), "frobnicate", map[string]any{})
	if !errors.Is(err, contractx.ErrUnknownTool) {
		t.Fatalf("want ErrUnknownTool, got %v", err)
	}
}

func TestDispatchSchemaViolationSkipsHandler(t *testing.T) {
	t.Parallel()
	d, store := newTestDispatcher(t, &fakeProvider{})

	_, err := d.Dispatch(context.Background(), ToolRecordPTP, map[string]any{
		"customer_id":  "CUST001",
		"session_id":   "sess-1",
		"amount":       -50.0,
		"payment_date": "2025-06-15",
	})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("want ErrSchemaViolation, got %v", err)
	}
	if n := len(store.PTPs()); n != 0 {
		t.Fatalf("rejected call must not write, found %d records", n)
	}

	_, err = d.Dispatch(context.Background(), ToolRecordPTP, map[string]any{
		"customer_id": "CUST001",
		"session_id":  "sess-1",
		"amount":      200.0,
	})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("missing payment_date: want ErrSchemaViolation, got %v", err)
	}
}

func TestDispatchGetCustomerInfo(t *testing.T) {
	t.Parallel()
	d, _ := newTestDispatcher(t, &fakeProvider{})

	out, err := d.Dispatch(context.Background(), ToolGetCustomerInfo, map[string]any{"customer_id": "CUST001"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	customer, ok := out.(*contractx.Customer)
	if !ok {
		t.Fatalf("want *contract.Customer, got %T", out)
	}
	if customer.Name != "Sarah Omondi" {
		t.Fatalf("want Sarah Omondi, got %q", customer.Name)
	}

	_, err = d.Dispatch(context.Background(), ToolGetCustomerInfo, map[string]any{"customer_id": "NOPE"})
	if !errors.Is(err, contractx.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if errors.Is(err, contractx.ErrHandlerFailure) {
		t.Fatalf("not-found must not classify as handler failure: %v", err)
	}
}

func TestDispatchRecordPTPIdempotent(t *testing.T) {
	t.Parallel()
	d, store := newTestDispatcher(t, &fakeProvider{})

	args := map[string]any{
		"customer_id":  "CUST001",
		"session_id":   "sess-1",
		"amount":       200.0,
		"payment_date": "2025-06-15",
		"notes":        "pay after salary",
	}

	out, err := d.Dispatch(context.Background(), ToolRecordPTP, args)
	if err != nil {
		t.Fatalf("first record: %v", err)
	}
	first := out.(*contractx.PTP)
	if first.Duplicate {
		t.Fatal("first insert must not flag duplicate")
	}
	if first.Amount != 200.0 || first.PaymentDate != "2025-06-15" {
		t.Fatalf("echoed record mismatch: %+v", first)
	}
	if first.Status != contractx.PTPPending {
		t.Fatalf("want pending status, got %q", first.Status)
	}

	out, err = d.Dispatch(context.Background(), ToolRecordPTP, args)
	if err != nil {
		t.Fatalf("second record: %v", err)
	}
	second := out.(*contractx.PTP)
	if !second.Duplicate {
		t.Fatal("repeat insert must flag duplicate")
	}
	if second.ID != first.ID {
		t.Fatalf("duplicate must echo the original record, got id %q want %q", second.ID, first.ID)
	}
	if n := len(store.PTPs()); n != 1 {
		t.Fatalf("want 1 stored record, got %d", n)
	}
}

func TestDispatchRecordPTPPastDate(t *testing.T) {
	t.Parallel()
	d, store := newTestDispatcher(t, &fakeProvider{})

	_, err := d.Dispatch(context.Background(), ToolRecordPTP, map[string]any{
		"customer_id":  "CUST001",
		"session_id":   "sess-1",
		"amount":       200.0,
		"payment_date": "2025-05-01",
	})
	if !errors.Is(err, contractx.ErrBusinessRule) {
		t.Fatalf("want ErrBusinessRule, got %v", err)
	}
	if n := len(store.PTPs()); n != 0 {
		t.Fatalf("past-date promise must not write, found %d records", n)
	}
}

func TestDispatchCallClaude(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{resp: contractx.CompletionResponse{Content: "hello from claude", Model: "anthropic/claude-sonnet-4"}}
	d, _ := newTestDispatcher(t, provider)

	out, err := d.Dispatch(context.Background(), ToolCallClaude, map[string]any{
		"messages": []any{
			map[string]any{"role": "user", "content": "hi"},
		},
		"system": "be brief",
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	resp := out.(contractx.CompletionResponse)
	if resp.Content != "hello from claude" {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	if provider.lastReq.System != "be brief" {
		t.Fatalf("system instruction not forwarded: %+v", provider.lastReq)
	}
	if len(provider.lastReq.Messages) != 1 || provider.lastReq.Messages[0].Role != contractx.RoleUser {
		t.Fatalf("messages not forwarded: %+v", provider.lastReq.Messages)
	}
}

func TestDispatchCallClaudeProviderError(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{err: contractx.ErrProvider}
	d, _ := newTestDispatcher(t, provider)

	_, err := d.Dispatch(context.Background(), ToolCallClaude, map[string]any{
		"messages": []any{map[string]any{"role": "user", "content": "hi"}},
	})
	if !errors.Is(err, contractx.ErrProvider) {
		t.Fatalf("want ErrProvider, got %v", err)
	}
}

func TestDispatchCallClaudeBadRole(t *testing.T) {
	t.Parallel()
	d, _ := newTestDispatcher(t, &fakeProvider{})

	_, err := d.Dispatch(context.Background(), ToolCallClaude, map[string]any{
		"messages": []any{map[string]any{"role": "wizard", "content": "hi"}},
	})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("want ErrSchemaViolation, got %v", err)
	}
}

func TestWrapResultsWireForm(t *testing.T) {
	t.Parallel()

	envs := WrapResults([]contractx.ToolResult{
		{Tool: ToolGetCustomerInfo, Result: map[string]any{"customer_id": "CUST001"}},
		{Tool: ToolRecordPTP, Error: "store unreachable"},
	})
	if len(envs) != 2 {
		t.Fatalf("want 2 envelopes, got %d", len(envs))
	}

	if envs[0].Tool != ToolGetCustomerInfo || envs[0].IsError {
		t.Fatalf("unexpected success envelope: %+v", envs[0])
	}
	if envs[0].Content != `{"customer_id":"CUST001"}` {
		t.Fatalf("unexpected content: %q", envs[0].Content)
	}

	if envs[1].Tool != ToolRecordPTP || !envs[1].IsError {
		t.Fatalf("unexpected error envelope: %+v", envs[1])
	}
	if envs[1].Content != "store unreachable" {
		t.Fatalf("unexpected error content: %q", envs[1].Content)
	}
}

func TestRegistryListOrder(t *testing.T) {
	t.Parallel()
	d, _ := newTestDispatcher(t, &fakeProvider{})

	want := []string{ToolGetCustomerInfo, ToolGetLoanDetails, ToolRecordPTP, ToolCallClaude}
	descriptors := d.Registry().List()
	if len(descriptors) != len(want) {
		t.Fatalf("want %d tools, got %d", len(want), len(descriptors))
	}
	for i, desc := range descriptors {
		if desc.Name != want[i] {
			t.Fatalf("position %d: want %q got %q", i, want[i], desc.Name)
		}
	}
}
