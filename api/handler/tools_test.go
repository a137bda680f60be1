package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
	toolx "github.com/tala-demo/recoveries-agent/agent/tool"
	"github.com/tala-demo/recoveries-agent/api/handler"
	"github.com/tala-demo/recoveries-agent/api/router"
	"github.com/tala-demo/recoveries-agent/storage/memory"
)

type stubProvider struct{}

func (stubProvider) Complete(context.Context, contractx.CompletionRequest) (contractx.CompletionResponse, error) {
	return contractx.CompletionResponse{Content: "hi", Model: "anthropic/claude-sonnet-4"}, nil
}

func testClock() time.Time {
	return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
}

func newToolsEngine(t *testing.T) (*gin.Engine, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewDemoStore(memory.WithClock(testClock))
	dispatcher, err := toolx.New(store, stubProvider{}, toolx.WithClock(testClock))
	if err != nil {
		t.Fatalf("build dispatcher: %v", err)
	}

	engine := router.New(router.Config{
		Health: handler.NewHealthHandler("Tala Recoveries Tool Server"),
		Tools:  handler.NewToolsHandler(dispatcher),
	})
	return engine, store
}

func postJSON(t *testing.T, engine *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	engine, _ := newToolsEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Fatalf("want healthy, got %q", body["status"])
	}
}

func TestListTools(t *testing.T) {
	t.Parallel()
	engine, _ := newToolsEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/tools", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	var body struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Tools) != 4 {
		t.Fatalf("want 4 tools, got %d", len(body.Tools))
	}
}

func TestDispatchUnknownToolIs404(t *testing.T) {
	t.Parallel()
	engine, store := newToolsEngine(t)

	w := postJSON(t, engine, "/tools/drop_database", map[string]any{})
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d: %s", w.Code, w.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["code"] != contractx.CodeUnknownTool {
		t.Fatalf("want unknown_tool code, got %q", body["code"])
	}
	if n := len(store.PTPs()); n != 0 {
		t.Fatalf("no handler must run, found %d writes", n)
	}
}

func TestDispatchRecordPTPEcho(t *testing.T) {
	t.Parallel()
	engine, _ := newToolsEngine(t)

	w := postJSON(t, engine, "/tools/record_ptp", map[string]any{
		"customer_id":  "CUST001",
		"session_id":   "sess-http",
		"amount":       200.0,
		"payment_date": "2025-06-15",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", w.Code, w.Body.String())
	}
	var record contractx.PTP
	if err := json.Unmarshal(w.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record.ID == "" || record.Amount != 200 || record.PaymentDate != "2025-06-15" {
		t.Fatalf("echoed record mismatch: %+v", record)
	}
}

func TestDispatchSchemaViolationIs400(t *testing.T) {
	t.Parallel()
	engine, _ := newToolsEngine(t)

	w := postJSON(t, engine, "/tools/record_ptp", map[string]any{
		"customer_id":  "CUST001",
		"session_id":   "sess-http",
		"amount":       -1.0,
		"payment_date": "2025-06-15",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDispatchNotFoundIs404(t *testing.T) {
	t.Parallel()
	engine, _ := newToolsEngine(t)

	w := postJSON(t, engine, "/tools/get_customer_info", map[string]any{"customer_id": "NOPE"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d: %s", w.Code, w.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["code"] != contractx.CodeNotFound {
		t.Fatalf("want not_found code, got %q", body["code"])
	}
}

// The HTTP gateway must reproduce the in-process taxonomy across the wire.
func TestHTTPGatewayRoundTrip(t *testing.T) {
	t.Parallel()
	engine, _ := newToolsEngine(t)
	srv := httptest.NewServer(engine)
	defer srv.Close()

	gateway, err := toolx.NewHTTPGateway(toolx.HTTPGatewayConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewHTTPGateway: %v", err)
	}

	out, err := gateway.Dispatch(context.Background(), toolx.ToolGetCustomerInfo, map[string]any{"customer_id": "CUST001"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	decoded, ok := out.(map[string]any)
	if !ok || decoded["name"] != "Sarah Omondi" {
		t.Fatalf("unexpected payload: %#v", out)
	}

	_, err = gateway.Dispatch(context.Background(), "drop_database", nil)
	if !errors.Is(err, contractx.ErrUnknownTool) {
		t.Fatalf("want ErrUnknownTool over the wire, got %v", err)
	}

	_, err = gateway.Dispatch(context.Background(), toolx.ToolGetLoanDetails, map[string]any{"loan_id": "NOPE"})
	if !errors.Is(err, contractx.ErrNotFound) {
		t.Fatalf("want ErrNotFound over the wire, got %v", err)
	}
}
