package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tala-demo/recoveries-agent/agent/agents/orchestrator"
	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
	statex "github.com/tala-demo/recoveries-agent/agent/state"
	toolx "github.com/tala-demo/recoveries-agent/agent/tool"
	"github.com/tala-demo/recoveries-agent/api/handler"
	"github.com/tala-demo/recoveries-agent/storage/memory"
)

type scriptedNegotiator struct {
	message string
}

func (s scriptedNegotiator) Run(context.Context, contractx.NegotiationRequest) (contractx.NegotiationResponse, error) {
	return contractx.NegotiationResponse{Message: s.message}, nil
}

type nilExtractor struct{}

func (nilExtractor) Extract(context.Context, contractx.ExtractionRequest) (*contractx.PTPDraft, error) {
	return nil, nil
}

type scriptedRegistry struct {
	message string
}

func (s scriptedRegistry) Negotiator() contractx.Negotiator { return scriptedNegotiator{s.message} }
func (s scriptedRegistry) Extractor() contractx.Extractor   { return nilExtractor{} }

func newChatEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewDemoStore(memory.WithClock(testClock))
	dispatcher, err := toolx.New(store, stubProvider{}, toolx.WithClock(testClock))
	if err != nil {
		t.Fatalf("build dispatcher: %v", err)
	}

	orch, err := orchestrator.New(statex.NewMemoryStore(), scriptedRegistry{message: "How can I help today?"}, dispatcher, orchestrator.Config{})
	if err != nil {
		t.Fatalf("build orchestrator: %v", err)
	}

	return routerNew(t, orch)
}

func routerNew(t *testing.T, orch *orchestrator.Orchestrator) *gin.Engine {
	t.Helper()
	engine := gin.New()
	engine.POST("/api/chat", handler.NewChatHandler(orch).Chat)
	return engine
}

func TestChatEndpoint(t *testing.T) {
	t.Parallel()
	engine := newChatEngine(t)

	w := postJSON(t, engine, "/api/chat", map[string]any{
		"message":    "Hi, I got your text about my loan",
		"session_id": "sess-chat",
		"history":    []map[string]string{},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Response  string         `json:"response"`
		SessionID string         `json:"session_id"`
		Metadata  map[string]any `json:"metadata"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Response != "How can I help today?" {
		t.Fatalf("unexpected response %q", body.Response)
	}
	if body.SessionID != "sess-chat" {
		t.Fatalf("unexpected session %q", body.SessionID)
	}
	if body.Metadata["customer_id"] != "CUST001" {
		t.Fatalf("metadata missing customer id: %v", body.Metadata)
	}
}

func TestChatEndpointRejectsMissingFields(t *testing.T) {
	t.Parallel()
	engine := newChatEngine(t)

	w := postJSON(t, engine, "/api/chat", map[string]any{"message": "hello"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d: %s", w.Code, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty body: want 400, got %d", rec.Code)
	}
}
