package prompt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoaderEmbeddedOnly(t *testing.T) {
	t.Parallel()
	l := NewLoader(RemoteConfig{})

	text, err := l.Load(context.Background(), SlugSystem)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.Contains(text, "You are Andrea") {
		t.Fatalf("embedded system prompt missing persona: %q", text[:60])
	}

	if _, err := l.Load(context.Background(), "no-such-slug"); err == nil {
		t.Fatal("unknown slug must error when no remote is configured")
	}
}

func TestLoaderRemoteOverrideAndCache(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/prompts/"+SlugSystem {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Write([]byte("remote persona\n"))
	}))
	defer srv.Close()

	l := NewLoader(RemoteConfig{URL: srv.URL, Token: "tok", CacheTTL: time.Minute, Timeout: time.Second})

	for i := 0; i < 3; i++ {
		text, err := l.Load(context.Background(), SlugSystem)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if text != "remote persona" {
			t.Fatalf("want remote override, got %q", text)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("want 1 remote fetch within TTL, got %d", n)
	}
}

func TestLoaderFallsBackOnRemoteFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	l := NewLoader(RemoteConfig{URL: srv.URL, CacheTTL: time.Minute, Timeout: time.Second})
	text, err := l.Load(context.Background(), SlugExtractPTP)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.Contains(text, "has_ptp") {
		t.Fatal("expected embedded extraction prompt fallback")
	}
}
