package prompt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// RemoteConfig points the loader at a prompt management service. When URL is
// empty the loader serves embedded prompts only.
type RemoteConfig struct {
	URL      string        `envconfig:"URL"`
	Token    string        `envconfig:"TOKEN"`
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"60s"`
	Timeout  time.Duration `envconfig:"TIMEOUT" default:"5s"`
}

type cachedPrompt struct {
	text      string
	fetchedAt time.Time
}

// Loader resolves prompts by slug with remote overrides on top of the
// embedded defaults. Remote fetches are cached so prompt edits roll out
// within the TTL without a fetch on every request.
type Loader struct {
	cfg       RemoteConfig
	httpc     *http.Client
	fallbacks map[string]string
	now       func() time.Time

	mu    sync.Mutex
	cache map[string]cachedPrompt
}

const (
	SlugSystem     = "andrea-recoveries-agent"
	SlugExtractPTP = "extract-ptp-json"
)

func NewLoader(cfg RemoteConfig) *Loader {
	set := LoadPromptSet()
	return &Loader{
		cfg:   cfg,
		httpc: &http.Client{Timeout: cfg.Timeout},
		fallbacks: map[string]string{
			SlugSystem:     set.System,
			SlugExtractPTP: set.ExtractPTP,
		},
		now:   time.Now,
		cache: map[string]cachedPrompt{},
	}
}

// Load returns the prompt text for a slug. A failed or unconfigured remote
// fetch falls back to the embedded default; an unknown slug with no fallback
// is an error.
func (l *Loader) Load(ctx context.Context, slug string) (string, error) {
	fallback, known := l.fallbacks[slug]

	if l.cfg.URL == "" {
		if !known {
			return "", fmt.Errorf("prompt: unknown slug %q", slug)
		}
		return fallback, nil
	}

	if text, ok := l.cached(slug); ok {
		return text, nil
	}

	text, err := l.fetch(ctx, slug)
	if err != nil {
		log.Warn().Err(err).Str("slug", slug).Msg("remote prompt fetch failed, using embedded fallback")
		if !known {
			return "", fmt.Errorf("prompt: fetch %q: %w", slug, err)
		}
		return fallback, nil
	}

	l.mu.Lock()
	l.cache[slug] = cachedPrompt{text: text, fetchedAt: l.now()}
	l.mu.Unlock()
	return text, nil
}

func (l *Loader) cached(slug string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.cache[slug]
	if !ok || l.now().Sub(entry.fetchedAt) > l.cfg.CacheTTL {
		return "", false
	}
	return entry.text, true
}

func (l *Loader) fetch(ctx context.Context, slug string) (string, error) {
	endpoint := strings.TrimRight(l.cfg.URL, "/") + "/prompts/" + url.PathEscape(slug)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	if l.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+l.cfg.Token)
	}

	resp, err := l.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "", fmt.Errorf("empty prompt body")
	}
	return text, nil
}
