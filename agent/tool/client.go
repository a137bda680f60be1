package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
)

// HTTPGateway dispatches tool calls to a remote tool server instead of an
// in-process Dispatcher. Both satisfy contract.ToolGateway, so the
// orchestrator does not care which one it is handed.
type HTTPGateway struct {
	baseURL string
	httpc   *http.Client
}

type HTTPGatewayConfig struct {
	BaseURL string        `envconfig:"BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"15s"`
}

func NewHTTPGateway(cfg HTTPGatewayConfig) (*HTTPGateway, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("tool gateway: base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("tool gateway: invalid base url: %w", err)
	}
	return &HTTPGateway{
		baseURL: base,
		httpc:   &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type toolErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (g *HTTPGateway) Dispatch(ctx context.Context, tool string, args map[string]any) (any, error) {
	if args == nil {
		args = map[string]any{}
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: encode args: %w", contractx.ErrHandlerFailure, tool, err)
	}

	endpoint := g.baseURL + "/tools/" + url.PathEscape(tool)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: build request: %w", contractx.ErrHandlerFailure, tool, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", contractx.ErrHandlerFailure, tool, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read response: %w", contractx.ErrHandlerFailure, tool, err)
	}

	if resp.StatusCode == http.StatusOK {
		var out any
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("%w: %s: decode response: %w", contractx.ErrHandlerFailure, tool, err)
		}
		return out, nil
	}

	var failure toolErrorBody
	if err := json.Unmarshal(body, &failure); err != nil || failure.Error == "" {
		return nil, fmt.Errorf("%w: %s: status %d", contractx.ErrHandlerFailure, tool, resp.StatusCode)
	}
	return nil, fmt.Errorf("%w: %s: %s", contractx.SentinelFor(failure.Code), tool, failure.Error)
}
