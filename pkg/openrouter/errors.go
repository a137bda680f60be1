package openrouter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
)

type Kind string

const (
	KindAuth        Kind = "auth"
	KindRateLimited Kind = "rate_limited"
	KindTimeout     Kind = "timeout"
	KindBadRequest  Kind = "bad_request"
	KindTransport   Kind = "transport"
)

// ProviderError wraps a provider failure with its classification. It unwraps
// to contract.ErrProvider so callers can match on the taxonomy, and to the
// underlying cause for operational visibility.
type ProviderError struct {
	Kind   Kind
	Status int
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("provider %s (status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() []error {
	return []error{contractx.ErrProvider, e.Err}
}

// Classify maps transport and API errors onto the provider failure taxonomy:
// authentication, rate-limit, timeout, malformed-request, or plain transport.
func Classify(err error) *ProviderError {
	var apiErr *openaisdk.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &ProviderError{Kind: KindAuth, Status: apiErr.StatusCode, Err: err}
		case http.StatusTooManyRequests:
			return &ProviderError{Kind: KindRateLimited, Status: apiErr.StatusCode, Err: err}
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return &ProviderError{Kind: KindBadRequest, Status: apiErr.StatusCode, Err: err}
		default:
			return &ProviderError{Kind: KindTransport, Status: apiErr.StatusCode, Err: err}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Kind: KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ProviderError{Kind: KindTimeout, Err: err}
	}

	return &ProviderError{Kind: KindTransport, Err: err}
}
