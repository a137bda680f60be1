package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
	qstashx "github.com/tala-demo/recoveries-agent/pkg/qstash"
)

// Dispatcher routes validated tool calls to their handlers. Collaborators
// are injected at construction; there is no module-scope client state.
type Dispatcher struct {
	registry *Registry
	store    contractx.DataStore
	provider contractx.CompletionProvider

	reminders   *qstashx.Client
	reminderURL string

	now func() time.Time
}

type Option func(*Dispatcher)

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// WithReminders schedules a payment-date reminder webhook after each newly
// recorded PTP. Optional; record_ptp works without it.
func WithReminders(client *qstashx.Client, destinationURL string) Option {
	return func(d *Dispatcher) {
		d.reminders = client
		d.reminderURL = destinationURL
	}
}

func New(store contractx.DataStore, provider contractx.CompletionProvider, opts ...Option) (*Dispatcher, error) {
	if store == nil {
		return nil, errors.New("data store is required")
	}
	if provider == nil {
		return nil, errors.New("completion provider is required")
	}

	d := &Dispatcher{
		store:    store,
		provider: provider,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}

	registry, err := NewRegistry(
		d.customerInfoDescriptor(),
		d.loanDetailsDescriptor(),
		d.recordPTPDescriptor(),
		d.callClaudeDescriptor(),
	)
	if err != nil {
		return nil, err
	}
	d.registry = registry

	return d, nil
}

func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch validates the arguments against the tool's declared schema and
// invokes the bound handler. Failures always surface as taxonomy errors;
// there is no hidden fabricated-data path.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any) (any, error) {
	desc, ok := d.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", contractx.ErrUnknownTool, name)
	}
	if args == nil {
		args = map[string]any{}
	}

	violations := ValidateArgs(desc.Params, args)
	if len(violations) == 0 && desc.Check != nil {
		violations = desc.Check(args)
	}
	if len(violations) > 0 {
		return nil, fmt.Errorf("%w: %s: %s", contractx.ErrSchemaViolation, name, joinViolations(violations))
	}

	out, err := desc.handler(ctx, args)
	if err != nil {
		log.Debug().Err(err).Str("tool", name).Msg("tool dispatch failed")
		return nil, err
	}
	return out, nil
}

// wrapHandlerErr keeps taxonomy errors intact and folds everything else
// into HandlerFailure with the underlying cause preserved.
func wrapHandlerErr(toolName string, err error) error {
	switch {
	case errors.Is(err, contractx.ErrNotFound),
		errors.Is(err, contractx.ErrBusinessRule),
		errors.Is(err, contractx.ErrProvider):
		return fmt.Errorf("%s: %w", toolName, err)
	default:
		return fmt.Errorf("%w: %s: %w", contractx.ErrHandlerFailure, toolName, err)
	}
}

// Envelope is the dispatcher's wire form at the orchestrator/LLM boundary.
type Envelope struct {
	Tool    string `json:"tool,omitempty"`
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

func WrapResult(result any, err error) Envelope {
	if err != nil {
		return Envelope{Content: err.Error(), IsError: true}
	}
	raw, merr := json.Marshal(result)
	if merr != nil {
		return Envelope{Content: fmt.Sprintf("marshal tool result: %v", merr), IsError: true}
	}
	return Envelope{Content: string(raw)}
}

// WrapResults renders a batch of dispatched outcomes in the wire form,
// each tagged with the tool that produced it.
func WrapResults(results []contractx.ToolResult) []Envelope {
	out := make([]Envelope, 0, len(results))
	for _, res := range results {
		var env Envelope
		if res.Error != "" {
			env = Envelope{Content: res.Error, IsError: true}
		} else {
			env = WrapResult(res.Result, nil)
		}
		env.Tool = res.Tool
		out = append(out, env)
	}
	return out
}
