package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
)

const (
	ToolGetCustomerInfo = "get_customer_info"
	ToolGetLoanDetails  = "get_loan_details"
	ToolRecordPTP       = "record_ptp"
	ToolCallClaude      = "call_claude"
)

// Handler executes one tool call. The returned value is the handler's domain
// object, passed through untouched.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Descriptor declares one tool: name, description, a declarative parameter
// schema, and an optional Check for rules the type schema cannot express
// (positive amounts, date formats).
type Descriptor struct {
	Name   string
	Desc   string
	Params map[string]*schema.ParameterInfo
	Check  func(args map[string]any) []Violation

	handler Handler
}

func (d *Descriptor) ToolInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name:        d.Name,
		Desc:        d.Desc,
		ParamsOneOf: schema.NewParamsOneOfByParams(d.Params),
	}
}

// Registry is the fixed tool catalog, immutable once constructed.
type Registry struct {
	order  []string
	byName map[string]*Descriptor
}

func NewRegistry(descriptors ...*Descriptor) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if d == nil || strings.TrimSpace(d.Name) == "" {
			return nil, fmt.Errorf("descriptor with empty name")
		}
		if _, exists := r.byName[d.Name]; exists {
			return nil, fmt.Errorf("duplicate tool %q", d.Name)
		}
		if d.handler == nil {
			return nil, fmt.Errorf("tool %q has no handler", d.Name)
		}
		r.byName[d.Name] = d
		r.order = append(r.order, d.Name)
	}
	return r, nil
}

// List returns descriptors in registration order.
func (r *Registry) List() []*Descriptor {
	out := make([]*Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Infos renders tool descriptors for model binding. With no names it covers
// the full catalog; with names it covers that subset, skipping unknowns.
func (r *Registry) Infos(names ...string) []*schema.ToolInfo {
	selected := r.order
	if len(names) > 0 {
		selected = names
	}
	out := make([]*schema.ToolInfo, 0, len(selected))
	for _, name := range selected {
		if d, ok := r.byName[name]; ok {
			out = append(out, d.ToolInfo())
		}
	}
	return out
}
