package tool

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
)

const dateLayout = "2006-01-02"

func (d *Dispatcher) customerInfoDescriptor() *Descriptor {
	return &Descriptor{
		Name: ToolGetCustomerInfo,
		Desc: "Look up a customer's profile and repayment history by customer id.",
		Params: map[string]*schema.ParameterInfo{
			"customer_id": {Type: schema.String, Desc: "Customer identifier", Required: true},
		},
		handler: d.handleGetCustomerInfo,
	}
}

func (d *Dispatcher) loanDetailsDescriptor() *Descriptor {
	return &Descriptor{
		Name: ToolGetLoanDetails,
		Desc: "Look up a loan's balance, fees, and overdue standing by loan id.",
		Params: map[string]*schema.ParameterInfo{
			"loan_id": {Type: schema.String, Desc: "Loan identifier", Required: true},
		},
		handler: d.handleGetLoanDetails,
	}
}

func (d *Dispatcher) recordPTPDescriptor() *Descriptor {
	return &Descriptor{
		Name: ToolRecordPTP,
		Desc: "Record a customer's Promise to Pay: a committed amount and payment date.",
		Params: map[string]*schema.ParameterInfo{
			"customer_id":  {Type: schema.String, Desc: "Customer identifier", Required: true},
			"session_id":   {Type: schema.String, Desc: "Chat session identifier", Required: true},
			"amount":       {Type: schema.Number, Desc: "Committed payment amount, must be > 0", Required: true},
			"payment_date": {Type: schema.String, Desc: "Committed calendar date, YYYY-MM-DD", Required: true},
			"notes":        {Type: schema.String, Desc: "Free-form context for the agreement"},
		},
		Check: checkRecordPTPArgs,
		handler: d.handleRecordPTP,
	}
}

func (d *Dispatcher) callClaudeDescriptor() *Descriptor {
	return &Descriptor{
		Name: ToolCallClaude,
		Desc: "Send a conversation to the hosted Claude model and return the generated text.",
		Params: map[string]*schema.ParameterInfo{
			"messages": {
				Type:     schema.Array,
				Desc:     "Ordered conversation messages",
				Required: true,
				ElemInfo: &schema.ParameterInfo{
					Type: schema.Object,
					SubParams: map[string]*schema.ParameterInfo{
						"role":    {Type: schema.String, Desc: "user or assistant", Required: true},
						"content": {Type: schema.String, Desc: "Message text", Required: true},
					},
				},
			},
			"system": {Type: schema.String, Desc: "Optional system instruction"},
			"model":  {Type: schema.String, Desc: "Optional model override"},
		},
		Check: checkCallClaudeArgs,
		handler: d.handleCallClaude,
	}
}

func checkRecordPTPArgs(args map[string]any) []Violation {
	var out []Violation
	if amount, ok := asFloat(args["amount"]); ok && amount <= 0 {
		out = append(out, Violation{Field: "amount", Reason: "must be greater than zero"})
	}
	if raw, ok := args["payment_date"].(string); ok {
		if _, err := time.Parse(dateLayout, strings.TrimSpace(raw)); err != nil {
			out = append(out, Violation{Field: "payment_date", Reason: "must be a YYYY-MM-DD date"})
		}
	}
	return out
}

func checkCallClaudeArgs(args map[string]any) []Violation {
	items, ok := args["messages"].([]any)
	if !ok {
		return nil
	}
	if len(items) == 0 {
		return []Violation{{Field: "messages", Reason: "must not be empty"}}
	}
	var out []Violation
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		role, _ := obj["role"].(string)
		if role != string(contractx.RoleUser) && role != string(contractx.RoleAssistant) {
			out = append(out, Violation{
				Field:  fmt.Sprintf("messages[%d].role", i),
				Reason: "must be user or assistant",
			})
		}
	}
	return out
}

func (d *Dispatcher) handleGetCustomerInfo(ctx context.Context, args map[string]any) (any, error) {
	id := strings.TrimSpace(args["customer_id"].(string))
	customer, err := d.store.CustomerByID(ctx, id)
	if err != nil {
		return nil, wrapHandlerErr(ToolGetCustomerInfo, err)
	}
	return customer, nil
}

func (d *Dispatcher) handleGetLoanDetails(ctx context.Context, args map[string]any) (any, error) {
	id := strings.TrimSpace(args["loan_id"].(string))
	loan, err := d.store.LoanByID(ctx, id)
	if err != nil {
		return nil, wrapHandlerErr(ToolGetLoanDetails, err)
	}
	return loan, nil
}

// handleRecordPTP performs exactly one insert. The caller abandoning the
// request must not abort the write, so the store call detaches from
// cancellation.
func (d *Dispatcher) handleRecordPTP(ctx context.Context, args map[string]any) (any, error) {
	ctx = context.WithoutCancel(ctx)

	amount, _ := asFloat(args["amount"])
	paymentDate := strings.TrimSpace(args["payment_date"].(string))
	notes, _ := args["notes"].(string)

	day, err := time.Parse(dateLayout, paymentDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: payment_date: %v", contractx.ErrSchemaViolation, ToolRecordPTP, err)
	}
	today := d.now().UTC().Truncate(24 * time.Hour)
	if day.Before(today) {
		return nil, fmt.Errorf("%w: payment_date %s is in the past", contractx.ErrBusinessRule, paymentDate)
	}

	p := &contractx.PTP{
		CustomerID:  strings.TrimSpace(args["customer_id"].(string)),
		SessionID:   strings.TrimSpace(args["session_id"].(string)),
		Amount:      amount,
		PaymentDate: paymentDate,
		Notes:       strings.TrimSpace(notes),
		Status:      contractx.PTPPending,
		CreatedAt:   d.now().UTC(),
	}

	inserted, err := d.store.InsertPTP(ctx, p)
	if err != nil {
		return nil, wrapHandlerErr(ToolRecordPTP, err)
	}

	if !inserted.Duplicate {
		d.scheduleReminder(ctx, inserted, day)
	}
	return inserted, nil
}

// scheduleReminder is best effort: a failed reminder must never fail the
// recorded promise.
func (d *Dispatcher) scheduleReminder(ctx context.Context, p *contractx.PTP, day time.Time) {
	if d.reminders == nil || d.reminderURL == "" {
		return
	}

	notBefore := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC)
	err := d.reminders.PublishJSON(ctx, d.reminderURL, map[string]any{
		"ptp_id":       p.ID,
		"customer_id":  p.CustomerID,
		"session_id":   p.SessionID,
		"amount":       p.Amount,
		"payment_date": p.PaymentDate,
	}, notBefore)
	if err != nil {
		log.Warn().Err(err).Str("ptp_id", p.ID).Msg("schedule payment reminder failed")
	}
}

func (d *Dispatcher) handleCallClaude(ctx context.Context, args map[string]any) (any, error) {
	items := args["messages"].([]any)
	messages := make([]contractx.CompletionMessage, 0, len(items))
	for _, item := range items {
		obj := item.(map[string]any)
		messages = append(messages, contractx.CompletionMessage{
			Role:    contractx.Role(obj["role"].(string)),
			Content: obj["content"].(string),
		})
	}

	system, _ := args["system"].(string)
	model, _ := args["model"].(string)

	resp, err := d.provider.Complete(ctx, contractx.CompletionRequest{
		Messages: messages,
		System:   system,
		Model:    model,
	})
	if err != nil {
		return nil, wrapHandlerErr(ToolCallClaude, err)
	}
	return resp, nil
}
