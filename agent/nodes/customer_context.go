package recoverynode

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
	promptx "github.com/tala-demo/recoveries-agent/agent/prompt"
	toolx "github.com/tala-demo/recoveries-agent/agent/tool"
)

// LoadCustomerContext fetches the customer and loan through the tool gateway
// and renders the context block the model negotiates against. The render is
// cached in session state; the loan itself is re-fetched each turn because
// extraction validates amounts against the live balance.
//
// A fetch failure degrades the turn (the model negotiates without numbers)
// instead of failing it.
func LoadCustomerContext(
	ctx context.Context,
	in *GraphState,
	tools contractx.ToolGateway,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	customer, loan, err := fetchCustomerAndLoan(ctx, tools, in.Session.CustomerID, in.Session.LoanID)
	if err != nil {
		log.Warn().Err(err).
			Str("session_id", in.SessionID).
			Msg("customer context unavailable this turn")
		return in, nil
	}

	in.Customer = customer
	in.Loan = loan

	if !in.Session.ContextReady {
		in.Session.CustomerContext = promptx.RenderCustomerContext(customer, loan)
		in.Session.TotalOwed = loan.CurrentBalance
		in.Session.ContextReady = true
	}
	return in, nil
}

func fetchCustomerAndLoan(
	ctx context.Context,
	tools contractx.ToolGateway,
	customerID string,
	loanID string,
) (*contractx.Customer, *contractx.Loan, error) {
	rawCustomer, err := tools.Dispatch(ctx, toolx.ToolGetCustomerInfo, map[string]any{"customer_id": customerID})
	if err != nil {
		return nil, nil, fmt.Errorf("fetch customer %s: %w", customerID, err)
	}
	customer, err := decodeAs[contractx.Customer](rawCustomer)
	if err != nil {
		return nil, nil, fmt.Errorf("decode customer %s: %w", customerID, err)
	}

	rawLoan, err := tools.Dispatch(ctx, toolx.ToolGetLoanDetails, map[string]any{"loan_id": loanID})
	if err != nil {
		return nil, nil, fmt.Errorf("fetch loan %s: %w", loanID, err)
	}
	loan, err := decodeAs[contractx.Loan](rawLoan)
	if err != nil {
		return nil, nil, fmt.Errorf("decode loan %s: %w", loanID, err)
	}
	return customer, loan, nil
}

// decodeAs normalizes a gateway result. An in-process dispatch hands back the
// typed struct; an HTTP dispatch hands back decoded JSON. A round-trip
// through encoding/json covers both.
func decodeAs[T any](v any) (*T, error) {
	if typed, ok := v.(*T); ok {
		return typed, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
