package prompt

import (
	"fmt"
	"strings"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
)

// RenderCustomerContext builds the customer briefing injected ahead of the
// conversation so the model negotiates against real numbers.
func RenderCustomerContext(customer *contractx.Customer, loan *contractx.Loan) string {
	var b strings.Builder
	b.WriteString("CUSTOMER INFORMATION:\n")
	fmt.Fprintf(&b, "Name: %s\n", customer.Name)
	fmt.Fprintf(&b, "Loan ID: %s\n", loan.ID)
	fmt.Fprintf(&b, "Original Loan Amount: $%.2f\n", loan.OriginalAmount)
	fmt.Fprintf(&b, "Total Amount Owed: $%.2f\n", loan.CurrentBalance)
	fmt.Fprintf(&b, "Days Overdue: %d\n", loan.DaysOverdue)
	fmt.Fprintf(&b, "Previous Loan History: %d loans, %s\n", customer.PreviousLoans, customer.PaymentHistory)
	return b.String()
}

// RenderTranscript flattens a conversation for the extraction pass. The Today
// header anchors relative dates like "next Friday".
func RenderTranscript(today string, turns []contractx.Turn) string {
	lines := []string{"Today: " + today, "", "Transcript:"}
	for _, turn := range turns {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		switch turn.Role {
		case contractx.RoleUser:
			lines = append(lines, "CUSTOMER: "+content)
		case contractx.RoleAssistant:
			lines = append(lines, "AGENT: "+content)
		}
	}
	return strings.Join(lines, "\n")
}
