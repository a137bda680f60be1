// Package ptp decides when an extracted Promise to Pay is allowed to reach
// the store. The extraction model proposes; this policy disposes.
package ptp

import (
	"fmt"
	"math"
	"strings"
	"time"

	contractx "github.com/tala-demo/recoveries-agent/agent/contract"
)

const dateLayout = "2006-01-02"

// Rules are the negotiation guardrails quoted to the model in the system
// prompt. Validation enforces them even when the model ignores them.
type Rules struct {
	MinPercent         float64 `envconfig:"MIN_PERCENT" split_words:"true" default:"0.25"`
	MaxDays            int     `envconfig:"MAX_DAYS" split_words:"true" default:"90"`
	MaxBalanceMultiple float64 `envconfig:"MAX_BALANCE_MULTIPLE" split_words:"true" default:"2"`
}

// LooksLikeCommitment is a cheap lexical pre-filter so extraction only runs
// when the customer's message plausibly agrees to something.
func LooksLikeCommitment(userText string) bool {
	t := strings.ToLower(userText)
	markers := []string{
		"yes", "okay", "ok", "alright",
		"i will", "i'll", "i can", "sure",
		"agree", "deal", "commit",
		"tomorrow", "today", "next week",
		"on ", "by ",
	}
	for _, m := range markers {
		if strings.Contains(t, m) {
			return true
		}
	}
	return false
}

// Normalize rounds a draft's amount to cents and trims its notes.
func Normalize(draft *contractx.PTPDraft) *contractx.PTPDraft {
	if draft == nil {
		return nil
	}
	out := *draft
	out.Amount = math.Round(out.Amount*100) / 100
	out.PaymentDate = strings.TrimSpace(out.PaymentDate)
	out.Notes = strings.TrimSpace(out.Notes)
	return &out
}

// Validate checks a normalized draft against the rules and the loan it pays
// down. All failures classify as business rule violations.
func (r Rules) Validate(draft *contractx.PTPDraft, loan *contractx.Loan, now time.Time) error {
	if draft == nil {
		return fmt.Errorf("%w: no promise to validate", contractx.ErrBusinessRule)
	}
	if draft.Amount <= 0 {
		return fmt.Errorf("%w: amount must be greater than zero", contractx.ErrBusinessRule)
	}

	day, err := time.Parse(dateLayout, draft.PaymentDate)
	if err != nil {
		return fmt.Errorf("%w: payment_date %q is not a YYYY-MM-DD date", contractx.ErrBusinessRule, draft.PaymentDate)
	}
	today := now.UTC().Truncate(24 * time.Hour)
	if day.Before(today) {
		return fmt.Errorf("%w: payment_date %s is in the past", contractx.ErrBusinessRule, draft.PaymentDate)
	}
	if r.MaxDays > 0 && day.After(today.AddDate(0, 0, r.MaxDays)) {
		return fmt.Errorf("%w: payment_date %s is more than %d days out", contractx.ErrBusinessRule, draft.PaymentDate, r.MaxDays)
	}

	owed := loan.CurrentBalance
	if r.MaxBalanceMultiple > 0 && draft.Amount > owed*r.MaxBalanceMultiple {
		return fmt.Errorf("%w: amount %.2f exceeds %gx the balance owed (%.2f)", contractx.ErrBusinessRule, draft.Amount, r.MaxBalanceMultiple, owed)
	}
	if r.MinPercent > 0 {
		minAmount := owed * r.MinPercent
		if draft.Amount+1e-9 < minAmount {
			return fmt.Errorf("%w: amount %.2f is below the minimum payment %.2f", contractx.ErrBusinessRule, draft.Amount, minAmount)
		}
	}
	return nil
}
