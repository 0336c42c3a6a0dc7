package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the format of Expense.Date.
const DateLayout = "2006-01-02"

// Expense is one payment event: PaidBy fronted Amount and every member of
// SharedBy owes an equal share of it.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// GroupID is the group this expense belongs to.
	GroupID string `json:"group_id"`

	// Description is free text. It also drives category inference.
	Description string `json:"description"`

	// Amount is the total cost. Always positive.
	Amount decimal.Decimal `json:"amount"`

	// PaidBy is the user id of the member who fronted the money.
	PaidBy string `json:"paid_by"`

	// SharedBy is the set of user ids that jointly owe Amount. PaidBy may
	// or may not be included. Order is irrelevant.
	SharedBy []string `json:"shared_by"`

	// Date is the calendar day of the expense (YYYY-MM-DD). Optional.
	Date string `json:"date,omitempty"`

	// CreatedBy is the user id that recorded the expense.
	CreatedBy string `json:"created_by,omitempty"`

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the Unix timestamp of the last edit.
	UpdatedAt int64 `json:"updated_at"`
}

// Validate checks the expense invariants and normalizes SharedBy so that
// duplicates are dropped while first-seen order is kept.
func (e *Expense) Validate() error {
	if e.GroupID == "" {
		return ErrMissingGroup
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if e.PaidBy == "" {
		return ErrMissingPayer
	}
	e.SharedBy = e.Sharers()
	if len(e.SharedBy) == 0 {
		return ErrEmptySharedBy
	}
	if e.Date != "" {
		if _, err := time.Parse(DateLayout, e.Date); err != nil {
			return ErrInvalidDate
		}
	}
	return nil
}

// Sharers returns SharedBy as a set: blanks and repeats dropped, first-seen
// order kept.
func (e *Expense) Sharers() []string {
	return dedupe(e.SharedBy)
}

// Share returns the equal share each sharer owes, at full precision. ok is
// false when there is nobody to share with.
func (e *Expense) Share() (share decimal.Decimal, ok bool) {
	n := len(e.Sharers())
	if n == 0 {
		return decimal.Zero, false
	}
	return e.Amount.Div(decimal.NewFromInt(int64(n))), true
}

// Participants returns the payer followed by every sharer, without duplicates.
func (e *Expense) Participants() []string {
	return dedupe(append([]string{e.PaidBy}, e.SharedBy...))
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
