package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/groupledger/internal/models"
)

// PersonShare is one sharer's part of an expense.
type PersonShare struct {
	UserID string `json:"user_id"`

	// Share is the exact equal share, as folded by ComputeBalances.
	Share decimal.Decimal `json:"share"`

	// Display is Share in whole cents. The amount is rounded to cents first
	// and leftover cents go to the first sharers, so the Display values add
	// up to the amount rounded to cents. Share keeps any sub-cent part.
	Display decimal.Decimal `json:"display"`
}

// SplitExpense computes how much each sharer owes for one expense.
func SplitExpense(e models.Expense) ([]PersonShare, error) {
	if !e.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}
	sharers := e.Sharers()
	if len(sharers) == 0 {
		return nil, fmt.Errorf("must have at least one sharer")
	}

	share, _ := e.Share()
	n := int64(len(sharers))
	cents := e.Amount.Round(2).Shift(2).IntPart()
	base := cents / n
	remainder := cents % n

	shares := make([]PersonShare, len(sharers))
	for i, id := range sharers {
		c := base
		if int64(i) < remainder {
			c++
		}
		shares[i] = PersonShare{
			UserID:  id,
			Share:   share,
			Display: decimal.New(c, -2),
		}
	}
	return shares, nil
}

// FormatAmount renders a value with exactly two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
