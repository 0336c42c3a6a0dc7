package calculator

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Tolerance is the threshold at or below which a balance counts as settled.
var Tolerance = decimal.New(1, -2)

// Status is a member's position relative to the group.
type Status string

const (
	StatusCreditor Status = "creditor" // is owed money
	StatusDebtor   Status = "debtor"   // owes money
	StatusSettled  Status = "settled"
)

// Classification partitions balances by Status.
type Classification struct {
	// Creditors sorted by balance, largest first.
	Creditors []MemberBalance `json:"creditors"`
	// Debtors sorted by balance, most negative first.
	Debtors []MemberBalance `json:"debtors"`
	// Settled in roster order.
	Settled []MemberBalance `json:"settled"`
}

// AllSettled reports whether nobody owes or is owed beyond Tolerance.
func (c Classification) AllSettled() bool {
	return len(c.Creditors) == 0 && len(c.Debtors) == 0
}

// Classify splits balances into creditors, debtors and settled members.
// Sorting is stable, so equal balances keep roster order.
func Classify(balances Balances) Classification {
	var c Classification
	for _, mb := range balances {
		switch mb.Status() {
		case StatusCreditor:
			c.Creditors = append(c.Creditors, mb)
		case StatusDebtor:
			c.Debtors = append(c.Debtors, mb)
		default:
			c.Settled = append(c.Settled, mb)
		}
	}

	sort.SliceStable(c.Creditors, func(i, j int) bool {
		return c.Creditors[i].Balance.GreaterThan(c.Creditors[j].Balance)
	})
	sort.SliceStable(c.Debtors, func(i, j int) bool {
		return c.Debtors[i].Balance.LessThan(c.Debtors[j].Balance)
	})

	return c
}

// SuggestedSettlement is one payment that moves the group towards zero.
type SuggestedSettlement struct {
	From     string          `json:"from"`
	FromName string          `json:"from_name"`
	To       string          `json:"to"`
	ToName   string          `json:"to_name"`
	Amount   decimal.Decimal `json:"amount"`
}

// position is a creditor or debtor with the amount still to be matched.
type position struct {
	userID    string
	name      string
	remaining decimal.Decimal
}

// Simplify suggests payments that bring every balance to (approximately) zero.
//
// Greedy algorithm: repeatedly match the largest remaining debtor with the
// largest remaining creditor for the smaller of the two amounts, and drop
// whichever side is exhausted. Every step exhausts at least one side, so at
// most len(creditors)+len(debtors)-1 payments are emitted. This is not always
// the minimum number of payments, but it is deterministic for a given input.
func Simplify(balances Balances) []SuggestedSettlement {
	c := Classify(balances)

	creditors := make([]position, len(c.Creditors))
	for i, mb := range c.Creditors {
		creditors[i] = position{userID: mb.UserID, name: mb.Name, remaining: mb.Balance}
	}
	debtors := make([]position, len(c.Debtors))
	for i, mb := range c.Debtors {
		debtors[i] = position{userID: mb.UserID, name: mb.Name, remaining: mb.Balance.Abs()}
	}

	var suggestions []SuggestedSettlement
	for len(creditors) > 0 && len(debtors) > 0 {
		creditor := &creditors[0]
		debtor := &debtors[0]

		amount := decimal.Min(creditor.remaining, debtor.remaining)
		suggestions = append(suggestions, SuggestedSettlement{
			From:     debtor.userID,
			FromName: debtor.name,
			To:       creditor.userID,
			ToName:   creditor.name,
			Amount:   amount,
		})

		creditor.remaining = creditor.remaining.Sub(amount)
		debtor.remaining = debtor.remaining.Sub(amount)

		if creditor.remaining.LessThanOrEqual(Tolerance) {
			creditors = creditors[1:]
		}
		if debtor.remaining.LessThanOrEqual(Tolerance) {
			debtors = debtors[1:]
		}
	}

	return suggestions
}
