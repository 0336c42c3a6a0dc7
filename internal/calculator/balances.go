// Package calculator turns raw expense and settlement records into member
// balances and suggested settle-up payments.
//
// Everything here is a pure function of its inputs. Nothing is cached or
// retained between calls, so the same snapshot always yields the same result
// and concurrent calls for different groups never share state.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/groupledger/internal/models"
)

// MemberBalance is the ledger entry for one group member.
type MemberBalance struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`

	// Paid is the total this member fronted across all expenses.
	Paid decimal.Decimal `json:"paid"`

	// Owes is the sum of this member's equal shares across all expenses.
	Owes decimal.Decimal `json:"owes"`

	// Balance is Paid - Owes, adjusted by settlements.
	// Positive = owed money by the group, negative = owes the group.
	Balance decimal.Decimal `json:"balance"`
}

// Status classifies the balance using Tolerance.
func (b MemberBalance) Status() Status {
	switch {
	case b.Balance.GreaterThan(Tolerance):
		return StatusCreditor
	case b.Balance.LessThan(Tolerance.Neg()):
		return StatusDebtor
	default:
		return StatusSettled
	}
}

// Balances holds one entry per member, in roster order.
type Balances []MemberBalance

// Lookup returns the entry for userID.
func (b Balances) Lookup(userID string) (MemberBalance, bool) {
	for _, mb := range b {
		if mb.UserID == userID {
			return mb, true
		}
	}
	return MemberBalance{}, false
}

// Net returns the sum of every member's balance. For records that only
// reference known members this is zero up to division precision.
func (b Balances) Net() decimal.Decimal {
	sum := decimal.Zero
	for _, mb := range b {
		sum = sum.Add(mb.Balance)
	}
	return sum
}

// SkipKind names the kind of record that was skipped.
type SkipKind string

const (
	SkipExpense    SkipKind = "expense"
	SkipSettlement SkipKind = "settlement"
	SkipMember     SkipKind = "member"
)

// Skip reasons.
const (
	ReasonInvalidAmount   = "invalid_amount"
	ReasonMissingPayer    = "missing_payer"
	ReasonEmptySharedBy   = "empty_shared_by"
	ReasonUnknownPayer    = "unknown_payer"
	ReasonUnknownSharer   = "unknown_sharer"
	ReasonMissingParty    = "missing_party"
	ReasonSelfSettlement  = "self_settlement"
	ReasonUnknownFrom     = "unknown_from"
	ReasonUnknownTo       = "unknown_to"
	ReasonDuplicateMember = "duplicate_member"
)

// Skip records a record (or part of one) the engine could not fold. Skips
// never change the computed numbers; they only make them explainable.
type Skip struct {
	Kind     SkipKind `json:"kind"`
	RecordID string   `json:"record_id,omitempty"`
	UserID   string   `json:"user_id,omitempty"`
	Reason   string   `json:"reason"`
}

// Result is the output of ComputeBalances.
type Result struct {
	Balances Balances `json:"balances"`
	Skipped  []Skip   `json:"skipped,omitempty"`
}

// ledger is the working state of one fold.
type ledger struct {
	entries Balances
	index   map[string]int
	skipped []Skip
}

// lookup returns the entry for userID, or nil for an id outside the roster.
func (l *ledger) lookup(userID string) *MemberBalance {
	i, ok := l.index[userID]
	if !ok {
		return nil
	}
	return &l.entries[i]
}

func (l *ledger) skip(kind SkipKind, recordID, userID, reason string) {
	l.skipped = append(l.skipped, Skip{Kind: kind, RecordID: recordID, UserID: userID, Reason: reason})
}

// ComputeBalances folds expenses and settlements into one balance per member.
//
// Algorithm:
//   - Every member starts at zero, whether or not they have any activity
//   - For each expense: payer Paid += amount, each sharer Owes += amount/|sharers|
//   - Balance = Paid - Owes
//   - For each settlement: payer's Balance += amount, receiver's Balance -= amount
//
// Ids outside members are lookup misses and are skipped, as are expenses with
// no sharers or a non-positive amount. The result does not depend on the
// order of expenses or settlements.
func ComputeBalances(expenses []models.Expense, settlements []models.Settlement, members []models.Member) Result {
	l := &ledger{
		entries: make(Balances, 0, len(members)),
		index:   make(map[string]int, len(members)),
	}

	for _, m := range members {
		if _, exists := l.index[m.UserID]; exists {
			l.skip(SkipMember, "", m.UserID, ReasonDuplicateMember)
			continue
		}
		l.index[m.UserID] = len(l.entries)
		l.entries = append(l.entries, MemberBalance{
			UserID:  m.UserID,
			Name:    m.DisplayName(),
			Paid:    decimal.Zero,
			Owes:    decimal.Zero,
			Balance: decimal.Zero,
		})
	}

	for i := range expenses {
		l.foldExpense(&expenses[i])
	}

	for i := range l.entries {
		l.entries[i].Balance = l.entries[i].Paid.Sub(l.entries[i].Owes)
	}

	for i := range settlements {
		l.foldSettlement(&settlements[i])
	}

	return Result{Balances: l.entries, Skipped: l.skipped}
}

func (l *ledger) foldExpense(e *models.Expense) {
	if !e.Amount.IsPositive() {
		l.skip(SkipExpense, e.ID, "", ReasonInvalidAmount)
		return
	}
	if e.PaidBy == "" {
		l.skip(SkipExpense, e.ID, "", ReasonMissingPayer)
		return
	}
	share, ok := e.Share()
	if !ok {
		l.skip(SkipExpense, e.ID, "", ReasonEmptySharedBy)
		return
	}

	if payer := l.lookup(e.PaidBy); payer != nil {
		payer.Paid = payer.Paid.Add(e.Amount)
	} else {
		l.skip(SkipExpense, e.ID, e.PaidBy, ReasonUnknownPayer)
	}

	for _, sharer := range e.Sharers() {
		if mb := l.lookup(sharer); mb != nil {
			mb.Owes = mb.Owes.Add(share)
		} else {
			l.skip(SkipExpense, e.ID, sharer, ReasonUnknownSharer)
		}
	}
}

func (l *ledger) foldSettlement(s *models.Settlement) {
	if !s.Amount.IsPositive() {
		l.skip(SkipSettlement, s.ID, "", ReasonInvalidAmount)
		return
	}
	if s.FromUserID == "" || s.ToUserID == "" {
		l.skip(SkipSettlement, s.ID, "", ReasonMissingParty)
		return
	}
	if s.FromUserID == s.ToUserID {
		l.skip(SkipSettlement, s.ID, s.FromUserID, ReasonSelfSettlement)
		return
	}

	// The payer effectively pre-paid part of what they owed.
	if from := l.lookup(s.FromUserID); from != nil {
		from.Balance = from.Balance.Add(s.Amount)
	} else {
		l.skip(SkipSettlement, s.ID, s.FromUserID, ReasonUnknownFrom)
	}

	// The receiver's claim shrinks by what they already collected.
	if to := l.lookup(s.ToUserID); to != nil {
		to.Balance = to.Balance.Sub(s.Amount)
	} else {
		l.skip(SkipSettlement, s.ID, s.ToUserID, ReasonUnknownTo)
	}
}
