package models

import "github.com/shopspring/decimal"

// Settlement represents a direct payment between group members to clear debts.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string `json:"id"`

	// GroupID is the group this settlement belongs to.
	GroupID string `json:"group_id"`

	// FromUserID is the member who paid (debtor settling up).
	FromUserID string `json:"from_user_id"`

	// ToUserID is the member who received payment (creditor being paid).
	ToUserID string `json:"to_user_id"`

	// Amount is the payment amount. Always positive.
	Amount decimal.Decimal `json:"amount"`

	// Note is an optional description for the settlement.
	Note *string `json:"note,omitempty"`

	// CreatedBy is the user id that recorded this settlement.
	CreatedBy string `json:"created_by,omitempty"`

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the Unix timestamp of the last edit.
	UpdatedAt int64 `json:"updated_at"`
}

// Validate checks the settlement invariants.
func (s *Settlement) Validate() error {
	if s.GroupID == "" {
		return ErrMissingGroup
	}
	if s.FromUserID == "" || s.ToUserID == "" {
		return ErrMissingParty
	}
	if s.FromUserID == s.ToUserID {
		return ErrSelfSettlement
	}
	if !s.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// NoteText returns the note or "" when none was given.
func (s *Settlement) NoteText() string {
	if s.Note == nil {
		return ""
	}
	return *s.Note
}
