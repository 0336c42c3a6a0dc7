// Package models defines the core domain records for Group Ledger.
//
// # Records
//
// The following records are persisted by the storage layer:
//   - Group: a named roster of Members
//   - Expense: one payment fronted by a member and shared equally by several
//   - Settlement: a direct "settle up" payment between two members
//
// Members are identified by a UserID that is unique within a group. It is
// either an external identity (an e-mail for verified accounts) or an opaque
// token generated by NewMemberID.
//
// # Validation
//
// Every record has a Validate method. Services call it at the system boundary
// so that malformed records never reach storage. The balance engine in
// package calculator does not depend on validation having happened; it skips
// anything it cannot fold.
//
// # Money
//
// Amounts are decimal.Decimal values. Nothing is rounded while folding;
// rounding to cents happens only when a value is formatted for display.
package models
