// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/groupledger/internal/models"
)

// ErrNotFound is wrapped by every lookup of a record that does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for group ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateGroup persists a new group. ID and timestamps are assigned by the store.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group and its roster by ID.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups retrieves every group, newest first.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// ListGroupsForMember retrieves the groups whose roster contains userID.
	ListGroupsForMember(ctx context.Context, userID string) ([]*models.Group, error)

	// UpdateGroup replaces the name and roster of an existing group. It fails
	// with models.ErrMemberInUse if the new roster drops a member that an
	// expense or settlement refers to.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group with all of its expenses and settlements.
	DeleteGroup(ctx context.Context, groupID string) error

	ExpenseStore
	SettlementStore

	// Watch returns a channel of changes to the group's records. The channel
	// is closed when ctx is done or the store is closed.
	Watch(ctx context.Context, groupID string) <-chan Change

	// CloseWatchers closes every Watch channel while leaving the store usable.
	CloseWatchers()

	// Close releases any resources held by the store.
	Close() error
}

// ExpenseStore persists expenses. Writes fail with models.ErrNotMember when
// the payer or a sharer is not on the group's roster.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListExpensesByGroup retrieves a group's expenses, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error)
}

// SettlementStore persists settlements. Writes fail with models.ErrNotMember
// when either party is not on the group's roster.
type SettlementStore interface {
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)
	UpdateSettlement(ctx context.Context, settlement *models.Settlement) error
	DeleteSettlement(ctx context.Context, settlementID string) error

	// ListSettlementsByGroup retrieves a group's settlements, newest first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]models.Settlement, error)
}
