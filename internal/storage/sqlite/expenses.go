package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/storage"
)

const expenseColumns = "id, group_id, description, amount, paid_by, date, created_by, created_at, updated_at"

// CreateExpense persists a new expense with its sharers. The group must exist
// and list the payer and every sharer.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	// Generate ID if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	expense.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`)
		 SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?
		 WHERE EXISTS (SELECT 1 FROM groups WHERE id = ?)`,
		expense.ID, expense.GroupID, expense.Description, expense.Amount, expense.PaidBy,
		nullable(expense.Date), nullable(expense.CreatedBy), expense.CreatedAt, expense.UpdatedAt,
		expense.GroupID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	if err := checkInserted(result, expense.GroupID); err != nil {
		return err
	}

	if err := insertShares(ctx, tx, expense.ID, expense.SharedBy); err != nil {
		return err
	}
	if err := requireMembers(ctx, tx, expense.GroupID, expense.Participants()...); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.publish(expense.GroupID, storage.KindExpense, storage.OpCreate, expense.ID)
	return nil
}

func insertShares(ctx context.Context, tx *sql.Tx, expenseID string, sharedBy []string) error {
	for i, userID := range sharedBy {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, user_id, position) VALUES (?, ?, ?)",
			expenseID, userID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense share: %w", err)
		}
	}
	return nil
}

// GetExpense retrieves an expense by ID.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?",
		expenseID,
	)
	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("expense", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	shares, err := s.sharesByExpense(ctx, "WHERE expense_id = ?", expenseID)
	if err != nil {
		return nil, err
	}
	expense.SharedBy = shares[expense.ID]

	return &expense, nil
}

// ListExpensesByGroup retrieves a group's expenses, newest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE group_id = ? ORDER BY created_at DESC, rowid DESC",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	rows.Close()

	if len(expenses) == 0 {
		return expenses, nil
	}

	shares, err := s.sharesByExpense(ctx,
		"WHERE expense_id IN (SELECT id FROM expenses WHERE group_id = ?)", groupID)
	if err != nil {
		return nil, err
	}
	for i := range expenses {
		expenses[i].SharedBy = shares[expenses[i].ID]
	}

	return expenses, nil
}

// sharesByExpense loads sharers keyed by expense id. where filters expense_shares.
func (s *SQLiteStore) sharesByExpense(ctx context.Context, where string, args ...any) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT expense_id, user_id FROM expense_shares "+where+" ORDER BY expense_id, position",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense shares: %w", err)
	}
	defer rows.Close()

	shares := make(map[string][]string)
	for rows.Next() {
		var expenseID, userID string
		if err := rows.Scan(&expenseID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan expense share: %w", err)
		}
		shares[expenseID] = append(shares[expenseID], userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense shares: %w", err)
	}

	return shares, nil
}

// UpdateExpense replaces the editable fields and sharers of an expense.
// The owning group cannot change, and must list the payer and every sharer.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.UpdatedAt = time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE expenses SET description = ?, amount = ?, paid_by = ?, date = ?, updated_at = ?
		 WHERE id = ? AND group_id = ?`,
		expense.Description, expense.Amount, expense.PaidBy, nullable(expense.Date), expense.UpdatedAt,
		expense.ID, expense.GroupID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	} else if n == 0 {
		return notFound("expense", expense.ID)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_shares WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to clear expense shares: %w", err)
	}
	if err := insertShares(ctx, tx, expense.ID, expense.SharedBy); err != nil {
		return err
	}
	if err := requireMembers(ctx, tx, expense.GroupID, expense.Participants()...); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.publish(expense.GroupID, storage.KindExpense, storage.OpUpdate, expense.ID)
	return nil
}

// DeleteExpense removes an expense by ID.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	var groupID string
	err := s.db.QueryRowContext(ctx, "SELECT group_id FROM expenses WHERE id = ?", expenseID).Scan(&groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("expense", expenseID)
	}
	if err != nil {
		return fmt.Errorf("failed to check expense existence: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	s.publish(groupID, storage.KindExpense, storage.OpDelete, expenseID)
	return nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (models.Expense, error) {
	var e models.Expense
	var date, createdBy sql.NullString
	err := row.Scan(&e.ID, &e.GroupID, &e.Description, &e.Amount, &e.PaidBy,
		&date, &createdBy, &e.CreatedAt, &e.UpdatedAt)
	e.Date = date.String
	e.CreatedBy = createdBy.String
	return e, err
}

// nullable maps "" to NULL.
func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
