package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/storage"
)

const settlementColumns = "id, group_id, from_user_id, to_user_id, amount, note, created_by, created_at, updated_at"

// CreateSettlement persists a new settlement to the database. The group must
// exist and list both parties.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	// Generate ID if not set
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = now
	}
	settlement.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO settlements (`+settlementColumns+`)
		 SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?
		 WHERE EXISTS (SELECT 1 FROM groups WHERE id = ?)`,
		settlement.ID, settlement.GroupID, settlement.FromUserID, settlement.ToUserID,
		settlement.Amount, optional(settlement.Note), nullable(settlement.CreatedBy),
		settlement.CreatedAt, settlement.UpdatedAt,
		settlement.GroupID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	if err := checkInserted(result, settlement.GroupID); err != nil {
		return err
	}
	if err := requireMembers(ctx, tx, settlement.GroupID, settlement.FromUserID, settlement.ToUserID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.publish(settlement.GroupID, storage.KindSettlement, storage.OpCreate, settlement.ID)
	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	settlement, err := scanSettlement(s.db.QueryRowContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE id = ?",
		settlementID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("settlement", settlementID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	return &settlement, nil
}

// ListSettlementsByGroup retrieves all settlements for a group, newest first.
func (s *SQLiteStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE group_id = ? ORDER BY created_at DESC, rowid DESC",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements by group: %w", err)
	}
	defer rows.Close()

	var settlements []models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

// UpdateSettlement replaces the parties, amount and note of a settlement.
// Both parties must be on the group's roster.
func (s *SQLiteStore) UpdateSettlement(ctx context.Context, settlement *models.Settlement) error {
	settlement.UpdatedAt = time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE settlements SET from_user_id = ?, to_user_id = ?, amount = ?, note = ?, updated_at = ?
		 WHERE id = ? AND group_id = ?`,
		settlement.FromUserID, settlement.ToUserID, settlement.Amount, optional(settlement.Note),
		settlement.UpdatedAt, settlement.ID, settlement.GroupID,
	)
	if err != nil {
		return fmt.Errorf("failed to update settlement: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return notFound("settlement", settlement.ID)
	}
	if err := requireMembers(ctx, tx, settlement.GroupID, settlement.FromUserID, settlement.ToUserID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.publish(settlement.GroupID, storage.KindSettlement, storage.OpUpdate, settlement.ID)
	return nil
}

// DeleteSettlement removes a settlement by ID.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, settlementID string) error {
	// Check if settlement exists
	var groupID string
	err := s.db.QueryRowContext(ctx, "SELECT group_id FROM settlements WHERE id = ?", settlementID).Scan(&groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("settlement", settlementID)
	}
	if err != nil {
		return fmt.Errorf("failed to check settlement existence: %w", err)
	}

	// Delete settlement
	_, err = s.db.ExecContext(ctx, "DELETE FROM settlements WHERE id = ?", settlementID)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}

	s.publish(groupID, storage.KindSettlement, storage.OpDelete, settlementID)
	return nil
}

// optional maps a nil pointer to NULL and keeps any other value, "" included.
func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func scanSettlement(row scanner) (models.Settlement, error) {
	var st models.Settlement
	var note, createdBy sql.NullString
	err := row.Scan(&st.ID, &st.GroupID, &st.FromUserID, &st.ToUserID, &st.Amount,
		&note, &createdBy, &st.CreatedAt, &st.UpdatedAt)
	if note.Valid {
		st.Note = &note.String
	}
	st.CreatedBy = createdBy.String
	return st, err
}
