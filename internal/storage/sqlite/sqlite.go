// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/groupledger/internal/metrics"
	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// watchBuffer is the per-watcher change buffer.
const watchBuffer = 16

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	broker *storage.Broker
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Foreign keys are a per-connection setting, so they go in the DSN
	// rather than a one-off PRAGMA on whichever connection runs first.
	dsn := "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db, broker: storage.NewBroker(watchBuffer)}, nil
}

// CloseWatchers ends every watch stream. Reads and writes keep working.
func (s *SQLiteStore) CloseWatchers() {
	s.broker.Close()
}

// Close closes every watcher and the database connection.
func (s *SQLiteStore) Close() error {
	s.broker.Close()
	return s.db.Close()
}

// Watch subscribes to committed changes of one group.
func (s *SQLiteStore) Watch(ctx context.Context, groupID string) <-chan storage.Change {
	return s.broker.Watch(ctx, groupID)
}

// publish announces a committed mutation.
func (s *SQLiteStore) publish(groupID string, kind storage.RecordKind, op storage.Op, recordID string) {
	metrics.RecordMutations.WithLabelValues(string(kind), string(op)).Inc()
	s.broker.Publish(storage.Change{GroupID: groupID, Kind: kind, Op: op, RecordID: recordID})
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %s", storage.ErrNotFound, kind, id)
}

// CreateGroup persists a new group and its roster.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	// Generate ID if not set
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if group.CreatedAt == 0 {
		group.CreatedAt = now
	}
	group.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)",
		group.ID, group.Name, group.CreatedAt, group.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	if err := insertMembers(ctx, tx, group.ID, group.Members); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.publish(group.ID, storage.KindGroup, storage.OpCreate, group.ID)
	return nil
}

func insertMembers(ctx context.Context, tx *sql.Tx, groupID string, members []models.Member) error {
	for i, m := range members {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO group_members (group_id, user_id, name, position) VALUES (?, ?, ?, ?)",
			groupID, m.UserID, m.Name, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
	}
	return nil
}

// GetGroup retrieves a group by ID, including its roster in order.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &group.CreatedAt, &group.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("group", groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	members, err := s.membersByGroup(ctx, "WHERE group_id = ?", groupID)
	if err != nil {
		return nil, err
	}
	group.Members = members[groupID]

	return group, nil
}

// ListGroups retrieves all groups, newest first.
func (s *SQLiteStore) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return s.listGroups(ctx,
		"SELECT id, name, created_at, updated_at FROM groups ORDER BY created_at DESC, rowid DESC",
	)
}

// ListGroupsForMember retrieves the groups whose roster contains userID.
func (s *SQLiteStore) ListGroupsForMember(ctx context.Context, userID string) ([]*models.Group, error) {
	return s.listGroups(ctx,
		`SELECT g.id, g.name, g.created_at, g.updated_at
		 FROM groups g JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = ?
		 ORDER BY g.created_at DESC, g.rowid DESC`,
		userID,
	)
}

func (s *SQLiteStore) listGroups(ctx context.Context, query string, args ...any) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.CreatedAt, &group.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	rows.Close()

	if len(groups) == 0 {
		return groups, nil
	}

	// One query for every roster rather than one per group.
	members, err := s.membersByGroup(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		g.Members = members[g.ID]
	}

	return groups, nil
}

// membersByGroup loads rosters keyed by group id. where filters group_members.
func (s *SQLiteStore) membersByGroup(ctx context.Context, where string, args ...any) (map[string][]models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT group_id, user_id, name FROM group_members "+where+" ORDER BY group_id, position",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	members := make(map[string][]models.Member)
	for rows.Next() {
		var groupID string
		var m models.Member
		if err := rows.Scan(&groupID, &m.UserID, &m.Name); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members[groupID] = append(members[groupID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

// UpdateGroup replaces the name and roster of an existing group.
func (s *SQLiteStore) UpdateGroup(ctx context.Context, group *models.Group) error {
	group.UpdatedAt = time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"UPDATE groups SET name = ?, updated_at = ? WHERE id = ?",
		group.Name, group.UpdatedAt, group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	} else if n == 0 {
		return notFound("group", group.ID)
	}

	// The UPDATE above holds the write lock, so no record can start referring
	// to a member between this check and the commit.
	referenced, err := referencedMemberIDs(ctx, tx, group.ID)
	if err != nil {
		return err
	}
	for _, id := range referenced {
		if !group.HasMember(id) {
			return fmt.Errorf("%w: %s", models.ErrMemberInUse, id)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM group_members WHERE group_id = ?", group.ID); err != nil {
		return fmt.Errorf("failed to clear members: %w", err)
	}
	if err := insertMembers(ctx, tx, group.ID, group.Members); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.publish(group.ID, storage.KindGroup, storage.OpUpdate, group.ID)
	return nil
}

// DeleteGroup removes a group. Members, expenses and settlements cascade.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return notFound("group", groupID)
	}

	s.publish(groupID, storage.KindGroup, storage.OpDelete, groupID)
	return nil
}

// querier is implemented by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// referencedMemberIDs returns the user ids used by the group's expenses and
// settlements, sorted.
func referencedMemberIDs(ctx context.Context, q querier, groupID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT paid_by FROM expenses WHERE group_id = ?
		 UNION SELECT sh.user_id FROM expense_shares sh JOIN expenses e ON e.id = sh.expense_id WHERE e.group_id = ?
		 UNION SELECT from_user_id FROM settlements WHERE group_id = ?
		 UNION SELECT to_user_id FROM settlements WHERE group_id = ?
		 ORDER BY 1`,
		groupID, groupID, groupID, groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get referenced members: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan referenced member: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate referenced members: %w", err)
	}

	return ids, nil
}

// requireMembers fails with models.ErrNotMember unless every id is on the
// group's roster. It runs inside a transaction that already holds the write
// lock, so the roster cannot change before the commit.
func requireMembers(ctx context.Context, tx *sql.Tx, groupID string, ids ...string) error {
	rows, err := tx.QueryContext(ctx, "SELECT user_id FROM group_members WHERE group_id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	roster := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan member: %w", err)
		}
		roster[id] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate members: %w", err)
	}

	for _, id := range ids {
		if !roster[id] {
			return fmt.Errorf("%w: %s", models.ErrNotMember, id)
		}
	}
	return nil
}

// checkInserted turns a conditional insert that matched no group into ErrNotFound.
func checkInserted(result sql.Result, groupID string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check insert result: %w", err)
	}
	if n == 0 {
		return notFound("group", groupID)
	}
	return nil
}
