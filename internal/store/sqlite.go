package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmoralestech/todo-service/internal/model"

	_ "modernc.org/sqlite"
)

// InMemoryDSN keeps the database inside the process so nothing survives a
// restart, matching the behavior of the in-memory store.
const InMemoryDSN = ":memory:"

// SQLiteStore implements Store backed by SQLite via the pure-Go driver.
//
// A monotone seq column preserves insertion order. Timestamps are stored as
// RFC 3339 strings in UTC.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dsn and ensures the
// schema exists. Use InMemoryDSN for a process-local database.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = InMemoryDSN
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// An in-memory database exists per connection, so the pool must be
	// pinned to a single connection to see one coherent database.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS todos (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT NOT NULL UNIQUE,
		text       TEXT NOT NULL,
		completed  INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT
	);
	`
	_, err := s.db.Exec(schema)

	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}

	return s.db.Close()
}

// List returns a snapshot of all items in insertion order.
func (s *SQLiteStore) List(ctx context.Context) ([]model.Todo, error) {
	return s.ListFiltered(ctx, model.FilterAll)
}

// ListFiltered returns a snapshot of the items matching the filter.
func (s *SQLiteStore) ListFiltered(ctx context.Context, filter model.Filter) ([]model.Todo, error) {
	if _, err := model.ParseFilter(string(filter)); err != nil {
		return nil, err
	}

	query := `SELECT id, text, completed, created_at, updated_at FROM todos`
	switch filter {
	case model.FilterActive:
		query += ` WHERE completed = 0`
	case model.FilterCompleted:
		query += ` WHERE completed = 1`
	}
	query += ` ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	items := make([]model.Todo, 0)
	for rows.Next() {
		item, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	return items, nil
}

// Stats returns aggregate counts derived from the current collection.
func (s *SQLiteStore) Stats(ctx context.Context) (model.Stats, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN completed = 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN completed = 1 THEN 1 ELSE 0 END), 0)
		FROM todos`)

	var stats model.Stats
	if err := row.Scan(&stats.Total, &stats.Active, &stats.Completed); err != nil {
		return model.Stats{}, fmt.Errorf("todo stats: %w", err)
	}

	return stats, nil
}

// Get retrieves an item by its ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Todo, error) {
	if id == "" {
		return nil, ErrInvalidID
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, text, completed, created_at, updated_at FROM todos WHERE id = ?`, id)

	item, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}

	return &item, nil
}

// Create adds a new item with the given text and returns it.
func (s *SQLiteStore) Create(ctx context.Context, text string) (*model.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	item := model.Todo{
		ID:        uuid.New().String(),
		Text:      text,
		Completed: false,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO todos (id, text, completed, created_at) VALUES (?, ?, 0, ?)`,
		item.ID, item.Text, item.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}

	return &item, nil
}

// Update merges the supplied fields into an existing item.
func (s *SQLiteStore) Update(ctx context.Context, id string, req model.UpdateRequest) (*model.Todo, error) {
	if id == "" {
		return nil, ErrInvalidID
	}

	if req.IsEmpty() {
		return nil, ErrEmptyUpdate
	}

	if req.Text != nil && strings.TrimSpace(*req.Text) == "" {
		return nil, ErrEmptyText
	}

	return s.mutate(ctx, id, func(item *model.Todo) {
		if req.Text != nil {
			item.Text = strings.TrimSpace(*req.Text)
		}
		if req.Completed != nil {
			item.Completed = *req.Completed
		}
	})
}

// Toggle flips the completion state of an item.
func (s *SQLiteStore) Toggle(ctx context.Context, id string) (*model.Todo, error) {
	if id == "" {
		return nil, ErrInvalidID
	}

	return s.mutate(ctx, id, func(item *model.Todo) {
		item.Completed = !item.Completed
	})
}

// Delete removes an item by its ID and returns the removed ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", ErrInvalidID
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return "", fmt.Errorf("delete todo: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("delete todo: %w", err)
	}
	if affected == 0 {
		return "", ErrNotFound
	}

	return id, nil
}

// mutate applies fn to the stored item inside a transaction, stamping
// UpdatedAt. The read and the write share the transaction so the operation
// is atomic.
func (s *SQLiteStore) mutate(ctx context.Context, id string, fn func(*model.Todo)) (*model.Todo, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx,
		`SELECT id, text, completed, created_at, updated_at FROM todos WHERE id = ?`, id)

	item, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}

	fn(&item)
	now := time.Now().UTC()
	item.UpdatedAt = &now

	_, err = tx.ExecContext(ctx,
		`UPDATE todos SET text = ?, completed = ?, updated_at = ? WHERE id = ?`,
		item.Text, boolToInt(item.Completed), now.Format(time.RFC3339Nano), id)
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &item, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(sc scanner) (model.Todo, error) {
	var (
		item      model.Todo
		completed int
		createdAt string
		updatedAt sql.NullString
	)

	if err := sc.Scan(&item.ID, &item.Text, &completed, &createdAt, &updatedAt); err != nil {
		return model.Todo{}, err
	}

	item.Completed = completed != 0

	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.Todo{}, fmt.Errorf("parse created_at: %w", err)
	}
	item.CreatedAt = created

	if updatedAt.Valid {
		updated, err := time.Parse(time.RFC3339Nano, updatedAt.String)
		if err != nil {
			return model.Todo{}, fmt.Errorf("parse updated_at: %w", err)
		}
		item.UpdatedAt = &updated
	}

	return item, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
