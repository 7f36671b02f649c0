package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/veridata/mdm/internal/core/model"
)

// SQLiteStore persists entity records and the audit trail. Records are only
// ever soft-deleted: the active flag flips, the row stays.
type SQLiteStore struct {
	db    *sql.DB
	specs map[string]model.FieldSpec
}

// Open opens (creating if needed) the database at path and initializes the
// schema. WAL mode keeps detection reads cheap while merges write.
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Printf("Opened store at %s", path)
	return &SQLiteStore{db: db, specs: model.DefaultSpecs()}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) spec(collection string) (model.FieldSpec, error) {
	spec, ok := s.specs[collection]
	if !ok {
		return model.FieldSpec{}, fmt.Errorf("%q: %w", collection, model.ErrUnknownCollection)
	}
	return spec, nil
}

// ListActive returns the active records of a collection ordered by id,
// restricted to the fields its field spec declares.
func (s *SQLiteStore) ListActive(ctx context.Context, collection string) ([]model.EntityRecord, error) {
	spec, err := s.spec(collection)
	if err != nil {
		return nil, err
	}

	cols := spec.Names()
	query := fmt.Sprintf("SELECT id, active, %s FROM %s WHERE active = 1 ORDER BY id",
		strings.Join(cols, ", "), collection)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	var records []model.EntityRecord
	for rows.Next() {
		rec, err := scanRecord(rows, cols)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", collection, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", collection, err)
	}
	return records, nil
}

func (s *SQLiteStore) CountActive(ctx context.Context, collection string) (int, error) {
	if _, err := s.spec(collection); err != nil {
		return 0, err
	}
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE active = 1", collection)
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return n, nil
}

// GetRecord fetches one record regardless of its active state.
func (s *SQLiteStore) GetRecord(ctx context.Context, collection string, id int64) (*model.EntityRecord, error) {
	spec, err := s.spec(collection)
	if err != nil {
		return nil, err
	}
	return getRecord(ctx, s.db, collection, spec.Names(), id, false)
}

// CreateRecord inserts a new active record and its INSERT audit entry in one
// transaction, returning the new id.
func (s *SQLiteStore) CreateRecord(ctx context.Context, collection string, fields map[string]string, actor string) (int64, error) {
	spec, err := s.spec(collection)
	if err != nil {
		return 0, err
	}

	cols := spec.Names()
	placeholders := make([]string, 0, len(cols)+2)
	args := make([]interface{}, 0, len(cols)+2)
	for _, c := range cols {
		placeholders = append(placeholders, "?")
		args = append(args, fields[c])
	}
	args = append(args, actor, actor)

	var id int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		query := fmt.Sprintf("INSERT INTO %s (%s, created_by, updated_by) VALUES (%s, ?, ?)",
			collection, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert into %s: %w", collection, err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read inserted id: %w", err)
		}
		return appendAudit(ctx, tx, model.AuditEntry{
			ID:         uuid.NewString(),
			Collection: collection,
			RecordID:   id,
			Operation:  model.OpInsert,
			After:      fieldsDelta(cols, fields),
			Actor:      actor,
			At:         time.Now().UTC(),
		})
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateRecord overwrites the declared fields of a record and writes the
// UPDATE audit entry with the before/after deltas in the same transaction.
func (s *SQLiteStore) UpdateRecord(ctx context.Context, collection string, id int64, fields map[string]string, actor string) error {
	spec, err := s.spec(collection)
	if err != nil {
		return err
	}
	cols := spec.Names()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		before, err := getRecord(ctx, tx, collection, cols, id, false)
		if err != nil {
			return err
		}
		if before == nil {
			return sql.ErrNoRows
		}

		setClauses := make([]string, 0, len(cols))
		args := make([]interface{}, 0, len(cols)+2)
		for _, c := range cols {
			setClauses = append(setClauses, c+" = ?")
			args = append(args, fields[c])
		}
		args = append(args, actor, id)

		query := fmt.Sprintf("UPDATE %s SET %s, updated_at = CURRENT_TIMESTAMP, updated_by = ? WHERE id = ?",
			collection, strings.Join(setClauses, ", "))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to update %s/%d: %w", collection, id, err)
		}
		return appendAudit(ctx, tx, model.AuditEntry{
			ID:         uuid.NewString(),
			Collection: collection,
			RecordID:   id,
			Operation:  model.OpUpdate,
			Before:     fieldsDelta(cols, before.Fields),
			After:      fieldsDelta(cols, fields),
			Actor:      actor,
			At:         time.Now().UTC(),
		})
	})
}

// DeleteRecord soft-deletes a record and writes the DELETE audit entry in the
// same transaction.
func (s *SQLiteStore) DeleteRecord(ctx context.Context, collection string, id int64, actor string) error {
	spec, err := s.spec(collection)
	if err != nil {
		return err
	}
	cols := spec.Names()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		before, err := getRecord(ctx, tx, collection, cols, id, true)
		if err != nil {
			return err
		}
		if before == nil {
			return sql.ErrNoRows
		}
		if err := deactivate(ctx, tx, collection, id, actor); err != nil {
			return err
		}
		return appendAudit(ctx, tx, model.AuditEntry{
			ID:         uuid.NewString(),
			Collection: collection,
			RecordID:   id,
			Operation:  model.OpDelete,
			Before:     fieldsDelta(cols, before.Fields),
			Actor:      actor,
			At:         time.Now().UTC(),
		})
	})
}

// WithTx runs fn against a transactional view of the store. Any error from fn
// rolls the whole transaction back.
func (s *SQLiteStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return fn(&sqliteTx{tx: tx, specs: s.specs})
	})
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// sqliteTx scopes the merge mutations to one sql transaction.
type sqliteTx struct {
	tx    *sql.Tx
	specs map[string]model.FieldSpec
}

func (t *sqliteTx) GetActive(ctx context.Context, collection string, id int64) (*model.EntityRecord, error) {
	spec, ok := t.specs[collection]
	if !ok {
		return nil, fmt.Errorf("%q: %w", collection, model.ErrUnknownCollection)
	}
	return getRecord(ctx, t.tx, collection, spec.Names(), id, true)
}

func (t *sqliteTx) Deactivate(ctx context.Context, collection string, id int64, actor string) error {
	if _, ok := t.specs[collection]; !ok {
		return fmt.Errorf("%q: %w", collection, model.ErrUnknownCollection)
	}
	return deactivate(ctx, t.tx, collection, id, actor)
}

func (t *sqliteTx) AppendAudit(ctx context.Context, entry model.AuditEntry) error {
	return appendAudit(ctx, t.tx, entry)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func getRecord(ctx context.Context, q querier, collection string, cols []string, id int64, activeOnly bool) (*model.EntityRecord, error) {
	query := fmt.Sprintf("SELECT id, active, %s FROM %s WHERE id = ?", strings.Join(cols, ", "), collection)
	if activeOnly {
		query += " AND active = 1"
	}
	row := q.QueryRowContext(ctx, query, id)
	rec, err := scanRecord(row, cols)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%d: %w", collection, id, err)
	}
	return &rec, nil
}

func deactivate(ctx context.Context, q querier, collection string, id int64, actor string) error {
	query := fmt.Sprintf("UPDATE %s SET active = 0, updated_at = CURRENT_TIMESTAMP, updated_by = ? WHERE id = ? AND active = 1", collection)
	res, err := q.ExecContext(ctx, query, actor, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate %s/%d: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deactivation of %s/%d: %w", collection, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s/%d: %w", collection, id, sql.ErrNoRows)
	}
	return nil
}

func appendAudit(ctx context.Context, q querier, entry model.AuditEntry) error {
	before, err := marshalDelta(entry.Before)
	if err != nil {
		return err
	}
	after, err := marshalDelta(entry.After)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		"INSERT INTO audit_log (id, collection, record_id, operation, before_data, after_data, actor, at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		entry.ID, entry.Collection, entry.RecordID, string(entry.Operation), before, after, entry.Actor,
		entry.At.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func marshalDelta(delta map[string]interface{}) (interface{}, error) {
	if delta == nil {
		return nil, nil
	}
	data, err := json.Marshal(delta)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audit delta: %w", err)
	}
	return string(data), nil
}

func fieldsDelta(cols []string, fields map[string]string) map[string]interface{} {
	delta := make(map[string]interface{}, len(cols))
	for _, c := range cols {
		delta[c] = fields[c]
	}
	return delta
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(sc scanner, cols []string) (model.EntityRecord, error) {
	var (
		id     int64
		active bool
	)
	values := make([]sql.NullString, len(cols))
	dest := make([]interface{}, 0, len(cols)+2)
	dest = append(dest, &id, &active)
	for i := range values {
		dest = append(dest, &values[i])
	}
	if err := sc.Scan(dest...); err != nil {
		return model.EntityRecord{}, err
	}

	fields := make(map[string]string, len(cols))
	for i, c := range cols {
		fields[c] = values[i].String
	}
	return model.EntityRecord{ID: id, Fields: fields, Active: active}, nil
}
