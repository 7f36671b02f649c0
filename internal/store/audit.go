package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/veridata/mdm/internal/core/model"
)

// AuditFilter narrows an audit history query. Zero values mean "any".
type AuditFilter struct {
	Collection string
	RecordID   int64
	Operation  model.OperationKind
	Limit      int
}

// AuditHistory returns audit entries newest first.
func (s *SQLiteStore) AuditHistory(ctx context.Context, filter AuditFilter) ([]model.AuditEntry, error) {
	query := "SELECT id, collection, record_id, operation, before_data, after_data, actor, at FROM audit_log WHERE 1=1"
	var args []interface{}
	if filter.Collection != "" {
		query += " AND collection = ?"
		args = append(args, filter.Collection)
	}
	if filter.RecordID != 0 {
		query += " AND record_id = ?"
		args = append(args, filter.RecordID)
	}
	if filter.Operation != "" {
		query += " AND operation = ?"
		args = append(args, string(filter.Operation))
	}
	query += " ORDER BY at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var (
			entry         model.AuditEntry
			op            string
			before, after sql.NullString
			actor         sql.NullString
			at            string
		)
		if err := rows.Scan(&entry.ID, &entry.Collection, &entry.RecordID, &op, &before, &after, &actor, &at); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entry.Operation = model.OperationKind(op)
		entry.Actor = actor.String
		if entry.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("failed to parse audit timestamp %q: %w", at, err)
		}
		if entry.Before, err = unmarshalDelta(before); err != nil {
			return nil, err
		}
		if entry.After, err = unmarshalDelta(after); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit rows: %w", err)
	}
	return entries, nil
}

// PurgeAuditBefore deletes audit entries older than cutoff and reports how
// many were removed. Retention policy lives in config.
func (s *SQLiteStore) PurgeAuditBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM audit_log WHERE at < ?",
		cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged audit rows: %w", err)
	}
	return n, nil
}

func unmarshalDelta(raw sql.NullString) (map[string]interface{}, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var delta map[string]interface{}
	if err := json.Unmarshal([]byte(raw.String), &delta); err != nil {
		return nil, fmt.Errorf("failed to decode audit delta: %w", err)
	}
	return delta, nil
}
