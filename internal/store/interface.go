package store

import (
	"context"

	"github.com/veridata/mdm/internal/core/model"
)

// Store is the surface the detection and resolution engines consume. The
// SQLite implementation below backs it in production; tests substitute fakes.
type Store interface {
	// ListActive returns the active records of a collection restricted to its
	// declared fields, ordered ascending by id.
	ListActive(ctx context.Context, collection string) ([]model.EntityRecord, error)
	CountActive(ctx context.Context, collection string) (int, error)
	// WithTx runs fn inside a single transaction. If fn returns an error the
	// transaction rolls back in full, otherwise it commits.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes the mutations that must share one atomic boundary: a
// deactivation is never committed without its audit entry.
type Tx interface {
	GetActive(ctx context.Context, collection string, id int64) (*model.EntityRecord, error)
	Deactivate(ctx context.Context, collection string, id int64, actor string) error
	AppendAudit(ctx context.Context, entry model.AuditEntry) error
}
