// Package resolve executes operator-initiated merges: subordinate records are
// deactivated into a surviving master, atomically, with one audit entry per
// subordinate.
package resolve

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/veridata/mdm/internal/core/model"
	"github.com/veridata/mdm/internal/store"
)

// InvalidMergeError reports a merge decision that violates its preconditions.
// No mutation has happened when it is returned.
type InvalidMergeError struct {
	Reason     string
	Collection string
	RecordID   int64
}

func (e *InvalidMergeError) Error() string {
	if e.RecordID != 0 {
		return fmt.Sprintf("invalid merge on %s: %s (record %d)", e.Collection, e.Reason, e.RecordID)
	}
	return fmt.Sprintf("invalid merge on %s: %s", e.Collection, e.Reason)
}

// Engine performs merges against the store. Merge serialization and
// atomicity lean on the store's transaction; the engine itself keeps no
// state.
type Engine struct {
	store store.Store
	now   func() time.Time
}

func NewEngine(st store.Store) *Engine {
	return &Engine{store: st, now: func() time.Time { return time.Now().UTC() }}
}

// Merge deactivates every subordinate of the decision into the master record
// and writes one MERGE audit entry per subordinate, all inside a single
// transaction. Precondition violations return *InvalidMergeError before any
// side effect; a store failure partway through rolls everything back.
//
// Merge does not re-run detection; the caller decides when to re-check.
func (e *Engine) Merge(ctx context.Context, d model.MergeDecision) error {
	if len(d.SubordinateIDs) == 0 {
		return &InvalidMergeError{Collection: d.Collection, Reason: "no subordinate records"}
	}
	seen := make(map[int64]bool, len(d.SubordinateIDs))
	for _, id := range d.SubordinateIDs {
		if id == d.MasterID {
			return &InvalidMergeError{Collection: d.Collection, Reason: "master listed as subordinate", RecordID: id}
		}
		if seen[id] {
			return &InvalidMergeError{Collection: d.Collection, Reason: "duplicate subordinate id", RecordID: id}
		}
		seen[id] = true
	}

	return e.store.WithTx(ctx, func(tx store.Tx) error {
		master, err := tx.GetActive(ctx, d.Collection, d.MasterID)
		if err != nil {
			return fmt.Errorf("failed to resolve master record: %w", err)
		}
		if master == nil {
			return &InvalidMergeError{Collection: d.Collection, Reason: "master record not found or inactive", RecordID: d.MasterID}
		}

		// Validate every subordinate before touching any of them, so an
		// invalid id late in the list cannot leave earlier ones deactivated.
		for _, id := range d.SubordinateIDs {
			sub, err := tx.GetActive(ctx, d.Collection, id)
			if err != nil {
				return fmt.Errorf("failed to resolve subordinate record: %w", err)
			}
			if sub == nil {
				return &InvalidMergeError{Collection: d.Collection, Reason: "subordinate record not found or inactive", RecordID: id}
			}
		}

		at := e.now()
		for _, id := range d.SubordinateIDs {
			if err := tx.Deactivate(ctx, d.Collection, id, d.Initiator); err != nil {
				return fmt.Errorf("failed to deactivate %s/%d: %w", d.Collection, id, err)
			}
			entry := model.AuditEntry{
				ID:         uuid.NewString(),
				Collection: d.Collection,
				RecordID:   id,
				Operation:  model.OpMerge,
				Before:     map[string]interface{}{"active": true},
				After:      map[string]interface{}{"active": false, "merged_into": d.MasterID},
				Actor:      d.Initiator,
				At:         at,
			}
			if err := tx.AppendAudit(ctx, entry); err != nil {
				return fmt.Errorf("failed to record merge of %s/%d: %w", d.Collection, id, err)
			}
		}
		return nil
	})
}
