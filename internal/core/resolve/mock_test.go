package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/veridata/mdm/internal/core/model"
	"github.com/veridata/mdm/internal/store"
)

// fakeStore stages mutations inside WithTx and only applies them when fn
// succeeds, mirroring the rollback contract of the real store.
type fakeStore struct {
	records map[string]map[int64]*model.EntityRecord
	audits  []model.AuditEntry

	failAppend     bool
	failDeactivate bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]map[int64]*model.EntityRecord)}
}

func (f *fakeStore) add(collection string, id int64, active bool) {
	if f.records[collection] == nil {
		f.records[collection] = make(map[int64]*model.EntityRecord)
	}
	f.records[collection][id] = &model.EntityRecord{ID: id, Active: active, Fields: map[string]string{}}
}

func (f *fakeStore) ListActive(ctx context.Context, collection string) ([]model.EntityRecord, error) {
	var out []model.EntityRecord
	for _, r := range f.records[collection] {
		if r.Active {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) CountActive(ctx context.Context, collection string) (int, error) {
	recs, _ := f.ListActive(ctx, collection)
	return len(recs), nil
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx := &fakeTx{store: f}
	if err := fn(tx); err != nil {
		return err
	}
	// Commit: apply staged mutations.
	for _, id := range tx.deactivated {
		f.records[tx.collection][id].Active = false
	}
	f.audits = append(f.audits, tx.audits...)
	return nil
}

type fakeTx struct {
	store       *fakeStore
	collection  string
	deactivated []int64
	audits      []model.AuditEntry
}

func (t *fakeTx) GetActive(ctx context.Context, collection string, id int64) (*model.EntityRecord, error) {
	recs, ok := t.store.records[collection]
	if !ok {
		return nil, fmt.Errorf("%q: %w", collection, model.ErrUnknownCollection)
	}
	rec, ok := recs[id]
	if !ok || !rec.Active {
		return nil, nil
	}
	for _, d := range t.deactivated {
		if d == id {
			return nil, nil
		}
	}
	return rec, nil
}

func (t *fakeTx) Deactivate(ctx context.Context, collection string, id int64, actor string) error {
	if t.store.failDeactivate {
		return errors.New("store unavailable")
	}
	t.collection = collection
	t.deactivated = append(t.deactivated, id)
	return nil
}

func (t *fakeTx) AppendAudit(ctx context.Context, entry model.AuditEntry) error {
	if t.store.failAppend {
		return errors.New("audit log unavailable")
	}
	t.audits = append(t.audits, entry)
	return nil
}
