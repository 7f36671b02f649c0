package detect

import (
	"context"
	"errors"

	"github.com/veridata/mdm/internal/core/model"
	"github.com/veridata/mdm/internal/store"
)

// fakeStore serves fixed snapshots to the grouper.
type fakeStore struct {
	records map[string][]model.EntityRecord
	err     error
}

func (f *fakeStore) ListActive(ctx context.Context, collection string) ([]model.EntityRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records[collection], nil
}

func (f *fakeStore) CountActive(ctx context.Context, collection string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return len(f.records[collection]), nil
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return errors.New("fakeStore does not support transactions")
}

func customer(id int64, name, taxID, email string) model.EntityRecord {
	return model.EntityRecord{
		ID:     id,
		Active: true,
		Fields: map[string]string{"name": name, "tax_id": taxID, "email": email},
	}
}

func product(id int64, name, code, category string) model.EntityRecord {
	return model.EntityRecord{
		ID:     id,
		Active: true,
		Fields: map[string]string{"name": name, "code": code, "category": category},
	}
}
