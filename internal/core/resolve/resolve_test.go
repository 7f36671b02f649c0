package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridata/mdm/internal/core/model"
)

func activeIDs(t *testing.T, f *fakeStore, collection string) []int64 {
	t.Helper()
	recs, err := f.ListActive(context.Background(), collection)
	require.NoError(t, err)
	ids := make([]int64, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestMerge_Success(t *testing.T) {
	f := newFakeStore()
	f.add(model.Customers, 1, true)
	f.add(model.Customers, 2, true)
	f.add(model.Customers, 3, true)

	err := NewEngine(f).Merge(context.Background(), model.MergeDecision{
		Collection:     model.Customers,
		MasterID:       1,
		SubordinateIDs: []int64{2, 3},
		Initiator:      "admin",
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []int64{1}, activeIDs(t, f, model.Customers))
	require.Len(t, f.audits, 2)
	for i, entry := range f.audits {
		assert.Equal(t, model.OpMerge, entry.Operation)
		assert.Equal(t, []int64{2, 3}[i], entry.RecordID)
		assert.Equal(t, "admin", entry.Actor)
		assert.Equal(t, int64(1), entry.After["merged_into"])
		assert.Equal(t, false, entry.After["active"])
		assert.NotEmpty(t, entry.ID)
	}
}

func TestMerge_PreconditionViolations(t *testing.T) {
	f := newFakeStore()
	f.add(model.Customers, 1, true)
	f.add(model.Customers, 2, true)

	engine := NewEngine(f)
	cases := []model.MergeDecision{
		{Collection: model.Customers, MasterID: 1, SubordinateIDs: nil},
		{Collection: model.Customers, MasterID: 1, SubordinateIDs: []int64{1}},
		{Collection: model.Customers, MasterID: 1, SubordinateIDs: []int64{2, 2}},
	}
	for _, d := range cases {
		err := engine.Merge(context.Background(), d)
		var invalid *InvalidMergeError
		assert.ErrorAs(t, err, &invalid, "decision %+v", d)
	}

	// Nothing mutated.
	assert.ElementsMatch(t, []int64{1, 2}, activeIDs(t, f, model.Customers))
	assert.Empty(t, f.audits)
}

func TestMerge_InvalidIDAmongValid(t *testing.T) {
	f := newFakeStore()
	f.add(model.Customers, 1, true)
	f.add(model.Customers, 2, true)
	f.add(model.Customers, 3, true)
	f.add(model.Customers, 4, false) // already inactive

	err := NewEngine(f).Merge(context.Background(), model.MergeDecision{
		Collection:     model.Customers,
		MasterID:       1,
		SubordinateIDs: []int64{2, 3, 4},
		Initiator:      "admin",
	})

	var invalid *InvalidMergeError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, int64(4), invalid.RecordID)

	// The valid subordinates stay untouched.
	assert.ElementsMatch(t, []int64{1, 2, 3}, activeIDs(t, f, model.Customers))
	assert.Empty(t, f.audits)
}

func TestMerge_InactiveMaster(t *testing.T) {
	f := newFakeStore()
	f.add(model.Customers, 1, false)
	f.add(model.Customers, 2, true)

	err := NewEngine(f).Merge(context.Background(), model.MergeDecision{
		Collection:     model.Customers,
		MasterID:       1,
		SubordinateIDs: []int64{2},
	})
	var invalid *InvalidMergeError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, int64(1), invalid.RecordID)
	assert.ElementsMatch(t, []int64{2}, activeIDs(t, f, model.Customers))
}

func TestMerge_UnknownCollection(t *testing.T) {
	f := newFakeStore()
	err := NewEngine(f).Merge(context.Background(), model.MergeDecision{
		Collection:     "unknown",
		MasterID:       1,
		SubordinateIDs: []int64{2},
	})
	assert.ErrorIs(t, err, model.ErrUnknownCollection)
}

func TestMerge_AuditFailureRollsBack(t *testing.T) {
	f := newFakeStore()
	f.add(model.Suppliers, 1, true)
	f.add(model.Suppliers, 2, true)
	f.add(model.Suppliers, 3, true)
	f.failAppend = true

	err := NewEngine(f).Merge(context.Background(), model.MergeDecision{
		Collection:     model.Suppliers,
		MasterID:       1,
		SubordinateIDs: []int64{2, 3},
	})
	require.Error(t, err)

	// No subordinate is left deactivated without its audit entry.
	assert.ElementsMatch(t, []int64{1, 2, 3}, activeIDs(t, f, model.Suppliers))
	assert.Empty(t, f.audits)
}

func TestMerge_StoreFailureRollsBack(t *testing.T) {
	f := newFakeStore()
	f.add(model.Products, 1, true)
	f.add(model.Products, 2, true)
	f.failDeactivate = true

	err := NewEngine(f).Merge(context.Background(), model.MergeDecision{
		Collection:     model.Products,
		MasterID:       1,
		SubordinateIDs: []int64{2},
	})
	require.Error(t, err)
	assert.ElementsMatch(t, []int64{1, 2}, activeIDs(t, f, model.Products))
	assert.Empty(t, f.audits)
}
