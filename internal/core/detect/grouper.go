package detect

import (
	"context"
	"fmt"
	"sort"

	"github.com/veridata/mdm/internal/core/model"
	"github.com/veridata/mdm/internal/core/similarity"
	"github.com/veridata/mdm/internal/store"
)

// Grouper runs duplicate detection over point-in-time snapshots. It holds no
// mutable state of its own, so one instance serves concurrent runs.
type Grouper struct {
	store       store.Store
	collections map[string]Collection
}

func NewGrouper(st store.Store, collections map[string]Collection) *Grouper {
	return &Grouper{store: st, collections: collections}
}

// Collections returns the registered collection names in the fixed model
// order, so iteration over them is deterministic.
func (g *Grouper) Collections() []string {
	var names []string
	for _, name := range model.CollectionNames {
		if _, ok := g.collections[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// FindDuplicates clusters the active records of one collection into duplicate
// groups using greedy anchor clustering: the first unclaimed record in id
// order seeds a group and claims every later unclaimed record the rule
// matches against it. Members of a group are each similar to the anchor, not
// necessarily to each other. Given the same snapshot the output is identical
// across runs, and no record appears in two groups.
func (g *Grouper) FindDuplicates(ctx context.Context, collection string) ([]model.DuplicateGroup, error) {
	col, ok := g.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%q: %w", collection, model.ErrUnknownCollection)
	}

	records, err := g.store.ListActive(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s snapshot: %w", collection, err)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	claimed := make(map[int64]bool)
	var groups []model.DuplicateGroup

	for i, anchor := range records {
		if claimed[anchor.ID] {
			continue
		}

		var members []model.RecordSummary
		for _, candidate := range records[i+1:] {
			if claimed[candidate.ID] {
				continue
			}
			if !col.Rule.Matches(fieldScores(col.Spec, anchor, candidate)) {
				continue
			}
			if len(members) == 0 {
				members = append(members, anchor.Summary())
			}
			members = append(members, candidate.Summary())
			claimed[candidate.ID] = true
		}

		if len(members) > 0 {
			claimed[anchor.ID] = true
			groups = append(groups, model.DuplicateGroup{Collection: collection, Records: members})
		}
	}
	return groups, nil
}

func fieldScores(spec model.FieldSpec, a, b model.EntityRecord) map[string]float64 {
	scores := make(map[string]float64, len(spec.Fields))
	for _, f := range spec.Fields {
		scores[f.Name] = similarity.Score(a.Fields[f.Name], b.Fields[f.Name], f.Kind)
	}
	return scores
}
