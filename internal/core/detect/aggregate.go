package detect

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/veridata/mdm/internal/core/model"
)

// FindAll runs detection for every registered collection. Collections run
// concurrently; results keep the per-collection ordering FindDuplicates
// guarantees. A failure in any collection aborts the whole run with no
// partial result.
func (g *Grouper) FindAll(ctx context.Context) (map[string][]model.DuplicateGroup, error) {
	names := g.Collections()
	results := make([][]model.DuplicateGroup, len(names))

	eg, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		eg.Go(func() error {
			groups, err := g.FindDuplicates(ctx, name)
			if err != nil {
				return err
			}
			results[i] = groups
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	all := make(map[string][]model.DuplicateGroup, len(names))
	for i, name := range names {
		all[name] = results[i]
	}
	return all, nil
}

// CountDuplicates reports how many duplicate groups each collection currently
// has, plus the total. Purely derived from the snapshot, never cached.
func (g *Grouper) CountDuplicates(ctx context.Context) (model.DuplicateCounts, error) {
	all, err := g.FindAll(ctx)
	if err != nil {
		return model.DuplicateCounts{}, err
	}

	counts := model.DuplicateCounts{PerCollection: make(map[string]int, len(all))}
	for name, groups := range all {
		counts.PerCollection[name] = len(groups)
		counts.Total += len(groups)
	}
	return counts, nil
}
