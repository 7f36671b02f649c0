// Package core wires the detection and resolution engines over a store into
// the service surface the server exposes.
package core

import (
	"context"

	"github.com/veridata/mdm/internal/config"
	"github.com/veridata/mdm/internal/core/detect"
	"github.com/veridata/mdm/internal/core/model"
	"github.com/veridata/mdm/internal/core/resolve"
	"github.com/veridata/mdm/internal/store"
)

type Service struct {
	Store    store.Store
	Grouper  *detect.Grouper
	Resolver *resolve.Engine
}

// NewService builds the engine around explicitly injected collaborators.
// Collaborators are constructed once at process start; the service holds no
// global state.
func NewService(st store.Store, cfg *config.Config) *Service {
	collections := detect.DefaultCollections(cfg.Dedupe.Threshold, cfg.ThresholdOverrides())
	return &Service{
		Store:    st,
		Grouper:  detect.NewGrouper(st, collections),
		Resolver: resolve.NewEngine(st),
	}
}

// FindDuplicates runs detection for one collection.
func (s *Service) FindDuplicates(ctx context.Context, collection string) ([]model.DuplicateGroup, error) {
	return s.Grouper.FindDuplicates(ctx, collection)
}

// FindAllDuplicates runs detection for every known collection.
func (s *Service) FindAllDuplicates(ctx context.Context) (map[string][]model.DuplicateGroup, error) {
	return s.Grouper.FindAll(ctx)
}

// CountDuplicates reports duplicate group counts per collection plus total.
func (s *Service) CountDuplicates(ctx context.Context) (model.DuplicateCounts, error) {
	return s.Grouper.CountDuplicates(ctx)
}

// Merge collapses the decision's subordinates into its master record.
func (s *Service) Merge(ctx context.Context, d model.MergeDecision) error {
	return s.Resolver.Merge(ctx, d)
}
