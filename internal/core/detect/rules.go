// Package detect finds groups of records that likely represent the same
// real-world entity. Scoring is pairwise over every active record of a
// collection, so a run costs O(n^2) field comparisons; callers bound dataset
// size externally.
package detect

import "github.com/veridata/mdm/internal/core/model"

// DefaultThreshold is the text-similarity threshold applied when the
// configuration does not override it.
const DefaultThreshold = 0.85

// Condition requires one field pair to score at least Min. Exact matches are
// expressed as Min = 1.0, which after normalization means equality.
type Condition struct {
	Field string
	Min   float64
}

// Rule decides whether two records are duplicates: a disjunction of
// condition groups, where every condition in a group must hold.
type Rule struct {
	Any [][]Condition
}

// Matches evaluates the rule against per-field scores. Comparisons are
// inclusive.
func (r Rule) Matches(scores map[string]float64) bool {
	for _, group := range r.Any {
		ok := true
		for _, cond := range group {
			if scores[cond.Field] < cond.Min {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// Collection binds a field spec to its duplicate rule.
type Collection struct {
	Spec model.FieldSpec
	Rule Rule
}

// DefaultCollections builds the built-in rule set. threshold <= 0 falls back
// to DefaultThreshold; overrides replace it per collection.
//
// customers/suppliers: same tax id, same email, or name similarity above the
// threshold. products: same code, or similar name within a near-identical
// category.
func DefaultCollections(threshold float64, overrides map[string]float64) map[string]Collection {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	t := func(collection string) float64 {
		if v, ok := overrides[collection]; ok && v > 0 {
			return v
		}
		return threshold
	}

	specs := model.DefaultSpecs()
	return map[string]Collection{
		model.Customers: {
			Spec: specs[model.Customers],
			Rule: Rule{Any: [][]Condition{
				{{Field: "tax_id", Min: 1.0}},
				{{Field: "email", Min: 1.0}},
				{{Field: "name", Min: t(model.Customers)}},
			}},
		},
		model.Products: {
			Spec: specs[model.Products],
			Rule: Rule{Any: [][]Condition{
				{{Field: "code", Min: 1.0}},
				{{Field: "name", Min: t(model.Products)}, {Field: "category", Min: 0.8}},
			}},
		},
		model.Suppliers: {
			Spec: specs[model.Suppliers],
			Rule: Rule{Any: [][]Condition{
				{{Field: "tax_id", Min: 1.0}},
				{{Field: "email", Min: 1.0}},
				{{Field: "name", Min: t(model.Suppliers)}},
			}},
		},
	}
}
