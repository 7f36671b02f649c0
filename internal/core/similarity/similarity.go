// Package similarity scores the likeness of two raw field values.
package similarity

import (
	"github.com/agnivade/levenshtein"

	"github.com/veridata/mdm/internal/core/model"
	"github.com/veridata/mdm/internal/core/normalize"
)

// Score returns a symmetric similarity in [0,1] between two raw values.
//
// Identifier fields are exact-or-nothing: after digit normalization both
// values must be non-empty and equal. Text fields use a Levenshtein ratio
// over the normalized strings, so identical strings score 1.0 and the score
// degrades with edit distance.
func Score(a, b string, kind model.FieldKind) float64 {
	if kind == model.FieldIdentifier {
		na, nb := normalize.Identifier(a), normalize.Identifier(b)
		if na == "" || nb == "" {
			return 0.0
		}
		if na == nb {
			return 1.0
		}
		return 0.0
	}

	na, nb := normalize.Text(a), normalize.Text(b)
	if na == "" || nb == "" {
		return 0.0
	}
	if na == nb {
		return 1.0
	}

	dist := levenshtein.ComputeDistance(na, nb)
	longest := len([]rune(na))
	if l := len([]rune(nb)); l > longest {
		longest = l
	}
	return 1.0 - float64(dist)/float64(longest)
}
