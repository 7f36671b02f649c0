package model

import "errors"

// ErrUnknownCollection reports a collection with no registered field spec or
// duplicate rule. Detection and merge fail on it before any side effect.
var ErrUnknownCollection = errors.New("unknown collection")

// Known collections. Table names in the store match these exactly.
const (
	Customers = "customers"
	Products  = "products"
	Suppliers = "suppliers"
)

// CollectionNames lists the known collections in a fixed order so detection
// runs and aggregate counts stay deterministic.
var CollectionNames = []string{Customers, Products, Suppliers}

// DefaultSpecs returns the field declarations for the built-in collections.
func DefaultSpecs() map[string]FieldSpec {
	return map[string]FieldSpec{
		Customers: {
			Collection: Customers,
			Fields: []Field{
				{Name: "name", Kind: FieldText},
				{Name: "tax_id", Kind: FieldIdentifier},
				{Name: "email", Kind: FieldText},
			},
		},
		Products: {
			Collection: Products,
			Fields: []Field{
				{Name: "name", Kind: FieldText},
				{Name: "code", Kind: FieldText},
				{Name: "category", Kind: FieldText},
			},
		},
		Suppliers: {
			Collection: Suppliers,
			Fields: []Field{
				{Name: "name", Kind: FieldText},
				{Name: "tax_id", Kind: FieldIdentifier},
				{Name: "email", Kind: FieldText},
			},
		},
	}
}
