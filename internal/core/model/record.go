package model

// FieldKind tells the scorer how a field participates in comparison.
type FieldKind string

const (
	// FieldText is free text compared by normalized similarity ratio.
	FieldText FieldKind = "text"
	// FieldIdentifier is a numeric identifier compared exact-or-nothing
	// after stripping every non-digit character.
	FieldIdentifier FieldKind = "identifier"
)

// Field is one column of a collection that participates in duplicate
// detection.
type Field struct {
	Name string    `json:"name"`
	Kind FieldKind `json:"kind"`
}

// FieldSpec declares which fields of a collection are compared and how.
// Static configuration, never mutated at runtime.
type FieldSpec struct {
	Collection string  `json:"collection"`
	Fields     []Field `json:"fields"`
}

// Names returns the declared field names in declaration order.
func (s FieldSpec) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// EntityRecord is a point-in-time snapshot row of one collection, restricted
// to the fields declared by the collection's FieldSpec. The store owns the
// row; the engine treats it as read-only input.
type EntityRecord struct {
	ID     int64             `json:"id"`
	Fields map[string]string `json:"fields"`
	Active bool              `json:"active"`
}

// Summary strips a record down to what a duplicate group carries.
func (r EntityRecord) Summary() RecordSummary {
	fields := make(map[string]string, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return RecordSummary{ID: r.ID, Fields: fields}
}

// RecordSummary identifies a record inside a duplicate group.
type RecordSummary struct {
	ID     int64             `json:"id"`
	Fields map[string]string `json:"fields"`
}

// DuplicateGroup is an ordered cluster of records believed to represent one
// real-world entity, produced by a single detection run. The anchor record
// comes first, followed by members in the order they were matched. Size is
// always >= 2. Groups are derived views and are never persisted.
type DuplicateGroup struct {
	Collection string          `json:"collection"`
	Records    []RecordSummary `json:"records"`
}

// IDs returns the record ids in group order.
func (g DuplicateGroup) IDs() []int64 {
	ids := make([]int64, len(g.Records))
	for i, r := range g.Records {
		ids[i] = r.ID
	}
	return ids
}

// DuplicateCounts is the aggregator output: duplicate group counts per
// collection plus their sum.
type DuplicateCounts struct {
	PerCollection map[string]int `json:"per_collection"`
	Total         int            `json:"total"`
}

// MergeDecision is the operator input to a merge. It is ephemeral: its effect
// is persisted as deactivations plus audit entries, never as a row of its own.
type MergeDecision struct {
	Collection     string  `json:"collection"`
	MasterID       int64   `json:"master_id"`
	SubordinateIDs []int64 `json:"subordinate_ids"`
	Initiator      string  `json:"initiator"`
}
