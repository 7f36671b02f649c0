package model

import "time"

// OperationKind classifies an audited mutation.
type OperationKind string

const (
	OpInsert OperationKind = "INSERT"
	OpUpdate OperationKind = "UPDATE"
	OpDelete OperationKind = "DELETE"
	OpMerge  OperationKind = "MERGE"
)

// AuditEntry is one durable row of the audit trail. Every soft-delete or
// merge mutation pairs with exactly one entry inside the same transaction.
type AuditEntry struct {
	ID         string                 `json:"id"`
	Collection string                 `json:"collection"`
	RecordID   int64                  `json:"record_id"`
	Operation  OperationKind          `json:"operation"`
	Before     map[string]interface{} `json:"before,omitempty"`
	After      map[string]interface{} `json:"after,omitempty"`
	Actor      string                 `json:"actor,omitempty"`
	At         time.Time              `json:"at"`
}
