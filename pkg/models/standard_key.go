package models

import (
	"time"

	"github.com/google/uuid"
)

// StandardKey is a canonical field identifier recognized system-wide for a
// document type. Reference data: the mapping engine reads it but never
// mutates it. Stored in engine_standard_keys table.
type StandardKey struct {
	ID           uuid.UUID `json:"id"`
	DocumentType string    `json:"document_type"`
	Key          string    `json:"key"`
	Description  string    `json:"description"`
	Aliases      []string  `json:"aliases,omitempty"`
	Position     int       `json:"position"`
	CreatedAt    time.Time `json:"created_at"`
}

// KeySet builds a membership set over the standard key names. Mapping
// correctness is always judged against this set, not against the presence of
// a mapping entry.
func KeySet(keys []StandardKey) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k.Key] = struct{}{}
	}
	return set
}
