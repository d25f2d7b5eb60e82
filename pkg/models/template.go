package models

import (
	"time"

	"github.com/google/uuid"
)

// Document types recognized by the notarial catalog.
const (
	DocTypeCompraventa = "compraventa"
	DocTypePoder       = "poder"
	DocTypeTestamento  = "testamento"
	DocTypeHipoteca    = "hipoteca"
	DocTypeActa        = "acta"
)

// ValidDocumentTypes contains all document types with a registered catalog.
var ValidDocumentTypes = []string{
	DocTypeCompraventa,
	DocTypePoder,
	DocTypeTestamento,
	DocTypeHipoteca,
	DocTypeActa,
}

// PlaceholderMapping maps a raw placeholder name found in a template to the
// standard key it should resolve to. A placeholder with no entry resolves to
// its own name (self-mapping).
type PlaceholderMapping map[string]string

// Template represents a registered document template.
// Placeholders and Mapping mirror the currently active version snapshot;
// committed changes always go through a new TemplateVersion.
// Stored in engine_templates table.
type Template struct {
	ID                  uuid.UUID          `json:"id"`
	Name                string             `json:"name"`
	DocumentType        string             `json:"document_type"`
	Placeholders        []string           `json:"placeholders"`
	Mapping             PlaceholderMapping `json:"placeholder_mapping"`
	DetectionConfidence float64            `json:"detection_confidence"`
	Confirmed           bool               `json:"confirmed"`
	CreatedBy           *uuid.UUID         `json:"created_by,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// HasPlaceholder reports whether the template's current placeholder set
// contains the given name.
func (t *Template) HasPlaceholder(name string) bool {
	for _, p := range t.Placeholders {
		if p == name {
			return true
		}
	}
	return false
}
