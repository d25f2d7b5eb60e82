package models

import (
	"time"

	"github.com/google/uuid"
)

// TemplateVersion is an immutable snapshot of a template's placeholders and
// mapping. For a given template exactly one version is active at any time;
// rollback re-activates an older snapshot without allocating a new
// version number. Stored in engine_template_versions table.
type TemplateVersion struct {
	ID            uuid.UUID          `json:"id"`
	TemplateID    uuid.UUID          `json:"template_id"`
	VersionNumber int                `json:"version_number"`
	Placeholders  []string           `json:"placeholders"`
	Mapping       PlaceholderMapping `json:"placeholder_mapping"`
	IsActive      bool               `json:"is_active"`
	CreatedBy     *uuid.UUID         `json:"created_by,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// VersionSummary is the denormalized per-version payload returned alongside
// a diff so the UI can label both sides of the comparison.
type VersionSummary struct {
	ID            uuid.UUID `json:"id"`
	VersionNumber int       `json:"version_number"`
	Placeholders  []string  `json:"placeholders"`
}

// Summary returns the denormalized view of the version.
func (v *TemplateVersion) Summary() VersionSummary {
	return VersionSummary{
		ID:            v.ID,
		VersionNumber: v.VersionNumber,
		Placeholders:  v.Placeholders,
	}
}
