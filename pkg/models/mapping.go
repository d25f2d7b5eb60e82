package models

// MappingStats summarizes how much of a template's placeholder set resolves
// to a standard key. Derived at read time, never persisted.
type MappingStats struct {
	Total      int `json:"total"`
	Mapped     int `json:"mapped"`
	Unmapped   int `json:"unmapped"`
	Percentage int `json:"percentage"`
}

// PlaceholderResolution is the per-placeholder row the mapping editor
// renders: the effective target key, whether it resolves to a standard key,
// and whether an explicit mapping points at a key missing from the catalog.
type PlaceholderResolution struct {
	Placeholder string `json:"placeholder"`
	TargetKey   string `json:"target_key"`
	Mapped      bool   `json:"mapped"`
	NeedsReview bool   `json:"needs_review"`
}
