package services

import (
	"math"

	"github.com/notarial-tech/plantilla-engine/pkg/models"
)

// Pure mapping resolution over in-memory snapshots. No hidden state: callers
// pass the placeholder set, the mapping table and the catalog keys.

// ResolveTarget returns the effective target key for a placeholder: the
// explicit mapping entry when one exists, otherwise the placeholder's own
// name (self-mapping default).
func ResolveTarget(placeholder string, mapping models.PlaceholderMapping) string {
	if target, ok := mapping[placeholder]; ok && target != "" {
		return target
	}
	return placeholder
}

// IsMapped reports whether a placeholder resolves to a key present in the
// catalog. A placeholder whose own name equals a standard key counts as
// mapped without an explicit entry. An explicit mapping to a key missing
// from the catalog does NOT count - correctness is judged against the
// catalog, not against presence of an entry.
func IsMapped(placeholder string, mapping models.PlaceholderMapping, keySet map[string]struct{}) bool {
	_, ok := keySet[ResolveTarget(placeholder, mapping)]
	return ok
}

// ComputeStats derives mapping completion statistics for a placeholder set.
// Percentage is 0 for an empty set.
func ComputeStats(placeholders []string, mapping models.PlaceholderMapping, keys []models.StandardKey) models.MappingStats {
	keySet := models.KeySet(keys)

	stats := models.MappingStats{Total: len(placeholders)}
	for _, p := range placeholders {
		if IsMapped(p, mapping, keySet) {
			stats.Mapped++
		}
	}
	stats.Unmapped = stats.Total - stats.Mapped

	if stats.Total > 0 {
		stats.Percentage = int(math.Round(float64(stats.Mapped) * 100 / float64(stats.Total)))
	}
	return stats
}

// ResolveAll computes the per-placeholder resolution rows the mapping editor
// renders, preserving the template's placeholder order.
func ResolveAll(placeholders []string, mapping models.PlaceholderMapping, keys []models.StandardKey) []models.PlaceholderResolution {
	keySet := models.KeySet(keys)

	resolutions := make([]models.PlaceholderResolution, 0, len(placeholders))
	for _, p := range placeholders {
		target := ResolveTarget(p, mapping)
		_, mapped := keySet[target]
		_, explicit := mapping[p]

		resolutions = append(resolutions, models.PlaceholderResolution{
			Placeholder: p,
			TargetKey:   target,
			Mapped:      mapped,
			NeedsReview: explicit && !mapped,
		})
	}
	return resolutions
}
