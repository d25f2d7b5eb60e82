package models

import "sort"

// VersionDiff is the set-difference comparison of placeholders between two
// template versions. A is the baseline, B the candidate: Added holds
// placeholders only in B, Removed those only in A. Derived, never persisted.
type VersionDiff struct {
	Added        []string `json:"added"`
	Removed      []string `json:"removed"`
	Unchanged    []string `json:"unchanged"`
	TotalChanges int      `json:"total_changes"`
}

// CompareVersions diffs the placeholder sets of two versions. Argument order
// matters: a is the baseline, b the candidate. Output slices are sorted so
// the result is deterministic regardless of placeholder order in the
// snapshots.
func CompareVersions(a, b *TemplateVersion) VersionDiff {
	inA := make(map[string]struct{}, len(a.Placeholders))
	for _, p := range a.Placeholders {
		inA[p] = struct{}{}
	}
	inB := make(map[string]struct{}, len(b.Placeholders))
	for _, p := range b.Placeholders {
		inB[p] = struct{}{}
	}

	diff := VersionDiff{
		Added:     []string{},
		Removed:   []string{},
		Unchanged: []string{},
	}
	for p := range inB {
		if _, ok := inA[p]; ok {
			diff.Unchanged = append(diff.Unchanged, p)
		} else {
			diff.Added = append(diff.Added, p)
		}
	}
	for p := range inA {
		if _, ok := inB[p]; !ok {
			diff.Removed = append(diff.Removed, p)
		}
	}

	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	sort.Strings(diff.Unchanged)
	diff.TotalChanges = len(diff.Added) + len(diff.Removed)
	return diff
}
