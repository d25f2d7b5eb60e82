package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func version(placeholders ...string) *TemplateVersion {
	return &TemplateVersion{Placeholders: placeholders}
}

func TestCompareVersions_AddedAndRemoved(t *testing.T) {
	a := version("Vendedor", "Fecha", "Lugar")
	b := version("Fecha", "Lugar", "Notario", "Testigo")

	diff := CompareVersions(a, b)

	assert.Equal(t, []string{"Notario", "Testigo"}, diff.Added)
	assert.Equal(t, []string{"Vendedor"}, diff.Removed)
	assert.Equal(t, []string{"Fecha", "Lugar"}, diff.Unchanged)
	assert.Equal(t, 3, diff.TotalChanges)
}

func TestCompareVersions_Identical(t *testing.T) {
	a := version("Fecha", "Lugar")
	b := version("Lugar", "Fecha") // order within a snapshot is irrelevant

	diff := CompareVersions(a, b)

	assert.Empty(t, diff.Added)
	assert.Empty(t, diff.Removed)
	assert.Equal(t, []string{"Fecha", "Lugar"}, diff.Unchanged)
	assert.Equal(t, 0, diff.TotalChanges)
}

func TestCompareVersions_DirectionMatters(t *testing.T) {
	a := version("Fecha")
	b := version("Fecha", "Lugar")

	forward := CompareVersions(a, b)
	backward := CompareVersions(b, a)

	assert.Equal(t, []string{"Lugar"}, forward.Added)
	assert.Empty(t, forward.Removed)

	assert.Empty(t, backward.Added)
	assert.Equal(t, []string{"Lugar"}, backward.Removed)
}

func TestCompareVersions_EmptySnapshots(t *testing.T) {
	diff := CompareVersions(version(), version())

	assert.NotNil(t, diff.Added)
	assert.NotNil(t, diff.Removed)
	assert.NotNil(t, diff.Unchanged)
	assert.Equal(t, 0, diff.TotalChanges)
}

func TestCompareVersions_OutputIsSorted(t *testing.T) {
	a := version("zeta", "alfa")
	b := version("omega", "beta")

	diff := CompareVersions(a, b)

	assert.Equal(t, []string{"beta", "omega"}, diff.Added)
	assert.Equal(t, []string{"alfa", "zeta"}, diff.Removed)
}
