package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/notarial-tech/plantilla-engine/pkg/apperrors"
	"github.com/notarial-tech/plantilla-engine/pkg/models"
)

type mappingFixture struct {
	templateRepo *mockTemplateRepo
	versionRepo  *mockVersionRepo
	keyRepo      *mockStandardKeyRepo

	versionSvc  VersionService
	templateSvc TemplateService
	catalogSvc  CatalogService
	mappingSvc  MappingService

	templateID uuid.UUID
}

// newMappingFixture wires the full service stack over mock repositories and
// registers one compraventa template with placeholders Vendedor and Fecha.
// Registration creates version 1 with an empty mapping.
func newMappingFixture(t *testing.T) *mappingFixture {
	t.Helper()

	templateRepo := newMockTemplateRepo()
	versionRepo := newMockVersionRepo(templateRepo)
	keyRepo := newMockStandardKeyRepo()
	keyRepo.catalogs[models.DocTypeCompraventa] = standardKeys(models.DocTypeCompraventa,
		"nombre_completo_vendedor", "Fecha")

	logger := zap.NewNop()
	versionSvc := NewVersionService(templateRepo, versionRepo, logger)
	templateSvc := NewTemplateService(templateRepo, versionSvc, 0.7, logger)
	catalogSvc := NewCatalogService(keyRepo, logger)
	mappingSvc := NewMappingService(versionSvc, templateSvc, catalogSvc, logger)

	template, err := templateSvc.Register(context.Background(), RegisterTemplateInput{
		Name:                "Escritura Compraventa",
		DocumentType:        models.DocTypeCompraventa,
		Placeholders:        []string{"Vendedor", "Fecha"},
		DetectionConfidence: 0.9,
	})
	require.NoError(t, err)

	return &mappingFixture{
		templateRepo: templateRepo,
		versionRepo:  versionRepo,
		keyRepo:      keyRepo,
		versionSvc:   versionSvc,
		templateSvc:  templateSvc,
		catalogSvc:   catalogSvc,
		mappingSvc:   mappingSvc,
		templateID:   template.ID,
	}
}

func (f *mappingFixture) loadedSession(t *testing.T) *MappingSession {
	t.Helper()
	session := f.mappingSvc.NewSession()
	require.NoError(t, session.Load(context.Background(), f.templateID))
	return session
}

func TestMappingSession_Load_InitialState(t *testing.T) {
	f := newMappingFixture(t)
	session := f.loadedSession(t)

	assert.False(t, session.Dirty())

	stats := session.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Mapped) // Fecha matches the catalog by name
	assert.Equal(t, 50, stats.Percentage)
}

func TestMappingSession_Load_UnknownTemplate(t *testing.T) {
	f := newMappingFixture(t)
	session := f.mappingSvc.NewSession()

	err := session.Load(context.Background(), uuid.New())

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMappingSession_SetMapping_MarksDirtyWithoutPersisting(t *testing.T) {
	f := newMappingFixture(t)
	ctx := context.Background()
	session := f.loadedSession(t)

	require.NoError(t, session.SetMapping("Vendedor", "nombre_completo_vendedor"))
	assert.True(t, session.Dirty())

	// The store is untouched until Commit.
	active, err := f.versionSvc.GetActiveVersion(ctx, f.templateID)
	require.NoError(t, err)
	assert.Empty(t, active.Mapping)
	assert.Equal(t, 1, active.VersionNumber)
}

func TestMappingSession_SetMapping_UnknownPlaceholder(t *testing.T) {
	f := newMappingFixture(t)
	session := f.loadedSession(t)

	err := session.SetMapping("Desconocido", "nombre_completo_vendedor")

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.False(t, session.Dirty())
}

func TestMappingSession_Commit_CreatesNextVersion(t *testing.T) {
	f := newMappingFixture(t)
	ctx := context.Background()
	session := f.loadedSession(t)

	require.NoError(t, session.SetMapping("Vendedor", "nombre_completo_vendedor"))

	version, err := session.Commit(ctx, CreateVersionOptions{Notes: "Mapped vendor name"})
	require.NoError(t, err)

	assert.Equal(t, 2, version.VersionNumber)
	assert.True(t, version.IsActive)
	assert.Equal(t, "nombre_completo_vendedor", version.Mapping["Vendedor"])
	assert.False(t, session.Dirty())

	stats := session.Stats()
	assert.Equal(t, 100, stats.Percentage)
}

func TestMappingSession_Commit_IdenticalMappingStillBumpsVersion(t *testing.T) {
	f := newMappingFixture(t)
	ctx := context.Background()
	session := f.loadedSession(t)

	// No edits at all; committing the loaded state is a valid save.
	version, err := session.Commit(ctx, CreateVersionOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, version.VersionNumber)

	again, err := session.Commit(ctx, CreateVersionOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, again.VersionNumber)
}

func TestMappingSession_Commit_StaleBasePreservesEdits(t *testing.T) {
	f := newMappingFixture(t)
	ctx := context.Background()
	session := f.loadedSession(t)

	require.NoError(t, session.SetMapping("Vendedor", "nombre_completo_vendedor"))

	// Another editor commits while this session is open.
	_, err := f.versionSvc.CreateVersion(ctx, f.templateID, []string{"Vendedor", "Fecha"},
		models.PlaceholderMapping{"Fecha": "Fecha"}, CreateVersionOptions{})
	require.NoError(t, err)

	_, err = session.Commit(ctx, CreateVersionOptions{})
	assert.ErrorIs(t, err, apperrors.ErrConcurrentModification)

	// Local edits survive the rejected commit so the user can reload and retry.
	assert.True(t, session.Dirty())
	resolutions := session.Resolutions()
	assert.Equal(t, "nombre_completo_vendedor", resolutions[0].TargetKey)
}

func TestMappingSession_Commit_SequentialCommitsFromSameSession(t *testing.T) {
	f := newMappingFixture(t)
	ctx := context.Background()
	session := f.loadedSession(t)

	require.NoError(t, session.SetMapping("Vendedor", "nombre_completo_vendedor"))
	v2, err := session.Commit(ctx, CreateVersionOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, v2.VersionNumber)

	// The session's base advances with each commit, so further edits commit
	// without reloading.
	require.NoError(t, session.SetMapping("Vendedor", ""))
	v3, err := session.Commit(ctx, CreateVersionOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, v3.VersionNumber)
	assert.Empty(t, v3.Mapping)
}

func TestMappingSession_Discard(t *testing.T) {
	f := newMappingFixture(t)
	session := f.loadedSession(t)

	require.NoError(t, session.SetMapping("Vendedor", "nombre_completo_vendedor"))
	require.True(t, session.Dirty())

	session.Discard()

	assert.False(t, session.Dirty())
	stats := session.Stats()
	assert.Equal(t, 1, stats.Mapped)
}

func TestMappingSession_Commit_Unloaded(t *testing.T) {
	f := newMappingFixture(t)
	session := f.mappingSvc.NewSession()

	_, err := session.Commit(context.Background(), CreateVersionOptions{})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
