package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/notarial-tech/plantilla-engine/pkg/apperrors"
	"github.com/notarial-tech/plantilla-engine/pkg/models"
)

func TestCatalogService_KeysFor(t *testing.T) {
	repo := newMockStandardKeyRepo()
	repo.catalogs[models.DocTypeCompraventa] = standardKeys(models.DocTypeCompraventa,
		"nombre_completo_vendedor", "nombre_completo_comprador", "precio_venta")
	svc := NewCatalogService(repo, zap.NewNop())

	keys, err := svc.KeysFor(context.Background(), models.DocTypeCompraventa)

	require.NoError(t, err)
	require.Len(t, keys, 3)
	assert.Equal(t, "nombre_completo_vendedor", keys[0].Key)
}

func TestCatalogService_KeysFor_NoCatalogRegistered(t *testing.T) {
	svc := NewCatalogService(newMockStandardKeyRepo(), zap.NewNop())

	_, err := svc.KeysFor(context.Background(), models.DocTypeHipoteca)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCatalogService_ReplaceCatalog(t *testing.T) {
	repo := newMockStandardKeyRepo()
	svc := NewCatalogService(repo, zap.NewNop())
	ctx := context.Background()

	err := svc.ReplaceCatalog(ctx, models.DocTypePoder, []models.StandardKey{
		{Key: "nombre_poderdante"},
		{Key: "nombre_apoderado"},
	})
	require.NoError(t, err)

	keys, err := svc.KeysFor(ctx, models.DocTypePoder)
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}

func TestCatalogService_ReplaceCatalog_UnknownDocumentType(t *testing.T) {
	svc := NewCatalogService(newMockStandardKeyRepo(), zap.NewNop())

	err := svc.ReplaceCatalog(context.Background(), "arrendamiento", []models.StandardKey{{Key: "renta"}})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCatalogService_ReplaceCatalog_EmptyCatalogRejected(t *testing.T) {
	svc := NewCatalogService(newMockStandardKeyRepo(), zap.NewNop())

	err := svc.ReplaceCatalog(context.Background(), models.DocTypeActa, nil)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCatalogService_ReplaceCatalog_DuplicateKeyRejected(t *testing.T) {
	svc := NewCatalogService(newMockStandardKeyRepo(), zap.NewNop())

	err := svc.ReplaceCatalog(context.Background(), models.DocTypeActa, []models.StandardKey{
		{Key: "fecha_firma"},
		{Key: "fecha_firma"},
	})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCatalogService_ReplaceCatalog_EmptyKeyNameRejected(t *testing.T) {
	svc := NewCatalogService(newMockStandardKeyRepo(), zap.NewNop())

	err := svc.ReplaceCatalog(context.Background(), models.DocTypeActa, []models.StandardKey{
		{Key: ""},
	})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
