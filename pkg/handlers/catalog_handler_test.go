package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/notarial-tech/plantilla-engine/pkg/apperrors"
	"github.com/notarial-tech/plantilla-engine/pkg/models"
)

func TestCatalogHandler_Get(t *testing.T) {
	mockService := &mockCatalogService{
		keys: []models.StandardKey{
			{ID: uuid.New(), DocumentType: models.DocTypeCompraventa, Key: "nombre_completo_vendedor", Position: 0},
			{ID: uuid.New(), DocumentType: models.DocTypeCompraventa, Key: "precio_venta", Position: 1},
		},
	}
	handler := NewCatalogHandler(mockService, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/catalogs/compraventa", nil)
	req.SetPathValue("dtype", "compraventa")

	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ApiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "compraventa", data["document_type"])
	assert.Equal(t, float64(2), data["total"])
}

func TestCatalogHandler_Get_NotFound(t *testing.T) {
	mockService := &mockCatalogService{getErr: apperrors.ErrNotFound}
	handler := NewCatalogHandler(mockService, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/catalogs/hipoteca", nil)
	req.SetPathValue("dtype", "hipoteca")

	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "catalog_not_found", body["error"])
}

func TestCatalogHandler_Replace(t *testing.T) {
	mockService := &mockCatalogService{}
	handler := NewCatalogHandler(mockService, zap.NewNop())

	body := `{"keys": [
		{"key": "nombre_poderdante", "description": "Nombre del poderdante"},
		{"key": "nombre_apoderado", "aliases": ["apoderado"]}
	]}`
	req := httptest.NewRequest(http.MethodPut, "/api/catalogs/poder", strings.NewReader(body))
	req.SetPathValue("dtype", "poder")

	rec := httptest.NewRecorder()
	handler.Replace(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, mockService.keys, 2)
	assert.Equal(t, "nombre_poderdante", mockService.keys[0].Key)
	assert.Equal(t, "poder", mockService.keys[0].DocumentType)
}

func TestCatalogHandler_Replace_InvalidBody(t *testing.T) {
	handler := NewCatalogHandler(&mockCatalogService{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPut, "/api/catalogs/poder", strings.NewReader("{"))
	req.SetPathValue("dtype", "poder")

	rec := httptest.NewRecorder()
	handler.Replace(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogHandler_Replace_ValidationError(t *testing.T) {
	mockService := &mockCatalogService{replaceErr: apperrors.ErrValidation}
	handler := NewCatalogHandler(mockService, zap.NewNop())

	req := httptest.NewRequest(http.MethodPut, "/api/catalogs/arrendamiento",
		strings.NewReader(`{"keys": [{"key": "renta"}]}`))
	req.SetPathValue("dtype", "arrendamiento")

	rec := httptest.NewRecorder()
	handler.Replace(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
