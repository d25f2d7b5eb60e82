package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/notarial-tech/plantilla-engine/pkg/apperrors"
	"github.com/notarial-tech/plantilla-engine/pkg/models"
	"github.com/notarial-tech/plantilla-engine/pkg/services"
)

// CatalogResponse for GET /api/catalogs/{dtype}
type CatalogResponse struct {
	DocumentType string               `json:"document_type"`
	Keys         []models.StandardKey `json:"keys"`
	Total        int                  `json:"total"`
}

// ReplaceCatalogRequest for PUT /api/catalogs/{dtype}
type ReplaceCatalogRequest struct {
	Keys []struct {
		Key         string   `json:"key"`
		Description string   `json:"description,omitempty"`
		Aliases     []string `json:"aliases,omitempty"`
	} `json:"keys"`
}

// CatalogHandler handles standard key catalog HTTP requests.
type CatalogHandler struct {
	catalogService services.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalogService services.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers the catalog handler's routes on the given mux.
func (h *CatalogHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/catalogs/{dtype}", h.Get)
	mux.HandleFunc("PUT /api/catalogs/{dtype}", h.Replace)
}

// Get handles GET /api/catalogs/{dtype}
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	documentType := r.PathValue("dtype")

	keys, err := h.catalogService.KeysFor(r.Context(), documentType)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "catalog_not_found", "No catalog registered for document type"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		h.logger.Error("Failed to get catalog",
			zap.String("document_type", documentType),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "get_catalog_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := CatalogResponse{
		DocumentType: documentType,
		Keys:         keys,
		Total:        len(keys),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Replace handles PUT /api/catalogs/{dtype}
func (h *CatalogHandler) Replace(w http.ResponseWriter, r *http.Request) {
	documentType := r.PathValue("dtype")

	var req ReplaceCatalogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	keys := make([]models.StandardKey, 0, len(req.Keys))
	for _, k := range req.Keys {
		keys = append(keys, models.StandardKey{
			Key:         k.Key,
			Description: k.Description,
			Aliases:     k.Aliases,
		})
	}

	if err := h.catalogService.ReplaceCatalog(r.Context(), documentType, keys); err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			if err := ErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		h.logger.Error("Failed to replace catalog",
			zap.String("document_type", documentType),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "replace_catalog_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: map[string]int{"keys": len(keys)}}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
