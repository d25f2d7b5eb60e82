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

// CommitMappingRequest for PUT /api/templates/{tid}/mapping. BaseVersion is
// the active version number the editor loaded; when present, a commit
// against a store that moved on is rejected instead of silently overwriting.
type CommitMappingRequest struct {
	Mapping     models.PlaceholderMapping `json:"mapping"`
	BaseVersion *int                      `json:"base_version,omitempty"`
	Notes       string                    `json:"notes,omitempty"`
}

// MappingHandler handles placeholder mapping HTTP requests.
type MappingHandler struct {
	mappingService services.MappingService
	logger         *zap.Logger
}

// NewMappingHandler creates a new mapping handler.
func NewMappingHandler(mappingService services.MappingService, logger *zap.Logger) *MappingHandler {
	return &MappingHandler{
		mappingService: mappingService,
		logger:         logger,
	}
}

// RegisterRoutes registers the mapping handler's routes on the given mux.
func (h *MappingHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/templates/{tid}/mapping", h.Get)
	mux.HandleFunc("PUT /api/templates/{tid}/mapping", h.Commit)
}

// Get handles GET /api/templates/{tid}/mapping
func (h *MappingHandler) Get(w http.ResponseWriter, r *http.Request) {
	templateID, ok := ParseTemplateID(w, r, h.logger)
	if !ok {
		return
	}

	view, err := h.mappingService.GetMapping(r.Context(), templateID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "not_found", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		h.logger.Error("Failed to get mapping",
			zap.String("template_id", templateID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "get_mapping_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: view}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Commit handles PUT /api/templates/{tid}/mapping
func (h *MappingHandler) Commit(w http.ResponseWriter, r *http.Request) {
	templateID, ok := ParseTemplateID(w, r, h.logger)
	if !ok {
		return
	}

	var req CommitMappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	result, err := h.mappingService.CommitMapping(r.Context(), templateID, services.CommitMappingInput{
		Mapping:           req.Mapping,
		BaseVersionNumber: req.BaseVersion,
		Notes:             req.Notes,
	})
	if err != nil {
		h.logger.Error("Failed to commit mapping",
			zap.String("template_id", templateID.String()),
			zap.Error(err))

		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			if err := ErrorResponse(w, http.StatusNotFound, "not_found", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		case errors.Is(err, apperrors.ErrValidation):
			if err := ErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		case errors.Is(err, apperrors.ErrConcurrentModification):
			if err := ErrorResponse(w, http.StatusConflict, "concurrent_modification", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		default:
			if err := ErrorResponse(w, http.StatusInternalServerError, "commit_mapping_failed", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
