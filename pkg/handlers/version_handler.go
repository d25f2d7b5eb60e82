package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/notarial-tech/plantilla-engine/pkg/apperrors"
	"github.com/notarial-tech/plantilla-engine/pkg/models"
	"github.com/notarial-tech/plantilla-engine/pkg/services"
)

// VersionListResponse for GET /api/templates/{tid}/versions
type VersionListResponse struct {
	Versions []*models.TemplateVersion `json:"versions"`
	Total    int                       `json:"total"`
}

// ActivateVersionResponse for POST /api/templates/{tid}/versions/{vid}/activate
type ActivateVersionResponse struct {
	Success              bool                    `json:"success"`
	ActivatedVersion     *models.TemplateVersion `json:"activated_version"`
	PreviousActiveNumber *int                    `json:"previous_active_version_number,omitempty"`
}

// VersionHandler handles template version history HTTP requests.
type VersionHandler struct {
	versionService services.VersionService
	logger         *zap.Logger
}

// NewVersionHandler creates a new version handler.
func NewVersionHandler(versionService services.VersionService, logger *zap.Logger) *VersionHandler {
	return &VersionHandler{
		versionService: versionService,
		logger:         logger,
	}
}

// RegisterRoutes registers the version handler's routes on the given mux.
func (h *VersionHandler) RegisterRoutes(mux *http.ServeMux) {
	base := "/api/templates/{tid}/versions"

	mux.HandleFunc("GET "+base, h.List)
	mux.HandleFunc("GET "+base+"/active", h.GetActive)
	mux.HandleFunc("GET "+base+"/compare", h.Compare)
	mux.HandleFunc("POST "+base+"/{vid}/activate", h.Activate)
}

// List handles GET /api/templates/{tid}/versions
func (h *VersionHandler) List(w http.ResponseWriter, r *http.Request) {
	templateID, ok := ParseTemplateID(w, r, h.logger)
	if !ok {
		return
	}

	versions, err := h.versionService.ListVersions(r.Context(), templateID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "template_not_found", "Template not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		h.logger.Error("Failed to list versions",
			zap.String("template_id", templateID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_versions_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := VersionListResponse{
		Versions: versions,
		Total:    len(versions),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetActive handles GET /api/templates/{tid}/versions/active
func (h *VersionHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	templateID, ok := ParseTemplateID(w, r, h.logger)
	if !ok {
		return
	}

	active, err := h.versionService.GetActiveVersion(r.Context(), templateID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNoActiveVersion):
			if err := ErrorResponse(w, http.StatusNotFound, "no_active_version", "Template has no active version"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		case errors.Is(err, apperrors.ErrNotFound):
			if err := ErrorResponse(w, http.StatusNotFound, "template_not_found", "Template not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		default:
			h.logger.Error("Failed to get active version",
				zap.String("template_id", templateID.String()),
				zap.Error(err))
			if err := ErrorResponse(w, http.StatusInternalServerError, "get_active_version_failed", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: active}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Compare handles GET /api/templates/{tid}/versions/compare?from={vid}&to={vid}
func (h *VersionHandler) Compare(w http.ResponseWriter, r *http.Request) {
	templateID, ok := ParseTemplateID(w, r, h.logger)
	if !ok {
		return
	}

	fromID, ok := ParseQueryVersionID(w, r, "from", h.logger)
	if !ok {
		return
	}
	toID, ok := ParseQueryVersionID(w, r, "to", h.logger)
	if !ok {
		return
	}

	result, err := h.versionService.CompareVersions(r.Context(), templateID, fromID, toID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "version_not_found", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		h.logger.Error("Failed to compare versions",
			zap.String("template_id", templateID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "compare_versions_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Activate handles POST /api/templates/{tid}/versions/{vid}/activate
func (h *VersionHandler) Activate(w http.ResponseWriter, r *http.Request) {
	templateID, ok := ParseTemplateID(w, r, h.logger)
	if !ok {
		return
	}

	versionID, ok := ParseVersionID(w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.versionService.ActivateVersion(r.Context(), templateID, versionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "version_not_found", "Version not found for template"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		h.logger.Error("Failed to activate version",
			zap.String("template_id", templateID.String()),
			zap.String("version_id", versionID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "activate_version_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := ActivateVersionResponse{
		Success:              true,
		ActivatedVersion:     result.Activated,
		PreviousActiveNumber: result.PreviousActiveNumber,
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
