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

// ============================================================================
// Request/Response Types
// ============================================================================

// RegisterTemplateRequest for POST /api/templates. Placeholders and the
// detected type come from the external extractor.
type RegisterTemplateRequest struct {
	Name                string                    `json:"name"`
	DocumentType        string                    `json:"document_type"`
	Placeholders        []string                  `json:"placeholders"`
	Mapping             models.PlaceholderMapping `json:"placeholder_mapping,omitempty"`
	DetectionConfidence float64                   `json:"detection_confidence"`
}

// TemplateListResponse for GET /api/templates
type TemplateListResponse struct {
	Templates []*models.Template `json:"templates"`
	Total     int                `json:"total"`
}

// ============================================================================
// Handler
// ============================================================================

// TemplateHandler handles template registry HTTP requests.
type TemplateHandler struct {
	templateService services.TemplateService
	logger          *zap.Logger
}

// NewTemplateHandler creates a new template handler.
func NewTemplateHandler(templateService services.TemplateService, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
		logger:          logger,
	}
}

// RegisterRoutes registers the template handler's routes on the given mux.
func (h *TemplateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/templates", h.Register)
	mux.HandleFunc("GET /api/templates", h.List)
	mux.HandleFunc("GET /api/templates/{tid}", h.Get)
	mux.HandleFunc("POST /api/templates/{tid}/confirm-type", h.ConfirmType)
	mux.HandleFunc("GET /api/templates/{tid}/detection", h.Detection)
}

// Register handles POST /api/templates
func (h *TemplateHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	template, err := h.templateService.Register(r.Context(), services.RegisterTemplateInput{
		Name:                req.Name,
		DocumentType:        req.DocumentType,
		Placeholders:        req.Placeholders,
		Mapping:             req.Mapping,
		DetectionConfidence: req.DetectionConfidence,
	})
	if err != nil {
		h.logger.Error("Failed to register template",
			zap.String("name", req.Name),
			zap.Error(err))

		if errors.Is(err, apperrors.ErrValidation) {
			if err := ErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		if err := ErrorResponse(w, http.StatusInternalServerError, "register_template_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: template}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/templates
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templateService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list templates", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_templates_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := TemplateListResponse{
		Templates: templates,
		Total:     len(templates),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/templates/{tid}
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	templateID, ok := ParseTemplateID(w, r, h.logger)
	if !ok {
		return
	}

	template, err := h.templateService.Get(r.Context(), templateID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "template_not_found", "Template not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		h.logger.Error("Failed to get template",
			zap.String("template_id", templateID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "get_template_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: template}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ConfirmType handles POST /api/templates/{tid}/confirm-type
func (h *TemplateHandler) ConfirmType(w http.ResponseWriter, r *http.Request) {
	templateID, ok := ParseTemplateID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.templateService.ConfirmType(r.Context(), templateID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "template_not_found", "Template not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		h.logger.Error("Failed to confirm template type",
			zap.String("template_id", templateID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "confirm_type_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: map[string]string{"status": "confirmed"}}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Detection handles GET /api/templates/{tid}/detection
func (h *TemplateHandler) Detection(w http.ResponseWriter, r *http.Request) {
	templateID, ok := ParseTemplateID(w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.templateService.EvaluateDetection(r.Context(), templateID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "template_not_found", "Template not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		h.logger.Error("Failed to evaluate detection",
			zap.String("template_id", templateID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "detection_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
