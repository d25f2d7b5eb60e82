package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/notarial-tech/plantilla-engine/pkg/apperrors"
	"github.com/notarial-tech/plantilla-engine/pkg/models"
	"github.com/notarial-tech/plantilla-engine/pkg/repositories"
)

// RegisterTemplateInput carries the payload the external extractor produces
// when a template file is first registered: the raw placeholder list plus
// the detected document type and its confidence.
type RegisterTemplateInput struct {
	Name                string
	DocumentType        string
	Placeholders        []string
	Mapping             models.PlaceholderMapping
	DetectionConfidence float64
	CreatedBy           *uuid.UUID
}

// TemplateService manages the template registry and the type-detection gate.
type TemplateService interface {
	// Register creates the template and its first version, which is
	// immediately active. Templates detected below the confidence threshold
	// start unconfirmed.
	Register(ctx context.Context, input RegisterTemplateInput) (*models.Template, error)

	// Get returns a template by id. Fails with ErrNotFound.
	Get(ctx context.Context, templateID uuid.UUID) (*models.Template, error)

	// List returns all registered templates.
	List(ctx context.Context) ([]*models.Template, error)

	// ConfirmType records the user's explicit confirmation of the detected
	// document type.
	ConfirmType(ctx context.Context, templateID uuid.UUID) error

	// EvaluateDetection runs the detection gate for a template against the
	// configured threshold.
	EvaluateDetection(ctx context.Context, templateID uuid.UUID) (models.DetectionResult, error)
}

type templateService struct {
	templateRepo repositories.TemplateRepository
	versionSvc   VersionService
	threshold    float64
	logger       *zap.Logger
}

// NewTemplateService creates a new TemplateService. The threshold is the
// document-type confidence cutoff below which registration leaves the
// template unconfirmed.
func NewTemplateService(
	templateRepo repositories.TemplateRepository,
	versionSvc VersionService,
	threshold float64,
	logger *zap.Logger,
) TemplateService {
	return &templateService{
		templateRepo: templateRepo,
		versionSvc:   versionSvc,
		threshold:    threshold,
		logger:       logger.Named("template-service"),
	}
}

var _ TemplateService = (*templateService)(nil)

func (s *templateService) Register(ctx context.Context, input RegisterTemplateInput) (*models.Template, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("template name is required: %w", apperrors.ErrValidation)
	}
	if !isValidDocumentType(input.DocumentType) {
		return nil, fmt.Errorf("unknown document type %q: %w", input.DocumentType, apperrors.ErrValidation)
	}

	placeholders := dedupePlaceholders(input.Placeholders)
	mapping := normalizeMapping(input.Mapping, placeholders)

	gate := models.EvaluateDetection(input.DetectionConfidence, s.threshold)

	template := &models.Template{
		Name:                input.Name,
		DocumentType:        input.DocumentType,
		Placeholders:        placeholders,
		Mapping:             mapping,
		DetectionConfidence: input.DetectionConfidence,
		Confirmed:           !gate.RequiresConfirmation,
		CreatedBy:           input.CreatedBy,
	}

	if err := s.templateRepo.Create(ctx, template); err != nil {
		return nil, err
	}

	version, err := s.versionSvc.CreateVersion(ctx, template.ID, placeholders, mapping, CreateVersionOptions{
		CreatedBy: input.CreatedBy,
		Notes:     "Initial version",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create initial version: %w", err)
	}

	s.logger.Info("Registered template",
		zap.String("template_id", template.ID.String()),
		zap.String("document_type", template.DocumentType),
		zap.Int("placeholders", len(placeholders)),
		zap.Int("version_number", version.VersionNumber),
		zap.Bool("requires_confirmation", gate.RequiresConfirmation))

	return template, nil
}

func (s *templateService) Get(ctx context.Context, templateID uuid.UUID) (*models.Template, error) {
	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, fmt.Errorf("template %s: %w", templateID, apperrors.ErrNotFound)
	}
	return template, nil
}

func (s *templateService) List(ctx context.Context) ([]*models.Template, error) {
	return s.templateRepo.List(ctx)
}

func (s *templateService) ConfirmType(ctx context.Context, templateID uuid.UUID) error {
	if err := s.templateRepo.SetConfirmed(ctx, templateID, true); err != nil {
		return err
	}

	s.logger.Info("Confirmed template document type",
		zap.String("template_id", templateID.String()))
	return nil
}

func (s *templateService) EvaluateDetection(ctx context.Context, templateID uuid.UUID) (models.DetectionResult, error) {
	template, err := s.Get(ctx, templateID)
	if err != nil {
		return models.DetectionResult{}, err
	}
	return models.EvaluateDetection(template.DetectionConfidence, s.threshold), nil
}

// dedupePlaceholders removes duplicate placeholder names while preserving
// first-seen order. A placeholder is unique per template.
func dedupePlaceholders(placeholders []string) []string {
	seen := make(map[string]struct{}, len(placeholders))
	out := make([]string, 0, len(placeholders))
	for _, p := range placeholders {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// normalizeMapping drops entries for placeholders not in the template and
// entries with an empty target (empty target means self-identity, which is
// the default and is never stored).
func normalizeMapping(mapping models.PlaceholderMapping, placeholders []string) models.PlaceholderMapping {
	valid := make(map[string]struct{}, len(placeholders))
	for _, p := range placeholders {
		valid[p] = struct{}{}
	}

	normalized := models.PlaceholderMapping{}
	for placeholder, target := range mapping {
		if target == "" {
			continue
		}
		if _, ok := valid[placeholder]; !ok {
			continue
		}
		normalized[placeholder] = target
	}
	return normalized
}
