package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/notarial-tech/plantilla-engine/pkg/apperrors"
	"github.com/notarial-tech/plantilla-engine/pkg/models"
)

// MappingView is the read model for the mapping editor: per-placeholder
// resolutions plus aggregate statistics for the active version.
type MappingView struct {
	TemplateID    uuid.UUID                      `json:"template_id"`
	VersionNumber int                            `json:"version_number"`
	Resolutions   []models.PlaceholderResolution `json:"resolutions"`
	Stats         models.MappingStats            `json:"stats"`
}

// CommitMappingInput is the commit payload from the editor.
type CommitMappingInput struct {
	Mapping models.PlaceholderMapping
	// BaseVersionNumber, when set, is the version the editor loaded; commit
	// fails with ErrConcurrentModification if the store has moved past it.
	BaseVersionNumber *int
	Notes             string
	CreatedBy         *uuid.UUID
}

// CommitResult is the commit response: the new version plus the updated flag
// and human-readable message the UI surfaces.
type CommitResult struct {
	Version *models.TemplateVersion `json:"version"`
	Updated bool                    `json:"updated"`
	Message string                  `json:"message"`
}

// MappingService exposes mapping resolution and the editing workflow over
// the version store and catalog.
type MappingService interface {
	// GetMapping computes the resolution rows and statistics for the
	// template's current placeholders and active mapping.
	GetMapping(ctx context.Context, templateID uuid.UUID) (*MappingView, error)

	// CommitMapping validates and snapshots a full mapping as a new active
	// version. Committing a mapping identical to the active one still
	// allocates the next version number.
	CommitMapping(ctx context.Context, templateID uuid.UUID, input CommitMappingInput) (*CommitResult, error)

	// NewSession returns an unloaded interactive editing session.
	NewSession() *MappingSession
}

type mappingService struct {
	versionSvc VersionService
	templates  TemplateService
	catalog    CatalogService
	logger     *zap.Logger
}

// NewMappingService creates a new MappingService.
func NewMappingService(
	versionSvc VersionService,
	templates TemplateService,
	catalog CatalogService,
	logger *zap.Logger,
) MappingService {
	return &mappingService{
		versionSvc: versionSvc,
		templates:  templates,
		catalog:    catalog,
		logger:     logger.Named("mapping-service"),
	}
}

var _ MappingService = (*mappingService)(nil)

func (s *mappingService) GetMapping(ctx context.Context, templateID uuid.UUID) (*MappingView, error) {
	session := s.NewSession()
	if err := session.Load(ctx, templateID); err != nil {
		return nil, err
	}

	return &MappingView{
		TemplateID:    templateID,
		VersionNumber: session.baseVersionNumber,
		Resolutions:   session.Resolutions(),
		Stats:         session.Stats(),
	}, nil
}

func (s *mappingService) CommitMapping(ctx context.Context, templateID uuid.UUID, input CommitMappingInput) (*CommitResult, error) {
	session := s.NewSession()
	if err := session.Load(ctx, templateID); err != nil {
		return nil, err
	}

	// The editor submits the full mapping; entries naming placeholders the
	// template does not have are a caller bug, not state drift.
	for placeholder, target := range input.Mapping {
		if err := session.SetMapping(placeholder, target); err != nil {
			return nil, err
		}
	}
	// Placeholders absent from the payload reset to self-identity.
	for _, p := range session.placeholders {
		if _, ok := input.Mapping[p]; !ok {
			if err := session.SetMapping(p, ""); err != nil {
				return nil, err
			}
		}
	}

	if input.BaseVersionNumber != nil {
		if session.baseVersionNumber != *input.BaseVersionNumber {
			return nil, fmt.Errorf("active version is %d, expected %d: %w",
				session.baseVersionNumber, *input.BaseVersionNumber, apperrors.ErrConcurrentModification)
		}
	}

	version, err := session.Commit(ctx, CreateVersionOptions{
		CreatedBy: input.CreatedBy,
		Notes:     input.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Committed mapping",
		zap.String("template_id", templateID.String()),
		zap.Int("version_number", version.VersionNumber),
		zap.Int("entries", len(version.Mapping)))

	return &CommitResult{
		Version: version,
		Updated: true,
		Message: fmt.Sprintf("Mapping committed as version %d", version.VersionNumber),
	}, nil
}

func (s *mappingService) NewSession() *MappingSession {
	return NewMappingSession(s.versionSvc, s.templates, s.catalog)
}
