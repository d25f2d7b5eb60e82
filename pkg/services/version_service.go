package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/notarial-tech/plantilla-engine/pkg/apperrors"
	"github.com/notarial-tech/plantilla-engine/pkg/models"
	"github.com/notarial-tech/plantilla-engine/pkg/repositories"
)

// CreateVersionOptions carries optional metadata for a new version snapshot.
type CreateVersionOptions struct {
	CreatedBy *uuid.UUID
	Notes     string

	// BaseVersionNumber, when set, is the active version number the caller
	// loaded before editing. Creation fails with ErrConcurrentModification
	// if the store has moved past it.
	BaseVersionNumber *int
}

// ActivationResult describes the outcome of a rollback.
type ActivationResult struct {
	Activated *models.TemplateVersion `json:"activated_version"`
	// PreviousActiveNumber is the version number that was active before the
	// call, nil when the target was already active (idempotent retry).
	PreviousActiveNumber *int `json:"previous_active_version_number,omitempty"`
	Changed              bool `json:"changed"`
}

// ComparisonResult is a placeholder diff plus the denormalized version
// summaries the UI renders next to it.
type ComparisonResult struct {
	Diff models.VersionDiff    `json:"diff"`
	From models.VersionSummary `json:"from"`
	To   models.VersionSummary `json:"to"`
}

// VersionService owns template version history: snapshot creation, listing,
// rollback and diffing. Active-flag transitions for one template are
// serialized through a per-template mutex on top of the repository's
// row-lock transaction.
type VersionService interface {
	// CreateVersion snapshots the given placeholders and mapping as the next
	// version and activates it, deactivating the prior active version.
	CreateVersion(ctx context.Context, templateID uuid.UUID, placeholders []string, mapping models.PlaceholderMapping, opts CreateVersionOptions) (*models.TemplateVersion, error)

	// ListVersions returns all versions of a template ordered by version
	// number ascending.
	ListVersions(ctx context.Context, templateID uuid.UUID) ([]*models.TemplateVersion, error)

	// GetActiveVersion returns the template's active version. Fails with
	// ErrNoActiveVersion when the template has no versions yet.
	GetActiveVersion(ctx context.Context, templateID uuid.UUID) (*models.TemplateVersion, error)

	// ActivateVersion re-activates an existing version (rollback). No new
	// version number is allocated. Activating the already-active version is
	// a successful no-op.
	ActivateVersion(ctx context.Context, templateID, versionID uuid.UUID) (*ActivationResult, error)

	// CompareVersions diffs the placeholder sets of two versions of the
	// template. The first id is the baseline, the second the candidate.
	CompareVersions(ctx context.Context, templateID, versionID1, versionID2 uuid.UUID) (*ComparisonResult, error)
}

type versionService struct {
	templateRepo repositories.TemplateRepository
	versionRepo  repositories.TemplateVersionRepository
	locks        *templateLocks
	logger       *zap.Logger
}

// NewVersionService creates a new VersionService.
func NewVersionService(
	templateRepo repositories.TemplateRepository,
	versionRepo repositories.TemplateVersionRepository,
	logger *zap.Logger,
) VersionService {
	return &versionService{
		templateRepo: templateRepo,
		versionRepo:  versionRepo,
		locks:        newTemplateLocks(),
		logger:       logger.Named("version-service"),
	}
}

var _ VersionService = (*versionService)(nil)

func (s *versionService) CreateVersion(ctx context.Context, templateID uuid.UUID, placeholders []string, mapping models.PlaceholderMapping, opts CreateVersionOptions) (*models.TemplateVersion, error) {
	mu := s.locks.lockFor(templateID)
	mu.Lock()
	defer mu.Unlock()

	if opts.BaseVersionNumber != nil {
		active, err := s.versionRepo.GetActive(ctx, templateID)
		if err != nil {
			return nil, fmt.Errorf("failed to check current active version: %w", err)
		}
		if active != nil && active.VersionNumber != *opts.BaseVersionNumber {
			return nil, fmt.Errorf("active version is %d, expected %d: %w",
				active.VersionNumber, *opts.BaseVersionNumber, apperrors.ErrConcurrentModification)
		}
	}

	version := &models.TemplateVersion{
		TemplateID:   templateID,
		Placeholders: placeholders,
		Mapping:      mapping,
		CreatedBy:    opts.CreatedBy,
		Notes:        opts.Notes,
	}

	if err := s.versionRepo.Create(ctx, version); err != nil {
		return nil, err
	}

	s.logger.Info("Created template version",
		zap.String("template_id", templateID.String()),
		zap.Int("version_number", version.VersionNumber))

	return version, nil
}

func (s *versionService) ListVersions(ctx context.Context, templateID uuid.UUID) ([]*models.TemplateVersion, error) {
	if err := s.requireTemplate(ctx, templateID); err != nil {
		return nil, err
	}
	return s.versionRepo.ListByTemplate(ctx, templateID)
}

func (s *versionService) GetActiveVersion(ctx context.Context, templateID uuid.UUID) (*models.TemplateVersion, error) {
	if err := s.requireTemplate(ctx, templateID); err != nil {
		return nil, err
	}

	active, err := s.versionRepo.GetActive(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, apperrors.ErrNoActiveVersion
	}
	return active, nil
}

func (s *versionService) ActivateVersion(ctx context.Context, templateID, versionID uuid.UUID) (*ActivationResult, error) {
	mu := s.locks.lockFor(templateID)
	mu.Lock()
	defer mu.Unlock()

	previous, err := s.versionRepo.GetActive(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to read current active version: %w", err)
	}

	activated, err := s.versionRepo.Activate(ctx, templateID, versionID)
	if err != nil {
		return nil, err
	}

	result := &ActivationResult{Activated: activated}
	if previous != nil && previous.ID != activated.ID {
		result.PreviousActiveNumber = &previous.VersionNumber
		result.Changed = true

		s.logger.Info("Rolled back template version",
			zap.String("template_id", templateID.String()),
			zap.Int("from_version", previous.VersionNumber),
			zap.Int("to_version", activated.VersionNumber))
	}

	return result, nil
}

func (s *versionService) CompareVersions(ctx context.Context, templateID, versionID1, versionID2 uuid.UUID) (*ComparisonResult, error) {
	from, err := s.getTemplateVersion(ctx, templateID, versionID1)
	if err != nil {
		return nil, err
	}
	to, err := s.getTemplateVersion(ctx, templateID, versionID2)
	if err != nil {
		return nil, err
	}

	return &ComparisonResult{
		Diff: models.CompareVersions(from, to),
		From: from.Summary(),
		To:   to.Summary(),
	}, nil
}

func (s *versionService) getTemplateVersion(ctx context.Context, templateID, versionID uuid.UUID) (*models.TemplateVersion, error) {
	version, err := s.versionRepo.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if version == nil || version.TemplateID != templateID {
		return nil, fmt.Errorf("version %s: %w", versionID, apperrors.ErrNotFound)
	}
	return version, nil
}

func (s *versionService) requireTemplate(ctx context.Context, templateID uuid.UUID) error {
	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return err
	}
	if template == nil {
		return fmt.Errorf("template %s: %w", templateID, apperrors.ErrNotFound)
	}
	return nil
}

// ============================================================================
// Per-template serialization
// ============================================================================

// templateLocks hands out one mutex per template id so active-version
// transitions for the same template never interleave in-process. The
// repository's row lock covers cross-process writers.
type templateLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newTemplateLocks() *templateLocks {
	return &templateLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *templateLocks) lockFor(templateID uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	mu, ok := l.locks[templateID]
	if !ok {
		mu = &sync.Mutex{}
		l.locks[templateID] = mu
	}
	return mu
}
