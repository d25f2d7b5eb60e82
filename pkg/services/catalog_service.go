package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/notarial-tech/plantilla-engine/pkg/apperrors"
	"github.com/notarial-tech/plantilla-engine/pkg/models"
	"github.com/notarial-tech/plantilla-engine/pkg/repositories"
)

// CatalogService exposes the standard key catalog: the canonical field keys
// recognized per document type. Read-mostly; ReplaceCatalog is the seeding
// path used by catalog administration.
type CatalogService interface {
	// KeysFor returns the standard keys registered for a document type in
	// catalog order. Fails with ErrNotFound when the document type has no
	// registered catalog.
	KeysFor(ctx context.Context, documentType string) ([]models.StandardKey, error)

	// ReplaceCatalog atomically swaps the catalog for a document type.
	ReplaceCatalog(ctx context.Context, documentType string, keys []models.StandardKey) error
}

type catalogService struct {
	keyRepo repositories.StandardKeyRepository
	logger  *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(keyRepo repositories.StandardKeyRepository, logger *zap.Logger) CatalogService {
	return &catalogService{
		keyRepo: keyRepo,
		logger:  logger.Named("catalog-service"),
	}
}

var _ CatalogService = (*catalogService)(nil)

func (s *catalogService) KeysFor(ctx context.Context, documentType string) ([]models.StandardKey, error) {
	keys, err := s.keyRepo.GetByDocumentType(ctx, documentType)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no catalog registered for document type %q: %w", documentType, apperrors.ErrNotFound)
	}
	return keys, nil
}

func (s *catalogService) ReplaceCatalog(ctx context.Context, documentType string, keys []models.StandardKey) error {
	if !isValidDocumentType(documentType) {
		return fmt.Errorf("unknown document type %q: %w", documentType, apperrors.ErrValidation)
	}
	if len(keys) == 0 {
		return fmt.Errorf("catalog must contain at least one key: %w", apperrors.ErrValidation)
	}

	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k.Key == "" {
			return fmt.Errorf("standard key name is required: %w", apperrors.ErrValidation)
		}
		if _, dup := seen[k.Key]; dup {
			return fmt.Errorf("duplicate standard key %q: %w", k.Key, apperrors.ErrValidation)
		}
		seen[k.Key] = struct{}{}
	}

	if err := s.keyRepo.ReplaceForDocumentType(ctx, documentType, keys); err != nil {
		return err
	}

	s.logger.Info("Replaced standard key catalog",
		zap.String("document_type", documentType),
		zap.Int("keys", len(keys)))

	return nil
}

func isValidDocumentType(documentType string) bool {
	for _, dt := range models.ValidDocumentTypes {
		if dt == documentType {
			return true
		}
	}
	return false
}
