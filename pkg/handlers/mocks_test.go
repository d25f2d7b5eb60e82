package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/notarial-tech/plantilla-engine/pkg/models"
	"github.com/notarial-tech/plantilla-engine/pkg/services"
)

// mockVersionService is a mock for services.VersionService.
type mockVersionService struct {
	versions []*models.TemplateVersion
	active   *models.TemplateVersion

	activation *services.ActivationResult
	comparison *services.ComparisonResult

	createErr   error
	listErr     error
	activeErr   error
	activateErr error
	compareErr  error
}

func (m *mockVersionService) CreateVersion(_ context.Context, templateID uuid.UUID, placeholders []string, mapping models.PlaceholderMapping, _ services.CreateVersionOptions) (*models.TemplateVersion, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	version := &models.TemplateVersion{
		ID:            uuid.New(),
		TemplateID:    templateID,
		VersionNumber: len(m.versions) + 1,
		Placeholders:  placeholders,
		Mapping:       mapping,
		IsActive:      true,
	}
	m.versions = append(m.versions, version)
	m.active = version
	return version, nil
}

func (m *mockVersionService) ListVersions(_ context.Context, _ uuid.UUID) ([]*models.TemplateVersion, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.versions, nil
}

func (m *mockVersionService) GetActiveVersion(_ context.Context, _ uuid.UUID) (*models.TemplateVersion, error) {
	if m.activeErr != nil {
		return nil, m.activeErr
	}
	return m.active, nil
}

func (m *mockVersionService) ActivateVersion(_ context.Context, _, _ uuid.UUID) (*services.ActivationResult, error) {
	if m.activateErr != nil {
		return nil, m.activateErr
	}
	return m.activation, nil
}

func (m *mockVersionService) CompareVersions(_ context.Context, _, _, _ uuid.UUID) (*services.ComparisonResult, error) {
	if m.compareErr != nil {
		return nil, m.compareErr
	}
	return m.comparison, nil
}

// mockMappingService is a mock for services.MappingService.
type mockMappingService struct {
	view   *services.MappingView
	result *services.CommitResult

	getErr    error
	commitErr error
}

func (m *mockMappingService) GetMapping(_ context.Context, _ uuid.UUID) (*services.MappingView, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.view, nil
}

func (m *mockMappingService) CommitMapping(_ context.Context, _ uuid.UUID, _ services.CommitMappingInput) (*services.CommitResult, error) {
	if m.commitErr != nil {
		return nil, m.commitErr
	}
	return m.result, nil
}

func (m *mockMappingService) NewSession() *services.MappingSession {
	return nil
}

// mockTemplateService is a mock for services.TemplateService.
type mockTemplateService struct {
	template  *models.Template
	templates []*models.Template
	detection models.DetectionResult

	registerErr error
	getErr      error
	listErr     error
	confirmErr  error
	detectErr   error
}

func (m *mockTemplateService) Register(_ context.Context, input services.RegisterTemplateInput) (*models.Template, error) {
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	template := &models.Template{
		ID:                  uuid.New(),
		Name:                input.Name,
		DocumentType:        input.DocumentType,
		Placeholders:        input.Placeholders,
		Mapping:             input.Mapping,
		DetectionConfidence: input.DetectionConfidence,
		Confirmed:           true,
	}
	m.template = template
	return template, nil
}

func (m *mockTemplateService) Get(_ context.Context, _ uuid.UUID) (*models.Template, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.template, nil
}

func (m *mockTemplateService) List(_ context.Context) ([]*models.Template, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.templates, nil
}

func (m *mockTemplateService) ConfirmType(_ context.Context, _ uuid.UUID) error {
	return m.confirmErr
}

func (m *mockTemplateService) EvaluateDetection(_ context.Context, _ uuid.UUID) (models.DetectionResult, error) {
	if m.detectErr != nil {
		return models.DetectionResult{}, m.detectErr
	}
	return m.detection, nil
}

// mockCatalogService is a mock for services.CatalogService.
type mockCatalogService struct {
	keys []models.StandardKey

	getErr     error
	replaceErr error
}

func (m *mockCatalogService) KeysFor(_ context.Context, _ string) ([]models.StandardKey, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.keys, nil
}

func (m *mockCatalogService) ReplaceCatalog(_ context.Context, documentType string, keys []models.StandardKey) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	for i := range keys {
		keys[i].DocumentType = documentType
		keys[i].Position = i
	}
	m.keys = keys
	return nil
}
