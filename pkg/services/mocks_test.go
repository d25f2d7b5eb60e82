package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/notarial-tech/plantilla-engine/pkg/apperrors"
	"github.com/notarial-tech/plantilla-engine/pkg/models"
)

// mockTemplateRepo implements repositories.TemplateRepository for testing.
type mockTemplateRepo struct {
	templates map[uuid.UUID]*models.Template

	createErr error
	getErr    error
	listErr   error
	setErr    error
}

func newMockTemplateRepo() *mockTemplateRepo {
	return &mockTemplateRepo{templates: make(map[uuid.UUID]*models.Template)}
}

func (m *mockTemplateRepo) Create(_ context.Context, template *models.Template) error {
	if m.createErr != nil {
		return m.createErr
	}
	template.ID = uuid.New()
	template.CreatedAt = time.Now()
	template.UpdatedAt = template.CreatedAt
	m.templates[template.ID] = template
	return nil
}

func (m *mockTemplateRepo) GetByID(_ context.Context, templateID uuid.UUID) (*models.Template, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.templates[templateID], nil
}

func (m *mockTemplateRepo) List(_ context.Context) ([]*models.Template, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*models.Template, 0, len(m.templates))
	for _, t := range m.templates {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockTemplateRepo) SetConfirmed(_ context.Context, templateID uuid.UUID, confirmed bool) error {
	if m.setErr != nil {
		return m.setErr
	}
	template, ok := m.templates[templateID]
	if !ok {
		return fmt.Errorf("template %s: %w", templateID, apperrors.ErrNotFound)
	}
	template.Confirmed = confirmed
	return nil
}

// mockVersionRepo implements repositories.TemplateVersionRepository with the
// same transition semantics as the real store: gapless numbering, a single
// active version per template, and the active snapshot mirrored onto the
// template row.
type mockVersionRepo struct {
	templates *mockTemplateRepo
	versions  map[uuid.UUID]*models.TemplateVersion

	createErr   error
	activateErr error
	getErr      error
}

func newMockVersionRepo(templates *mockTemplateRepo) *mockVersionRepo {
	return &mockVersionRepo{
		templates: templates,
		versions:  make(map[uuid.UUID]*models.TemplateVersion),
	}
}

func (m *mockVersionRepo) Create(_ context.Context, version *models.TemplateVersion) error {
	if m.createErr != nil {
		return m.createErr
	}
	template, ok := m.templates.templates[version.TemplateID]
	if !ok {
		return fmt.Errorf("template %s: %w", version.TemplateID, apperrors.ErrNotFound)
	}

	next := 1
	for _, v := range m.versions {
		if v.TemplateID == version.TemplateID {
			if v.VersionNumber >= next {
				next = v.VersionNumber + 1
			}
			v.IsActive = false
		}
	}

	version.ID = uuid.New()
	version.VersionNumber = next
	version.IsActive = true
	version.CreatedAt = time.Now()
	m.versions[version.ID] = version

	template.Placeholders = version.Placeholders
	template.Mapping = version.Mapping
	return nil
}

func (m *mockVersionRepo) ListByTemplate(_ context.Context, templateID uuid.UUID) ([]*models.TemplateVersion, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var out []*models.TemplateVersion
	for _, v := range m.versions {
		if v.TemplateID == templateID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber < out[j].VersionNumber })
	return out, nil
}

func (m *mockVersionRepo) GetByID(_ context.Context, versionID uuid.UUID) (*models.TemplateVersion, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.versions[versionID], nil
}

func (m *mockVersionRepo) GetActive(_ context.Context, templateID uuid.UUID) (*models.TemplateVersion, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, v := range m.versions {
		if v.TemplateID == templateID && v.IsActive {
			return v, nil
		}
	}
	return nil, nil
}

func (m *mockVersionRepo) Activate(_ context.Context, templateID, versionID uuid.UUID) (*models.TemplateVersion, error) {
	if m.activateErr != nil {
		return nil, m.activateErr
	}
	target, ok := m.versions[versionID]
	if !ok || target.TemplateID != templateID {
		return nil, fmt.Errorf("version %s: %w", versionID, apperrors.ErrNotFound)
	}
	if target.IsActive {
		return target, nil
	}

	for _, v := range m.versions {
		if v.TemplateID == templateID {
			v.IsActive = false
		}
	}
	target.IsActive = true

	if template, ok := m.templates.templates[templateID]; ok {
		template.Placeholders = target.Placeholders
		template.Mapping = target.Mapping
	}
	return target, nil
}

// mockStandardKeyRepo implements repositories.StandardKeyRepository for testing.
type mockStandardKeyRepo struct {
	catalogs map[string][]models.StandardKey

	getErr     error
	replaceErr error
}

func newMockStandardKeyRepo() *mockStandardKeyRepo {
	return &mockStandardKeyRepo{catalogs: make(map[string][]models.StandardKey)}
}

func (m *mockStandardKeyRepo) GetByDocumentType(_ context.Context, documentType string) ([]models.StandardKey, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.catalogs[documentType], nil
}

func (m *mockStandardKeyRepo) ReplaceForDocumentType(_ context.Context, documentType string, keys []models.StandardKey) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	stored := make([]models.StandardKey, len(keys))
	for i, k := range keys {
		k.ID = uuid.New()
		k.DocumentType = documentType
		k.Position = i
		k.CreatedAt = time.Now()
		stored[i] = k
	}
	m.catalogs[documentType] = stored
	return nil
}

// standardKeys builds a catalog from key names, in order.
func standardKeys(documentType string, names ...string) []models.StandardKey {
	keys := make([]models.StandardKey, len(names))
	for i, name := range names {
		keys[i] = models.StandardKey{
			ID:           uuid.New(),
			DocumentType: documentType,
			Key:          name,
			Position:     i,
		}
	}
	return keys
}
