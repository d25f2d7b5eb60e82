package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/notarial-tech/plantilla-engine/pkg/apperrors"
	"github.com/notarial-tech/plantilla-engine/pkg/database"
	"github.com/notarial-tech/plantilla-engine/pkg/models"
)

// TemplateRepository provides data access for registered templates.
type TemplateRepository interface {
	Create(ctx context.Context, template *models.Template) error
	GetByID(ctx context.Context, templateID uuid.UUID) (*models.Template, error)
	List(ctx context.Context) ([]*models.Template, error)
	SetConfirmed(ctx context.Context, templateID uuid.UUID, confirmed bool) error
}

type templateRepository struct {
	db *database.DB
}

// NewTemplateRepository creates a new TemplateRepository.
func NewTemplateRepository(db *database.DB) TemplateRepository {
	return &templateRepository{db: db}
}

var _ TemplateRepository = (*templateRepository)(nil)

func (r *templateRepository) Create(ctx context.Context, template *models.Template) error {
	now := time.Now()
	if template.ID == uuid.Nil {
		template.ID = uuid.New()
	}
	template.CreatedAt = now
	template.UpdatedAt = now

	placeholdersJSON, mappingJSON, err := marshalSnapshot(template.Placeholders, template.Mapping)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO engine_templates (
			id, name, document_type, placeholders, placeholder_mapping,
			detection_confidence, confirmed, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.db.Exec(ctx, query,
		template.ID,
		template.Name,
		template.DocumentType,
		placeholdersJSON,
		mappingJSON,
		template.DetectionConfidence,
		template.Confirmed,
		template.CreatedBy,
		template.CreatedAt,
		template.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}

	return nil
}

func (r *templateRepository) GetByID(ctx context.Context, templateID uuid.UUID) (*models.Template, error) {
	query := `
		SELECT id, name, document_type, placeholders, placeholder_mapping,
		       detection_confidence, confirmed, created_by, created_at, updated_at
		FROM engine_templates
		WHERE id = $1`

	row := r.db.QueryRow(ctx, query, templateID)
	template, err := scanTemplate(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Template not found
		}
		return nil, err
	}

	return template, nil
}

func (r *templateRepository) List(ctx context.Context) ([]*models.Template, error) {
	query := `
		SELECT id, name, document_type, placeholders, placeholder_mapping,
		       detection_confidence, confirmed, created_by, created_at, updated_at
		FROM engine_templates
		ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var templates []*models.Template
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, template)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating templates: %w", err)
	}

	return templates, nil
}

func (r *templateRepository) SetConfirmed(ctx context.Context, templateID uuid.UUID, confirmed bool) error {
	query := `
		UPDATE engine_templates
		SET confirmed = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query, templateID, confirmed)
	if err != nil {
		return fmt.Errorf("failed to update template confirmation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// ============================================================================
// Helper Functions
// ============================================================================

func scanTemplate(row pgx.Row) (*models.Template, error) {
	var t models.Template
	var placeholdersJSON, mappingJSON []byte

	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.DocumentType,
		&placeholdersJSON,
		&mappingJSON,
		&t.DetectionConfidence,
		&t.Confirmed,
		&t.CreatedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan template: %w", err)
	}

	if err := unmarshalSnapshot(placeholdersJSON, mappingJSON, &t.Placeholders, &t.Mapping); err != nil {
		return nil, err
	}

	return &t, nil
}

// marshalSnapshot encodes a placeholder list and mapping as JSONB values,
// normalizing nil to empty containers so the database never stores NULL.
func marshalSnapshot(placeholders []string, mapping models.PlaceholderMapping) ([]byte, []byte, error) {
	if placeholders == nil {
		placeholders = []string{}
	}
	placeholdersJSON, err := json.Marshal(placeholders)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal placeholders: %w", err)
	}

	if mapping == nil {
		mapping = models.PlaceholderMapping{}
	}
	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal placeholder_mapping: %w", err)
	}

	return placeholdersJSON, mappingJSON, nil
}

func unmarshalSnapshot(placeholdersJSON, mappingJSON []byte, placeholders *[]string, mapping *models.PlaceholderMapping) error {
	*placeholders = []string{}
	if len(placeholdersJSON) > 0 && string(placeholdersJSON) != "null" {
		if err := json.Unmarshal(placeholdersJSON, placeholders); err != nil {
			return fmt.Errorf("failed to unmarshal placeholders: %w", err)
		}
	}

	*mapping = models.PlaceholderMapping{}
	if len(mappingJSON) > 0 && string(mappingJSON) != "null" {
		if err := json.Unmarshal(mappingJSON, mapping); err != nil {
			return fmt.Errorf("failed to unmarshal placeholder_mapping: %w", err)
		}
	}

	return nil
}
