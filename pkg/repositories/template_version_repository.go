package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/notarial-tech/plantilla-engine/pkg/apperrors"
	"github.com/notarial-tech/plantilla-engine/pkg/database"
	"github.com/notarial-tech/plantilla-engine/pkg/models"
)

// TemplateVersionRepository provides data access for template version
// snapshots. Create and Activate are the only writers of the is_active flag
// and both flip it inside a transaction that locks the owning template row,
// so concurrent transitions for the same template serialize at the storage
// layer. A partial unique index (uq_template_versions_active) is the final
// guard against two active versions.
type TemplateVersionRepository interface {
	Create(ctx context.Context, version *models.TemplateVersion) error
	ListByTemplate(ctx context.Context, templateID uuid.UUID) ([]*models.TemplateVersion, error)
	GetByID(ctx context.Context, versionID uuid.UUID) (*models.TemplateVersion, error)
	GetActive(ctx context.Context, templateID uuid.UUID) (*models.TemplateVersion, error)
	Activate(ctx context.Context, templateID, versionID uuid.UUID) (*models.TemplateVersion, error)
}

type templateVersionRepository struct {
	db *database.DB
}

// NewTemplateVersionRepository creates a new TemplateVersionRepository.
func NewTemplateVersionRepository(db *database.DB) TemplateVersionRepository {
	return &templateVersionRepository{db: db}
}

var _ TemplateVersionRepository = (*templateVersionRepository)(nil)

// Create allocates the next version number for the template, deactivates the
// currently active version and inserts the new snapshot as active - all in
// one transaction. The template's mirror columns are refreshed in the same
// transaction. Returns apperrors.ErrNotFound when the template does not
// exist.
func (r *templateVersionRepository) Create(ctx context.Context, version *models.TemplateVersion) error {
	if version.ID == uuid.Nil {
		version.ID = uuid.New()
	}
	version.CreatedAt = time.Now()
	version.IsActive = true

	placeholdersJSON, mappingJSON, err := marshalSnapshot(version.Placeholders, version.Mapping)
	if err != nil {
		return err
	}

	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := lockTemplate(ctx, tx, version.TemplateID); err != nil {
			return err
		}

		err := tx.QueryRow(ctx, `
			SELECT COALESCE(MAX(version_number), 0) + 1
			FROM engine_template_versions
			WHERE template_id = $1`,
			version.TemplateID,
		).Scan(&version.VersionNumber)
		if err != nil {
			return fmt.Errorf("failed to allocate version number: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE engine_template_versions
			SET is_active = false
			WHERE template_id = $1 AND is_active = true`,
			version.TemplateID,
		)
		if err != nil {
			return fmt.Errorf("failed to deactivate prior version: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO engine_template_versions (
				id, template_id, version_number, placeholders, placeholder_mapping,
				is_active, created_by, notes, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			version.ID, version.TemplateID, version.VersionNumber,
			placeholdersJSON, mappingJSON,
			version.IsActive, version.CreatedBy, version.Notes, version.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create template version: %w", err)
		}

		return mirrorActiveSnapshot(ctx, tx, version.TemplateID, placeholdersJSON, mappingJSON)
	})
}

func (r *templateVersionRepository) ListByTemplate(ctx context.Context, templateID uuid.UUID) ([]*models.TemplateVersion, error) {
	query := `
		SELECT id, template_id, version_number, placeholders, placeholder_mapping,
		       is_active, created_by, notes, created_at
		FROM engine_template_versions
		WHERE template_id = $1
		ORDER BY version_number ASC`

	rows, err := r.db.Query(ctx, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query template versions: %w", err)
	}
	defer rows.Close()

	var versions []*models.TemplateVersion
	for rows.Next() {
		version, err := scanTemplateVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating template versions: %w", err)
	}

	return versions, nil
}

func (r *templateVersionRepository) GetByID(ctx context.Context, versionID uuid.UUID) (*models.TemplateVersion, error) {
	query := `
		SELECT id, template_id, version_number, placeholders, placeholder_mapping,
		       is_active, created_by, notes, created_at
		FROM engine_template_versions
		WHERE id = $1`

	row := r.db.QueryRow(ctx, query, versionID)
	version, err := scanTemplateVersion(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Version not found
		}
		return nil, err
	}

	return version, nil
}

func (r *templateVersionRepository) GetActive(ctx context.Context, templateID uuid.UUID) (*models.TemplateVersion, error) {
	query := `
		SELECT id, template_id, version_number, placeholders, placeholder_mapping,
		       is_active, created_by, notes, created_at
		FROM engine_template_versions
		WHERE template_id = $1 AND is_active = true`

	row := r.db.QueryRow(ctx, query, templateID)
	version, err := scanTemplateVersion(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // No active version
		}
		return nil, err
	}

	return version, nil
}

// Activate flips the active flag to the target version (rollback path).
// No new version number is allocated. Activating the already-active version
// is a successful no-op. Returns apperrors.ErrNotFound when the version does
// not exist or belongs to a different template.
func (r *templateVersionRepository) Activate(ctx context.Context, templateID, versionID uuid.UUID) (*models.TemplateVersion, error) {
	var target *models.TemplateVersion

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := lockTemplate(ctx, tx, templateID); err != nil {
			return err
		}

		row := tx.QueryRow(ctx, `
			SELECT id, template_id, version_number, placeholders, placeholder_mapping,
			       is_active, created_by, notes, created_at
			FROM engine_template_versions
			WHERE id = $1 AND template_id = $2`,
			versionID, templateID,
		)
		var err error
		target, err = scanTemplateVersion(row)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.ErrNotFound
			}
			return err
		}

		if target.IsActive {
			// Already active: rollback stays idempotent under retries.
			return nil
		}

		_, err = tx.Exec(ctx, `
			UPDATE engine_template_versions
			SET is_active = false
			WHERE template_id = $1 AND is_active = true`,
			templateID,
		)
		if err != nil {
			return fmt.Errorf("failed to deactivate current version: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE engine_template_versions
			SET is_active = true
			WHERE id = $1`,
			versionID,
		)
		if err != nil {
			return fmt.Errorf("failed to activate version: %w", err)
		}

		placeholdersJSON, mappingJSON, err := marshalSnapshot(target.Placeholders, target.Mapping)
		if err != nil {
			return err
		}
		return mirrorActiveSnapshot(ctx, tx, templateID, placeholdersJSON, mappingJSON)
	})
	if err != nil {
		return nil, err
	}

	target.IsActive = true
	return target, nil
}

// ============================================================================
// Helper Functions
// ============================================================================

// lockTemplate takes a row lock on the owning template so concurrent
// active-flag transitions for the same template serialize.
func lockTemplate(ctx context.Context, tx pgx.Tx, templateID uuid.UUID) error {
	var id uuid.UUID
	err := tx.QueryRow(ctx,
		`SELECT id FROM engine_templates WHERE id = $1 FOR UPDATE`,
		templateID,
	).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to lock template: %w", err)
	}
	return nil
}

// mirrorActiveSnapshot refreshes the template's convenience copy of the
// active version's placeholders and mapping.
func mirrorActiveSnapshot(ctx context.Context, tx pgx.Tx, templateID uuid.UUID, placeholdersJSON, mappingJSON []byte) error {
	_, err := tx.Exec(ctx, `
		UPDATE engine_templates
		SET placeholders = $2, placeholder_mapping = $3, updated_at = NOW()
		WHERE id = $1`,
		templateID, placeholdersJSON, mappingJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to mirror active snapshot: %w", err)
	}
	return nil
}

func scanTemplateVersion(row pgx.Row) (*models.TemplateVersion, error) {
	var v models.TemplateVersion
	var placeholdersJSON, mappingJSON []byte

	err := row.Scan(
		&v.ID,
		&v.TemplateID,
		&v.VersionNumber,
		&placeholdersJSON,
		&mappingJSON,
		&v.IsActive,
		&v.CreatedBy,
		&v.Notes,
		&v.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan template version: %w", err)
	}

	if err := unmarshalSnapshot(placeholdersJSON, mappingJSON, &v.Placeholders, &v.Mapping); err != nil {
		return nil, err
	}

	return &v, nil
}
