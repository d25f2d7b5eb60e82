package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/notarial-tech/plantilla-engine/pkg/database"
	"github.com/notarial-tech/plantilla-engine/pkg/models"
)

// StandardKeyRepository provides data access for the standard key catalog.
type StandardKeyRepository interface {
	GetByDocumentType(ctx context.Context, documentType string) ([]models.StandardKey, error)
	ReplaceForDocumentType(ctx context.Context, documentType string, keys []models.StandardKey) error
}

type standardKeyRepository struct {
	db *database.DB
}

// NewStandardKeyRepository creates a new StandardKeyRepository.
func NewStandardKeyRepository(db *database.DB) StandardKeyRepository {
	return &standardKeyRepository{db: db}
}

var _ StandardKeyRepository = (*standardKeyRepository)(nil)

func (r *standardKeyRepository) GetByDocumentType(ctx context.Context, documentType string) ([]models.StandardKey, error) {
	query := `
		SELECT id, document_type, key, description, aliases, position, created_at
		FROM engine_standard_keys
		WHERE document_type = $1
		ORDER BY position, key`

	rows, err := r.db.Query(ctx, query, documentType)
	if err != nil {
		return nil, fmt.Errorf("failed to query standard keys: %w", err)
	}
	defer rows.Close()

	var keys []models.StandardKey
	for rows.Next() {
		key, err := scanStandardKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, *key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating standard keys: %w", err)
	}

	return keys, nil
}

// ReplaceForDocumentType swaps the whole catalog for a document type in one
// transaction, preserving the given key order via position.
func (r *standardKeyRepository) ReplaceForDocumentType(ctx context.Context, documentType string, keys []models.StandardKey) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM engine_standard_keys WHERE document_type = $1`, documentType)
		if err != nil {
			return fmt.Errorf("failed to clear standard keys: %w", err)
		}

		insert := `
			INSERT INTO engine_standard_keys (document_type, key, description, aliases, position)
			VALUES ($1, $2, $3, $4, $5)`

		for i, k := range keys {
			aliasesJSON, err := json.Marshal(k.Aliases)
			if err != nil {
				return fmt.Errorf("failed to marshal aliases: %w", err)
			}
			if k.Aliases == nil {
				aliasesJSON = []byte("[]")
			}

			if _, err := tx.Exec(ctx, insert, documentType, k.Key, k.Description, aliasesJSON, i); err != nil {
				return fmt.Errorf("failed to insert standard key %q: %w", k.Key, err)
			}
		}
		return nil
	})
}

func scanStandardKey(row pgx.Row) (*models.StandardKey, error) {
	var k models.StandardKey
	var aliasesJSON []byte

	err := row.Scan(&k.ID, &k.DocumentType, &k.Key, &k.Description, &aliasesJSON, &k.Position, &k.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan standard key: %w", err)
	}

	if len(aliasesJSON) > 0 && string(aliasesJSON) != "null" {
		if err := json.Unmarshal(aliasesJSON, &k.Aliases); err != nil {
			return nil, fmt.Errorf("failed to unmarshal aliases: %w", err)
		}
	}

	return &k, nil
}
