package ingredient

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kapu/skincheck-go/internal/domain"
	"github.com/kapu/skincheck-go/internal/service/database"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Schema creates the dataset table used by Repository.
const Schema = `
CREATE TABLE IF NOT EXISTS ingredients (
	id          SERIAL PRIMARY KEY,
	kor_name    TEXT NOT NULL UNIQUE,
	eng_name    TEXT,
	description TEXT,
	purpose     TEXT[] NOT NULL DEFAULT '{}',
	good_for    TEXT[] NOT NULL DEFAULT '{}',
	bad_for     TEXT[] NOT NULL DEFAULT '{}'
)`

// Repository reads and writes the ingredient dataset in PostgreSQL.
type Repository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewRepository(postgres *database.PostgresService, logger *zap.Logger) *Repository {
	return &Repository{
		db:     postgres.GetDB(),
		logger: logger,
	}
}

// Load returns every record ordered by id, which preserves import order.
func (r *Repository) Load(ctx context.Context) ([]*domain.IngredientRecord, error) {
	query := `
		SELECT kor_name, eng_name, description, purpose, good_for, bad_for
		FROM ingredients
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer rows.Close()

	var records []*domain.IngredientRecord
	for rows.Next() {
		var (
			korName     string
			engName     sql.NullString
			description sql.NullString
			purpose     []string
			goodFor     []string
			badFor      []string
		)

		if err := rows.Scan(&korName, &engName, &description,
			pq.Array(&purpose), pq.Array(&goodFor), pq.Array(&badFor)); err != nil {
			r.logger.Warn("Failed to scan ingredient row", zap.Error(err))
			continue
		}

		record := &domain.IngredientRecord{
			KoreanName: korName,
			Purpose:    purpose,
			GoodFor:    goodFor,
			BadFor:     badFor,
		}
		if engName.Valid {
			record.EnglishName = engName.String
		}
		if description.Valid {
			record.Description = description.String
		}
		if record.KoreanName == "" {
			record.KoreanName = record.EnglishName
		}
		if record.KoreanName == "" {
			continue
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingredients: %w", err)
	}
	return records, nil
}

// EnsureSchema creates the table when it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create ingredients table: %w", err)
	}
	return nil
}

// Upsert writes records in a single transaction keyed by Korean name.
func (r *Repository) Upsert(ctx context.Context, records []*domain.IngredientRecord) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ingredients (kor_name, eng_name, description, purpose, good_for, bad_for)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (kor_name) DO UPDATE SET
			eng_name = EXCLUDED.eng_name,
			description = EXCLUDED.description,
			purpose = EXCLUDED.purpose,
			good_for = EXCLUDED.good_for,
			bad_for = EXCLUDED.bad_for
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, record := range records {
		if record == nil || record.DisplayName() == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx,
			record.DisplayName(),
			nullString(record.EnglishName),
			nullString(record.Description),
			pq.Array(nonNil(record.Purpose)),
			pq.Array(nonNil(record.GoodFor)),
			pq.Array(nonNil(record.BadFor)),
		); err != nil {
			return written, fmt.Errorf("failed to upsert %s: %w", record.DisplayName(), err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return written, fmt.Errorf("failed to commit: %w", err)
	}
	return written, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
