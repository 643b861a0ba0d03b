package store

import (
	"context"
	"fmt"
	"time"

	"hearthbox/internal/utils"
	"hearthbox/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const extractedFieldTableName = "hearthbox.extracted_fields"

var extractedFieldColumns = utils.StructTagValues(types.ExtractedField{})

type ExtractedFieldRepository struct {
	pool *pgxpool.Pool
}

func NewExtractedFieldRepository(pool *pgxpool.Pool) *ExtractedFieldRepository {
	return &ExtractedFieldRepository{pool: pool}
}

func (r *ExtractedFieldRepository) FieldsByItem(ctx context.Context, itemID string) ([]*types.ExtractedField, error) {
	query, args, err := psql().
		Select(extractedFieldColumns...).
		From(extractedFieldTableName).
		Where(sq.Eq{"intake_item_id": itemID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate fields query: %w", err)
	}

	var fields []*types.ExtractedField
	err = pgxscan.Select(ctx, r.pool, &fields, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch extracted fields: %w", err)
	}

	return fields, nil
}

// Replace swaps the item's field set in one transaction. A re-analysis lands
// a fresh set instead of piling duplicates on top of the previous pass.
func (r *ExtractedFieldRepository) Replace(ctx context.Context, itemID string, fields []*types.ExtractedField) error {
	now := time.Now()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	deleteQuery, deleteArgs, err := psql().
		Delete(extractedFieldTableName).
		Where(sq.Eq{"intake_item_id": itemID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete query: %w", err)
	}

	_, err = tx.Exec(ctx, deleteQuery, deleteArgs...)
	if err != nil {
		return fmt.Errorf("failed to delete prior fields: %w", err)
	}

	if len(fields) > 0 {
		builder := psql().
			Insert(extractedFieldTableName).
			Columns(extractedFieldColumns...)

		for _, field := range fields {
			if field.CreatedAt.IsZero() {
				field.CreatedAt = now
			}
			builder = builder.Values(
				field.ID,
				field.IntakeItemID,
				field.FieldKey,
				field.FieldValue,
				field.Confidence,
				field.IsPii,
				field.CreatedAt,
			)
		}

		insertQuery, insertArgs, err := builder.ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate insert query: %w", err)
		}

		_, err = tx.Exec(ctx, insertQuery, insertArgs...)
		if err != nil {
			return fmt.Errorf("failed to insert extracted fields: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *ExtractedFieldRepository) DeleteByItem(ctx context.Context, itemID string) error {
	query, args, err := psql().
		Delete(extractedFieldTableName).
		Where(sq.Eq{"intake_item_id": itemID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete extracted fields: %w", err)
	}

	return nil
}
