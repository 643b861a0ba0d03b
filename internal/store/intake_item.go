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

const intakeItemTableName = "hearthbox.intake_items"

var intakeItemColumns = utils.StructTagValues(types.IntakeItem{})

type IntakeItemRepository struct {
	pool *pgxpool.Pool
}

func NewIntakeItemRepository(pool *pgxpool.Pool) *IntakeItemRepository {
	return &IntakeItemRepository{pool: pool}
}

func (r *IntakeItemRepository) Item(ctx context.Context, itemID string) (*types.IntakeItem, error) {
	query, args, err := psql().
		Select(intakeItemColumns...).
		From(intakeItemTableName).
		Where(sq.Eq{"id": itemID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate intake item query: %w", err)
	}

	var item types.IntakeItem
	err = pgxscan.Get(ctx, r.pool, &item, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to fetch intake item: %w", err)
	}

	return &item, nil
}

// ActiveItemsByHousehold returns the household's non-dismissed items, newest
// upload first, for the review inbox.
func (r *IntakeItemRepository) ActiveItemsByHousehold(ctx context.Context, householdID string) ([]*types.IntakeItem, error) {
	query, args, err := psql().
		Select(intakeItemColumns...).
		From(intakeItemTableName).
		Where(sq.Eq{"household_id": householdID}).
		Where(sq.NotEq{"status": types.ItemStatusDismissed}).
		OrderBy("uploaded_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate intake items query: %w", err)
	}

	var items []*types.IntakeItem
	err = pgxscan.Select(ctx, r.pool, &items, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch intake items: %w", err)
	}

	return items, nil
}

func (r *IntakeItemRepository) Create(ctx context.Context, item *types.IntakeItem) error {
	if item.UploadedAt.IsZero() {
		item.UploadedAt = time.Now()
	}

	query, args, err := psql().
		Insert(intakeItemTableName).
		SetMap(utils.StructToMap(item)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert intake item: %w", err)
	}

	return nil
}

// Update persists the item guarded by its revision. The write only lands when
// the stored revision still matches; a miss surfaces as ErrRevisionConflict so
// racing callers never overwrite each other's transitions.
func (r *IntakeItemRepository) Update(ctx context.Context, item *types.IntakeItem) error {
	currentRevision := item.Revision
	item.Revision = currentRevision + 1

	values := utils.StructToMap(item)
	delete(values, "id")

	query, args, err := psql().
		Update(intakeItemTableName).
		SetMap(values).
		Where(sq.Eq{"id": item.ID, "revision": currentRevision}).
		ToSql()
	if err != nil {
		item.Revision = currentRevision
		return fmt.Errorf("failed to generate update query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		item.Revision = currentRevision
		return fmt.Errorf("failed to update intake item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		item.Revision = currentRevision
		return types.ErrRevisionConflict
	}

	return nil
}

func (r *IntakeItemRepository) Delete(ctx context.Context, itemID string) error {
	query, args, err := psql().
		Delete(intakeItemTableName).
		Where(sq.Eq{"id": itemID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete intake item: %w", err)
	}

	return nil
}
