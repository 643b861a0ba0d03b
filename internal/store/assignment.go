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

const assignmentTableName = "hearthbox.member_file_assignments"

var assignmentColumns = utils.StructTagValues(types.MemberFileAssignment{})

// AssignmentRepository persists member file assignments and owns the accept
// disposition: the assignment row and the item's status flip commit together
// or not at all.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

func (r *AssignmentRepository) AssignmentsByMember(ctx context.Context, householdID, memberID string) ([]*types.MemberFileAssignment, error) {
	query, args, err := psql().
		Select(assignmentColumns...).
		From(assignmentTableName).
		Where(sq.Eq{"household_id": householdID, "member_id": memberID}).
		OrderBy("assigned_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate assignments query: %w", err)
	}

	var assignments []*types.MemberFileAssignment
	err = pgxscan.Select(ctx, r.pool, &assignments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	return assignments, nil
}

// Accept writes the assignment and the accepted item in one transaction. The
// item write is revision-guarded like IntakeItemRepository.Update.
func (r *AssignmentRepository) Accept(ctx context.Context, item *types.IntakeItem, assignment *types.MemberFileAssignment) error {
	if assignment.AssignedAt.IsZero() {
		assignment.AssignedAt = time.Now()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	insertQuery, insertArgs, err := psql().
		Insert(assignmentTableName).
		SetMap(utils.StructToMap(assignment)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert query: %w", err)
	}

	_, err = tx.Exec(ctx, insertQuery, insertArgs...)
	if err != nil {
		return fmt.Errorf("failed to insert assignment: %w", err)
	}

	currentRevision := item.Revision
	item.Revision = currentRevision + 1

	values := utils.StructToMap(item)
	delete(values, "id")

	updateQuery, updateArgs, err := psql().
		Update(intakeItemTableName).
		SetMap(values).
		Where(sq.Eq{"id": item.ID, "revision": currentRevision}).
		ToSql()
	if err != nil {
		item.Revision = currentRevision
		return fmt.Errorf("failed to generate item update query: %w", err)
	}

	tag, err := tx.Exec(ctx, updateQuery, updateArgs...)
	if err != nil {
		item.Revision = currentRevision
		return fmt.Errorf("failed to update intake item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		item.Revision = currentRevision
		return types.ErrRevisionConflict
	}

	if err := tx.Commit(ctx); err != nil {
		item.Revision = currentRevision
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
