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

const memberTableName = "hearthbox.household_members"

var memberColumns = utils.StructTagValues(types.HouseholdMember{})

// MemberRepository is the household directory. The intake pipeline only reads
// from it; writes exist for provisioning and seeding.
type MemberRepository struct {
	pool *pgxpool.Pool
}

func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

func (r *MemberRepository) Member(ctx context.Context, memberID string) (*types.HouseholdMember, error) {
	query, args, err := psql().
		Select(memberColumns...).
		From(memberTableName).
		Where(sq.Eq{"id": memberID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate member query: %w", err)
	}

	var member types.HouseholdMember
	err = pgxscan.Get(ctx, r.pool, &member, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}

	return &member, nil
}

func (r *MemberRepository) MembersByHousehold(ctx context.Context, householdID string) ([]*types.HouseholdMember, error) {
	query, args, err := psql().
		Select(memberColumns...).
		From(memberTableName).
		Where(sq.Eq{"household_id": householdID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate members query: %w", err)
	}

	var members []*types.HouseholdMember
	err = pgxscan.Select(ctx, r.pool, &members, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch household members: %w", err)
	}

	return members, nil
}

func (r *MemberRepository) Create(ctx context.Context, member *types.HouseholdMember) error {
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now()
	}

	query, args, err := psql().
		Insert(memberTableName).
		SetMap(utils.StructToMap(member)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert household member: %w", err)
	}

	return nil
}
