package pipeline

import (
	"context"

	"hearthbox/pkg/types"
)

// ItemStore persists intake items. Update is a compare-and-swap on the item
// revision and returns types.ErrRevisionConflict on a lost race.
type ItemStore interface {
	Item(ctx context.Context, itemID string) (*types.IntakeItem, error)
	ActiveItemsByHousehold(ctx context.Context, householdID string) ([]*types.IntakeItem, error)
	Create(ctx context.Context, item *types.IntakeItem) error
	Update(ctx context.Context, item *types.IntakeItem) error
	Delete(ctx context.Context, itemID string) error
}

// FieldStore persists extracted fields. Replace swaps an item's full field
// set atomically so retried analyses never accumulate duplicates.
type FieldStore interface {
	FieldsByItem(ctx context.Context, itemID string) ([]*types.ExtractedField, error)
	Replace(ctx context.Context, itemID string, fields []*types.ExtractedField) error
	DeleteByItem(ctx context.Context, itemID string) error
}

// ObjectRemover deletes a stored document. Satisfied by storage.S3Storage.
type ObjectRemover interface {
	Delete(ctx context.Context, key string) error
}

// MemberDirectory is the read-only household roster lookup.
type MemberDirectory interface {
	Member(ctx context.Context, memberID string) (*types.HouseholdMember, error)
	MembersByHousehold(ctx context.Context, householdID string) ([]*types.HouseholdMember, error)
}

// AssignmentStore finalizes acceptance: the assignment row and the item's
// accepted status must land together or not at all.
type AssignmentStore interface {
	Accept(ctx context.Context, item *types.IntakeItem, assignment *types.MemberFileAssignment) error
}
