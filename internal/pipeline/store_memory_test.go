package pipeline

import (
	"context"
	"testing"
	"time"

	"hearthbox/internal/utils"
	"hearthbox/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingItem(householdID string, uploadedAt time.Time) *types.IntakeItem {
	return &types.IntakeItem{
		ID:          utils.NanoID(),
		HouseholdID: householdID,
		SubmittedBy: "user-1",
		FileName:    "doc.txt",
		StorageKey:  "key/doc.txt",
		Status:      types.ItemStatusPending,
		UploadedAt:  uploadedAt,
	}
}

func TestMemoryStoreRevisionCAS(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	item := newPendingItem("hh1", time.Now())
	require.NoError(t, store.Create(ctx, item))

	// Two readers race the same transition; the second write loses.
	first, err := store.Item(ctx, item.ID)
	require.NoError(t, err)
	second, err := store.Item(ctx, item.ID)
	require.NoError(t, err)

	first.Status = types.ItemStatusAnalyzing
	require.NoError(t, store.Update(ctx, first))
	assert.Equal(t, 1, first.Revision)

	second.Status = types.ItemStatusAnalyzing
	err = store.Update(ctx, second)
	assert.ErrorIs(t, err, types.ErrRevisionConflict)

	stored, err := store.Item(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ItemStatusAnalyzing, stored.Status)
	assert.Equal(t, 1, stored.Revision)
}

func TestMemoryStoreUpdateMissingItem(t *testing.T) {
	store := NewMemoryStore()

	err := store.Update(context.Background(), newPendingItem("hh1", time.Now()))
	assert.ErrorIs(t, err, types.ErrItemNotFound)
}

func TestMemoryStoreActiveItemsExcludeDismissed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	older := newPendingItem("hh1", time.Now().Add(-time.Hour))
	newer := newPendingItem("hh1", time.Now())
	dismissed := newPendingItem("hh1", time.Now())
	dismissed.Status = types.ItemStatusDismissed
	foreign := newPendingItem("hh2", time.Now())

	for _, item := range []*types.IntakeItem{older, newer, dismissed, foreign} {
		require.NoError(t, store.Create(ctx, item))
	}

	items, err := store.ActiveItemsByHousehold(ctx, "hh1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, newer.ID, items[0].ID, "newest upload first")
	assert.Equal(t, older.ID, items[1].ID)
}

func TestMemoryStoreAcceptIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	item := newPendingItem("hh1", time.Now())
	require.NoError(t, store.Create(ctx, item))

	stale, err := store.Item(ctx, item.ID)
	require.NoError(t, err)

	current, err := store.Item(ctx, item.ID)
	require.NoError(t, err)
	current.Status = types.ItemStatusSuggested
	require.NoError(t, store.Update(ctx, current))

	stale.Status = types.ItemStatusAccepted
	err = store.Accept(ctx, stale, &types.MemberFileAssignment{
		ID:          utils.NanoID(),
		HouseholdID: "hh1",
		MemberID:    "m1",
	})
	require.ErrorIs(t, err, types.ErrRevisionConflict)
	assert.Empty(t, store.Assignments(), "losing the item CAS must not leave an assignment behind")

	current.Status = types.ItemStatusAccepted
	require.NoError(t, store.Accept(ctx, current, &types.MemberFileAssignment{
		ID:          utils.NanoID(),
		HouseholdID: "hh1",
		MemberID:    "m1",
	}))
	assert.Len(t, store.Assignments(), 1)
}

func TestMemoryStoreReplaceFields(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	itemID := utils.NanoID()
	first := []*types.ExtractedField{
		{ID: utils.NanoID(), IntakeItemID: itemID, FieldKey: "Name", FieldValue: "A"},
		{ID: utils.NanoID(), IntakeItemID: itemID, FieldKey: "SSN", FieldValue: "1234"},
	}
	require.NoError(t, store.Replace(ctx, itemID, first))

	second := []*types.ExtractedField{
		{ID: utils.NanoID(), IntakeItemID: itemID, FieldKey: "Name", FieldValue: "B"},
	}
	require.NoError(t, store.Replace(ctx, itemID, second))

	fields, err := store.FieldsByItem(ctx, itemID)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "B", fields[0].FieldValue)
}
