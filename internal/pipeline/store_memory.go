package pipeline

import (
	"context"
	"sort"
	"sync"

	"hearthbox/pkg/types"
)

// MemoryStore is an in-process implementation of every store the pipeline
// consumes. It backs tests and local development without postgres; one lock
// gives it the same atomicity the postgres stores get from transactions.
type MemoryStore struct {
	mu          sync.RWMutex
	items       map[string]*types.IntakeItem
	fields      map[string][]*types.ExtractedField
	members     map[string]*types.HouseholdMember
	assignments []*types.MemberFileAssignment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:   make(map[string]*types.IntakeItem),
		fields:  make(map[string][]*types.ExtractedField),
		members: make(map[string]*types.HouseholdMember),
	}
}

func (s *MemoryStore) Item(_ context.Context, itemID string) (*types.IntakeItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[itemID]
	if !ok {
		return nil, types.ErrItemNotFound
	}

	copied := *item
	return &copied, nil
}

func (s *MemoryStore) ActiveItemsByHousehold(_ context.Context, householdID string) ([]*types.IntakeItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []*types.IntakeItem
	for _, item := range s.items {
		if item.HouseholdID != householdID || item.Status == types.ItemStatusDismissed {
			continue
		}
		copied := *item
		items = append(items, &copied)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].UploadedAt.After(items[j].UploadedAt)
	})

	return items, nil
}

func (s *MemoryStore) Create(_ context.Context, item *types.IntakeItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *item
	s.items[item.ID] = &copied
	return nil
}

func (s *MemoryStore) Update(_ context.Context, item *types.IntakeItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateLocked(item)
}

// updateLocked applies the revision compare-and-swap. Callers hold the lock.
func (s *MemoryStore) updateLocked(item *types.IntakeItem) error {
	stored, ok := s.items[item.ID]
	if !ok {
		return types.ErrItemNotFound
	}
	if stored.Revision != item.Revision {
		return types.ErrRevisionConflict
	}

	item.Revision++
	copied := *item
	s.items[item.ID] = &copied
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, itemID)
	return nil
}

func (s *MemoryStore) FieldsByItem(_ context.Context, itemID string) ([]*types.ExtractedField, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields := make([]*types.ExtractedField, 0, len(s.fields[itemID]))
	for _, field := range s.fields[itemID] {
		copied := *field
		fields = append(fields, &copied)
	}

	return fields, nil
}

func (s *MemoryStore) Replace(_ context.Context, itemID string, fields []*types.ExtractedField) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	replacement := make([]*types.ExtractedField, 0, len(fields))
	for _, field := range fields {
		copied := *field
		replacement = append(replacement, &copied)
	}
	s.fields[itemID] = replacement

	return nil
}

func (s *MemoryStore) DeleteByItem(_ context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.fields, itemID)
	return nil
}

func (s *MemoryStore) Member(_ context.Context, memberID string) (*types.HouseholdMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	member, ok := s.members[memberID]
	if !ok {
		return nil, types.ErrMemberNotFound
	}

	copied := *member
	return &copied, nil
}

func (s *MemoryStore) MembersByHousehold(_ context.Context, householdID string) ([]*types.HouseholdMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var members []*types.HouseholdMember
	for _, member := range s.members {
		if member.HouseholdID != householdID {
			continue
		}
		copied := *member
		members = append(members, &copied)
	}

	sort.Slice(members, func(i, j int) bool {
		if members[i].CreatedAt.Equal(members[j].CreatedAt) {
			return members[i].ID < members[j].ID
		}
		return members[i].CreatedAt.Before(members[j].CreatedAt)
	})

	return members, nil
}

// AddMember seeds a directory entry. The pipeline itself never writes here.
func (s *MemoryStore) AddMember(member *types.HouseholdMember) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *member
	s.members[member.ID] = &copied
}

func (s *MemoryStore) Accept(_ context.Context, item *types.IntakeItem, assignment *types.MemberFileAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.updateLocked(item); err != nil {
		return err
	}

	copied := *assignment
	s.assignments = append(s.assignments, &copied)
	return nil
}

// Assignments returns every stored assignment, for test inspection.
func (s *MemoryStore) Assignments() []*types.MemberFileAssignment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assignments := make([]*types.MemberFileAssignment, 0, len(s.assignments))
	for _, assignment := range s.assignments {
		copied := *assignment
		assignments = append(assignments, &copied)
	}

	return assignments
}
