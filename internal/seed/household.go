package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hearthbox/internal/storage"
	"hearthbox/internal/store"
	"hearthbox/internal/utils"
	"hearthbox/pkg/types"
)

func date(year, month, day int) *time.Time {
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &d
}

// DemoMembers returns a small household roster with the match signals the
// pipeline scores against (name, DOB, identifier tail).
func DemoMembers(householdID string) []*types.HouseholdMember {
	return []*types.HouseholdMember{
		{
			ID:          utils.NanoID(),
			HouseholdID: householdID,
			DisplayName: "Jordan Alvarez",
			Role:        types.MemberRoleParent,
			DateOfBirth: date(1984, 3, 17),
			IDLast4:     "4418",
		},
		{
			ID:          utils.NanoID(),
			HouseholdID: householdID,
			DisplayName: "Priya Alvarez",
			Role:        types.MemberRoleParent,
			DateOfBirth: date(1986, 11, 2),
			IDLast4:     "9072",
		},
		{
			ID:          utils.NanoID(),
			HouseholdID: householdID,
			DisplayName: "Maya Alvarez",
			Role:        types.MemberRoleChild,
			DateOfBirth: date(2014, 6, 30),
			IDLast4:     "2231",
		},
	}
}

// SeedHousehold provisions a demo household directory and returns its id.
func SeedHousehold(ctx context.Context, memberRepo *store.MemberRepository) (string, []*types.HouseholdMember, error) {
	householdID := utils.NanoID()

	members := DemoMembers(householdID)
	for _, member := range members {
		if err := memberRepo.Create(ctx, member); err != nil {
			return "", nil, fmt.Errorf("seed member %s: %w", member.DisplayName, err)
		}
	}

	return householdID, members, nil
}

// DocumentUploader stores document bytes under a key. Satisfied by
// storage.S3Storage.
type DocumentUploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// SampleDocument renders an insurance-card style document carrying the
// member's match signals in the extractor's "Key: Value" line format.
func SampleDocument(member *types.HouseholdMember) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "Person Name: %s\n", member.DisplayName)
	if member.DateOfBirth != nil {
		fmt.Fprintf(&b, "Date of Birth: %s\n", member.DateOfBirth.Format("2006-01-02"))
	}
	if member.IDLast4 != "" {
		fmt.Fprintf(&b, "Member ID: xxx-xx-%s\n", member.IDLast4)
	}
	b.WriteString("Provider: Lakeview Health\n")
	return []byte(b.String())
}

// PlantDocument uploads a sample document for the member so a seeded install
// can register and analyze an item straight away. Returns the storage key.
func PlantDocument(ctx context.Context, uploader DocumentUploader, member *types.HouseholdMember) (string, error) {
	key := storage.ObjectKey(member.HouseholdID, "insurance-card.txt")

	if _, err := uploader.Upload(ctx, key, SampleDocument(member), "text/plain"); err != nil {
		return "", fmt.Errorf("plant sample document: %w", err)
	}

	return key, nil
}
