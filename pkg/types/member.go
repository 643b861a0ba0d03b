package types

import "time"

// HouseholdMember is a directory entry. The pipeline only ever reads these.
type HouseholdMember struct {
	ID          string     `db:"id" json:"id"`
	HouseholdID string     `db:"household_id" json:"householdId"`
	DisplayName string     `db:"display_name" json:"displayName"`
	Role        string     `db:"role" json:"role"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	IDLast4     string     `db:"id_last4" json:"idLast4,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
}

// Member role constants
const (
	MemberRoleParent   = "parent"
	MemberRoleChild    = "child"
	MemberRoleGuardian = "guardian"
	MemberRoleOther    = "other"
)

// MemberFileAssignment binds an accepted document to a member's file cabinet.
// It is owned by the household, not by the intake item that produced it.
type MemberFileAssignment struct {
	ID          string            `db:"id" json:"id"`
	HouseholdID string            `db:"household_id" json:"householdId"`
	MemberID    string            `db:"member_id" json:"memberId"`
	StorageKey  string            `db:"storage_key" json:"storageKey"`
	FileName    string            `db:"file_name" json:"fileName"`
	Category    string            `db:"category" json:"category"`
	Metadata    map[string]string `db:"metadata" json:"metadata,omitempty"`
	AssignedBy  string            `db:"assigned_by" json:"assignedBy"`
	AssignedAt  time.Time         `db:"assigned_at" json:"assignedAt"`
}

// Assignment category constants
const (
	FileCategoryDocument  = "document"
	FileCategoryInsurance = "insurance"
	FileCategoryMedical   = "medical"
	FileCategorySchool    = "school"
	FileCategoryOther     = "other"
)
