package types

import "time"

// IntakeItem is one uploaded document under review. The pipeline owns its
// status; extracted fields and assignments hang off it.
type IntakeItem struct {
	ID          string `db:"id" json:"id"`
	HouseholdID string `db:"household_id" json:"householdId"`
	SubmittedBy string `db:"submitted_by" json:"submittedBy"`

	FileName   string `db:"file_name" json:"fileName"`
	StorageKey string `db:"storage_key" json:"storageKey"`
	SizeBytes  int64  `db:"size_bytes" json:"sizeBytes"`
	MimeType   string `db:"mime_type" json:"mimeType"`

	Status            string     `db:"status" json:"status"`
	AnalysisCompleted bool       `db:"analysis_completed" json:"analysisCompleted"`
	FailureReason     *string    `db:"failure_reason" json:"failureReason,omitempty"`
	UploadedAt        time.Time  `db:"uploaded_at" json:"uploadedAt"`
	ProcessedAt       *time.Time `db:"processed_at" json:"processedAt,omitempty"`
	AcceptedAt        *time.Time `db:"accepted_at" json:"acceptedAt,omitempty"`
	DismissedAt       *time.Time `db:"dismissed_at" json:"dismissedAt,omitempty"`

	SuggestedMemberID *string `db:"suggested_member_id" json:"suggestedMemberId,omitempty"`
	Confidence        *int    `db:"confidence" json:"confidence,omitempty"`

	// Revision guards status writes; every update is a compare-and-swap.
	Revision int `db:"revision" json:"-"`
}

// Item status constants
const (
	ItemStatusPending   = "pending"
	ItemStatusAnalyzing = "analyzing"
	ItemStatusSuggested = "suggested"
	ItemStatusDismissed = "dismissed"
	ItemStatusAccepted  = "accepted"
)

// Terminal reports whether the item has reached a final disposition.
func (i *IntakeItem) Terminal() bool {
	return i.Status == ItemStatusAccepted || i.Status == ItemStatusDismissed
}

// ExtractedField is one key/value datum pulled out of a document.
type ExtractedField struct {
	ID           string    `db:"id" json:"id"`
	IntakeItemID string    `db:"intake_item_id" json:"intakeItemId"`
	FieldKey     string    `db:"field_key" json:"fieldKey"`
	FieldValue   string    `db:"field_value" json:"fieldValue"`
	Confidence   int       `db:"confidence" json:"confidence"`
	IsPii        bool      `db:"is_pii" json:"isPii"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Suggestion is the matcher's best candidate for an item.
type Suggestion struct {
	MemberID   string `json:"memberId"`
	Confidence int    `json:"confidence"`
}
