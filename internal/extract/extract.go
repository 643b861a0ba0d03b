package extract

import (
	"context"
	"strings"

	"hearthbox/pkg/types"
)

// Extractor turns a stored document into a flat list of typed fields. The
// locator is an opaque storage key; implementations fetch bytes themselves.
// Unreadable or unrecognized content yields an empty list, not an error;
// only storage and service failures propagate.
type Extractor interface {
	Extract(ctx context.Context, locator string) ([]*types.ExtractedField, error)
}

// ByteSource is the slice of object storage extractors depend on.
type ByteSource interface {
	FetchBytes(ctx context.Context, key string) ([]byte, error)
}

// piiKeyFragments classify field keys that carry personally identifying
// values. Classification is static per key, never inferred from the value.
var piiKeyFragments = []string{
	"ssn",
	"social security",
	"birth",
	"dob",
	"phone",
	"address",
	"email",
	"member id",
	"policy number",
	"id number",
	"identifier",
}

// IsPiiKey reports whether a field key denotes personally identifying data.
func IsPiiKey(key string) bool {
	lowered := strings.ToLower(key)
	for _, fragment := range piiKeyFragments {
		if strings.Contains(lowered, fragment) {
			return true
		}
	}
	return false
}
