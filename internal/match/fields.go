package match

import (
	"strings"
	"time"

	"hearthbox/pkg/types"
)

// FieldRole is a canonical meaning assigned to an extracted field key.
type FieldRole string

const (
	RoleName        FieldRole = "name"
	RoleIdentifier  FieldRole = "identifier"
	RoleDateOfBirth FieldRole = "date_of_birth"
)

// roleMatchers maps each role to the key fragments that select it. Keys are
// compared lowercased. Order matters: the first role whose fragment hits wins.
var roleMatchers = []struct {
	role      FieldRole
	fragments []string
}{
	{RoleDateOfBirth, []string{"date of birth", "birth", "dob"}},
	{RoleIdentifier, []string{"ssn", "social security", "member id", "policy number", "id number", "identifier"}},
	{RoleName, []string{"name"}},
}

// ClassifyKey resolves a field key to its role, or "" when the key carries no
// match signal.
func ClassifyKey(key string) FieldRole {
	lowered := strings.ToLower(strings.TrimSpace(key))
	for _, m := range roleMatchers {
		for _, fragment := range m.fragments {
			if strings.Contains(lowered, fragment) {
				return m.role
			}
		}
	}
	return ""
}

// Signals is the canonical reduction of an extracted field list that the
// matcher scores against the roster.
type Signals struct {
	// Name is the best-guess person name, lowercased and trimmed.
	Name string
	// IDLast4 is the digits-only tail of any SSN/ID-like field.
	IDLast4 string
	// DateOfBirth is normalized to YYYY-MM-DD, or empty when unparseable.
	DateOfBirth string
}

var dobLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"02 Jan 2006",
}

// ExtractSignals reduces fields to match signals. The first field classified
// into each role supplies the value; later fields for the same role are
// ignored.
func ExtractSignals(fields []*types.ExtractedField) Signals {
	var sig Signals

	for _, field := range fields {
		switch ClassifyKey(field.FieldKey) {
		case RoleName:
			if sig.Name == "" {
				sig.Name = strings.ToLower(strings.TrimSpace(field.FieldValue))
			}
		case RoleIdentifier:
			if sig.IDLast4 == "" {
				sig.IDLast4 = digitTail(field.FieldValue, 4)
			}
		case RoleDateOfBirth:
			if sig.DateOfBirth == "" {
				sig.DateOfBirth = NormalizeDOB(field.FieldValue)
			}
		}
	}

	return sig
}

// NormalizeDOB parses a date string in any supported layout and renders it as
// YYYY-MM-DD. Unparseable input yields "".
func NormalizeDOB(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	for _, layout := range dobLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.Format("2006-01-02")
		}
	}

	return ""
}

// digitTail keeps only digits and returns up to the last n of them.
func digitTail(value string, n int) string {
	var digits []rune
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}

	if len(digits) == 0 {
		return ""
	}
	if len(digits) > n {
		digits = digits[len(digits)-n:]
	}

	return string(digits)
}
