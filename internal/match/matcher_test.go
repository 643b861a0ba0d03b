package match

import (
	"testing"
	"time"

	"hearthbox/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func member(id, name, idLast4 string, dob *time.Time) *types.HouseholdMember {
	return &types.HouseholdMember{
		ID:          id,
		HouseholdID: "hh1",
		DisplayName: name,
		Role:        types.MemberRoleParent,
		DateOfBirth: dob,
		IDLast4:     idLast4,
	}
}

func dob(year, month, day int) *time.Time {
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &d
}

func nameField(value string) *types.ExtractedField {
	return &types.ExtractedField{FieldKey: "Person Name", FieldValue: value}
}

func ssnField(value string) *types.ExtractedField {
	return &types.ExtractedField{FieldKey: "SSN", FieldValue: value}
}

func dobField(value string) *types.ExtractedField {
	return &types.ExtractedField{FieldKey: "Date of Birth", FieldValue: value}
}

func TestSuggestNameAndIdentifier(t *testing.T) {
	roster := []*types.HouseholdMember{
		member("m1", "Angel Quintana", "2645", nil),
		member("m2", "Kassandra Santana", "4829", nil),
	}
	fields := []*types.ExtractedField{
		nameField("angel d quintana"),
		ssnField("2645"),
	}

	suggestion := Suggest(fields, roster)

	require.NotNil(t, suggestion)
	assert.Equal(t, "m1", suggestion.MemberID)
	assert.Equal(t, 95, suggestion.Confidence)
}

func TestSuggestExactNameOnly(t *testing.T) {
	roster := []*types.HouseholdMember{
		member("m1", "Angel Quintana", "", nil),
	}

	suggestion := Suggest([]*types.ExtractedField{nameField("angel quintana")}, roster)

	require.NotNil(t, suggestion)
	assert.Equal(t, "m1", suggestion.MemberID)
	assert.Equal(t, 60, suggestion.Confidence)
}

func TestSuggestPartialNameBelowThreshold(t *testing.T) {
	roster := []*types.HouseholdMember{
		member("m1", "Angela Jones", "", nil),
	}

	// Token overlap only (angel/angela); partial weight alone never clears
	// the threshold.
	suggestion := Suggest([]*types.ExtractedField{nameField("angel smith")}, roster)

	assert.Nil(t, suggestion)
}

func TestSuggestSingleSignalsBelowThreshold(t *testing.T) {
	tests := []struct {
		name   string
		fields []*types.ExtractedField
	}{
		{name: "identifier only", fields: []*types.ExtractedField{ssnField("123-45-4418")}},
		{name: "date of birth only", fields: []*types.ExtractedField{dobField("1984-03-17")}},
	}

	roster := []*types.HouseholdMember{
		member("m1", "Jordan Alvarez", "4418", dob(1984, 3, 17)),
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, Suggest(tt.fields, roster))
		})
	}
}

func TestSuggestPartialNamePlusDOBClearsThreshold(t *testing.T) {
	roster := []*types.HouseholdMember{
		member("m1", "Alexandria Alvarez-Smith", "", dob(1984, 3, 17)),
	}
	fields := []*types.ExtractedField{
		nameField("maria alvarez"),
		dobField("03/17/1984"),
	}

	suggestion := Suggest(fields, roster)

	require.NotNil(t, suggestion)
	assert.Equal(t, "m1", suggestion.MemberID)
	assert.Equal(t, 55, suggestion.Confidence)
}

func TestSuggestEmptyRoster(t *testing.T) {
	assert.Nil(t, Suggest([]*types.ExtractedField{nameField("anyone")}, nil))
}

func TestSuggestNoSignals(t *testing.T) {
	roster := []*types.HouseholdMember{
		member("m1", "Jordan Alvarez", "4418", dob(1984, 3, 17)),
	}

	fields := []*types.ExtractedField{
		{FieldKey: "Document Title", FieldValue: "Report Card"},
	}

	assert.Nil(t, Suggest(fields, roster))
}

func TestSuggestTieKeepsRosterOrder(t *testing.T) {
	// Twins: both score exact name + DOB identically.
	roster := []*types.HouseholdMember{
		member("m1", "Sam Alvarez", "", dob(2014, 6, 30)),
		member("m2", "Sam Alvarez", "", dob(2014, 6, 30)),
	}
	fields := []*types.ExtractedField{
		nameField("sam alvarez"),
		dobField("2014-06-30"),
	}

	suggestion := Suggest(fields, roster)

	require.NotNil(t, suggestion)
	assert.Equal(t, "m1", suggestion.MemberID)
	assert.Equal(t, 85, suggestion.Confidence)
}

func TestSuggestDeterministic(t *testing.T) {
	roster := []*types.HouseholdMember{
		member("m1", "Jordan Alvarez", "4418", dob(1984, 3, 17)),
		member("m2", "Priya Alvarez", "9072", dob(1986, 11, 2)),
	}
	fields := []*types.ExtractedField{
		nameField("jordan alvarez"),
		ssnField("xxx-xx-4418"),
		dobField("1984-03-17"),
	}

	first := Suggest(fields, roster)
	require.NotNil(t, first)
	assert.Equal(t, "m1", first.MemberID)
	assert.Equal(t, 100, first.Confidence, "confidence caps at 100 when every signal fires")

	for range 10 {
		again := Suggest(fields, roster)
		require.NotNil(t, again)
		assert.Equal(t, first, again)
	}
}

func TestSuggestEditDistanceNearMatch(t *testing.T) {
	roster := []*types.HouseholdMember{
		member("m1", "Jordan Alvares", "", nil),
	}

	// One substitution away; still the exact-match weight.
	suggestion := Suggest([]*types.ExtractedField{nameField("jordan alvarez")}, roster)

	require.NotNil(t, suggestion)
	assert.Equal(t, 60, suggestion.Confidence)
}
