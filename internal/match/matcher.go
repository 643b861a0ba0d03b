package match

import (
	"math"
	"strings"

	"hearthbox/internal/utils"
	"hearthbox/pkg/types"
)

// Signal weights. Exact and partial name matches are mutually exclusive; the
// partial weight only applies when the exact comparison did not fire.
const (
	weightExactName     = 0.60
	weightPartialName   = 0.30
	weightIdentifier    = 0.35
	weightDateOfBirth   = 0.25
	nameEditDistanceMax = 2

	// SuggestionThreshold is the minimum un-rounded score a candidate needs
	// before a suggestion is surfaced to the household.
	SuggestionThreshold = 0.50
)

// Suggest scores every roster member against the extracted fields and returns
// the best candidate, or nil when no candidate clears the threshold. Scoring
// is deterministic; ties keep the first candidate in roster order.
func Suggest(fields []*types.ExtractedField, roster []*types.HouseholdMember) *types.Suggestion {
	signals := ExtractSignals(fields)
	return SuggestFromSignals(signals, roster)
}

func SuggestFromSignals(signals Signals, roster []*types.HouseholdMember) *types.Suggestion {
	var best *types.HouseholdMember
	var bestScore float64

	for _, member := range roster {
		score := scoreCandidate(signals, member)
		if best == nil || score > bestScore {
			best = member
			bestScore = score
		}
	}

	if best == nil || bestScore < SuggestionThreshold {
		return nil
	}

	// All three signals together can exceed 1.0; displayed confidence is
	// capped at 100.
	confidence := int(math.Round(utils.RoundFloat64(bestScore, 2) * 100))
	if confidence > 100 {
		confidence = 100
	}

	return &types.Suggestion{
		MemberID:   best.ID,
		Confidence: confidence,
	}
}

func scoreCandidate(signals Signals, member *types.HouseholdMember) float64 {
	var score float64

	if signals.Name != "" {
		candidateName := strings.ToLower(strings.TrimSpace(member.DisplayName))
		if namesMatch(signals.Name, candidateName) {
			score += weightExactName
		} else if tokensOverlap(signals.Name, candidateName) {
			score += weightPartialName
		}
	}

	if signals.IDLast4 != "" && member.IDLast4 != "" && signals.IDLast4 == member.IDLast4 {
		score += weightIdentifier
	}

	if signals.DateOfBirth != "" && member.DateOfBirth != nil {
		if signals.DateOfBirth == member.DateOfBirth.Format("2006-01-02") {
			score += weightDateOfBirth
		}
	}

	return score
}

// namesMatch is the exact/near comparison: either full name contains the
// other, or they sit within a small edit distance of each other.
func namesMatch(extracted, candidate string) bool {
	if extracted == "" || candidate == "" {
		return false
	}

	if strings.Contains(candidate, extracted) || strings.Contains(extracted, candidate) {
		return true
	}

	return Levenshtein(extracted, candidate) <= nameEditDistanceMax
}

// tokensOverlap reports whether any token longer than two characters of one
// name is a substring of any token of the other.
func tokensOverlap(extracted, candidate string) bool {
	extractedTokens := strings.Fields(extracted)
	candidateTokens := strings.Fields(candidate)

	for _, et := range extractedTokens {
		if len(et) <= 2 {
			continue
		}
		for _, ct := range candidateTokens {
			if len(ct) <= 2 {
				continue
			}
			if strings.Contains(ct, et) || strings.Contains(et, ct) {
				return true
			}
		}
	}

	return false
}
