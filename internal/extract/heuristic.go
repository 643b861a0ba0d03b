package extract

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"hearthbox/pkg/types"
)

const (
	// Stand-in for the latency of a real OCR backend.
	defaultSimulatedLatency = 2 * time.Second

	heuristicConfidence = 90
	maxHeuristicFields  = 64
)

// HeuristicExtractor parses plain-text documents of "Key: Value" lines. It is
// the development and test extractor; content it cannot read produces an
// empty field list rather than an error.
type HeuristicExtractor struct {
	source  ByteSource
	latency time.Duration
}

func NewHeuristicExtractor(source ByteSource) *HeuristicExtractor {
	return &HeuristicExtractor{
		source:  source,
		latency: defaultSimulatedLatency,
	}
}

// WithLatency overrides the simulated processing delay. Tests set zero.
func (e *HeuristicExtractor) WithLatency(d time.Duration) *HeuristicExtractor {
	e.latency = d
	return e
}

func (e *HeuristicExtractor) Extract(ctx context.Context, locator string) ([]*types.ExtractedField, error) {
	data, err := e.source.FetchBytes(ctx, locator)
	if err != nil {
		return nil, err
	}

	if e.latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(e.latency):
		}
	}

	if !utf8.Valid(data) {
		return []*types.ExtractedField{}, nil
	}

	fields := make([]*types.ExtractedField, 0)
	for _, line := range strings.Split(string(data), "\n") {
		if len(fields) >= maxHeuristicFields {
			break
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}

		fields = append(fields, &types.ExtractedField{
			FieldKey:   key,
			FieldValue: value,
			Confidence: heuristicConfidence,
			IsPii:      IsPiiKey(key),
		})
	}

	return fields, nil
}
