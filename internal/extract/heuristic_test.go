package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"hearthbox/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeByteSource struct {
	objects map[string][]byte
}

func (f *fakeByteSource) FetchBytes(_ context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, types.ErrFileNotFound
	}
	return data, nil
}

func newFakeSource(key string, data []byte) *fakeByteSource {
	return &fakeByteSource{objects: map[string][]byte{key: data}}
}

func TestHeuristicExtractParsesKeyValueLines(t *testing.T) {
	doc := "Person Name: Jordan Alvarez\n" +
		"SSN: 123-45-4418\n" +
		"Date of Birth: 03/17/1984\n" +
		"just a paragraph with no separator\n" +
		"Provider: Lakeview Pediatrics\n"

	extractor := NewHeuristicExtractor(newFakeSource("doc.txt", []byte(doc))).WithLatency(0)

	fields, err := extractor.Extract(context.Background(), "doc.txt")
	require.NoError(t, err)
	require.Len(t, fields, 4)

	assert.Equal(t, "Person Name", fields[0].FieldKey)
	assert.Equal(t, "Jordan Alvarez", fields[0].FieldValue)
	assert.Equal(t, heuristicConfidence, fields[0].Confidence)
	assert.False(t, fields[0].IsPii)

	assert.Equal(t, "SSN", fields[1].FieldKey)
	assert.True(t, fields[1].IsPii)

	assert.Equal(t, "Date of Birth", fields[2].FieldKey)
	assert.True(t, fields[2].IsPii)

	assert.Equal(t, "Provider", fields[3].FieldKey)
	assert.False(t, fields[3].IsPii)
}

func TestHeuristicExtractBinaryContent(t *testing.T) {
	extractor := NewHeuristicExtractor(newFakeSource("blob", []byte{0xff, 0xfe, 0x00, 0x81})).WithLatency(0)

	fields, err := extractor.Extract(context.Background(), "blob")

	require.NoError(t, err, "unreadable content is not an error")
	assert.Empty(t, fields)
}

func TestHeuristicExtractStorageErrorPropagates(t *testing.T) {
	extractor := NewHeuristicExtractor(newFakeSource("other", nil)).WithLatency(0)

	_, err := extractor.Extract(context.Background(), "missing")

	assert.ErrorIs(t, err, types.ErrFileNotFound)
}

func TestHeuristicExtractHonorsContextCancellation(t *testing.T) {
	extractor := NewHeuristicExtractor(newFakeSource("doc.txt", []byte("Key: Value"))).WithLatency(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := extractor.Extract(ctx, "doc.txt")

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestIsPiiKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{key: "SSN", want: true},
		{key: "Social Security Number", want: true},
		{key: "Date of Birth", want: true},
		{key: "Phone Number", want: true},
		{key: "Home Address", want: true},
		{key: "Policy Number", want: true},
		{key: "Provider", want: false},
		{key: "Document Title", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPiiKey(tt.key))
		})
	}
}
