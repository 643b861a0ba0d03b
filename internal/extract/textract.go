package extract

import (
	"context"
	"fmt"
	"strings"

	"hearthbox/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	textracttypes "github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// TextractExtractor runs AWS Textract form analysis against objects in the
// document bucket. Each detected key/value pair becomes one extracted field
// carrying Textract's own confidence for the pair.
type TextractExtractor struct {
	client *textract.Client
	bucket string
}

func NewTextractExtractor(client *textract.Client, bucket string) *TextractExtractor {
	return &TextractExtractor{
		client: client,
		bucket: bucket,
	}
}

func (e *TextractExtractor) Extract(ctx context.Context, locator string) ([]*types.ExtractedField, error) {
	out, err := e.client.AnalyzeDocument(ctx, &textract.AnalyzeDocumentInput{
		Document: &textracttypes.Document{
			S3Object: &textracttypes.S3Object{
				Bucket: aws.String(e.bucket),
				Name:   aws.String(locator),
			},
		},
		FeatureTypes: []textracttypes.FeatureType{textracttypes.FeatureTypeForms},
	})
	if err != nil {
		return nil, fmt.Errorf("analyze document %s: %w", locator, err)
	}

	blocksByID := make(map[string]textracttypes.Block, len(out.Blocks))
	for _, block := range out.Blocks {
		blocksByID[aws.ToString(block.Id)] = block
	}

	fields := make([]*types.ExtractedField, 0)
	for _, block := range out.Blocks {
		if block.BlockType != textracttypes.BlockTypeKeyValueSet || !isKeyBlock(block) {
			continue
		}

		key := blockText(block, blocksByID)
		value := ""
		for _, rel := range block.Relationships {
			if rel.Type != textracttypes.RelationshipTypeValue {
				continue
			}
			for _, id := range rel.Ids {
				if valueBlock, ok := blocksByID[id]; ok {
					value = blockText(valueBlock, blocksByID)
				}
			}
		}

		if key == "" || value == "" {
			continue
		}

		confidence := 0
		if block.Confidence != nil {
			confidence = int(*block.Confidence)
		}

		fields = append(fields, &types.ExtractedField{
			FieldKey:   key,
			FieldValue: value,
			Confidence: confidence,
			IsPii:      IsPiiKey(key),
		})
	}

	return fields, nil
}

func isKeyBlock(block textracttypes.Block) bool {
	for _, entityType := range block.EntityTypes {
		if entityType == textracttypes.EntityTypeKey {
			return true
		}
	}
	return false
}

// blockText assembles the text of a key or value block from its child word
// and selection blocks.
func blockText(block textracttypes.Block, blocksByID map[string]textracttypes.Block) string {
	var parts []string
	for _, rel := range block.Relationships {
		if rel.Type != textracttypes.RelationshipTypeChild {
			continue
		}
		for _, id := range rel.Ids {
			child, ok := blocksByID[id]
			if !ok {
				continue
			}
			switch child.BlockType {
			case textracttypes.BlockTypeWord:
				parts = append(parts, aws.ToString(child.Text))
			case textracttypes.BlockTypeSelectionElement:
				if child.SelectionStatus == textracttypes.SelectionStatusSelected {
					parts = append(parts, "X")
				}
			}
		}
	}

	return strings.TrimSpace(strings.Join(parts, " "))
}
