package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hearthbox/internal/extract"
	"hearthbox/internal/match"
	"hearthbox/internal/notify"
	"hearthbox/internal/utils"
	"hearthbox/pkg/types"

	"github.com/sirupsen/logrus"
)

// Pipeline sequences the intake lifecycle: register, analyze, and the final
// accept/dismiss disposition. It is the only writer of item status.
type Pipeline struct {
	logger      *logrus.Logger
	items       ItemStore
	fields      FieldStore
	members     MemberDirectory
	assignments AssignmentStore
	extractor   extract.Extractor
	notifier    notify.Notifier
	remover     ObjectRemover
}

func New(
	logger *logrus.Logger,
	items ItemStore,
	fields FieldStore,
	members MemberDirectory,
	assignments AssignmentStore,
	extractor extract.Extractor,
	notifier notify.Notifier,
) *Pipeline {
	return &Pipeline{
		logger:      logger,
		items:       items,
		fields:      fields,
		members:     members,
		assignments: assignments,
		extractor:   extractor,
		notifier:    notifier,
	}
}

// WithRemover attaches object storage cleanup for purged items. Without it,
// purge removes the rows and leaves the stored object behind.
func (p *Pipeline) WithRemover(remover ObjectRemover) *Pipeline {
	p.remover = remover
	return p
}

// RegisterInput carries everything needed to create an intake item. The same
// shape doubles as the recovery context for self-healing analyze calls.
type RegisterInput struct {
	HouseholdID string `json:"householdId"`
	SubmittedBy string `json:"submittedBy"`
	FileName    string `json:"fileName"`
	StorageKey  string `json:"storageKey"`
	MimeType    string `json:"mimeType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

func (in RegisterInput) validate() error {
	switch {
	case in.HouseholdID == "":
		return fmt.Errorf("%w: householdId is required", types.ErrValidation)
	case in.SubmittedBy == "":
		return fmt.Errorf("%w: submittedBy is required", types.ErrValidation)
	case in.FileName == "":
		return fmt.Errorf("%w: fileName is required", types.ErrValidation)
	case in.StorageKey == "":
		return fmt.Errorf("%w: storageKey is required", types.ErrValidation)
	}
	return nil
}

// Register creates a new intake item in pending. It is the only entry point
// that mints item ids; analyze's self-healing path reuses it internally.
func (p *Pipeline) Register(ctx context.Context, in RegisterInput) (*types.IntakeItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	item := &types.IntakeItem{
		ID:          utils.NanoID(),
		HouseholdID: in.HouseholdID,
		SubmittedBy: in.SubmittedBy,
		FileName:    in.FileName,
		StorageKey:  in.StorageKey,
		SizeBytes:   in.SizeBytes,
		MimeType:    in.MimeType,
		Status:      types.ItemStatusPending,
		UploadedAt:  time.Now(),
	}

	if err := p.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create intake item: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"item_id":      item.ID,
		"household_id": item.HouseholdID,
	}).Info("intake item registered")

	return item, nil
}

// AnalyzeResult is what analyze hands back to its caller: the item after its
// transition, the persisted fields, and the suggestion if one was made.
type AnalyzeResult struct {
	Item       *types.IntakeItem       `json:"item"`
	Fields     []*types.ExtractedField `json:"fields"`
	Suggestion *types.Suggestion       `json:"suggestion"`
}

// Analyze runs extraction and matching for an item and moves it to suggested
// or dismissed. When the item is missing but recovery context was supplied,
// the item is recreated first; analyze is deliberately an upsert-plus-
// transition to tolerate out-of-order delivery relative to register.
//
// Extractor and matcher failures close the item out as dismissed (it never
// sticks in analyzing) and the error is surfaced to the caller.
func (p *Pipeline) Analyze(ctx context.Context, itemID string, recovery *RegisterInput) (*AnalyzeResult, error) {
	item, err := p.items.Item(ctx, itemID)
	if errors.Is(err, types.ErrItemNotFound) && recovery != nil {
		item, err = p.recoverItem(ctx, itemID, *recovery)
	}
	if err != nil {
		return nil, err
	}

	if item.Terminal() {
		return nil, fmt.Errorf("%w: item %s is %s", types.ErrItemTerminal, item.ID, item.Status)
	}
	if item.Status == types.ItemStatusAnalyzing {
		return nil, fmt.Errorf("%w: item %s", types.ErrAnalysisInProgress, item.ID)
	}

	item.Status = types.ItemStatusAnalyzing
	if err := p.items.Update(ctx, item); err != nil {
		if errors.Is(err, types.ErrRevisionConflict) {
			return nil, fmt.Errorf("%w: item %s", types.ErrAnalysisInProgress, item.ID)
		}
		return nil, fmt.Errorf("mark item analyzing: %w", err)
	}

	extracted, err := p.extractor.Extract(ctx, item.StorageKey)
	if err != nil {
		p.failAnalysis(ctx, item, fmt.Sprintf("extraction failed: %v", err))
		return nil, fmt.Errorf("extract %s: %w", item.StorageKey, err)
	}

	fields := make([]*types.ExtractedField, 0, len(extracted))
	now := time.Now()
	for _, field := range extracted {
		fields = append(fields, &types.ExtractedField{
			ID:           utils.NanoID(),
			IntakeItemID: item.ID,
			FieldKey:     field.FieldKey,
			FieldValue:   field.FieldValue,
			Confidence:   field.Confidence,
			IsPii:        field.IsPii,
			CreatedAt:    now,
		})
	}

	if err := p.fields.Replace(ctx, item.ID, fields); err != nil {
		p.failAnalysis(ctx, item, fmt.Sprintf("field persistence failed: %v", err))
		return nil, fmt.Errorf("persist fields: %w", err)
	}

	roster, err := p.members.MembersByHousehold(ctx, item.HouseholdID)
	if err != nil {
		p.failAnalysis(ctx, item, fmt.Sprintf("roster lookup failed: %v", err))
		return nil, fmt.Errorf("list household members: %w", err)
	}

	suggestion := match.Suggest(fields, roster)

	item.AnalysisCompleted = true
	item.ProcessedAt = utils.TimePtr(now)
	if suggestion != nil {
		item.Status = types.ItemStatusSuggested
		item.SuggestedMemberID = utils.StringPtr(suggestion.MemberID)
		item.Confidence = utils.IntPtr(suggestion.Confidence)
	} else {
		item.Status = types.ItemStatusDismissed
		item.DismissedAt = utils.TimePtr(now)
		item.SuggestedMemberID = nil
		item.Confidence = nil
	}

	if err := p.items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("finalize analysis: %w", err)
	}

	if suggestion != nil {
		p.emit(ctx, notify.Event{
			Type:        notify.EventItemSuggested,
			ItemID:      item.ID,
			HouseholdID: item.HouseholdID,
			MemberID:    suggestion.MemberID,
			Confidence:  suggestion.Confidence,
		})
	} else {
		p.emit(ctx, notify.Event{
			Type:        notify.EventItemDismissed,
			ItemID:      item.ID,
			HouseholdID: item.HouseholdID,
		})
	}

	p.logger.WithFields(logrus.Fields{
		"item_id": item.ID,
		"status":  item.Status,
		"fields":  len(fields),
	}).Info("intake item analyzed")

	return &AnalyzeResult{
		Item:       item,
		Fields:     fields,
		Suggestion: suggestion,
	}, nil
}

// recoverItem rebuilds a missing item from the caller-supplied context under
// the id the caller already holds.
func (p *Pipeline) recoverItem(ctx context.Context, itemID string, in RegisterInput) (*types.IntakeItem, error) {
	if err := in.validate(); err != nil {
		return nil, fmt.Errorf("%w: recovery context incomplete", types.ErrItemNotFound)
	}

	item := &types.IntakeItem{
		ID:          itemID,
		HouseholdID: in.HouseholdID,
		SubmittedBy: in.SubmittedBy,
		FileName:    in.FileName,
		StorageKey:  in.StorageKey,
		SizeBytes:   in.SizeBytes,
		MimeType:    in.MimeType,
		Status:      types.ItemStatusPending,
		UploadedAt:  time.Now(),
	}

	if err := p.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("recover intake item: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"item_id":      item.ID,
		"household_id": item.HouseholdID,
	}).Warn("intake item recreated from recovery context")

	return item, nil
}

// failAnalysis closes an item out after an internal error. The item records
// why it was dismissed so the inbox can distinguish a crash from a no-match.
func (p *Pipeline) failAnalysis(ctx context.Context, item *types.IntakeItem, reason string) {
	now := time.Now()
	item.Status = types.ItemStatusDismissed
	item.AnalysisCompleted = true
	item.FailureReason = utils.StringPtr(reason)
	item.ProcessedAt = utils.TimePtr(now)
	item.DismissedAt = utils.TimePtr(now)

	if err := p.items.Update(ctx, item); err != nil {
		p.logger.WithError(err).WithField("item_id", item.ID).Error("failed to fail-close intake item")
		return
	}

	p.emit(ctx, notify.Event{
		Type:        notify.EventItemDismissed,
		ItemID:      item.ID,
		HouseholdID: item.HouseholdID,
	})
}

// Accept binds the document to a member and finalizes the item. The member
// may differ from the matcher's suggestion; the household's choice wins. The
// optional snapshot becomes the assignment metadata, falling back to the
// fields persisted during analysis.
func (p *Pipeline) Accept(ctx context.Context, itemID, memberID string, snapshot map[string]string) (*types.MemberFileAssignment, error) {
	if memberID == "" {
		return nil, fmt.Errorf("%w: memberId is required", types.ErrValidation)
	}

	item, err := p.items.Item(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.Terminal() {
		return nil, fmt.Errorf("%w: item %s is %s", types.ErrItemTerminal, item.ID, item.Status)
	}

	member, err := p.members.Member(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member.HouseholdID != item.HouseholdID {
		return nil, fmt.Errorf("%w: member %s is not in household %s", types.ErrMemberNotFound, memberID, item.HouseholdID)
	}

	metadata := snapshot
	if metadata == nil {
		stored, err := p.fields.FieldsByItem(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("load fields for snapshot: %w", err)
		}
		metadata = make(map[string]string, len(stored))
		for _, field := range stored {
			metadata[field.FieldKey] = field.FieldValue
		}
	}

	assignment := &types.MemberFileAssignment{
		ID:          utils.NanoID(),
		HouseholdID: item.HouseholdID,
		MemberID:    member.ID,
		StorageKey:  item.StorageKey,
		FileName:    item.FileName,
		Category:    types.FileCategoryDocument,
		Metadata:    metadata,
		AssignedBy:  item.SubmittedBy,
		AssignedAt:  time.Now(),
	}

	item.Status = types.ItemStatusAccepted
	item.AcceptedAt = utils.TimePtr(assignment.AssignedAt)

	if err := p.assignments.Accept(ctx, item, assignment); err != nil {
		return nil, fmt.Errorf("accept intake item: %w", err)
	}

	p.emit(ctx, notify.Event{
		Type:        notify.EventItemAccepted,
		ItemID:      item.ID,
		HouseholdID: item.HouseholdID,
		MemberID:    member.ID,
	})

	p.logger.WithFields(logrus.Fields{
		"item_id":   item.ID,
		"member_id": member.ID,
	}).Info("intake item accepted")

	return assignment, nil
}

// Dismiss finalizes an item without an assignment. Dismissing an already
// dismissed item is a no-op; an accepted item cannot be dismissed.
func (p *Pipeline) Dismiss(ctx context.Context, itemID string) (*types.IntakeItem, error) {
	item, err := p.items.Item(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.Status == types.ItemStatusDismissed {
		return item, nil
	}
	if item.Status == types.ItemStatusAccepted {
		return nil, fmt.Errorf("%w: item %s is accepted", types.ErrItemTerminal, item.ID)
	}

	item.Status = types.ItemStatusDismissed
	item.DismissedAt = utils.TimePtr(time.Now())
	item.SuggestedMemberID = nil
	item.Confidence = nil

	if err := p.items.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("dismiss intake item: %w", err)
	}

	p.emit(ctx, notify.Event{
		Type:        notify.EventItemDismissed,
		ItemID:      item.ID,
		HouseholdID: item.HouseholdID,
	})

	return item, nil
}

// Purge permanently removes a dismissed item: the stored object, the
// extracted fields, and the item row. Anything not yet dismissed is refused;
// an accepted item's file belongs to its assignment and stays.
func (p *Pipeline) Purge(ctx context.Context, itemID string) error {
	item, err := p.items.Item(ctx, itemID)
	if err != nil {
		return err
	}

	if item.Status != types.ItemStatusDismissed {
		return fmt.Errorf("%w: item %s is %s", types.ErrItemActive, item.ID, item.Status)
	}

	if p.remover != nil {
		if err := p.remover.Delete(ctx, item.StorageKey); err != nil {
			return fmt.Errorf("delete stored object: %w", err)
		}
	}

	if err := p.fields.DeleteByItem(ctx, item.ID); err != nil {
		return fmt.Errorf("delete extracted fields: %w", err)
	}

	if err := p.items.Delete(ctx, item.ID); err != nil {
		return fmt.Errorf("delete intake item: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"item_id":      item.ID,
		"household_id": item.HouseholdID,
	}).Info("intake item purged")

	return nil
}

// ItemView is one inbox entry: the item with its fields and, when suggested,
// the cached suggestion.
type ItemView struct {
	Item       *types.IntakeItem       `json:"item"`
	Fields     []*types.ExtractedField `json:"fields"`
	Suggestion *types.Suggestion       `json:"suggestion,omitempty"`
}

// List returns the household's non-dismissed items, newest first, for the
// review inbox.
func (p *Pipeline) List(ctx context.Context, householdID string) ([]*ItemView, error) {
	if householdID == "" {
		return nil, fmt.Errorf("%w: householdId is required", types.ErrValidation)
	}

	items, err := p.items.ActiveItemsByHousehold(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("list intake items: %w", err)
	}

	views := make([]*ItemView, 0, len(items))
	for _, item := range items {
		fields, err := p.fields.FieldsByItem(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("load fields for item %s: %w", item.ID, err)
		}

		view := &ItemView{Item: item, Fields: fields}
		if item.SuggestedMemberID != nil {
			view.Suggestion = &types.Suggestion{
				MemberID:   *item.SuggestedMemberID,
				Confidence: utils.PtrInt(item.Confidence),
			}
		}
		views = append(views, view)
	}

	return views, nil
}

// emit publishes a notification without letting a broker failure bleed into
// the pipeline operation.
func (p *Pipeline) emit(ctx context.Context, event notify.Event) {
	if p.notifier == nil {
		return
	}

	event.At = time.Now()
	if err := p.notifier.Publish(ctx, event); err != nil {
		p.logger.WithError(err).WithFields(logrus.Fields{
			"type":    event.Type,
			"item_id": event.ItemID,
		}).Warn("failed to publish intake event")
	}
}
