package notify

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Event types emitted by the intake pipeline.
const (
	EventItemSuggested = "item.suggested"
	EventItemAccepted  = "item.accepted"
	EventItemDismissed = "item.dismissed"
)

// Event is a fire-and-forget notification about an intake item. Publish
// failures are the publisher's problem; the pipeline logs and moves on.
type Event struct {
	Type        string    `json:"type"`
	ItemID      string    `json:"itemId"`
	HouseholdID string    `json:"householdId"`
	MemberID    string    `json:"memberId,omitempty"`
	Confidence  int       `json:"confidence,omitempty"`
	At          time.Time `json:"at"`
}

type Notifier interface {
	Publish(ctx context.Context, event Event) error
}

// LogNotifier writes events to the application log. It is the fallback when
// no broker is configured.
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Publish(_ context.Context, event Event) error {
	n.logger.WithFields(logrus.Fields{
		"type":         event.Type,
		"item_id":      event.ItemID,
		"household_id": event.HouseholdID,
		"member_id":    event.MemberID,
	}).Info("intake event")
	return nil
}
