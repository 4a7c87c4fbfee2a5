package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeIssued     = "Issued"
	TypeTransfered = "Transfered"
)

// Meta is the metadata shared by every event.
type Meta struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

func newMeta(eventType string, now time.Time) Meta {
	return Meta{
		EventID:   uuid.New().String(),
		Type:      eventType,
		Timestamp: now.UTC(),
	}
}

// Event is an immutable notification describing a successful transaction.
type Event interface {
	Metadata() Meta
	// PartitionKey is the account whose events must stay ordered.
	PartitionKey() string
}
