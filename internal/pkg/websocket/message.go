package websocket

import (
	"time"

	"github.com/yigit/skilltrack/internal/app/models"
)

// Message represents a roster change sent over WebSocket
type Message struct {
	// Type of change: "joined", "left", "outcome", "class_cancelled"
	Type string `json:"type"`

	// Class the change belongs to
	ClassID int64 `json:"classId"`

	// Attendee row that changed
	AttendeeID int64 `json:"attendeeId,omitempty"`

	// User owning the attendee row
	UserID int64 `json:"userId,omitempty"`

	// Attendee status after the change
	Status string `json:"status,omitempty"`

	// Timestamp when the change was committed
	Timestamp time.Time `json:"timestamp"`
}

func newRosterMessage(e models.RosterEvent) *Message {
	return &Message{
		Type:       string(e.Type),
		ClassID:    e.ClassID,
		AttendeeID: e.AttendeeID,
		UserID:     e.UserID,
		Status:     e.Status,
		Timestamp:  e.At,
	}
}
