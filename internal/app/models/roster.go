package models

import "time"

// RosterEventType names a committed change to a class roster
type RosterEventType string

const (
	RosterJoined    RosterEventType = "joined"
	RosterLeft      RosterEventType = "left"
	RosterOutcome   RosterEventType = "outcome"
	RosterCancelled RosterEventType = "class_cancelled"
)

// RosterEvent is pushed to trainers watching a class after the change has been committed
type RosterEvent struct {
	Type       RosterEventType `json:"type"`
	ClassID    int64           `json:"classId"`
	AttendeeID int64           `json:"attendeeId,omitempty"`
	UserID     int64           `json:"userId,omitempty"`
	Status     string          `json:"status,omitempty"`
	At         time.Time       `json:"at"`
}
