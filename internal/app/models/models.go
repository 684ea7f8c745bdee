package models

import "fmt"

// AttendeeStatus is the persisted state of one user's relationship to one class.
// The numeric values are stored as-is.
type AttendeeStatus int16

const (
	StatusEnrolled       AttendeeStatus = 0
	StatusPassed         AttendeeStatus = 1
	StatusFailed         AttendeeStatus = 2
	StatusClassCancelled AttendeeStatus = 3
	StatusRemoved        AttendeeStatus = 4
)

// String returns the lower-case status name
func (s AttendeeStatus) String() string {
	switch s {
	case StatusEnrolled:
		return "enrolled"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusClassCancelled:
		return "class_cancelled"
	case StatusRemoved:
		return "removed"
	default:
		return fmt.Sprintf("status(%d)", int16(s))
	}
}

// Valid reports whether s is one of the known statuses
func (s AttendeeStatus) Valid() bool {
	return s >= StatusEnrolled && s <= StatusRemoved
}

// Terminal reports whether no further transition can leave s
func (s AttendeeStatus) Terminal() bool {
	return s != StatusEnrolled
}

// Outcome is a trainer's requested verdict for an attendee
type Outcome string

const (
	OutcomePass   Outcome = "pass"
	OutcomeFail   Outcome = "fail"
	OutcomeRemove Outcome = "remove"
)

// Status returns the attendee status an outcome moves to
func (o Outcome) Status() (AttendeeStatus, bool) {
	switch o {
	case OutcomePass:
		return StatusPassed, true
	case OutcomeFail:
		return StatusFailed, true
	case OutcomeRemove:
		return StatusRemoved, true
	default:
		return 0, false
	}
}

// Principal is a caller whose (user id, token) pair has been validated by the session manager.
// It is passed explicitly into every scheduler and attendance operation.
type Principal struct {
	UserID int64
	Token  string
}
