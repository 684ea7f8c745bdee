package models

import "time"

// Class capacity bounds accepted at creation time
const (
	MinClassCapacity = 1
	MaxClassCapacity = 10
)

// Class is one scheduled training session ('classes' table)
type Class struct {
	ID        int64     `json:"id" db:"id"`
	TrainerID int64     `json:"trainerId" db:"trainer_id"`
	SkillID   int64     `json:"skillId" db:"skill_id"`
	StartAt   time.Time `json:"startAt" db:"start_at"`
	Capacity  int       `json:"capacity" db:"capacity"`
	Note      string    `json:"note" db:"note"`
}

// IsCancelled reports whether the class was administratively cancelled
func (c *Class) IsCancelled() bool {
	return c.Capacity == 0
}

// IsUpcoming reports whether the class starts strictly after now
func (c *Class) IsUpcoming(now time.Time) bool {
	return c.StartAt.After(now)
}

// Remaining returns the open seats given the current number of Enrolled attendees
func (c *Class) Remaining(enrolled int) int {
	return c.Capacity - enrolled
}

// ClassListing is a class joined with the names shown to users
type ClassListing struct {
	Class
	SkillName   string `json:"skillName" db:"skill_name"`
	TrainerName string `json:"trainerName" db:"trainer_name"`
	Enrolled    int    `json:"enrolled" db:"enrolled"`
}
