package models

import "time"

// Attendee is one user's relationship to one class ('attendees' table)
type Attendee struct {
	ID      int64          `json:"id" db:"id"`
	UserID  int64          `json:"userId" db:"user_id"`
	ClassID int64          `json:"classId" db:"class_id"`
	Status  AttendeeStatus `json:"status" db:"status"`
}

// AttendeeRecord is an attendee row joined with its class and the names shown to users
type AttendeeRecord struct {
	Attendee
	UserName     string    `json:"userName" db:"user_name"`
	SkillID      int64     `json:"skillId" db:"skill_id"`
	SkillName    string    `json:"skillName" db:"skill_name"`
	TrainerID    int64     `json:"trainerId" db:"trainer_id"`
	TrainerName  string    `json:"trainerName" db:"trainer_name"`
	ClassStartAt time.Time `json:"classStartAt" db:"start_at"`
}
