package dto

import (
	"github.com/yigit/skilltrack/internal/app/models/dto/enums"
)

// MessageItem carries a result code and human readable text
type MessageItem struct {
	Type  enums.ItemType   `json:"type"`
	Code  enums.ResultCode `json:"code"`
	Text  string           `json:"text"`
	Field string           `json:"field,omitempty"`
}

// ClassItem is the projection of one class for one viewer
type ClassItem struct {
	Type    enums.ItemType `json:"type"`
	ID      int64          `json:"id"`
	Name    string         `json:"name"`
	Trainer string         `json:"trainer"`
	When    int64          `json:"when"`
	Notes   string         `json:"notes"`
	Size    int            `json:"size"`
	Max     int            `json:"max"`
	Action  *enums.Action  `json:"action"`
}

// AttendeeItem is the projection of one attendee row on the trainer's detail view
type AttendeeItem struct {
	Type   enums.ItemType `json:"type"`
	ID     int64          `json:"id"`
	Name   string         `json:"name"`
	Action *enums.Action  `json:"action"`
}

// SkillItem is one row of the viewer's skill summary
type SkillItem struct {
	Type    enums.ItemType   `json:"type"`
	ID      int64            `json:"id"`
	Name    string           `json:"name"`
	Gained  *int64           `json:"gained"`
	Trainer string           `json:"trainer"`
	State   enums.SkillState `json:"state"`
}

// RedirectItem tells the client which page to fetch next
type RedirectItem struct {
	Type  enums.ItemType `json:"type"`
	Where string         `json:"where"`
}

// ActionRef returns a pointer for a; ActionNone maps to nil so it renders as null
func ActionRef(a enums.Action) *enums.Action {
	if a == enums.ActionNone {
		return nil
	}
	return &a
}
