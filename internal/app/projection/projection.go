// Package projection derives the viewer-specific action for classes, attendee rows and skills.
// Every function here is pure: it reads the state it is given and nothing else.
package projection

import (
	"sort"
	"time"

	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/app/models/dto/enums"
)

// View selects which screen a class is being projected for
type View int

const (
	// UpcomingView is the list of future classes
	UpcomingView View = iota
	// DetailView is the trainer's page for a single class
	DetailView
)

// Viewer is the caller's relevant state: every attendee row they hold and the skills they are
// qualified to teach.
type Viewer struct {
	UserID   int64
	FullName string

	attendance    []*models.AttendeeRecord
	trainerSkills map[int64]*models.Skill
}

// NewViewer builds a Viewer from the caller's attendee rows and trainer qualifications
func NewViewer(userID int64, fullName string, attendance []*models.AttendeeRecord, trainerSkills []*models.Skill) *Viewer {
	v := &Viewer{
		UserID:        userID,
		FullName:      fullName,
		attendance:    attendance,
		trainerSkills: make(map[int64]*models.Skill, len(trainerSkills)),
	}
	for _, s := range trainerSkills {
		v.trainerSkills[s.ID] = s
	}
	return v
}

// TrainsSkill reports whether the viewer holds a qualification for the skill
func (v *Viewer) TrainsSkill(skillID int64) bool {
	_, ok := v.trainerSkills[skillID]
	return ok
}

// hasRowInClass reports whether the viewer holds a row for the class in any of the statuses
func (v *Viewer) hasRowInClass(classID int64, statuses ...models.AttendeeStatus) bool {
	for _, a := range v.attendance {
		if a.ClassID != classID {
			continue
		}
		for _, s := range statuses {
			if a.Status == s {
				return true
			}
		}
	}
	return false
}

// holdsSkillElsewhere reports an Enrolled or Passed row for another class of the same skill
func (v *Viewer) holdsSkillElsewhere(classID, skillID int64) bool {
	for _, a := range v.attendance {
		if a.ClassID == classID || a.SkillID != skillID {
			continue
		}
		if a.Status == models.StatusEnrolled || a.Status == models.StatusPassed {
			return true
		}
	}
	return false
}

// ClassAction returns the action the viewer may take on the class. Rules are evaluated in
// order and the first match wins.
func ClassAction(v *Viewer, c *models.Class, view View, now time.Time) enums.Action {
	if c.IsCancelled() || v.hasRowInClass(c.ID, models.StatusRemoved) {
		return enums.ActionCancelled
	}

	if c.TrainerID == v.UserID {
		if view == DetailView {
			return enums.ActionCancel
		}
		return enums.ActionEdit
	}

	if c.IsUpcoming(now) && v.hasRowInClass(c.ID, models.StatusEnrolled) {
		return enums.ActionLeave
	}

	if v.holdsSkillElsewhere(c.ID, c.SkillID) || v.TrainsSkill(c.SkillID) {
		return enums.ActionUnavailable
	}

	if !v.hasRowInClass(c.ID, models.StatusRemoved, models.StatusPassed, models.StatusFailed, models.StatusEnrolled) {
		return enums.ActionJoin
	}

	return enums.ActionNone
}

// AttendeeAction returns the trainer-facing label for an attendee row
func AttendeeAction(a *models.Attendee, c *models.Class, now time.Time) enums.Action {
	switch a.Status {
	case models.StatusEnrolled:
		if c.IsUpcoming(now) {
			return enums.ActionRemove
		}
		return enums.ActionUpdate
	case models.StatusPassed:
		return enums.ActionPassed
	case models.StatusFailed:
		return enums.ActionFailed
	case models.StatusRemoved, models.StatusClassCancelled:
		return enums.ActionCancelled
	default:
		return enums.ActionNone
	}
}

// SkillRow is one line of a viewer's skill summary
type SkillRow struct {
	SkillID   int64
	SkillName string
	Trainer   string
	// Gained is the start of the class the row is derived from; nil when there is none
	Gained *time.Time
	State  enums.SkillState
}

// SkillSummary lists the viewer's standing in every skill they teach or have a live row in.
// Skills the viewer teaches are reported as trainer. Otherwise the most recent class of the
// skill decides, ignoring Removed and ClassCancelled rows.
func SkillSummary(v *Viewer, now time.Time) []SkillRow {
	var rows []SkillRow

	for _, s := range v.trainerSkills {
		row := SkillRow{SkillID: s.ID, SkillName: s.Name, Trainer: v.FullName, State: enums.SkillTrainer}
		for _, a := range v.attendance {
			if a.SkillID == s.ID && a.Status == models.StatusPassed {
				at := a.ClassStartAt
				row.Gained = &at
			}
		}
		rows = append(rows, row)
	}

	latest := make(map[int64]*models.AttendeeRecord)
	for _, a := range v.attendance {
		if a.Status == models.StatusRemoved || a.Status == models.StatusClassCancelled || v.TrainsSkill(a.SkillID) {
			continue
		}
		cur, ok := latest[a.SkillID]
		if !ok || a.ClassStartAt.After(cur.ClassStartAt) || (a.ClassStartAt.Equal(cur.ClassStartAt) && a.ID > cur.ID) {
			latest[a.SkillID] = a
		}
	}

	for _, a := range latest {
		state, ok := skillState(a, now)
		if !ok {
			continue
		}
		at := a.ClassStartAt
		rows = append(rows, SkillRow{
			SkillID:   a.SkillID,
			SkillName: a.SkillName,
			Trainer:   a.TrainerName,
			Gained:    &at,
			State:     state,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := rows[i].State.Rank(), rows[j].State.Rank()
		if ri != rj {
			return ri < rj
		}
		return rows[i].SkillID < rows[j].SkillID
	})
	return rows
}

func skillState(a *models.AttendeeRecord, now time.Time) (enums.SkillState, bool) {
	switch a.Status {
	case models.StatusPassed:
		return enums.SkillPassed, true
	case models.StatusFailed:
		return enums.SkillFailed, true
	case models.StatusEnrolled:
		if a.ClassStartAt.After(now) {
			return enums.SkillScheduled, true
		}
		return enums.SkillPending, true
	default:
		return "", false
	}
}
