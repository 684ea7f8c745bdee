package controllers

import (
	"github.com/yigit/skilltrack/internal/app/models/dto"
	"github.com/yigit/skilltrack/internal/app/projection"
	"github.com/yigit/skilltrack/internal/app/services"
)

func classItem(v *services.ClassView) dto.ClassItem {
	return dto.ClassItem{
		ID:      v.Class.ID,
		Name:    v.Class.SkillName,
		Trainer: v.Class.TrainerName,
		When:    v.Class.StartAt.Unix(),
		Notes:   v.Class.Note,
		Size:    v.Class.Enrolled,
		Max:     v.Class.Capacity,
		Action:  dto.ActionRef(v.Action),
	}
}

func attendeeItem(v *services.AttendeeView) dto.AttendeeItem {
	return dto.AttendeeItem{
		ID:     v.Attendee.ID,
		Name:   v.Attendee.UserName,
		Action: dto.ActionRef(v.Action),
	}
}

func skillItem(r projection.SkillRow) dto.SkillItem {
	item := dto.SkillItem{
		ID:      r.SkillID,
		Name:    r.SkillName,
		Trainer: r.Trainer,
		State:   r.State,
	}
	if r.Gained != nil {
		gained := r.Gained.Unix()
		item.Gained = &gained
	}
	return item
}
