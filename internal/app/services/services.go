package services

import (
	"errors"

	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/app/models/dto/enums"
	"github.com/yigit/skilltrack/internal/pkg/apperrors"
)

// Services defined in this package:
// - SessionService: login, logout and the session gate
// - RegistryService: users, skills and trainer qualifications
// - ClassService: class creation, cancellation and listings
// - AttendanceService: join, leave and trainer verdicts
// - SkillSummaryService: the caller's standing per skill

// RosterPublisher receives roster changes once they have been committed
type RosterPublisher interface {
	PublishRoster(event models.RosterEvent)
}

// NopPublisher discards roster events
type NopPublisher struct{}

// PublishRoster implements RosterPublisher
func (NopPublisher) PublishRoster(models.RosterEvent) {}

// ClassView is a class projected for one viewer
type ClassView struct {
	Class  *models.ClassListing
	Action enums.Action
}

// AttendeeView is an attendee row projected for the class trainer
type AttendeeView struct {
	Attendee *models.AttendeeRecord
	Action   enums.Action
}

// notFound turns a repository lookup miss into a NotFound error, leaving other errors alone
func notFound(err, sentinel error) error {
	if errors.Is(err, sentinel) {
		return apperrors.NewNotFoundError(sentinel)
	}
	return err
}
