package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/app/projection"
	"github.com/yigit/skilltrack/internal/app/repositories"
	"github.com/yigit/skilltrack/internal/pkg/apperrors"
	"github.com/yigit/skilltrack/internal/pkg/clock"
)

// AttendanceService runs the attendee state machine:
//
//	Enrolled -> Passed | Failed        trainer verdict, class started
//	Enrolled -> Removed                trainer removal, class not started
//	Enrolled -> ClassCancelled         class cancellation
//	Enrolled -> (row deleted)          user leaves, class not started
//
// Every other status is terminal. Each operation is a single transaction that locks the user
// and the class rows before reading counts.
type AttendanceService struct {
	store     repositories.Store
	clock     clock.Clock
	publisher RosterPublisher
	logger    zerolog.Logger
}

// NewAttendanceService creates a new AttendanceService
func NewAttendanceService(store repositories.Store, clk clock.Clock, publisher RosterPublisher, logger zerolog.Logger) *AttendanceService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &AttendanceService{
		store:     store,
		clock:     clk,
		publisher: publisher,
		logger:    logger,
	}
}

// Join enrols the caller in a class. Every violated precondition is reported, each as its own
// business rule error.
func (s *AttendanceService) Join(ctx context.Context, p models.Principal, classID int64) (*ClassView, error) {
	var (
		view       *ClassView
		attendeeID int64
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		now := s.clock.Now()

		if err := repos.Users.LockUser(ctx, p.UserID); err != nil {
			return notFound(err, apperrors.ErrUserNotFound)
		}
		class, err := repos.Classes.LockClass(ctx, classID)
		if err != nil {
			return notFound(err, apperrors.ErrClassNotFound)
		}

		var violations []error
		if class.IsCancelled() || !class.IsUpcoming(now) {
			violations = append(violations, apperrors.NewBusinessRuleError(apperrors.ErrClassNotOpen))
		} else {
			enrolled, err := repos.Attendees.CountEnrolled(ctx, classID)
			if err != nil {
				return err
			}
			if class.Remaining(enrolled) <= 0 {
				violations = append(violations, apperrors.NewBusinessRuleError(apperrors.ErrClassFull))
			}
		}

		rows, err := repos.Attendees.ListAttendeesByUser(ctx, p.UserID)
		if err != nil {
			return err
		}
		var removed, held bool
		for _, r := range rows {
			if r.ClassID == classID && r.Status == models.StatusRemoved {
				removed = true
			}
			if r.SkillID == class.SkillID && (r.Status == models.StatusEnrolled || r.Status == models.StatusPassed) {
				held = true
			}
		}
		if removed {
			violations = append(violations, apperrors.NewBusinessRuleError(apperrors.ErrPreviouslyRemoved))
		}
		if held {
			violations = append(violations, apperrors.NewBusinessRuleError(apperrors.ErrSkillAlreadyHeld))
		}

		trains, err := repos.Skills.IsTrainerFor(ctx, p.UserID, class.SkillID)
		if err != nil {
			return err
		}
		if trains || class.TrainerID == p.UserID {
			violations = append(violations, apperrors.NewBusinessRuleError(apperrors.ErrTrainerForSkill))
		}

		if len(violations) > 0 {
			return errors.Join(violations...)
		}

		attendeeID, err = repos.Attendees.CreateAttendee(ctx, &models.Attendee{
			UserID:  p.UserID,
			ClassID: classID,
			Status:  models.StatusEnrolled,
		})
		if err != nil {
			return err
		}

		view, err = projectClass(ctx, repos, p.UserID, classID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishRoster(models.RosterEvent{
		Type:       models.RosterJoined,
		ClassID:    classID,
		AttendeeID: attendeeID,
		UserID:     p.UserID,
		Status:     models.StatusEnrolled.String(),
		At:         s.clock.Now(),
	})
	s.logger.Info().Int64("userID", p.UserID).Int64("classID", classID).Int64("attendeeID", attendeeID).Msg("User joined class")
	return view, nil
}

// Leave deletes the caller's Enrolled row for a class that has not started yet
func (s *AttendanceService) Leave(ctx context.Context, p models.Principal, classID int64) (*ClassView, error) {
	var (
		view       *ClassView
		attendeeID int64
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		now := s.clock.Now()

		if err := repos.Users.LockUser(ctx, p.UserID); err != nil {
			return notFound(err, apperrors.ErrUserNotFound)
		}
		class, err := repos.Classes.LockClass(ctx, classID)
		if err != nil {
			return notFound(err, apperrors.ErrClassNotFound)
		}

		rows, err := repos.Attendees.ListAttendeesByUser(ctx, p.UserID)
		if err != nil {
			return err
		}
		attendeeID = 0
		for _, r := range rows {
			if r.ClassID == classID && r.Status == models.StatusEnrolled {
				attendeeID = r.ID
				break
			}
		}
		if attendeeID == 0 {
			return apperrors.NewBusinessRuleError(apperrors.ErrNotEnrolled)
		}
		if !class.IsUpcoming(now) {
			return apperrors.NewBusinessRuleError(apperrors.ErrClassNotUpcoming)
		}

		if err := repos.Attendees.DeleteAttendee(ctx, attendeeID); err != nil {
			return err
		}

		view, err = projectClass(ctx, repos, p.UserID, classID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishRoster(models.RosterEvent{
		Type:       models.RosterLeft,
		ClassID:    classID,
		AttendeeID: attendeeID,
		UserID:     p.UserID,
		At:         s.clock.Now(),
	})
	s.logger.Info().Int64("userID", p.UserID).Int64("classID", classID).Msg("User left class")
	return view, nil
}

// SetAttendeeOutcome records a trainer verdict. pass and fail need the class to have started,
// remove needs it not to have. The caller must be qualified for the class's skill.
func (s *AttendanceService) SetAttendeeOutcome(ctx context.Context, p models.Principal, attendeeID int64, outcome models.Outcome) (*AttendeeView, error) {
	status, ok := outcome.Status()
	if !ok {
		return nil, apperrors.NewValidationError("state", apperrors.ErrUnknownOutcome.Error())
	}

	var view *AttendeeView
	err := s.store.WithTx(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		now := s.clock.Now()

		attendee, err := repos.Attendees.GetAttendee(ctx, attendeeID)
		if err != nil {
			return notFound(err, apperrors.ErrAttendeeNotFound)
		}
		class, err := repos.Classes.LockClass(ctx, attendee.ClassID)
		if err != nil {
			return notFound(err, apperrors.ErrClassNotFound)
		}

		qualified, err := repos.Skills.IsTrainerFor(ctx, p.UserID, class.SkillID)
		if err != nil {
			return err
		}
		if !qualified {
			return apperrors.NewAuthorizationError(apperrors.ErrNotTrainer)
		}

		if attendee.Status != models.StatusEnrolled {
			return apperrors.NewBusinessRuleError(apperrors.ErrAttendeeNotEnrolled)
		}

		switch outcome {
		case models.OutcomePass, models.OutcomeFail:
			if class.IsUpcoming(now) {
				return apperrors.NewBusinessRuleError(apperrors.ErrOutcomeTooEarly)
			}
		case models.OutcomeRemove:
			if !class.IsUpcoming(now) {
				return apperrors.NewBusinessRuleError(apperrors.ErrRemovalTooLate)
			}
		}

		if err := repos.Attendees.UpdateAttendeeStatus(ctx, attendeeID, status); err != nil {
			return err
		}

		rows, err := repos.Attendees.ListAttendeesByClass(ctx, class.ID)
		if err != nil {
			return err
		}
		for _, r := range rows {
			if r.ID == attendeeID {
				view = &AttendeeView{Attendee: r, Action: projection.AttendeeAction(&r.Attendee, class, now)}
				return nil
			}
		}
		return apperrors.ErrAttendeeNotFound
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishRoster(models.RosterEvent{
		Type:       models.RosterOutcome,
		ClassID:    view.Attendee.ClassID,
		AttendeeID: attendeeID,
		UserID:     view.Attendee.UserID,
		Status:     status.String(),
		At:         s.clock.Now(),
	})
	s.logger.Info().Int64("trainerID", p.UserID).Int64("attendeeID", attendeeID).Str("status", status.String()).Msg("Attendee outcome recorded")
	return view, nil
}

// projectClass re-reads a class and projects it for the user on the upcoming list
func projectClass(ctx context.Context, repos *repositories.Repositories, userID, classID int64, now time.Time) (*ClassView, error) {
	listing, err := repos.Classes.GetClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	viewer, err := loadViewer(ctx, repos, userID)
	if err != nil {
		return nil, err
	}
	return &ClassView{
		Class:  listing,
		Action: projection.ClassAction(viewer, &listing.Class, projection.UpcomingView, now),
	}, nil
}
