package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/app/projection"
	"github.com/yigit/skilltrack/internal/app/repositories"
	"github.com/yigit/skilltrack/internal/pkg/apperrors"
	"github.com/yigit/skilltrack/internal/pkg/clock"
)

// NewClass is a trainer's request to schedule a class. Calendar fields are interpreted in the
// scheduler's timezone.
type NewClass struct {
	SkillID  int64
	Capacity int
	Year     int
	Month    int
	Day      int
	Hour     int
	Minute   int
	Note     string
}

// ClassOptions configures the scheduler
type ClassOptions struct {
	Location    *time.Location
	MinCapacity int
	MaxCapacity int
}

// CancelResult is the cancelled class and the attendee rows the cancellation changed
type CancelResult struct {
	Class   *ClassView
	Changed []*AttendeeView
}

// ClassService creates, cancels and lists classes
type ClassService struct {
	store     repositories.Store
	clock     clock.Clock
	opts      ClassOptions
	publisher RosterPublisher
	logger    zerolog.Logger
}

// NewClassService creates a new ClassService
func NewClassService(store repositories.Store, clk clock.Clock, opts ClassOptions, publisher RosterPublisher, logger zerolog.Logger) *ClassService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.MinCapacity == 0 && opts.MaxCapacity == 0 {
		opts.MinCapacity, opts.MaxCapacity = models.MinClassCapacity, models.MaxClassCapacity
	}
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &ClassService{
		store:     store,
		clock:     clk,
		opts:      opts,
		publisher: publisher,
		logger:    logger,
	}
}

// validateSchedule checks every field of req and returns the start time. All violations are
// returned together.
func (s *ClassService) validateSchedule(req NewClass, skillExists bool, now time.Time) (time.Time, error) {
	var violations []error

	if req.Capacity < s.opts.MinCapacity || req.Capacity > s.opts.MaxCapacity {
		violations = append(violations, apperrors.NewValidationError("max",
			fmt.Sprintf("class size must be between %d and %d", s.opts.MinCapacity, s.opts.MaxCapacity)))
	}
	if !skillExists {
		violations = append(violations, apperrors.NewValidationError("id", apperrors.ErrSkillNotFound.Error()))
	}

	calendarOK := true
	if req.Year < 1 || req.Year > 9999 {
		calendarOK = false
		violations = append(violations, apperrors.NewValidationError("year", "year is out of range"))
	}
	if req.Hour < 0 || req.Hour > 23 {
		calendarOK = false
		violations = append(violations, apperrors.NewValidationError("hour", "hour must be between 0 and 23"))
	}
	if req.Minute < 0 || req.Minute > 59 {
		calendarOK = false
		violations = append(violations, apperrors.NewValidationError("minute", "minute must be between 0 and 59"))
	}
	maxDay := 31
	if req.Month < 1 || req.Month > 12 {
		calendarOK = false
		violations = append(violations, apperrors.NewValidationError("month", "month must be between 1 and 12"))
	} else if req.Year >= 1 && req.Year <= 9999 {
		maxDay = daysIn(req.Year, time.Month(req.Month))
	}
	if req.Day < 1 || req.Day > maxDay {
		calendarOK = false
		violations = append(violations, apperrors.NewValidationError("day",
			fmt.Sprintf("day must be between 1 and %d", maxDay)))
	}

	var start time.Time
	if calendarOK {
		start = time.Date(req.Year, time.Month(req.Month), req.Day, req.Hour, req.Minute, 0, 0, s.opts.Location)
		if !start.After(now) {
			violations = append(violations, apperrors.NewValidationError("start", "class must start in the future"))
		}
	}

	return start, errors.Join(violations...)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CreateClass schedules a class taught by the caller. The caller must be qualified for the
// skill; every other invalid field is reported as its own validation error.
func (s *ClassService) CreateClass(ctx context.Context, p models.Principal, req NewClass) (int64, error) {
	var id int64
	err := s.store.WithTx(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		exists, err := repos.Skills.SkillExists(ctx, req.SkillID)
		if err != nil {
			return err
		}
		if exists {
			isTrainer, err := repos.Skills.IsTrainerFor(ctx, p.UserID, req.SkillID)
			if err != nil {
				return err
			}
			if !isTrainer {
				return apperrors.NewAuthorizationError(apperrors.ErrNotTrainer)
			}
		}

		start, err := s.validateSchedule(req, exists, s.clock.Now())
		if err != nil {
			return err
		}

		id, err = repos.Classes.CreateClass(ctx, &models.Class{
			TrainerID: p.UserID,
			SkillID:   req.SkillID,
			StartAt:   start,
			Capacity:  req.Capacity,
			Note:      req.Note,
		})
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("classID", id).Int64("trainerID", p.UserID).Int64("skillID", req.SkillID).Msg("Class created")
	return id, nil
}

// CancelClass sets the class capacity to 0 and moves every Enrolled attendee to ClassCancelled
// in one transaction. Cancelling an already cancelled upcoming class changes nothing.
func (s *ClassService) CancelClass(ctx context.Context, p models.Principal, classID int64) (*CancelResult, error) {
	var result *CancelResult
	err := s.store.WithTx(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		now := s.clock.Now()

		class, err := repos.Classes.LockClass(ctx, classID)
		if err != nil {
			return notFound(err, apperrors.ErrClassNotFound)
		}
		if class.TrainerID != p.UserID {
			return apperrors.NewAuthorizationError(apperrors.ErrNotYourClass)
		}
		if !class.IsUpcoming(now) {
			return apperrors.NewAuthorizationError(apperrors.ErrClassNotUpcoming)
		}

		var changedIDs []int64
		if !class.IsCancelled() {
			if err := repos.Classes.SetClassCapacity(ctx, classID, 0); err != nil {
				return err
			}
			if changedIDs, err = repos.Attendees.CancelEnrolledAttendees(ctx, classID); err != nil {
				return err
			}
		}

		listing, err := repos.Classes.GetClass(ctx, classID)
		if err != nil {
			return err
		}
		viewer, err := loadViewer(ctx, repos, p.UserID)
		if err != nil {
			return err
		}
		rows, err := repos.Attendees.ListAttendeesByClass(ctx, classID)
		if err != nil {
			return err
		}

		changed := make(map[int64]bool, len(changedIDs))
		for _, id := range changedIDs {
			changed[id] = true
		}
		result = &CancelResult{
			Class: &ClassView{Class: listing, Action: projection.ClassAction(viewer, &listing.Class, projection.DetailView, now)},
		}
		for _, r := range rows {
			if changed[r.ID] {
				result.Changed = append(result.Changed, &AttendeeView{
					Attendee: r,
					Action:   projection.AttendeeAction(&r.Attendee, &listing.Class, now),
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	at := s.clock.Now()
	s.publisher.PublishRoster(models.RosterEvent{Type: models.RosterCancelled, ClassID: classID, At: at})
	for _, a := range result.Changed {
		s.publisher.PublishRoster(models.RosterEvent{
			Type:       models.RosterOutcome,
			ClassID:    classID,
			AttendeeID: a.Attendee.ID,
			UserID:     a.Attendee.UserID,
			Status:     a.Attendee.Status.String(),
			At:         at,
		})
	}

	s.logger.Info().Int64("classID", classID).Int("attendeesCancelled", len(result.Changed)).Msg("Class cancelled")
	return result, nil
}

// GetUpcoming lists every class starting after now, earliest first, each with the viewer's action
func (s *ClassService) GetUpcoming(ctx context.Context, p models.Principal) ([]*ClassView, error) {
	var views []*ClassView
	err := s.store.WithTx(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		now := s.clock.Now()

		listings, err := repos.Classes.ListClassesStartingAfter(ctx, now)
		if err != nil {
			return err
		}
		viewer, err := loadViewer(ctx, repos, p.UserID)
		if err != nil {
			return err
		}

		views = make([]*ClassView, 0, len(listings))
		for _, l := range listings {
			views = append(views, &ClassView{
				Class:  l,
				Action: projection.ClassAction(viewer, &l.Class, projection.UpcomingView, now),
			})
		}
		return nil
	})
	return views, err
}

// GetClassDetail returns the class and its attendee rows. Only the class's trainer may see it.
func (s *ClassService) GetClassDetail(ctx context.Context, p models.Principal, classID int64) (*ClassView, []*AttendeeView, error) {
	var (
		view      *ClassView
		attendees []*AttendeeView
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		now := s.clock.Now()

		listing, err := repos.Classes.GetClass(ctx, classID)
		if err != nil {
			return notFound(err, apperrors.ErrClassNotFound)
		}
		if listing.TrainerID != p.UserID {
			return apperrors.NewAuthorizationError(apperrors.ErrNotYourClass)
		}

		viewer, err := loadViewer(ctx, repos, p.UserID)
		if err != nil {
			return err
		}
		rows, err := repos.Attendees.ListAttendeesByClass(ctx, classID)
		if err != nil {
			return err
		}

		view = &ClassView{Class: listing, Action: projection.ClassAction(viewer, &listing.Class, projection.DetailView, now)}
		attendees = make([]*AttendeeView, 0, len(rows))
		for _, r := range rows {
			attendees = append(attendees, &AttendeeView{
				Attendee: r,
				Action:   projection.AttendeeAction(&r.Attendee, &listing.Class, now),
			})
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return view, attendees, nil
}

// loadViewer reads the caller's attendee rows and trainer qualifications
func loadViewer(ctx context.Context, repos *repositories.Repositories, userID int64) (*projection.Viewer, error) {
	user, err := repos.Users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	rows, err := repos.Attendees.ListAttendeesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	skills, err := repos.Skills.ListTrainerSkills(ctx, userID)
	if err != nil {
		return nil, err
	}
	return projection.NewViewer(userID, user.FullName, rows, skills), nil
}
