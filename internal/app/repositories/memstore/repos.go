package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/pkg/apperrors"
)

type userRepo struct{ v *view }

func (r *userRepo) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	var id int64
	err := r.v.do(ctx, func(st *state) error {
		for _, u := range st.users {
			if u.LoginName == user.LoginName {
				return apperrors.ErrLoginNameExists
			}
		}
		st.lastUserID++
		id = st.lastUserID
		u := *user
		u.ID = id
		st.users[id] = u
		return nil
	})
	return id, err
}

func (r *userRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var out *models.User
	err := r.v.do(ctx, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return apperrors.ErrUserNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepo) GetUserByLoginName(ctx context.Context, loginName string) (*models.User, error) {
	var out *models.User
	err := r.v.do(ctx, func(st *state) error {
		for _, u := range st.users {
			if u.LoginName == loginName {
				u := u
				out = &u
				return nil
			}
		}
		return apperrors.ErrUserNotFound
	})
	return out, err
}

func (r *userRepo) LockUser(ctx context.Context, id int64) error {
	return r.v.do(ctx, func(st *state) error {
		if _, ok := st.users[id]; !ok {
			return apperrors.ErrUserNotFound
		}
		return nil
	})
}

type sessionRepo struct{ v *view }

func (r *sessionRepo) CreateSession(ctx context.Context, session *models.Session) (int64, error) {
	var id int64
	err := r.v.do(ctx, func(st *state) error {
		for _, s := range st.sessions {
			if s.UserID == session.UserID {
				return apperrors.ErrConflict
			}
		}
		st.lastSessionID++
		id = st.lastSessionID
		s := *session
		s.ID = id
		st.sessions[id] = s
		return nil
	})
	return id, err
}

func (r *sessionRepo) GetSession(ctx context.Context, userID int64, magic string) (*models.Session, error) {
	var out *models.Session
	err := r.v.do(ctx, func(st *state) error {
		for _, s := range st.sessions {
			if s.UserID == userID && s.Magic == magic {
				s := s
				out = &s
				return nil
			}
		}
		return apperrors.ErrSessionNotFound
	})
	return out, err
}

func (r *sessionRepo) DeleteSession(ctx context.Context, userID int64, magic string) (bool, error) {
	n, err := r.deleteWhere(ctx, func(s models.Session) bool { return s.UserID == userID && s.Magic == magic })
	return n > 0, err
}

func (r *sessionRepo) DeleteSessionsForUser(ctx context.Context, userID int64) (int64, error) {
	return r.deleteWhere(ctx, func(s models.Session) bool { return s.UserID == userID })
}

func (r *sessionRepo) DeleteSessionsCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.deleteWhere(ctx, func(s models.Session) bool { return s.CreatedAt.Before(cutoff) })
}

func (r *sessionRepo) deleteWhere(ctx context.Context, match func(models.Session) bool) (int64, error) {
	var n int64
	err := r.v.do(ctx, func(st *state) error {
		for id, s := range st.sessions {
			if match(s) {
				delete(st.sessions, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

type skillRepo struct{ v *view }

func (r *skillRepo) CreateSkill(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.v.do(ctx, func(st *state) error {
		for _, s := range st.skills {
			if strings.EqualFold(s.Name, name) {
				return apperrors.ErrSkillExists
			}
		}
		st.lastSkillID++
		id = st.lastSkillID
		st.skills[id] = models.Skill{ID: id, Name: name}
		return nil
	})
	return id, err
}

func (r *skillRepo) GetSkill(ctx context.Context, id int64) (*models.Skill, error) {
	var out *models.Skill
	err := r.v.do(ctx, func(st *state) error {
		s, ok := st.skills[id]
		if !ok {
			return apperrors.ErrSkillNotFound
		}
		out = &s
		return nil
	})
	return out, err
}

func (r *skillRepo) SkillExists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.v.do(ctx, func(st *state) error {
		_, ok = st.skills[id]
		return nil
	})
	return ok, err
}

func (r *skillRepo) ListSkills(ctx context.Context) ([]*models.Skill, error) {
	var out []*models.Skill
	err := r.v.do(ctx, func(st *state) error {
		for _, s := range st.skills {
			s := s
			out = append(out, &s)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *skillRepo) AddTrainer(ctx context.Context, userID, skillID int64) error {
	return r.v.do(ctx, func(st *state) error {
		if _, ok := st.users[userID]; !ok {
			return apperrors.ErrUserNotFound
		}
		if _, ok := st.skills[skillID]; !ok {
			return apperrors.ErrSkillNotFound
		}
		q := qualification{userID: userID, skillID: skillID}
		if _, ok := st.trainers[q]; ok {
			return apperrors.ErrAlreadyQualified
		}
		st.trainers[q] = struct{}{}
		return nil
	})
}

func (r *skillRepo) IsTrainerFor(ctx context.Context, userID, skillID int64) (bool, error) {
	var ok bool
	err := r.v.do(ctx, func(st *state) error {
		_, ok = st.trainers[qualification{userID: userID, skillID: skillID}]
		return nil
	})
	return ok, err
}

func (r *skillRepo) ListTrainerSkills(ctx context.Context, userID int64) ([]*models.Skill, error) {
	var out []*models.Skill
	err := r.v.do(ctx, func(st *state) error {
		for q := range st.trainers {
			if q.userID != userID {
				continue
			}
			if s, ok := st.skills[q.skillID]; ok {
				out = append(out, &s)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

type classRepo struct{ v *view }

func (r *classRepo) CreateClass(ctx context.Context, class *models.Class) (int64, error) {
	var id int64
	err := r.v.do(ctx, func(st *state) error {
		if _, ok := st.users[class.TrainerID]; !ok {
			return apperrors.ErrUserNotFound
		}
		if _, ok := st.skills[class.SkillID]; !ok {
			return apperrors.ErrSkillNotFound
		}
		st.lastClassID++
		id = st.lastClassID
		c := *class
		c.ID = id
		st.classes[id] = c
		return nil
	})
	return id, err
}

func listing(st *state, c models.Class) *models.ClassListing {
	l := &models.ClassListing{
		Class:       c,
		SkillName:   st.skills[c.SkillID].Name,
		TrainerName: st.users[c.TrainerID].FullName,
	}
	for _, a := range st.attendees {
		if a.ClassID == c.ID && a.Status == models.StatusEnrolled {
			l.Enrolled++
		}
	}
	return l
}

func (r *classRepo) GetClass(ctx context.Context, id int64) (*models.ClassListing, error) {
	var out *models.ClassListing
	err := r.v.do(ctx, func(st *state) error {
		c, ok := st.classes[id]
		if !ok {
			return apperrors.ErrClassNotFound
		}
		out = listing(st, c)
		return nil
	})
	return out, err
}

func (r *classRepo) LockClass(ctx context.Context, id int64) (*models.Class, error) {
	var out *models.Class
	err := r.v.do(ctx, func(st *state) error {
		c, ok := st.classes[id]
		if !ok {
			return apperrors.ErrClassNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *classRepo) ListClassesStartingAfter(ctx context.Context, after time.Time) ([]*models.ClassListing, error) {
	var out []*models.ClassListing
	err := r.v.do(ctx, func(st *state) error {
		for _, c := range st.classes {
			if c.StartAt.After(after) {
				out = append(out, listing(st, c))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartAt.Equal(out[j].StartAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartAt.Before(out[j].StartAt)
	})
	return out, err
}

func (r *classRepo) SetClassCapacity(ctx context.Context, id int64, capacity int) error {
	return r.v.do(ctx, func(st *state) error {
		c, ok := st.classes[id]
		if !ok {
			return apperrors.ErrClassNotFound
		}
		c.Capacity = capacity
		st.classes[id] = c
		return nil
	})
}

type attendeeRepo struct{ v *view }

func (r *attendeeRepo) CreateAttendee(ctx context.Context, attendee *models.Attendee) (int64, error) {
	var id int64
	err := r.v.do(ctx, func(st *state) error {
		if _, ok := st.users[attendee.UserID]; !ok {
			return apperrors.ErrUserNotFound
		}
		if _, ok := st.classes[attendee.ClassID]; !ok {
			return apperrors.ErrClassNotFound
		}
		st.lastAttendeeID++
		id = st.lastAttendeeID
		a := *attendee
		a.ID = id
		st.attendees[id] = a
		return nil
	})
	return id, err
}

func (r *attendeeRepo) GetAttendee(ctx context.Context, id int64) (*models.Attendee, error) {
	var out *models.Attendee
	err := r.v.do(ctx, func(st *state) error {
		a, ok := st.attendees[id]
		if !ok {
			return apperrors.ErrAttendeeNotFound
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *attendeeRepo) CountEnrolled(ctx context.Context, classID int64) (int, error) {
	n := 0
	err := r.v.do(ctx, func(st *state) error {
		for _, a := range st.attendees {
			if a.ClassID == classID && a.Status == models.StatusEnrolled {
				n++
			}
		}
		return nil
	})
	return n, err
}

func record(st *state, a models.Attendee) *models.AttendeeRecord {
	c := st.classes[a.ClassID]
	return &models.AttendeeRecord{
		Attendee:     a,
		UserName:     st.users[a.UserID].FullName,
		SkillID:      c.SkillID,
		SkillName:    st.skills[c.SkillID].Name,
		TrainerID:    c.TrainerID,
		TrainerName:  st.users[c.TrainerID].FullName,
		ClassStartAt: c.StartAt,
	}
}

func (r *attendeeRepo) ListAttendeesByClass(ctx context.Context, classID int64) ([]*models.AttendeeRecord, error) {
	var out []*models.AttendeeRecord
	err := r.v.do(ctx, func(st *state) error {
		for _, a := range st.attendees {
			if a.ClassID == classID {
				out = append(out, record(st, a))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *attendeeRepo) ListAttendeesByUser(ctx context.Context, userID int64) ([]*models.AttendeeRecord, error) {
	var out []*models.AttendeeRecord
	err := r.v.do(ctx, func(st *state) error {
		for _, a := range st.attendees {
			if a.UserID == userID {
				out = append(out, record(st, a))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ClassStartAt.Equal(out[j].ClassStartAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].ClassStartAt.Before(out[j].ClassStartAt)
	})
	return out, err
}

func (r *attendeeRepo) DeleteAttendee(ctx context.Context, id int64) error {
	return r.v.do(ctx, func(st *state) error {
		if _, ok := st.attendees[id]; !ok {
			return apperrors.ErrAttendeeNotFound
		}
		delete(st.attendees, id)
		return nil
	})
}

func (r *attendeeRepo) UpdateAttendeeStatus(ctx context.Context, id int64, status models.AttendeeStatus) error {
	return r.v.do(ctx, func(st *state) error {
		a, ok := st.attendees[id]
		if !ok {
			return apperrors.ErrAttendeeNotFound
		}
		a.Status = status
		st.attendees[id] = a
		return nil
	})
}

func (r *attendeeRepo) CancelEnrolledAttendees(ctx context.Context, classID int64) ([]int64, error) {
	var ids []int64
	err := r.v.do(ctx, func(st *state) error {
		for id, a := range st.attendees {
			if a.ClassID == classID && a.Status == models.StatusEnrolled {
				a.Status = models.StatusClassCancelled
				st.attendees[id] = a
				ids = append(ids, id)
			}
		}
		return nil
	})
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, err
}
