// Package memstore is an in-process implementation of the repository interfaces. Transactions
// are serialised by a single mutex and rolled back by restoring a snapshot taken on entry.
package memstore

import (
	"context"
	"sync"

	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/app/repositories"
)

type qualification struct {
	userID  int64
	skillID int64
}

type state struct {
	users     map[int64]models.User
	sessions  map[int64]models.Session
	skills    map[int64]models.Skill
	trainers  map[qualification]struct{}
	classes   map[int64]models.Class
	attendees map[int64]models.Attendee

	lastUserID     int64
	lastSessionID  int64
	lastSkillID    int64
	lastClassID    int64
	lastAttendeeID int64
}

func newState() *state {
	return &state{
		users:     make(map[int64]models.User),
		sessions:  make(map[int64]models.Session),
		skills:    make(map[int64]models.Skill),
		trainers:  make(map[qualification]struct{}),
		classes:   make(map[int64]models.Class),
		attendees: make(map[int64]models.Attendee),
	}
}

func (s *state) clone() *state {
	c := *s
	c.users = make(map[int64]models.User, len(s.users))
	for k, v := range s.users {
		c.users[k] = v
	}
	c.sessions = make(map[int64]models.Session, len(s.sessions))
	for k, v := range s.sessions {
		c.sessions[k] = v
	}
	c.skills = make(map[int64]models.Skill, len(s.skills))
	for k, v := range s.skills {
		c.skills[k] = v
	}
	c.trainers = make(map[qualification]struct{}, len(s.trainers))
	for k := range s.trainers {
		c.trainers[k] = struct{}{}
	}
	c.classes = make(map[int64]models.Class, len(s.classes))
	for k, v := range s.classes {
		c.classes[k] = v
	}
	c.attendees = make(map[int64]models.Attendee, len(s.attendees))
	for k, v := range s.attendees {
		c.attendees[k] = v
	}
	return &c
}

// Store is a repositories.Store held entirely in memory
type Store struct {
	mu sync.Mutex
	st *state

	repos *repositories.Repositories
}

// New creates an empty Store
func New() *Store {
	s := &Store{st: newState()}
	s.repos = s.bind(false)
	return s
}

// Repos returns repositories that lock the store per call. They must not be used from inside
// a WithTx callback.
func (s *Store) Repos() *repositories.Repositories {
	return s.repos
}

// WithTx runs fn with exclusive access to the store. A non-nil error from fn discards every
// write fn made.
func (s *Store) WithTx(ctx context.Context, fn repositories.TxFn) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	committed := false
	defer func() {
		if !committed {
			s.st = snapshot
		}
	}()

	if err := fn(ctx, s.bind(true)); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Store) bind(inTx bool) *repositories.Repositories {
	v := &view{store: s, inTx: inTx}
	return &repositories.Repositories{
		Users:     &userRepo{v},
		Sessions:  &sessionRepo{v},
		Skills:    &skillRepo{v},
		Classes:   &classRepo{v},
		Attendees: &attendeeRepo{v},
	}
}

// view gives repository methods access to the current state, taking the store lock when it is
// not already held by a transaction
type view struct {
	store *Store
	inTx  bool
}

func (v *view) do(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !v.inTx {
		v.store.mu.Lock()
		defer v.store.mu.Unlock()
	}
	return fn(v.store.st)
}
