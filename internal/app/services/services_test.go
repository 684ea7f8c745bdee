package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/app/repositories"
	"github.com/yigit/skilltrack/internal/app/repositories/memstore"
	"github.com/yigit/skilltrack/internal/app/repositories/storetest"
	"github.com/yigit/skilltrack/internal/pkg/apperrors"
	"github.com/yigit/skilltrack/internal/pkg/auth"
	"github.com/yigit/skilltrack/internal/pkg/clock"
)

var baseTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.RosterEvent
}

func (p *recordingPublisher) PublishRoster(e models.RosterEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []models.RosterEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.RosterEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	ctx        context.Context
	store      repositories.Store
	clock      *clock.Mock
	publisher  *recordingPublisher
	sessions   *SessionService
	registry   *RegistryService
	classes    *ClassService
	attendance *AttendanceService
	summary    *SkillSummaryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, memstore.New())
}

// forEachFixture runs fn against a fixture on every available store
func forEachFixture(t *testing.T, fn func(t *testing.T, f *fixture)) {
	t.Helper()
	storetest.ForEach(t, func(t *testing.T, store repositories.Store) {
		fn(t, newFixtureOn(t, store))
	})
}

func newFixtureOn(t *testing.T, store repositories.Store) *fixture {
	t.Helper()
	auth.BcryptCost = 4

	clk := clock.NewMock(baseTime)
	pub := &recordingPublisher{}
	log := zerolog.Nop()

	return &fixture{
		ctx:        context.Background(),
		store:      store,
		clock:      clk,
		publisher:  pub,
		sessions:   NewSessionService(store, clk, 24*time.Hour, log),
		registry:   NewRegistryService(store, clk, log),
		classes:    NewClassService(store, clk, ClassOptions{Location: time.UTC, MinCapacity: 1, MaxCapacity: 10}, pub, log),
		attendance: NewAttendanceService(store, clk, pub, log),
		summary:    NewSkillSummaryService(store, clk, log),
	}
}

func (f *fixture) user(t *testing.T, name string) models.Principal {
	t.Helper()
	id, err := f.registry.CreateUser(f.ctx, name, strings.ToLower(name), "secret-"+strings.ToLower(name))
	require.NoError(t, err)
	return models.Principal{UserID: id}
}

func (f *fixture) skill(t *testing.T, name string) int64 {
	t.Helper()
	id, err := f.registry.CreateSkill(f.ctx, name)
	require.NoError(t, err)
	return id
}

func (f *fixture) trainer(t *testing.T, name string, skillIDs ...int64) models.Principal {
	t.Helper()
	p := f.user(t, name)
	for _, s := range skillIDs {
		require.NoError(t, f.registry.GrantTrainer(f.ctx, p.UserID, s))
	}
	return p
}

func schedule(skillID int64, start time.Time, capacity int) NewClass {
	return NewClass{
		SkillID:  skillID,
		Capacity: capacity,
		Year:     start.Year(),
		Month:    int(start.Month()),
		Day:      start.Day(),
		Hour:     start.Hour(),
		Minute:   start.Minute(),
		Note:     "bring gloves",
	}
}

func (f *fixture) class(t *testing.T, trainer models.Principal, skillID int64, start time.Time, capacity int) int64 {
	t.Helper()
	id, err := f.classes.CreateClass(f.ctx, trainer, schedule(skillID, start, capacity))
	require.NoError(t, err)
	return id
}

func (f *fixture) attendees(t *testing.T, trainer models.Principal, classID int64) []*AttendeeView {
	t.Helper()
	_, rows, err := f.classes.GetClassDetail(f.ctx, trainer, classID)
	require.NoError(t, err)
	return rows
}

func requireKind(t *testing.T, err error, kind apperrors.Kind, reason error) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, reason)
	require.Equal(t, kind, apperrors.KindOf(err))
}

func reasons(err error) []error {
	var out []error
	for _, e := range apperrors.Flatten(err) {
		var ce *apperrors.CustomError
		if errors.As(e, &ce) {
			out = append(out, ce.Err)
		}
	}
	return out
}
