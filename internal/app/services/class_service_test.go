package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/app/models/dto/enums"
	"github.com/yigit/skilltrack/internal/pkg/apperrors"
)

func fields(err error) []string {
	var out []string
	for _, e := range apperrors.Flatten(err) {
		var ce *apperrors.CustomError
		if errors.As(e, &ce) {
			out = append(out, ce.Field)
		}
	}
	return out
}

func TestCreateClass(t *testing.T) {
	f := newFixture(t)
	boxing := f.skill(t, "Boxing")
	tom := f.trainer(t, "Tom", boxing)

	first := f.class(t, tom, boxing, baseTime.Add(24*time.Hour), 4)
	second := f.class(t, tom, boxing, baseTime.Add(48*time.Hour), 4)
	assert.Greater(t, second, first)

	view, rows, err := f.classes.GetClassDetail(f.ctx, tom, first)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, "Boxing", view.Class.SkillName)
	assert.Equal(t, "Tom", view.Class.TrainerName)
	assert.Equal(t, 4, view.Class.Capacity)
	assert.Equal(t, "bring gloves", view.Class.Note)
	assert.True(t, view.Class.StartAt.Equal(baseTime.Add(24*time.Hour)))
	assert.Equal(t, enums.ActionCancel, view.Action)
}

func TestCreateClass_RequiresQualifiedTrainer(t *testing.T) {
	f := newFixture(t)
	boxing := f.skill(t, "Boxing")
	alice := f.user(t, "Alice")

	_, err := f.classes.CreateClass(f.ctx, alice, schedule(boxing, baseTime.Add(time.Hour), 4))
	requireKind(t, err, apperrors.KindAuthorization, apperrors.ErrNotTrainer)
}

func TestCreateClass_ReportsEveryInvalidField(t *testing.T) {
	f := newFixture(t)
	boxing := f.skill(t, "Boxing")
	tom := f.trainer(t, "Tom", boxing)

	_, err := f.classes.CreateClass(f.ctx, tom, NewClass{
		SkillID: boxing, Capacity: 11, Year: 2026, Month: 13, Day: 0, Hour: 24, Minute: 60,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.ElementsMatch(t, []string{"max", "month", "day", "hour", "minute"}, fields(err))
}

func TestCreateClass_CalendarEdgeCases(t *testing.T) {
	f := newFixture(t)
	boxing := f.skill(t, "Boxing")
	tom := f.trainer(t, "Tom", boxing)

	tests := []struct {
		name  string
		req   NewClass
		field []string
	}{
		{"february 30th", NewClass{SkillID: boxing, Capacity: 2, Year: 2026, Month: 2, Day: 30, Hour: 9}, []string{"day"}},
		{"april 31st", NewClass{SkillID: boxing, Capacity: 2, Year: 2026, Month: 4, Day: 31, Hour: 9}, []string{"day"}},
		{"leap day in a leap year", NewClass{SkillID: boxing, Capacity: 2, Year: 2028, Month: 2, Day: 29, Hour: 9}, nil},
		{"in the past", NewClass{SkillID: boxing, Capacity: 2, Year: 2026, Month: 3, Day: 10, Hour: 11}, []string{"start"}},
		{"exactly now", NewClass{SkillID: boxing, Capacity: 2, Year: 2026, Month: 3, Day: 10, Hour: 12}, []string{"start"}},
		{"zero capacity", NewClass{SkillID: boxing, Capacity: 0, Year: 2026, Month: 3, Day: 11, Hour: 9}, []string{"max"}},
		{"unknown skill", NewClass{SkillID: 999, Capacity: 2, Year: 2026, Month: 3, Day: 11, Hour: 9}, []string{"id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.classes.CreateClass(f.ctx, tom, tt.req)
			if tt.field == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
			assert.Equal(t, tt.field, fields(err))
		})
	}
}

func TestCancelClass_CascadesToEnrolledAttendees(t *testing.T) {
	f := newFixture(t)
	boxing := f.skill(t, "Boxing")
	tom := f.trainer(t, "Tom", boxing)
	alice := f.user(t, "Alice")
	bob := f.user(t, "Bob")
	carol := f.user(t, "Carol")

	classID := f.class(t, tom, boxing, baseTime.Add(24*time.Hour), 5)
	for _, p := range []models.Principal{alice, bob, carol} {
		_, err := f.attendance.Join(f.ctx, p, classID)
		require.NoError(t, err)
	}
	rows := f.attendees(t, tom, classID)
	_, err := f.attendance.SetAttendeeOutcome(f.ctx, tom, rows[2].Attendee.ID, models.OutcomeRemove)
	require.NoError(t, err)

	result, err := f.classes.CancelClass(f.ctx, tom, classID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Class.Class.Capacity)
	assert.Equal(t, enums.ActionCancelled, result.Class.Action)
	require.Len(t, result.Changed, 2)
	for _, a := range result.Changed {
		assert.Equal(t, models.StatusClassCancelled, a.Attendee.Status)
		assert.Equal(t, enums.ActionCancelled, a.Action)
	}

	again, err := f.classes.CancelClass(f.ctx, tom, classID)
	require.NoError(t, err, "cancelling twice is a no-op while the class is upcoming")
	assert.Empty(t, again.Changed)
	assert.Equal(t, 0, again.Class.Class.Capacity)

	rows = f.attendees(t, tom, classID)
	require.Len(t, rows, 3)
	assert.Equal(t, models.StatusClassCancelled, rows[0].Attendee.Status)
	assert.Equal(t, models.StatusClassCancelled, rows[1].Attendee.Status)
	assert.Equal(t, models.StatusRemoved, rows[2].Attendee.Status)

	f.clock.Advance(25 * time.Hour)
	_, err = f.classes.CancelClass(f.ctx, tom, classID)
	requireKind(t, err, apperrors.KindAuthorization, apperrors.ErrClassNotUpcoming)

	assert.Contains(t, f.publisher.types(), models.RosterCancelled)
}

func TestCancelClass_Authorization(t *testing.T) {
	f := newFixture(t)
	boxing := f.skill(t, "Boxing")
	tom := f.trainer(t, "Tom", boxing)
	tina := f.trainer(t, "Tina", boxing)
	classID := f.class(t, tom, boxing, baseTime.Add(time.Hour), 5)

	_, err := f.classes.CancelClass(f.ctx, tina, classID)
	requireKind(t, err, apperrors.KindAuthorization, apperrors.ErrNotYourClass)

	_, err = f.classes.CancelClass(f.ctx, tom, 999)
	requireKind(t, err, apperrors.KindNotFound, apperrors.ErrClassNotFound)
}

func TestGetUpcoming(t *testing.T) {
	f := newFixture(t)
	boxing := f.skill(t, "Boxing")
	judo := f.skill(t, "Judo")
	tom := f.trainer(t, "Tom", boxing, judo)
	alice := f.user(t, "Alice")

	late := f.class(t, tom, boxing, baseTime.Add(72*time.Hour), 5)
	early := f.class(t, tom, judo, baseTime.Add(2*time.Hour), 5)
	mid := f.class(t, tom, boxing, baseTime.Add(24*time.Hour), 5)
	past := f.class(t, tom, judo, baseTime.Add(time.Hour), 5)

	_, err := f.attendance.Join(f.ctx, alice, mid)
	require.NoError(t, err)

	f.clock.Advance(90 * time.Minute)

	views, err := f.classes.GetUpcoming(f.ctx, alice)
	require.NoError(t, err)
	require.Len(t, views, 3)

	got := map[int64]enums.Action{}
	var order []int64
	for _, v := range views {
		order = append(order, v.Class.ID)
		got[v.Class.ID] = v.Action
	}
	assert.Equal(t, []int64{early, mid, late}, order)
	assert.NotContains(t, order, past)
	assert.Equal(t, enums.ActionJoin, got[early])
	assert.Equal(t, enums.ActionLeave, got[mid])
	assert.Equal(t, enums.ActionUnavailable, got[late])

	trainerViews, err := f.classes.GetUpcoming(f.ctx, tom)
	require.NoError(t, err)
	for _, v := range trainerViews {
		assert.Equal(t, enums.ActionEdit, v.Action)
	}
	assert.Equal(t, 1, views[1].Class.Enrolled)
}

func TestGetClassDetail(t *testing.T) {
	f := newFixture(t)
	boxing := f.skill(t, "Boxing")
	tom := f.trainer(t, "Tom", boxing)
	alice := f.user(t, "Alice")
	classID := f.class(t, tom, boxing, baseTime.Add(time.Hour), 5)

	_, err := f.attendance.Join(f.ctx, alice, classID)
	require.NoError(t, err)

	_, _, err = f.classes.GetClassDetail(f.ctx, alice, classID)
	requireKind(t, err, apperrors.KindAuthorization, apperrors.ErrNotYourClass)

	_, _, err = f.classes.GetClassDetail(f.ctx, tom, 42)
	requireKind(t, err, apperrors.KindNotFound, apperrors.ErrClassNotFound)

	rows := f.attendees(t, tom, classID)
	require.Len(t, rows, 1)
	assert.Equal(t, "Alice", rows[0].Attendee.UserName)
	assert.Equal(t, enums.ActionRemove, rows[0].Action)

	f.clock.Advance(2 * time.Hour)
	rows = f.attendees(t, tom, classID)
	assert.Equal(t, enums.ActionUpdate, rows[0].Action)
}
