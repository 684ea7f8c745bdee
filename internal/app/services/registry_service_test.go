package services

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/pkg/apperrors"
)

func TestIsTrainerFor(t *testing.T) {
	f := newFixture(t)
	boxing := f.skill(t, "Boxing")
	judo := f.skill(t, "Judo")
	tom := f.trainer(t, "Tom", boxing)
	alice := f.user(t, "Alice")

	tests := []struct {
		name    string
		userID  int64
		skillID int64
		want    bool
	}{
		{"qualified", tom.UserID, boxing, true},
		{"other skill", tom.UserID, judo, false},
		{"learner", alice.UserID, boxing, false},
		{"unknown user", 999, boxing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.registry.IsTrainerFor(f.ctx, tt.userID, tt.skillID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSkillExists(t *testing.T) {
	f := newFixture(t)
	boxing := f.skill(t, "Boxing")

	ok, err := f.registry.SkillExists(f.ctx, boxing)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.registry.SkillExists(f.ctx, boxing+1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateUser_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.registry.CreateUser(f.ctx, "", "has space", "pw")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Len(t, apperrors.Flatten(err), 3)

	f.user(t, "Alice")
	_, err = f.registry.CreateUser(f.ctx, "Alice Again", "alice", "secret-alice")
	requireKind(t, err, apperrors.KindBusinessRule, apperrors.ErrLoginNameExists)
}

func TestGrantTrainer(t *testing.T) {
	f := newFixture(t)
	boxing := f.skill(t, "Boxing")
	alice := f.user(t, "Alice")

	require.NoError(t, f.registry.GrantTrainer(f.ctx, alice.UserID, boxing))
	requireKind(t, f.registry.GrantTrainer(f.ctx, alice.UserID, boxing), apperrors.KindBusinessRule, apperrors.ErrAlreadyQualified)
	requireKind(t, f.registry.GrantTrainer(f.ctx, 999, boxing), apperrors.KindNotFound, apperrors.ErrUserNotFound)
	requireKind(t, f.registry.GrantTrainer(f.ctx, alice.UserID, 999), apperrors.KindNotFound, apperrors.ErrSkillNotFound)

	_, err := f.registry.CreateSkill(f.ctx, " Boxing ")
	requireKind(t, err, apperrors.KindBusinessRule, apperrors.ErrSkillExists)
}

func TestGetMySkills_LogsSummary(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	summary := NewSkillSummaryService(f.store, f.clock, zerolog.New(&buf).Level(zerolog.DebugLevel))

	boxing := f.skill(t, "Boxing")
	tom := f.trainer(t, "Tom", boxing)

	rows, err := summary.GetMySkills(f.ctx, models.Principal{UserID: tom.UserID})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Contains(t, buf.String(), "Skill summary built")
	assert.Contains(t, buf.String(), `"skills":1`)
}
