package seed

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/app/repositories/memstore"
	"github.com/yigit/skilltrack/internal/app/services"
	"github.com/yigit/skilltrack/internal/pkg/auth"
	"github.com/yigit/skilltrack/internal/pkg/clock"
)

func TestCreateDefaultData(t *testing.T) {
	auth.BcryptCost = 4
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	store := memstore.New()
	clk := clock.NewMock(now)
	log := zerolog.Nop()
	registry := services.NewRegistryService(store, clk, log)
	classes := services.NewClassService(store, clk, services.ClassOptions{Location: time.UTC}, nil, log)
	sessions := services.NewSessionService(store, clk, 0, log)

	res, err := CreateDefaultData(ctx, registry, classes, now, log)
	require.NoError(t, err)
	assert.Equal(t, Result{Users: 4, Skills: 3, Classes: 3}, res)

	p, err := sessions.Login(ctx, "alice", DefaultPassword)
	require.NoError(t, err)

	upcoming, err := classes.GetUpcoming(ctx, models.Principal{UserID: p.UserID})
	require.NoError(t, err)
	assert.Len(t, upcoming, 3)

	again, err := CreateDefaultData(ctx, registry, classes, now, log)
	require.NoError(t, err)
	assert.Equal(t, Result{}, again)
}
