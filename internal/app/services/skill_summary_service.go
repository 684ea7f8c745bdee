package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/app/projection"
	"github.com/yigit/skilltrack/internal/app/repositories"
	"github.com/yigit/skilltrack/internal/pkg/clock"
)

// SkillSummaryService reports the caller's standing in each skill
type SkillSummaryService struct {
	store  repositories.Store
	clock  clock.Clock
	logger zerolog.Logger
}

// NewSkillSummaryService creates a new SkillSummaryService
func NewSkillSummaryService(store repositories.Store, clk clock.Clock, logger zerolog.Logger) *SkillSummaryService {
	return &SkillSummaryService{
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

// GetMySkills returns one row per skill the caller teaches or has a live attendee row in
func (s *SkillSummaryService) GetMySkills(ctx context.Context, p models.Principal) ([]projection.SkillRow, error) {
	var rows []projection.SkillRow
	err := s.store.WithTx(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		viewer, err := loadViewer(ctx, repos, p.UserID)
		if err != nil {
			return err
		}
		rows = projection.SkillSummary(viewer, s.clock.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Int64("userID", p.UserID).Int("skills", len(rows)).Msg("Skill summary built")
	return rows, nil
}
