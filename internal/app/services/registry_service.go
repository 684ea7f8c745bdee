package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/app/repositories"
	"github.com/yigit/skilltrack/internal/pkg/apperrors"
	"github.com/yigit/skilltrack/internal/pkg/auth"
	"github.com/yigit/skilltrack/internal/pkg/clock"
	"github.com/yigit/skilltrack/internal/pkg/validation"
)

// RegistryService answers who may teach what, and provisions users, skills and qualifications
type RegistryService struct {
	store  repositories.Store
	clock  clock.Clock
	logger zerolog.Logger
}

// NewRegistryService creates a new RegistryService
func NewRegistryService(store repositories.Store, clk clock.Clock, logger zerolog.Logger) *RegistryService {
	return &RegistryService{
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

// IsTrainerFor reports whether the user is qualified to teach the skill
func (s *RegistryService) IsTrainerFor(ctx context.Context, userID, skillID int64) (bool, error) {
	return s.store.Repos().Skills.IsTrainerFor(ctx, userID, skillID)
}

// SkillExists reports whether the skill id refers to an existing skill
func (s *RegistryService) SkillExists(ctx context.Context, skillID int64) (bool, error) {
	return s.store.Repos().Skills.SkillExists(ctx, skillID)
}

// ListSkills returns every skill
func (s *RegistryService) ListSkills(ctx context.Context) ([]*models.Skill, error) {
	return s.store.Repos().Skills.ListSkills(ctx)
}

// CreateUser provisions a user with a hashed secret
func (s *RegistryService) CreateUser(ctx context.Context, fullName, loginName, secret string) (int64, error) {
	fullName = strings.TrimSpace(fullName)
	loginName = strings.TrimSpace(loginName)

	var violations []error
	if !validation.ValidFullName(fullName) {
		violations = append(violations, apperrors.NewValidationError("fullName", "full name must be 1-200 characters"))
	}
	if !validation.ValidLoginName(loginName) {
		violations = append(violations, apperrors.NewValidationError("loginName", "login name must be 1-64 characters without spaces"))
	}
	if !validation.ValidPassword(secret) {
		violations = append(violations, apperrors.NewValidationError("password", "password must be 4-72 bytes"))
	}
	if len(violations) > 0 {
		return 0, errors.Join(violations...)
	}

	hash, err := auth.HashPassword(secret)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := s.store.Repos().Users.CreateUser(ctx, &models.User{
		FullName:     fullName,
		LoginName:    loginName,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrLoginNameExists) {
			return 0, apperrors.NewBusinessRuleError(apperrors.ErrLoginNameExists)
		}
		return 0, err
	}

	s.logger.Info().Int64("userID", id).Str("loginName", loginName).Msg("User created")
	return id, nil
}

// CreateSkill adds a skill
func (s *RegistryService) CreateSkill(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, apperrors.NewValidationError("name", "skill name is required")
	}

	id, err := s.store.Repos().Skills.CreateSkill(ctx, name)
	if err != nil {
		if errors.Is(err, apperrors.ErrSkillExists) {
			return 0, apperrors.NewBusinessRuleError(apperrors.ErrSkillExists)
		}
		return 0, err
	}

	s.logger.Info().Int64("skillID", id).Str("name", name).Msg("Skill created")
	return id, nil
}

// GrantTrainer qualifies a user to teach a skill
func (s *RegistryService) GrantTrainer(ctx context.Context, userID, skillID int64) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		if _, err := repos.Users.GetUserByID(ctx, userID); err != nil {
			return notFound(err, apperrors.ErrUserNotFound)
		}
		exists, err := repos.Skills.SkillExists(ctx, skillID)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.NewNotFoundError(apperrors.ErrSkillNotFound)
		}
		if err := repos.Skills.AddTrainer(ctx, userID, skillID); err != nil {
			if errors.Is(err, apperrors.ErrAlreadyQualified) {
				return apperrors.NewBusinessRuleError(apperrors.ErrAlreadyQualified)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Int64("userID", userID).Int64("skillID", skillID).Msg("Trainer qualification granted")
	return nil
}
