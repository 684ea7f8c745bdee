package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/app/repositories"
	"github.com/yigit/skilltrack/internal/pkg/apperrors"
	"github.com/yigit/skilltrack/internal/pkg/auth"
	"github.com/yigit/skilltrack/internal/pkg/clock"
)

// SessionService issues, validates and revokes session tokens. A user has at most one live
// session: a successful login replaces any earlier one.
type SessionService struct {
	store  repositories.Store
	clock  clock.Clock
	maxAge time.Duration
	logger zerolog.Logger
}

// NewSessionService creates a new SessionService. A zero maxAge keeps sessions valid until they
// are superseded or logged out.
func NewSessionService(store repositories.Store, clk clock.Clock, maxAge time.Duration, logger zerolog.Logger) *SessionService {
	return &SessionService{
		store:  store,
		clock:  clk,
		maxAge: maxAge,
		logger: logger,
	}
}

// Login checks the credentials and opens a new session, deleting any previous session of the
// same user in the same transaction. Wrong login names and wrong secrets fail identically.
func (s *SessionService) Login(ctx context.Context, loginName, secret string) (*models.Principal, error) {
	loginName = strings.TrimSpace(loginName)

	var violations []error
	if loginName == "" {
		violations = append(violations, apperrors.NewValidationError("username", "login name is required"))
	}
	if secret == "" {
		violations = append(violations, apperrors.NewValidationError("password", "password is required"))
	}
	if len(violations) > 0 {
		return nil, errors.Join(violations...)
	}

	user, err := s.store.Repos().Users.GetUserByLoginName(ctx, loginName)
	if err != nil {
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		auth.BurnPasswordCheck(secret)
		s.logger.Info().Str("loginName", loginName).Msg("Login failed")
		return nil, apperrors.NewAuthenticationError(apperrors.ErrInvalidCredentials)
	}

	if !auth.CheckPassword(user.PasswordHash, secret) {
		s.logger.Info().Str("loginName", loginName).Msg("Login failed")
		return nil, apperrors.NewAuthenticationError(apperrors.ErrInvalidCredentials)
	}

	magic, err := auth.GenerateMagic()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		if err := repos.Users.LockUser(ctx, user.ID); err != nil {
			return err
		}
		if _, err := repos.Sessions.DeleteSessionsForUser(ctx, user.ID); err != nil {
			return err
		}
		_, err := repos.Sessions.CreateSession(ctx, &models.Session{
			UserID:    user.ID,
			Magic:     magic,
			CreatedAt: s.clock.Now(),
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info().Int64("userID", user.ID).Msg("User logged in")
	return &models.Principal{UserID: user.ID, Token: magic}, nil
}

// Validate reports whether a live session matches both the user id and the token exactly
func (s *SessionService) Validate(ctx context.Context, userID int64, token string) (bool, error) {
	if userID <= 0 || auth.ValidateMagicFormat(token) != nil {
		return false, nil
	}

	session, err := s.store.Repos().Sessions.GetSession(ctx, userID, token)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read session: %w", err)
	}

	if session.ExpiredAt(s.clock.Now(), s.maxAge) {
		return false, nil
	}
	return true, nil
}

// Authenticate validates the pair and returns it as a Principal
func (s *SessionService) Authenticate(ctx context.Context, userID int64, token string) (*models.Principal, error) {
	ok, err := s.Validate(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewAuthenticationError(apperrors.ErrSessionInvalid)
	}
	return &models.Principal{UserID: userID, Token: token}, nil
}

// Logout deletes the matching session if there is one and reports whether it existed.
// Logging out an unknown session is a no-op.
func (s *SessionService) Logout(ctx context.Context, userID int64, token string) (bool, error) {
	if userID <= 0 || token == "" {
		return false, nil
	}

	var ended bool
	err := s.store.WithTx(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		ended = false
		if err := repos.Users.LockUser(ctx, userID); err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				return nil
			}
			return err
		}
		deleted, err := repos.Sessions.DeleteSession(ctx, userID, token)
		if err != nil {
			return err
		}
		ended = deleted
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to end session: %w", err)
	}

	if ended {
		s.logger.Info().Int64("userID", userID).Msg("User logged out")
	}
	return ended, nil
}

// CleanupExpired deletes sessions older than the configured maximum age
func (s *SessionService) CleanupExpired(ctx context.Context) (int64, error) {
	if s.maxAge <= 0 {
		return 0, nil
	}

	cutoff := s.clock.Now().Add(-s.maxAge)
	n, err := s.store.Repos().Sessions.DeleteSessionsCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	if n > 0 {
		s.logger.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("Expired sessions removed")
	}
	return n, nil
}

// PruneOlderThan deletes sessions created more than age ago regardless of the configured maximum
func (s *SessionService) PruneOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := s.clock.Now().Add(-age)
	n, err := s.store.Repos().Sessions.DeleteSessionsCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}
	return n, nil
}
