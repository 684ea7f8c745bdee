package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/pkg/apperrors"
	"github.com/yigit/skilltrack/internal/pkg/logger"
)

// SessionRepository handles session database operations
type SessionRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// CreateSession inserts a session row. The caller must have removed any previous session of
// the same user inside the same transaction.
func (r *SessionRepository) CreateSession(ctx context.Context, session *models.Session) (int64, error) {
	sql, args, err := r.sb.Insert("sessions").
		Columns("user_id", "magic", "created_at").
		Values(session.UserID, session.Magic, session.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create session query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Int64("userID", session.UserID).Msg("Error creating session")
		return 0, fmt.Errorf("error creating session: %w", err)
	}
	return id, nil
}

// GetSession returns the session matching both the user id and the magic token
func (r *SessionRepository) GetSession(ctx context.Context, userID int64, magic string) (*models.Session, error) {
	sql, args, err := r.sb.Select("id", "user_id", "magic", "created_at").
		From("sessions").
		Where(squirrel.Eq{"user_id": userID, "magic": magic}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get session query: %w", err)
	}

	s := &models.Session{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.UserID, &s.Magic, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("error getting session: %w", err)
	}
	return s, nil
}

// DeleteSession removes the matching session and reports whether one existed
func (r *SessionRepository) DeleteSession(ctx context.Context, userID int64, magic string) (bool, error) {
	n, err := r.delete(ctx, squirrel.Eq{"user_id": userID, "magic": magic})
	return n > 0, err
}

// DeleteSessionsForUser removes every session of the user
func (r *SessionRepository) DeleteSessionsForUser(ctx context.Context, userID int64) (int64, error) {
	return r.delete(ctx, squirrel.Eq{"user_id": userID})
}

// DeleteSessionsCreatedBefore removes sessions created strictly before cutoff
func (r *SessionRepository) DeleteSessionsCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.delete(ctx, squirrel.Lt{"created_at": cutoff})
}

func (r *SessionRepository) delete(ctx context.Context, pred squirrel.Sqlizer) (int64, error) {
	sql, args, err := r.sb.Delete("sessions").Where(pred).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete session query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting session: %w", err)
	}
	return tag.RowsAffected(), nil
}
