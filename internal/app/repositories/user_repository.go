package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/pkg/apperrors"
	"github.com/yigit/skilltrack/internal/pkg/dberrors"
	"github.com/yigit/skilltrack/internal/pkg/logger"
)

// UserRepository handles user database operations
type UserRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{
		db: db,
		sb: statementBuilder(),
	}
}

var userColumns = []string{"id", "full_name", "login_name", "password_hash", "created_at"}

// CreateUser inserts a user and returns its id
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	sql, args, err := r.sb.Insert("users").
		Columns("full_name", "login_name", "password_hash", "created_at").
		Values(user.FullName, user.LoginName, user.PasswordHash, user.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create user query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_login_name_key") {
			return 0, apperrors.ErrLoginNameExists
		}
		logger.Error().Err(err).Str("loginName", user.LoginName).Msg("Error creating user")
		return 0, fmt.Errorf("error creating user: %w", err)
	}
	return id, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, r.sb.Select(userColumns...).From("users").Where(squirrel.Eq{"id": id}))
}

// GetUserByLoginName retrieves a user by login name
func (r *UserRepository) GetUserByLoginName(ctx context.Context, loginName string) (*models.User, error) {
	return r.getOne(ctx, r.sb.Select(userColumns...).From("users").Where(squirrel.Eq{"login_name": loginName}))
}

// LockUser takes the user row for the rest of the transaction. The row is rewritten in place, so a
// transaction that waited on it fails with a serialization error once the holder commits and is
// replayed on a fresh snapshot.
func (r *UserRepository) LockUser(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Update("users").
		Set("id", squirrel.Expr("id")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build lock user query: %w", err)
	}

	var got int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&got); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("error locking user: %w", err)
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, q squirrel.SelectBuilder) (*models.User, error) {
	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user := &models.User{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&user.ID, &user.FullName, &user.LoginName, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return user, nil
}
