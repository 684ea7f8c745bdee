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

// ClassRepository handles class database operations
type ClassRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewClassRepository creates a new ClassRepository
func NewClassRepository(db DBTX) *ClassRepository {
	return &ClassRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// CreateClass inserts a class and returns its id
func (r *ClassRepository) CreateClass(ctx context.Context, class *models.Class) (int64, error) {
	sql, args, err := r.sb.Insert("classes").
		Columns("trainer_id", "skill_id", "start_at", "capacity", "note").
		Values(class.TrainerID, class.SkillID, class.StartAt, class.Capacity, class.Note).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create class query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Int64("trainerID", class.TrainerID).Int64("skillID", class.SkillID).Msg("Error creating class")
		return 0, fmt.Errorf("error creating class: %w", err)
	}
	return id, nil
}

func (r *ClassRepository) listingQuery() squirrel.SelectBuilder {
	return r.sb.Select(
		"c.id", "c.trainer_id", "c.skill_id", "c.start_at", "c.capacity", "c.note",
		"s.name", "u.full_name",
		"(SELECT COUNT(*) FROM attendees a WHERE a.class_id = c.id AND a.status = 0)",
	).
		From("classes c").
		Join("skills s ON s.id = c.skill_id").
		Join("users u ON u.id = c.trainer_id")
}

func scanListing(row pgx.Row) (*models.ClassListing, error) {
	l := &models.ClassListing{}
	err := row.Scan(&l.ID, &l.TrainerID, &l.SkillID, &l.StartAt, &l.Capacity, &l.Note,
		&l.SkillName, &l.TrainerName, &l.Enrolled)
	return l, err
}

// GetClass retrieves a class with its skill name, trainer name and enrolled count
func (r *ClassRepository) GetClass(ctx context.Context, id int64) (*models.ClassListing, error) {
	sql, args, err := r.listingQuery().Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get class query: %w", err)
	}

	l, err := scanListing(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrClassNotFound
		}
		return nil, fmt.Errorf("error getting class: %w", err)
	}
	return l, nil
}

// LockClass reads a class row with SELECT ... FOR UPDATE
func (r *ClassRepository) LockClass(ctx context.Context, id int64) (*models.Class, error) {
	sql, args, err := r.sb.Select("id", "trainer_id", "skill_id", "start_at", "capacity", "note").
		From("classes").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build lock class query: %w", err)
	}

	c := &models.Class{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.TrainerID, &c.SkillID, &c.StartAt, &c.Capacity, &c.Note)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrClassNotFound
		}
		return nil, fmt.Errorf("error locking class: %w", err)
	}
	return c, nil
}

// ListClassesStartingAfter returns classes starting strictly after the given time, earliest first
func (r *ClassRepository) ListClassesStartingAfter(ctx context.Context, after time.Time) ([]*models.ClassListing, error) {
	sql, args, err := r.listingQuery().
		Where(squirrel.Gt{"c.start_at": after}).
		OrderBy("c.start_at ASC", "c.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list classes query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing classes: %w", err)
	}
	defer rows.Close()

	var out []*models.ClassListing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning class: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// SetClassCapacity updates the capacity of a class
func (r *ClassRepository) SetClassCapacity(ctx context.Context, id int64, capacity int) error {
	sql, args, err := r.sb.Update("classes").
		Set("capacity", capacity).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update class query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating class capacity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrClassNotFound
	}
	return nil
}
