package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/pkg/apperrors"
	"github.com/yigit/skilltrack/internal/pkg/logger"
)

// AttendeeRepository handles attendee database operations
type AttendeeRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewAttendeeRepository creates a new AttendeeRepository
func NewAttendeeRepository(db DBTX) *AttendeeRepository {
	return &AttendeeRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// CreateAttendee inserts an attendee row and returns its id
func (r *AttendeeRepository) CreateAttendee(ctx context.Context, attendee *models.Attendee) (int64, error) {
	sql, args, err := r.sb.Insert("attendees").
		Columns("user_id", "class_id", "status").
		Values(attendee.UserID, attendee.ClassID, int16(attendee.Status)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create attendee query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Int64("userID", attendee.UserID).Int64("classID", attendee.ClassID).Msg("Error creating attendee")
		return 0, fmt.Errorf("error creating attendee: %w", err)
	}
	return id, nil
}

// GetAttendee retrieves an attendee row by ID
func (r *AttendeeRepository) GetAttendee(ctx context.Context, id int64) (*models.Attendee, error) {
	sql, args, err := r.sb.Select("id", "user_id", "class_id", "status").
		From("attendees").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get attendee query: %w", err)
	}

	a := &models.Attendee{}
	var status int16
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.UserID, &a.ClassID, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAttendeeNotFound
		}
		return nil, fmt.Errorf("error getting attendee: %w", err)
	}
	a.Status = models.AttendeeStatus(status)
	return a, nil
}

// CountEnrolled counts the Enrolled rows of a class
func (r *AttendeeRepository) CountEnrolled(ctx context.Context, classID int64) (int, error) {
	sql, args, err := r.sb.Select("COUNT(*)").
		From("attendees").
		Where(squirrel.Eq{"class_id": classID, "status": int16(models.StatusEnrolled)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count attendees query: %w", err)
	}

	var n int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting attendees: %w", err)
	}
	return n, nil
}

func (r *AttendeeRepository) recordQuery() squirrel.SelectBuilder {
	return r.sb.Select(
		"a.id", "a.user_id", "a.class_id", "a.status",
		"u.full_name", "c.skill_id", "s.name", "c.trainer_id", "t.full_name", "c.start_at",
	).
		From("attendees a").
		Join("users u ON u.id = a.user_id").
		Join("classes c ON c.id = a.class_id").
		Join("skills s ON s.id = c.skill_id").
		Join("users t ON t.id = c.trainer_id")
}

func (r *AttendeeRepository) listRecords(ctx context.Context, q squirrel.SelectBuilder) ([]*models.AttendeeRecord, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list attendees query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing attendees: %w", err)
	}
	defer rows.Close()

	var out []*models.AttendeeRecord
	for rows.Next() {
		rec := &models.AttendeeRecord{}
		var status int16
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ClassID, &status,
			&rec.UserName, &rec.SkillID, &rec.SkillName, &rec.TrainerID, &rec.TrainerName, &rec.ClassStartAt); err != nil {
			return nil, fmt.Errorf("error scanning attendee: %w", err)
		}
		rec.Status = models.AttendeeStatus(status)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListAttendeesByClass returns every attendee row of a class in id order
func (r *AttendeeRepository) ListAttendeesByClass(ctx context.Context, classID int64) ([]*models.AttendeeRecord, error) {
	return r.listRecords(ctx, r.recordQuery().Where(squirrel.Eq{"a.class_id": classID}).OrderBy("a.id"))
}

// ListAttendeesByUser returns every attendee row of a user, oldest class first
func (r *AttendeeRepository) ListAttendeesByUser(ctx context.Context, userID int64) ([]*models.AttendeeRecord, error) {
	return r.listRecords(ctx, r.recordQuery().Where(squirrel.Eq{"a.user_id": userID}).OrderBy("c.start_at", "a.id"))
}

// DeleteAttendee removes an attendee row
func (r *AttendeeRepository) DeleteAttendee(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("attendees").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete attendee query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting attendee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAttendeeNotFound
	}
	return nil
}

// UpdateAttendeeStatus sets the status of an attendee row
func (r *AttendeeRepository) UpdateAttendeeStatus(ctx context.Context, id int64, status models.AttendeeStatus) error {
	sql, args, err := r.sb.Update("attendees").
		Set("status", int16(status)).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update attendee query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating attendee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAttendeeNotFound
	}
	return nil
}

// CancelEnrolledAttendees moves the Enrolled rows of a class to ClassCancelled
func (r *AttendeeRepository) CancelEnrolledAttendees(ctx context.Context, classID int64) ([]int64, error) {
	sql, args, err := r.sb.Update("attendees").
		Set("status", int16(models.StatusClassCancelled)).
		Where(squirrel.Eq{"class_id": classID, "status": int16(models.StatusEnrolled)}).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build cancel attendees query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error cancelling attendees: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning cancelled attendee: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
