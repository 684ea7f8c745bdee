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
)

// SkillRepository handles skill and trainer qualification database operations
type SkillRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewSkillRepository creates a new SkillRepository
func NewSkillRepository(db DBTX) *SkillRepository {
	return &SkillRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// CreateSkill inserts a skill and returns its id
func (r *SkillRepository) CreateSkill(ctx context.Context, name string) (int64, error) {
	sql, args, err := r.sb.Insert("skills").
		Columns("name").
		Values(name).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create skill query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "skills_name_key") {
			return 0, apperrors.ErrSkillExists
		}
		return 0, fmt.Errorf("error creating skill: %w", err)
	}
	return id, nil
}

// GetSkill retrieves a skill by ID
func (r *SkillRepository) GetSkill(ctx context.Context, id int64) (*models.Skill, error) {
	sql, args, err := r.sb.Select("id", "name").From("skills").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get skill query: %w", err)
	}

	skill := &models.Skill{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&skill.ID, &skill.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSkillNotFound
		}
		return nil, fmt.Errorf("error getting skill: %w", err)
	}
	return skill, nil
}

// SkillExists reports whether the skill id refers to an existing skill
func (r *SkillRepository) SkillExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, r.sb.Select("1").From("skills").Where(squirrel.Eq{"id": id}))
}

// ListSkills returns every skill ordered by id
func (r *SkillRepository) ListSkills(ctx context.Context) ([]*models.Skill, error) {
	return r.list(ctx, r.sb.Select("id", "name").From("skills").OrderBy("id"))
}

// AddTrainer records a trainer qualification
func (r *SkillRepository) AddTrainer(ctx context.Context, userID, skillID int64) error {
	sql, args, err := r.sb.Insert("trainers").
		Columns("user_id", "skill_id").
		Values(userID, skillID).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build add trainer query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "trainers_pkey") {
			return apperrors.ErrAlreadyQualified
		}
		return fmt.Errorf("error adding trainer: %w", err)
	}
	return nil
}

// IsTrainerFor reports whether the user holds a qualification for the skill
func (r *SkillRepository) IsTrainerFor(ctx context.Context, userID, skillID int64) (bool, error) {
	return r.exists(ctx, r.sb.Select("1").From("trainers").
		Where(squirrel.Eq{"user_id": userID, "skill_id": skillID}))
}

// ListTrainerSkills returns the skills the user is qualified to teach
func (r *SkillRepository) ListTrainerSkills(ctx context.Context, userID int64) ([]*models.Skill, error) {
	return r.list(ctx, r.sb.Select("s.id", "s.name").
		From("trainers t").
		Join("skills s ON s.id = t.skill_id").
		Where(squirrel.Eq{"t.user_id": userID}).
		OrderBy("s.id"))
}

func (r *SkillRepository) exists(ctx context.Context, q squirrel.SelectBuilder) (bool, error) {
	inner, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, "SELECT EXISTS("+inner+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking existence: %w", err)
	}
	return exists, nil
}

func (r *SkillRepository) list(ctx context.Context, q squirrel.SelectBuilder) ([]*models.Skill, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list skills query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing skills: %w", err)
	}
	defer rows.Close()

	var skills []*models.Skill
	for rows.Next() {
		s := &models.Skill{}
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("error scanning skill: %w", err)
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}
