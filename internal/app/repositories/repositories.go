package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/skilltrack/internal/app/models"
	"github.com/yigit/skilltrack/internal/db"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByLoginName(ctx context.Context, loginName string) (*models.User, error)
	// LockUser takes a row lock on the user for the rest of the transaction
	LockUser(ctx context.Context, id int64) error
}

// ISessionRepository defines session persistence
type ISessionRepository interface {
	CreateSession(ctx context.Context, session *models.Session) (int64, error)
	GetSession(ctx context.Context, userID int64, magic string) (*models.Session, error)
	DeleteSession(ctx context.Context, userID int64, magic string) (bool, error)
	DeleteSessionsForUser(ctx context.Context, userID int64) (int64, error)
	DeleteSessionsCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ISkillRepository defines skill and trainer qualification persistence
type ISkillRepository interface {
	CreateSkill(ctx context.Context, name string) (int64, error)
	GetSkill(ctx context.Context, id int64) (*models.Skill, error)
	SkillExists(ctx context.Context, id int64) (bool, error)
	ListSkills(ctx context.Context) ([]*models.Skill, error)
	AddTrainer(ctx context.Context, userID, skillID int64) error
	IsTrainerFor(ctx context.Context, userID, skillID int64) (bool, error)
	ListTrainerSkills(ctx context.Context, userID int64) ([]*models.Skill, error)
}

// IClassRepository defines class persistence
type IClassRepository interface {
	CreateClass(ctx context.Context, class *models.Class) (int64, error)
	GetClass(ctx context.Context, id int64) (*models.ClassListing, error)
	// LockClass reads the class row and locks it for the rest of the transaction
	LockClass(ctx context.Context, id int64) (*models.Class, error)
	ListClassesStartingAfter(ctx context.Context, after time.Time) ([]*models.ClassListing, error)
	SetClassCapacity(ctx context.Context, id int64, capacity int) error
}

// IAttendeeRepository defines attendee persistence
type IAttendeeRepository interface {
	CreateAttendee(ctx context.Context, attendee *models.Attendee) (int64, error)
	GetAttendee(ctx context.Context, id int64) (*models.Attendee, error)
	CountEnrolled(ctx context.Context, classID int64) (int, error)
	ListAttendeesByClass(ctx context.Context, classID int64) ([]*models.AttendeeRecord, error)
	ListAttendeesByUser(ctx context.Context, userID int64) ([]*models.AttendeeRecord, error)
	DeleteAttendee(ctx context.Context, id int64) error
	UpdateAttendeeStatus(ctx context.Context, id int64, status models.AttendeeStatus) error
	// CancelEnrolledAttendees moves every Enrolled row of the class to ClassCancelled and
	// returns the ids of the rows it changed
	CancelEnrolledAttendees(ctx context.Context, classID int64) ([]int64, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	Users     IUserRepository
	Sessions  ISessionRepository
	Skills    ISkillRepository
	Classes   IClassRepository
	Attendees IAttendeeRepository
}

// NewRepositories initializes all Postgres repositories over db
func NewRepositories(db DBTX) *Repositories {
	return &Repositories{
		Users:     NewUserRepository(db),
		Sessions:  NewSessionRepository(db),
		Skills:    NewSkillRepository(db),
		Classes:   NewClassRepository(db),
		Attendees: NewAttendeeRepository(db),
	}
}

// TxFn runs against repositories bound to one transaction
type TxFn func(ctx context.Context, repos *Repositories) error

// Store hands out repositories and runs atomic units of work
type Store interface {
	// Repos returns repositories outside any transaction, for single-statement reads
	Repos() *Repositories
	// WithTx runs fn atomically: either every write in fn lands or none does. fn may be
	// replayed, so it must not keep state between calls.
	WithTx(ctx context.Context, fn TxFn) error
}

// PostgresStore is the Store backed by a pgx pool
type PostgresStore struct {
	db    *db.PostgresDB
	repos *Repositories
}

// NewPostgresStore creates a PostgresStore
func NewPostgresStore(pdb *db.PostgresDB) *PostgresStore {
	return &PostgresStore{
		db:    pdb,
		repos: NewRepositories(pdb.Pool),
	}
}

// Repos returns pool-bound repositories
func (s *PostgresStore) Repos() *Repositories {
	return s.repos
}

// WithTx runs fn inside a serializable transaction
func (s *PostgresStore) WithTx(ctx context.Context, fn TxFn) error {
	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, NewRepositories(tx))
	})
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
