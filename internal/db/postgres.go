package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/skilltrack/internal/config"
	"github.com/yigit/skilltrack/internal/pkg/dberrors"
	"github.com/yigit/skilltrack/internal/pkg/logger"
)

// PostgresDB database connection structure
type PostgresDB struct {
	Pool *pgxpool.Pool

	txMaxAttempts uint
	txRetryDelay  time.Duration
}

// NewPostgresDB creates a new PostgreSQL connection pool
func NewPostgresDB(cfg *config.Config) (*PostgresDB, error) {
	return Connect(context.Background(), cfg.GetPostgresConnectionString(), Options{
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		TxMaxAttempts:   cfg.Database.TxMaxAttempts,
		TxRetryDelay:    cfg.TxRetryDelay(),
	})
}

// Options tunes the pool and the transaction runner
type Options struct {
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime string
	TxMaxAttempts   int
	TxRetryDelay    time.Duration
}

// Connect opens a pool against connString and verifies it with a ping
func Connect(ctx context.Context, connString string, opts Options) (*PostgresDB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgxpool config: %w", err)
	}

	if opts.MaxConns > 0 {
		poolConfig.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = opts.MinConns
	}
	if opts.ConnMaxLifetime != "" {
		maxLifetime, err := time.ParseDuration(opts.ConnMaxLifetime)
		if err != nil {
			return nil, fmt.Errorf("failed to parse connection max lifetime: %w", err)
		}
		poolConfig.MaxConnLifetime = maxLifetime
	}

	poolConfig.BeforeAcquire = func(ctx context.Context, conn *pgx.Conn) bool {
		if err := conn.Ping(ctx); err != nil {
			logger.Warn().Err(err).Msg("Unhealthy connection detected")
			return false
		}
		return true
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to establish database connection: %w", err)
	}

	attempts := opts.TxMaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &PostgresDB{Pool: pool, txMaxAttempts: uint(attempts), txRetryDelay: opts.TxRetryDelay}, nil
}

// Close closing method
func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// maxTxRetryDelay caps the backoff between transaction attempts
const maxTxRetryDelay = 250 * time.Millisecond

// TransactionFn is a function that executes within a transaction
type TransactionFn func(ctx context.Context, tx pgx.Tx) error

// WithTransaction runs fn inside a SERIALIZABLE transaction. When the transaction loses a
// serialization race or deadlocks, it is rolled back and fn is replayed from the start, so fn
// must not keep state between attempts.
func (db *PostgresDB) WithTransaction(ctx context.Context, fn TransactionFn) error {
	_, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	return retry.Do(func() error {
		err := db.runOnce(ctx, fn)
		if err != nil && !dberrors.IsRetryableTxError(err) {
			return retry.Unrecoverable(err)
		}
		return err
	},
		retry.Context(ctx),
		retry.Attempts(db.txMaxAttempts),
		retry.Delay(db.txRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.MaxDelay(maxTxRetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug().Err(err).Uint("attempt", n+1).Msg("Retrying serialization failure")
		}),
	)
}

func (db *PostgresDB) runOnce(ctx context.Context, fn TransactionFn) (err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			logger.Error().Err(rbErr).Msg("Failed to rollback transaction")
			return errors.Join(err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
