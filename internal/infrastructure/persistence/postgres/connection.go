// Package postgres implements the PostgreSQL persistence layer for staff records.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/staffbook/staffbook/pkg/logger"
	"github.com/staffbook/staffbook/pkg/retry"
)

var (
	ErrConnectionClosed = errors.New("postgres: connection pool is closed")
	ErrMigrationFailed  = errors.New("postgres: migration failed")
	ErrTxFailed         = errors.New("postgres: transaction failed")
)

// ══════════════════════════════════════════════════════════════════════════════
// POOL
// ══════════════════════════════════════════════════════════════════════════════

// Config describes the pool. Zero durations fall back to the pool defaults
// below; a zero MaxConns keeps whatever the URL or pgx decides.
type Config struct {
	URL             string
	MaxConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

const (
	defaultConnLifetime = time.Hour
	defaultConnIdleTime = 30 * time.Minute
	healthCheckPeriod   = time.Minute
)

func (c Config) poolConfig() (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(c.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse database URL: %w", err)
	}
	if c.MaxConns > 0 {
		pc.MaxConns = c.MaxConns
	}
	pc.MaxConnLifetime = orDefault(c.MaxConnLifetime, defaultConnLifetime)
	pc.MaxConnIdleTime = orDefault(c.MaxConnIdleTime, defaultConnIdleTime)
	pc.HealthCheckPeriod = healthCheckPeriod
	return pc, nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}

// Connection owns the pool. After Close every call fails with
// ErrConnectionClosed.
type Connection struct {
	mu     sync.RWMutex
	pool   *pgxpool.Pool
	closed bool
}

// Connect opens the pool and pings it, retrying while the server is
// unreachable. A malformed URL fails at once.
func Connect(ctx context.Context, cfg Config, log *logger.Logger) (*Connection, error) {
	if log == nil {
		log = logger.Nop()
	}
	pc, err := cfg.poolConfig()
	if err != nil {
		return nil, err
	}

	policy := retry.Database().Notify(func(attempt int, err error, delay time.Duration) {
		log.Warn("database not reachable, retrying",
			logger.Int("attempt", attempt),
			logger.Duration("delay", delay),
			logger.Err(err),
		)
	})
	pool, err := retry.Value(ctx, policy, func(ctx context.Context) (*pgxpool.Pool, error) {
		return openPool(ctx, pc)
	})
	if err != nil {
		return nil, err
	}
	return &Connection{pool: pool}, nil
}

func openPool(ctx context.Context, pc *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return pool, nil
}

// acquire read-locks the connection and returns the pool with the matching
// release func, or ErrConnectionClosed.
func (c *Connection) acquire() (*pgxpool.Pool, func(), error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil, nil, ErrConnectionClosed
	}
	return c.pool, c.mu.RUnlock, nil
}

// Close is idempotent.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		c.pool.Close()
	}
}

func (c *Connection) Ping(ctx context.Context) error {
	pool, release, err := c.acquire()
	if err != nil {
		return err
	}
	defer release()
	return pool.Ping(ctx)
}

// ══════════════════════════════════════════════════════════════════════════════
// STATEMENTS
// ══════════════════════════════════════════════════════════════════════════════

// WithTx runs fn in a read-committed transaction, committing when fn returns
// nil. A panic in fn rolls back and is re-raised.
func (c *Connection) WithTx(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	pool, release, err := c.acquire()
	if err != nil {
		return err
	}
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	release()
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrTxFailed, err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && err != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrTxFailed, err)
	}
	committed = true
	return nil
}

func (c *Connection) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	pool, release, err := c.acquire()
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	defer release()
	return pool.Exec(ctx, sql, args...)
}

func (c *Connection) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	pool, release, err := c.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	return pool.Query(ctx, sql, args...)
}

// QueryRow defers a closed-pool failure to Scan.
func (c *Connection) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	pool, release, err := c.acquire()
	if err != nil {
		return errRow{err}
	}
	defer release()
	return pool.QueryRow(ctx, sql, args...)
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

// IsNoRows reports a QueryRow that matched nothing.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
