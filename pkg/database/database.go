package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/petspot/petspot-backend/pkg/config"
	"github.com/petspot/petspot-backend/pkg/logger"
)

const (
	connectAttempts = 5
	connectBackoff  = time.Second
	healthTimeout   = time.Second
)

// Pool sizes the connection pool. Zero values keep the driver defaults.
type Pool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DB is a sqlx handle with migrations, transactions and a health probe
type DB struct {
	*sqlx.DB
	logger *logger.Logger
}

// New connects using the service database configuration
func New(cfg *config.DatabaseConfig, log *logger.Logger) (*DB, error) {
	pool := Pool{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}
	return Open(context.Background(), cfg.DSN(), pool, log)
}

// Open connects to dsn, retrying while the server is still starting up
func Open(ctx context.Context, dsn string, pool Pool, log *logger.Logger) (*DB, error) {
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
		if err == nil {
			applyPool(db, pool)
			return Wrap(db, log), nil
		}
		lastErr = err

		log.Warn().Err(err).Int("attempt", attempt).Msg("database not reachable yet")
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to connect to database: %w", ctx.Err())
		case <-time.After(connectBackoff):
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", connectAttempts, lastErr)
}

func applyPool(db *sqlx.DB, pool Pool) {
	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
}

// Wrap adapts an existing sqlx handle, e.g. one backed by sqlmock in tests
func Wrap(db *sqlx.DB, log *logger.Logger) *DB {
	return &DB{DB: db, logger: log}
}

// Health pings the server and reports pool usage
func (db *DB) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return map[string]string{"status": "down", "error": err.Error()}
	}

	stats := db.Stats()
	return map[string]string{
		"status":           "up",
		"open_connections": strconv.Itoa(stats.OpenConnections),
		"in_use":           strconv.Itoa(stats.InUse),
	}
}

// Migrate applies the given DDL statements in one transaction.
// Statements must be idempotent; they run on every start.
func (db *DB) Migrate(ctx context.Context, statements ...string) error {
	err := db.Transaction(ctx, func(tx *sqlx.Tx) error {
		for i, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migration statement %d failed: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	db.logger.Debug().Int("statements", len(statements)).Msg("schema up to date")
	return nil
}

// Transaction runs fn in a transaction, committing only if fn returns nil.
// A panic inside fn rolls back before propagating.
func (db *DB) Transaction(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	committed = true
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
