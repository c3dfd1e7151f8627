package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/book-of-knowledge/internal/common"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver          string
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// FromAppConfig maps the application database section onto a store Config.
func FromAppConfig(c common.DatabaseConfig) Config {
	return Config{
		Driver:          c.Driver,
		DSN:             c.DSN,
		MaxConns:        c.MaxConns,
		MinConns:        c.MinConns,
		MaxConnLifetime: c.MaxConnLifetime,
		MaxConnIdleTime: c.MaxConnIdleTime,
		DialTimeout:     c.DialTimeout,
	}
}

// DB is a database/sql handle plus the dialect it speaks.
type DB struct {
	sql     *sql.DB
	pool    *pgxpool.Pool
	dialect string
	logger  *slog.Logger
}

// Open connects using the configured driver. Postgres goes through a pgx pool
// wrapped as *sql.DB; SQLite uses a single connection so :memory: stays shared.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	logger.Info("connecting to database", "driver", cfg.Driver)

	switch cfg.Driver {
	case DriverSQLite:
		db, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			return nil, common.WrapError(common.ErrDatabase, err.Error())
		}
		db.SetMaxOpenConns(1)
		if err := pingWithTimeout(ctx, db, cfg.DialTimeout); err != nil {
			_ = db.Close()
			logger.Error("failed to connect to database", "error", err)
			return nil, common.WrapError(common.ErrDatabase, err.Error())
		}
		logger.Info("successfully connected to database")
		return &DB{sql: db, dialect: DriverSQLite, logger: logger}, nil

	case DriverPostgres:
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			return nil, common.WrapError(common.ErrDatabase, err.Error())
		}
		if cfg.MaxConns > 0 {
			pc.MaxConns = cfg.MaxConns
		}
		pc.MinConns = cfg.MinConns
		pc.MaxConnLifetime = cfg.MaxConnLifetime
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
		pc.ConnConfig.RuntimeParams["application_name"] = "book-of-knowledge"

		dialCtx := ctx
		if cfg.DialTimeout > 0 {
			var cancel context.CancelFunc
			dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
			defer cancel()
		}
		pool, err := pgxpool.NewWithConfig(dialCtx, pc)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			return nil, common.WrapError(common.ErrDatabase, err.Error())
		}
		logger.Info("successfully connected to database")
		return &DB{sql: stdlib.OpenDBFromPool(pool), pool: pool, dialect: DriverPostgres, logger: logger}, nil
	}
	return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unsupported database driver %q", cfg.Driver), common.ErrInvalidInput)
}

// Close closes the database connections gracefully
func (db *DB) Close() {
	db.logger.Info("closing database connections")
	if err := db.sql.Close(); err != nil {
		db.logger.Error("failed to close database", "error", err)
	}
	if db.pool != nil {
		db.pool.Close()
	}
	db.logger.Info("database connections closed")
}

// HealthCheck pings the database, bounded by timeout when positive.
func (db *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	db.logger.Debug("pinging database")
	if db.pool != nil {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return db.pool.Ping(ctx)
	}
	return pingWithTimeout(ctx, db.sql, timeout)
}

// Dialect reports the driver name in use.
func (db *DB) Dialect() string { return db.dialect }

// SQL exposes the underlying handle.
func (db *DB) SQL() *sql.DB { return db.sql }

// rebind rewrites ? placeholders to $n for postgres.
func (db *DB) rebind(q string) string {
	if db.dialect != DriverPostgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

func pingWithTimeout(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}

// timestamps are stored as fixed-width UTC text so they sort lexically.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

func formatTS(t time.Time) string { return t.UTC().Format(tsLayout) }

func parseTS(s string) (time.Time, error) { return time.Parse(tsLayout, s) }

func nullTS(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTS(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
