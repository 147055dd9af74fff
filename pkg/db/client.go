// Package db opens the shared GORM connection: Postgres in deployed
// environments, sqlite for local runs and tests.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/shoefinderz-backend/pkg/config"
	"github.com/angelmondragon/shoefinderz-backend/pkg/logger"
)

// Dialect names double as goose dialects.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

type Client struct {
	conn    *gorm.DB
	dialect string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	UseSQLite bool
}

func New(ctx context.Context, cfg config.DBConfig, opts Options, logg *logger.Logger) (*Client, error) {
	dialector, dialect, err := dialectorFor(cfg, opts)
	if err != nil {
		return nil, err
	}
	conn, err := gorm.Open(dialector, gormConfig(logg, cfg))
	if err != nil {
		return nil, fmt.Errorf("opening %s connection: %w", dialect, err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}
	tunePool(sqlDB, cfg, dialect)

	if logg != nil {
		logg.Info(logg.WithField(ctx, "dialect", dialect), "database connection established")
	}
	return &Client{conn: conn, dialect: dialect}, nil
}

func dialectorFor(cfg config.DBConfig, opts Options) (gorm.Dialector, string, error) {
	if opts.UseSQLite {
		if cfg.SQLitePath == "" {
			return nil, "", errors.New("sqlite path is required")
		}
		return sqlite.Open("file:" + cfg.SQLitePath + "?_foreign_keys=on"), DialectSQLite, nil
	}
	if cfg.DSN == "" {
		return nil, "", errors.New("database DSN is required")
	}
	return postgres.New(postgres.Config{DSN: cfg.DSN, PreferSimpleProtocol: true}), DialectPostgres, nil
}

// tunePool pins sqlite to one connection; it has a single writer.
func tunePool(sqlDB *sql.DB, cfg config.DBConfig, dialect string) {
	if dialect == DialectSQLite {
		sqlDB.SetMaxOpenConns(1)
		return
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
}

func gormConfig(logg *logger.Logger, cfg config.DBConfig) *gorm.Config {
	return &gorm.Config{
		Logger:                 newQueryLogger(logg, cfg.SlowQuery),
		SkipDefaultTransaction: true,
	}
}

// Wrap adopts an existing connection.
func Wrap(conn *gorm.DB, dialect string) *Client {
	return &Client{conn: conn, dialect: dialect}
}

// OpenSQLite opens dsn verbatim and does not log queries.
func OpenSQLite(dsn string) (*Client, error) {
	conn, err := gorm.Open(sqlite.Open(dsn), gormConfig(nil, config.DBConfig{}))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	return Wrap(conn, DialectSQLite), nil
}

func (c *Client) DB() *gorm.DB { return c.conn }

func (c *Client) Dialect() string { return c.dialect }

// SQL returns the pooled database/sql handle, as goose needs it.
func (c *Client) SQL() (*sql.DB, error) { return c.conn.DB() }

func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx commits when fn returns nil and rolls back on an error or panic.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return c.conn.WithContext(ctx).Transaction(fn)
}
