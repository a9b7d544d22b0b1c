// internal/common/database/sql.go
package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"restaurant-agent/internal/common/config"
)

// SQLClient wraps the sqlx connection to the restaurant database.
type SQLClient struct {
	DB     *sqlx.DB
	Driver string
}

// NewSQL opens (but does not ping) a postgres or mysql pool depending on cfg.Driver.
func NewSQL(cfg config.DatabaseConfig) (*SQLClient, error) {
	var dsn string
	var maxOpen, maxIdle int

	switch cfg.Driver {
	case config.DriverPostgres, "":
		dsn = cfg.Postgres.GetDSN()
		maxOpen, maxIdle = cfg.Postgres.MaxConnections, cfg.Postgres.MaxIdle
		cfg.Driver = config.DriverPostgres
	case config.DriverMySQL:
		dsn = cfg.MySQL.GetDSN()
		maxOpen, maxIdle = cfg.MySQL.MaxConnections, cfg.MySQL.MaxIdle
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.Driver, err)
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &SQLClient{DB: db, Driver: cfg.Driver}, nil
}

// Ping tests the database connection
func (c *SQLClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *SQLClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
