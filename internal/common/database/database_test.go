package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-agent/internal/common/config"
	"restaurant-agent/internal/common/logger"
)

type flakyPinger struct {
	failures int
	calls    int
}

func (f *flakyPinger) Ping(ctx context.Context) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestWaitFor_RetriesUntilReady(t *testing.T) {
	p := &flakyPinger{failures: 2}
	err := WaitFor(context.Background(), "postgres", p, 5, time.Millisecond, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 3, p.calls)
}

func TestWaitFor_GivesUp(t *testing.T) {
	p := &flakyPinger{failures: 10}
	err := WaitFor(context.Background(), "postgres", p, 3, time.Millisecond, logger.NewTestLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 3, p.calls)
}

func TestSQLClient_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	client := &SQLClient{DB: sqlx.NewDb(db, "postgres"), Driver: config.DriverPostgres}
	mock.ExpectPing()
	mock.ExpectClose()

	assert.NoError(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewSQL_Drivers(t *testing.T) {
	pg, err := NewSQL(config.DatabaseConfig{
		Driver:   config.DriverPostgres,
		Postgres: config.PostgresConfig{Host: "localhost", Port: 5432, Database: "r", User: "u", SSLMode: "disable"},
	})
	require.NoError(t, err)
	assert.Equal(t, "postgres", pg.DB.DriverName())
	_ = pg.Close()

	my, err := NewSQL(config.DatabaseConfig{
		Driver: config.DriverMySQL,
		MySQL:  config.MySQLConfig{Host: "localhost", Port: 3306, Database: "r", User: "u"},
	})
	require.NoError(t, err)
	assert.Equal(t, "mysql", my.DB.DriverName())
	_ = my.Close()

	_, err = NewSQL(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestRedisClient_Ping(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := NewRedis(config.RedisConfig{Address: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	assert.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}
