package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"souk/common/database/schema"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"
)

const (
	defaultDialTimeout      = 30 * time.Second
	defaultMaxExecutionTime = 60
)

type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Username        string
	Password        string
	Database        string

	// DialTimeout and MaxExecutionTime (seconds) fall back to package
	// defaults when zero.
	DialTimeout      time.Duration
	MaxExecutionTime int
}

// Addr strips any query parameters from a host:port DSN.
func (o Options) Addr() string {
	host, _, _ := strings.Cut(o.DSN, "?")
	return host
}

// ClickHouseOptions translates Options into the driver's configuration.
func (o Options) ClickHouseOptions() *clickhouse.Options {
	dial := o.DialTimeout
	if dial <= 0 {
		dial = defaultDialTimeout
	}
	maxExec := o.MaxExecutionTime
	if maxExec <= 0 {
		maxExec = defaultMaxExecutionTime
	}

	return &clickhouse.Options{
		Protocol: clickhouse.Native,
		Addr:     []string{o.Addr()},
		Settings: clickhouse.Settings{
			"max_execution_time": maxExec,
		},
		Auth: clickhouse.Auth{
			Database: o.Database,
			Username: o.Username,
			Password: o.Password,
		},
		DialTimeout:     dial,
		MaxOpenConns:    o.MaxOpenConns,
		MaxIdleConns:    o.MaxIdleConns,
		ConnMaxLifetime: o.ConnMaxLifetime,
	}
}

type Database struct {
	conn   clickhouse.Conn
	logger *zap.Logger
}

func New(ctx context.Context, opts Options, logger *zap.Logger) (*Database, error) {
	conn, err := clickhouse.Open(opts.ClickHouseOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create clickhouse connection: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping clickhouse at %s: %w", opts.Addr(), err)
	}

	logger.Info("Connected to ClickHouse",
		zap.String("addr", opts.Addr()),
		zap.String("database", opts.Database),
	)

	return &Database{
		conn:   conn,
		logger: logger,
	}, nil
}

// Migrate brings the schema up to date with the given migrations.
func (db *Database) Migrate(ctx context.Context, migrations []schema.Migration) error {
	applied, err := schema.NewMigrator(db.conn, db.logger).Migrate(ctx, migrations)
	if err != nil {
		return fmt.Errorf("migrate after %d applied: %w", applied, err)
	}
	return nil
}

func (db *Database) Close() error {
	return db.conn.Close()
}

func (db *Database) Conn() clickhouse.Conn {
	return db.conn
}
