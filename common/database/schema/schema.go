package schema

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"
)

type Migration struct {
	Version     int
	Description string
	Up          string
	Down        string
}

type Migrator struct {
	conn   clickhouse.Conn
	logger *zap.Logger
}

func NewMigrator(conn clickhouse.Conn, logger *zap.Logger) *Migrator {
	return &Migrator{
		conn:   conn,
		logger: logger,
	}
}

// Pending returns the migrations not yet applied, in version order.
func Pending(all []Migration, applied map[int]time.Time) []Migration {
	var pending []Migration
	for _, m := range all {
		if _, ok := applied[m.Version]; !ok {
			pending = append(pending, m)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Version < pending[j].Version
	})
	return pending
}

// Validate rejects migration lists with non-positive or duplicate versions.
func Validate(all []Migration) error {
	seen := make(map[int]string, len(all))
	for _, m := range all {
		if m.Version <= 0 {
			return fmt.Errorf("migration %q has invalid version %d", m.Description, m.Version)
		}
		if prev, ok := seen[m.Version]; ok {
			return fmt.Errorf("migrations %q and %q share version %d", prev, m.Description, m.Version)
		}
		if m.Up == "" {
			return fmt.Errorf("migration %d has no up statement", m.Version)
		}
		seen[m.Version] = m.Description
	}
	return nil
}

// Migrate applies every pending migration and returns how many ran.
func (m *Migrator) Migrate(ctx context.Context, all []Migration) (int, error) {
	if err := Validate(all); err != nil {
		return 0, err
	}
	if err := m.CreateMigrationsTable(ctx); err != nil {
		return 0, err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return 0, err
	}

	pending := Pending(all, applied)
	for i, migration := range pending {
		m.logger.Info("Applying migration",
			zap.Int("version", migration.Version),
			zap.String("description", migration.Description),
		)
		if err := m.ApplyMigration(ctx, migration); err != nil {
			return i, err
		}
	}

	m.logger.Info("Migrations up to date",
		zap.Int("applied", len(pending)),
		zap.Int("total", len(all)),
	)
	return len(pending), nil
}

func (m *Migrator) CreateMigrationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version Int32,
			description String,
			applied_at DateTime,
			PRIMARY KEY (version)
		) ENGINE = MergeTree()
	`

	if err := m.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	return nil
}

func (m *Migrator) GetAppliedMigrations(ctx context.Context) (map[int]time.Time, error) {
	query := "SELECT version, applied_at FROM migrations ORDER BY version"

	rows, err := m.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int32
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[int(version)] = appliedAt
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	return applied, nil
}

func (m *Migrator) ApplyMigration(ctx context.Context, migration Migration) error {
	if err := m.conn.Exec(ctx, migration.Up); err != nil {
		return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
	}

	if err := m.conn.Exec(ctx, `
		INSERT INTO migrations (version, description, applied_at)
		VALUES (?, ?, now())
	`, int32(migration.Version), migration.Description); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
	}

	return nil
}

func (m *Migrator) RollbackMigration(ctx context.Context, migration Migration) error {
	if err := m.conn.Exec(ctx, migration.Down); err != nil {
		return fmt.Errorf("failed to rollback migration %d: %w", migration.Version, err)
	}

	if err := m.conn.Exec(ctx, "ALTER TABLE migrations DELETE WHERE version = ?", int32(migration.Version)); err != nil {
		return fmt.Errorf("failed to remove migration record %d: %w", migration.Version, err)
	}

	return nil
}
