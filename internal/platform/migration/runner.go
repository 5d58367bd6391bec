// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration applies the SQL files under migrations/ at startup,
// before the server accepts traffic. A dirty schema version stops startup.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/taibuivan/agentdesk/internal/platform/postgres"
)

// RunUp applies every pending up migration from migrationsPath using the
// same connection settings as the pool.
func RunUp(database postgres.Config, migrationsPath string, logger *slog.Logger) error {
	migrator, err := migrate.New(
		"file://"+migrationsPath,
		toPgx5URL(postgres.WithSSLMode(database.URL, database.SSLMode)),
	)
	if err != nil {
		return fmt.Errorf("migration: open: %w", err)
	}
	migrator.Log = slogAdapter{logger: logger}
	defer func() {
		sourceErr, databaseErr := migrator.Close()
		if closeErr := errors.Join(sourceErr, databaseErr); closeErr != nil {
			logger.Warn("migration_close_failed", slog.Any("error", closeErr))
		}
	}()

	from, err := schemaVersion(migrator)
	if err != nil {
		return err
	}

	switch err := migrator.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("schema_up_to_date", slog.Uint64("version", uint64(from)))
		return nil
	case err != nil:
		return fmt.Errorf("migration: apply from version %d: %w", from, err)
	}

	to, err := schemaVersion(migrator)
	if err != nil {
		return err
	}
	logger.Info("schema_migrated", slog.Uint64("from", uint64(from)), slog.Uint64("to", uint64(to)))
	return nil
}

// schemaVersion returns 0 for an empty database and refuses a dirty one.
func schemaVersion(migrator *migrate.Migrate) (uint, error) {
	version, dirty, err := migrator.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("migration: read version: %w", err)
	case dirty:
		return 0, fmt.Errorf("migration: schema version %d is dirty, fix it by hand before restarting", version)
	}
	return version, nil
}

// toPgx5URL switches postgres:// and postgresql:// to the pgx5:// scheme
// registered by the migrate pgx/v5 driver.
func toPgx5URL(dsn string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if rest, found := strings.CutPrefix(dsn, prefix); found {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// slogAdapter routes migrate's progress lines to debug logs.
type slogAdapter struct {
	logger *slog.Logger
}

func (adapter slogAdapter) Printf(format string, args ...any) {
	adapter.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (adapter slogAdapter) Verbose() bool { return false }
