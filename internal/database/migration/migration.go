package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_stored_documents",
		SQL: `CREATE TABLE IF NOT EXISTS stored_documents (
  id             TEXT        PRIMARY KEY,
  title          TEXT        NOT NULL,
  resource_class TEXT        NOT NULL CHECK (resource_class IN ('image', 'raw')),
  mime_hint      TEXT        NOT NULL DEFAULT '',
  url            TEXT        NOT NULL,
  size           BIGINT      NOT NULL DEFAULT 0 CHECK (size >= 0),
  width          INTEGER     NOT NULL DEFAULT 0,
  height         INTEGER     NOT NULL DEFAULT 0,
  created_at     TIMESTAMPTZ NOT NULL
);`,
	},
	{
		Name: "create_index_stored_documents_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_stored_documents_created_at ON stored_documents (created_at DESC);`,
	},
	{
		Name: "create_index_stored_documents_resource_class",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_stored_documents_resource_class ON stored_documents (resource_class);`,
	},
}

// EnsureMigrated checks if the 'stored_documents' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	query := "SELECT to_regclass('public.stored_documents') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
