package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_scenes",
		SQL: `CREATE TABLE IF NOT EXISTS scenes (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  filename      TEXT        NOT NULL,
  storage_path  TEXT        NOT NULL UNIQUE,
  archive_path  TEXT        NOT NULL DEFAULT '',
  size          BIGINT      NOT NULL CHECK (size > 0),
  content_type  TEXT        NOT NULL,
  sha256        CHAR(64)    NOT NULL,
  acquired_date CHAR(8)     NOT NULL,
  sensor        TEXT        NOT NULL,
  tile_id       TEXT        NOT NULL,
  cloud_cover   DOUBLE PRECISION NOT NULL CHECK (cloud_cover >= 0 AND cloud_cover <= 100),
  confidence    TEXT        NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_provenance",
		SQL: `CREATE TABLE IF NOT EXISTS provenance (
  scene_id         UUID        PRIMARY KEY REFERENCES scenes (id) ON DELETE CASCADE,
  source_url       TEXT        NOT NULL,
  product_id       TEXT        NOT NULL,
  acquisition_time TIMESTAMPTZ NOT NULL,
  processing_level TEXT        NOT NULL,
  bbox_min_x       DOUBLE PRECISION NOT NULL,
  bbox_min_y       DOUBLE PRECISION NOT NULL,
  bbox_max_x       DOUBLE PRECISION NOT NULL,
  bbox_max_y       DOUBLE PRECISION NOT NULL,
  recorded_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_jobs",
		SQL: `CREATE TABLE IF NOT EXISTS jobs (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  status        TEXT        NOT NULL,
  sensor        TEXT        NOT NULL,
  window_start  TIMESTAMPTZ NOT NULL,
  window_end    TIMESTAMPTZ NOT NULL,
  bbox_min_x    DOUBLE PRECISION NOT NULL,
  bbox_min_y    DOUBLE PRECISION NOT NULL,
  bbox_max_x    DOUBLE PRECISION NOT NULL,
  bbox_max_y    DOUBLE PRECISION NOT NULL,
  recurrence    TEXT        NOT NULL DEFAULT '',
  parent_job_id UUID        NULL REFERENCES jobs (id),
  tag           TEXT        NOT NULL DEFAULT '',
  error         TEXT        NOT NULL DEFAULT '',
  last_run      TIMESTAMPTZ NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_artifacts",
		SQL: `CREATE TABLE IF NOT EXISTS artifacts (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  scene_id     UUID        NOT NULL REFERENCES scenes (id) ON DELETE CASCADE,
  job_id       UUID        NULL REFERENCES jobs (id),
  kind         TEXT        NOT NULL,
  index_name   TEXT        NOT NULL,
  filename     TEXT        NOT NULL,
  storage_path TEXT        NOT NULL UNIQUE,
  size         BIGINT      NOT NULL CHECK (size > 0),
  sha256       CHAR(64)    NOT NULL,
  stat_min     DOUBLE PRECISION NOT NULL,
  stat_mean    DOUBLE PRECISION NOT NULL,
  stat_max     DOUBLE PRECISION NOT NULL,
  alert_level  TEXT        NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_evidence_packs",
		SQL: `CREATE TABLE IF NOT EXISTS evidence_packs (
  id             UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  job_id         UUID        NOT NULL REFERENCES jobs (id),
  filename       TEXT        NOT NULL,
  storage_path   TEXT        NOT NULL UNIQUE,
  size           BIGINT      NOT NULL CHECK (size > 0),
  sha256         CHAR(64)    NOT NULL,
  artifact_count INT         NOT NULL CHECK (artifact_count > 0),
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_scenes_tile_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_scenes_tile_date ON scenes (tile_id, acquired_date);`,
	},
	{
		Name: "create_index_scenes_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_scenes_created_at ON scenes (created_at);`,
	},
	{
		Name: "create_index_jobs_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs (status);`,
	},
	{
		Name: "create_index_jobs_recurrence",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_jobs_recurrence ON jobs (recurrence) WHERE recurrence <> '';`,
	},
	{
		Name: "create_index_artifacts_scene",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_artifacts_scene ON artifacts (scene_id);`,
	},
	{
		Name: "create_index_artifacts_job",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_artifacts_job ON artifacts (job_id);`,
	},
	{
		Name: "create_index_evidence_packs_job",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_evidence_packs_job ON evidence_packs (job_id);`,
	},
}

// EnsureMigrated checks if the 'scenes' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.scenes') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
