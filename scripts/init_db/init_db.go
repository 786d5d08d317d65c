package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		dbGetEnv("DB_USER", "intentguard"),
		dbGetEnv("DB_PASSWORD", "intentguard"),
		dbGetEnv("DB_HOST", "localhost"),
		dbGetEnv("DB_PORT", "5432"),
		dbGetEnv("DB_NAME", "intentguard"),
	)

	ctx := context.Background()

	fmt.Println("Connecting to TimescaleDB...")
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		log.Fatalf("Connection failed: %v\n\nMake sure TimescaleDB is running:\n  docker-compose up -d timescaledb", err)
	}
	defer conn.Close(ctx)
	fmt.Println("✓ Connected")

	step1_extensions(ctx, conn)
	step2_sensor_table(ctx, conn)
	step3_alerts_table(ctx, conn)
	step4_trains_table(ctx, conn)
	step5_indexes(ctx, conn)
	step6_verify(ctx, conn)

	fmt.Println("\n✅ Database initialised successfully")
	fmt.Println("   Run next: go run ./scripts/seed_data")
}

// ─────────────────────────────────────────────────────────────
// Step 1: Extensions
// ─────────────────────────────────────────────────────────────
func step1_extensions(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 1: Extensions ──────────────────────────")

	execOrFatal(ctx, conn,
		"CREATE EXTENSION IF NOT EXISTS timescaledb CASCADE;",
		"timescaledb extension",
	)
}

// ─────────────────────────────────────────────────────────────
// Step 2: sensor_data hypertable
// ─────────────────────────────────────────────────────────────
func step2_sensor_table(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 2: sensor_data table ───────────────────")

	// One row per metric; a report with four readings becomes four rows.
	execOrFatal(ctx, conn, `
		CREATE TABLE IF NOT EXISTS sensor_data (
			timestamp    TIMESTAMPTZ      NOT NULL,
			id           TEXT             NOT NULL,
			sensor_id    TEXT             NOT NULL,

			-- vibration | sound | temperature | visual_motion
			sensor_type  TEXT             NOT NULL,

			value        DOUBLE PRECISION NOT NULL,
			unit         TEXT             NOT NULL,
			location     TEXT             NOT NULL DEFAULT ''
		);
	`, "sensor_data table created")

	execOrFatal(ctx, conn, `
		SELECT create_hypertable(
			'sensor_data',
			'timestamp',
			if_not_exists => TRUE
		);
	`, "sensor_data converted to hypertable")
}

// ─────────────────────────────────────────────────────────────
// Step 3: track_alerts table
// ─────────────────────────────────────────────────────────────
func step3_alerts_table(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 3: track_alerts table ──────────────────")

	// severity, intent and status are open sets, so no CHECK constraints.
	execOrFatal(ctx, conn, `
		CREATE TABLE IF NOT EXISTS track_alerts (
			id           TEXT             PRIMARY KEY,
			alert_type   TEXT             NOT NULL DEFAULT '',
			severity     TEXT             NOT NULL DEFAULT '',
			location     TEXT             NOT NULL DEFAULT '',
			intent       TEXT             NOT NULL DEFAULT '',
			risk_score   DOUBLE PRECISION NOT NULL DEFAULT 0,
			description  TEXT             NOT NULL DEFAULT '',
			status       TEXT             NOT NULL DEFAULT 'active',
			timestamp    TIMESTAMPTZ      NOT NULL DEFAULT NOW()
		);
	`, "track_alerts table created")
}

// ─────────────────────────────────────────────────────────────
// Step 4: trains table
// ─────────────────────────────────────────────────────────────
func step4_trains_table(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 4: trains table ────────────────────────")

	execOrFatal(ctx, conn, `
		CREATE TABLE IF NOT EXISTS trains (
			id           TEXT             PRIMARY KEY,
			train_id     TEXT             NOT NULL UNIQUE,
			speed        DOUBLE PRECISION NOT NULL DEFAULT 0,
			location     TEXT             NOT NULL DEFAULT '',

			-- running | stopped | halted
			status       TEXT             NOT NULL,

			last_update  TIMESTAMPTZ      NOT NULL DEFAULT NOW()
		);
	`, "trains table created")
}

// ─────────────────────────────────────────────────────────────
// Step 5: Indexes
// ─────────────────────────────────────────────────────────────
func step5_indexes(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 5: Indexes ─────────────────────────────")

	indexes := []struct {
		name string
		sql  string
		why  string
	}{
		{
			name: "idx_sensor_sensor_time",
			sql: `CREATE INDEX IF NOT EXISTS idx_sensor_sensor_time
				  ON sensor_data (sensor_id, timestamp DESC);`,
			why: "query: history for one sensor",
		},
		{
			name: "idx_alerts_time",
			sql: `CREATE INDEX IF NOT EXISTS idx_alerts_time
				  ON track_alerts (timestamp DESC);`,
			why: "query: newest alerts first",
		},
		{
			name: "idx_alerts_status_time",
			sql: `CREATE INDEX IF NOT EXISTS idx_alerts_status_time
				  ON track_alerts (status, timestamp DESC);`,
			why: "query: alerts filtered by status",
		},
		{
			name: "idx_alerts_intent_time",
			sql: `CREATE INDEX IF NOT EXISTS idx_alerts_intent_time
				  ON track_alerts (intent, timestamp DESC);`,
			why: "query: sabotage count over the last week",
		},
	}

	for _, idx := range indexes {
		execOrFatal(ctx, conn, idx.sql,
			fmt.Sprintf("%-40s ← %s", idx.name, idx.why),
		)
	}
}

// ─────────────────────────────────────────────────────────────
// Step 6: Verify everything was created
// ─────────────────────────────────────────────────────────────
func step6_verify(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 6: Verification ────────────────────────")

	tables := []string{"sensor_data", "track_alerts", "trains"}
	for _, table := range tables {
		var exists bool
		err := conn.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.tables
				WHERE table_name = $1
			)
		`, table).Scan(&exists)
		if err != nil || !exists {
			log.Fatalf("Table %s was not created: %v", table, err)
		}
		fmt.Printf("  ✓ table: %s\n", table)
	}

	var hypertableName string
	err := conn.QueryRow(ctx, `
		SELECT hypertable_name
		FROM timescaledb_information.hypertables
		WHERE hypertable_name = 'sensor_data'
	`).Scan(&hypertableName)
	if err != nil {
		log.Fatalf("sensor_data is not a hypertable: %v", err)
	}
	fmt.Printf("  ✓ hypertable: %s (time partitioned)\n", hypertableName)

	var indexCount int
	err = conn.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM pg_indexes
		WHERE tablename IN ('sensor_data', 'track_alerts', 'trains')
		AND indexname LIKE 'idx_%'
	`).Scan(&indexCount)
	if err != nil {
		log.Fatalf("Index check failed: %v", err)
	}
	fmt.Printf("  ✓ indexes created: %d\n", indexCount)
}

// ─────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────

// execOrFatal runs a SQL statement and prints result or exits on error
func execOrFatal(ctx context.Context, conn *pgx.Conn, sql, label string) {
	_, err := conn.Exec(ctx, sql)
	if err != nil {
		log.Fatalf("FAILED: %s\nError: %v\nSQL: %s", label, err, sql)
	}
	fmt.Printf("  ✓ %s\n", label)
}

func dbGetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
