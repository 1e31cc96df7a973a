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
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found — using system environment variables")
	}

	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		dbGetEnv("DB_USER", "subzero_user"),
		dbGetEnv("DB_PASSWORD", "subzero_password"),
		dbGetEnv("DB_HOST", "localhost"),
		dbGetEnv("DB_PORT", "5432"),
		dbGetEnv("DB_NAME", "subzero_monitor"),
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
	step2_transitions_table(ctx, conn)
	step3_indexes(ctx, conn)
	step4_verify(ctx, conn)

	fmt.Println("\n✅ Database initialised successfully")
	fmt.Println("   Run next: go run ./cmd/monitor")
}

// ─────────────────────────────────────────────────────────────
// Step 1 — Extensions
// ─────────────────────────────────────────────────────────────
func step1_extensions(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 1: Extensions ──────────────────────────")

	// TimescaleDB — required for hypertable
	execOrFatal(ctx, conn,
		"CREATE EXTENSION IF NOT EXISTS timescaledb CASCADE;",
		"timescaledb extension",
	)
}

// ─────────────────────────────────────────────────────────────
// Step 2 — status_transitions table
// ─────────────────────────────────────────────────────────────
func step2_transitions_table(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 2: status_transitions table ────────────")

	execOrFatal(ctx, conn, `
		CREATE TABLE IF NOT EXISTS status_transitions (

			-- Time column — TimescaleDB partitions data by this
			occurred_at   TIMESTAMPTZ NOT NULL,

			-- Server receipt time — separate from the monitor clock
			recorded_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),

			-- Identity
			stream        TEXT        NOT NULL,
			device_id     TEXT,

			-- Must exactly match domain.Status constants:
			-- UNKNOWN | HEALTHY | WARNING | CRITICAL
			from_status   TEXT        NOT NULL,
			to_status     TEXT        NOT NULL,

			CONSTRAINT chk_from_status CHECK (
				from_status IN ('UNKNOWN', 'HEALTHY', 'WARNING', 'CRITICAL')
			),
			CONSTRAINT chk_to_status CHECK (
				to_status IN ('UNKNOWN', 'HEALTHY', 'WARNING', 'CRITICAL')
			)
		);
	`, "status_transitions table created")

	// Partitioned into 7-day chunks; dashboards only query recent history
	execOrFatal(ctx, conn, `
		SELECT create_hypertable(
			'status_transitions',
			'occurred_at',
			if_not_exists => TRUE
		);
	`, "status_transitions converted to hypertable")
}

// ─────────────────────────────────────────────────────────────
// Step 3 — Indexes
// ─────────────────────────────────────────────────────────────
func step3_indexes(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 3: Indexes ─────────────────────────────")

	indexes := []struct {
		name string
		sql  string
		why  string
	}{
		{
			name: "idx_transitions_stream_time",
			sql: `CREATE INDEX IF NOT EXISTS idx_transitions_stream_time
				  ON status_transitions (stream, occurred_at DESC);`,
			why: "query: transition history for one stream",
		},
		{
			name: "idx_transitions_device_time",
			sql: `CREATE INDEX IF NOT EXISTS idx_transitions_device_time
				  ON status_transitions (device_id, occurred_at DESC);`,
			why: "query: transition history for one device",
		},
		{
			name: "idx_transitions_critical",
			sql: `CREATE INDEX IF NOT EXISTS idx_transitions_critical
				  ON status_transitions (stream, occurred_at DESC)
				  WHERE to_status = 'CRITICAL';`,
			why: "query: recent critical escalations only (partial index)",
		},
	}

	for _, idx := range indexes {
		execOrFatal(ctx, conn, idx.sql,
			fmt.Sprintf("%-40s ← %s", idx.name, idx.why),
		)
	}
}

// ─────────────────────────────────────────────────────────────
// Step 4 — Verify everything was created
// ─────────────────────────────────────────────────────────────
func step4_verify(ctx context.Context, conn *pgx.Conn) {
	fmt.Println("\n── Step 4: Verification ────────────────────────")

	var exists bool
	err := conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_name = 'status_transitions'
		)
	`).Scan(&exists)
	if err != nil || !exists {
		log.Fatalf("Table status_transitions was not created: %v", err)
	}
	fmt.Println("  ✓ table: status_transitions")

	var hypertableName string
	err = conn.QueryRow(ctx, `
		SELECT hypertable_name
		FROM timescaledb_information.hypertables
		WHERE hypertable_name = 'status_transitions'
	`).Scan(&hypertableName)
	if err != nil {
		log.Fatalf("status_transitions is not a hypertable: %v", err)
	}
	fmt.Printf("  ✓ hypertable: %s (time partitioned)\n", hypertableName)

	var indexCount int
	err = conn.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM pg_indexes
		WHERE tablename = 'status_transitions'
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
		log.Fatalf("FAILED — %s\nError: %v\nSQL: %s", label, err, sql)
	}
	fmt.Printf("  ✓ %s\n", label)
}

func dbGetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
