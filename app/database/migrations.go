package database

import (
	"database/sql"
	"log"
)

// RunMigrations creates the schema when missing and applies incremental
// updates. Every statement is idempotent so this runs safely at startup.
func RunMigrations(db *sql.DB) error {
	log.Println("Running database migrations...")

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			log.Printf("Migration failed: %v", err)
			return err
		}
	}

	if err := addAttendanceUniqueIndex(db); err != nil {
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'admin',
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS sites (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'Active',
		workers_count INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT TO_CHAR(NOW() AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"')
	)`,

	`CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		position TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'Active',
		document_status TEXT NOT NULL DEFAULT 'Pending',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		site_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL DEFAULT TO_CHAR(NOW() AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"')
	)`,

	`CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		employee_name TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'present',
		clock_in TEXT,
		clock_out TEXT,
		hours DOUBLE PRECISION,
		overtime BOOLEAN NOT NULL DEFAULT false,
		notes TEXT NOT NULL DEFAULT '',
		site_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL DEFAULT TO_CHAR(NOW() AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"')
	)`,

	`CREATE TABLE IF NOT EXISTS payroll (
		id TEXT PRIMARY KEY,
		pay_period TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'Pending',
		total DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
		employees_count INTEGER NOT NULL DEFAULT 0,
		entries JSONB NOT NULL DEFAULT '[]',
		site_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL DEFAULT TO_CHAR(NOW() AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"')
	)`,

	`CREATE TABLE IF NOT EXISTS mfa_setup_codes (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email TEXT NOT NULL,
		code_hash TEXT NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		used BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS mfa_factors (
		email TEXT PRIMARY KEY,
		secret TEXT NOT NULL,
		verified BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance (date)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_employee ON attendance (employee_id)`,
	`CREATE INDEX IF NOT EXISTS idx_employees_site ON employees (site_id)`,
	`CREATE INDEX IF NOT EXISTS idx_payroll_site ON payroll (site_id)`,
	`CREATE INDEX IF NOT EXISTS idx_mfa_codes_email ON mfa_setup_codes (email)`,
}

// addAttendanceUniqueIndex enforces one non-overtime record per employee per
// day. Overtime rows are exempt so extra hours can be logged separately.
func addAttendanceUniqueIndex(db *sql.DB) error {
	query := `
		DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1
				FROM pg_indexes
				WHERE tablename = 'attendance'
				AND indexname = 'uniq_attendance_employee_date'
			) THEN
				CREATE UNIQUE INDEX uniq_attendance_employee_date
				ON attendance (employee_id, date)
				WHERE overtime = false;
				RAISE NOTICE 'Added unique attendance index';
			END IF;
		END $$;
	`
	if _, err := db.Exec(query); err != nil {
		log.Printf("Failed to create attendance unique index: %v", err)
		return err
	}
	return nil
}
