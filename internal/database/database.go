package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("🔌 DATABASE CONNECTION ATTEMPT")
	log.Printf("   📍 Database URL length: %d characters", len(dbURL))
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Println("❌ DATABASE CONNECTION FAILED AT sqlx.Connect()")
		log.Printf("   Error message: %v", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		log.Println("❌ DATABASE CONNECTION FAILED AT Ping()")
		log.Printf("   Error message: %v", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)

	log.Println("✅ DATABASE CONNECTION SUCCESSFUL")
	return db, nil
}

// Migrate applies the schema. Every statement is idempotent so it runs on each boot.
func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Users: admins, drivers (CHOFER), supervisors and auditors
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT UNIQUE,
			full_name TEXT NOT NULL,
			hashed_password TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'CHOFER' CHECK(role IN ('ADMIN', 'CHOFER', 'SUPERVISOR', 'AUDITOR')),
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_login TIMESTAMPTZ
		)`,

		`CREATE TABLE IF NOT EXISTS trucks (
			id SERIAL PRIMARY KEY,
			plate TEXT NOT NULL UNIQUE,
			nickname TEXT NOT NULL,
			brand TEXT,
			model TEXT,
			year INT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS clients (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			address TEXT,
			special_price NUMERIC(10, 2),
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		// One row per truck per day, opened at checkout and closed at checkin
		`CREATE TABLE IF NOT EXISTS route_manifests (
			id SERIAL PRIMARY KEY,
			driver_id INT NOT NULL REFERENCES users(id),
			truck_id INT NOT NULL REFERENCES trucks(id),
			date DATE NOT NULL DEFAULT CURRENT_DATE,
			initial_full_bottles INT NOT NULL CHECK(initial_full_bottles > 0),
			initial_empty_bottles INT NOT NULL DEFAULT 0 CHECK(initial_empty_bottles >= 0),
			checkout_timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			checkout_by_user_id INT REFERENCES users(id),
			returned_full_bottles INT CHECK(returned_full_bottles >= 0),
			returned_empty_bottles INT CHECK(returned_empty_bottles >= 0),
			reported_damaged INT NOT NULL DEFAULT 0 CHECK(reported_damaged >= 0),
			checkin_timestamp TIMESTAMPTZ,
			checkin_by_user_id INT REFERENCES users(id),
			evidence_verified BOOLEAN NOT NULL DEFAULT FALSE,
			audit_status TEXT NOT NULL DEFAULT 'IN_PROGRESS' CHECK(audit_status IN ('IN_PROGRESS', 'CLEARED', 'DEBT', 'LOCKED_DEBT', 'PENDING')),
			debt_amount NUMERIC(10, 2) NOT NULL DEFAULT 0,
			notes TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_route_manifests_date ON route_manifests(date)`,
		`CREATE INDEX IF NOT EXISTS idx_route_manifests_status ON route_manifests(audit_status)`,
		`CREATE INDEX IF NOT EXISTS idx_route_manifests_driver ON route_manifests(driver_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_route_manifests_truck_in_progress ON route_manifests(truck_id) WHERE audit_status = 'IN_PROGRESS'`,

		`CREATE TABLE IF NOT EXISTS sales_details (
			id SERIAL PRIMARY KEY,
			route_id INT NOT NULL REFERENCES route_manifests(id) ON DELETE CASCADE,
			client_id INT NOT NULL REFERENCES clients(id),
			quantity INT NOT NULL CHECK(quantity > 0),
			unit_price NUMERIC(10, 2) NOT NULL,
			subtotal NUMERIC(10, 2) NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_details_route ON sales_details(route_id)`,

		`CREATE TABLE IF NOT EXISTS debt_records (
			id SERIAL PRIMARY KEY,
			route_manifest_id INT NOT NULL UNIQUE REFERENCES route_manifests(id) ON DELETE CASCADE,
			amount NUMERIC(10, 2) NOT NULL,
			status TEXT NOT NULL DEFAULT 'PENDING' CHECK(status IN ('PENDING', 'DEDUCTED', 'FORGIVEN', 'DISPUTED', 'PAID')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			resolved_at TIMESTAMPTZ,
			resolved_by_user_id INT REFERENCES users(id),
			notes TEXT,
			resolution_notes TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_debt_records_status ON debt_records(status)`,

		// Append-only trail of sensitive actions
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id SERIAL PRIMARY KEY,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			user_id INT NOT NULL REFERENCES users(id),
			action TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id INT NOT NULL,
			old_value JSONB,
			new_value JSONB,
			ip_address TEXT,
			user_agent TEXT,
			notes TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs(entity_type, entity_id)`,

		`CREATE TABLE IF NOT EXISTS fcm_tokens (
			id SERIAL PRIMARY KEY,
			user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			token TEXT NOT NULL UNIQUE,
			device_type TEXT NOT NULL CHECK(device_type IN ('ios', 'android', 'web')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fcm_tokens_user ON fcm_tokens(user_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	log.Println("✓ Database migrations completed")
	return nil
}
