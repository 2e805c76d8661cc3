package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'vehicle_status') THEN
			CREATE TYPE vehicle_status AS ENUM ('Available', 'OnRoute', 'Maintenance');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'route_status') THEN
			CREATE TYPE route_status AS ENUM ('Scheduled', 'InProgress', 'Completed', 'Cancelled');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		plate VARCHAR(8) NOT NULL,
		make VARCHAR(50) NOT NULL,
		model VARCHAR(50) NOT NULL,
		year INTEGER NOT NULL,
		capacity INTEGER NOT NULL,
		status vehicle_status NOT NULL DEFAULT 'Available',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_vehicles_plate ON vehicles (plate);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_status ON vehicles (status);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_make ON vehicles (make);`,
	`CREATE TABLE IF NOT EXISTS routes (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(100) NOT NULL,
		origin VARCHAR(100) NOT NULL,
		destination VARCHAR(100) NOT NULL,
		distance_km DOUBLE PRECISION NOT NULL,
		estimated_minutes INTEGER NOT NULL,
		vehicle_id UUID REFERENCES vehicles(id) ON DELETE CASCADE,
		status route_status NOT NULL DEFAULT 'Scheduled',
		started_at TIMESTAMPTZ,
		finished_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_routes_vehicle_id ON routes (vehicle_id);`,
	`CREATE INDEX IF NOT EXISTS idx_routes_status ON routes (status);`,
	`CREATE INDEX IF NOT EXISTS idx_routes_origin ON routes (origin);`,
	`CREATE INDEX IF NOT EXISTS idx_routes_destination ON routes (destination);`,
	`CREATE OR REPLACE FUNCTION set_row_updated_at()
	RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_vehicles_updated_at') THEN
			CREATE TRIGGER trg_vehicles_updated_at
				BEFORE UPDATE ON vehicles
				FOR EACH ROW
				EXECUTE PROCEDURE set_row_updated_at();
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_routes_updated_at') THEN
			CREATE TRIGGER trg_routes_updated_at
				BEFORE UPDATE ON routes
				FOR EACH ROW
				EXECUTE PROCEDURE set_row_updated_at();
		END IF;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
