package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// DB wraps the connection pool
type DB struct {
	Pool   *pgxpool.Pool
	logger *zap.Logger
}

// Connect creates a new database connection pool
func Connect(databaseURL string, logger *zap.Logger) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	// Configure pool
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	logger.Info("database connected")
	return &DB{Pool: pool, logger: logger}, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}

// RunMigrations runs all database migrations in version order
func RunMigrations(db *DB) error {
	ctx := context.Background()

	_, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for i, migration := range migrations {
		version := i + 1

		var exists bool
		err := db.Pool.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)",
			version,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration %d: %w", version, err)
		}

		if exists {
			continue
		}

		db.logger.Info("applying migration", zap.Int("version", version))
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", version, err)
		}

		_, err = db.Pool.Exec(ctx,
			"INSERT INTO schema_migrations (version) VALUES ($1)",
			version,
		)
		if err != nil {
			return fmt.Errorf("failed to record migration %d: %w", version, err)
		}
	}

	return nil
}

// migrations are applied in slice order; version = index + 1
var migrations = []string{
	migration001,
	migration002,
}

const migration001 = `
-- Users table
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(255) NOT NULL,
    username VARCHAR(50) UNIQUE,
    role VARCHAR(20) DEFAULT 'user',
    tracking_enabled BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW(),
    last_login_at TIMESTAMP
);

-- Business profile, one per user
CREATE TABLE IF NOT EXISTS business_profiles (
    id SERIAL PRIMARY KEY,
    user_id INT UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name VARCHAR(255) NOT NULL,
    industry VARCHAR(100) NOT NULL DEFAULT '',
    street_address VARCHAR(255) NOT NULL DEFAULT '',
    city VARCHAR(100) NOT NULL DEFAULT '',
    state VARCHAR(50) NOT NULL DEFAULT '',
    zip_code VARCHAR(20) NOT NULL DEFAULT '',
    latitude DECIMAL(10, 8),
    longitude DECIMAL(11, 8),
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);

-- Tracked competitors
CREATE TABLE IF NOT EXISTS competitors (
    id SERIAL PRIMARY KEY,
    user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name VARCHAR(255) NOT NULL,
    address VARCHAR(500) NOT NULL DEFAULT '',
    category VARCHAR(100) NOT NULL DEFAULT '',
    website VARCHAR(1000) NOT NULL DEFAULT '',
    menu_url VARCHAR(1000) NOT NULL DEFAULT '',
    google_place_id VARCHAR(255),
    latitude DECIMAL(10, 8),
    longitude DECIMAL(11, 8),
    distance_km DECIMAL(8, 3),
    is_selected BOOLEAN NOT NULL DEFAULT FALSE,
    last_synced_at TIMESTAMP,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);

-- Menu snapshots
CREATE TABLE IF NOT EXISTS menu_batches (
    batch_id UUID PRIMARY KEY,
    competitor_id INT NOT NULL REFERENCES competitors(id) ON DELETE CASCADE,
    source_url VARCHAR(1000) NOT NULL,
    extractor VARCHAR(50) NOT NULL,
    item_count INT NOT NULL DEFAULT 0,
    snapshot_key VARCHAR(500),
    sync_timestamp TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS menu_items (
    id SERIAL PRIMARY KEY,
    competitor_id INT NOT NULL REFERENCES competitors(id) ON DELETE CASCADE,
    batch_id UUID NOT NULL REFERENCES menu_batches(batch_id) ON DELETE CASCADE,
    item_name VARCHAR(500) NOT NULL,
    category VARCHAR(255) NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    price DECIMAL(10, 2),
    currency VARCHAR(3) NOT NULL DEFAULT 'USD',
    availability VARCHAR(20) NOT NULL DEFAULT 'unknown',
    confidence REAL NOT NULL DEFAULT 0,
    source_url VARCHAR(1000) NOT NULL DEFAULT '',
    sync_timestamp TIMESTAMP NOT NULL DEFAULT NOW()
);
`

const migration002 = `
-- Migration 002: indexes and place-id uniqueness for idempotent manual adds

CREATE UNIQUE INDEX IF NOT EXISTS idx_competitors_user_place
    ON competitors(user_id, google_place_id) WHERE google_place_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_competitors_user_selected ON competitors(user_id, is_selected);
CREATE INDEX IF NOT EXISTS idx_menu_batches_competitor ON menu_batches(competitor_id, sync_timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_menu_items_batch ON menu_items(batch_id);
CREATE INDEX IF NOT EXISTS idx_menu_items_competitor ON menu_items(competitor_id);
`
