package database

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/foxxcyber/compwatch/internal/models"
)

var ErrProfileNotFound = errors.New("business profile not found")

// GetBusinessProfile returns the profile owned by userID
func (db *DB) GetBusinessProfile(ctx context.Context, userID int) (*models.BusinessProfile, error) {
	p := &models.BusinessProfile{}
	err := db.Pool.QueryRow(ctx, `
		SELECT id, user_id, name, industry, street_address, city, state, zip_code, latitude, longitude, created_at, updated_at
		FROM business_profiles
		WHERE user_id = $1
	`, userID).Scan(
		&p.ID, &p.UserID, &p.Name, &p.Industry, &p.StreetAddress, &p.City, &p.State, &p.ZipCode,
		&p.Latitude, &p.Longitude, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

// UpsertBusinessProfile creates the profile on first save and overwrites it afterwards
func (db *DB) UpsertBusinessProfile(ctx context.Context, userID int, req *models.BusinessProfileRequest) (*models.BusinessProfile, error) {
	p := &models.BusinessProfile{}
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO business_profiles (user_id, name, industry, street_address, city, state, zip_code, latitude, longitude, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET name = EXCLUDED.name,
		    industry = EXCLUDED.industry,
		    street_address = EXCLUDED.street_address,
		    city = EXCLUDED.city,
		    state = EXCLUDED.state,
		    zip_code = EXCLUDED.zip_code,
		    latitude = COALESCE(EXCLUDED.latitude, business_profiles.latitude),
		    longitude = COALESCE(EXCLUDED.longitude, business_profiles.longitude),
		    updated_at = NOW()
		RETURNING id, user_id, name, industry, street_address, city, state, zip_code, latitude, longitude, created_at, updated_at
	`, userID, strings.TrimSpace(req.Name), strings.TrimSpace(req.Industry), strings.TrimSpace(req.StreetAddress),
		strings.TrimSpace(req.City), strings.ToUpper(strings.TrimSpace(req.State)), strings.TrimSpace(req.ZipCode),
		req.Latitude, req.Longitude,
	).Scan(
		&p.ID, &p.UserID, &p.Name, &p.Industry, &p.StreetAddress, &p.City, &p.State, &p.ZipCode,
		&p.Latitude, &p.Longitude, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
