package database

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/foxxcyber/compwatch/internal/models"
)

var ErrCompetitorNotFound = errors.New("competitor not found")

const competitorColumns = `id, user_id, name, address, category, website, menu_url, google_place_id,
	latitude, longitude, distance_km, is_selected, last_synced_at, created_at, updated_at`

func scanCompetitor(row pgx.Row) (*models.Competitor, error) {
	c := &models.Competitor{}
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Address, &c.Category, &c.Website, &c.MenuURL, &c.GooglePlaceID,
		&c.Latitude, &c.Longitude, &c.DistanceKm, &c.IsSelected, &c.LastSyncedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompetitorNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListCompetitors returns the user's competitors, selected ones only unless asked otherwise
func (db *DB) ListCompetitors(ctx context.Context, userID int, params *models.CompetitorListParams) ([]*models.Competitor, error) {
	query := `SELECT ` + competitorColumns + ` FROM competitors WHERE user_id = $1`
	if params == nil || !params.IncludeUnselected {
		query += ` AND is_selected = true`
	}
	query += ` ORDER BY distance_km ASC NULLS LAST, name ASC, id ASC`

	rows, err := db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	competitors := []*models.Competitor{}
	for rows.Next() {
		c, err := scanCompetitor(rows)
		if err != nil {
			return nil, err
		}
		competitors = append(competitors, c)
	}

	return competitors, rows.Err()
}

// GetCompetitor retrieves one of the user's competitors
func (db *DB) GetCompetitor(ctx context.Context, userID, id int) (*models.Competitor, error) {
	return scanCompetitor(db.Pool.QueryRow(ctx,
		`SELECT `+competitorColumns+` FROM competitors WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
}

// FindCompetitorIDsByPlace maps Google place ids to the user's persisted competitor ids
func (db *DB) FindCompetitorIDsByPlace(ctx context.Context, userID int, placeIDs []string) (map[string]int, error) {
	found := make(map[string]int)
	if len(placeIDs) == 0 {
		return found, nil
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT google_place_id, id FROM competitors
		WHERE user_id = $1 AND google_place_id = ANY($2)
	`, userID, placeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var placeID string
		var id int
		if err := rows.Scan(&placeID, &id); err != nil {
			return nil, err
		}
		found[placeID] = id
	}

	return found, rows.Err()
}

// CreateCompetitor inserts a competitor. Records carrying a Google place id are
// upserted per user, and an upsert never clears is_selected.
func (db *DB) CreateCompetitor(ctx context.Context, userID int, req *models.ManualCompetitorRequest) (*models.Competitor, error) {
	var placeID *string
	if req.GooglePlaceID != nil && strings.TrimSpace(*req.GooglePlaceID) != "" {
		p := strings.TrimSpace(*req.GooglePlaceID)
		placeID = &p
	}

	return scanCompetitor(db.Pool.QueryRow(ctx, `
		INSERT INTO competitors (user_id, name, address, category, website, menu_url, google_place_id,
			latitude, longitude, distance_km, is_selected, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (user_id, google_place_id) WHERE google_place_id IS NOT NULL DO UPDATE
		SET name = EXCLUDED.name,
		    address = CASE WHEN EXCLUDED.address <> '' THEN EXCLUDED.address ELSE competitors.address END,
		    category = CASE WHEN EXCLUDED.category <> '' THEN EXCLUDED.category ELSE competitors.category END,
		    website = CASE WHEN EXCLUDED.website <> '' THEN EXCLUDED.website ELSE competitors.website END,
		    menu_url = CASE WHEN EXCLUDED.menu_url <> '' THEN EXCLUDED.menu_url ELSE competitors.menu_url END,
		    latitude = COALESCE(EXCLUDED.latitude, competitors.latitude),
		    longitude = COALESCE(EXCLUDED.longitude, competitors.longitude),
		    distance_km = COALESCE(EXCLUDED.distance_km, competitors.distance_km),
		    is_selected = competitors.is_selected OR EXCLUDED.is_selected,
		    updated_at = NOW()
		RETURNING `+competitorColumns,
		userID, strings.TrimSpace(req.Name), strings.TrimSpace(req.Address), strings.TrimSpace(req.Category),
		strings.TrimSpace(req.Website), strings.TrimSpace(req.MenuURL), placeID,
		req.Latitude, req.Longitude, req.DistanceKm, req.IsSelected,
	))
}

// UpdateCompetitor applies a partial update to one of the user's competitors
func (db *DB) UpdateCompetitor(ctx context.Context, userID, id int, req *models.UpdateCompetitorRequest) (*models.Competitor, error) {
	return scanCompetitor(db.Pool.QueryRow(ctx, `
		UPDATE competitors
		SET name = COALESCE($3, name),
		    address = COALESCE($4, address),
		    category = COALESCE($5, category),
		    website = COALESCE($6, website),
		    menu_url = COALESCE($7, menu_url),
		    is_selected = COALESCE($8, is_selected),
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING `+competitorColumns,
		id, userID, req.Name, req.Address, req.Category, req.Website, req.MenuURL, req.IsSelected,
	))
}

// BulkSelect marks two sets of the user's competitors selected and unselected in one transaction
func (db *DB) BulkSelect(ctx context.Context, userID int, selectedIDs, unselectedIDs []int) (*models.BulkSelectResult, error) {
	result := &models.BulkSelectResult{}

	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		if len(selectedIDs) > 0 {
			tag, err := tx.Exec(ctx, `
				UPDATE competitors SET is_selected = true, updated_at = NOW()
				WHERE user_id = $1 AND id = ANY($2)
			`, userID, selectedIDs)
			if err != nil {
				return err
			}
			result.Selected = int(tag.RowsAffected())
		}

		if len(unselectedIDs) > 0 {
			tag, err := tx.Exec(ctx, `
				UPDATE competitors SET is_selected = false, updated_at = NOW()
				WHERE user_id = $1 AND id = ANY($2)
			`, userID, unselectedIDs)
			if err != nil {
				return err
			}
			result.Unselected = int(tag.RowsAffected())
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteCompetitor removes a competitor with its menu batches and items.
// It returns the archived snapshot keys so the caller can purge object storage.
func (db *DB) DeleteCompetitor(ctx context.Context, userID, id int) ([]string, error) {
	var keys []string

	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT mb.snapshot_key
			FROM menu_batches mb
			JOIN competitors c ON c.id = mb.competitor_id
			WHERE c.id = $1 AND c.user_id = $2 AND mb.snapshot_key IS NOT NULL
		`, id, userID)
		if err != nil {
			return err
		}
		keys, err = pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM competitors WHERE id = $1 AND user_id = $2`, id, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrCompetitorNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return keys, nil
}
