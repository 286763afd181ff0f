package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/foxxcyber/compwatch/internal/models"
)

var ErrMenuNotFound = errors.New("no stored menu for competitor")

var menuItemCopyColumns = []string{
	"competitor_id", "batch_id", "item_name", "category", "description", "price",
	"currency", "availability", "confidence", "source_url", "sync_timestamp",
}

// SaveMenuBatch stores a new batch with its items, stamps the competitor's
// last sync time and prunes batches beyond retention. It returns the snapshot
// keys of the pruned batches.
func (db *DB) SaveMenuBatch(ctx context.Context, batch *models.MenuBatch, retention int) ([]string, error) {
	batchUUID, err := uuid.Parse(batch.BatchID)
	if err != nil {
		return nil, fmt.Errorf("invalid batch id: %w", err)
	}
	pgBatchID := pgtype.UUID{Bytes: [16]byte(batchUUID), Valid: true}

	var pruned []string
	err = pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO menu_batches (batch_id, competitor_id, source_url, extractor, item_count, snapshot_key, sync_timestamp)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, pgBatchID, batch.CompetitorID, batch.SourceURL, batch.Extractor, len(batch.Items), batch.SnapshotKey, batch.SyncTimestamp)
		if err != nil {
			return fmt.Errorf("insert batch: %w", err)
		}

		if len(batch.Items) > 0 {
			_, err = tx.CopyFrom(ctx, pgx.Identifier{"menu_items"}, menuItemCopyColumns,
				pgx.CopyFromSlice(len(batch.Items), func(i int) ([]any, error) {
					item := batch.Items[i]
					return []any{
						batch.CompetitorID, pgBatchID, item.ItemName, item.Category, item.Description, item.Price,
						item.Currency, item.Availability, float32(item.Confidence), item.SourceURL, batch.SyncTimestamp,
					}, nil
				}),
			)
			if err != nil {
				return fmt.Errorf("copy menu items: %w", err)
			}
		}

		_, err = tx.Exec(ctx, `
			UPDATE competitors SET last_synced_at = $2, updated_at = NOW() WHERE id = $1
		`, batch.CompetitorID, batch.SyncTimestamp)
		if err != nil {
			return fmt.Errorf("stamp competitor: %w", err)
		}

		if retention <= 0 {
			return nil
		}

		rows, err := tx.Query(ctx, `
			DELETE FROM menu_batches
			WHERE batch_id IN (
				SELECT batch_id FROM menu_batches
				WHERE competitor_id = $1
				ORDER BY sync_timestamp DESC
				OFFSET $2
			)
			RETURNING snapshot_key
		`, batch.CompetitorID, retention)
		if err != nil {
			return fmt.Errorf("prune batches: %w", err)
		}
		keys, err := pgx.CollectRows(rows, pgx.RowTo[*string])
		if err != nil {
			return err
		}
		for _, k := range keys {
			if k != nil {
				pruned = append(pruned, *k)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return pruned, nil
}

// GetLatestMenuBatch returns the newest batch for one of the user's competitors
func (db *DB) GetLatestMenuBatch(ctx context.Context, userID, competitorID int) (*models.MenuBatch, error) {
	batch := &models.MenuBatch{}
	err := db.Pool.QueryRow(ctx, `
		SELECT mb.batch_id::text, mb.competitor_id, mb.source_url, mb.extractor, mb.snapshot_key, mb.sync_timestamp
		FROM menu_batches mb
		JOIN competitors c ON c.id = mb.competitor_id
		WHERE mb.competitor_id = $1 AND c.user_id = $2
		ORDER BY mb.sync_timestamp DESC
		LIMIT 1
	`, competitorID, userID).Scan(
		&batch.BatchID, &batch.CompetitorID, &batch.SourceURL, &batch.Extractor, &batch.SnapshotKey, &batch.SyncTimestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, competitor_id, batch_id::text, item_name, category, description, price,
			currency, availability, confidence, source_url, sync_timestamp
		FROM menu_items
		WHERE batch_id = $1::uuid
		ORDER BY category ASC, id ASC
	`, batch.BatchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	batch.Items = []models.MenuItem{}
	for rows.Next() {
		var item models.MenuItem
		var confidence float32
		if err := rows.Scan(
			&item.ID, &item.CompetitorID, &item.BatchID, &item.ItemName, &item.Category, &item.Description, &item.Price,
			&item.Currency, &item.Availability, &confidence, &item.SourceURL, &item.SyncTimestamp,
		); err != nil {
			return nil, err
		}
		item.Confidence = float64(confidence)
		batch.Items = append(batch.Items, item)
	}

	return batch, rows.Err()
}

// ListMenuBatches returns the batch history for one of the user's competitors, newest first
func (db *DB) ListMenuBatches(ctx context.Context, userID, competitorID, limit int) ([]*models.MenuBatchSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT mb.batch_id::text, mb.competitor_id, mb.source_url, mb.extractor, mb.item_count, mb.sync_timestamp
		FROM menu_batches mb
		JOIN competitors c ON c.id = mb.competitor_id
		WHERE mb.competitor_id = $1 AND c.user_id = $2
		ORDER BY mb.sync_timestamp DESC
		LIMIT $3
	`, competitorID, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []*models.MenuBatchSummary{}
	for rows.Next() {
		s := &models.MenuBatchSummary{}
		if err := rows.Scan(&s.BatchID, &s.CompetitorID, &s.SourceURL, &s.Extractor, &s.ItemCount, &s.SyncTimestamp); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}
