package models

import (
	"time"
)

// Availability values for scraped menu items
const (
	AvailabilityAvailable   = "available"
	AvailabilityUnavailable = "unavailable"
	AvailabilityUnknown     = "unknown"
)

// MenuItem is one scraped line of a competitor's menu
type MenuItem struct {
	ID            int       `json:"id"`
	CompetitorID  int       `json:"competitor_id"`
	BatchID       string    `json:"batch_id"`
	ItemName      string    `json:"item_name"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	Price         *float64  `json:"price,omitempty"`
	Currency      string    `json:"currency"`
	Availability  string    `json:"availability"`
	Confidence    float64   `json:"confidence"`
	SourceURL     string    `json:"source_url"`
	SyncTimestamp time.Time `json:"sync_timestamp"`
}

// MenuBatch is one snapshot of a competitor's menu
type MenuBatch struct {
	BatchID       string     `json:"batch_id"`
	CompetitorID  int        `json:"competitor_id"`
	SourceURL     string     `json:"source_url"`
	Extractor     string     `json:"extractor"`
	SnapshotKey   *string    `json:"-"`
	SyncTimestamp time.Time  `json:"sync_timestamp"`
	Cached        bool       `json:"cached"`
	Items         []MenuItem `json:"items"`
}

// MenuBatchSummary is a batch without its items, used for history
type MenuBatchSummary struct {
	BatchID       string    `json:"batch_id"`
	CompetitorID  int       `json:"competitor_id"`
	SourceURL     string    `json:"source_url"`
	Extractor     string    `json:"extractor"`
	ItemCount     int       `json:"item_count"`
	SyncTimestamp time.Time `json:"sync_timestamp"`
}

// FetchMenuRequest is the request body for triggering a menu scrape
type FetchMenuRequest struct {
	ForceRefresh bool `json:"force_refresh"`
}
