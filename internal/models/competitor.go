package models

import (
	"strconv"
	"strings"
	"time"
)

const (
	// ManualIDPrefix marks candidates that were typed in by the user
	ManualIDPrefix = "manual-"
	// PlaceIDPrefix marks search hits that have not been saved yet
	PlaceIDPrefix = "place-"
)

// Competitor is a persisted competitor record owned by a user
type Competitor struct {
	ID            int        `json:"id"`
	UserID        int        `json:"-"`
	Name          string     `json:"name"`
	Address       string     `json:"address"`
	Category      string     `json:"category"`
	Website       string     `json:"website"`
	MenuURL       string     `json:"menu_url"`
	GooglePlaceID *string    `json:"google_place_id,omitempty"`
	Latitude      *float64   `json:"latitude,omitempty"`
	Longitude     *float64   `json:"longitude,omitempty"`
	DistanceKm    *float64   `json:"distance_km,omitempty"`
	IsSelected    bool       `json:"is_selected"`
	LastSyncedAt  *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// MenuSource returns the URL the menu should be scraped from
func (c *Competitor) MenuSource() string {
	if c.MenuURL != "" {
		return c.MenuURL
	}
	return c.Website
}

// CandidateCompetitor is an unsaved search hit or manual entry pending selection
type CandidateCompetitor struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Address  string   `json:"address"`
	Distance *float64 `json:"distance,omitempty"` // km
	MenuURL  string   `json:"menu_url"`
	Website  string   `json:"website,omitempty"`
	PlaceID  string   `json:"place_id,omitempty"`
	Rating   float64  `json:"rating,omitempty"`
	Selected bool     `json:"selected"`
}

// IsManual reports whether the candidate was created locally
func (c CandidateCompetitor) IsManual() bool {
	return strings.HasPrefix(c.ID, ManualIDPrefix)
}

// ServerID returns the persisted competitor id, if the candidate has one
func (c CandidateCompetitor) ServerID() (int, bool) {
	if c.ID == "" || c.IsManual() || strings.HasPrefix(c.ID, PlaceIDPrefix) {
		return 0, false
	}
	id, err := strconv.Atoi(c.ID)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// GooglePlaceID returns the Places id carried by the candidate, if any
func (c CandidateCompetitor) GooglePlaceID() string {
	if c.PlaceID != "" {
		return c.PlaceID
	}
	if strings.HasPrefix(c.ID, PlaceIDPrefix) {
		return strings.TrimPrefix(c.ID, PlaceIDPrefix)
	}
	return ""
}

// CompetitorSearchRequest is the request body for competitor search
type CompetitorSearchRequest struct {
	BusinessType string `json:"business_type"`
	Location     string `json:"location"`
	SaveToDB     bool   `json:"save_to_db"`
	Radius       int    `json:"radius,omitempty"` // meters
}

// ManualCompetitorRequest creates a competitor from a committed candidate
type ManualCompetitorRequest struct {
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	Category      string   `json:"category"`
	Website       string   `json:"website"`
	MenuURL       string   `json:"menu_url"`
	GooglePlaceID *string  `json:"google_place_id,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	DistanceKm    *float64 `json:"distance_km,omitempty"`
	IsSelected    bool     `json:"is_selected"`
}

// UpdateCompetitorRequest is the request body for editing a competitor
type UpdateCompetitorRequest struct {
	Name       *string `json:"name,omitempty"`
	Address    *string `json:"address,omitempty"`
	Category   *string `json:"category,omitempty"`
	Website    *string `json:"website,omitempty"`
	MenuURL    *string `json:"menu_url,omitempty"`
	IsSelected *bool   `json:"is_selected,omitempty"`
}

// BulkSelectRequest marks existing competitors selected or unselected in one call
type BulkSelectRequest struct {
	SelectedIDs   []int `json:"selected_ids"`
	UnselectedIDs []int `json:"unselected_ids"`
}

// BulkSelectResult reports how many rows each half of a bulk select touched
type BulkSelectResult struct {
	Selected   int `json:"selected"`
	Unselected int `json:"unselected"`
}

// CompetitorListParams contains parameters for listing competitors
type CompetitorListParams struct {
	IncludeUnselected bool
}
