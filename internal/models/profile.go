package models

import (
	"strings"
	"time"
)

// BusinessProfile describes the user's own restaurant or store
type BusinessProfile struct {
	ID            int       `json:"id"`
	UserID        int       `json:"user_id"`
	Name          string    `json:"name"`
	Industry      string    `json:"industry"`
	StreetAddress string    `json:"street_address"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	ZipCode       string    `json:"zip_code"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Location joins the address fields into the free-text form used by competitor search
func (p *BusinessProfile) Location() string {
	var parts []string
	for _, s := range []string{p.StreetAddress, p.City, strings.TrimSpace(p.State + " " + p.ZipCode)} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// BusinessProfileRequest is the request body for creating or updating the profile
type BusinessProfileRequest struct {
	Name          string   `json:"name"`
	Industry      string   `json:"industry"`
	StreetAddress string   `json:"street_address"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	ZipCode       string   `json:"zip_code"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
}
