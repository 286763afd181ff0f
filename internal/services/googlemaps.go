package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultMapsBaseURL  = "https://maps.googleapis.com/maps/api"
	defaultTimeout      = 10 * time.Second
	defaultSearchRadius = 5000 // 5km in meters
	maxSearchRadius     = 50000
)

var (
	ErrNoResults      = errors.New("no results found")
	ErrAPIError       = errors.New("google maps api error")
	ErrInvalidAPIKey  = errors.New("invalid or missing api key")
	ErrRequestDenied  = errors.New("request denied by google api")
	ErrOverQueryLimit = errors.New("over query limit")
	ErrInvalidRequest = errors.New("invalid request")
)

// GoogleMapsService provides methods to interact with Google Maps APIs
type GoogleMapsService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// GeocodingResult represents the result of a geocoding operation
type GeocodingResult struct {
	FormattedAddress string            `json:"formatted_address"`
	Latitude         float64           `json:"latitude"`
	Longitude        float64           `json:"longitude"`
	PlaceID          string            `json:"place_id"`
	Components       AddressComponents `json:"components"`
}

// AddressComponents contains parsed address components
type AddressComponents struct {
	StreetNumber string `json:"street_number,omitempty"`
	Route        string `json:"route,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	StateCode    string `json:"state_code,omitempty"`
	Country      string `json:"country,omitempty"`
	CountryCode  string `json:"country_code,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
}

// PlaceResult represents a place from the Places API
type PlaceResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	Types            []string `json:"types"`
	Rating           float64  `json:"rating,omitempty"`
	UserRatingsTotal int      `json:"user_ratings_total,omitempty"`
	PriceLevel       *int     `json:"price_level,omitempty"`
	DistanceKm       *float64 `json:"distance_km,omitempty"`
}

// PlaceDetails represents detailed information about a place
type PlaceDetails struct {
	PlaceID              string            `json:"place_id"`
	Name                 string            `json:"name"`
	FormattedAddress     string            `json:"formatted_address"`
	FormattedPhoneNumber string            `json:"formatted_phone_number,omitempty"`
	Website              string            `json:"website,omitempty"`
	Latitude             float64           `json:"latitude"`
	Longitude            float64           `json:"longitude"`
	Types                []string          `json:"types"`
	Components           AddressComponents `json:"components,omitempty"`
}

type googleLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type googleGeometry struct {
	Location googleLocation `json:"location"`
}

type googleAddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// Google API response structures
type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress  string                   `json:"formatted_address"`
		PlaceID           string                   `json:"place_id"`
		Geometry          googleGeometry           `json:"geometry"`
		AddressComponents []googleAddressComponent `json:"address_components"`
	} `json:"results"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type placesTextSearchResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID          string         `json:"place_id"`
		Name             string         `json:"name"`
		FormattedAddress string         `json:"formatted_address"`
		Geometry         googleGeometry `json:"geometry"`
		Types            []string       `json:"types"`
		Rating           float64        `json:"rating,omitempty"`
		UserRatingsTotal int            `json:"user_ratings_total,omitempty"`
		PriceLevel       *int           `json:"price_level,omitempty"`
	} `json:"results"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type placeDetailsResponse struct {
	Status string `json:"status"`
	Result struct {
		PlaceID              string                   `json:"place_id"`
		Name                 string                   `json:"name"`
		FormattedAddress     string                   `json:"formatted_address"`
		FormattedPhoneNumber string                   `json:"formatted_phone_number,omitempty"`
		Website              string                   `json:"website,omitempty"`
		Geometry             googleGeometry           `json:"geometry"`
		AddressComponents    []googleAddressComponent `json:"address_components"`
		Types                []string                 `json:"types"`
	} `json:"result"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// NewGoogleMapsService creates a new GoogleMapsService instance
func NewGoogleMapsService(apiKey string) *GoogleMapsService {
	return &GoogleMapsService{
		apiKey:  apiKey,
		baseURL: defaultMapsBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// WithBaseURL points the service at a different API host (used by tests)
func (s *GoogleMapsService) WithBaseURL(baseURL string) *GoogleMapsService {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

// getJSON performs a GET against a Maps endpoint and decodes the body into out
func (s *GoogleMapsService) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("key", s.apiKey)
	reqURL := s.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Geocode converts an address string to coordinates
func (s *GoogleMapsService) Geocode(ctx context.Context, address string) (*GeocodingResult, error) {
	if s.apiKey == "" {
		return nil, ErrInvalidAPIKey
	}

	params := url.Values{}
	params.Set("address", address)

	var geocodeResp geocodeResponse
	if err := s.getJSON(ctx, "/geocode/json", params, &geocodeResp); err != nil {
		return nil, err
	}

	if err := checkGoogleAPIStatus(geocodeResp.Status, geocodeResp.ErrorMessage); err != nil {
		return nil, err
	}

	if len(geocodeResp.Results) == 0 {
		return nil, ErrNoResults
	}

	result := geocodeResp.Results[0]
	return &GeocodingResult{
		FormattedAddress: result.FormattedAddress,
		Latitude:         result.Geometry.Location.Lat,
		Longitude:        result.Geometry.Location.Lng,
		PlaceID:          result.PlaceID,
		Components:       parseAddressComponents(result.AddressComponents),
	}, nil
}

// TextSearch searches for places by text query with optional location bias.
// radius is in meters and only biases results, it does not filter them.
func (s *GoogleMapsService) TextSearch(ctx context.Context, query string, lat, lng float64, radius int) ([]*PlaceResult, error) {
	if s.apiKey == "" {
		return nil, ErrInvalidAPIKey
	}

	if query == "" {
		return nil, ErrInvalidRequest
	}

	if radius <= 0 {
		radius = defaultSearchRadius
	}

	params := url.Values{}
	params.Set("query", query)

	if lat != 0 || lng != 0 {
		params.Set("location", fmt.Sprintf("%f,%f", lat, lng))
		params.Set("radius", strconv.Itoa(radius))
	}

	var textResp placesTextSearchResponse
	if err := s.getJSON(ctx, "/place/textsearch/json", params, &textResp); err != nil {
		return nil, err
	}

	if err := checkGoogleAPIStatus(textResp.Status, textResp.ErrorMessage); err != nil {
		if errors.Is(err, ErrNoResults) {
			return []*PlaceResult{}, nil
		}
		return nil, err
	}

	places := make([]*PlaceResult, 0, len(textResp.Results))
	for _, p := range textResp.Results {
		places = append(places, &PlaceResult{
			PlaceID:          p.PlaceID,
			Name:             p.Name,
			FormattedAddress: p.FormattedAddress,
			Latitude:         p.Geometry.Location.Lat,
			Longitude:        p.Geometry.Location.Lng,
			Types:            p.Types,
			Rating:           p.Rating,
			UserRatingsTotal: p.UserRatingsTotal,
			PriceLevel:       p.PriceLevel,
		})
	}

	return places, nil
}

// SearchCompetitors finds businesses of businessType around a free-text location.
// Results keep the Places ranking order and carry the distance from the
// geocoded location when it could be resolved.
func (s *GoogleMapsService) SearchCompetitors(ctx context.Context, businessType, location string, radius int) ([]*PlaceResult, error) {
	if s.apiKey == "" {
		return nil, ErrInvalidAPIKey
	}
	if radius > maxSearchRadius {
		radius = maxSearchRadius
	}

	origin, err := s.Geocode(ctx, location)
	if err != nil {
		return nil, err
	}

	places, err := s.TextSearch(ctx, fmt.Sprintf("%s in %s", businessType, location), origin.Latitude, origin.Longitude, radius)
	if err != nil {
		return nil, err
	}

	for _, p := range places {
		d := HaversineKm(origin.Latitude, origin.Longitude, p.Latitude, p.Longitude)
		p.DistanceKm = &d
	}

	return places, nil
}

// GetPlaceDetails retrieves detailed information about a place
func (s *GoogleMapsService) GetPlaceDetails(ctx context.Context, placeID string) (*PlaceDetails, error) {
	if s.apiKey == "" {
		return nil, ErrInvalidAPIKey
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "place_id,name,formatted_address,formatted_phone_number,website,geometry,address_components,types")

	var detailsResp placeDetailsResponse
	if err := s.getJSON(ctx, "/place/details/json", params, &detailsResp); err != nil {
		return nil, err
	}

	if err := checkGoogleAPIStatus(detailsResp.Status, detailsResp.ErrorMessage); err != nil {
		return nil, err
	}

	r := detailsResp.Result
	return &PlaceDetails{
		PlaceID:              r.PlaceID,
		Name:                 r.Name,
		FormattedAddress:     r.FormattedAddress,
		FormattedPhoneNumber: r.FormattedPhoneNumber,
		Website:              r.Website,
		Latitude:             r.Geometry.Location.Lat,
		Longitude:            r.Geometry.Location.Lng,
		Types:                r.Types,
		Components:           parseAddressComponents(r.AddressComponents),
	}, nil
}

// PrimaryCategory turns Places types into a readable category
func PrimaryCategory(types []string) string {
	for _, t := range types {
		switch t {
		case "point_of_interest", "establishment", "food", "store":
			continue
		}
		return strings.ReplaceAll(t, "_", " ")
	}
	if len(types) > 0 {
		return strings.ReplaceAll(types[0], "_", " ")
	}
	return ""
}

// parseAddressComponents extracts relevant fields from Google's address components
func parseAddressComponents(components []googleAddressComponent) AddressComponents {
	ac := AddressComponents{}
	for _, c := range components {
		for _, t := range c.Types {
			switch t {
			case "street_number":
				ac.StreetNumber = c.LongName
			case "route":
				ac.Route = c.LongName
			case "locality":
				ac.City = c.LongName
			case "administrative_area_level_1":
				ac.State = c.LongName
				ac.StateCode = c.ShortName
			case "country":
				ac.Country = c.LongName
				ac.CountryCode = c.ShortName
			case "postal_code":
				ac.PostalCode = c.LongName
			}
		}
	}
	return ac
}

// checkGoogleAPIStatus converts Google API status codes to errors
func checkGoogleAPIStatus(status, errorMessage string) error {
	switch status {
	case "OK":
		return nil
	case "ZERO_RESULTS":
		return ErrNoResults
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		return ErrOverQueryLimit
	case "REQUEST_DENIED":
		if errorMessage != "" {
			return fmt.Errorf("%w: %s", ErrRequestDenied, errorMessage)
		}
		return ErrRequestDenied
	case "INVALID_REQUEST":
		if errorMessage != "" {
			return fmt.Errorf("%w: %s", ErrInvalidRequest, errorMessage)
		}
		return ErrInvalidRequest
	default:
		if errorMessage != "" {
			return fmt.Errorf("%w: %s - %s", ErrAPIError, status, errorMessage)
		}
		return fmt.Errorf("%w: %s", ErrAPIError, status)
	}
}
