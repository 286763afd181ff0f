package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/foxxcyber/compwatch/internal/models"
	"github.com/foxxcyber/compwatch/internal/services"
)

// StubPlaces answers Maps lookups from fixed data
type StubPlaces struct {
	mu      sync.Mutex
	Places  []*services.PlaceResult
	Details map[string]*services.PlaceDetails
	Err     error
	Calls   int
}

func (p *StubPlaces) Geocode(ctx context.Context, address string) (*services.GeocodingResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	return &services.GeocodingResult{FormattedAddress: address, Latitude: 40.7128, Longitude: -74.0060}, nil
}

func (p *StubPlaces) SearchCompetitors(ctx context.Context, businessType, location string, radius int) ([]*services.PlaceResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Calls++
	if p.Err != nil {
		return nil, p.Err
	}
	out := make([]*services.PlaceResult, 0, len(p.Places))
	for _, pl := range p.Places {
		cp := *pl
		out = append(out, &cp)
	}
	return out, nil
}

func (p *StubPlaces) GetPlaceDetails(ctx context.Context, placeID string) (*services.PlaceDetails, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if d, ok := p.Details[placeID]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, services.ErrNoResults
}

// CoffeeShops returns n nearby place hits with increasing distance
func CoffeeShops(names ...string) []*services.PlaceResult {
	out := make([]*services.PlaceResult, 0, len(names))
	for i, name := range names {
		d := 0.4 * float64(i+1)
		out = append(out, &services.PlaceResult{
			PlaceID:          "place-id-" + name,
			Name:             name,
			FormattedAddress: "Main St, New York, NY",
			Latitude:         40.7128,
			Longitude:        -74.0060,
			Types:            []string{"cafe", "food", "establishment"},
			Rating:           4.2,
			DistanceKm:       &d,
		})
	}
	return out
}

// StubScraper returns canned menus per URL. Delay holds each call open
// until it has passed, whatever the context says.
type StubScraper struct {
	mu      sync.Mutex
	Results map[string]*services.ScrapeResult
	Errors  map[string]error
	Delay   time.Duration
	calls   []string
}

func (s *StubScraper) Scrape(ctx context.Context, sourceURL string) (*services.ScrapeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Delay > 0 {
		time.Sleep(s.Delay)
	}

	s.calls = append(s.calls, sourceURL)
	if err, ok := s.Errors[sourceURL]; ok {
		return nil, err
	}
	if r, ok := s.Results[sourceURL]; ok {
		cp := *r
		cp.Items = append([]models.MenuItem{}, r.Items...)
		return &cp, nil
	}

	price := 10.0
	return &services.ScrapeResult{
		SourceURL:   sourceURL,
		ContentType: "text/html",
		Body:        []byte("<p>House Special $10.00</p>"),
		Extractor:   "parser",
		Items: []models.MenuItem{{
			ItemName:     "House Special",
			Price:        &price,
			Currency:     "USD",
			Availability: models.AvailabilityUnknown,
			Confidence:   0.8,
			SourceURL:    sourceURL,
		}},
	}, nil
}

// Calls returns the URLs scraped so far, in order
func (s *StubScraper) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.calls...)
}

// StubArchive keeps snapshots in memory
type StubArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (a *StubArchive) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.objects == nil {
		a.objects = make(map[string][]byte)
	}
	a.objects[key] = append([]byte{}, body...)
	return nil
}

func (a *StubArchive) Delete(ctx context.Context, keys []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, k := range keys {
		delete(a.objects, k)
	}
	return nil
}

// Keys lists the stored snapshot keys
func (a *StubArchive) Keys() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	keys := make([]string, 0, len(a.objects))
	for k := range a.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
