package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxxcyber/compwatch/internal/models"
)

type fakeExtractor struct {
	items []models.MenuItem
	err   error
	calls int
}

func (f *fakeExtractor) Name() string { return "fake" }

func (f *fakeExtractor) ExtractMenu(ctx context.Context, pageText string) ([]models.MenuItem, error) {
	f.calls++
	return f.items, f.err
}

type fakeOCR struct {
	text string
}

func (f *fakeOCR) ImageText(image []byte) (string, error) {
	return f.text, nil
}

func newMenuServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/menu.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(samplePage))
	})
	mux.HandleFunc("/menu.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("BAGELS\nPlain Bagel 2.25\nEverything Bagel 2.75\n"))
	})
	mux.HandleFunc("/board.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 'P', 'N', 'G'})
	})
	mux.HandleFunc("/menu.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	})
	mux.HandleFunc("/empty.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><p>Coming soon</p></body></html>"))
	})
	mux.HandleFunc("/big.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(strings.Repeat("Tea 1.00\n", 200)))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testScraper(opts ScraperOptions) *MenuScraper {
	opts.RatePerSecond = 1000
	return NewMenuScraper(opts)
}

func TestMenuScraper_HTML(t *testing.T) {
	server := newMenuServer(t)
	s := testScraper(ScraperOptions{DefaultCurrency: "USD"})

	result, err := s.Scrape(context.Background(), server.URL+"/menu.html")
	require.NoError(t, err)

	assert.Equal(t, "text/html", result.ContentType)
	assert.Equal(t, "parser", result.Extractor)
	assert.NotEmpty(t, result.Body)
	require.Len(t, result.Items, 2)
	assert.Equal(t, server.URL+"/menu.html", result.Items[0].SourceURL)
}

func TestMenuScraper_PrefersExtractor(t *testing.T) {
	server := newMenuServer(t)
	price := 3.0
	extractor := &fakeExtractor{items: []models.MenuItem{{ItemName: "Cortado", Price: &price}}}
	s := testScraper(ScraperOptions{Extractor: extractor})

	result, err := s.Scrape(context.Background(), server.URL+"/menu.html")
	require.NoError(t, err)

	assert.Equal(t, "fake", result.Extractor)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Cortado", result.Items[0].ItemName)
}

func TestMenuScraper_ExtractorFailureFallsBack(t *testing.T) {
	server := newMenuServer(t)
	extractor := &fakeExtractor{err: errors.New("quota exceeded")}
	s := testScraper(ScraperOptions{Extractor: extractor})

	result, err := s.Scrape(context.Background(), server.URL+"/menu.html")
	require.NoError(t, err)

	assert.Equal(t, 1, extractor.calls)
	assert.Equal(t, "parser", result.Extractor)
	assert.Len(t, result.Items, 2)
}

func TestMenuScraper_PlainText(t *testing.T) {
	server := newMenuServer(t)
	s := testScraper(ScraperOptions{DefaultCurrency: "CAD"})

	result, err := s.Scrape(context.Background(), server.URL+"/menu.txt")
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	assert.Equal(t, "Bagels", result.Items[0].Category)
	assert.Equal(t, "CAD", result.Items[0].Currency)
}

func TestMenuScraper_Image(t *testing.T) {
	server := newMenuServer(t)

	t.Run("without ocr", func(t *testing.T) {
		s := testScraper(ScraperOptions{})
		_, err := s.Scrape(context.Background(), server.URL+"/board.png")
		assert.ErrorIs(t, err, ErrUnsupportedContent)
	})

	t.Run("with ocr", func(t *testing.T) {
		s := testScraper(ScraperOptions{OCR: &fakeOCR{text: "DRINKS\nIced Tea $3.00\n"}})
		result, err := s.Scrape(context.Background(), server.URL+"/board.png")
		require.NoError(t, err)

		assert.Equal(t, "ocr", result.Extractor)
		require.Len(t, result.Items, 1)
		assert.InDelta(t, ocrConfidence, result.Items[0].Confidence, 0.001)
	})
}

func TestMenuScraper_Errors(t *testing.T) {
	server := newMenuServer(t)

	tests := []struct {
		name string
		url  string
		opts ScraperOptions
		want error
	}{
		{"not found", server.URL + "/missing", ScraperOptions{}, ErrMenuFetchFailed},
		{"pdf", server.URL + "/menu.pdf", ScraperOptions{}, ErrUnsupportedContent},
		{"no items", server.URL + "/empty.html", ScraperOptions{}, ErrNoMenuItems},
		{"too large", server.URL + "/big.txt", ScraperOptions{MaxBytes: 64}, ErrMenuTooLarge},
		{"bad scheme", "ftp://example.com/menu", ScraperOptions{}, ErrInvalidMenuURL},
		{"empty", "", ScraperOptions{}, ErrInvalidMenuURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testScraper(tt.opts).Scrape(context.Background(), tt.url)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNormalizeMenuURL(t *testing.T) {
	got, err := normalizeMenuURL("  cafe.example.com/menu ")
	require.NoError(t, err)
	assert.Equal(t, "https://cafe.example.com/menu", got)

	got, err = normalizeMenuURL("http://cafe.example.com")
	require.NoError(t, err)
	assert.Equal(t, "http://cafe.example.com", got)
}
