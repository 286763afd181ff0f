package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/foxxcyber/compwatch/internal/models"
)

const (
	defaultMaxMenuBytes = 5 << 20
	scraperUserAgent    = "compwatch-menu-sync/1.0"
	parserExtractorName = "parser"
	ocrExtractorName    = "ocr"
)

var (
	ErrNoMenuSource       = errors.New("competitor has no menu source")
	ErrInvalidMenuURL     = errors.New("menu url must be an absolute http(s) url")
	ErrMenuFetchFailed    = errors.New("menu fetch failed")
	ErrMenuTooLarge       = errors.New("menu document too large")
	ErrUnsupportedContent = errors.New("unsupported menu content type")
	ErrNoMenuItems        = errors.New("no menu items found")
)

// MenuExtractor structures page text into menu items
type MenuExtractor interface {
	Name() string
	ExtractMenu(ctx context.Context, pageText string) ([]models.MenuItem, error)
}

// ImageReader pulls text out of an encoded image
type ImageReader interface {
	ImageText(image []byte) (string, error)
}

// ScraperOptions configures a MenuScraper. Extractor and OCR are optional.
type ScraperOptions struct {
	Timeout         time.Duration
	RatePerSecond   float64
	MaxBytes        int64
	DefaultCurrency string
	Extractor       MenuExtractor
	OCR             ImageReader
	HTTPClient      *http.Client
	Logger          *zap.Logger
}

// ScrapeResult is a fetched and parsed menu document
type ScrapeResult struct {
	SourceURL   string
	ContentType string
	Body        []byte
	Extractor   string
	Items       []models.MenuItem
}

// MenuScraper fetches competitor menu pages and extracts their items.
// All fetches share one rate limiter.
type MenuScraper struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	parser     *MenuParser
	extractor  MenuExtractor
	ocr        ImageReader
	maxBytes   int64
	logger     *zap.Logger
}

// NewMenuScraper creates a scraper
func NewMenuScraper(opts ScraperOptions) *MenuScraper {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 2
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxMenuBytes
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &MenuScraper{
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1),
		parser:     NewMenuParser(opts.DefaultCurrency),
		extractor:  opts.Extractor,
		ocr:        opts.OCR,
		maxBytes:   opts.MaxBytes,
		logger:     opts.Logger,
	}
}

// Scrape downloads sourceURL and extracts its menu items
func (s *MenuScraper) Scrape(ctx context.Context, sourceURL string) (*ScrapeResult, error) {
	sourceURL, err := normalizeMenuURL(sourceURL)
	if err != nil {
		return nil, err
	}

	body, contentType, err := s.fetch(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	result := &ScrapeResult{
		SourceURL:   sourceURL,
		ContentType: contentType,
		Body:        body,
	}

	switch {
	case contentType == "text/html" || contentType == "application/xhtml+xml":
		text, err := ExtractPageText(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		result.Items, result.Extractor = s.extractText(ctx, sourceURL, text)
	case strings.HasPrefix(contentType, "image/"):
		if s.ocr == nil {
			return nil, fmt.Errorf("%w: %s (OCR not configured)", ErrUnsupportedContent, contentType)
		}
		text, err := s.ocr.ImageText(body)
		if err != nil {
			return nil, fmt.Errorf("ocr: %w", err)
		}
		result.Items, result.Extractor = s.parser.Parse(text, true), ocrExtractorName
	case contentType == "text/plain":
		result.Items, result.Extractor = s.parser.Parse(string(body), false), parserExtractorName
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContent, contentType)
	}

	if len(result.Items) == 0 {
		return nil, ErrNoMenuItems
	}

	for i := range result.Items {
		result.Items[i].SourceURL = sourceURL
	}

	return result, nil
}

// extractText prefers the configured extractor and falls back to the parser
func (s *MenuScraper) extractText(ctx context.Context, sourceURL, text string) ([]models.MenuItem, string) {
	if s.extractor != nil {
		items, err := s.extractor.ExtractMenu(ctx, text)
		if err == nil && len(items) > 0 {
			return items, s.extractor.Name()
		}
		s.logger.Warn("menu extractor failed, using parser",
			zap.String("extractor", s.extractor.Name()),
			zap.String("url", sourceURL),
			zap.Error(err),
		)
	}
	return s.parser.Parse(text, false), parserExtractorName
}

func (s *MenuScraper) fetch(ctx context.Context, sourceURL string) ([]byte, string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", scraperUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain,image/*;q=0.8")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMenuFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("%w: status %d", ErrMenuFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMenuFetchFailed, err)
	}
	if int64(len(body)) > s.maxBytes {
		return nil, "", ErrMenuTooLarge
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = http.DetectContentType(body)
		mediaType, _, _ = mime.ParseMediaType(mediaType)
	}

	return body, strings.ToLower(mediaType), nil
}

// normalizeMenuURL accepts bare hosts like "cafe.example.com/menu" as https
func normalizeMenuURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw != "" && !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", ErrInvalidMenuURL
	}
	return u.String(), nil
}
