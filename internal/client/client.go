// Package client is a typed client for the compwatch REST API. Protected
// calls read the bearer token from a local KeyValueStore and fail with
// ErrAuthRequired, without touching the network, when none is stored.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/foxxcyber/compwatch/internal/models"
)

// Client talks to the API server
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      KeyValueStore
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the request logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for baseURL that keeps its token in store
func New(baseURL string, store KeyValueStore, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		store:      store,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *Client) token() (string, error) {
	token, ok, err := c.store.Get(TokenKey)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	if !ok || token == "" {
		return "", ErrAuthRequired
	}
	return token, nil
}

// Authenticated reports whether a token is stored
func (c *Client) Authenticated() bool {
	_, err := c.token()
	return err == nil
}

func (c *Client) do(ctx context.Context, method, path string, authed bool, body, out any) error {
	var token string
	if authed {
		t, err := c.token()
		if err != nil {
			return err
		}
		token = t
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{StatusCode: resp.StatusCode}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Error}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

// Register creates an account and stores the returned token
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", false, req, &resp); err != nil {
		return nil, err
	}
	if err := c.store.Set(TokenKey, resp.Token); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	return &resp, nil
}

// Login authenticates and stores the returned token
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	req := models.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", false, req, &resp); err != nil {
		return nil, err
	}
	if err := c.store.Set(TokenKey, resp.Token); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	return &resp, nil
}

// Logout forgets the stored token
func (c *Client) Logout() error {
	return c.store.Delete(TokenKey)
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", true, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) TrackingStatus(ctx context.Context) (bool, error) {
	var status models.TrackingStatus
	if err := c.do(ctx, http.MethodGet, "/api/tracking-status", true, nil, &status); err != nil {
		return false, err
	}
	return status.Enabled, nil
}

func (c *Client) SetTrackingStatus(ctx context.Context, enabled bool) error {
	return c.do(ctx, http.MethodPut, "/api/tracking-status", true, models.TrackingStatus{Enabled: enabled}, nil)
}

func (c *Client) BusinessProfile(ctx context.Context) (*models.BusinessProfile, error) {
	var profile models.BusinessProfile
	if err := c.do(ctx, http.MethodGet, "/api/business-profile", true, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) UpdateBusinessProfile(ctx context.Context, req *models.BusinessProfileRequest) (*models.BusinessProfile, error) {
	var profile models.BusinessProfile
	if err := c.do(ctx, http.MethodPut, "/api/business-profile", true, req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SearchCompetitors runs a competitor search. Results are staging-only unless SaveToDB is set.
func (c *Client) SearchCompetitors(ctx context.Context, req models.CompetitorSearchRequest) ([]models.CandidateCompetitor, error) {
	var candidates []models.CandidateCompetitor
	if err := c.do(ctx, http.MethodPost, "/api/competitors/search", true, req, &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

func (c *Client) BulkSelect(ctx context.Context, selectedIDs, unselectedIDs []int) (*models.BulkSelectResult, error) {
	req := models.BulkSelectRequest{SelectedIDs: selectedIDs, UnselectedIDs: unselectedIDs}
	var result models.BulkSelectResult
	if err := c.do(ctx, http.MethodPost, "/api/competitors/bulk-select", true, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AddCompetitor persists one competitor through the manually-add endpoint
func (c *Client) AddCompetitor(ctx context.Context, req *models.ManualCompetitorRequest) (*models.Competitor, error) {
	var comp models.Competitor
	if err := c.do(ctx, http.MethodPost, "/api/competitors/manually-add", true, req, &comp); err != nil {
		return nil, err
	}
	return &comp, nil
}

func (c *Client) ListCompetitors(ctx context.Context, includeUnselected bool) ([]*models.Competitor, error) {
	path := "/api/competitors"
	if includeUnselected {
		path += "?" + url.Values{"include_unselected": {"true"}}.Encode()
	}

	var competitors []*models.Competitor
	if err := c.do(ctx, http.MethodGet, path, true, nil, &competitors); err != nil {
		return nil, err
	}
	return competitors, nil
}

func (c *Client) GetCompetitor(ctx context.Context, id int) (*models.Competitor, error) {
	var comp models.Competitor
	if err := c.do(ctx, http.MethodGet, competitorPath(id), true, nil, &comp); err != nil {
		return nil, err
	}
	return &comp, nil
}

func (c *Client) UpdateCompetitor(ctx context.Context, id int, req *models.UpdateCompetitorRequest) (*models.Competitor, error) {
	var comp models.Competitor
	if err := c.do(ctx, http.MethodPut, competitorPath(id), true, req, &comp); err != nil {
		return nil, err
	}
	return &comp, nil
}

// DeleteCompetitor removes a competitor; its menus go with it
func (c *Client) DeleteCompetitor(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, competitorPath(id), true, nil, nil)
}

// FetchMenu triggers a scrape of the competitor's menu
func (c *Client) FetchMenu(ctx context.Context, id int, forceRefresh bool) (*models.MenuBatch, error) {
	var batch models.MenuBatch
	path := "/api/competitors/fetch-menu/" + strconv.Itoa(id)
	if err := c.do(ctx, http.MethodPost, path, true, models.FetchMenuRequest{ForceRefresh: forceRefresh}, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// StoredMenu returns the newest stored batch without scraping
func (c *Client) StoredMenu(ctx context.Context, id int) (*models.MenuBatch, error) {
	var batch models.MenuBatch
	path := "/api/competitors/get-stored-menu/" + strconv.Itoa(id)
	if err := c.do(ctx, http.MethodGet, path, true, nil, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

func (c *Client) MenuBatches(ctx context.Context, id, limit int) ([]*models.MenuBatchSummary, error) {
	path := competitorPath(id) + "/menu-batches"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}

	var batches []*models.MenuBatchSummary
	if err := c.do(ctx, http.MethodGet, path, true, nil, &batches); err != nil {
		return nil, err
	}
	return batches, nil
}

func competitorPath(id int) string {
	return "/api/competitors/" + strconv.Itoa(id)
}
