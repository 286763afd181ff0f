// Package testutil holds in-memory stand-ins for the database and the
// outbound services, plus a helper that serves the full API over httptest.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/foxxcyber/compwatch/internal/database"
	"github.com/foxxcyber/compwatch/internal/models"
)

// MemStore is an in-memory implementation of the handler Store
type MemStore struct {
	mu          sync.Mutex
	nextID      int
	users       map[int]*models.User
	profiles    map[int]*models.BusinessProfile
	competitors map[int]*models.Competitor
	batches     map[int][]*models.MenuBatch // by competitor id, oldest first
}

// NewMemStore creates an empty store
func NewMemStore() *MemStore {
	return &MemStore{
		users:       make(map[int]*models.User),
		profiles:    make(map[int]*models.BusinessProfile),
		competitors: make(map[int]*models.Competitor),
		batches:     make(map[int][]*models.MenuBatch),
	}
}

func (s *MemStore) id() int {
	s.nextID++
	return s.nextID
}

func (s *MemStore) CreateUser(ctx context.Context, email, passwordHash string, username *string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return nil, database.ErrEmailExists
		}
		if username != nil && u.Username != nil && strings.EqualFold(*u.Username, *username) {
			return nil, database.ErrUsernameExists
		}
	}

	now := time.Now()
	u := &models.User{
		ID:           s.id(),
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		Username:     username,
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (s *MemStore) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, database.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrUserNotFound
}

func (s *MemStore) UpdateUserLastLogin(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return database.ErrUserNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	return nil
}

func (s *MemStore) GetTrackingEnabled(ctx context.Context, userID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return false, database.ErrUserNotFound
	}
	return u.TrackingEnabled, nil
}

func (s *MemStore) SetTrackingEnabled(ctx context.Context, userID int, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return database.ErrUserNotFound
	}
	u.TrackingEnabled = enabled
	return nil
}

func (s *MemStore) GetBusinessProfile(ctx context.Context, userID int) (*models.BusinessProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, database.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemStore) UpsertBusinessProfile(ctx context.Context, userID int, req *models.BusinessProfileRequest) (*models.BusinessProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	p, ok := s.profiles[userID]
	if !ok {
		p = &models.BusinessProfile{ID: s.id(), UserID: userID, CreatedAt: now}
		s.profiles[userID] = p
	}
	p.Name = strings.TrimSpace(req.Name)
	p.Industry = strings.TrimSpace(req.Industry)
	p.StreetAddress = strings.TrimSpace(req.StreetAddress)
	p.City = strings.TrimSpace(req.City)
	p.State = strings.ToUpper(strings.TrimSpace(req.State))
	p.ZipCode = strings.TrimSpace(req.ZipCode)
	if req.Latitude != nil {
		p.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		p.Longitude = req.Longitude
	}
	p.UpdatedAt = now

	cp := *p
	return &cp, nil
}

func (s *MemStore) ListCompetitors(ctx context.Context, userID int, params *models.CompetitorListParams) ([]*models.Competitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*models.Competitor{}
	for _, c := range s.competitors {
		if c.UserID != userID {
			continue
		}
		if (params == nil || !params.IncludeUnselected) && !c.IsSelected {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.DistanceKm != nil && b.DistanceKm == nil:
			return true
		case a.DistanceKm == nil && b.DistanceKm != nil:
			return false
		case a.DistanceKm != nil && *a.DistanceKm != *b.DistanceKm:
			return *a.DistanceKm < *b.DistanceKm
		case a.Name != b.Name:
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})

	return out, nil
}

func (s *MemStore) GetCompetitor(ctx context.Context, userID, id int) (*models.Competitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.competitors[id]
	if !ok || c.UserID != userID {
		return nil, database.ErrCompetitorNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *MemStore) FindCompetitorIDsByPlace(ctx context.Context, userID int, placeIDs []string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := make(map[string]int)
	for _, pid := range placeIDs {
		if c := s.byPlace(userID, pid); c != nil {
			found[pid] = c.ID
		}
	}
	return found, nil
}

func (s *MemStore) byPlace(userID int, placeID string) *models.Competitor {
	if placeID == "" {
		return nil
	}
	for _, c := range s.competitors {
		if c.UserID == userID && c.GooglePlaceID != nil && *c.GooglePlaceID == placeID {
			return c
		}
	}
	return nil
}

func (s *MemStore) CreateCompetitor(ctx context.Context, userID int, req *models.ManualCompetitorRequest) (*models.Competitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var placeID *string
	if req.GooglePlaceID != nil && strings.TrimSpace(*req.GooglePlaceID) != "" {
		p := strings.TrimSpace(*req.GooglePlaceID)
		placeID = &p
	}

	if placeID != nil {
		if c := s.byPlace(userID, *placeID); c != nil {
			c.Name = strings.TrimSpace(req.Name)
			mergeString(&c.Address, req.Address)
			mergeString(&c.Category, req.Category)
			mergeString(&c.Website, req.Website)
			mergeString(&c.MenuURL, req.MenuURL)
			if req.Latitude != nil {
				c.Latitude = req.Latitude
			}
			if req.Longitude != nil {
				c.Longitude = req.Longitude
			}
			if req.DistanceKm != nil {
				c.DistanceKm = req.DistanceKm
			}
			c.IsSelected = c.IsSelected || req.IsSelected
			c.UpdatedAt = now
			cp := *c
			return &cp, nil
		}
	}

	c := &models.Competitor{
		ID:            s.id(),
		UserID:        userID,
		Name:          strings.TrimSpace(req.Name),
		Address:       strings.TrimSpace(req.Address),
		Category:      strings.TrimSpace(req.Category),
		Website:       strings.TrimSpace(req.Website),
		MenuURL:       strings.TrimSpace(req.MenuURL),
		GooglePlaceID: placeID,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		DistanceKm:    req.DistanceKm,
		IsSelected:    req.IsSelected,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.competitors[c.ID] = c
	cp := *c
	return &cp, nil
}

func mergeString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func (s *MemStore) UpdateCompetitor(ctx context.Context, userID, id int, req *models.UpdateCompetitorRequest) (*models.Competitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.competitors[id]
	if !ok || c.UserID != userID {
		return nil, database.ErrCompetitorNotFound
	}
	for dst, src := range map[*string]*string{
		&c.Name: req.Name, &c.Address: req.Address, &c.Category: req.Category,
		&c.Website: req.Website, &c.MenuURL: req.MenuURL,
	} {
		if src != nil {
			*dst = *src
		}
	}
	if req.IsSelected != nil {
		c.IsSelected = *req.IsSelected
	}
	c.UpdatedAt = time.Now()

	cp := *c
	return &cp, nil
}

func (s *MemStore) BulkSelect(ctx context.Context, userID int, selectedIDs, unselectedIDs []int) (*models.BulkSelectResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &models.BulkSelectResult{}
	for _, id := range selectedIDs {
		if c, ok := s.competitors[id]; ok && c.UserID == userID {
			c.IsSelected = true
			result.Selected++
		}
	}
	for _, id := range unselectedIDs {
		if c, ok := s.competitors[id]; ok && c.UserID == userID {
			c.IsSelected = false
			result.Unselected++
		}
	}
	return result, nil
}

func (s *MemStore) DeleteCompetitor(ctx context.Context, userID, id int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.competitors[id]
	if !ok || c.UserID != userID {
		return nil, database.ErrCompetitorNotFound
	}

	var keys []string
	for _, b := range s.batches[id] {
		if b.SnapshotKey != nil {
			keys = append(keys, *b.SnapshotKey)
		}
	}
	delete(s.batches, id)
	delete(s.competitors, id)
	return keys, nil
}

func (s *MemStore) SaveMenuBatch(ctx context.Context, batch *models.MenuBatch, retention int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.competitors[batch.CompetitorID]
	if !ok {
		return nil, database.ErrCompetitorNotFound
	}

	cp := *batch
	cp.Items = make([]models.MenuItem, len(batch.Items))
	copy(cp.Items, batch.Items)
	for i := range cp.Items {
		cp.Items[i].ID = s.id()
	}
	s.batches[batch.CompetitorID] = append(s.batches[batch.CompetitorID], &cp)

	ts := batch.SyncTimestamp
	c.LastSyncedAt = &ts

	var pruned []string
	all := s.batches[batch.CompetitorID]
	sort.SliceStable(all, func(i, j int) bool { return all[i].SyncTimestamp.Before(all[j].SyncTimestamp) })
	if retention > 0 && len(all) > retention {
		for _, old := range all[:len(all)-retention] {
			if old.SnapshotKey != nil {
				pruned = append(pruned, *old.SnapshotKey)
			}
		}
		s.batches[batch.CompetitorID] = all[len(all)-retention:]
	}

	return pruned, nil
}

func (s *MemStore) GetLatestMenuBatch(ctx context.Context, userID, competitorID int) (*models.MenuBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.competitors[competitorID]
	if !ok || c.UserID != userID || len(s.batches[competitorID]) == 0 {
		return nil, database.ErrMenuNotFound
	}

	all := s.batches[competitorID]
	latest := *all[len(all)-1]
	latest.Items = append([]models.MenuItem{}, latest.Items...)
	return &latest, nil
}

func (s *MemStore) ListMenuBatches(ctx context.Context, userID, competitorID, limit int) ([]*models.MenuBatchSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*models.MenuBatchSummary{}
	c, ok := s.competitors[competitorID]
	if !ok || c.UserID != userID {
		return out, nil
	}

	all := s.batches[competitorID]
	for i := len(all) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		b := all[i]
		out = append(out, &models.MenuBatchSummary{
			BatchID:       b.BatchID,
			CompetitorID:  b.CompetitorID,
			SourceURL:     b.SourceURL,
			Extractor:     b.Extractor,
			ItemCount:     len(b.Items),
			SyncTimestamp: b.SyncTimestamp,
		})
	}
	return out, nil
}

// CompetitorCount returns how many competitors userID owns, for assertions
func (s *MemStore) CompetitorCount(userID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, c := range s.competitors {
		if c.UserID == userID {
			n++
		}
	}
	return n
}
