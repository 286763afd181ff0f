package setup_test

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/foxxcyber/compwatch/internal/client"
	"github.com/foxxcyber/compwatch/internal/models"
)

// fakeAPI records every call and answers from canned data
type fakeAPI struct {
	mu sync.Mutex

	calls       []string
	profile     *models.BusinessProfile
	candidates  []models.CandidateCompetitor
	competitors []*models.Competitor
	nextID      int

	trackingErr error
	bulkErr     error
	addErr      map[string]error // by candidate name
	fetchErr    map[int]error

	tracking   bool
	bulk       []models.BulkSelectRequest
	added      []*models.ManualCompetitorRequest
	fetchForce []bool
	fetchHook  func(ctx context.Context, id int) error
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) BusinessProfile(ctx context.Context) (*models.BusinessProfile, error) {
	f.record("profile")
	if f.profile == nil {
		return nil, &client.APIError{StatusCode: http.StatusNotFound, Message: "business profile not found"}
	}
	return f.profile, nil
}

func (f *fakeAPI) UpdateBusinessProfile(ctx context.Context, req *models.BusinessProfileRequest) (*models.BusinessProfile, error) {
	f.record("update-profile")
	f.profile = &models.BusinessProfile{ID: 1, Name: req.Name, Industry: req.Industry, City: req.City, State: req.State}
	return f.profile, nil
}

func (f *fakeAPI) SearchCompetitors(ctx context.Context, req models.CompetitorSearchRequest) ([]models.CandidateCompetitor, error) {
	f.record("search")
	out := append([]models.CandidateCompetitor(nil), f.candidates...)
	return out, nil
}

func (f *fakeAPI) SetTrackingStatus(ctx context.Context, enabled bool) error {
	f.record("tracking")
	if f.trackingErr != nil {
		return f.trackingErr
	}
	f.mu.Lock()
	f.tracking = enabled
	f.mu.Unlock()
	return nil
}

func (f *fakeAPI) BulkSelect(ctx context.Context, selectedIDs, unselectedIDs []int) (*models.BulkSelectResult, error) {
	f.record("bulk-select")
	if f.bulkErr != nil {
		return nil, f.bulkErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulk = append(f.bulk, models.BulkSelectRequest{SelectedIDs: selectedIDs, UnselectedIDs: unselectedIDs})
	return &models.BulkSelectResult{Selected: len(selectedIDs), Unselected: len(unselectedIDs)}, nil
}

func (f *fakeAPI) AddCompetitor(ctx context.Context, req *models.ManualCompetitorRequest) (*models.Competitor, error) {
	f.record("manually-add")
	if err := f.addErr[req.Name]; err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.added = append(f.added, req)
	return &models.Competitor{ID: 100 + f.nextID, Name: req.Name, IsSelected: req.IsSelected}, nil
}

func (f *fakeAPI) ListCompetitors(ctx context.Context, includeUnselected bool) ([]*models.Competitor, error) {
	f.record("list")
	return f.competitors, nil
}

func (f *fakeAPI) FetchMenu(ctx context.Context, id int, forceRefresh bool) (*models.MenuBatch, error) {
	f.record("fetch-menu/" + strconv.Itoa(id))
	f.mu.Lock()
	f.fetchForce = append(f.fetchForce, forceRefresh)
	f.mu.Unlock()

	if f.fetchHook != nil {
		if err := f.fetchHook(ctx, id); err != nil {
			return nil, err
		}
	}
	if err := f.fetchErr[id]; err != nil {
		return nil, err
	}
	return &models.MenuBatch{CompetitorID: id, Items: []models.MenuItem{{ItemName: "Latte"}}}, nil
}
