package setup

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/foxxcyber/compwatch/internal/client"
	"github.com/foxxcyber/compwatch/internal/models"
)

// CommitFailure is a candidate whose creation request failed
type CommitFailure struct {
	Candidate models.CandidateCompetitor
	Err       error
}

// CommitResult summarizes what a commit persisted
type CommitResult struct {
	Bulk     *models.BulkSelectResult
	Created  []*models.Competitor
	Failures []CommitFailure
}

// Commit persists the selection. It enables tracking, then in parallel sends
// one bulk-select for candidates that already have a server id and one
// manually-add per selected candidate that does not. Creation failures are
// reported and collected without stopping the others. Nothing is rolled back.
func Commit(ctx context.Context, api API, candidates []models.CandidateCompetitor, n Notifier) (*CommitResult, error) {
	var (
		selectedIDs   []int
		unselectedIDs []int
		creates       []models.CandidateCompetitor
	)
	for _, c := range candidates {
		if id, ok := c.ServerID(); ok {
			if c.Selected {
				selectedIDs = append(selectedIDs, id)
			} else {
				unselectedIDs = append(unselectedIDs, id)
			}
			continue
		}
		if c.Selected {
			creates = append(creates, c)
		}
	}

	if len(selectedIDs)+len(creates) == 0 {
		n.Notify(LevelWarning, ErrNothingSelected.Error())
		return nil, ErrNothingSelected
	}

	if err := api.SetTrackingStatus(ctx, true); err != nil {
		n.Notify(LevelError, "could not enable tracking: "+client.UserMessage(err))
		return nil, fmt.Errorf("enable tracking: %w", err)
	}

	result := &CommitResult{}
	created := make([]*models.Competitor, len(creates))

	var mu sync.Mutex
	addFailure := func(c models.CandidateCompetitor, err error) {
		mu.Lock()
		result.Failures = append(result.Failures, CommitFailure{Candidate: c, Err: err})
		mu.Unlock()
		n.Notify(LevelError, fmt.Sprintf("could not add %s: %s", c.Name, client.UserMessage(err)))
	}

	var eg errgroup.Group

	if len(selectedIDs)+len(unselectedIDs) > 0 {
		eg.Go(func() error {
			bulk, err := api.BulkSelect(ctx, selectedIDs, unselectedIDs)
			if err != nil {
				n.Notify(LevelError, "could not update saved competitors: "+client.UserMessage(err))
				return fmt.Errorf("bulk select: %w", err)
			}
			result.Bulk = bulk
			return nil
		})
	}

	for i, c := range creates {
		eg.Go(func() error {
			comp, err := api.AddCompetitor(ctx, createRequest(c))
			if err != nil {
				addFailure(c, err)
				return nil
			}
			created[i] = comp
			return nil
		})
	}

	err := eg.Wait()

	for _, comp := range created {
		if comp != nil {
			result.Created = append(result.Created, comp)
		}
	}

	tracked := len(result.Created)
	if result.Bulk != nil {
		tracked += result.Bulk.Selected
	}
	if tracked > 0 {
		n.Notify(LevelSuccess, fmt.Sprintf("tracking %d competitors", tracked))
	}

	return result, err
}

func createRequest(c models.CandidateCompetitor) *models.ManualCompetitorRequest {
	req := &models.ManualCompetitorRequest{
		Name:       c.Name,
		Address:    c.Address,
		Category:   c.Category,
		Website:    c.Website,
		MenuURL:    c.MenuURL,
		DistanceKm: c.Distance,
		IsSelected: true,
	}
	if placeID := c.GooglePlaceID(); placeID != "" {
		req.GooglePlaceID = &placeID
	}
	return req
}
