// Package setup runs the competitor tracking workflow on the client side:
// load the business profile, search for candidates, edit the selection,
// commit it, then sync every tracked competitor's menu.
package setup

import (
	"context"
	"errors"
	"strings"

	"github.com/foxxcyber/compwatch/internal/client"
	"github.com/foxxcyber/compwatch/internal/models"
)

// API is the part of the REST client the workflow calls. *client.Client implements it.
type API interface {
	BusinessProfile(ctx context.Context) (*models.BusinessProfile, error)
	UpdateBusinessProfile(ctx context.Context, req *models.BusinessProfileRequest) (*models.BusinessProfile, error)
	SearchCompetitors(ctx context.Context, req models.CompetitorSearchRequest) ([]models.CandidateCompetitor, error)
	SetTrackingStatus(ctx context.Context, enabled bool) error
	BulkSelect(ctx context.Context, selectedIDs, unselectedIDs []int) (*models.BulkSelectResult, error)
	AddCompetitor(ctx context.Context, req *models.ManualCompetitorRequest) (*models.Competitor, error)
	ListCompetitors(ctx context.Context, includeUnselected bool) ([]*models.Competitor, error)
	FetchMenu(ctx context.Context, id int, forceRefresh bool) (*models.MenuBatch, error)
}

var (
	ErrProfileRequired = errors.New("business profile is required")
	ErrSearchInput     = errors.New("business type and location are required")
	ErrNothingSelected = errors.New("select at least one competitor to track")
)

// EnsureProfile returns the caller's business profile, creating it from
// defaults when none exists yet. A nil defaults turns a missing profile into
// ErrProfileRequired.
func EnsureProfile(ctx context.Context, api API, defaults *models.BusinessProfileRequest) (*models.BusinessProfile, error) {
	profile, err := api.BusinessProfile(ctx)
	if err == nil {
		return profile, nil
	}
	if !client.IsNotFound(err) {
		return nil, err
	}
	if defaults == nil {
		return nil, ErrProfileRequired
	}
	return api.UpdateBusinessProfile(ctx, defaults)
}

// SearchTerms derives the competitor search input from a profile
func SearchTerms(p *models.BusinessProfile) (businessType, location string) {
	return strings.TrimSpace(p.Industry), p.Location()
}

// SearchCandidates runs a staging-only search and marks every hit selected.
// Empty results are not an error; they produce an info notification.
func SearchCandidates(ctx context.Context, api API, businessType, location string, n Notifier) ([]models.CandidateCompetitor, error) {
	businessType = strings.TrimSpace(businessType)
	location = strings.TrimSpace(location)
	if businessType == "" || location == "" {
		n.Notify(LevelWarning, ErrSearchInput.Error())
		return nil, ErrSearchInput
	}

	candidates, err := api.SearchCompetitors(ctx, models.CompetitorSearchRequest{
		BusinessType: businessType,
		Location:     location,
		SaveToDB:     false,
	})
	if err != nil {
		n.Notify(LevelWarning, "competitor search failed: "+client.UserMessage(err))
		return nil, err
	}

	if len(candidates) == 0 {
		n.Notify(LevelInfo, "no competitors found")
		return []models.CandidateCompetitor{}, nil
	}

	for i := range candidates {
		candidates[i].Selected = true
	}
	return candidates, nil
}
