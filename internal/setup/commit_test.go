package setup_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/foxxcyber/compwatch/internal/client"
	"github.com/foxxcyber/compwatch/internal/models"
	"github.com/foxxcyber/compwatch/internal/setup"
)

func TestCommit_NothingSelected(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeAPI{}
	rec := &setup.Recorder{}
	candidates := []models.CandidateCompetitor{
		{ID: "place-a", Name: "Bean There"},
		{ID: "7", Name: "Daily Grind"},
	}

	result, err := setup.Commit(t.Context(), api, candidates, rec)

	assert.ErrorIs(t, err, setup.ErrNothingSelected)
	assert.Nil(t, result)
	assert.Empty(t, api.Calls(), "no network calls")
	assert.Equal(t, 1, rec.Count(setup.LevelWarning))
}

func TestCommit_PartitionsCandidates(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeAPI{}
	rec := &setup.Recorder{}
	distance := 0.8
	candidates := []models.CandidateCompetitor{
		{ID: "3", Name: "Saved Selected", Selected: true},
		{ID: "4", Name: "Saved Dropped", Selected: false},
		{ID: "place-abc", Name: "New Hit", Distance: &distance, Selected: true},
		{ID: "place-def", Name: "Unwanted Hit", Selected: false},
		{ID: "manual-1700000000000", Name: "Typed In", MenuURL: "https://typed.example/menu", Selected: true},
		{ID: "manual-1700000000001", Name: "Typed Then Dropped", Selected: false},
	}

	result, err := setup.Commit(t.Context(), api, candidates, rec)
	require.NoError(t, err)

	calls := api.Calls()
	assert.Equal(t, "tracking", calls[0], "tracking is enabled first")
	assert.True(t, api.tracking)

	require.Len(t, api.bulk, 1, "one bulk round trip")
	assert.Equal(t, []int{3}, api.bulk[0].SelectedIDs)
	assert.Equal(t, []int{4}, api.bulk[0].UnselectedIDs)

	require.Len(t, api.added, 2, "only selected candidates without a server id are created")
	byName := map[string]*models.ManualCompetitorRequest{}
	for _, req := range api.added {
		assert.True(t, req.IsSelected)
		byName[req.Name] = req
	}
	require.Contains(t, byName, "New Hit")
	require.NotNil(t, byName["New Hit"].GooglePlaceID)
	assert.Equal(t, "abc", *byName["New Hit"].GooglePlaceID)
	assert.Equal(t, &distance, byName["New Hit"].DistanceKm)
	require.Contains(t, byName, "Typed In")
	assert.Nil(t, byName["Typed In"].GooglePlaceID)
	assert.Equal(t, "https://typed.example/menu", byName["Typed In"].MenuURL)

	assert.Len(t, result.Created, 2)
	assert.Equal(t, 1, result.Bulk.Selected)
	assert.Empty(t, result.Failures)
	assert.Equal(t, 1, rec.Count(setup.LevelSuccess))
}

func TestCommit_CreationFailuresAreBestEffort(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeAPI{addErr: map[string]error{
		"Second": &client.APIError{StatusCode: http.StatusBadRequest, Message: "name is required"},
	}}
	rec := &setup.Recorder{}
	candidates := []models.CandidateCompetitor{
		{ID: "place-1", Name: "First", Selected: true},
		{ID: "place-2", Name: "Second", Selected: true},
		{ID: "place-3", Name: "Third", Selected: true},
	}

	result, err := setup.Commit(t.Context(), api, candidates, rec)
	require.NoError(t, err)

	assert.Len(t, result.Created, 2)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "Second", result.Failures[0].Candidate.Name)
	assert.Contains(t, rec.Entries(), setup.Notification{Level: setup.LevelError, Message: "could not add Second: name is required"})
	assert.NotContains(t, api.Calls(), "bulk-select", "no server ids, no bulk call")
}

func TestCommit_BulkFailureStillCreates(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeAPI{bulkErr: errors.New("connection reset")}
	rec := &setup.Recorder{}
	candidates := []models.CandidateCompetitor{
		{ID: "5", Name: "Saved", Selected: true},
		{ID: "place-x", Name: "Fresh", Selected: true},
	}

	result, err := setup.Commit(t.Context(), api, candidates, rec)

	require.Error(t, err)
	require.NotNil(t, result)
	assert.Len(t, result.Created, 1)
	assert.Nil(t, result.Bulk)
	assert.Contains(t, rec.Entries(), setup.Notification{Level: setup.LevelError, Message: "could not update saved competitors: request failed, please try again"})
}

func TestCommit_TrackingFailureStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeAPI{trackingErr: &client.APIError{StatusCode: http.StatusInternalServerError, Message: "failed to update tracking status"}}
	rec := &setup.Recorder{}

	_, err := setup.Commit(t.Context(), api, []models.CandidateCompetitor{{ID: "place-1", Name: "First", Selected: true}}, rec)

	require.Error(t, err)
	assert.Equal(t, []string{"tracking"}, api.Calls())
	assert.Equal(t, 1, rec.Count(setup.LevelError))
}
