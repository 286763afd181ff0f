package setup_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/foxxcyber/compwatch/internal/client"
	"github.com/foxxcyber/compwatch/internal/models"
	"github.com/foxxcyber/compwatch/internal/setup"
)

func threeCompetitors() []*models.Competitor {
	return []*models.Competitor{
		{ID: 1, Name: "Bean There", IsSelected: true},
		{ID: 2, Name: "Daily Grind", IsSelected: true},
		{ID: 3, Name: "Brew Lab", IsSelected: true},
	}
}

func TestSyncRunner_SecondFailureDoesNotAbort(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeAPI{
		competitors: threeCompetitors(),
		fetchErr: map[int]error{
			2: &client.APIError{StatusCode: http.StatusBadGateway, Message: "menu fetch failed: status 503"},
		},
	}
	rec := &setup.Recorder{}
	runner := setup.NewSyncRunner(api, rec, time.Second, time.Millisecond)

	reports, err := runner.Run(t.Context())
	require.NoError(t, err)

	require.Len(t, reports, 3)
	assert.True(t, reports[0].OK())
	assert.False(t, reports[1].OK())
	assert.True(t, reports[2].OK())

	assert.Equal(t, []string{"list", "fetch-menu/1", "fetch-menu/2", "fetch-menu/3"}, api.Calls())
	assert.Equal(t, []bool{true, true, true}, api.fetchForce, "every sync forces a refresh")
	assert.Equal(t, []setup.Notification{
		{Level: setup.LevelSuccess, Message: "synced menu for Bean There (1 items)"},
		{Level: setup.LevelError, Message: "menu sync failed for Daily Grind: menu fetch failed: status 503"},
		{Level: setup.LevelSuccess, Message: "synced menu for Brew Lab (1 items)"},
	}, rec.Entries())
}

func TestSyncRunner_PerCallTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeAPI{
		competitors: threeCompetitors()[:2],
		fetchHook: func(ctx context.Context, id int) error {
			if id != 1 {
				return nil
			}
			<-ctx.Done()
			return ctx.Err()
		},
	}
	rec := &setup.Recorder{}
	runner := setup.NewSyncRunner(api, rec, 20*time.Millisecond, time.Millisecond)

	reports, err := runner.Run(t.Context())
	require.NoError(t, err)

	require.Len(t, reports, 2)
	assert.ErrorIs(t, reports[0].Err, context.DeadlineExceeded)
	assert.True(t, reports[1].OK(), "a timeout only fails its own call")
	assert.Equal(t, "menu sync failed for Bean There: timed out", rec.Entries()[0].Message)
}

func TestSyncRunner_PausesBetweenCalls(t *testing.T) {
	defer goleak.VerifyNone(t)

	var stamps []time.Time
	api := &fakeAPI{
		competitors: threeCompetitors(),
		fetchHook: func(ctx context.Context, id int) error {
			stamps = append(stamps, time.Now())
			return nil
		},
	}
	runner := setup.NewSyncRunner(api, &setup.Recorder{}, time.Second, 30*time.Millisecond)

	_, err := runner.Run(t.Context())
	require.NoError(t, err)

	require.Len(t, stamps, 3)
	for i := 1; i < len(stamps); i++ {
		assert.GreaterOrEqual(t, stamps[i].Sub(stamps[i-1]), 30*time.Millisecond)
	}
}

func TestSyncRunner_CancelDuringPause(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(t.Context())
	api := &fakeAPI{
		competitors: threeCompetitors(),
		fetchHook: func(context.Context, int) error {
			cancel()
			return nil
		},
	}
	runner := setup.NewSyncRunner(api, &setup.Recorder{}, time.Second, time.Hour)

	reports, err := runner.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, reports, 1)
}

func TestSyncRunner_NothingToSync(t *testing.T) {
	api := &fakeAPI{}
	rec := &setup.Recorder{}

	reports, err := setup.NewSyncRunner(api, rec, 0, 0).Run(t.Context())

	require.NoError(t, err)
	assert.Empty(t, reports)
	assert.Equal(t, []string{"list"}, api.Calls())
	assert.Equal(t, 1, rec.Count(setup.LevelInfo))
}
