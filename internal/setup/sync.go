package setup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/foxxcyber/compwatch/internal/client"
	"github.com/foxxcyber/compwatch/internal/models"
)

const (
	DefaultSyncTimeout = 90 * time.Second
	DefaultSyncPause   = time.Second
)

// SyncReport is the outcome of one fetch-menu call
type SyncReport struct {
	CompetitorID int
	Name         string
	Batch        *models.MenuBatch
	Err          error
}

// OK reports whether the fetch succeeded
func (r SyncReport) OK() bool { return r.Err == nil }

// SyncRunner fetches competitor menus one at a time with a pause between calls
type SyncRunner struct {
	api      API
	notifier Notifier
	timeout  time.Duration
	pause    time.Duration
}

// NewSyncRunner creates a runner. Zero durations use the defaults.
func NewSyncRunner(api API, n Notifier, timeout, pause time.Duration) *SyncRunner {
	if timeout <= 0 {
		timeout = DefaultSyncTimeout
	}
	if pause < 0 {
		pause = 0
	} else if pause == 0 {
		pause = DefaultSyncPause
	}
	return &SyncRunner{api: api, notifier: n, timeout: timeout, pause: pause}
}

// Run re-fetches the tracked competitor list and syncs each one
func (r *SyncRunner) Run(ctx context.Context) ([]SyncReport, error) {
	competitors, err := r.api.ListCompetitors(ctx, false)
	if err != nil {
		r.notifier.Notify(LevelError, "could not load competitors: "+client.UserMessage(err))
		return nil, err
	}
	if len(competitors) == 0 {
		r.notifier.Notify(LevelInfo, "no tracked competitors to sync")
		return nil, nil
	}
	return r.RunFor(ctx, competitors)
}

// RunFor syncs competitors in order. A failed fetch is reported and the loop
// moves on; only cancellation of ctx stops it early.
func (r *SyncRunner) RunFor(ctx context.Context, competitors []*models.Competitor) ([]SyncReport, error) {
	reports := make([]SyncReport, 0, len(competitors))

	for i, comp := range competitors {
		if i > 0 {
			if err := r.wait(ctx); err != nil {
				return reports, err
			}
		}

		report := r.syncOne(ctx, comp)
		reports = append(reports, report)

		if report.OK() {
			r.notifier.Notify(LevelSuccess, fmt.Sprintf("synced menu for %s (%d items)", comp.Name, len(report.Batch.Items)))
		} else {
			r.notifier.Notify(LevelError, fmt.Sprintf("menu sync failed for %s: %s", comp.Name, syncMessage(report.Err)))
		}
	}

	return reports, nil
}

func (r *SyncRunner) syncOne(ctx context.Context, comp *models.Competitor) SyncReport {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	batch, err := r.api.FetchMenu(callCtx, comp.ID, true)
	return SyncReport{CompetitorID: comp.ID, Name: comp.Name, Batch: batch, Err: err}
}

func (r *SyncRunner) wait(ctx context.Context) error {
	timer := time.NewTimer(r.pause)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func syncMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	return client.UserMessage(err)
}
