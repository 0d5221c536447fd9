// Package jobs holds the scheduled jobs of the dashboard.
package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/lighthorse/backend/pkg/logger"
)

// DefaultPrewarmSchedule refreshes at the top of every hour
const DefaultPrewarmSchedule = "0 0 * * * *"

// Refresher reloads every catalog view
type Refresher interface {
	RefreshAll(ctx context.Context) (int, error)
}

// PrewarmJob refreshes all views so page loads hit a warm cache
// ⭐ SSOT: 캐시 예열 스케줄은 이 Job에서만
type PrewarmJob struct {
	refresher Refresher
	schedule  string
	total     int
	logger    *logger.Logger
}

// NewPrewarmJob creates a prewarm job. total is the number of catalog views.
func NewPrewarmJob(r Refresher, schedule string, total int, log *logger.Logger) *PrewarmJob {
	if schedule == "" {
		schedule = DefaultPrewarmSchedule
	}
	return &PrewarmJob{
		refresher: r,
		schedule:  schedule,
		total:     total,
		logger:    log,
	}
}

// Name returns the job name
func (j *PrewarmJob) Name() string {
	return "prewarm"
}

// Schedule returns the cron schedule
func (j *PrewarmJob) Schedule() string {
	return j.schedule
}

// Run refreshes every view. It fails only when no view could be loaded.
func (j *PrewarmJob) Run(ctx context.Context) error {
	j.logger.Info("Starting cache prewarm")

	ok, err := j.refresher.RefreshAll(ctx)
	if err != nil {
		return fmt.Errorf("prewarm: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"loaded": ok,
		"total":  j.total,
	}).Info("Cache prewarm completed")

	if ok == 0 && j.total > 0 {
		return fmt.Errorf("prewarm: none of %d views loaded", j.total)
	}
	return nil
}
