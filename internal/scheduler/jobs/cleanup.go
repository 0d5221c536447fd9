package jobs

import (
	"context"

	"github.com/wonny/lighthorse/backend/pkg/logger"
)

// ExpiredCleaner drops cache entries past their TTL
type ExpiredCleaner interface {
	CleanExpired() int
}

// CacheCleanupJob evicts expired upstream responses from memory
type CacheCleanupJob struct {
	cache  ExpiredCleaner
	logger *logger.Logger
}

// NewCacheCleanupJob creates a new cache cleanup job
func NewCacheCleanupJob(c ExpiredCleaner, log *logger.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		cache:  c,
		logger: log,
	}
}

// Name returns the job name
func (j *CacheCleanupJob) Name() string {
	return "cache_cleanup"
}

// Schedule returns the cron schedule (every 10 minutes)
func (j *CacheCleanupJob) Schedule() string {
	return "0 */10 * * * *"
}

// Run executes the cache cleanup
func (j *CacheCleanupJob) Run(ctx context.Context) error {
	count := j.cache.CleanExpired()

	if count > 0 {
		j.logger.WithField("removed", count).Info("Cache cleanup completed")
	}

	return nil
}
