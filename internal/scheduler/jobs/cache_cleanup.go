package jobs

import (
	"context"

	"github.com/wonny/whalewatch/internal/cache"
	"github.com/wonny/whalewatch/pkg/logger"
)

// CacheCleanupJobName is the scheduler key of the cleanup job
const CacheCleanupJobName = "snapshot_cache_cleanup"

// CacheCleanupJob evicts expired snapshots from the in-process cache
type CacheCleanupJob struct {
	cache  *cache.SnapshotCache
	logger *logger.Logger
}

// NewCacheCleanupJob creates a new cache cleanup job
func NewCacheCleanupJob(snapshots *cache.SnapshotCache, log *logger.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		cache:  snapshots,
		logger: log,
	}
}

// Name returns the job name
func (j *CacheCleanupJob) Name() string {
	return CacheCleanupJobName
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *CacheCleanupJob) Schedule() string {
	return "0 */5 * * * *"
}

// Run executes the cache cleanup
func (j *CacheCleanupJob) Run(ctx context.Context) error {
	count := j.cache.CleanStale()

	if count > 0 {
		j.logger.WithFields(map[string]interface{}{
			"removed":   count,
			"remaining": j.cache.Len(),
		}).Info("Snapshot cache cleanup completed")
	}

	return nil
}
