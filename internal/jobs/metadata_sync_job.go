package job

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/maheshrc27/scratchy/internal/repository"
	"github.com/maheshrc27/scratchy/internal/service"
)

// MetadataSyncJob walks all cached metadata rows oldest-first, one user per
// tick. Because every reconciliation bumps updated_at, consecutive ticks
// visit users in a starvation-free rotation; a user whose reconciliation
// failed before the write keeps the oldest timestamp and is retried next.
type MetadataSyncJob struct {
	mr      repository.MetadataRepository
	sync    service.SyncService
	running atomic.Bool
}

func NewMetadataSyncJob(mr repository.MetadataRepository, sync service.SyncService) *MetadataSyncJob {
	return &MetadataSyncJob{
		mr:   mr,
		sync: sync,
	}
}

// Run performs one scheduler iteration. It is invoked on a fixed-interval
// cron tick; when the previous iteration is still in flight the tick is
// dropped, so a slow upstream can never cause a burst of catch-up calls.
func (j *MetadataSyncJob) Run() {
	if !j.running.CompareAndSwap(false, true) {
		slog.Info("previous metadata sync still running, skipping tick")
		return
	}
	defer j.running.Store(false)

	ctx := context.Background()

	userID, _, found, err := j.mr.GetOldest(ctx, nil)
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if !found {
		return
	}

	if _, err := j.sync.Reconcile(ctx, userID); err != nil {
		// Errors are logged and the loop moves on; no failure here may stop
		// the rotation.
		slog.Info(err.Error())
	}
}
