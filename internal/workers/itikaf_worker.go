package workers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"portal_backend/internal/logger"
	"portal_backend/internal/services"
)

const itikafWorkerName = "itikaf_sheet_sync"

// ItikafSyncWorker retries sheet appends for participants registered while the
// spreadsheet was unreachable.
type ItikafSyncWorker struct {
	db            *gorm.DB
	itikafService services.ItikafService
	interval      time.Duration
}

func NewItikafSyncWorker(db *gorm.DB, itikafService services.ItikafService, interval time.Duration) *ItikafSyncWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &ItikafSyncWorker{db: db, itikafService: itikafService, interval: interval}
}

func (w *ItikafSyncWorker) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.syncParticipants(ctx)
	}()
	return done
}

func (w *ItikafSyncWorker) syncParticipants(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Itikaf sync worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

func (w *ItikafSyncWorker) RunOnce(ctx context.Context) int {
	synced, err := w.itikafService.SyncAll(ctx, w.db.WithContext(ctx))
	if err != nil {
		logger.WorkerLog(itikafWorkerName, "sync_all", err)
		return 0
	}
	if synced > 0 {
		logger.WorkerLog(itikafWorkerName, "sync_all", nil, "synced", synced)
	}
	return synced
}
