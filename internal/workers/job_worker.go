package workers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"portal_backend/internal/logger"
	"portal_backend/internal/services"
)

const jobWorkerName = "job_auto_close"

// JobWorker closes open jobs whose deadline has passed.
type JobWorker struct {
	db         *gorm.DB
	jobService services.JobService
	interval   time.Duration
}

func NewJobWorker(db *gorm.DB, jobService services.JobService, interval time.Duration) *JobWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &JobWorker{db: db, jobService: jobService, interval: interval}
}

// Start runs one pass immediately and then one per interval until ctx is cancelled.
func (w *JobWorker) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.autoCloseJobs(ctx)
	}()
	return done
}

func (w *JobWorker) autoCloseJobs(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Job worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce closes expired jobs and reports how many were closed.
func (w *JobWorker) RunOnce(ctx context.Context) int64 {
	closed, err := w.jobService.CloseExpired(w.db.WithContext(ctx))
	if err != nil {
		logger.WorkerLog(jobWorkerName, "close_expired", err)
		return 0
	}
	if closed > 0 {
		logger.WorkerLog(jobWorkerName, "close_expired", nil, "closed", closed)
	}
	return closed
}
