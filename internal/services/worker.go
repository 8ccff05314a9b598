package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talentalign/jd-matcher/internal/logger"
	"talentalign/jd-matcher/internal/models"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(runID uuid.UUID)
}

// RunProcessor executes one queued match run.
type RunProcessor interface {
	ProcessMatchRun(ctx context.Context, runID uuid.UUID) error
}

// PendingRunSource returns runs still waiting in the queued state.
type PendingRunSource interface {
	FindPendingJobs(limit int) ([]models.MatchRun, error)
}

type WorkerConfig struct {
	Concurrency  int
	PollInterval time.Duration
	QueueSize    int
	PollBatch    int
}

type worker struct {
	pending   PendingRunSource
	processor RunProcessor
	jobQueue  chan uuid.UUID
	cfg       WorkerConfig
	wg        sync.WaitGroup
	stopChan  chan struct{}
	stopOnce  sync.Once
	log       *zap.Logger

	mu       sync.Mutex
	inFlight map[uuid.UUID]bool
}

func NewWorker(pending PendingRunSource, processor RunProcessor, cfg WorkerConfig, log *zap.Logger) Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.PollBatch <= 0 {
		cfg.PollBatch = 10
	}
	return &worker{
		pending:   pending,
		processor: processor,
		jobQueue:  make(chan uuid.UUID, cfg.QueueSize),
		cfg:       cfg,
		stopChan:  make(chan struct{}),
		log:       logger.OrNop(log).Named("worker"),
		inFlight:  make(map[uuid.UUID]bool),
	}
}

func (w *worker) Start(ctx context.Context) {
	w.log.Info("starting worker", zap.Int("concurrency", w.cfg.Concurrency))

	// Start worker goroutines
	for i := 0; i < w.cfg.Concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	// Start polling for pending runs
	w.wg.Add(1)
	go w.pollPendingJobs(ctx)
}

func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("stopping worker")
		close(w.stopChan)
	})
	w.wg.Wait()
	w.log.Info("worker stopped")
}

// EnqueueJob hands a run to the pool. Runs already queued or executing are
// ignored so the poller does not double-schedule them.
func (w *worker) EnqueueJob(runID uuid.UUID) {
	w.mu.Lock()
	if w.inFlight[runID] {
		w.mu.Unlock()
		return
	}
	w.inFlight[runID] = true
	w.mu.Unlock()

	select {
	case w.jobQueue <- runID:
		w.log.Debug("run enqueued", zap.String("run_id", runID.String()))
	case <-w.stopChan:
		w.release(runID)
		w.log.Warn("worker stopped, cannot enqueue run", zap.String("run_id", runID.String()))
	}
}

func (w *worker) release(runID uuid.UUID) {
	w.mu.Lock()
	delete(w.inFlight, runID)
	w.mu.Unlock()
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log := w.log.With(zap.Int("worker_id", workerID))

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case runID := <-w.jobQueue:
			log.Info("processing run", zap.String("run_id", runID.String()))
			if err := w.processor.ProcessMatchRun(ctx, runID); err != nil {
				log.Error("run failed", zap.String("run_id", runID.String()), zap.Error(err))
			} else {
				log.Info("run completed", zap.String("run_id", runID.String()))
			}
			w.release(runID)
		}
	}
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Find pending runs
			runs, err := w.pending.FindPendingJobs(w.cfg.PollBatch)
			if err != nil {
				w.log.Warn("failed to fetch pending runs", zap.Error(err))
				continue
			}
			if len(runs) > 0 {
				w.log.Info("found pending runs", zap.Int("count", len(runs)))
			}
			// Enqueue pending runs
			for _, run := range runs {
				w.EnqueueJob(run.ID)
			}
		}
	}
}
