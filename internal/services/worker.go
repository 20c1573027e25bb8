package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/models"
)

// candidateIndexer is the part of CandidateIndex the worker needs.
type candidateIndexer interface {
	IndexByID(ctx context.Context, candidateID uuid.UUID) error
}

// IndexWorker indexes newly ingested candidates in the background.
type IndexWorker struct {
	indexer     candidateIndexer
	queue       chan uuid.UUID
	concurrency int
	wg          sync.WaitGroup
	stopOnce    sync.Once
	stopChan    chan struct{}
	logger      *zap.Logger
}

var _ IngestionObserver = (*IndexWorker)(nil)

func NewIndexWorker(indexer candidateIndexer, concurrency, queueSize int, log *zap.Logger) *IndexWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &IndexWorker{
		indexer:     indexer,
		queue:       make(chan uuid.UUID, queueSize),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
		logger:      log,
	}
}

func (w *IndexWorker) Start(ctx context.Context) {
	w.logger.Info("starting index worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.process(ctx, i+1)
	}
}

// Stop signals the goroutines and waits for in-flight indexing to finish.
// Queued ids that were not picked up are dropped.
func (w *IndexWorker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("stopping index worker")
		close(w.stopChan)
	})
	w.wg.Wait()
	w.logger.Info("index worker stopped")
}

// Enqueue schedules candidateID for indexing. It never blocks; when the queue
// is full or the worker has stopped the id is dropped and false is returned.
func (w *IndexWorker) Enqueue(candidateID uuid.UUID) bool {
	select {
	case <-w.stopChan:
		w.logger.Warn("index worker stopped, dropping candidate", zap.String("candidate_id", candidateID.String()))
		return false
	default:
	}

	select {
	case w.queue <- candidateID:
		w.logger.Debug("candidate queued for indexing", zap.String("candidate_id", candidateID.String()))
		return true
	default:
		w.logger.Warn("index queue full, dropping candidate", zap.String("candidate_id", candidateID.String()))
		return false
	}
}

// CandidateIngested implements IngestionObserver.
func (w *IndexWorker) CandidateIngested(_ context.Context, candidate *models.CandidateProfile) {
	w.Enqueue(candidate.ID)
}

func (w *IndexWorker) process(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case id := <-w.queue:
			if err := w.indexer.IndexByID(ctx, id); err != nil {
				w.logger.Error("failed to index candidate",
					zap.Int("worker", workerID),
					zap.String("candidate_id", id.String()),
					zap.Error(err),
				)
				continue
			}
			w.logger.Debug("candidate index updated",
				zap.Int("worker", workerID),
				zap.String("candidate_id", id.String()),
			)
		}
	}
}
