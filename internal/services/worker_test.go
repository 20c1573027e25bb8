package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/models"
)

type recordingIndexer struct {
	mu   sync.Mutex
	ids  []uuid.UUID
	done chan struct{}
	fail bool
}

func (r *recordingIndexer) IndexByID(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	r.ids = append(r.ids, id)
	r.mu.Unlock()
	if r.done != nil {
		r.done <- struct{}{}
	}
	if r.fail {
		return errors.New("qdrant down")
	}
	return nil
}

func TestIndexWorker_IndexesIngestedCandidates(t *testing.T) {
	indexer := &recordingIndexer{done: make(chan struct{}, 4)}
	w := NewIndexWorker(indexer, 2, 4, zap.NewNop())
	w.Start(context.Background())
	defer w.Stop()

	a, b := uuid.New(), uuid.New()
	w.CandidateIngested(context.Background(), &models.CandidateProfile{ID: a})
	require.True(t, w.Enqueue(b))

	for i := 0; i < 2; i++ {
		select {
		case <-indexer.done:
		case <-time.After(2 * time.Second):
			t.Fatal("candidate was not indexed")
		}
	}

	indexer.mu.Lock()
	defer indexer.mu.Unlock()
	assert.ElementsMatch(t, []uuid.UUID{a, b}, indexer.ids)
}

func TestIndexWorker_FailureDoesNotStopWorker(t *testing.T) {
	indexer := &recordingIndexer{done: make(chan struct{}, 2), fail: true}
	w := NewIndexWorker(indexer, 1, 2, nil)
	w.Start(context.Background())
	defer w.Stop()

	w.Enqueue(uuid.New())
	w.Enqueue(uuid.New())

	for i := 0; i < 2; i++ {
		select {
		case <-indexer.done:
		case <-time.After(2 * time.Second):
			t.Fatal("worker stopped after a failure")
		}
	}
}

func TestIndexWorker_DropsWhenFullOrStopped(t *testing.T) {
	w := NewIndexWorker(&recordingIndexer{}, 1, 1, nil)

	// Not started, so nothing drains the queue.
	assert.True(t, w.Enqueue(uuid.New()))
	assert.False(t, w.Enqueue(uuid.New()))

	w.Stop()
	assert.False(t, w.Enqueue(uuid.New()))
	w.Stop()
}
