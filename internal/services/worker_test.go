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

	"talentalign/jd-matcher/internal/models"
)

type recordingProcessor struct {
	mu   sync.Mutex
	seen map[uuid.UUID]int
	done chan uuid.UUID
	fail bool
}

func newRecordingProcessor() *recordingProcessor {
	return &recordingProcessor{seen: make(map[uuid.UUID]int), done: make(chan uuid.UUID, 16)}
}

func (p *recordingProcessor) ProcessMatchRun(ctx context.Context, runID uuid.UUID) error {
	p.mu.Lock()
	p.seen[runID]++
	p.mu.Unlock()
	select {
	case p.done <- runID:
	default:
	}
	if p.fail {
		return errors.New("boom")
	}
	return nil
}

func (p *recordingProcessor) count(id uuid.UUID) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seen[id]
}

func waitFor(t *testing.T, ch <-chan uuid.UUID, want uuid.UUID) {
	t.Helper()
	select {
	case got := <-ch:
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("run %s was not processed", want)
	}
}

func TestWorkerProcessesEnqueuedRuns(t *testing.T) {
	proc := newRecordingProcessor()
	proc.fail = true
	w := NewWorker(newFakeRunRepo(), proc, WorkerConfig{Concurrency: 2, PollInterval: time.Hour}, nil)
	w.Start(context.Background())
	defer w.Stop()

	id := uuid.New()
	w.EnqueueJob(id)
	waitFor(t, proc.done, id)
	assert.Equal(t, 1, proc.count(id))
}

func TestWorkerPollsPendingRuns(t *testing.T) {
	run := models.MatchRun{ID: uuid.New(), Status: models.StatusQueued}
	repo := newFakeRunRepo(run)
	proc := newRecordingProcessor()

	w := NewWorker(repo, proc, WorkerConfig{Concurrency: 1, PollInterval: 10 * time.Millisecond}, nil)
	w.Start(context.Background())

	waitFor(t, proc.done, run.ID)
	require.NoError(t, repo.UpdateStatus(run.ID, models.StatusCompleted))
	w.Stop()

	assert.GreaterOrEqual(t, proc.count(run.ID), 1)
}

func TestWorkerStopIsIdempotent(t *testing.T) {
	w := NewWorker(newFakeRunRepo(), newRecordingProcessor(), WorkerConfig{}, nil)
	w.Start(context.Background())
	w.Stop()
	w.Stop()

	// enqueue after stop must not block
	done := make(chan struct{})
	go func() {
		w.EnqueueJob(uuid.New())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("EnqueueJob blocked after Stop")
	}
}
