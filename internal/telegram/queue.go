package telegram

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// userQueue runs jobs serially per user and concurrently across users.
// A user's goroutine exists only while that user has pending work.
type userQueue struct {
	mu      sync.Mutex
	pending map[int64][]func(context.Context)
	sem     *semaphore.Weighted
	wg      sync.WaitGroup
}

func newUserQueue(maxConcurrency int) *userQueue {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &userQueue{
		pending: make(map[int64][]func(context.Context)),
		sem:     semaphore.NewWeighted(int64(maxConcurrency)),
	}
}

// Enqueue appends job to the user's queue, starting a drain goroutine when
// the queue was idle. Jobs still queued when ctx is done are dropped.
func (q *userQueue) Enqueue(ctx context.Context, userID int64, job func(context.Context)) {
	q.mu.Lock()
	jobs, running := q.pending[userID]
	q.pending[userID] = append(jobs, job)
	if !running {
		q.wg.Add(1)
		go q.drain(ctx, userID)
	}
	q.mu.Unlock()
}

func (q *userQueue) drain(ctx context.Context, userID int64) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		jobs := q.pending[userID]
		if len(jobs) == 0 {
			delete(q.pending, userID)
			q.mu.Unlock()
			return
		}
		job := jobs[0]
		jobs[0] = nil
		q.pending[userID] = jobs[1:]
		q.mu.Unlock()

		if err := q.sem.Acquire(ctx, 1); err != nil {
			continue
		}
		job(ctx)
		q.sem.Release(1)
	}
}

// Wait blocks until every queued job has finished.
func (q *userQueue) Wait() { q.wg.Wait() }

// Active reports how many users currently have queued or running work.
func (q *userQueue) Active() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
