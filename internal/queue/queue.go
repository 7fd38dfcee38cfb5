// Package queue holds pending AI analysis tasks between the API and the worker.
package queue

import (
	"context"
	"errors"
	"time"
)

var ErrClosed = errors.New("queue closed")

type AnalysisTask struct {
	JobID      int64     `json:"job_id"`
	ProfileID  string    `json:"profile_id"`
	UserID     string    `json:"user_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

type Queue interface {
	Enqueue(ctx context.Context, task AnalysisTask) error
	// Dequeue blocks until a task is available or ctx is done.
	Dequeue(ctx context.Context) (AnalysisTask, error)
	Close() error
}

// ChannelQueue keeps tasks in process memory. Tasks are lost on restart.
type ChannelQueue struct {
	tasks  chan AnalysisTask
	closed chan struct{}
}

func NewChannelQueue(size int) *ChannelQueue {
	if size <= 0 {
		size = 100
	}
	return &ChannelQueue{
		tasks:  make(chan AnalysisTask, size),
		closed: make(chan struct{}),
	}
}

func (q *ChannelQueue) Enqueue(ctx context.Context, task AnalysisTask) error {
	if task.EnqueuedAt.IsZero() {
		task.EnqueuedAt = time.Now().UTC()
	}
	select {
	case <-q.closed:
		return ErrClosed
	default:
	}
	select {
	case q.tasks <- task:
		return nil
	case <-q.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *ChannelQueue) Dequeue(ctx context.Context) (AnalysisTask, error) {
	select {
	case task := <-q.tasks:
		return task, nil
	case <-q.closed:
		return AnalysisTask{}, ErrClosed
	case <-ctx.Done():
		return AnalysisTask{}, ctx.Err()
	}
}

func (q *ChannelQueue) Close() error {
	select {
	case <-q.closed:
	default:
		close(q.closed)
	}
	return nil
}
