package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"alfredoptarigan/intelliapply/internal/queue"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	Enqueue(ctx context.Context, task queue.AnalysisTask) error
}

type worker struct {
	queue       queue.Queue
	analysis    AnalysisService
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once
}

func NewWorker(q queue.Queue, analysis AnalysisService, concurrency int) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &worker{
		queue:       q,
		analysis:    analysis,
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting worker with %d concurrent workers\n", w.concurrency)

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		<-w.stopChan
		cancel()
	}()

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processTasks(ctx, i+1)
	}

	log.Println("✅ Worker started successfully")
}

// Stop implements Worker. It waits for in-flight analyses to finish.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping worker...")
		close(w.stopChan)
		w.wg.Wait()
		log.Println("✅ Worker stopped")
	})
}

// Enqueue implements Worker.
func (w *worker) Enqueue(ctx context.Context, task queue.AnalysisTask) error {
	select {
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, cannot enqueue job %d\n", task.JobID)
		return queue.ErrClosed
	default:
	}

	if task.EnqueuedAt.IsZero() {
		task.EnqueuedAt = time.Now()
	}
	if err := w.queue.Enqueue(ctx, task); err != nil {
		return err
	}

	log.Printf("📥 Job %d enqueued for analysis\n", task.JobID)
	return nil
}

func (w *worker) processTasks(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		task, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, queue.ErrClosed) {
				log.Printf("👷 Worker #%d stopped\n", workerID)
				return
			}
			log.Printf("⚠️  Worker #%d failed to dequeue: %v\n", workerID, err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		log.Printf("👷 Worker #%d processing job %d\n", workerID, task.JobID)
		// an in-flight analysis is allowed to finish after Stop
		if err := w.analysis.AnalyzeJob(context.WithoutCancel(ctx), task); err != nil {
			log.Printf("❌ Worker #%d failed to process job %d: %v\n", workerID, task.JobID, err)
		} else {
			log.Printf("✅ Worker #%d completed job %d\n", workerID, task.JobID)
		}
	}
}
