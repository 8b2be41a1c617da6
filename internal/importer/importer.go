package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/resource-directory/internal/resource"
	"github.com/google/uuid"
)

// Job carries one validated bulk-create batch through the pool.
type Job struct {
	ID      uuid.UUID
	Payload *resource.BulkCreatePayload
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// JobState is the queryable progress record for a submitted batch.
type JobState struct {
	ID          uuid.UUID  `json:"id"`
	Status      Status     `json:"status"`
	Error       string     `json:"error,omitempty"`
	ResourceCnt int        `json:"resource_count"`
	SubmittedAt time.Time  `json:"submitted_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Job, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(Job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker processing import job", "worker_id", w.ID, "job_id", job.ID)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type Config struct {
	MaxWorkers     int
	JobQueueSize   int
	WorkerPoolSize int
}

// ProcessFunc persists one batch; the importer treats it as opaque.
type ProcessFunc func(payload *resource.BulkCreatePayload) error

// Importer runs bulk-create batches through a bounded worker pool so large
// imports do not block the request path.
type Importer struct {
	process ProcessFunc
	logger  *slog.Logger

	jobQueue   chan Job
	workerPool chan chan Job
	maxWorkers int

	mu     sync.RWMutex
	states map[uuid.UUID]*JobState

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

func NewImporter(config Config, process ProcessFunc, logger *slog.Logger) *Importer {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}

	workerPoolSize := config.WorkerPoolSize
	if workerPoolSize <= 0 {
		workerPoolSize = maxWorkers
	}

	imp := &Importer{
		process: process,
		logger:  logger,

		maxWorkers: maxWorkers,
		jobQueue:   make(chan Job, jobQueueSize),
		workerPool: make(chan chan Job, workerPoolSize),
		states:     make(map[uuid.UUID]*JobState),
		ctx:        ctx,
		cancel:     cancel,
	}

	imp.startWorkerPool()

	return imp
}

func (im *Importer) startWorkerPool() {
	im.once.Do(func() {
		for i := 0; i < im.maxWorkers; i++ {
			worker := NewWorker(i, im.workerPool, im.logger)
			worker.Start(im.ctx, &im.wg, im.processJob)
		}

		go im.dispatch()

		im.logger.Info("import worker pool started",
			"max_workers", im.maxWorkers,
			"queue_size", cap(im.jobQueue))
	})
}

func (im *Importer) dispatch() {
	im.wg.Add(1)
	defer im.wg.Done()

	for {
		select {
		case job := <-im.jobQueue:
			select {
			case jobChannel := <-im.workerPool:
				select {
				case jobChannel <- job:
				case <-im.ctx.Done():
					im.logger.Info("dispatcher shutting down")
					return
				}
			case <-im.ctx.Done():
				im.logger.Info("dispatcher shutting down")
				return
			}
		case <-im.ctx.Done():
			im.logger.Info("dispatcher shutting down")
			return
		}
	}
}

// Submit queues a batch and returns its job id. Fails fast when the queue
// is full instead of blocking the HTTP handler.
func (im *Importer) Submit(payload *resource.BulkCreatePayload) (uuid.UUID, error) {
	job := Job{ID: uuid.New(), Payload: payload}

	state := &JobState{
		ID:          job.ID,
		Status:      StatusPending,
		ResourceCnt: len(payload.Resources),
		SubmittedAt: time.Now(),
	}

	im.mu.Lock()
	im.states[job.ID] = state
	im.mu.Unlock()

	select {
	case im.jobQueue <- job:
		im.logger.Info("import job queued",
			"job_id", job.ID,
			"resources", len(payload.Resources),
			"queue_length", len(im.jobQueue))
	default:
		im.mu.Lock()
		delete(im.states, job.ID)
		im.mu.Unlock()

		im.logger.Warn("import queue full, rejecting batch",
			"queue_capacity", cap(im.jobQueue))
		return uuid.Nil, fmt.Errorf("import queue full, please try again later")
	}

	return job.ID, nil
}

// JobStatus returns a copy of the job state so callers cannot race writers.
func (im *Importer) JobStatus(id uuid.UUID) (JobState, bool) {
	im.mu.RLock()
	defer im.mu.RUnlock()

	state, ok := im.states[id]
	if !ok {
		return JobState{}, false
	}
	return *state, true
}

func (im *Importer) processJob(job Job) {
	im.mu.Lock()
	if state, ok := im.states[job.ID]; ok {
		state.Status = StatusRunning
	}
	im.mu.Unlock()

	err := im.process(job.Payload)

	now := time.Now()

	im.mu.Lock()
	defer im.mu.Unlock()

	state, ok := im.states[job.ID]
	if !ok {
		return
	}

	state.FinishedAt = &now
	if err != nil {
		state.Status = StatusFailed
		state.Error = err.Error()
		im.logger.Error("import job failed", "job_id", job.ID, "error", err)
		return
	}

	state.Status = StatusSucceeded
	im.logger.Info("import job completed", "job_id", job.ID, "resources", state.ResourceCnt)
}

func (im *Importer) Shutdown() {
	im.logger.Info("shutting down importer")
	im.cancel()
	im.wg.Wait()
	im.logger.Info("importer shutdown complete")
}
