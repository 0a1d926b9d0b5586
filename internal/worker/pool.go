// Package worker runs batches of independent tasks on a fixed pool of goroutines.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrQueueFull = errors.New("task queue full")
	ErrStopped   = errors.New("dispatcher stopped")
)

// Task is a unit of work, e.g. exporting one job.
type Task interface {
	ID() string
	Execute(ctx context.Context) error
}

// Result is the outcome of one task.
type Result struct {
	TaskID  string
	Err     error
	Elapsed time.Duration
}

// worker pulls tasks from its own channel after registering it as idle in the pool.
type worker struct {
	id    int
	tasks chan Task
}

func (w worker) start(ctx context.Context, d *Dispatcher) {
	d.workers.Add(1)
	go func() {
		defer d.workers.Done()
		for {
			select {
			case d.pool <- w.tasks:
			case <-d.quit:
				return
			}

			select {
			case task := <-w.tasks:
				d.execute(ctx, w.id, task)
			case <-d.quit:
				return
			}
		}
	}()
}

// Dispatcher hands queued tasks to idle workers.
type Dispatcher struct {
	maxWorkers int
	pool       chan chan Task
	queue      chan Task
	quit       chan struct{}
	logger     *logrus.Logger

	workers  sync.WaitGroup
	inflight sync.WaitGroup

	mu      sync.Mutex
	running bool
	stopped bool
	results []Result
}

// NewDispatcher creates a dispatcher with maxWorkers workers and room for queueSize
// pending tasks. Both are at least 1.
func NewDispatcher(maxWorkers, queueSize int, logger *logrus.Logger) *Dispatcher {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Dispatcher{
		maxWorkers: maxWorkers,
		pool:       make(chan chan Task, maxWorkers),
		queue:      make(chan Task, queueSize),
		quit:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the workers and the dispatch loop. Tasks execute with ctx.
func (d *Dispatcher) Run(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running || d.stopped {
		return
	}
	d.running = true

	for i := 1; i <= d.maxWorkers; i++ {
		worker{id: i, tasks: make(chan Task)}.start(ctx, d)
	}
	go d.dispatch()
	d.logger.WithField("workers", d.maxWorkers).Debug("Dispatcher running")
}

func (d *Dispatcher) dispatch() {
	for {
		select {
		case task := <-d.queue:
			go func(task Task) {
				select {
				case idle := <-d.pool:
					idle <- task
				case <-d.quit:
				}
			}(task)
		case <-d.quit:
			return
		}
	}
}

// Submit queues task without blocking.
func (d *Dispatcher) Submit(task Task) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return ErrStopped
	}

	d.inflight.Add(1)
	select {
	case d.queue <- task:
		return nil
	default:
		d.inflight.Done()
		return fmt.Errorf("%w: %s", ErrQueueFull, task.ID())
	}
}

func (d *Dispatcher) execute(ctx context.Context, workerID int, task Task) {
	defer d.inflight.Done()

	start := time.Now()
	err := task.Execute(ctx)
	res := Result{TaskID: task.ID(), Err: err, Elapsed: time.Since(start)}

	entry := d.logger.WithFields(logrus.Fields{"worker": workerID, "task": task.ID(), "elapsed_ms": res.Elapsed.Milliseconds()})
	if err != nil {
		entry.WithError(err).Error("Task failed")
	} else {
		entry.Debug("Task finished")
	}

	d.mu.Lock()
	d.results = append(d.results, res)
	d.mu.Unlock()
}

// Stop refuses new tasks, waits for every submitted task to finish, stops the
// workers and returns the results in completion order.
func (d *Dispatcher) Stop() []Result {
	d.mu.Lock()
	if d.stopped {
		results := d.results
		d.mu.Unlock()
		return results
	}
	d.stopped = true
	running := d.running
	d.mu.Unlock()

	if running {
		d.inflight.Wait()
	}
	close(d.quit)
	d.workers.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.results
}
