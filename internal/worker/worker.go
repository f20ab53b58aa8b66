package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/leonardotrapani/hyprsubs/internal/queue"
	"github.com/leonardotrapani/hyprsubs/internal/task"
	"github.com/leonardotrapani/hyprsubs/internal/translator"
)

// DefaultPollTimeout bounds how long a worker waits on its queue before it
// rechecks for a stop request.
const DefaultPollTimeout = 100 * time.Millisecond

type State int32

const (
	Running State = iota
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Source is where a worker takes tasks from.
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (*task.Task, error)
}

// Translator turns source text into a result without failing.
type Translator interface {
	Translate(ctx context.Context, text string) translator.Result
}

// Stats counts a worker's activity.
type Stats struct {
	State     State
	Processed uint64
	CacheHits uint64
	Fallbacks uint64
	Panics    uint64
	QueueWait time.Duration
	TotalTime time.Duration
}

// Worker drains one channel queue, translating each task and handing it back
// on a completion channel.
type Worker struct {
	name        string
	src         Source
	tr          Translator
	out         chan<- *task.Task
	pollTimeout time.Duration

	state atomic.Int32

	processed atomic.Uint64
	cacheHits atomic.Uint64
	fallbacks atomic.Uint64
	panics    atomic.Uint64
	queueWait atomic.Int64
	totalTime atomic.Int64
}

// New creates a worker. It starts in the Running state; call Run to begin
// draining src.
func New(name string, src Source, tr Translator, out chan<- *task.Task, pollTimeout time.Duration) *Worker {
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}
	return &Worker{
		name:        name,
		src:         src,
		tr:          tr,
		out:         out,
		pollTimeout: pollTimeout,
	}
}

// Name returns the worker name used in log lines.
func (w *Worker) Name() string {
	return w.name
}

// State returns the current lifecycle state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

// Stop asks the worker to finish. No further tasks are taken; a translation
// already in progress completes first.
func (w *Worker) Stop() {
	w.state.CompareAndSwap(int32(Running), int32(Stopping))
}

// Run processes tasks until Stop, ctx cancellation or the queue closing. A
// closed queue is the normal shutdown signal, so Run returns nil for it.
func (w *Worker) Run(ctx context.Context) error {
	defer w.state.Store(int32(Stopped))
	log.Printf("Worker %s: started", w.name)

	for w.State() == Running {
		t, err := w.src.Pop(ctx, w.pollTimeout)
		if err != nil {
			if errors.Is(err, queue.ErrClosed) {
				log.Printf("Worker %s: queue closed, stopping", w.name)
				return nil
			}
			if ctx.Err() != nil {
				log.Printf("Worker %s: context done, stopping", w.name)
				return nil
			}
			log.Printf("Worker %s: pop failed, stopping: %v", w.name, err)
			return nil
		}
		if t == nil {
			continue
		}

		w.process(ctx, t)

		select {
		case w.out <- t:
		case <-ctx.Done():
			log.Printf("Worker %s: context done, dropping result of %s", w.name, t)
			return nil
		}
	}

	log.Printf("Worker %s: stopped", w.name)
	return nil
}

func (w *Worker) process(ctx context.Context, t *task.Task) {
	t.StartedAt = time.Now()

	res := w.translate(ctx, t)
	t.Result = res.Text
	t.Cached = res.Cached
	t.Fallback = res.Fallback
	t.CompletedAt = time.Now()

	w.processed.Add(1)
	if res.Cached {
		w.cacheHits.Add(1)
	}
	if res.Fallback {
		w.fallbacks.Add(1)
	}
	w.queueWait.Add(int64(t.QueueWait()))
	w.totalTime.Add(int64(t.Latency()))

	log.Printf("Worker %s: %s done, queue %v, translate %v, total %v",
		w.name, t, t.QueueWait(), t.CompletedAt.Sub(t.StartedAt), t.Latency())
}

func (w *Worker) translate(ctx context.Context, t *task.Task) (res translator.Result) {
	defer func() {
		if r := recover(); r != nil {
			w.panics.Add(1)
			log.Printf("Worker %s: PANIC translating %s: %v\n%s", w.name, t, r, string(debug.Stack()))
			res = translator.Result{Text: t.Text, Fallback: true}
		}
	}()
	return w.tr.Translate(ctx, t.Text)
}

// Stats returns a snapshot of the counters.
func (w *Worker) Stats() Stats {
	return Stats{
		State:     w.State(),
		Processed: w.processed.Load(),
		CacheHits: w.cacheHits.Load(),
		Fallbacks: w.fallbacks.Load(),
		Panics:    w.panics.Load(),
		QueueWait: time.Duration(w.queueWait.Load()),
		TotalTime: time.Duration(w.totalTime.Load()),
	}
}
