package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/leonardotrapani/hyprsubs/internal/config"
	"github.com/leonardotrapani/hyprsubs/internal/display"
	"github.com/leonardotrapani/hyprsubs/internal/merger"
	"github.com/leonardotrapani/hyprsubs/internal/notify"
	"github.com/leonardotrapani/hyprsubs/internal/recognizer"
	"github.com/leonardotrapani/hyprsubs/internal/scheduler"
	"github.com/leonardotrapani/hyprsubs/internal/task"
	"github.com/leonardotrapani/hyprsubs/internal/translator"
	"github.com/leonardotrapani/hyprsubs/internal/worker"
)

const defaultTickInterval = 500 * time.Millisecond

// Stats summarises one session.
type Stats struct {
	SessionID     string
	Events        int
	FastTasks     int
	SlowTasks     int
	FastCompleted int
	SlowCompleted int
	FastDropped   int
	StaleDiscards int
	Skipped       int
	Timeouts      int

	Fast worker.Stats
	Slow worker.Stats

	// zero unless the channel translator is a translator.Backend
	FastBackend translator.Stats
	SlowBackend translator.Stats
}

func (s Stats) String() string {
	return fmt.Sprintf("events=%d fast=%d/%d slow=%d/%d dropped=%d stale=%d skipped=%d timeouts=%d requests=%d cached=%d",
		s.Events, s.FastCompleted, s.FastTasks, s.SlowCompleted, s.SlowTasks,
		s.FastDropped, s.StaleDiscards, s.Skipped, s.Timeouts,
		s.FastBackend.Requests+s.SlowBackend.Requests, s.FastBackend.CacheHits+s.SlowBackend.CacheHits)
}

// session is the coordinator state of one recognition session. Everything
// here is owned by the goroutine running loop.
type session struct {
	id         string
	cfg        config.SessionConfig
	acc        recognizer.Accumulator
	sched      *scheduler.Scheduler
	merger     *merger.Merger
	sink       display.Sink
	notifier   notify.Notifier
	transcript *transcriptWriter

	slowPending int
	slowDropped int
	stats       Stats
}

func newSession(id string, sched *scheduler.Scheduler, sink display.Sink, n notify.Notifier, tw *transcriptWriter, cfg config.SessionConfig) *session {
	return &session{
		id:         id,
		cfg:        cfg,
		sched:      sched,
		merger:     merger.New(),
		sink:       sink,
		notifier:   n,
		transcript: tw,
		stats:      Stats{SessionID: id},
	}
}

// loop multiplexes recognizer events, worker completions and the timeout
// ticker. When events is closed the pending text is flushed and loop returns
// once every slow task has come back.
func (s *session) loop(ctx context.Context, events <-chan recognizer.Event, completions <-chan *task.Task, publish func(Stats)) error {
	interval := s.cfg.TickInterval
	if interval <= 0 {
		interval = defaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer s.sched.Deactivate()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				s.drain(ctx, completions, publish)
				return nil
			}
			s.handleEvent(ev, time.Now())
		case t := <-completions:
			s.handleCompletion(t)
		case now := <-ticker.C:
			s.handleTick(now)
		}
		publish(s.stats)
	}
}

func (s *session) drain(ctx context.Context, completions <-chan *task.Task, publish func(Stats)) {
	if res := s.sched.OnTimeout(time.Now(), 0); res.Acted {
		s.applyTimeout(res)
	}
	log.Printf("Pipeline: input ended, waiting for %d slow results", s.slowPending)

	for s.slowPending > 0 {
		select {
		case <-ctx.Done():
			return
		case t := <-completions:
			s.handleCompletion(t)
			publish(s.stats)
		}
	}
	publish(s.stats)
}

func (s *session) handleEvent(ev recognizer.Event, now time.Time) {
	s.stats.Events++
	if ev.Err != nil {
		log.Printf("Pipeline: recognizer: %v", ev.Err)
		s.notifier.Status(ev.Err.Error())
		return
	}

	step, ok := s.acc.Apply(ev)
	if !ok {
		return
	}
	s.sink.SourceUpdated(step.Source)
	s.sched.Touch(now)

	switch step.Mode {
	case recognizer.Partial:
		s.scan(step.FullText, now)
		s.fragment(s.sched.Session().PendingText, now)
	case recognizer.Incremental:
		s.fragment(step.Fragment, now)
	case recognizer.Confirmed:
		epoch, cleared := s.sched.OnSessionBoundary()
		s.merger.BeginFastEpoch(epoch)
		if cleared > 0 {
			log.Printf("Pipeline: confirmed result superseded %d fragment tasks", cleared)
		}
		s.scan(step.FullText, now)
		s.transcript.Write(ev.WavName, ev.Text)
	}
}

// scan dispatches every complete span in fullText, one at a time.
func (s *session) scan(fullText string, now time.Time) {
	for {
		res := s.sched.OnTextUpdate(fullText, now)
		switch {
		case res.Dispatched != nil:
			s.slowDispatched(res.Dispatched)
		case res.Skipped != "":
			s.stats.Skipped++
			s.notifier.Status(fmt.Sprintf("skipped punctuation-only segment %q", res.Skipped))
		default:
			return
		}
	}
}

func (s *session) fragment(text string, now time.Time) {
	if t := s.sched.OnFragmentUpdate(text, now); t != nil {
		s.stats.FastTasks++
		s.stats.FastDropped = s.sched.DroppedFast()
	}
}

func (s *session) handleTick(now time.Time) {
	res := s.sched.OnTimeout(now, s.cfg.Timeout)
	if !res.Acted {
		return
	}
	s.applyTimeout(res)
}

func (s *session) applyTimeout(res scheduler.TimeoutResult) {
	s.stats.Timeouts++
	s.notifier.Status(res.Message)
	if res.Dispatched != nil {
		s.slowDispatched(res.Dispatched)
		return
	}
	s.stats.Skipped++
	s.merger.RetireFast(s.sched.Session().FastVersion)
}

// slowDispatched records a new slow task. Dispatching always clears fragment
// work, so every fast result issued so far is retired.
func (s *session) slowDispatched(t *task.Task) {
	s.stats.SlowTasks++
	s.slowPending++
	s.merger.RetireFast(s.sched.Session().FastVersion)

	// a dropped slow task never completes; stop waiting for it
	if d := s.sched.DroppedSlow(); d > s.slowDropped {
		lost := d - s.slowDropped
		s.slowDropped = d
		s.slowPending -= lost
		s.notifier.Error(fmt.Sprintf("slow queue full, %d sentence(s) not translated", lost))
	}
}

func (s *session) handleCompletion(t *task.Task) {
	switch t.Channel {
	case task.Slow:
		s.slowPending--
		s.stats.SlowCompleted++
	case task.Fast:
		s.stats.FastCompleted++
	}

	up, ok := s.merger.OnTaskCompleted(t)
	s.stats.StaleDiscards = s.merger.State().StaleDiscards
	if !ok {
		return
	}
	s.sink.TargetUpdated(up.Text, up.Incremental)
}
