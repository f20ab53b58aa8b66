package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leonardotrapani/hyprsubs/internal/config"
	"github.com/leonardotrapani/hyprsubs/internal/display"
	"github.com/leonardotrapani/hyprsubs/internal/notify"
	"github.com/leonardotrapani/hyprsubs/internal/queue"
	"github.com/leonardotrapani/hyprsubs/internal/recognizer"
	"github.com/leonardotrapani/hyprsubs/internal/recording"
	"github.com/leonardotrapani/hyprsubs/internal/scheduler"
	"github.com/leonardotrapani/hyprsubs/internal/task"
	"github.com/leonardotrapani/hyprsubs/internal/translator"
	"github.com/leonardotrapani/hyprsubs/internal/worker"
)

type Status string

const (
	Idle     Status = "idle"
	Running  Status = "running"
	Stopping Status = "stopping"
)

// Recorder is the audio capture the live pipeline reads from.
type Recorder interface {
	Start(ctx context.Context) (<-chan recording.AudioFrame, <-chan error, error)
	Stop()
}

// Recognizer is the streaming speech recognizer the live pipeline talks to.
type Recognizer interface {
	Start(ctx context.Context) error
	SendChunk(pcm []byte) error
	Events() <-chan recognizer.Event
	Close() error
}

// Options customises the collaborators of a pipeline. Nil fields get the
// production implementation built from the config.
type Options struct {
	Sink          display.Sink
	Notifier      notify.Notifier
	NewTranslator func(channel task.Channel) (worker.Translator, error)
	NewRecorder   func(cfg recording.Config) Recorder
	NewRecognizer func(cfg recognizer.Config) Recognizer
}

type Pipeline interface {
	// Run starts a live captioning session in the background.
	Run(ctx context.Context)
	// Process drives one session from events until they end or ctx is done.
	Process(ctx context.Context, events <-chan recognizer.Event) error
	Stop()
	Wait()
	Status() Status
	SessionID() string
	Stats() Stats
}

type pipeline struct {
	cfg  *config.Config
	opts Options

	fastTr worker.Translator
	slowTr worker.Translator

	mu        sync.RWMutex
	status    Status
	sessionID string
	stats     Stats
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// New builds a pipeline for cfg. Translators are created up front so a bad
// translation config fails here rather than mid-session.
func New(cfg *config.Config, opts Options) (Pipeline, error) {
	if opts.Sink == nil {
		opts.Sink = display.Nop{}
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Nop{}
	}
	if opts.NewTranslator == nil {
		opts.NewTranslator = backendFactory(cfg)
	}
	if opts.NewRecorder == nil {
		opts.NewRecorder = func(c recording.Config) Recorder { return recording.NewRecorder(c) }
	}
	if opts.NewRecognizer == nil {
		opts.NewRecognizer = func(c recognizer.Config) Recognizer { return recognizer.NewClient(c) }
	}

	fastTr, err := opts.NewTranslator(task.Fast)
	if err != nil {
		return nil, fmt.Errorf("fast translator: %w", err)
	}
	slowTr, err := opts.NewTranslator(task.Slow)
	if err != nil {
		return nil, fmt.Errorf("slow translator: %w", err)
	}

	return &pipeline{
		cfg:    cfg,
		opts:   opts,
		fastTr: fastTr,
		slowTr: slowTr,
		status: Idle,
	}, nil
}

// backendFactory gives each channel its own cached backend over one adapter.
func backendFactory(cfg *config.Config) func(task.Channel) (worker.Translator, error) {
	var (
		once    sync.Once
		adapter translator.Adapter
		aErr    error
	)
	return func(ch task.Channel) (worker.Translator, error) {
		once.Do(func() {
			adapter, aErr = translator.NewAdapter(cfg.ToTranslatorConfig())
		})
		if aErr != nil {
			return nil, aErr
		}
		return translator.NewBackend(ch.String(), adapter, cfg.Translation.CacheSize, cfg.Translation.RequestTimeout)
	}
}

func (p *pipeline) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

func (p *pipeline) SessionID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sessionID
}

func (p *pipeline) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stats
}

func (p *pipeline) setStatus(s Status) {
	p.mu.Lock()
	p.status = s
	p.mu.Unlock()
}

// Run marks the pipeline running before it returns, so a caller checking
// Status right after Run never sees Idle while the recognizer connects.
func (p *pipeline) Run(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	id := uuid.NewString()
	p.mu.Lock()
	if p.status != Idle {
		p.mu.Unlock()
		cancel()
		log.Printf("Pipeline: Run called while %s", p.status)
		return
	}
	p.cancel = cancel
	p.begin(id)
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()
		defer p.setStatus(Idle)
		if err := p.runLive(runCtx, id); err != nil {
			log.Printf("Pipeline: live session error: %v", err)
			p.opts.Notifier.Error(err.Error())
		}
	}()
}

func (p *pipeline) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	if p.status == Running {
		p.status = Stopping
	}
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

func (p *pipeline) Wait() {
	p.wg.Wait()
}

func (p *pipeline) runLive(ctx context.Context, id string) error {
	rec := p.opts.NewRecognizer(p.cfg.ToRecognizerConfig())
	if err := rec.Start(ctx); err != nil {
		return fmt.Errorf("start recognizer: %w", err)
	}
	defer rec.Close()
	p.opts.Notifier.Status("connected to recognizer")

	recorder := p.opts.NewRecorder(p.cfg.ToRecordingConfig())
	frames, errCh, err := recorder.Start(ctx)
	if err != nil {
		return fmt.Errorf("start recording: %w", err)
	}
	defer recorder.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sent, failed := recording.Forward(gctx, frames, rec)
		log.Printf("Pipeline: audio forwarding done, sent=%d failed=%d", sent, failed)
		return nil
	})
	g.Go(func() error {
		for err := range errCh {
			p.opts.Notifier.Error(fmt.Sprintf("recording: %v", err))
		}
		return nil
	})
	g.Go(func() error {
		return p.process(gctx, id, rec.Events())
	})
	return g.Wait()
}

func (p *pipeline) Process(ctx context.Context, events <-chan recognizer.Event) error {
	id := uuid.NewString()
	p.mu.Lock()
	if p.status != Idle {
		p.mu.Unlock()
		return fmt.Errorf("session already running")
	}
	p.begin(id)
	p.mu.Unlock()
	defer p.setStatus(Idle)

	return p.process(ctx, id, events)
}

// begin must be called with p.mu held.
func (p *pipeline) begin(id string) {
	p.status = Running
	p.sessionID = id
	p.stats = Stats{SessionID: id}
}

func (p *pipeline) process(ctx context.Context, id string, events <-chan recognizer.Event) error {
	log.Printf("Pipeline: session %s started", id)
	p.opts.Notifier.SessionChanged(true)
	defer p.opts.Notifier.SessionChanged(false)

	sc := p.cfg.Session
	fastQ := queue.New("fast", sc.FastQueueDepth)
	// sentences are never dropped, so the slow queue is unbounded
	slowQ := queue.New("slow", 0)
	completions := make(chan *task.Task, 64)

	fastW := worker.New("fast", fastQ, p.fastTr, completions, sc.PollTimeout)
	slowW := worker.New("slow", slowQ, p.slowTr, completions, sc.PollTimeout)

	tw, err := openTranscript(p.cfg.General.TranscriptDir, id)
	if err != nil {
		log.Printf("Pipeline: transcript disabled: %v", err)
	}

	s := newSession(id, scheduler.New(fastQ, slowQ), p.opts.Sink, p.opts.Notifier, tw, sc)
	s.sched.SetDebug(p.cfg.General.Debug)

	g, gctx := errgroup.WithContext(ctx)
	workerCtx, stopWorkers := context.WithCancel(gctx)
	g.Go(func() error { return fastW.Run(workerCtx) })
	g.Go(func() error { return slowW.Run(workerCtx) })
	g.Go(func() error {
		defer stopWorkers()
		defer slowQ.Close()
		defer fastQ.Close()
		defer slowW.Stop()
		defer fastW.Stop()
		return s.loop(gctx, events, completions, p.publish)
	})

	err = g.Wait()

	if tw != nil {
		if cerr := tw.Close(); cerr != nil {
			log.Printf("Pipeline: close transcript: %v", cerr)
		}
	}

	p.mu.Lock()
	p.stats.Fast = fastW.Stats()
	p.stats.Slow = slowW.Stats()
	p.stats.FastBackend = backendStats(p.fastTr)
	p.stats.SlowBackend = backendStats(p.slowTr)
	final := p.stats
	p.mu.Unlock()

	log.Printf("Pipeline: session %s finished: %s", id, final)
	return err
}

// backendStats reads the request and cache counters of tr when it has them.
func backendStats(tr worker.Translator) translator.Stats {
	if b, ok := tr.(interface{ Stats() translator.Stats }); ok {
		return b.Stats()
	}
	return translator.Stats{}
}

func (p *pipeline) publish(st Stats) {
	p.mu.Lock()
	st.Fast, st.Slow = p.stats.Fast, p.stats.Slow
	st.FastBackend, st.SlowBackend = p.stats.FastBackend, p.stats.SlowBackend
	p.stats = st
	p.mu.Unlock()
}
