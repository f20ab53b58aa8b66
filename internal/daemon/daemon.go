package daemon

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/leonardotrapani/hyprsubs/internal/bus"
	"github.com/leonardotrapani/hyprsubs/internal/config"
	"github.com/leonardotrapani/hyprsubs/internal/deps"
	"github.com/leonardotrapani/hyprsubs/internal/display"
	"github.com/leonardotrapani/hyprsubs/internal/notify"
	"github.com/leonardotrapani/hyprsubs/internal/pipeline"
)

// PipelineFactory builds the pipeline for one captioning session.
type PipelineFactory func(cfg *config.Config, opts pipeline.Options) (pipeline.Pipeline, error)

type Daemon struct {
	mu        sync.Mutex
	configMgr *config.Manager
	notifier  notify.Notifier

	newPipeline PipelineFactory
	overlay     *display.Overlay

	ctx    context.Context
	cancel context.CancelFunc

	pipeline pipeline.Pipeline
}

func New(configMgr *config.Manager) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		configMgr:   configMgr,
		notifier:    notifierFor(configMgr.GetConfig()),
		newPipeline: pipeline.New,
		ctx:         ctx,
		cancel:      cancel,
	}
}

func notifierFor(cfg *config.Config) notify.Notifier {
	if !cfg.Notifications.Enabled {
		return notify.Nop{}
	}
	return notify.New(cfg.Notifications.Type)
}

func (d *Daemon) status() (pipeline.Status, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pipeline == nil {
		return pipeline.Idle, ""
	}
	return d.pipeline.Status(), d.pipeline.SessionID()
}

func (d *Daemon) Run() error {
	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()

	if missing := deps.Missing(deps.CheckAll()); len(missing) > 0 {
		log.Printf("Daemon: missing required programs %v, live sessions will fail (see hyprsubs doctor)", missing)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			log.Printf("Received signal %v, shutting down gracefully", sig)
			d.cancel()
		case <-d.ctx.Done():
		}
	}()

	d.configMgr.OnReload(func(cfg *config.Config) {
		d.mu.Lock()
		d.notifier = notifierFor(cfg)
		d.mu.Unlock()
		log.Printf("Daemon: config reloaded, changes apply to the next session")
	})
	if err := d.configMgr.StartWatching(d.ctx); err != nil {
		log.Printf("Daemon: config watching disabled: %v", err)
	}
	defer d.configMgr.Stop()

	if addr := d.configMgr.GetConfig().Display.OverlayAddr; addr != "" {
		overlay := display.NewOverlay(addr)
		if err := overlay.Start(d.ctx); err != nil {
			log.Printf("Daemon: overlay disabled: %v", err)
		} else {
			d.overlay = overlay
			defer overlay.Stop()
		}
	}

	go func() {
		<-d.ctx.Done()
		ln.Close()
	}()
	defer d.stopPipeline()

	log.Printf("Daemon started, listening on socket")

	for {
		c, err := ln.Accept()
		if err != nil {
			if d.ctx.Err() != nil {
				log.Printf("Shutdown requested")
				return nil
			}
			log.Printf("Accept error: %v", err)
			return fmt.Errorf("accept failed: %w", err)
		}
		go d.handle(c)
	}
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		log.Printf("Client read error: %v", err)
		fmt.Fprintf(c, "ERR read_error: %v\n", err)
		return
	}
	if len(line) == 0 {
		fmt.Fprint(c, "ERR empty\n")
		return
	}
	cmd := line[0]

	switch cmd {
	case bus.CmdToggle:
		if err := d.toggle(); err != nil {
			fmt.Fprintf(c, "ERR toggle: %v\n", err)
			return
		}
		status, _ := d.status()
		fmt.Fprintf(c, "OK toggled status=%s\n", status)
	case bus.CmdStatus:
		status, id := d.status()
		if id == "" || status == pipeline.Idle {
			id = "none"
		}
		fmt.Fprintf(c, "STATUS status=%s session=%s\n", status, id)
	case bus.CmdVersion:
		fmt.Fprintf(c, "STATUS proto=%s\n", bus.ProtoVer)
	case bus.CmdQuit:
		fmt.Fprint(c, "OK quitting\n")
		d.cancel()
	default:
		log.Printf("Unknown command: %c", cmd)
		fmt.Fprintf(c, "ERR unknown=%q\n", cmd)
	}
}

// toggle starts a captioning session when idle and stops the running one
// otherwise.
func (d *Daemon) toggle() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pipeline != nil && d.pipeline.Status() != pipeline.Idle {
		log.Printf("Daemon: stopping session %s", d.pipeline.SessionID())
		d.pipeline.Stop()
		d.pipeline = nil
		return nil
	}
	if d.pipeline != nil {
		d.pipeline.Wait()
	}

	cfg := d.configMgr.GetConfig()
	if err := cfg.Validate(); err != nil {
		d.notifier.Error(fmt.Sprintf("invalid config: %v", err))
		return err
	}

	p, err := d.newPipeline(cfg, pipeline.Options{
		Sink:     d.sinks(cfg),
		Notifier: d.notifier,
	})
	if err != nil {
		d.notifier.Error(err.Error())
		return err
	}
	p.Run(d.ctx)
	d.pipeline = p
	return nil
}

func (d *Daemon) sinks(cfg *config.Config) display.Sink {
	var sinks display.Multi
	if cfg.Display.Terminal {
		sinks = append(sinks, display.NewTerminal(os.Stdout, cfg.Display.MaxWidth))
	}
	if d.overlay != nil {
		sinks = append(sinks, d.overlay)
	}
	if len(sinks) == 0 {
		return display.Nop{}
	}
	return sinks
}

func (d *Daemon) stopPipeline() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pipeline != nil {
		d.pipeline.Stop()
		d.pipeline = nil
	}
}
