package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/leonardotrapani/hyprsubs/internal/bus"
	"github.com/leonardotrapani/hyprsubs/internal/config"
	"github.com/leonardotrapani/hyprsubs/internal/daemon"
	"github.com/leonardotrapani/hyprsubs/internal/deps"
	"github.com/leonardotrapani/hyprsubs/internal/display"
	"github.com/leonardotrapani/hyprsubs/internal/language"
	"github.com/leonardotrapani/hyprsubs/internal/notify"
	"github.com/leonardotrapani/hyprsubs/internal/pipeline"
	"github.com/leonardotrapani/hyprsubs/internal/recognizer"
	"github.com/leonardotrapani/hyprsubs/internal/translator"
	"github.com/leonardotrapani/hyprsubs/internal/tui"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hyprsubs",
	Short: "Live bilingual subtitles for Wayland/Hyprland",
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		toggleCmd(),
		statusCmd(),
		versionCmd(),
		stopCmd(),
		configureCmd(),
		replayCmd(),
		translateCmd(),
		doctorCmd(),
	)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := config.NewManager()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return daemon.New(mgr).Run()
		},
	}
}

// busCmd builds a command that sends one byte to the daemon and prints the
// reply.
func busCmd(use, short string, command byte, action string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(command)
			if err != nil {
				return fmt.Errorf("failed to %s: %w", action, err)
			}
			fmt.Print(resp)
			return nil
		},
	}
}

func toggleCmd() *cobra.Command {
	return busCmd("toggle", "Start or stop live subtitles", bus.CmdToggle, "toggle subtitles")
}

func statusCmd() *cobra.Command {
	return busCmd("status", "Get current session status", bus.CmdStatus, "get status")
}

func versionCmd() *cobra.Command {
	return busCmd("version", "Get protocol version", bus.CmdVersion, "get version")
}

func stopCmd() *cobra.Command {
	return busCmd("stop", "Stop the daemon", bus.CmdQuit, "stop daemon")
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration editor for hyprsubs.
This will guide you through setting up:
- The streaming recognizer connection
- The translation backend and language pair
- Provider API keys (OpenAI, Groq)
- Session timing, display and notification preferences`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure()
		},
	}
}

func runConfigure() error {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	result, err := tui.Run(cfg)
	if err != nil {
		return fmt.Errorf("configuration editor error: %w", err)
	}
	if result.Cancelled {
		fmt.Println("Configuration cancelled.")
		return nil
	}

	if err := result.Config.Validate(); err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		return err
	}
	if err := config.Save(result.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println(tui.StyleSuccess.Render("Configuration saved successfully!"))
	fmt.Println()
	showNextSteps()
	return nil
}

func showNextSteps() {
	serviceRunning := false
	if _, err := exec.Command("systemctl", "--user", "is-active", "--quiet", "hyprsubs.service").CombinedOutput(); err == nil {
		serviceRunning = true
	}

	fmt.Println("Next Steps:")
	fmt.Println("1. Make sure the streaming recognizer and translation endpoint are running")
	if !serviceRunning {
		fmt.Println("2. Start the service: systemctl --user start hyprsubs.service")
	} else {
		fmt.Println("2. Config changes apply to the next session; no restart needed")
	}
	fmt.Println("3. Start subtitles: hyprsubs toggle")
	fmt.Println()

	configPath, _ := config.GetConfigPath()
	fmt.Printf("Config file location: %s\n", configPath)
}

func replayCmd() *cobra.Command {
	var pace time.Duration

	cmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "Run recorded recognizer output (JSON lines) through the subtitle pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open replay file: %w", err)
			}
			defer f.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runReplay(ctx, cfg, f, cmd.OutOrStdout(), pace)
		},
	}

	cmd.Flags().DurationVar(&pace, "pace", 0, "delay between recognizer messages (e.g. 200ms)")
	return cmd
}

func runReplay(ctx context.Context, cfg *config.Config, r io.Reader, w io.Writer, pace time.Duration) error {
	sinks := display.Multi{display.NewTerminal(w, cfg.Display.MaxWidth)}
	if cfg.Display.OverlayAddr != "" {
		overlay := display.NewOverlay(cfg.Display.OverlayAddr)
		if err := overlay.Start(ctx); err != nil {
			log.Printf("Replay: overlay disabled: %v", err)
		} else {
			defer overlay.Stop()
			sinks = append(sinks, overlay)
		}
	}

	p, err := pipeline.New(cfg, pipeline.Options{Sink: sinks, Notifier: notify.Log{}})
	if err != nil {
		return err
	}

	events := make(chan recognizer.Event, 16)
	replayErr := make(chan error, 1)
	go func() {
		defer close(events)
		n, err := recognizer.Replay(ctx, r, events, pace)
		log.Printf("Replay: sent %d recognizer messages", n)
		replayErr <- err
	}()

	if err := p.Process(ctx, events); err != nil {
		return err
	}
	if err := <-replayErr; err != nil && ctx.Err() == nil {
		return err
	}
	fmt.Fprintf(w, "\n%s\n", p.Stats())
	return nil
}

func translateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "translate <text>",
		Short: "Translate one sentence with the configured backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return runTranslate(cmd.Context(), cfg, args[0], cmd.OutOrStdout())
		},
	}
}

func runTranslate(ctx context.Context, cfg *config.Config, text string, w io.Writer) error {
	adapter, err := translator.NewAdapter(cfg.ToTranslatorConfig())
	if err != nil {
		return err
	}
	backend, err := translator.NewBackend("cli", adapter, 1, cfg.Translation.RequestTimeout)
	if err != nil {
		return err
	}

	res := backend.Translate(ctx, text)
	fmt.Fprintln(w, res.Text)
	if res.Fallback {
		return fmt.Errorf("translation failed, showing source text")
	}
	return nil
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external programs and the recognizer address",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return runDoctor(cfg, deps.CheckAll(), cmd.OutOrStdout())
		},
	}
}

func runDoctor(cfg *config.Config, statuses []deps.Status, w io.Writer) error {
	for _, s := range statuses {
		mark := tui.StyleSuccess.Render("[x]")
		detail := s.Version
		if !s.Installed {
			mark = tui.StyleWarning.Render("[ ]")
			detail = "not found"
			if s.Required {
				mark = tui.StyleError.Render("[ ]")
			}
		}
		fmt.Fprintf(w, "%s %-12s %s %s\n", mark, s.Name, tui.StyleMuted.Render(s.Purpose), detail)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(w, "%s config: %v\n", tui.StyleError.Render("[ ]"), err)
		return err
	}
	fmt.Fprintf(w, "%s config valid, recognizer %s\n", tui.StyleSuccess.Render("[x]"), cfg.ToRecognizerConfig().URL())
	fmt.Fprintf(w, "    translating %s to %s via %s\n",
		language.Label(cfg.Translation.SourceLanguage), language.Label(cfg.Translation.TargetLanguage), cfg.Translation.Backend)

	if missing := deps.Missing(statuses); len(missing) > 0 {
		return fmt.Errorf("missing required programs: %v", missing)
	}
	return nil
}
