package tui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/hyprsubs/internal/config"
)

// editSession handles segmentation timing and queue sizes
func editSession(cfg *config.Config) error {
	timeout := cfg.Session.Timeout.String()
	tick := cfg.Session.TickInterval.String()
	fastDepth := strconv.Itoa(cfg.Session.FastQueueDepth)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Silence Timeout").
				Description("Unfinished text is translated as final after this long without input").
				Placeholder("4s").
				Value(&timeout).
				Validate(validateDuration),
			huh.NewInput().
				Title("Check Interval").
				Placeholder("500ms").
				Value(&tick).
				Validate(validateDuration),
			huh.NewInput().
				Title("Draft Queue Depth").
				Description("Oldest draft translations are dropped beyond this").
				Placeholder("32").
				Value(&fastDepth).
				Validate(validateNumber),
		),
	).WithTheme(formTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Session.Timeout = mustDuration(timeout, cfg.Session.Timeout)
	cfg.Session.TickInterval = mustDuration(tick, cfg.Session.TickInterval)
	cfg.Session.FastQueueDepth, _ = strconv.Atoi(fastDepth)
	return nil
}

// editDisplay handles where captions are shown
func editDisplay(cfg *config.Config) error {
	terminal := cfg.Display.Terminal
	overlay := cfg.Display.OverlayAddr
	width := strconv.Itoa(cfg.Display.MaxWidth)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Show captions in the terminal?").
				Value(&terminal),
			huh.NewInput().
				Title("Terminal Width").
				Placeholder("100").
				Value(&width).
				Validate(validateNumber),
			huh.NewInput().
				Title("Overlay Address").
				Description("host:port serving caption events on /ws. Empty = off.").
				Placeholder("127.0.0.1:7788").
				Value(&overlay),
		),
	).WithTheme(formTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Display.Terminal = terminal
	cfg.Display.OverlayAddr = overlay
	cfg.Display.MaxWidth, _ = strconv.Atoi(width)
	return nil
}

// editNotifications handles the notifications section
func editNotifications(cfg *config.Config) error {
	enabled := cfg.Notifications.Enabled
	notifType := cfg.Notifications.Type
	if notifType == "" {
		notifType = "desktop"
	}

	typeOptions := []huh.Option[string]{
		huh.NewOption("Desktop notifications (notify-send)", "desktop"),
		huh.NewOption("Log to console only", "log"),
		huh.NewOption("None (silent)", "none"),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable notifications?").
				Description("Session start/stop, timeouts and connection problems").
				Value(&enabled),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Notification Type").
				Options(typeOptions...).
				Value(&notifType),
		).WithHideFunc(func() bool { return !enabled }),
	).WithTheme(formTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Notifications.Enabled = enabled
	cfg.Notifications.Type = notifType
	return nil
}

func mustDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
