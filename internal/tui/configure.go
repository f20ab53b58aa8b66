package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/hyprsubs/internal/config"
	"github.com/muesli/termenv"
)

// ConfigureResult holds the configuration result from the TUI
type ConfigureResult struct {
	Config    *config.Config
	Cancelled bool
}

// ConfigSection represents a configuration section
type ConfigSection string

const (
	SectionRecognizer    ConfigSection = "recognizer"
	SectionTranslation   ConfigSection = "translation"
	SectionProviders     ConfigSection = "providers"
	SectionSession       ConfigSection = "session"
	SectionDisplay       ConfigSection = "display"
	SectionNotifications ConfigSection = "notifications"
	SectionSaveExit      ConfigSection = "save_exit"
	SectionDiscardExit   ConfigSection = "discard_exit"
)

// Run starts the menu-based configuration editor on a copy of cfg.
func Run(existingConfig *config.Config) (*ConfigureResult, error) {
	cfg := config.DefaultConfig()
	if existingConfig != nil {
		copied := *existingConfig
		copied.Providers = make(map[string]config.ProviderConfig, len(existingConfig.Providers))
		for k, v := range existingConfig.Providers {
			copied.Providers[k] = v
		}
		cfg = &copied
	}

	for {
		clearScreen()
		fmt.Println(Logo())
		fmt.Println()

		section, err := selectSection(cfg)
		if err != nil {
			return &ConfigureResult{Cancelled: true}, nil
		}

		switch section {
		case SectionSaveExit:
			if err := cfg.Validate(); err != nil {
				fmt.Println(StyleError.Render("Invalid configuration: " + err.Error()))
				continue
			}
			confirmed, err := showSummary(cfg)
			if err != nil {
				return &ConfigureResult{Cancelled: true}, nil
			}
			if confirmed {
				return &ConfigureResult{Config: cfg}, nil
			}

		case SectionDiscardExit:
			return &ConfigureResult{Cancelled: true}, nil

		case SectionRecognizer:
			_ = editRecognizer(cfg)
		case SectionTranslation:
			_ = editTranslation(cfg)
		case SectionProviders:
			_ = editProviders(cfg)
		case SectionSession:
			_ = editSession(cfg)
		case SectionDisplay:
			_ = editDisplay(cfg)
		case SectionNotifications:
			_ = editNotifications(cfg)
		}
	}
}

func selectSection(cfg *config.Config) (ConfigSection, error) {
	options := []huh.Option[ConfigSection]{
		huh.NewOption(formatRecognizerLabel(cfg), SectionRecognizer),
		huh.NewOption(formatTranslationLabel(cfg), SectionTranslation),
		huh.NewOption(formatProvidersLabel(cfg), SectionProviders),
		huh.NewOption(formatSessionLabel(cfg), SectionSession),
		huh.NewOption(formatDisplayLabel(cfg), SectionDisplay),
		huh.NewOption(formatNotificationsLabel(cfg), SectionNotifications),
		huh.NewOption("Save & Exit", SectionSaveExit),
		huh.NewOption("Discard & Exit", SectionDiscardExit),
	}

	var selected ConfigSection
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[ConfigSection]().
				Title("Configuration Menu").
				Description("↑/↓ navigate • enter select • esc cancel").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(formTheme())

	if err := form.Run(); err != nil {
		return "", err
	}
	return selected, nil
}

func showSummary(cfg *config.Config) (bool, error) {
	fmt.Println(StyleBox.Render(summary(cfg)))

	confirmed := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this configuration?").
				Affirmative("Save").
				Negative("Back").
				Value(&confirmed),
		),
	).WithTheme(formTheme())

	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}

func summary(cfg *config.Config) string {
	rows := [][2]string{
		{"Recognizer", formatRecognizerLabel(cfg)},
		{"Translation", formatTranslationLabel(cfg)},
		{"Providers", formatProvidersLabel(cfg)},
		{"Session", formatSessionLabel(cfg)},
		{"Display", formatDisplayLabel(cfg)},
		{"Notifications", formatNotificationsLabel(cfg)},
	}
	var b strings.Builder
	b.WriteString(StyleHeader.Render("Summary"))
	b.WriteString("\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%s %s\n", StyleLabel.Render(r[0]+":"), StyleMuted.Render(r[1]))
	}
	return strings.TrimRight(b.String(), "\n")
}

// clearScreen clears the terminal screen
func clearScreen() {
	output := termenv.NewOutput(os.Stdout)
	output.ClearScreen()
}
