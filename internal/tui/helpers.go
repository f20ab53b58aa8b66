package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/hyprsubs/internal/config"
	"github.com/leonardotrapani/hyprsubs/internal/language"
)

// AllProviders lists the LLM providers that can translate (require API keys).
var AllProviders = []string{"openai", "groq"}

var providerDisplayNames = map[string]string{
	"openai": "OpenAI",
	"groq":   "Groq",
}

func getProviderDisplayName(providerName string) string {
	if name, ok := providerDisplayNames[providerName]; ok {
		return name
	}
	return providerName
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

func getConfiguredProviders(cfg *config.Config) []string {
	providers := make([]string, 0, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		if pc.APIKey != "" {
			providers = append(providers, name)
		}
	}
	sort.Strings(providers)
	return providers
}

func formatRecognizerLabel(cfg *config.Config) string {
	scheme := "ws"
	if cfg.Recognizer.SSL {
		scheme = "wss"
	}
	return fmt.Sprintf("Recognizer (%s://%s:%d, %s)", scheme, cfg.Recognizer.Host, cfg.Recognizer.Port, cfg.Recognizer.Mode)
}

func formatTranslationLabel(cfg *config.Config) string {
	t := cfg.Translation
	target := t.Endpoint
	if t.Backend != "http" {
		target = t.Backend
		if t.Model != "" {
			target += "/" + t.Model
		}
	}
	return fmt.Sprintf("Translation (%s → %s via %s)", languageLabel(t.SourceLanguage), languageLabel(t.TargetLanguage), target)
}

func formatProvidersLabel(cfg *config.Config) string {
	configured := getConfiguredProviders(cfg)
	if len(configured) == 0 {
		return "API Keys (none)"
	}
	names := make([]string, len(configured))
	for i, p := range configured {
		names[i] = getProviderDisplayName(p)
	}
	return fmt.Sprintf("API Keys (%s)", strings.Join(names, ", "))
}

func formatSessionLabel(cfg *config.Config) string {
	return fmt.Sprintf("Session (timeout=%s, fast queue=%d)", cfg.Session.Timeout, cfg.Session.FastQueueDepth)
}

func formatDisplayLabel(cfg *config.Config) string {
	var parts []string
	if cfg.Display.Terminal {
		parts = append(parts, "terminal")
	}
	if cfg.Display.OverlayAddr != "" {
		parts = append(parts, "overlay "+cfg.Display.OverlayAddr)
	}
	if len(parts) == 0 {
		return "Display (off)"
	}
	return fmt.Sprintf("Display (%s)", strings.Join(parts, ", "))
}

func formatNotificationsLabel(cfg *config.Config) string {
	if !cfg.Notifications.Enabled {
		return "Notifications (disabled)"
	}
	return fmt.Sprintf("Notifications (%s)", cfg.Notifications.Type)
}

func languageLabel(code string) string {
	if code == "" {
		return "auto"
	}
	return language.Label(code)
}

// languageOptions lists every known language, current one marked.
func languageOptions(current string, allowAuto bool) []huh.Option[string] {
	var options []huh.Option[string]
	if allowAuto {
		label := "Auto-detect"
		if current == "" {
			label += " (current)"
		}
		options = append(options, huh.NewOption(label, ""))
	}
	for _, lang := range language.List() {
		label := fmt.Sprintf("%s (%s)", lang.Name, lang.Code)
		if lang.Code == current {
			label += " (current)"
		}
		options = append(options, huh.NewOption(label, lang.Code))
	}
	return options
}

// parseChunkSize parses "5,10,5" or "5 10 5".
func parseChunkSize(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) != 3 {
		return nil, fmt.Errorf("need three numbers, e.g. 5,10,5")
	}
	out := make([]int, 3)
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%q is not a non-negative number", f)
		}
		out[i] = n
	}
	return out, nil
}

func formatChunkSize(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func validateNumber(s string) error {
	if _, err := strconv.Atoi(s); err != nil {
		return fmt.Errorf("must be a number")
	}
	return nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("must be a port between 1 and 65535")
	}
	return nil
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration format (use '500ms', '4s', etc.)")
	}
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}
