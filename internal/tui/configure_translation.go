package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/hyprsubs/internal/config"
)

// editTranslation handles the translation backend and language pair
func editTranslation(cfg *config.Config) error {
	backend := cfg.Translation.Backend
	if backend == "" {
		backend = "http"
	}

	backendOptions := []huh.Option[string]{
		huh.NewOption("HTTP endpoint ({text} → {translated_text})", "http"),
		huh.NewOption("OpenAI", "openai"),
		huh.NewOption("Groq", "groq"),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Translation Backend").
				Options(backendOptions...).
				Value(&backend),
		),
	).WithTheme(formTheme())
	if err := form.Run(); err != nil {
		return err
	}

	endpoint := cfg.Translation.Endpoint
	model := cfg.Translation.Model
	var target huh.Field
	if backend == "http" {
		target = huh.NewInput().
			Title("Endpoint").
			Description("URL receiving POST {\"text\": ...}").
			Placeholder("http://localhost:8000/translate").
			Value(&endpoint).
			Validate(func(s string) error {
				if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
					return fmt.Errorf("must start with http:// or https://")
				}
				return nil
			})
	} else {
		target = huh.NewInput().
			Title("Model").
			Description("Empty = provider default").
			Value(&model)
	}

	source := cfg.Translation.SourceLanguage
	targetLang := cfg.Translation.TargetLanguage
	if targetLang == "" {
		targetLang = "en"
	}
	timeout := cfg.Translation.RequestTimeout.String()

	details := huh.NewForm(
		huh.NewGroup(target),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Spoken Language").
				Options(languageOptions(source, true)...).
				Value(&source),
			huh.NewSelect[string]().
				Title("Subtitle Language").
				Options(languageOptions(targetLang, false)...).
				Value(&targetLang),
			huh.NewInput().
				Title("Request Timeout").
				Description("Untranslated text is shown when a request takes longer").
				Placeholder("1.2s").
				Value(&timeout).
				Validate(validateDuration),
		),
	).WithTheme(formTheme())
	if err := details.Run(); err != nil {
		return err
	}

	cfg.Translation.Backend = backend
	cfg.Translation.Endpoint = endpoint
	cfg.Translation.Model = model
	cfg.Translation.SourceLanguage = source
	cfg.Translation.TargetLanguage = targetLang
	cfg.Translation.RequestTimeout = mustDuration(timeout, cfg.Translation.RequestTimeout)

	if backend != "http" && cfg.Providers[backend].APIKey == "" {
		fmt.Println(StyleWarning.Render(fmt.Sprintf("No API key for %s yet; add one under API Keys.", getProviderDisplayName(backend))))
	}
	return nil
}

// editProviders handles API keys for the LLM translation backends
func editProviders(cfg *config.Config) error {
	keys := make(map[string]*string, len(AllProviders))
	var fields []huh.Field
	for _, p := range AllProviders {
		key := cfg.Providers[p].APIKey
		keys[p] = &key

		desc := "Not configured"
		if key != "" {
			desc = "Current: " + maskAPIKey(key)
		}
		fields = append(fields, huh.NewInput().
			Title(getProviderDisplayName(p)+" API Key").
			Description(desc).
			EchoMode(huh.EchoModePassword).
			Value(keys[p]))
	}

	form := huh.NewForm(huh.NewGroup(fields...)).WithTheme(formTheme())
	if err := form.Run(); err != nil {
		return err
	}

	if cfg.Providers == nil {
		cfg.Providers = make(map[string]config.ProviderConfig)
	}
	for p, key := range keys {
		k := strings.TrimSpace(*key)
		if k == "" {
			delete(cfg.Providers, p)
			continue
		}
		cfg.Providers[p] = config.ProviderConfig{APIKey: k}
	}
	return nil
}
