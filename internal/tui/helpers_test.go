package tui

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/leonardotrapani/hyprsubs/internal/config"
)

func TestParseChunkSize(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"5,10,5", []int{5, 10, 5}, false},
		{"5 10 5", []int{5, 10, 5}, false},
		{"0, 8, 4", []int{0, 8, 4}, false},
		{"5,10", nil, true},
		{"5,x,5", nil, true},
		{"5,-1,5", nil, true},
	}
	for _, tt := range tests {
		got, err := parseChunkSize(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseChunkSize(%q) error = %v", tt.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseChunkSize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := formatChunkSize([]int{5, 10, 5}); got != "5,10,5" {
		t.Errorf("formatChunkSize() = %q", got)
	}
}

func TestValidators(t *testing.T) {
	if validatePort("10095") != nil || validatePort("0") == nil || validatePort("70000") == nil {
		t.Error("validatePort gave wrong results")
	}
	if validateDuration("4s") != nil || validateDuration("soon") == nil || validateDuration("-1s") == nil {
		t.Error("validateDuration gave wrong results")
	}
	if validateNumber("32") != nil || validateNumber("many") == nil {
		t.Error("validateNumber gave wrong results")
	}
	if got := mustDuration("bad", time.Second); got != time.Second {
		t.Errorf("mustDuration fallback = %v", got)
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := maskAPIKey("short"); got != "***" {
		t.Errorf("maskAPIKey(short) = %q", got)
	}
	if got := maskAPIKey("sk-abcdefghijklmnop"); got != "sk-abcd...mnop" {
		t.Errorf("maskAPIKey() = %q", got)
	}
}

func TestLabels(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Providers["groq"] = config.ProviderConfig{APIKey: "gsk_123456789"}
	cfg.Display.OverlayAddr = "127.0.0.1:7788"
	cfg.Notifications.Enabled = false

	checks := map[string]string{
		formatRecognizerLabel(cfg):    "wss://localhost:10095, 2pass",
		formatTranslationLabel(cfg):   "Chinese (zh) → English (en) via http://localhost:8000/translate",
		formatProvidersLabel(cfg):     "Groq",
		formatDisplayLabel(cfg):       "overlay 127.0.0.1:7788",
		formatNotificationsLabel(cfg): "disabled",
	}
	for label, want := range checks {
		if !strings.Contains(label, want) {
			t.Errorf("label %q does not contain %q", label, want)
		}
	}

	cfg.Translation.Backend = "openai"
	cfg.Translation.Model = "gpt-4o-mini"
	if got := formatTranslationLabel(cfg); !strings.Contains(got, "openai/gpt-4o-mini") {
		t.Errorf("formatTranslationLabel() = %q", got)
	}
}

func TestLanguageOptions(t *testing.T) {
	withAuto := languageOptions("", true)
	withoutAuto := languageOptions("en", false)
	if len(withAuto) != len(withoutAuto)+1 {
		t.Errorf("auto option count mismatch: %d vs %d", len(withAuto), len(withoutAuto))
	}
	found := false
	for _, o := range withoutAuto {
		if o.Value == "en" && strings.Contains(o.Key, "(current)") {
			found = true
		}
	}
	if !found {
		t.Error("current language not marked")
	}
}

func TestLanguageLabel(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"", "auto"},
		{"zh", "Chinese (zh)"},
		{"en", "English (en)"},
	}
	for _, tt := range tests {
		if got := languageLabel(tt.code); got != tt.want {
			t.Errorf("languageLabel(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
