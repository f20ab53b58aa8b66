//go:build integration

package main

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/leonardotrapani/hyprsubs/internal/config"
	"github.com/leonardotrapani/hyprsubs/internal/recognizer"
	"github.com/leonardotrapani/hyprsubs/internal/translator"
)

const testTimeout = 30 * time.Second

var testSentences = []string{"你好。", "今天天气很好。", "我们去公园吧！"}

func TestTranslationBackends(t *testing.T) {
	base := loadTestConfig(t)

	for _, backend := range []string{"http", "openai", "groq"} {
		t.Run(backend, func(t *testing.T) {
			cfg := *base
			cfg.Translation.Backend = backend
			tc := cfg.ToTranslatorConfig()
			if backend != "http" && tc.APIKey == "" {
				t.Skipf("missing api key for %s", backend)
			}
			if backend == "http" && os.Getenv("HYPRSUBS_TRANSLATE_ENDPOINT") == "" {
				t.Skip("HYPRSUBS_TRANSLATE_ENDPOINT not set")
			}
			if backend == "http" {
				tc.Endpoint = os.Getenv("HYPRSUBS_TRANSLATE_ENDPOINT")
			}

			adapter, err := translator.NewAdapter(tc)
			if err != nil {
				t.Fatalf("NewAdapter() error = %v", err)
			}
			b, err := translator.NewBackend(backend, adapter, 16, 10*time.Second)
			if err != nil {
				t.Fatalf("NewBackend() error = %v", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
			defer cancel()
			for _, s := range testSentences {
				res := b.Translate(ctx, s)
				if res.Fallback {
					t.Errorf("Translate(%q) fell back to source", s)
					continue
				}
				t.Logf("%s -> %s", s, res.Text)
			}
		})
	}
}

func TestRecognizerHandshake(t *testing.T) {
	if os.Getenv("HYPRSUBS_RECOGNIZER") == "" {
		t.Skip("HYPRSUBS_RECOGNIZER not set")
	}
	cfg := loadTestConfig(t)

	client := recognizer.NewClient(cfg.ToRecognizerConfig())
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	if err := client.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer client.Close()

	// one second of silence is enough for the server to answer the end-of-stream marker
	silence := make([]byte, cfg.Recording.SampleRate*2)
	if err := client.SendChunk(silence); err != nil {
		t.Fatalf("SendChunk() error = %v", err)
	}
	if err := client.Finalize(ctx); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
}

func loadTestConfig(t *testing.T) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Logf("warning: could not load config: %v", err)
		}
		return config.DefaultConfig()
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]config.ProviderConfig)
	}
	return cfg
}
