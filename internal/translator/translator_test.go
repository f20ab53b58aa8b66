package translator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type stubAdapter struct {
	calls atomic.Int32
	fn    func(ctx context.Context, text string) (string, error)
}

func (s *stubAdapter) Translate(ctx context.Context, text string) (string, error) {
	s.calls.Add(1)
	return s.fn(ctx, text)
}

func newTranslateServer(t *testing.T, handler func(text string) (int, string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Errorf("Content-Type = %q", ct)
		}
		var req translateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		status, body := handler(req.Text)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPAdapter_Translate(t *testing.T) {
	srv := newTranslateServer(t, func(text string) (int, string) {
		if text != "你好" {
			t.Errorf("text = %q", text)
		}
		return http.StatusOK, `{"translated_text":"Hello"}`
	})

	got, err := NewHTTPAdapter(srv.URL, nil).Translate(context.Background(), "你好")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if got != "Hello" {
		t.Errorf("Translate() = %q, want Hello", got)
	}
}

func TestHTTPAdapter_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"server error", http.StatusInternalServerError, "boom", func(err error) bool { return IsHTTPStatus(err, 500) }},
		{"empty translation", http.StatusOK, `{"translated_text":""}`, func(err error) bool { return errors.Is(err, ErrEmptyResponse) }},
		{"bad json", http.StatusOK, `not json`, func(err error) bool { return err != nil && strings.Contains(err.Error(), "decode") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTranslateServer(t, func(string) (int, string) { return tt.status, tt.body })
			_, err := NewHTTPAdapter(srv.URL, nil).Translate(context.Background(), "x")
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestBackend_CacheRoundTrip(t *testing.T) {
	stub := &stubAdapter{fn: func(_ context.Context, text string) (string, error) {
		return "Hello", nil
	}}
	b, err := NewBackend("slow", stub, 0, 0)
	if err != nil {
		t.Fatal(err)
	}

	first := b.Translate(context.Background(), "你好")
	second := b.Translate(context.Background(), "你好")

	if first.Text != "Hello" || first.Cached {
		t.Errorf("first = %+v", first)
	}
	if second.Text != "Hello" || !second.Cached {
		t.Errorf("second = %+v", second)
	}
	if n := stub.calls.Load(); n != 1 {
		t.Errorf("adapter called %d times, want 1", n)
	}
	if s := b.Stats(); s.Requests != 1 || s.CacheHits != 1 || s.CacheLen != 1 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestBackend_FallsBackToSource(t *testing.T) {
	tests := []struct {
		name string
		fn   func(ctx context.Context, text string) (string, error)
	}{
		{"adapter error", func(context.Context, string) (string, error) {
			return "", errors.New("connection refused")
		}},
		{"mojibake only", func(context.Context, string) (string, error) {
			return " âª ", nil
		}},
		{"timeout", func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubAdapter{fn: tt.fn}
			b, _ := NewBackend("fast", stub, 10, 20*time.Millisecond)

			got := b.Translate(context.Background(), "今天天气")
			if got.Text != "今天天气" || !got.Fallback {
				t.Errorf("Translate() = %+v, want source fallback", got)
			}
			// Fallbacks are not cached.
			b.Translate(context.Background(), "今天天气")
			if n := stub.calls.Load(); n != 2 {
				t.Errorf("adapter called %d times, want 2", n)
			}
		})
	}
}

func TestBackend_OverHTTP(t *testing.T) {
	var hits atomic.Int32
	srv := newTranslateServer(t, func(string) (int, string) {
		hits.Add(1)
		return http.StatusOK, `{"translated_text":"âª Good morning "}`
	})

	b, _ := NewBackend("slow", NewHTTPAdapter(srv.URL, nil), 0, time.Second)
	for i := 0; i < 3; i++ {
		if got := b.Translate(context.Background(), "早上好"); got.Text != "Good morning" {
			t.Fatalf("Translate() = %+v", got)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("endpoint hit %d times, want 1", hits.Load())
	}
}

func TestClean(t *testing.T) {
	tests := map[string]string{
		"âªHello":    "Hello",
		"  Hi  ":     "Hi",
		"âª":         "",
		"a âª b":     "a  b",
	}
	for in, want := range tests {
		if got := Clean(in); got != want {
			t.Errorf("Clean(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewAdapter(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"http", Config{Backend: "http", Endpoint: "http://localhost:8000/translate"}, false},
		{"default is http", Config{Endpoint: "http://localhost:8000/translate"}, false},
		{"http without endpoint", Config{Backend: "http"}, true},
		{"openai", Config{Backend: "openai", APIKey: "sk-test"}, false},
		{"openai without key", Config{Backend: "openai"}, true},
		{"groq", Config{Backend: "groq", APIKey: "gsk-test"}, false},
		{"unknown", Config{Backend: "deepl"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAdapter(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewAdapter() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	tests := []struct {
		name     string
		src, dst string
		contains []string
	}{
		{"named pair", "zh", "en", []string{"from Chinese to English"}},
		{"auto source", "", "fr", []string{"to French", "ONLY the translation"}},
		{"unknown target", "ja", "", []string{"from Japanese to English"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildSystemPrompt(tt.src, tt.dst)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("prompt missing %q:\n%s", want, got)
				}
			}
		})
	}
}
