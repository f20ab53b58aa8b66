package translator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyResponse is returned by an adapter whose backend answered without a
// translation.
var ErrEmptyResponse = errors.New("empty translation in response")

// HTTPStatusError reports a non-200 answer from the translation endpoint.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("translation endpoint returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("translation endpoint returned %d: %s", e.StatusCode, e.Body)
}

// IsHTTPStatus reports whether err carries an HTTPStatusError with the given code.
func IsHTTPStatus(err error, code int) bool {
	var statusErr *HTTPStatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}

// Adapter translates one span of text.
type Adapter interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Config selects and configures an adapter.
type Config struct {
	Backend        string // http, openai, groq
	Endpoint       string
	APIKey         string
	Model          string
	SourceLanguage string
	TargetLanguage string
}

// NewAdapter creates an adapter for cfg.Backend.
func NewAdapter(cfg Config) (Adapter, error) {
	switch cfg.Backend {
	case "", "http":
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("translation endpoint required")
		}
		return NewHTTPAdapter(cfg.Endpoint, nil), nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		return NewOpenAIAdapter(cfg), nil
	case "groq":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("Groq API key required")
		}
		return NewGroqAdapter(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported translation backend: %s", cfg.Backend)
	}
}
