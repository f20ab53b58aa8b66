package config

import (
	"fmt"
	"net"
	"net/url"

	"github.com/leonardotrapani/hyprsubs/internal/language"
)

func (c *Config) Validate() error {
	if c.Recognizer.Host == "" {
		return fmt.Errorf("invalid recognizer.host: empty")
	}
	if c.Recognizer.Port <= 0 || c.Recognizer.Port > 65535 {
		return fmt.Errorf("invalid recognizer.port: %d", c.Recognizer.Port)
	}
	validModes := map[string]bool{"online": true, "offline": true, "2pass": true}
	if !validModes[c.Recognizer.Mode] {
		return fmt.Errorf("invalid recognizer.mode: %s (must be online, offline, or 2pass)", c.Recognizer.Mode)
	}
	if len(c.Recognizer.ChunkSize) != 3 {
		return fmt.Errorf("invalid recognizer.chunk_size: %v (must have 3 values, e.g. [5, 10, 5])", c.Recognizer.ChunkSize)
	}
	for _, v := range c.Recognizer.ChunkSize {
		if v < 0 {
			return fmt.Errorf("invalid recognizer.chunk_size: %v (values must not be negative)", c.Recognizer.ChunkSize)
		}
	}
	if c.Recognizer.ChunkInterval <= 0 {
		return fmt.Errorf("invalid recognizer.chunk_interval: %d", c.Recognizer.ChunkInterval)
	}

	if c.Recording.SampleRate <= 0 {
		return fmt.Errorf("invalid recording.sample_rate: %d", c.Recording.SampleRate)
	}
	if c.Recording.Channels <= 0 {
		return fmt.Errorf("invalid recording.channels: %d", c.Recording.Channels)
	}
	if c.Recording.BufferSize <= 0 {
		return fmt.Errorf("invalid recording.buffer_size: %d", c.Recording.BufferSize)
	}
	if c.Recording.ChannelBufferSize <= 0 {
		return fmt.Errorf("invalid recording.channel_buffer_size: %d", c.Recording.ChannelBufferSize)
	}
	if c.Recording.Format == "" {
		return fmt.Errorf("invalid recording.format: empty")
	}

	switch c.Translation.Backend {
	case "http":
		if c.Translation.Endpoint == "" {
			return fmt.Errorf("translation.endpoint required for the http backend")
		}
		if u, err := url.Parse(c.Translation.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid translation.endpoint: %q", c.Translation.Endpoint)
		}
	case "openai":
		if c.resolveAPIKeyForProvider("openai") == "" {
			return fmt.Errorf("OpenAI API key required: not found in config (providers.openai.api_key) or environment variable (OPENAI_API_KEY)")
		}
	case "groq":
		if c.resolveAPIKeyForProvider("groq") == "" {
			return fmt.Errorf("Groq API key required: not found in config (providers.groq.api_key) or environment variable (GROQ_API_KEY)")
		}
	default:
		return fmt.Errorf("unsupported translation.backend: %s (must be http, openai, or groq)", c.Translation.Backend)
	}
	if !language.IsValidCode(c.Translation.SourceLanguage) {
		return fmt.Errorf("invalid translation.source_language: %s (use empty string for auto-detect or ISO-639-1 codes like 'zh', 'en')", c.Translation.SourceLanguage)
	}
	if c.Translation.TargetLanguage == "" || !language.IsValidCode(c.Translation.TargetLanguage) {
		return fmt.Errorf("invalid translation.target_language: %q (must be an ISO-639-1 code like 'en')", c.Translation.TargetLanguage)
	}
	if c.Translation.RequestTimeout <= 0 {
		return fmt.Errorf("invalid translation.request_timeout: %v", c.Translation.RequestTimeout)
	}
	if c.Translation.CacheSize <= 0 {
		return fmt.Errorf("invalid translation.cache_size: %d", c.Translation.CacheSize)
	}

	if c.Session.Timeout <= 0 {
		return fmt.Errorf("invalid session.timeout: %v", c.Session.Timeout)
	}
	if c.Session.TickInterval <= 0 {
		return fmt.Errorf("invalid session.tick_interval: %v", c.Session.TickInterval)
	}
	if c.Session.TickInterval > c.Session.Timeout {
		return fmt.Errorf("invalid session.tick_interval: %v is longer than session.timeout %v", c.Session.TickInterval, c.Session.Timeout)
	}
	if c.Session.FastQueueDepth <= 0 {
		return fmt.Errorf("invalid session.fast_queue_depth: %d", c.Session.FastQueueDepth)
	}
	if c.Session.PollTimeout <= 0 {
		return fmt.Errorf("invalid session.poll_timeout: %v", c.Session.PollTimeout)
	}

	if c.Display.OverlayAddr != "" {
		if _, _, err := net.SplitHostPort(c.Display.OverlayAddr); err != nil {
			return fmt.Errorf("invalid display.overlay_addr: %q: %w", c.Display.OverlayAddr, err)
		}
	}
	if c.Display.MaxWidth < 0 {
		return fmt.Errorf("invalid display.max_width: %d", c.Display.MaxWidth)
	}

	validTypes := map[string]bool{"desktop": true, "log": true, "none": true}
	if !validTypes[c.Notifications.Type] {
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}

	return nil
}
