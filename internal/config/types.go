package config

import "time"

// GeneralConfig holds global settings that apply across the application
type GeneralConfig struct {
	Debug         bool   `toml:"debug"`
	TranscriptDir string `toml:"transcript_dir"` // append raw recognizer text here (empty = off)
}

type Config struct {
	General       GeneralConfig             `toml:"general"`
	Recognizer    RecognizerConfig          `toml:"recognizer"`
	Recording     RecordingConfig           `toml:"recording"`
	Translation   TranslationConfig         `toml:"translation"`
	Session       SessionConfig             `toml:"session"`
	Display       DisplayConfig             `toml:"display"`
	Notifications NotificationsConfig       `toml:"notifications"`
	Providers     map[string]ProviderConfig `toml:"providers"`
}

// ProviderConfig holds API key for a provider
type ProviderConfig struct {
	APIKey string `toml:"api_key"`
}

// RecognizerConfig points at a FunASR-style streaming recognizer
type RecognizerConfig struct {
	Host                 string         `toml:"host"`
	Port                 int            `toml:"port"`
	SSL                  bool           `toml:"ssl"`
	Mode                 string         `toml:"mode"` // "online", "offline" or "2pass"
	ChunkSize            []int          `toml:"chunk_size"`
	ChunkInterval        int            `toml:"chunk_interval"`
	EncoderChunkLookBack int            `toml:"encoder_chunk_look_back"`
	DecoderChunkLookBack int            `toml:"decoder_chunk_look_back"`
	ITN                  bool           `toml:"itn"`
	Hotwords             map[string]int `toml:"hotwords"`
	WavName              string         `toml:"wav_name"`
}

type RecordingConfig struct {
	SampleRate        int    `toml:"sample_rate"`
	Channels          int    `toml:"channels"`
	Format            string `toml:"format"`
	BufferSize        int    `toml:"buffer_size"`
	Device            string `toml:"device"`
	ChannelBufferSize int    `toml:"channel_buffer_size"`
}

type TranslationConfig struct {
	Backend        string        `toml:"backend"` // "http", "openai", "groq"
	Endpoint       string        `toml:"endpoint"`
	Model          string        `toml:"model"`
	SourceLanguage string        `toml:"source_language"`
	TargetLanguage string        `toml:"target_language"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	CacheSize      int           `toml:"cache_size"`
}

type SessionConfig struct {
	Timeout        time.Duration `toml:"timeout"`       // force pending text after this long without input
	TickInterval   time.Duration `toml:"tick_interval"` // how often the timeout is checked
	FastQueueDepth int           `toml:"fast_queue_depth"`
	PollTimeout    time.Duration `toml:"poll_timeout"`
}

type DisplayConfig struct {
	Terminal    bool   `toml:"terminal"`
	OverlayAddr string `toml:"overlay_addr"` // host:port for the websocket overlay (empty = off)
	MaxWidth    int    `toml:"max_width"`
}

type NotificationsConfig struct {
	Enabled bool   `toml:"enabled"`
	Type    string `toml:"type"` // "desktop", "log", "none"
}
