package config

import "time"

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	return &Config{
		Recognizer: RecognizerConfig{
			Host:                 "localhost",
			Port:                 10095,
			SSL:                  true,
			Mode:                 "2pass",
			ChunkSize:            []int{5, 10, 5},
			ChunkInterval:        10,
			EncoderChunkLookBack: 4,
			DecoderChunkLookBack: 0,
			ITN:                  true,
			WavName:              "microphone",
		},
		Recording: RecordingConfig{
			SampleRate:        16000,
			Channels:          1,
			Format:            "s16",
			BufferSize:        3200,
			Device:            "",
			ChannelBufferSize: 30,
		},
		Translation: TranslationConfig{
			Backend:        "http",
			Endpoint:       "http://localhost:8000/translate",
			SourceLanguage: "zh",
			TargetLanguage: "en",
			RequestTimeout: 1200 * time.Millisecond,
			CacheSize:      1000,
		},
		Session: SessionConfig{
			Timeout:        4 * time.Second,
			TickInterval:   500 * time.Millisecond,
			FastQueueDepth: 32,
			PollTimeout:    100 * time.Millisecond,
		},
		Display: DisplayConfig{
			Terminal:    true,
			OverlayAddr: "",
			MaxWidth:    100,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Type:    "desktop",
		},
		Providers: make(map[string]ProviderConfig),
	}
}
