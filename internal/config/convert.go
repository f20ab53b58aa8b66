package config

import (
	"os"

	"github.com/leonardotrapani/hyprsubs/internal/recognizer"
	"github.com/leonardotrapani/hyprsubs/internal/recording"
	"github.com/leonardotrapani/hyprsubs/internal/translator"
)

// providerEnvVars maps translation providers to their API key variables.
var providerEnvVars = map[string]string{
	"openai": "OPENAI_API_KEY",
	"groq":   "GROQ_API_KEY",
}

func (c *Config) ToRecordingConfig() recording.Config {
	return recording.Config{
		SampleRate:        c.Recording.SampleRate,
		Channels:          c.Recording.Channels,
		Format:            c.Recording.Format,
		BufferSize:        c.Recording.BufferSize,
		Device:            c.Recording.Device,
		ChannelBufferSize: c.Recording.ChannelBufferSize,
	}
}

func (c *Config) ToRecognizerConfig() recognizer.Config {
	return recognizer.Config{
		Host:                 c.Recognizer.Host,
		Port:                 c.Recognizer.Port,
		SSL:                  c.Recognizer.SSL,
		Mode:                 c.Recognizer.Mode,
		ChunkSize:            c.Recognizer.ChunkSize,
		ChunkInterval:        c.Recognizer.ChunkInterval,
		EncoderChunkLookBack: c.Recognizer.EncoderChunkLookBack,
		DecoderChunkLookBack: c.Recognizer.DecoderChunkLookBack,
		ITN:                  c.Recognizer.ITN,
		Hotwords:             c.Recognizer.Hotwords,
		WavName:              c.Recognizer.WavName,
		SampleRate:           c.Recording.SampleRate,
	}
}

func (c *Config) ToTranslatorConfig() translator.Config {
	return translator.Config{
		Backend:        c.Translation.Backend,
		Endpoint:       c.Translation.Endpoint,
		APIKey:         c.resolveAPIKeyForProvider(c.Translation.Backend),
		Model:          c.Translation.Model,
		SourceLanguage: c.Translation.SourceLanguage,
		TargetLanguage: c.Translation.TargetLanguage,
	}
}

// resolveAPIKeyForProvider returns the API key from [providers.<name>] or the
// provider's environment variable.
func (c *Config) resolveAPIKeyForProvider(providerName string) string {
	if c.Providers != nil {
		if pc, ok := c.Providers[providerName]; ok && pc.APIKey != "" {
			return pc.APIKey
		}
	}
	if envVar := providerEnvVars[providerName]; envVar != "" {
		return os.Getenv(envVar)
	}
	return ""
}
