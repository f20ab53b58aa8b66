package tui

import (
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/hyprsubs/internal/config"
)

// editRecognizer handles the recognizer connection and streaming settings
func editRecognizer(cfg *config.Config) error {
	host := cfg.Recognizer.Host
	port := strconv.Itoa(cfg.Recognizer.Port)
	ssl := cfg.Recognizer.SSL
	mode := cfg.Recognizer.Mode
	chunkSize := formatChunkSize(cfg.Recognizer.ChunkSize)
	chunkInterval := strconv.Itoa(cfg.Recognizer.ChunkInterval)
	itn := cfg.Recognizer.ITN
	device := cfg.Recording.Device

	modeOptions := []huh.Option[string]{
		huh.NewOption("2pass (fast drafts + confirmed text) - Recommended", "2pass"),
		huh.NewOption("online (drafts only)", "online"),
		huh.NewOption("offline (confirmed text only)", "offline"),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Host").
				Description("Address of the streaming recognizer").
				Placeholder("localhost").
				Value(&host),
			huh.NewInput().
				Title("Port").
				Placeholder("10095").
				Value(&port).
				Validate(validatePort),
			huh.NewConfirm().
				Title("Use TLS (wss)?").
				Description("Certificates are not verified; recognizers usually ship self-signed ones.").
				Value(&ssl),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Mode").
				Options(modeOptions...).
				Value(&mode),
			huh.NewInput().
				Title("Chunk Size").
				Description("Lookback, chunk and lookahead in 60ms frames").
				Placeholder("5,10,5").
				Value(&chunkSize).
				Validate(func(s string) error {
					_, err := parseChunkSize(s)
					return err
				}),
			huh.NewInput().
				Title("Chunk Interval").
				Placeholder("10").
				Value(&chunkInterval).
				Validate(validateNumber),
			huh.NewConfirm().
				Title("Inverse text normalization?").
				Description("Render numbers and dates as digits").
				Value(&itn),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Microphone").
				Description("PipeWire device name. Empty = default microphone.").
				Placeholder("(default)").
				Value(&device),
		),
	).WithTheme(formTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Recognizer.Host = host
	cfg.Recognizer.Port, _ = strconv.Atoi(port)
	cfg.Recognizer.SSL = ssl
	cfg.Recognizer.Mode = mode
	cfg.Recognizer.ChunkSize, _ = parseChunkSize(chunkSize)
	cfg.Recognizer.ChunkInterval, _ = strconv.Atoi(chunkInterval)
	cfg.Recognizer.ITN = itn
	cfg.Recording.Device = device
	return nil
}
