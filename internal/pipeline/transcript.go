package pipeline

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// transcriptWriter appends confirmed recognizer text to one file per session,
// one "wav_name<TAB>text" line per result.
type transcriptWriter struct {
	f *os.File
	w *bufio.Writer
}

// openTranscript returns nil without error when dir is empty.
func openTranscript(dir, sessionID string) (*transcriptWriter, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}
	path := filepath.Join(dir, sessionID+".txt")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	log.Printf("Pipeline: writing transcript to %s", path)
	return &transcriptWriter{f: f, w: bufio.NewWriter(f)}, nil
}

func (t *transcriptWriter) Write(wavName, text string) {
	if t == nil || text == "" {
		return
	}
	if _, err := fmt.Fprintf(t.w, "%s\t%s\n", wavName, text); err != nil {
		log.Printf("Pipeline: transcript write failed: %v", err)
		return
	}
	if err := t.w.Flush(); err != nil {
		log.Printf("Pipeline: transcript flush failed: %v", err)
	}
}

func (t *transcriptWriter) Close() error {
	if err := t.w.Flush(); err != nil {
		t.f.Close()
		return err
	}
	return t.f.Close()
}
