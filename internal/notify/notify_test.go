package notify

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		kind string
		want Notifier
	}{
		{"desktop", Desktop{}},
		{"log", Log{}},
		{"none", Nop{}},
		{"", Nop{}},
		{"pager", Log{}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			if got := New(tt.kind); got != tt.want {
				t.Errorf("New(%q) = %T, want %T", tt.kind, got, tt.want)
			}
		})
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	n := Log{}
	tests := []struct {
		name string
		call func()
		want string
	}{
		{"session started", func() { n.SessionChanged(true) }, "Subtitles Started"},
		{"session stopped", func() { n.SessionChanged(false) }, "Subtitles Stopped"},
		{"status", func() { n.Status("timeout: translating unfinished text") }, "status: timeout"},
		{"error", func() { n.Error("recognizer unreachable") }, "error: recognizer unreachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.call()
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("log output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestNop(t *testing.T) {
	var n Notifier = Nop{}
	n.SessionChanged(true)
	n.Status("x")
	n.Error("y")
}
