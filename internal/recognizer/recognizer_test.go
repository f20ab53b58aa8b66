package recognizer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"online", Partial, false},
		{"2pass-online", Incremental, false},
		{"2pass-offline", Confirmed, false},
		{"offline", Confirmed, false},
		{"3pass", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v", tt.in, err)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseMessage(t *testing.T) {
	now := time.Now()

	ev, ok, err := ParseMessage([]byte(`{"mode":"2pass-offline","text":"你好。","wav_name":"mic","is_final":true,"timestamp":[[0,300]]}`), now)
	if err != nil || !ok {
		t.Fatalf("ParseMessage() = %v, %v", ok, err)
	}
	if ev.Mode != Confirmed || ev.Text != "你好。" || ev.WavName != "mic" || !ev.IsFinal {
		t.Errorf("event = %+v", ev)
	}

	ev, ok, _ = ParseMessage([]byte(`{"mode":"online","text":"a"}`), now)
	if !ok || ev.WavName != "demo" {
		t.Errorf("default wav name = %q", ev.WavName)
	}

	if _, ok, err := ParseMessage([]byte(`{"text":"no mode"}`), now); ok || err != nil {
		t.Errorf("message without mode: ok = %v, err = %v", ok, err)
	}
	if _, _, err := ParseMessage([]byte(`{`), now); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestAccumulator_TwoPass(t *testing.T) {
	var acc Accumulator

	step, _ := acc.Apply(Event{Mode: Incremental, Text: "今天"})
	if step.Fragment != "今天" || step.Source != "今天" || step.FullText != "" {
		t.Errorf("step 1 = %+v", step)
	}

	step, _ = acc.Apply(Event{Mode: Incremental, Text: "天气"})
	if step.Fragment != "今天天气" {
		t.Errorf("fragment = %q, want the whole online buffer", step.Fragment)
	}

	step, _ = acc.Apply(Event{Mode: Confirmed, Text: "今天天气很好。"})
	if step.FullText != "今天天气很好。" || step.Source != "今天天气很好。" {
		t.Errorf("confirmed step = %+v", step)
	}
	if acc.Online() != "" {
		t.Errorf("online buffer = %q, want empty", acc.Online())
	}

	step, _ = acc.Apply(Event{Mode: Incremental, Text: "明天"})
	if step.Source != "今天天气很好。明天" || step.Fragment != "明天" {
		t.Errorf("next utterance step = %+v", step)
	}

	step, _ = acc.Apply(Event{Mode: Confirmed, Text: "明天下雨"})
	if step.FullText != "今天天气很好。明天下雨" {
		t.Errorf("offline text = %q, want it to keep growing", step.FullText)
	}
}

func TestAccumulator_Online(t *testing.T) {
	var acc Accumulator
	acc.Apply(Event{Mode: Partial, Text: "你好"})
	step, ok := acc.Apply(Event{Mode: Partial, Text: "。再"})
	if !ok || step.FullText != "你好。再" || step.Source != "你好。再" {
		t.Errorf("step = %+v", step)
	}

	if _, ok := acc.Apply(Event{Err: context.Canceled}); ok {
		t.Error("error events should be ignored")
	}

	acc.Reset()
	if acc.Offline() != "" || acc.Online() != "" {
		t.Error("Reset() left text behind")
	}
}

func TestConfig_URLAndHandshake(t *testing.T) {
	cfg := Config{
		Host:      "localhost",
		Port:      10095,
		SSL:       true,
		Mode:      "2pass",
		ChunkSize: []int{5, 10, 5},
		Hotwords:  map[string]int{"阿里巴巴": 20},
		WavName:   "microphone",
	}
	if got := cfg.URL(); got != "wss://localhost:10095" {
		t.Errorf("URL() = %q", got)
	}
	cfg.SSL = false
	if got := cfg.URL(); got != "ws://localhost:10095" {
		t.Errorf("URL() = %q", got)
	}

	hs, err := cfg.handshake()
	if err != nil {
		t.Fatal(err)
	}
	if !hs.IsSpeaking || hs.Mode != "2pass" || hs.Hotwords != `{"阿里巴巴":20}` {
		t.Errorf("handshake = %+v", hs)
	}
}

// mockRecognizer starts a websocket server and returns a client config for it.
func mockRecognizer(t *testing.T, handler func(*websocket.Conn)) Config {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(srv.Close)

	hostPort := strings.TrimPrefix(srv.URL, "http://")
	host, portStr, _ := strings.Cut(hostPort, ":")
	port, _ := strconv.Atoi(portStr)
	return Config{Host: host, Port: port, Mode: "2pass", ChunkSize: []int{5, 10, 5}, WavName: "test"}
}

func TestClient_HandshakeAudioAndResults(t *testing.T) {
	gotHandshake := make(chan handshake, 1)
	gotAudio := make(chan []byte, 1)
	gotEnd := make(chan bool, 1)

	cfg := mockRecognizer(t, func(conn *websocket.Conn) {
		var hs handshake
		if err := conn.ReadJSON(&hs); err != nil {
			t.Errorf("read handshake: %v", err)
			return
		}
		gotHandshake <- hs

		kind, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.BinaryMessage {
			t.Errorf("audio frame type = %d, want binary", kind)
		}
		gotAudio <- data

		_ = conn.WriteJSON(message{Mode: "2pass-online", Text: "你好"})

		_, data, err = conn.ReadMessage()
		if err != nil {
			return
		}
		var end endOfSpeech
		_ = json.Unmarshal(data, &end)
		gotEnd <- end.IsSpeaking

		_ = conn.WriteJSON(message{Mode: "2pass-offline", Text: "你好。", IsFinal: true})

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	c := NewClient(cfg)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer c.Close()

	if err := c.Start(context.Background()); err == nil {
		t.Error("second Start() should fail")
	}

	select {
	case hs := <-gotHandshake:
		if hs.Mode != "2pass" || !hs.IsSpeaking || hs.WavName != "test" {
			t.Errorf("handshake = %+v", hs)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no handshake")
	}

	if err := c.SendChunk([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("SendChunk() error = %v", err)
	}
	select {
	case audio := <-gotAudio:
		if len(audio) != 4 {
			t.Errorf("audio = %v", audio)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no audio")
	}

	select {
	case ev := <-c.Events():
		if ev.Mode != Incremental || ev.Text != "你好" {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Finalize(ctx); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if speaking := <-gotEnd; speaking {
		t.Error("end of speech should send is_speaking=false")
	}

	select {
	case ev := <-c.Events():
		if ev.Mode != Confirmed || ev.Text != "你好。" {
			t.Errorf("final event = %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no final event")
	}
}

func TestClient_NotStarted(t *testing.T) {
	c := NewClient(Config{Host: "localhost", Port: 1})
	if err := c.SendChunk([]byte{0}); err == nil || !strings.Contains(err.Error(), "not started") {
		t.Errorf("SendChunk() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := c.Finalize(context.Background()); err != nil {
		t.Errorf("Finalize() error = %v", err)
	}
}

func TestReplay(t *testing.T) {
	script := strings.Join([]string{
		`# two-pass session`,
		`{"mode":"2pass-online","text":"今天"}`,
		``,
		`{"mode":"2pass-offline","text":"今天天气很好。"}`,
		`{"status":"ok"}`,
	}, "\n")

	out := make(chan Event, 10)
	n, err := Replay(context.Background(), strings.NewReader(script), out, 0)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("Replay() sent %d events, want 2", n)
	}
	if ev := <-out; ev.Mode != Incremental {
		t.Errorf("first event = %+v", ev)
	}
	if ev := <-out; ev.Mode != Confirmed || ev.Text != "今天天气很好。" {
		t.Errorf("second event = %+v", ev)
	}
}

func TestReplay_BadLine(t *testing.T) {
	out := make(chan Event, 1)
	_, err := Replay(context.Background(), strings.NewReader("{\"mode\":\"online\",\"text\":\"a\"}\nnot json\n"), out, 0)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("Replay() error = %v, want line 2 error", err)
	}
}

func TestReplay_ContextCancel(t *testing.T) {
	out := make(chan Event)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Replay(ctx, strings.NewReader(`{"mode":"online","text":"a"}`), out, 0); err == nil {
		t.Error("expected context error")
	}
}
