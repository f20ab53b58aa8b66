package recognizer

import (
	"encoding/json"
	"fmt"
	"time"
)

// Mode is the stream state a recognizer message belongs to.
type Mode int

const (
	// Partial text appended in single-pass streaming mode.
	Partial Mode = iota
	// Incremental text from the fast first pass of two-pass mode. It is
	// refined later and never final.
	Incremental
	// Confirmed text from the second pass. It replaces the incremental text
	// of the same utterance.
	Confirmed
)

func (m Mode) String() string {
	switch m {
	case Partial:
		return "online"
	case Incremental:
		return "2pass-online"
	case Confirmed:
		return "2pass-offline"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps a wire mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "online":
		return Partial, nil
	case "2pass-online":
		return Incremental, nil
	case "2pass-offline", "offline":
		return Confirmed, nil
	default:
		return 0, fmt.Errorf("unknown recognizer mode %q", s)
	}
}

// Event is one recognition result. Err is set instead of text for connection
// notices such as a reconnect or a lost connection.
type Event struct {
	Mode     Mode
	Text     string
	WavName  string
	IsFinal  bool
	Received time.Time
	Err      error
}

// message is the JSON a FunASR-style server sends per result.
type message struct {
	Mode      string          `json:"mode"`
	Text      string          `json:"text"`
	WavName   string          `json:"wav_name,omitempty"`
	IsFinal   bool            `json:"is_final,omitempty"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
}

// ParseMessage decodes a server message. Messages without a mode are not
// recognition results and return ok == false.
func ParseMessage(data []byte, received time.Time) (ev Event, ok bool, err error) {
	var msg message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Event{}, false, fmt.Errorf("parse recognizer message: %w", err)
	}
	if msg.Mode == "" {
		return Event{}, false, nil
	}
	mode, err := ParseMode(msg.Mode)
	if err != nil {
		return Event{}, false, err
	}

	wav := msg.WavName
	if wav == "" {
		wav = "demo"
	}
	return Event{
		Mode:     mode,
		Text:     msg.Text,
		WavName:  wav,
		IsFinal:  msg.IsFinal,
		Received: received,
	}, true, nil
}
