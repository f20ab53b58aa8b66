package recognizer

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"time"
)

// Replay reads recorded recognizer messages, one JSON object per line, and
// sends them to out. Blank lines and lines starting with '#' are skipped.
// A positive pace waits that long between messages.
func Replay(ctx context.Context, r io.Reader, out chan<- Event, pace time.Duration) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	sent := 0
	line := 0
	for scanner.Scan() {
		line++
		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 || data[0] == '#' {
			continue
		}

		ev, ok, err := ParseMessage(data, time.Now())
		if err != nil {
			return sent, fmt.Errorf("line %d: %w", line, err)
		}
		if !ok {
			continue
		}

		if sent > 0 && pace > 0 {
			select {
			case <-ctx.Done():
				return sent, ctx.Err()
			case <-time.After(pace):
			}
		}

		select {
		case out <- ev:
			sent++
		case <-ctx.Done():
			return sent, ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return sent, fmt.Errorf("read replay: %w", err)
	}
	return sent, nil
}
