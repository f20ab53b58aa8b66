package task

import (
	"fmt"
	"time"
)

// Channel identifies which translation path a task travels on.
type Channel int

const (
	// Fast carries the current unconsumed fragment for immediate feedback.
	Fast Channel = iota
	// Slow carries complete sentences for the higher quality path.
	Slow
)

func (c Channel) String() string {
	switch c {
	case Fast:
		return "fast"
	case Slow:
		return "slow"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// Task is one unit of translation work.
//
// ID is unique across both channels and reflects submission order. Version is
// per channel and strictly increasing within an epoch; Epoch only advances for
// the fast channel, when its version counter is reset at a confirmed-final
// boundary.
type Task struct {
	ID      uint64
	Channel Channel
	Version int
	Epoch   int
	Text    string

	// Result is empty while pending. Fallback is set when Result is the
	// untranslated source text.
	Result   string
	Cached   bool
	Fallback bool

	CreatedAt   time.Time
	StartedAt   time.Time
	CompletedAt time.Time
}

// New creates a pending task stamped with now.
func New(id uint64, ch Channel, version, epoch int, text string, now time.Time) *Task {
	return &Task{
		ID:        id,
		Channel:   ch,
		Version:   version,
		Epoch:     epoch,
		Text:      text,
		CreatedAt: now,
	}
}

// QueueWait is how long the task sat in its queue before a worker took it.
func (t *Task) QueueWait() time.Duration {
	if t.StartedAt.IsZero() {
		return 0
	}
	return t.StartedAt.Sub(t.CreatedAt)
}

// Latency is the time from submission to completion.
func (t *Task) Latency() time.Duration {
	if t.CompletedAt.IsZero() {
		return 0
	}
	return t.CompletedAt.Sub(t.CreatedAt)
}

func (t *Task) String() string {
	return fmt.Sprintf("#%d %s v%d/e%d %q", t.ID, t.Channel, t.Version, t.Epoch, t.Text)
}
