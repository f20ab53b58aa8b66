package display

import "sync"

// Sink receives caption updates. Implementations must be safe to call from
// the coordinating goroutine and must not block it for long.
type Sink interface {
	SourceUpdated(text string)
	TargetUpdated(text string, incremental bool)
}

// Multi fans updates out to every sink in order.
type Multi []Sink

func (m Multi) SourceUpdated(text string) {
	for _, s := range m {
		s.SourceUpdated(text)
	}
}

func (m Multi) TargetUpdated(text string, incremental bool) {
	for _, s := range m {
		s.TargetUpdated(text, incremental)
	}
}

// Nop discards all updates.
type Nop struct{}

func (Nop) SourceUpdated(string)       {}
func (Nop) TargetUpdated(string, bool) {}

// Update is one recorded caption change.
type Update struct {
	Target      bool
	Text        string
	Incremental bool
}

// Recorder keeps every update it receives. Useful for replays and tests.
type Recorder struct {
	mu      sync.Mutex
	updates []Update
}

func (r *Recorder) SourceUpdated(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, Update{Text: text})
}

func (r *Recorder) TargetUpdated(text string, incremental bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, Update{Target: true, Text: text, Incremental: incremental})
}

// Updates returns a copy of everything recorded so far.
func (r *Recorder) Updates() []Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Update, len(r.updates))
	copy(out, r.updates)
	return out
}

// LastSource returns the most recent source text.
func (r *Recorder) LastSource() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.updates) - 1; i >= 0; i-- {
		if !r.updates[i].Target {
			return r.updates[i].Text
		}
	}
	return ""
}

// LastTarget returns the most recent target update.
func (r *Recorder) LastTarget() (Update, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.updates) - 1; i >= 0; i-- {
		if r.updates[i].Target {
			return r.updates[i], true
		}
	}
	return Update{}, false
}
