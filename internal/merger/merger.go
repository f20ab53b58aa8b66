package merger

import (
	"log"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leonardotrapani/hyprsubs/internal/task"
)

// Update is a new target-side display text. Incremental updates come from
// the fast channel and may be replaced; the rest are final.
type Update struct {
	Text        string
	Incremental bool
}

// State is a snapshot of the merged target text.
type State struct {
	OfflineAccumulated string
	OnlineFragment     string
	Displayed          string

	LastSlowVersion int
	LastFastVersion int
	FastEpoch       int
	RetiredFast     int
	StaleDiscards   int
}

// Merger folds completed tasks into the displayed translation, discarding
// results that arrive out of order. It is driven by a single goroutine.
type Merger struct {
	state State

	// most recently appended slow segment, source and translation
	lastSlowSource string
	lastSlow       string
}

// New creates an empty merger.
func New() *Merger {
	return &Merger{}
}

// Reset clears all state for a new session.
func (m *Merger) Reset() {
	m.state = State{}
	m.lastSlowSource = ""
	m.lastSlow = ""
}

// State returns a snapshot of the merged text.
func (m *Merger) State() State {
	return m.state
}

// RetireFast marks every fast result of the current epoch with a version at
// or below version as obsolete. The scheduler calls this when a sentence or a
// timeout supersedes the fragment those results were translating.
func (m *Merger) RetireFast(version int) {
	if version > m.state.RetiredFast {
		m.state.RetiredFast = version
	}
}

// BeginFastEpoch starts a new fast generation after a confirmed-final
// boundary. The fragment is cleared and fast versions count from zero again.
func (m *Merger) BeginFastEpoch(epoch int) {
	if epoch <= m.state.FastEpoch {
		return
	}
	m.state.FastEpoch = epoch
	m.state.LastFastVersion = 0
	m.state.RetiredFast = 0
	m.state.OnlineFragment = ""
	m.state.Displayed = m.state.OfflineAccumulated
}

// OnTaskCompleted applies a finished task. ok is false when the result was
// empty or stale and nothing changed.
func (m *Merger) OnTaskCompleted(t *task.Task) (Update, bool) {
	if t == nil || t.Result == "" {
		return Update{}, false
	}

	switch t.Channel {
	case task.Fast:
		return m.applyFast(t)
	case task.Slow:
		return m.applySlow(t)
	default:
		return Update{}, false
	}
}

func (m *Merger) applyFast(t *task.Task) (Update, bool) {
	if t.Epoch != m.state.FastEpoch || t.Version <= m.state.RetiredFast || t.Version < m.state.LastFastVersion {
		m.state.StaleDiscards++
		log.Printf("Merger: discarding stale result %s (epoch %d, last v%d, retired v%d)",
			t, m.state.FastEpoch, m.state.LastFastVersion, m.state.RetiredFast)
		return Update{}, false
	}

	m.state.LastFastVersion = t.Version
	m.state.OnlineFragment = t.Result
	m.state.Displayed = m.compose()
	return Update{Text: m.state.Displayed, Incremental: true}, true
}

func (m *Merger) applySlow(t *task.Task) (Update, bool) {
	if t.Version < m.state.LastSlowVersion {
		m.state.StaleDiscards++
		log.Printf("Merger: discarding stale result %s (last v%d)", t, m.state.LastSlowVersion)
		return Update{}, false
	}
	m.state.LastSlowVersion = t.Version

	result := t.Result
	if m.extendsLastSlow(t) {
		base := strings.TrimSuffix(m.state.OfflineAccumulated, m.lastSlow)
		m.state.OfflineAccumulated = base + result
	} else {
		m.state.OfflineAccumulated = appendSegment(m.state.OfflineAccumulated, result)
	}
	m.lastSlowSource = t.Text
	m.lastSlow = result

	m.state.OnlineFragment = ""
	m.state.Displayed = m.compose()
	return Update{Text: m.state.Displayed, Incremental: false}, true
}

// extendsLastSlow reports whether t re-translates the previous slow segment
// with more source text. Both the source and the translation must strictly
// extend the previous ones; a shared translation prefix alone ("I" then
// "It rains.") is a new segment.
func (m *Merger) extendsLastSlow(t *task.Task) bool {
	if m.lastSlow == "" || m.lastSlowSource == "" {
		return false
	}
	if len(t.Text) <= len(m.lastSlowSource) || !strings.HasPrefix(t.Text, m.lastSlowSource) {
		return false
	}
	return strings.HasPrefix(t.Result, m.lastSlow) &&
		strings.HasSuffix(m.state.OfflineAccumulated, m.lastSlow)
}

func (m *Merger) compose() string {
	if m.state.OnlineFragment == "" {
		return m.state.OfflineAccumulated
	}
	return appendSegment(m.state.OfflineAccumulated, m.state.OnlineFragment)
}

// appendSegment joins with a single space unless acc is empty or already ends
// in whitespace.
func appendSegment(acc, seg string) string {
	if acc == "" {
		return seg
	}
	if last, _ := utf8.DecodeLastRuneInString(acc); unicode.IsSpace(last) {
		return acc + seg
	}
	return acc + " " + seg
}
