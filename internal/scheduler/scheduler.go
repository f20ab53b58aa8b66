package scheduler

import (
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"github.com/leonardotrapani/hyprsubs/internal/segment"
	"github.com/leonardotrapani/hyprsubs/internal/task"
)

// historyLimit bounds the slow task history kept for diagnostics.
const historyLimit = 64

// Enqueuer is the part of a channel queue the scheduler needs.
type Enqueuer interface {
	Push(t *task.Task) (dropped *task.Task)
	Clear() int
}

// Session is the cursor state of one recognition session. It is owned by the
// coordinating goroutine and never touched by channel workers.
//
// LastProcessedIndex counts characters (runes) of FullText that have already
// been dispatched to the slow channel or skipped.
type Session struct {
	FullText           string
	LastProcessedIndex int
	PendingText        string
	SlowVersion        int
	FastVersion        int
	FastEpoch          int
	TaskCounter        uint64
	LastTextReceive    time.Time
	Active             bool
}

// TextUpdate describes what OnTextUpdate did.
type TextUpdate struct {
	Dispatched *task.Task
	// Skipped holds a punctuation-only span that advanced the cursor without
	// producing a task.
	Skipped     string
	ClearedFast int
}

// TimeoutResult describes what OnTimeout did. Acted is false when the
// preconditions did not hold.
type TimeoutResult struct {
	Acted       bool
	Dispatched  *task.Task
	Skipped     string
	ClearedFast int
	Message     string
}

// Scheduler decides which spans go to the slow channel, which fragments go to
// the fast channel, and when a stalled fragment is forced through.
type Scheduler struct {
	fast Enqueuer
	slow Enqueuer

	session         Session
	outstandingFast []*task.Task
	slowHistory     []*task.Task
	droppedFast     int
	droppedSlow     int
	debug           bool
}

// New creates a scheduler feeding the given queues. The session starts active.
func New(fast, slow Enqueuer) *Scheduler {
	s := &Scheduler{fast: fast, slow: slow}
	s.Reset()
	return s
}

// SetDebug enables per-update logging.
func (s *Scheduler) SetDebug(on bool) {
	s.debug = on
}

// Session returns a copy of the current cursor state.
func (s *Scheduler) Session() Session {
	return s.session
}

// OutstandingFast returns the number of fast tasks submitted since the last
// time fragment work was cleared.
func (s *Scheduler) OutstandingFast() int {
	return len(s.outstandingFast)
}

// DroppedFast returns how many fast tasks were pushed out of a full queue.
func (s *Scheduler) DroppedFast() int {
	return s.droppedFast
}

// DroppedSlow returns how many slow tasks a bounded slow queue pushed out.
// The pipeline runs the slow queue unbounded, so this stays zero there.
func (s *Scheduler) DroppedSlow() int {
	return s.droppedSlow
}

// SlowHistory returns the most recent slow tasks, oldest first.
func (s *Scheduler) SlowHistory() []*task.Task {
	out := make([]*task.Task, len(s.slowHistory))
	copy(out, s.slowHistory)
	return out
}

// Reset starts a fresh session.
func (s *Scheduler) Reset() {
	s.session = Session{Active: true}
	s.outstandingFast = nil
	s.slowHistory = nil
	s.droppedFast = 0
	s.droppedSlow = 0
}

// Deactivate turns timeout checks into no-ops for a session that is stopping.
func (s *Scheduler) Deactivate() {
	s.session.Active = false
}

// Touch records that recognizer input arrived at now.
func (s *Scheduler) Touch(now time.Time) {
	s.session.LastTextReceive = now
}

// OnTextUpdate scans the unconsumed suffix of fullText for a complete span and
// dispatches it to the slow channel.
func (s *Scheduler) OnTextUpdate(fullText string, now time.Time) TextUpdate {
	s.session.LastTextReceive = now
	s.session.FullText = fullText

	if utf8.RuneCountInString(fullText) <= s.session.LastProcessedIndex {
		return TextUpdate{}
	}

	unprocessed := suffixFrom(fullText, s.session.LastProcessedIndex)
	if s.debug {
		log.Printf("Scheduler: unprocessed text %q", unprocessed)
	}

	sentence, ok, remainder := segment.ExtractCompleteSentence(unprocessed)
	if !ok {
		s.session.PendingText = unprocessed
		return TextUpdate{}
	}

	if segment.IsPunctuationOnly(sentence) {
		log.Printf("Scheduler: skipping punctuation-only span %q", sentence)
		s.advance(sentence)
		s.session.PendingText = remainder
		return TextUpdate{Skipped: sentence}
	}

	t := s.dispatchSlow(sentence, now)
	s.advance(sentence)
	s.session.PendingText = remainder
	cleared := s.clearFast()
	return TextUpdate{Dispatched: t, ClearedFast: cleared}
}

// OnFragmentUpdate submits the current fragment to the fast channel right
// away. Blank and punctuation-only fragments are ignored and yield nil.
func (s *Scheduler) OnFragmentUpdate(fragment string, now time.Time) *task.Task {
	if segment.IsBlank(fragment) || segment.IsPunctuationOnly(fragment) {
		if s.debug {
			log.Printf("Scheduler: ignoring fragment %q", fragment)
		}
		return nil
	}

	s.session.FastVersion++
	t := s.newTask(task.Fast, s.session.FastVersion, s.session.FastEpoch, fragment, now)
	s.outstandingFast = append(s.outstandingFast, t)

	if dropped := s.fast.Push(t); dropped != nil {
		s.droppedFast++
		log.Printf("Scheduler: fast queue full, dropped %s", dropped)
	}
	if s.debug {
		log.Printf("Scheduler: fast task %s", t)
	}
	return t
}

// OnTimeout forces the pending fragment onto the slow channel when no input
// has arrived for at least timeout. A punctuation-only fragment is consumed
// without a task.
func (s *Scheduler) OnTimeout(now time.Time, timeout time.Duration) TimeoutResult {
	pending := s.session.PendingText
	if !s.session.Active || segment.IsBlank(pending) {
		return TimeoutResult{}
	}
	if now.Sub(s.session.LastTextReceive) < timeout {
		return TimeoutResult{}
	}

	if segment.IsPunctuationOnly(pending) {
		s.advance(pending)
		s.session.PendingText = ""
		cleared := s.clearFast()
		msg := fmt.Sprintf("timeout: no input for %v, skipped punctuation", timeout)
		log.Printf("Scheduler: %s %q", msg, pending)
		return TimeoutResult{Acted: true, Skipped: pending, ClearedFast: cleared, Message: msg}
	}

	t := s.dispatchSlow(pending, now)
	s.advance(pending)
	s.session.PendingText = ""
	cleared := s.clearFast()
	msg := fmt.Sprintf("timeout: no input for %v, translating unfinished text", timeout)
	log.Printf("Scheduler: %s %q", msg, pending)
	return TimeoutResult{Acted: true, Dispatched: t, ClearedFast: cleared, Message: msg}
}

// OnSessionBoundary handles a confirmed-final result from the recognizer: the
// pending fragment and all fast work are dropped and the fast version counter
// restarts in a new epoch. The cursor is left alone.
func (s *Scheduler) OnSessionBoundary() (epoch int, cleared int) {
	s.session.PendingText = ""
	s.session.FastVersion = 0
	s.session.FastEpoch++
	cleared = s.clearFast()
	if s.debug {
		log.Printf("Scheduler: confirmed boundary, fast epoch %d", s.session.FastEpoch)
	}
	return s.session.FastEpoch, cleared
}

func (s *Scheduler) dispatchSlow(text string, now time.Time) *task.Task {
	s.session.SlowVersion++
	t := s.newTask(task.Slow, s.session.SlowVersion, 0, text, now)

	s.slowHistory = append(s.slowHistory, t)
	if len(s.slowHistory) > historyLimit {
		s.slowHistory = s.slowHistory[len(s.slowHistory)-historyLimit:]
	}

	if dropped := s.slow.Push(t); dropped != nil {
		s.droppedSlow++
		log.Printf("Scheduler: slow queue full, dropped %s", dropped)
	}
	log.Printf("Scheduler: dispatched slow task %s", t)
	return t
}

func (s *Scheduler) newTask(ch task.Channel, version, epoch int, text string, now time.Time) *task.Task {
	s.session.TaskCounter++
	return task.New(s.session.TaskCounter, ch, version, epoch, text, now)
}

func (s *Scheduler) advance(consumed string) {
	s.session.LastProcessedIndex += utf8.RuneCountInString(consumed)
}

// clearFast logically cancels fragment work: outstanding tasks are forgotten
// and tasks not yet taken by the worker are discarded. In-flight results are
// filtered later by version.
func (s *Scheduler) clearFast() int {
	n := len(s.outstandingFast)
	s.outstandingFast = nil
	if queued := s.fast.Clear(); queued > 0 && s.debug {
		log.Printf("Scheduler: discarded %d queued fast tasks", queued)
	}
	return n
}

// suffixFrom returns text after its first n runes.
func suffixFrom(text string, n int) string {
	if n <= 0 {
		return text
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[pos:]
		}
		i++
	}
	return ""
}
