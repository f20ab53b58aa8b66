package recognizer

// Step is what the caption session should do with one event.
//
// Source is the text to show on the source line. For Partial and Confirmed
// events FullText is the cumulative text to scan for complete sentences. For
// Incremental events Fragment is the text to send to the fast channel.
type Step struct {
	Mode     Mode
	Source   string
	FullText string
	Fragment string
}

// Accumulator folds recognizer events into session text.
//
// In single-pass mode every partial result is appended to one growing text.
// In two-pass mode incremental results collect in an online buffer until the
// confirmed text for the utterance arrives; the confirmed text is appended to
// the offline text and the online buffer is dropped. The offline text only
// ever grows within a session, so it is safe to scan with a fixed cursor.
type Accumulator struct {
	online  string
	offline string
	partial string
}

// Apply folds ev and returns the resulting step. Events carrying an error are
// ignored and return ok == false.
func (a *Accumulator) Apply(ev Event) (Step, bool) {
	if ev.Err != nil {
		return Step{}, false
	}

	switch ev.Mode {
	case Partial:
		a.partial += ev.Text
		return Step{Mode: Partial, Source: a.partial, FullText: a.partial}, true

	case Incremental:
		a.online += ev.Text
		return Step{Mode: Incremental, Source: a.offline + a.online, Fragment: a.online}, true

	case Confirmed:
		a.offline += ev.Text
		a.online = ""
		return Step{Mode: Confirmed, Source: a.offline, FullText: a.offline}, true

	default:
		return Step{}, false
	}
}

// Online returns the pending two-pass online text.
func (a *Accumulator) Online() string { return a.online }

// Offline returns the confirmed two-pass text.
func (a *Accumulator) Offline() string { return a.offline }

// Reset drops all text for a new session.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}
