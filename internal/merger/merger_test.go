package merger

import (
	"testing"
	"time"

	"github.com/leonardotrapani/hyprsubs/internal/task"
)

func completed(ch task.Channel, version, epoch int, result string) *task.Task {
	return completedFrom(ch, version, epoch, "src", result)
}

func completedFrom(ch task.Channel, version, epoch int, source, result string) *task.Task {
	t := task.New(uint64(version), ch, version, epoch, source, time.Now())
	t.Result = result
	return t
}

func TestSlowResultsAreSpaceJoined(t *testing.T) {
	m := New()
	m.OnTaskCompleted(completed(task.Slow, 1, 0, "Hello"))
	up, ok := m.OnTaskCompleted(completed(task.Slow, 2, 0, "world."))

	if !ok || up.Incremental {
		t.Fatalf("update = %+v, ok = %v", up, ok)
	}
	if got := m.State().OfflineAccumulated; got != "Hello world." {
		t.Errorf("OfflineAccumulated = %q, want %q", got, "Hello world.")
	}
}

func TestNoDoubleSpace(t *testing.T) {
	m := New()
	m.OnTaskCompleted(completed(task.Slow, 1, 0, "Hi. "))
	m.OnTaskCompleted(completed(task.Slow, 2, 0, "Bye."))
	if got := m.State().OfflineAccumulated; got != "Hi. Bye." {
		t.Errorf("OfflineAccumulated = %q", got)
	}
}

func TestFastFragmentThenExtendingSentence(t *testing.T) {
	m := New()
	m.OnTaskCompleted(completedFrom(task.Slow, 1, 0, "你好", "Hello"))

	up, ok := m.OnTaskCompleted(completed(task.Fast, 1, 0, "Hel"))
	if !ok || !up.Incremental || up.Text != "Hello Hel" {
		t.Fatalf("fast update = %+v, ok = %v", up, ok)
	}

	up, ok = m.OnTaskCompleted(completedFrom(task.Slow, 2, 0, "你好世界。", "Hello world."))
	if !ok || up.Incremental {
		t.Fatalf("slow update = %+v, ok = %v", up, ok)
	}
	st := m.State()
	if st.OnlineFragment != "" {
		t.Errorf("OnlineFragment = %q, want empty", st.OnlineFragment)
	}
	if st.Displayed != "Hello world." {
		t.Errorf("Displayed = %q, want %q", st.Displayed, "Hello world.")
	}
}

func TestSharedTranslationPrefixIsAppended(t *testing.T) {
	tests := []struct {
		name   string
		first  [2]string
		second [2]string
		want   string
	}{
		{"different sources", [2]string{"我", "I"}, [2]string{"天在下雨。", "It rains."}, "I It rains."},
		{"same source", [2]string{"你好", "Hello"}, [2]string{"你好", "Hello again"}, "Hello Hello again"},
		{"source extends but translation does not", [2]string{"你好", "Hi"}, [2]string{"你好世界。", "Hello world."}, "Hi Hello world."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.OnTaskCompleted(completedFrom(task.Slow, 1, 0, tt.first[0], tt.first[1]))
			m.OnTaskCompleted(completedFrom(task.Slow, 2, 0, tt.second[0], tt.second[1]))
			if got := m.State().OfflineAccumulated; got != tt.want {
				t.Errorf("OfflineAccumulated = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStaleFastResultDiscarded(t *testing.T) {
	m := New()
	m.OnTaskCompleted(completed(task.Fast, 5, 0, "five"))

	if _, ok := m.OnTaskCompleted(completed(task.Fast, 3, 0, "three")); ok {
		t.Fatal("version 3 applied after version 5")
	}
	st := m.State()
	if st.OnlineFragment != "five" {
		t.Errorf("OnlineFragment = %q, want five", st.OnlineFragment)
	}
	if st.StaleDiscards != 1 {
		t.Errorf("StaleDiscards = %d", st.StaleDiscards)
	}
}

func TestStaleSlowResultDiscarded(t *testing.T) {
	m := New()
	m.OnTaskCompleted(completed(task.Slow, 2, 0, "second"))
	if _, ok := m.OnTaskCompleted(completed(task.Slow, 1, 0, "first")); ok {
		t.Fatal("older slow result applied")
	}
	if got := m.State().OfflineAccumulated; got != "second" {
		t.Errorf("OfflineAccumulated = %q", got)
	}
}

func TestRetiredFastResultDiscarded(t *testing.T) {
	m := New()
	m.RetireFast(4)

	if _, ok := m.OnTaskCompleted(completed(task.Fast, 4, 0, "old")); ok {
		t.Error("retired version applied")
	}
	if _, ok := m.OnTaskCompleted(completed(task.Fast, 5, 0, "new")); !ok {
		t.Error("version above the retired floor should apply")
	}

	m.RetireFast(2) // never lowers the floor
	if got := m.State().RetiredFast; got != 4 {
		t.Errorf("RetiredFast = %d, want 4", got)
	}
}

func TestFastEpochs(t *testing.T) {
	m := New()
	m.OnTaskCompleted(completed(task.Slow, 1, 0, "Good morning."))
	m.OnTaskCompleted(completed(task.Fast, 7, 0, "How"))

	m.BeginFastEpoch(1)
	st := m.State()
	if st.OnlineFragment != "" || st.Displayed != "Good morning." {
		t.Fatalf("state after new epoch = %+v", st)
	}

	// In-flight result from the previous epoch.
	if _, ok := m.OnTaskCompleted(completed(task.Fast, 8, 0, "How are")); ok {
		t.Error("result from an old epoch applied")
	}
	// Versions restart at 1 in the new epoch.
	up, ok := m.OnTaskCompleted(completed(task.Fast, 1, 1, "Nice"))
	if !ok || up.Text != "Good morning. Nice" {
		t.Errorf("update = %+v, ok = %v", up, ok)
	}
}

func TestEmptyResultIsNoop(t *testing.T) {
	m := New()
	if _, ok := m.OnTaskCompleted(completed(task.Slow, 1, 0, "")); ok {
		t.Error("empty result applied")
	}
	if _, ok := m.OnTaskCompleted(nil); ok {
		t.Error("nil task applied")
	}
}

func TestReset(t *testing.T) {
	m := New()
	m.OnTaskCompleted(completed(task.Slow, 3, 0, "x"))
	m.BeginFastEpoch(2)
	m.Reset()

	if st := m.State(); st != (State{}) {
		t.Errorf("State() after Reset = %+v", st)
	}
	if _, ok := m.OnTaskCompleted(completed(task.Slow, 1, 0, "y")); !ok {
		t.Error("version 1 should apply after Reset")
	}
}
