package notify

import (
	"fmt"
	"log"
	"os/exec"
)

const appName = "hyprsubs"

// Notifier receives session lifecycle changes and free-text status messages.
// None of it is needed for correct captions.
type Notifier interface {
	SessionChanged(on bool)
	Status(msg string)
	Error(msg string)
}

// New returns the notifier for a notifications.type value.
func New(kind string) Notifier {
	switch kind {
	case "desktop":
		return Desktop{}
	case "log":
		return Log{}
	case "none", "":
		return Nop{}
	default:
		log.Printf("Notify: unknown type %q, falling back to log", kind)
		return Log{}
	}
}

func sessionTitle(on bool) string {
	if on {
		return "Subtitles Started"
	}
	return "Subtitles Stopped"
}

type Desktop struct{}

func (Desktop) SessionChanged(on bool) {
	send("normal", fmt.Sprintf("%s: %s", "Hyprsubs", sessionTitle(on)))
}

func (Desktop) Status(msg string) {
	send("low", msg)
}

func (Desktop) Error(msg string) {
	send("critical", msg)
}

func send(urgency, body string) {
	cmd := exec.Command("notify-send", "-a", appName, "-u", urgency, body)
	if err := cmd.Run(); err != nil {
		log.Printf("Notify: failed to send notification: %v", err)
	}
}

// Log writes notifications to the standard logger.
type Log struct{}

func (Log) SessionChanged(on bool) {
	log.Printf("Notify: Hyprsubs %s", sessionTitle(on))
}

func (Log) Status(msg string) {
	log.Printf("Notify: status: %s", msg)
}

func (Log) Error(msg string) {
	log.Printf("Notify: error: %s", msg)
}

// Nop is a Notifier that does absolutely nothing.
type Nop struct{}

func (Nop) SessionChanged(on bool) {}
func (Nop) Status(msg string)      {}
func (Nop) Error(msg string)       {}
