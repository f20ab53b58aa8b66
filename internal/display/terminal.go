package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
)

// DefaultMaxWidth is used when the terminal width is not configured.
const DefaultMaxWidth = 100

var (
	colorSource = lipgloss.AdaptiveColor{Light: "#334155", Dark: "#F8FAFC"}
	colorFinal  = lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#A78BFA"}
	colorDraft  = lipgloss.AdaptiveColor{Light: "#64748B", Dark: "#94A3B8"}
	colorLabel  = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#06B6D4"}
)

// Terminal renders the current source and target captions as two lines.
// On a TTY the previous pair is redrawn in place, otherwise every update is
// appended.
type Terminal struct {
	mu       sync.Mutex
	out      *termenv.Output
	maxWidth int
	redraw   bool
	drawn    bool

	source      string
	target      string
	incremental bool

	labelStyle  lipgloss.Style
	sourceStyle lipgloss.Style
	finalStyle  lipgloss.Style
	draftStyle  lipgloss.Style
}

// NewTerminal creates a renderer writing to w. The color profile is detected
// from w unless profile is given.
func NewTerminal(w io.Writer, maxWidth int, profile ...termenv.Profile) *Terminal {
	var opts []termenv.OutputOption
	if len(profile) > 0 {
		opts = append(opts, termenv.WithProfile(profile[0]))
	}
	out := termenv.NewOutput(w, opts...)
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}

	r := lipgloss.NewRenderer(w, termenv.WithProfile(out.Profile))
	return &Terminal{
		out:         out,
		maxWidth:    maxWidth,
		redraw:      out.TTY() != nil,
		labelStyle:  r.NewStyle().Foreground(colorLabel).Bold(true),
		sourceStyle: r.NewStyle().Foreground(colorSource),
		finalStyle:  r.NewStyle().Foreground(colorFinal).Bold(true),
		draftStyle:  r.NewStyle().Foreground(colorDraft).Italic(true),
	}
}

func (t *Terminal) SourceUpdated(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.source = text
	t.render()
}

func (t *Terminal) TargetUpdated(text string, incremental bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.target = text
	t.incremental = incremental
	t.render()
}

func (t *Terminal) render() {
	if t.redraw && t.drawn {
		t.out.ClearLines(2)
	}

	style := t.finalStyle
	if t.incremental {
		style = t.draftStyle
	}

	width := t.maxWidth - 4
	fmt.Fprintf(t.out, "%s %s\n", t.labelStyle.Render("src"), t.sourceStyle.Render(Tail(t.source, width)))
	fmt.Fprintf(t.out, "%s %s\n", t.labelStyle.Render("trg"), style.Render(Tail(t.target, width)))
	t.drawn = true
}

// Tail keeps the trailing part of text that fits in width terminal cells,
// prefixing an ellipsis when something was cut.
func Tail(text string, width int) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}

	runes := []rune(text)
	budget := width - 1
	used := 0
	start := len(runes)
	for start > 0 {
		w := runewidth.RuneWidth(runes[start-1])
		if used+w > budget {
			break
		}
		used += w
		start--
	}
	return "…" + string(runes[start:])
}
