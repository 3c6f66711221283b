package devhost

import (
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/GoCodeAlone/plugkit"
)

// Notice is a recorded toast.
type Notice struct {
	Text       string        `json:"text"`
	Prefix     string        `json:"prefix,omitempty"`
	Message    string        `json:"message"`
	Color      string        `json:"color,omitempty"`
	Duration   time.Duration `json:"duration"`
	Persistent bool          `json:"persistent"`
	At         time.Time     `json:"at"`
}

// Present implements plugkit.Notifier.
func (h *Host) Present(content plugkit.Fragment, duration time.Duration) {
	notice := Notice{
		Text:       content.String(),
		Prefix:     content.Prefix.Text,
		Message:    content.Message.Text,
		Color:      content.Message.Style.Color,
		Duration:   duration,
		Persistent: duration == plugkit.PersistentToast,
		At:         time.Now(),
	}
	h.mu.Lock()
	h.notices = append(h.notices, notice)
	h.mu.Unlock()

	if h.forward != nil {
		h.forward.Present(content, duration)
	}
}

// Notices returns the recorded toasts, oldest first.
func (h *Host) Notices() []Notice {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.notices)
}

// ClearNotices drops the recorded toasts.
func (h *Host) ClearNotices() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notices = nil
}

// TerminalNotifier draws toasts as boxes on a terminal.
type TerminalNotifier struct {
	mu       sync.Mutex
	out      io.Writer
	renderer *lipgloss.Renderer
}

// NewTerminalNotifier creates a notifier writing to w. Colors are dropped
// when w is not a terminal.
func NewTerminalNotifier(w io.Writer) *TerminalNotifier {
	return &TerminalNotifier{out: w, renderer: lipgloss.NewRenderer(w)}
}

// NewStdoutNotifier creates a notifier writing to standard output.
func NewStdoutNotifier() *TerminalNotifier {
	return NewTerminalNotifier(os.Stdout)
}

// Present implements plugkit.Notifier.
func (n *TerminalNotifier) Present(content plugkit.Fragment, duration time.Duration) {
	body := n.segment(content.Message)
	if content.Prefix.Text != "" {
		body = n.segment(content.Prefix) + " " + body
	}

	border := lipgloss.Color(content.Message.Style.Color)
	if content.Message.Style.Color == "" {
		border = lipgloss.Color("240")
	}
	box := n.renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)

	footer := n.renderer.NewStyle().Foreground(lipgloss.Color("240"))
	var until string
	if duration == plugkit.PersistentToast {
		until = "until dismissed"
	} else {
		until = duration.String()
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintln(n.out, box.Render(body))
	_, _ = fmt.Fprintln(n.out, footer.Render("  "+until))
}

func (n *TerminalNotifier) segment(s plugkit.Segment) string {
	if s.Style.IsZero() {
		return s.Text
	}
	style := n.renderer.NewStyle().Bold(s.Style.Bold())
	if s.Style.Color != "" {
		style = style.Foreground(lipgloss.Color(s.Style.Color))
	}
	return style.Render(s.Text)
}
