package plugkit

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Console is the console-equivalent sink: one output function per severity,
// each receiving a styled prefix token and the rendered message.
type Console interface {
	Trace(prefix Segment, message string)
	Debug(prefix Segment, message string)
	Info(prefix Segment, message string)
	Warn(prefix Segment, message string)
	Error(prefix Segment, message string)
}

// writeTo routes a line to the console function matching severity.
func writeTo(c Console, severity Severity, prefix Segment, message string) {
	switch severity {
	case SeverityTrace:
		c.Trace(prefix, message)
	case SeverityDebug:
		c.Debug(prefix, message)
	case SeverityWarn:
		c.Warn(prefix, message)
	case SeverityError:
		c.Error(prefix, message)
	default:
		c.Info(prefix, message)
	}
}

// WriterConsole writes "<prefix> <message>" lines to an io.Writer. The prefix
// is colored with lipgloss; the renderer is bound to the writer, so output
// going to a file or buffer carries no escape sequences.
type WriterConsole struct {
	mu       sync.Mutex
	w        io.Writer
	renderer *lipgloss.Renderer
	plain    bool
}

// NewWriterConsole creates a console writing to w.
func NewWriterConsole(w io.Writer) *WriterConsole {
	return &WriterConsole{w: w, renderer: lipgloss.NewRenderer(w)}
}

// NewStderrConsole creates a console writing to standard error.
func NewStderrConsole() *WriterConsole {
	return NewWriterConsole(os.Stderr)
}

// Plain disables prefix styling entirely.
func (c *WriterConsole) Plain() *WriterConsole {
	c.plain = true
	return c
}

func (c *WriterConsole) render(prefix Segment) string {
	if c.plain || prefix.Style.IsZero() {
		return prefix.Text
	}
	style := c.renderer.NewStyle().Bold(prefix.Style.Bold())
	if prefix.Style.Color != "" {
		style = style.Foreground(lipgloss.Color(prefix.Style.Color))
	}
	return style.Render(prefix.Text)
}

func (c *WriterConsole) write(prefix Segment, message string) {
	line := c.render(prefix)
	if message != "" {
		line += " " + message
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.w, line+"\n")
}

func (c *WriterConsole) Trace(prefix Segment, message string) { c.write(prefix, message) }
func (c *WriterConsole) Debug(prefix Segment, message string) { c.write(prefix, message) }
func (c *WriterConsole) Info(prefix Segment, message string)  { c.write(prefix, message) }
func (c *WriterConsole) Warn(prefix Segment, message string)  { c.write(prefix, message) }
func (c *WriterConsole) Error(prefix Segment, message string) { c.write(prefix, message) }

// StructuredLogger is the key-value logging shape used by support code.
// *slog.Logger satisfies it, as do logrus- and zap-sugar-style adapters:
//
//	logger.Info("command registered", "id", "sample:open", "module", "sample")
type StructuredLogger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

// StructuredConsole adapts a StructuredLogger as a Console. The prefix token
// travels as the "source" attribute; trace lines are written at debug.
type StructuredConsole struct {
	logger StructuredLogger
}

// NewStructuredConsole wraps logger.
func NewStructuredConsole(logger StructuredLogger) *StructuredConsole {
	return &StructuredConsole{logger: logger}
}

func (c *StructuredConsole) Trace(prefix Segment, message string) {
	c.logger.Debug(message, "source", prefix.Text, "severity", SeverityTrace.String())
}

func (c *StructuredConsole) Debug(prefix Segment, message string) {
	c.logger.Debug(message, "source", prefix.Text)
}

func (c *StructuredConsole) Info(prefix Segment, message string) {
	c.logger.Info(message, "source", prefix.Text)
}

func (c *StructuredConsole) Warn(prefix Segment, message string) {
	c.logger.Warn(message, "source", prefix.Text)
}

func (c *StructuredConsole) Error(prefix Segment, message string) {
	c.logger.Error(message, "source", prefix.Text)
}

// DiscardConsole drops every line.
type DiscardConsole struct{}

func (DiscardConsole) Trace(Segment, string) {}
func (DiscardConsole) Debug(Segment, string) {}
func (DiscardConsole) Info(Segment, string)  {}
func (DiscardConsole) Warn(Segment, string)  {}
func (DiscardConsole) Error(Segment, string) {}
