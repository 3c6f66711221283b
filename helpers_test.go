package plugkit

import (
	"sync"
	"time"
)

// capturedLine is one line written to a captureConsole.
type capturedLine struct {
	Severity Severity
	Prefix   Segment
	Message  string
}

// captureConsole records every line for verification.
type captureConsole struct {
	mu    sync.Mutex
	lines []capturedLine
}

func (c *captureConsole) add(severity Severity, prefix Segment, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, capturedLine{Severity: severity, Prefix: prefix, Message: message})
}

func (c *captureConsole) Trace(prefix Segment, message string) { c.add(SeverityTrace, prefix, message) }
func (c *captureConsole) Debug(prefix Segment, message string) { c.add(SeverityDebug, prefix, message) }
func (c *captureConsole) Info(prefix Segment, message string)  { c.add(SeverityInfo, prefix, message) }
func (c *captureConsole) Warn(prefix Segment, message string)  { c.add(SeverityWarn, prefix, message) }
func (c *captureConsole) Error(prefix Segment, message string) { c.add(SeverityError, prefix, message) }

func (c *captureConsole) Lines() []capturedLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]capturedLine(nil), c.lines...)
}

// Texts returns each line as "<prefix> <message>".
func (c *captureConsole) Texts() []string {
	var out []string
	for _, line := range c.Lines() {
		out = append(out, line.Prefix.Text+" "+line.Message)
	}
	return out
}

// capturedToast is one toast shown through a captureNotifier.
type capturedToast struct {
	Content  Fragment
	Duration time.Duration
}

type captureNotifier struct {
	mu     sync.Mutex
	toasts []capturedToast
}

func (n *captureNotifier) Present(content Fragment, duration time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, capturedToast{Content: content, Duration: duration})
}

func (n *captureNotifier) Toasts() []capturedToast {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]capturedToast(nil), n.toasts...)
}

func newCaptureLogger(name string, min Severity) (*Logger, *captureConsole, *captureNotifier) {
	console := &captureConsole{}
	notifier := &captureNotifier{}
	logger := NewLoggerBuilder().
		Name(name).
		MinSeverity(min).
		Console(console).
		Notifier(notifier).
		Build()
	return logger, console, notifier
}

// stackError carries a fixed stack for formatting tests.
type stackError struct {
	msg   string
	stack string
}

func (e *stackError) Error() string { return e.msg }
func (e *stackError) Stack() string { return e.stack }
