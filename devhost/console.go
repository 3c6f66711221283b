package devhost

import (
	"slices"
	"sync"
	"time"

	"github.com/GoCodeAlone/plugkit"
)

// Line is one recorded console line.
type Line struct {
	Severity plugkit.Severity `json:"severity"`
	Prefix   string           `json:"prefix"`
	Message  string           `json:"message"`
	At       time.Time        `json:"at"`
}

// Recorder is a console that keeps every line in memory. Tee it with a
// writing console to both print and inspect output.
type Recorder struct {
	mu    sync.Mutex
	lines []Line
	limit int
}

// NewRecorder keeps at most limit lines, dropping the oldest; zero keeps
// everything.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

func (r *Recorder) record(severity plugkit.Severity, prefix plugkit.Segment, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, Line{Severity: severity, Prefix: prefix.Text, Message: message, At: time.Now()})
	if r.limit > 0 && len(r.lines) > r.limit {
		r.lines = slices.Delete(r.lines, 0, len(r.lines)-r.limit)
	}
}

func (r *Recorder) Trace(prefix plugkit.Segment, message string) {
	r.record(plugkit.SeverityTrace, prefix, message)
}

func (r *Recorder) Debug(prefix plugkit.Segment, message string) {
	r.record(plugkit.SeverityDebug, prefix, message)
}

func (r *Recorder) Info(prefix plugkit.Segment, message string) {
	r.record(plugkit.SeverityInfo, prefix, message)
}

func (r *Recorder) Warn(prefix plugkit.Segment, message string) {
	r.record(plugkit.SeverityWarn, prefix, message)
}

func (r *Recorder) Error(prefix plugkit.Segment, message string) {
	r.record(plugkit.SeverityError, prefix, message)
}

// Lines returns the recorded lines, oldest first.
func (r *Recorder) Lines() []Line {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.lines)
}

// Texts returns each line as "<prefix> <message>".
func (r *Recorder) Texts() []string {
	lines := r.Lines()
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, line.Prefix+" "+line.Message)
	}
	return out
}

// Reset drops the recorded lines.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = nil
}
