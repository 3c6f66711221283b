package plugkit

import "time"

// Entry is a single-use record under construction. It is created by
// Logger.Begin, filled through its chainable setters and consumed by
// Execute. Entries are not safe for concurrent use.
type Entry struct {
	logger      *Logger
	severity    Severity
	minSeverity Severity
	method      string
	values      []any
	err         error
	showToast   bool
	duration    *time.Duration
	style       *ToastStyle
}

// Method names the operation the record is about.
func (e *Entry) Method(name string) *Entry {
	e.method = name
	return e
}

// Values appends payload values.
func (e *Entry) Values(values ...any) *Entry {
	e.values = append(e.values, values...)
	return e
}

// Err attaches an error.
func (e *Entry) Err(err error) *Entry {
	e.err = err
	return e
}

// ShowToast overrides the logger's default toast policy for this record.
func (e *Entry) ShowToast(show bool) *Entry {
	e.showToast = show
	return e
}

// Duration overrides how long the toast stays up. Zero keeps it until the
// user dismisses it.
func (e *Entry) Duration(d time.Duration) *Entry {
	e.duration = &d
	return e
}

// ToastStyle overrides the toast colors and weights.
func (e *Entry) ToastStyle(style ToastStyle) *Entry {
	e.style = &style
	return e
}

// Severity returns the severity captured at Begin.
func (e *Entry) Severity() Severity {
	return e.severity
}

// Message renders the record text without the "[name] [Severity]" tag.
func (e *Entry) Message() string {
	if e.err != nil {
		return FormatFailure(e.method, e.err, e.values)
	}
	return FormatValues(e.values)
}

// Execute finalizes the record. Messages, when given, replace the values
// accumulated so far. Nothing happens when the severity captured at Begin
// is below the logger's minimum.
func (e *Entry) Execute(messages ...any) {
	if e.severity < e.minSeverity {
		return
	}
	if len(messages) > 0 {
		e.values = messages
	}

	l := e.logger
	message := e.Message()
	prefix := l.prefix(e.severity)
	writeTo(l.console, e.severity, Segment{Text: prefix, Style: e.severity.Style()}, message)

	if !e.showToast {
		return
	}
	duration := DefaultToastDuration(e.severity)
	if e.duration != nil {
		duration = *e.duration
	}
	l.presenter.Present(e.severity, prefix, message, duration, e.style)
}
