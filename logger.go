package plugkit

import "maps"

// LoggerConfig identifies the emitting component and its gating policy.
type LoggerConfig struct {
	// Name tags every line, e.g. "[sample] [Warn] disk low".
	Name string

	// MinSeverity gates records: anything strictly below it is dropped.
	MinSeverity Severity

	// ShowToastDefaults overrides, per severity, whether a record also raises
	// a toast. Severities left out fall back to DefaultShowToast.
	ShowToastDefaults map[Severity]bool
}

// Logger is the entry point of the instrumentation layer. A Logger is
// immutable once built; configuration changes go through Rebuild, which
// leaves entries already begun on the old instance untouched.
//
// Two usage shapes are supported:
//
//	logger.Log(plugkit.SeverityWarn, "disk low")                 // one-shot
//	logger.Begin(plugkit.SeverityError).Method("save").Err(err).Execute()
type Logger struct {
	config    LoggerConfig
	console   Console
	presenter *Presenter
}

func newLogger(config LoggerConfig, console Console, presenter *Presenter) *Logger {
	if console == nil {
		console = DiscardConsole{}
	}
	config.ShowToastDefaults = maps.Clone(config.ShowToastDefaults)
	return &Logger{config: config, console: console, presenter: presenter}
}

// Name returns the component name.
func (l *Logger) Name() string {
	return l.config.Name
}

// MinSeverity returns the gating threshold.
func (l *Logger) MinSeverity() Severity {
	return l.config.MinSeverity
}

// Config returns a copy of the logger configuration.
func (l *Logger) Config() LoggerConfig {
	c := l.config
	c.ShowToastDefaults = maps.Clone(l.config.ShowToastDefaults)
	return c
}

// Console returns the console sink.
func (l *Logger) Console() Console {
	return l.console
}

// Enabled reports whether a record at severity would be emitted.
func (l *Logger) Enabled(severity Severity) bool {
	return severity >= l.config.MinSeverity
}

// ShowToastDefault reports whether records at severity raise a toast unless
// the caller overrides it.
func (l *Logger) ShowToastDefault(severity Severity) bool {
	if show, ok := l.config.ShowToastDefaults[severity]; ok {
		return show
	}
	return DefaultShowToast(severity)
}

// Rebuild returns a new logger with config, sharing this logger's sinks.
func (l *Logger) Rebuild(config LoggerConfig) *Logger {
	return newLogger(config, l.console, l.presenter)
}

// Begin starts an entry at severity. The caller chains any of Method,
// Values, Err, ShowToast, Duration and ToastStyle and finishes with Execute.
func (l *Logger) Begin(severity Severity) *Entry {
	return &Entry{
		logger:      l,
		severity:    severity,
		minSeverity: l.config.MinSeverity,
		showToast:   l.ShowToastDefault(severity),
	}
}

// Log emits messages at severity immediately, using the logger's default
// toast policy for that severity.
func (l *Logger) Log(severity Severity, messages ...any) {
	l.Begin(severity).Execute(messages...)
}

func (l *Logger) Trace(messages ...any) { l.Log(SeverityTrace, messages...) }
func (l *Logger) Debug(messages ...any) { l.Log(SeverityDebug, messages...) }
func (l *Logger) Info(messages ...any)  { l.Log(SeverityInfo, messages...) }
func (l *Logger) Warn(messages ...any)  { l.Log(SeverityWarn, messages...) }
func (l *Logger) Error(messages ...any) { l.Log(SeverityError, messages...) }

func (l *Logger) prefix(severity Severity) string {
	return "[" + l.config.Name + "] [" + severity.String() + "]"
}

// LoggerBuilder assembles a Logger step by step.
type LoggerBuilder struct {
	config   LoggerConfig
	console  Console
	notifier Notifier
}

// NewLoggerBuilder returns a builder with the defaults: name "default",
// minimum severity Info, console on standard error, no toasts.
func NewLoggerBuilder() *LoggerBuilder {
	return &LoggerBuilder{
		config: LoggerConfig{
			Name:              "default",
			MinSeverity:       SeverityInfo,
			ShowToastDefaults: make(map[Severity]bool),
		},
	}
}

// Name sets the component name.
func (b *LoggerBuilder) Name(name string) *LoggerBuilder {
	b.config.Name = name
	return b
}

// MinSeverity sets the gating threshold.
func (b *LoggerBuilder) MinSeverity(severity Severity) *LoggerBuilder {
	b.config.MinSeverity = severity
	return b
}

// ShowToastDefault sets whether records at severity raise a toast by default.
func (b *LoggerBuilder) ShowToastDefault(severity Severity, show bool) *LoggerBuilder {
	b.config.ShowToastDefaults[severity] = show
	return b
}

// Config replaces the whole configuration.
func (b *LoggerBuilder) Config(config LoggerConfig) *LoggerBuilder {
	b.config = config
	if b.config.ShowToastDefaults == nil {
		b.config.ShowToastDefaults = make(map[Severity]bool)
	}
	return b
}

// Console sets the console sink.
func (b *LoggerBuilder) Console(console Console) *LoggerBuilder {
	b.console = console
	return b
}

// Notifier sets the host notification port used for toasts.
func (b *LoggerBuilder) Notifier(notifier Notifier) *LoggerBuilder {
	b.notifier = notifier
	return b
}

// Build creates the logger.
func (b *LoggerBuilder) Build() *Logger {
	console := b.console
	if console == nil {
		console = NewStderrConsole()
	}
	return newLogger(b.config, console, NewPresenter(b.notifier))
}
