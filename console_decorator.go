package plugkit

// ConsoleDecorator wraps a console to add behavior without modifying the
// wrapped implementation.
type ConsoleDecorator interface {
	Console

	// Inner returns the wrapped console
	Inner() Console
}

// BaseConsoleDecorator forwards every call to the wrapped console.
type BaseConsoleDecorator struct {
	inner Console
}

// NewBaseConsoleDecorator creates a forwarding decorator around inner.
func NewBaseConsoleDecorator(inner Console) *BaseConsoleDecorator {
	return &BaseConsoleDecorator{inner: inner}
}

// Inner returns the wrapped console
func (d *BaseConsoleDecorator) Inner() Console {
	return d.inner
}

func (d *BaseConsoleDecorator) Trace(prefix Segment, message string) { d.inner.Trace(prefix, message) }
func (d *BaseConsoleDecorator) Debug(prefix Segment, message string) { d.inner.Debug(prefix, message) }
func (d *BaseConsoleDecorator) Info(prefix Segment, message string)  { d.inner.Info(prefix, message) }
func (d *BaseConsoleDecorator) Warn(prefix Segment, message string)  { d.inner.Warn(prefix, message) }
func (d *BaseConsoleDecorator) Error(prefix Segment, message string) { d.inner.Error(prefix, message) }

// TeeConsole writes every line to a primary and a secondary console.
type TeeConsole struct {
	*BaseConsoleDecorator
	secondary Console
}

// NewTeeConsole creates a console that writes to both primary and secondary.
func NewTeeConsole(primary, secondary Console) *TeeConsole {
	return &TeeConsole{
		BaseConsoleDecorator: NewBaseConsoleDecorator(primary),
		secondary:            secondary,
	}
}

func (d *TeeConsole) Trace(prefix Segment, message string) {
	d.inner.Trace(prefix, message)
	d.secondary.Trace(prefix, message)
}

func (d *TeeConsole) Debug(prefix Segment, message string) {
	d.inner.Debug(prefix, message)
	d.secondary.Debug(prefix, message)
}

func (d *TeeConsole) Info(prefix Segment, message string) {
	d.inner.Info(prefix, message)
	d.secondary.Info(prefix, message)
}

func (d *TeeConsole) Warn(prefix Segment, message string) {
	d.inner.Warn(prefix, message)
	d.secondary.Warn(prefix, message)
}

func (d *TeeConsole) Error(prefix Segment, message string) {
	d.inner.Error(prefix, message)
	d.secondary.Error(prefix, message)
}

// MinSeverityConsole drops lines below a floor. It lets a host keep a quieter
// sink (a terminal) next to a verbose one (a capture buffer) behind one tee.
type MinSeverityConsole struct {
	*BaseConsoleDecorator
	floor Severity
}

// NewMinSeverityConsole creates a console that only forwards lines at or
// above floor.
func NewMinSeverityConsole(inner Console, floor Severity) *MinSeverityConsole {
	return &MinSeverityConsole{
		BaseConsoleDecorator: NewBaseConsoleDecorator(inner),
		floor:                floor,
	}
}

func (d *MinSeverityConsole) Trace(prefix Segment, message string) {
	if d.floor <= SeverityTrace {
		d.inner.Trace(prefix, message)
	}
}

func (d *MinSeverityConsole) Debug(prefix Segment, message string) {
	if d.floor <= SeverityDebug {
		d.inner.Debug(prefix, message)
	}
}

func (d *MinSeverityConsole) Info(prefix Segment, message string) {
	if d.floor <= SeverityInfo {
		d.inner.Info(prefix, message)
	}
}

func (d *MinSeverityConsole) Warn(prefix Segment, message string) {
	if d.floor <= SeverityWarn {
		d.inner.Warn(prefix, message)
	}
}

func (d *MinSeverityConsole) Error(prefix Segment, message string) {
	d.inner.Error(prefix, message)
}
