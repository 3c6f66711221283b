package plugkit

import (
	"fmt"
	"strings"
	"time"
)

// Severity is the ordered level of a log record. Comparison is numeric:
// a record is emitted when its severity is >= the logger's minimum.
type Severity int

const (
	SeverityTrace Severity = iota
	SeverityDebug
	SeverityInfo
	SeverityWarn
	SeverityError
)

// Severities lists every severity from the most verbose to the most severe.
var Severities = []Severity{SeverityTrace, SeverityDebug, SeverityInfo, SeverityWarn, SeverityError}

var severityNames = map[Severity]string{
	SeverityTrace: "Trace",
	SeverityDebug: "Debug",
	SeverityInfo:  "Info",
	SeverityWarn:  "Warn",
	SeverityError: "Error",
}

// Default presentation per severity.
var (
	severityPalette = map[Severity]Style{
		SeverityTrace: {Color: "#00BFFF", FontWeight: FontWeightNormal},
		SeverityDebug: {Color: "#FFD700", FontWeight: FontWeightNormal},
		SeverityInfo:  {Color: "#32CD32", FontWeight: FontWeightNormal},
		SeverityWarn:  {Color: "#FFA500", FontWeight: FontWeightBold},
		SeverityError: {Color: "#FF6347", FontWeight: FontWeightBold},
	}

	severityToastDefaults = map[Severity]bool{
		SeverityWarn:  true,
		SeverityError: true,
	}
)

const (
	// PersistentToast keeps a notification on screen until the user dismisses it.
	PersistentToast time.Duration = 0

	warnToastDuration    = 5 * time.Second
	defaultToastDuration = 3 * time.Second
)

// String returns the display name used in console tags, e.g. "Warn".
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Valid reports whether s is one of the five defined severities.
func (s Severity) Valid() bool {
	_, ok := severityNames[s]
	return ok
}

// Style returns the default color and weight for s.
func (s Severity) Style() Style {
	if style, ok := severityPalette[s]; ok {
		return style
	}
	return Style{}
}

// DefaultToastDuration resolves how long a toast stays up when the caller
// did not override it.
func DefaultToastDuration(s Severity) time.Duration {
	switch s {
	case SeverityError:
		return PersistentToast
	case SeverityWarn:
		return warnToastDuration
	default:
		return defaultToastDuration
	}
}

// DefaultShowToast reports whether s shows a toast when the logger was not
// configured otherwise.
func DefaultShowToast(s Severity) bool {
	return severityToastDefaults[s]
}

// ParseSeverity parses a severity name (case-insensitive), "warning", or
// an ordinal digit.
func ParseSeverity(value string) (Severity, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "trace", "0":
		return SeverityTrace, nil
	case "debug", "1":
		return SeverityDebug, nil
	case "info", "2":
		return SeverityInfo, nil
	case "warn", "warning", "3":
		return SeverityWarn, nil
	case "error", "4":
		return SeverityError, nil
	}
	return SeverityInfo, fmt.Errorf("%w: %q", ErrUnknownSeverity, value)
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSeverity, int(s))
	}
	return []byte(strings.ToLower(s.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
