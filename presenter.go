package plugkit

import "time"

// Font weights understood by notifiers.
const (
	FontWeightNormal = "normal"
	FontWeightBold   = "bold"
)

// Style describes how one run of text is drawn.
type Style struct {
	Color      string `json:"color,omitempty" yaml:"color,omitempty"`
	FontWeight string `json:"fontWeight,omitempty" yaml:"fontWeight,omitempty"`
}

// IsZero reports whether no styling was requested.
func (s Style) IsZero() bool {
	return s.Color == "" && s.FontWeight == ""
}

// Bold reports whether the run is drawn with a bold weight.
func (s Style) Bold() bool {
	return s.FontWeight == FontWeightBold
}

// ToastStyle overrides the styling of both runs of a toast.
type ToastStyle struct {
	Prefix  Style `json:"prefix" yaml:"prefix"`
	Message Style `json:"message" yaml:"message"`
}

// Segment is a styled run of text.
type Segment struct {
	Text  string
	Style Style
}

// Fragment is the content of a notification: a prefix run and a message run.
// A plain string notification has an empty prefix.
type Fragment struct {
	Prefix  Segment
	Message Segment
}

// PlainFragment wraps an unstyled string.
func PlainFragment(text string) Fragment {
	return Fragment{Message: Segment{Text: text}}
}

// String joins the non-empty runs with a single space.
func (f Fragment) String() string {
	switch {
	case f.Prefix.Text == "":
		return f.Message.Text
	case f.Message.Text == "":
		return f.Prefix.Text
	}
	return f.Prefix.Text + " " + f.Message.Text
}

// Notifier is the host's notification port. A zero duration means the
// notification stays until the user dismisses it.
type Notifier interface {
	Present(content Fragment, duration time.Duration)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(content Fragment, duration time.Duration)

// Present calls f.
func (f NotifierFunc) Present(content Fragment, duration time.Duration) {
	f(content, duration)
}

// Presenter turns a prefix and a message into a styled fragment and hands it
// to the host notifier.
type Presenter struct {
	notifier Notifier
}

// NewPresenter creates a presenter over notifier. A nil notifier yields a
// presenter that drops every toast.
func NewPresenter(notifier Notifier) *Presenter {
	return &Presenter{notifier: notifier}
}

// Fragment builds the styled content for severity. Runs left unstyled by
// override fall back to the severity palette.
func (p *Presenter) Fragment(severity Severity, prefix, message string, override *ToastStyle) Fragment {
	prefixStyle := severity.Style()
	messageStyle := Style{Color: prefixStyle.Color, FontWeight: FontWeightNormal}
	if override != nil {
		if !override.Prefix.IsZero() {
			prefixStyle = override.Prefix
		}
		if !override.Message.IsZero() {
			messageStyle = override.Message
		}
	}
	return Fragment{
		Prefix:  Segment{Text: prefix, Style: prefixStyle},
		Message: Segment{Text: message, Style: messageStyle},
	}
}

// Present renders and shows a toast.
func (p *Presenter) Present(severity Severity, prefix, message string, duration time.Duration, override *ToastStyle) {
	if p == nil || p.notifier == nil {
		return
	}
	p.notifier.Present(p.Fragment(severity, prefix, message, override), duration)
}
