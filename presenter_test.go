package plugkit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenterFragmentUsesPalette(t *testing.T) {
	p := NewPresenter(nil)
	f := p.Fragment(SeverityError, "[svc] [Error]", "boom", nil)

	assert.Equal(t, Style{Color: "#FF6347", FontWeight: FontWeightBold}, f.Prefix.Style)
	assert.Equal(t, Style{Color: "#FF6347", FontWeight: FontWeightNormal}, f.Message.Style)
	assert.Equal(t, "[svc] [Error] boom", f.String())
}

func TestPresenterFragmentOverride(t *testing.T) {
	p := NewPresenter(nil)
	override := &ToastStyle{Prefix: Style{Color: "#111111"}}
	f := p.Fragment(SeverityInfo, "p", "m", override)

	assert.Equal(t, Style{Color: "#111111"}, f.Prefix.Style)
	assert.Equal(t, Style{Color: "#32CD32", FontWeight: FontWeightNormal}, f.Message.Style)
}

func TestPresenterPresent(t *testing.T) {
	notifier := &captureNotifier{}
	NewPresenter(notifier).Present(SeverityWarn, "p", "m", 2*time.Second, nil)

	toasts := notifier.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, 2*time.Second, toasts[0].Duration)
	assert.Equal(t, "p m", toasts[0].Content.String())
}

func TestPresenterWithoutNotifierIsNoop(t *testing.T) {
	var nilPresenter *Presenter
	assert.NotPanics(t, func() {
		NewPresenter(nil).Present(SeverityError, "p", "m", 0, nil)
		nilPresenter.Present(SeverityError, "p", "m", 0, nil)
	})
}

func TestFragmentString(t *testing.T) {
	assert.Equal(t, "plain", PlainFragment("plain").String())
	assert.Equal(t, "prefix", Fragment{Prefix: Segment{Text: "prefix"}}.String())
}

func TestNotifierFunc(t *testing.T) {
	var got Fragment
	var notifier Notifier = NotifierFunc(func(content Fragment, duration time.Duration) { got = content })
	notifier.Present(PlainFragment("x"), time.Second)
	assert.Equal(t, "x", got.String())
}
