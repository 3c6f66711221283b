package plugkit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type customError struct{ code int }

func (e *customError) Error() string { return fmt.Sprintf("custom %d", e.code) }

func newTestWrapper(t *testing.T) (*ErrorWrapper, *captureConsole, *captureNotifier) {
	t.Helper()
	logger, console, notifier := newCaptureLogger("mod", SeverityTrace)
	w := NewErrorWrapper(func() *Logger { return logger })
	w.Toggle(true)
	return w, console, notifier
}

func TestGuardSuccessIsTransparent(t *testing.T) {
	w, console, notifier := newTestWrapper(t)
	double := Guard(w, "double", func(ctx context.Context, n int) (int, error) { return n * 2, nil })

	got, err := double(context.Background(), 21)
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Empty(t, console.Lines())
	assert.Empty(t, notifier.Toasts())
}

func TestGuardReportsAndReturnsIdenticalError(t *testing.T) {
	w, console, notifier := newTestWrapper(t)
	want := &customError{code: 7}
	op := Guard(w, "save", func(ctx context.Context, _ string) (int, error) { return 0, want })

	_, err := op(context.Background(), "x")
	assert.Same(t, want, err)

	lines := console.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, SeverityError, lines[0].Severity)
	assert.Equal(t, "Error in save: custom 7", lines[0].Message)

	toasts := notifier.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, PersistentToast, toasts[0].Duration)
}

func TestGuardRepanicsWithSameValue(t *testing.T) {
	w, console, notifier := newTestWrapper(t)
	value := &customError{code: 1}
	op := GuardAction(w, "explode", func(ctx context.Context) error { panic(value) })

	defer func() {
		r := recover()
		assert.Same(t, value, r)

		lines := console.Lines()
		require.Len(t, lines, 1)
		assert.True(t, strings.HasPrefix(lines[0].Message, "Error in explode: operation panicked: custom 1\n"), lines[0].Message)
		assert.Len(t, notifier.Toasts(), 1)
	}()
	_ = op(context.Background())
	t.Fatal("guard swallowed the panic")
}

func TestGuardDeferredRejection(t *testing.T) {
	w, console, notifier := newTestWrapper(t)
	want := errors.New("remote down")
	op := GuardDeferred(w, "fetch", func(ctx context.Context, url string) *Deferred[string] {
		return Defer(ctx, func(context.Context) (string, error) { return "", want })
	})

	d := op(context.Background(), "https://example.invalid")
	_, err := d.Result()
	assert.Same(t, want, err)

	lines := console.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "Error in fetch: remote down", lines[0].Message)
	assert.Len(t, notifier.Toasts(), 1)
}

func TestGuardDeferredSuccessStaysDeferred(t *testing.T) {
	w, console, _ := newTestWrapper(t)
	release := make(chan struct{})
	op := GuardDeferred(w, "slow", func(ctx context.Context, n int) *Deferred[int] {
		return Defer(ctx, func(context.Context) (int, error) {
			<-release
			return n + 1, nil
		})
	})

	d := op(context.Background(), 1)
	assert.False(t, d.Settled())
	close(release)

	got, err := d.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, got)
	assert.Empty(t, console.Lines())
}

func TestGuardUnwrappedCallsStraightThrough(t *testing.T) {
	w, console, notifier := newTestWrapper(t)
	w.Toggle(false)
	op := GuardFunc(w, "fail", func(ctx context.Context, _ int) error { return errors.New("quiet") })

	require.EqualError(t, op(context.Background(), 1), "quiet")
	assert.Empty(t, console.Lines())
	assert.Empty(t, notifier.Toasts())
}

func TestGuardToggleIsReversible(t *testing.T) {
	w, console, _ := newTestWrapper(t)
	calls := 0
	op := GuardAction(w, "op", func(ctx context.Context) error {
		calls++
		return errors.New("nope")
	})
	original, ok := w.Original("op")
	require.True(t, ok)

	_ = op(context.Background())
	before := console.Texts()

	w.Toggle(false)
	_ = op(context.Background())
	assert.Equal(t, before, console.Texts())

	w.Toggle(true)
	_ = op(context.Background())
	assert.Equal(t, append(before, before...), console.Texts())
	assert.Equal(t, 3, calls)

	again, _ := w.Original("op")
	assert.Equal(t, fmt.Sprintf("%p", original), fmt.Sprintf("%p", again))
}

func TestGuardIsIdempotent(t *testing.T) {
	w, console, _ := newTestWrapper(t)
	fn := func(ctx context.Context) error { return errors.New("once") }

	first := GuardAction(w, "op", fn)
	second := GuardAction(w, "op", first)

	assert.Equal(t, fmt.Sprintf("%p", first), fmt.Sprintf("%p", second))
	original, _ := w.Original("op")
	assert.Equal(t, fmt.Sprintf("%p", fn), fmt.Sprintf("%p", original))

	_ = second(context.Background())
	assert.Len(t, console.Lines(), 1, "guard must not wrap a guard")
	assert.Equal(t, []string{"op"}, w.Names())
}

func TestGuardSignatureMismatchPanics(t *testing.T) {
	w, _, _ := newTestWrapper(t)
	GuardAction(w, "op", func(ctx context.Context) error { return nil })

	assert.PanicsWithError(t, ErrWrapSignatureMismatch.Error()+": op", func() {
		GuardFunc(w, "op", func(ctx context.Context, _ int) error { return nil })
	})
	assert.PanicsWithValue(t, ErrWrapNameEmpty, func() {
		GuardAction(w, "", func(ctx context.Context) error { return nil })
	})
}

func TestGuardFailureListeners(t *testing.T) {
	w, _, _ := newTestWrapper(t)
	var mu sync.Mutex
	var got []string
	w.OnFailure(func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, name+": "+err.Error())
	})

	op := GuardAction(w, "op", func(ctx context.Context) error { return errors.New("x") })
	_ = op(context.Background())

	assert.Equal(t, []string{"op: x"}, got)
}

func TestGuardPicksUpRebuiltLogger(t *testing.T) {
	first, firstConsole, _ := newCaptureLogger("first", SeverityTrace)
	second, secondConsole, _ := newCaptureLogger("second", SeverityTrace)
	current := first
	w := NewErrorWrapper(func() *Logger { return current })
	w.Toggle(true)
	op := GuardAction(w, "op", func(ctx context.Context) error { return errors.New("x") })

	_ = op(context.Background())
	current = second
	_ = op(context.Background())

	assert.Len(t, firstConsole.Lines(), 1)
	assert.Len(t, secondConsole.Lines(), 1)
}

func TestGuardToggleDuringFlight(t *testing.T) {
	w, console, _ := newTestWrapper(t)
	started := make(chan struct{})
	release := make(chan struct{})
	op := GuardAction(w, "op", func(ctx context.Context) error {
		close(started)
		<-release
		return errors.New("late")
	})

	done := make(chan error, 1)
	go func() { done <- op(context.Background()) }()
	<-started
	w.Toggle(false)
	close(release)

	select {
	case err := <-done:
		require.EqualError(t, err, "late")
	case <-time.After(time.Second):
		t.Fatal("guarded call did not return")
	}
	assert.Len(t, console.Lines(), 1, "a call entered while wrapped reports even if toggled mid-flight")
}
