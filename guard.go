package plugkit

import (
	"context"
	"fmt"
	"runtime/debug"
	"slices"
	"sync"
	"sync/atomic"
)

// ErrorWrapper instruments a module's operations. Each operation is composed
// once with a guard (see Guard, GuardAction, GuardFunc and GuardDeferred);
// the guard consults the wrapper's mode at call entry:
//
//   - Wrapped: failures are logged at Error severity, shown as a persistent
//     toast and handed back unchanged (returned errors are returned, panics
//     re-panic with the same value, rejected Deferreds stay rejected).
//   - Unwrapped: the original is called straight through.
//
// The wrapper starts Unwrapped. The registry of originals survives toggling,
// so switching off and on again needs no re-capture.
type ErrorWrapper struct {
	mu        sync.RWMutex
	enabled   atomic.Bool
	entries   map[string]*wrapEntry
	logger    func() *Logger
	listeners []FailureListener
}

type wrapEntry struct {
	original any
	guarded  any
}

// FailureListener observes every failure a guard reports.
type FailureListener func(name string, err error)

// NewErrorWrapper creates an Unwrapped wrapper reporting through the logger
// returned by logger at failure time, so a rebuilt logger is picked up
// without re-guarding anything.
func NewErrorWrapper(logger func() *Logger) *ErrorWrapper {
	return &ErrorWrapper{
		entries: make(map[string]*wrapEntry),
		logger:  logger,
	}
}

// Toggle switches between the Wrapped (true) and Unwrapped (false) modes.
func (w *ErrorWrapper) Toggle(enable bool) {
	w.enabled.Store(enable)
}

// Enabled reports whether the wrapper is in the Wrapped mode.
func (w *ErrorWrapper) Enabled() bool {
	return w.enabled.Load()
}

// OnFailure registers a listener called after each reported failure.
func (w *ErrorWrapper) OnFailure(listener FailureListener) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, listener)
}

// Names returns the guarded operation names in sorted order.
func (w *ErrorWrapper) Names() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	names := make([]string, 0, len(w.entries))
	for name := range w.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Original returns the implementation captured for name.
func (w *ErrorWrapper) Original(name string) (any, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.entries[name]
	if !ok {
		return nil, false
	}
	return e.original, true
}

// Report logs err as a failure of the operation name and notifies the
// failure listeners. Guards call it; boundary code may call it directly.
func (w *ErrorWrapper) Report(name string, err error) {
	if w.logger != nil {
		if l := w.logger(); l != nil {
			l.Begin(SeverityError).
				Method(name).
				Err(err).
				ShowToast(true).
				Duration(PersistentToast).
				Execute()
		}
	}

	w.mu.RLock()
	listeners := slices.Clone(w.listeners)
	w.mu.RUnlock()
	for _, listener := range listeners {
		listener(name, err)
	}
}

// Forget drops the implementation captured under name. A later guard with
// that name captures its callback afresh.
func (w *ErrorWrapper) Forget(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.entries, name)
}

// recoverAndReport must be deferred directly by a guard.
func (w *ErrorWrapper) recoverAndReport(method string) {
	if p := recover(); p != nil {
		w.Report(method, NewPanicError(p, debug.Stack()))
		panic(p)
	}
}

// register captures original under key the first time it is seen and
// returns the guarded variant. Later calls return the variant already
// registered, so a guard never wraps another guard.
func register[F any](w *ErrorWrapper, key string, original F, build func(F) F) F {
	if key == "" {
		panic(ErrWrapNameEmpty)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if e, ok := w.entries[key]; ok {
		guarded, ok := e.guarded.(F)
		if !ok {
			panic(fmt.Errorf("%w: %s", ErrWrapSignatureMismatch, key))
		}
		return guarded
	}
	guarded := build(original)
	w.entries[key] = &wrapEntry{original: original, guarded: guarded}
	return guarded
}

// Guard composes fn with the wrapper's failure handling under name.
func Guard[A, R any](w *ErrorWrapper, name string, fn func(context.Context, A) (R, error)) func(context.Context, A) (R, error) {
	return register(w, name, fn, func(original func(context.Context, A) (R, error)) func(context.Context, A) (R, error) {
		return func(ctx context.Context, arg A) (R, error) {
			if !w.Enabled() {
				return original(ctx, arg)
			}
			defer w.recoverAndReport(name)
			result, err := original(ctx, arg)
			if err != nil {
				w.Report(name, err)
			}
			return result, err
		}
	})
}

// GuardFunc is Guard for operations that only return an error.
func GuardFunc[A any](w *ErrorWrapper, name string, fn func(context.Context, A) error) func(context.Context, A) error {
	return guardFunc(w, name, name, fn)
}

// guardFunc registers fn under key and reports its failures as method.
func guardFunc[A any](w *ErrorWrapper, key, method string, fn func(context.Context, A) error) func(context.Context, A) error {
	return register(w, key, fn, func(original func(context.Context, A) error) func(context.Context, A) error {
		return func(ctx context.Context, arg A) error {
			if !w.Enabled() {
				return original(ctx, arg)
			}
			defer w.recoverAndReport(method)
			err := original(ctx, arg)
			if err != nil {
				w.Report(method, err)
			}
			return err
		}
	})
}

// GuardAction is Guard for argument-less operations that only return an error.
func GuardAction(w *ErrorWrapper, name string, fn func(context.Context) error) func(context.Context) error {
	return guardAction(w, name, name, fn)
}

// guardAction registers fn under key and reports its failures as method.
func guardAction(w *ErrorWrapper, key, method string, fn func(context.Context) error) func(context.Context) error {
	return register(w, key, fn, func(original func(context.Context) error) func(context.Context) error {
		return func(ctx context.Context) error {
			if !w.Enabled() {
				return original(ctx)
			}
			defer w.recoverAndReport(method)
			err := original(ctx)
			if err != nil {
				w.Report(method, err)
			}
			return err
		}
	})
}

// GuardDeferred composes an asynchronous operation. A rejection is reported
// when the Deferred settles; the returned Deferred settles with the same
// value or error as the original one.
func GuardDeferred[A, R any](w *ErrorWrapper, name string, fn func(context.Context, A) *Deferred[R]) func(context.Context, A) *Deferred[R] {
	return register(w, name, fn, func(original func(context.Context, A) *Deferred[R]) func(context.Context, A) *Deferred[R] {
		return func(ctx context.Context, arg A) *Deferred[R] {
			if !w.Enabled() {
				return original(ctx, arg)
			}
			defer w.recoverAndReport(name)
			d := original(ctx, arg)
			if d == nil {
				return nil
			}
			return d.Catch(func(err error) {
				w.Report(name, err)
			})
		}
	})
}
