package plugkit

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/cucumber/godog"
)

// ErrorWrappingBDDTestContext holds state for error wrapping scenarios
type ErrorWrappingBDDTestContext struct {
	logger   *Logger
	console  *captureConsole
	notifier *captureNotifier
	wrapper  *ErrorWrapper

	ops   map[string]func(context.Context) error
	async map[string]func(context.Context, string) *Deferred[string]

	err      error
	panicked any
}

func (c *ErrorWrappingBDDTestContext) aModuleLoggerNamed(name string) error {
	c.logger, c.console, c.notifier = newCaptureLogger(name, SeverityTrace)
	c.wrapper = NewErrorWrapper(func() *Logger { return c.logger })
	c.ops = make(map[string]func(context.Context) error)
	c.async = make(map[string]func(context.Context, string) *Deferred[string])
	return nil
}

func (c *ErrorWrappingBDDTestContext) anOperationThatFailsWith(name, message string) error {
	c.ops[name] = GuardAction(c.wrapper, name, func(context.Context) error {
		return errors.New(message)
	})
	return nil
}

func (c *ErrorWrappingBDDTestContext) anOperationThatPanicsWith(name, message string) error {
	c.ops[name] = GuardAction(c.wrapper, name, func(context.Context) error {
		panic(message)
	})
	return nil
}

func (c *ErrorWrappingBDDTestContext) anOperationThatSucceeds(name string) error {
	c.ops[name] = GuardAction(c.wrapper, name, func(context.Context) error {
		return nil
	})
	return nil
}

func (c *ErrorWrappingBDDTestContext) anAsynchronousOperationThatRejectsWith(name, message string) error {
	c.async[name] = GuardDeferred(c.wrapper, name, func(ctx context.Context, _ string) *Deferred[string] {
		return Defer(ctx, func(context.Context) (string, error) {
			return "", errors.New(message)
		})
	})
	return nil
}

func (c *ErrorWrappingBDDTestContext) errorWrappingIsEnabled() error {
	c.wrapper.Toggle(true)
	return nil
}

func (c *ErrorWrappingBDDTestContext) errorWrappingIsDisabled() error {
	c.wrapper.Toggle(false)
	return nil
}

func (c *ErrorWrappingBDDTestContext) iCall(name string) error {
	op, ok := c.ops[name]
	if !ok {
		return fmt.Errorf("unknown operation %q", name)
	}
	defer func() {
		c.panicked = recover()
	}()
	c.err = op(context.Background())
	return nil
}

func (c *ErrorWrappingBDDTestContext) iCallAndWaitForIt(name string) error {
	op, ok := c.async[name]
	if !ok {
		return fmt.Errorf("unknown asynchronous operation %q", name)
	}
	_, c.err = op(context.Background(), name).Result()
	return nil
}

func (c *ErrorWrappingBDDTestContext) theCallShouldFailWith(message string) error {
	if c.err == nil {
		return errors.New("expected the call to fail")
	}
	if c.err.Error() != message {
		return fmt.Errorf("expected error %q, got %q", message, c.err.Error())
	}
	return nil
}

func (c *ErrorWrappingBDDTestContext) theCallShouldSucceed() error {
	if c.err != nil {
		return fmt.Errorf("expected success, got %w", c.err)
	}
	return nil
}

func (c *ErrorWrappingBDDTestContext) theCallShouldPanicWith(value string) error {
	if c.panicked == nil {
		return errors.New("expected the call to panic")
	}
	if got := fmt.Sprint(c.panicked); got != value {
		return fmt.Errorf("expected panic %q, got %q", value, got)
	}
	return nil
}

func (c *ErrorWrappingBDDTestContext) operationsShouldBeWrapped(n int) error {
	if names := c.wrapper.Names(); len(names) != n {
		return fmt.Errorf("expected %d wrapped operations, got %v", n, names)
	}
	return nil
}

func (c *ErrorWrappingBDDTestContext) theConsoleShouldHaveLines(n int) error {
	if got := len(c.console.Lines()); got != n {
		return fmt.Errorf("expected %d console lines, got %d: %q", n, got, c.console.Texts())
	}
	return nil
}

func (c *ErrorWrappingBDDTestContext) theConsoleShouldContain(text string) error {
	if !slices.Contains(c.console.Texts(), text) {
		return fmt.Errorf("console does not contain %q: %q", text, c.console.Texts())
	}
	return nil
}

func (c *ErrorWrappingBDDTestContext) aConsoleLineShouldStartWith(prefix string) error {
	for _, text := range c.console.Texts() {
		if strings.HasPrefix(text, prefix) {
			return nil
		}
	}
	return fmt.Errorf("no console line starts with %q: %q", prefix, c.console.Texts())
}

func (c *ErrorWrappingBDDTestContext) aPersistentToastShouldBeShown() error {
	for _, toast := range c.notifier.Toasts() {
		if toast.Duration == PersistentToast {
			return nil
		}
	}
	return errors.New("no persistent toast was shown")
}

// InitializeErrorWrappingScenario initializes the BDD test context for error wrapping scenarios
func InitializeErrorWrappingScenario(ctx *godog.ScenarioContext) {
	testCtx := &ErrorWrappingBDDTestContext{}

	// Setup steps
	ctx.Step(`^a module logger named "([^"]*)"$`, testCtx.aModuleLoggerNamed)
	ctx.Step(`^an operation "([^"]*)" that fails with "([^"]*)"$`, testCtx.anOperationThatFailsWith)
	ctx.Step(`^an operation "([^"]*)" that panics with "([^"]*)"$`, testCtx.anOperationThatPanicsWith)
	ctx.Step(`^an operation "([^"]*)" that succeeds$`, testCtx.anOperationThatSucceeds)
	ctx.Step(`^an asynchronous operation "([^"]*)" that rejects with "([^"]*)"$`, testCtx.anAsynchronousOperationThatRejectsWith)
	ctx.Step(`^error wrapping is enabled$`, testCtx.errorWrappingIsEnabled)
	ctx.Step(`^error wrapping is disabled$`, testCtx.errorWrappingIsDisabled)

	// Action steps
	ctx.Step(`^I call "([^"]*)"$`, testCtx.iCall)
	ctx.Step(`^I call "([^"]*)" and wait for it$`, testCtx.iCallAndWaitForIt)

	// Assertion steps
	ctx.Step(`^the call should fail with "([^"]*)"$`, testCtx.theCallShouldFailWith)
	ctx.Step(`^the call should succeed$`, testCtx.theCallShouldSucceed)
	ctx.Step(`^the call should panic with "([^"]*)"$`, testCtx.theCallShouldPanicWith)
	ctx.Step(`^(\d+) operations? should be wrapped$`, testCtx.operationsShouldBeWrapped)
	ctx.Step(`^the console should have (\d+) lines?$`, testCtx.theConsoleShouldHaveLines)
	ctx.Step(`^the console should contain "([^"]*)"$`, testCtx.theConsoleShouldContain)
	ctx.Step(`^a console line should start with "([^"]*)"$`, testCtx.aConsoleLineShouldStartWith)
	ctx.Step(`^a persistent toast should be shown$`, testCtx.aPersistentToastShouldBeShown)
}

// TestErrorWrappingFeature runs the BDD tests for error wrapping
func TestErrorWrappingFeature(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeErrorWrappingScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/error_wrapping.feature"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
