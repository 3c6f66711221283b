// Package plugkit instruments host-application extensions: a level-gated
// logger that writes to a console sink and optional toast notifications, and
// an error wrapper that reports every failure of a module's guarded
// operations before handing it back unchanged.
//
// A module embeds BaseModule and composes its operations with the guards at
// construction:
//
//	type Module struct {
//		*plugkit.BaseModule[*Settings]
//		save func(context.Context, string) error
//	}
//
//	func New(host plugkit.Host) *Module {
//		m := &Module{}
//		m.BaseModule = plugkit.NewBaseModule[*Settings]("notes", host, m)
//		m.save = plugkit.GuardFunc(m.Wrapper(), "save", m.doSave)
//		return m
//	}
package plugkit

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"
)

// ModuleHooks are the lifecycle callbacks of a concrete module.
type ModuleHooks interface {
	// OnLoad runs once, after the module is marked loaded.
	OnLoad() error

	// OnUnload runs before the module's commands and menu handlers are
	// removed from the host.
	OnUnload() error
}

// lifecycleToast is how long lifecycle trace toasts stay visible.
const lifecycleToast = 500 * time.Millisecond

type moduleOptions struct {
	console    Console
	loggerName string
	observers  []Observer
}

// ModuleOption configures a BaseModule.
type ModuleOption func(*moduleOptions)

// WithConsole sets the console the module logger writes to. The default is
// standard error.
func WithConsole(console Console) ModuleOption {
	return func(o *moduleOptions) {
		o.console = console
	}
}

// WithLoggerName sets the logger name shown in the console tag. The default
// is the module name.
func WithLoggerName(name string) ModuleOption {
	return func(o *moduleOptions) {
		o.loggerName = name
	}
}

// WithObserver subscribes observer to every event the module emits.
func WithObserver(observer Observer) ModuleOption {
	return func(o *moduleOptions) {
		o.observers = append(o.observers, observer)
	}
}

type registeredCommand struct {
	kind     string
	id       string
	assigned string
}

type registeredFileMenu struct {
	title   string
	handler *FileMenuHandler
}

type registeredFilesMenu struct {
	title   string
	handler *FilesMenuHandler
}

// BaseModule carries the instrumentation shared by every module: its logger,
// its ErrorWrapper, its RegistrationLedger and the bookkeeping needed to undo
// command and menu registrations on Unload.
type BaseModule[T SettingsCarrier] struct {
	name       string
	loggerName string
	host       Host
	hooks      ModuleHooks

	logger  atomic.Pointer[Logger]
	wrapper *ErrorWrapper
	ledger  *RegistrationLedger
	events  *EventBus
	loaded  atomic.Bool

	mu         sync.Mutex
	settings   T
	commands   []registeredCommand
	fileMenus  []registeredFileMenu
	filesMenus []registeredFilesMenu
}

// NewBaseModule creates an unloaded module. It panics when host or hooks is
// nil.
func NewBaseModule[T SettingsCarrier](name string, host Host, hooks ModuleHooks, opts ...ModuleOption) *BaseModule[T] {
	if host == nil {
		panic(ErrHostNil)
	}
	if hooks == nil {
		panic(ErrHooksNil)
	}

	options := moduleOptions{loggerName: name}
	for _, opt := range opts {
		opt(&options)
	}
	if options.console == nil {
		options.console = NewStderrConsole()
	}

	m := &BaseModule[T]{
		name:       name,
		loggerName: options.loggerName,
		host:       host,
		hooks:      hooks,
		ledger:     NewRegistrationLedger(),
	}

	var defaults BaseSettings
	_ = ApplyDefaults(&defaults)
	m.logger.Store(newLogger(defaults.LoggerConfig(m.loggerName), options.console, NewPresenter(host)))

	m.wrapper = NewErrorWrapper(m.Logger)
	m.wrapper.OnFailure(m.emitFailure)

	m.events = NewEventBus(func(observerID string, event CloudEvent, err error) {
		m.Logger().Begin(SeverityWarn).
			Method("notifyObservers").
			Err(err).
			Values(observerID, event.Type()).
			ShowToast(false).
			Execute()
	})
	for _, observer := range options.observers {
		_ = m.events.RegisterObserver(observer)
	}
	return m
}

// Name returns the module name.
func (m *BaseModule[T]) Name() string {
	return m.name
}

// Host returns the host the module registers with.
func (m *BaseModule[T]) Host() Host {
	return m.host
}

// Logger returns the current logger. Loading and applying settings replace
// it; callers should not hold on to the result.
func (m *BaseModule[T]) Logger() *Logger {
	return m.logger.Load()
}

// Wrapper returns the module's ErrorWrapper.
func (m *BaseModule[T]) Wrapper() *ErrorWrapper {
	return m.wrapper
}

// Ledger returns the module's RegistrationLedger.
func (m *BaseModule[T]) Ledger() *RegistrationLedger {
	return m.ledger
}

// Events returns the bus the module publishes its lifecycle events on.
func (m *BaseModule[T]) Events() *EventBus {
	return m.events
}

// Loaded reports whether Load ran and Unload has not.
func (m *BaseModule[T]) Loaded() bool {
	return m.loaded.Load()
}

// Settings returns the settings passed to the last Load or ApplySettings.
func (m *BaseModule[T]) Settings() T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// Load stores settings and, on the first call only, configures the logger
// and the wrapper from them, marks the module loaded and runs OnLoad.
func (m *BaseModule[T]) Load(settings T) error {
	if isNil(settings) {
		return m.fail("load", ErrSettingsNil)
	}

	m.mu.Lock()
	m.settings = settings
	m.mu.Unlock()

	if m.loaded.Load() {
		return nil
	}

	base := settings.Base()
	m.replaceLogger(base)
	m.Logger().Begin(SeverityTrace).
		ShowToast(true).
		Duration(lifecycleToast).
		Execute("Initializing plugin module...")
	m.ToggleErrorWrapping(base.EnableErrorWrapping)
	m.loaded.Store(true)

	if err := m.hooks.OnLoad(); err != nil {
		return m.fail("load", err)
	}
	m.emit(EventTypeModuleLoaded, map[string]any{"module": m.name})
	return nil
}

// ApplySettings replaces the settings of a loaded module: the logger is
// rebuilt from them and the wrapper follows EnableErrorWrapping. Entries
// begun on the previous logger keep its configuration.
func (m *BaseModule[T]) ApplySettings(settings T) error {
	if isNil(settings) {
		return m.fail("applySettings", ErrSettingsNil)
	}

	m.mu.Lock()
	m.settings = settings
	m.mu.Unlock()

	base := settings.Base()
	m.replaceLogger(base)
	if m.wrapper.Enabled() != base.EnableErrorWrapping {
		m.ToggleErrorWrapping(base.EnableErrorWrapping)
	}
	m.emit(EventTypeSettingsApplied, map[string]any{
		"module":              m.name,
		"logLevel":            base.LogLevel.String(),
		"enableErrorWrapping": base.EnableErrorWrapping,
	})
	return nil
}

// Unload marks the module unloaded, runs OnUnload, then detaches every menu
// handler from the event it was attached to and removes every command by
// the id the host assigned. Suggests, events, code block processors and
// intervals are left to the host.
func (m *BaseModule[T]) Unload() error {
	if !m.loaded.CompareAndSwap(true, false) {
		return nil
	}
	hookErr := m.hooks.OnUnload()

	m.mu.Lock()
	commands, fileMenus, filesMenus := m.commands, m.fileMenus, m.filesMenus
	m.commands, m.fileMenus, m.filesMenus = nil, nil, nil
	m.mu.Unlock()

	for _, menu := range fileMenus {
		m.host.OffFileMenu(menu.handler)
		m.forget(KindFileMenu, menu.title)
	}
	for _, menu := range filesMenus {
		m.host.OffFilesMenu(menu.handler)
		m.forget(KindFilesMenu, menu.title)
	}
	for _, cmd := range commands {
		m.host.RemoveCommand(cmd.assigned)
		m.forget(cmd.kind, cmd.id)
	}

	m.emit(EventTypeModuleUnloaded, map[string]any{
		"module":   m.name,
		"commands": len(commands),
		"menus":    len(fileMenus) + len(filesMenus),
	})
	if hookErr != nil {
		return m.fail("unload", hookErr)
	}
	return nil
}

// ToggleErrorWrapping switches the wrapper between its Wrapped and Unwrapped
// modes.
func (m *BaseModule[T]) ToggleErrorWrapping(enable bool) {
	state := "disabled"
	if enable {
		state = "enabled"
	}
	m.Logger().Begin(SeverityTrace).
		ShowToast(true).
		Duration(lifecycleToast).
		Execute(fmt.Sprintf("Error wrapping %s.", state))
	m.wrapper.Toggle(enable)
	m.emit(EventTypeWrappingToggled, map[string]any{"module": m.name, "enabled": enable})
}

// VaultPath returns the local directory of the vault, or "" when the vault
// is not backed by one or its path cannot be resolved.
func (m *BaseModule[T]) VaultPath() string {
	adapter, ok := m.host.VaultAdapter().(FileSystemAdapter)
	if !ok {
		return ""
	}
	path, err := adapter.BasePath()
	if err != nil {
		m.Logger().Begin(SeverityError).Method("getVaultPath").Err(err).Execute()
		return ""
	}
	return path
}

// forget releases the ledger key and the guard of a registration so the
// next Load registers its callback afresh.
func (m *BaseModule[T]) forget(kind, id string) {
	m.ledger.Forget(kind, id)
	m.wrapper.Forget(LedgerKey(kind, id))
}

func (m *BaseModule[T]) replaceLogger(base BaseSettings) {
	m.logger.Store(m.Logger().Rebuild(base.LoggerConfig(m.loggerName)))
}

// fail logs err under method and returns it.
func (m *BaseModule[T]) fail(method string, err error) error {
	m.Logger().Begin(SeverityError).Method(method).Err(err).Execute()
	return err
}

func (m *BaseModule[T]) emitFailure(name string, err error) {
	m.emit(EventTypeGuardFailure, map[string]any{
		"module":    m.name,
		"operation": name,
		"error":     err.Error(),
	})
}

func (m *BaseModule[T]) emit(eventType string, data map[string]any) {
	event := NewCloudEvent(eventType, "plugkit/"+m.name, data, nil)
	if err := m.events.NotifyObservers(context.Background(), event); err != nil {
		m.Logger().Debug("event", eventType, "dropped:", err)
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
