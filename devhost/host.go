// Package devhost is an in-memory host for running and inspecting modules
// outside the real application: commands, menus and code block processors
// are recorded and can be driven directly or over HTTP, intervals run on a
// cron scheduler and toasts are kept as notices.
package devhost

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/GoCodeAlone/plugkit"
	"github.com/GoCodeAlone/plugkit/exceptions"
)

// Compile-time check
var _ plugkit.Host = (*Host)(nil)

// Option configures a Host.
type Option func(*Host)

// WithVaultDir backs the vault with a local directory.
func WithVaultDir(dir string) Option {
	return func(h *Host) {
		h.vault = DirAdapter{Dir: dir}
	}
}

// WithVaultAdapter sets the vault adapter returned to modules.
func WithVaultAdapter(adapter any) Option {
	return func(h *Host) {
		h.vault = adapter
	}
}

// WithLogger sets the logger used for host diagnostics.
func WithLogger(logger plugkit.StructuredLogger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}

// WithNotifier forwards every toast to notifier after recording it.
func WithNotifier(notifier plugkit.Notifier) Option {
	return func(h *Host) {
		h.forward = notifier
	}
}

// Host implements plugkit.Host in memory. It is safe for concurrent use.
type Host struct {
	pluginID string
	logger   plugkit.StructuredLogger
	forward  plugkit.Notifier
	vault    any

	mu         sync.RWMutex
	commands   map[string]plugkit.Command
	order      []string
	fileMenus  []*plugkit.FileMenuHandler
	filesMenus []*plugkit.FilesMenuHandler
	suggests   []plugkit.EditorSuggest
	events     []plugkit.EventRef
	processors map[string]processor
	intervals  []*interval
	notices    []Notice

	cron    *cron.Cron
	baseCtx context.Context
	cancel  context.CancelFunc
	started bool
}

type processor struct {
	handler   plugkit.CodeBlockHandler
	sortOrder int
}

type interval struct {
	Spec  string
	entry cron.EntryID
	run   func(ctx context.Context) error
}

// New creates a host for the plugin pluginID. Command ids are assigned as
// "<pluginID>:<id>".
func New(pluginID string, opts ...Option) *Host {
	h := &Host{
		pluginID:   pluginID,
		commands:   make(map[string]plugkit.Command),
		processors: make(map[string]processor),
		baseCtx:    context.Background(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.cron = cron.New(cron.WithChain(cron.Recover(cronLogger{h.logger})))
	return h
}

// cronLogger reports scheduler diagnostics, including recovered interval
// panics, through the host logger.
type cronLogger struct {
	logger plugkit.StructuredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, keysAndValues...)
	}
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	if l.logger != nil {
		l.logger.Error(msg, append(keysAndValues, "error", err)...)
	}
}

// PluginID returns the id commands are namespaced under.
func (h *Host) PluginID() string {
	return h.pluginID
}

// Start runs the interval scheduler until Stop or until ctx ends.
func (h *Host) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return
	}
	h.baseCtx, h.cancel = context.WithCancel(ctx)
	h.started = true
	h.cron.Start()
	h.info("Started dev host", "plugin", h.pluginID, "intervals", len(h.intervals))
}

// Stop halts the scheduler and waits for running intervals to return.
func (h *Host) Stop() {
	h.mu.Lock()
	if !h.started {
		h.mu.Unlock()
		return
	}
	h.started = false
	cancel := h.cancel
	h.mu.Unlock()

	<-h.cron.Stop().Done()
	cancel()
}

// AddCommand implements plugkit.CommandHost.
func (h *Host) AddCommand(cmd plugkit.Command) (string, error) {
	if cmd.ID == "" {
		return "", exceptions.ArgumentNullException.New("command id is empty")
	}
	if cmd.Callback == nil && cmd.EditorCallback == nil && cmd.CheckCallback == nil {
		return "", exceptions.ArgumentNullException.Newf("command %q has no callback", cmd.ID)
	}
	assigned := h.pluginID + ":" + cmd.ID

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.commands[assigned]; ok {
		return "", exceptions.Conflict.Newf("command %q already registered", assigned)
	}
	h.commands[assigned] = cmd
	h.order = append(h.order, assigned)
	return assigned, nil
}

// RemoveCommand implements plugkit.CommandHost.
func (h *Host) RemoveCommand(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.commands, id)
	h.order = slices.DeleteFunc(h.order, func(existing string) bool { return existing == id })
}

// CommandInfo describes a registered command.
type CommandInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Editor      bool   `json:"editor"`
	Conditional bool   `json:"conditional"`
}

// Commands lists the registered commands in registration order.
func (h *Host) Commands() []CommandInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]CommandInfo, 0, len(h.order))
	for _, id := range h.order {
		cmd := h.commands[id]
		out = append(out, CommandInfo{
			ID:          id,
			Name:        cmd.Name,
			Editor:      cmd.EditorCallback != nil,
			Conditional: cmd.CheckCallback != nil,
		})
	}
	return out
}

// CommandAvailable reports whether the command with the assigned id can run
// with buffer as the active editor (nil for none).
func (h *Host) CommandAvailable(ctx context.Context, id string, buffer *Buffer) (bool, error) {
	cmd, err := h.command(id)
	if err != nil {
		return false, err
	}
	switch {
	case cmd.CheckCallback != nil:
		return cmd.CheckCallback(ctx, editorView(buffer), true)
	case cmd.EditorCallback != nil:
		return buffer != nil, nil
	default:
		return true, nil
	}
}

// ExecuteCommand runs the command with the assigned id. Editor commands run
// against buffer, which must then be non-nil; conditional commands must be
// available for it.
func (h *Host) ExecuteCommand(ctx context.Context, id string, buffer *Buffer) error {
	cmd, err := h.command(id)
	if err != nil {
		return err
	}
	if cmd.CheckCallback != nil {
		view := editorView(buffer)
		available, err := cmd.CheckCallback(ctx, view, true)
		if err != nil {
			return err
		}
		if !available {
			return exceptions.BadRequest.Newf("command %q is not available", id)
		}
		_, err = cmd.CheckCallback(ctx, view, false)
		return err
	}
	if cmd.EditorCallback != nil {
		if buffer == nil {
			return exceptions.BadRequest.Newf("command %q needs an editor", id)
		}
		return cmd.EditorCallback(ctx, buffer, buffer)
	}
	return cmd.Callback(ctx)
}

func (h *Host) command(id string) (plugkit.Command, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	cmd, ok := h.commands[id]
	if !ok {
		return plugkit.Command{}, exceptions.NotFound.Newf("command %q not found", id)
	}
	return cmd, nil
}

// editorView keeps a nil buffer from becoming a non-nil interface.
func editorView(buffer *Buffer) plugkit.EditorContext {
	if buffer == nil {
		return nil
	}
	return buffer
}

// OnFileMenu implements plugkit.MenuHost.
func (h *Host) OnFileMenu(handler *plugkit.FileMenuHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fileMenus = append(h.fileMenus, handler)
}

// OffFileMenu implements plugkit.MenuHost.
func (h *Host) OffFileMenu(handler *plugkit.FileMenuHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fileMenus = slices.DeleteFunc(h.fileMenus, func(existing *plugkit.FileMenuHandler) bool { return existing == handler })
}

// OnFilesMenu implements plugkit.MenuHost.
func (h *Host) OnFilesMenu(handler *plugkit.FilesMenuHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.filesMenus = append(h.filesMenus, handler)
}

// OffFilesMenu implements plugkit.MenuHost.
func (h *Host) OffFilesMenu(handler *plugkit.FilesMenuHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.filesMenus = slices.DeleteFunc(h.filesMenus, func(existing *plugkit.FilesMenuHandler) bool { return existing == handler })
}

// MenuHandlers returns how many file and files menu handlers are attached.
func (h *Host) MenuHandlers() (file, files int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.fileMenus), len(h.filesMenus)
}

// OpenFileMenu builds the context menu for file the way the host does when
// the user right-clicks it.
func (h *Host) OpenFileMenu(file plugkit.File) *Menu {
	h.mu.RLock()
	handlers := slices.Clone(h.fileMenus)
	h.mu.RUnlock()

	menu := &Menu{}
	for _, handler := range handlers {
		handler.Handle(menu, file)
	}
	return menu
}

// OpenFilesMenu builds the context menu for a multi-selection.
func (h *Host) OpenFilesMenu(files []plugkit.File) *Menu {
	h.mu.RLock()
	handlers := slices.Clone(h.filesMenus)
	h.mu.RUnlock()

	menu := &Menu{}
	for _, handler := range handlers {
		handler.Handle(menu, files)
	}
	return menu
}

// RegisterEditorSuggest implements plugkit.SuggestHost.
func (h *Host) RegisterEditorSuggest(suggest plugkit.EditorSuggest) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.suggests = append(h.suggests, suggest)
	return nil
}

// RegisterEvent implements plugkit.EventHost.
func (h *Host) RegisterEvent(ref plugkit.EventRef) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ref)
	return nil
}

// Suggests returns the registered editor suggests.
func (h *Host) Suggests() []plugkit.EditorSuggest {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.suggests)
}

// Events returns the registered event references.
func (h *Host) Events() []plugkit.EventRef {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.events)
}

// RegisterCodeBlockProcessor implements plugkit.CodeBlockHost.
func (h *Host) RegisterCodeBlockProcessor(language string, handler plugkit.CodeBlockHandler, sortOrder int) error {
	if language == "" {
		return exceptions.ArgumentNullException.New("code block language is empty")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.processors[language]; ok {
		return exceptions.Conflict.Newf("code block processor %q already registered", language)
	}
	h.processors[language] = processor{handler: handler, sortOrder: sortOrder}
	return nil
}

// Languages lists the languages with a processor, by sort order then name.
func (h *Host) Languages() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	langs := make([]string, 0, len(h.processors))
	for lang := range h.processors {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool {
		a, b := h.processors[langs[i]], h.processors[langs[j]]
		if a.sortOrder != b.sortOrder {
			return a.sortOrder < b.sortOrder
		}
		return langs[i] < langs[j]
	})
	return langs
}

// RenderCodeBlock runs the processor for language over source and returns
// what it wrote.
func (h *Host) RenderCodeBlock(ctx context.Context, language, source, sourcePath string) (string, error) {
	h.mu.RLock()
	p, ok := h.processors[language]
	h.mu.RUnlock()
	if !ok {
		return "", exceptions.NotFound.Newf("no code block processor for %q", language)
	}
	out := &Output{}
	err := p.handler(ctx, plugkit.CodeBlock{
		Language:   language,
		Source:     source,
		SourcePath: sourcePath,
		Output:     out,
	})
	return out.String(), err
}

// RegisterInterval implements plugkit.IntervalHost. fn runs on the cron
// schedule spec once Start was called; its errors are logged.
func (h *Host) RegisterInterval(spec string, fn func(ctx context.Context) error) error {
	iv := &interval{Spec: spec, run: fn}
	id, err := h.cron.AddFunc(spec, func() { h.runInterval(iv) })
	if err != nil {
		return exceptions.BadRequest.Wrap(err, "invalid interval spec ", spec)
	}
	iv.entry = id

	h.mu.Lock()
	defer h.mu.Unlock()
	h.intervals = append(h.intervals, iv)
	return nil
}

// Intervals returns the registered interval specs.
func (h *Host) Intervals() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	specs := make([]string, 0, len(h.intervals))
	for _, iv := range h.intervals {
		specs = append(specs, iv.Spec)
	}
	return specs
}

// RunIntervals runs every interval once now, outside the schedule.
func (h *Host) RunIntervals() {
	h.mu.RLock()
	intervals := slices.Clone(h.intervals)
	h.mu.RUnlock()
	for _, iv := range intervals {
		h.runInterval(iv)
	}
}

func (h *Host) runInterval(iv *interval) {
	h.mu.RLock()
	ctx := h.baseCtx
	h.mu.RUnlock()
	if err := iv.run(ctx); err != nil && h.logger != nil {
		h.logger.Error("Interval failed", "spec", iv.Spec, "error", err)
	}
}

// VaultAdapter implements plugkit.VaultHost.
func (h *Host) VaultAdapter() any {
	return h.vault
}

func (h *Host) info(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Info(msg, args...)
	}
}

// DirAdapter is a vault adapter backed by a local directory.
type DirAdapter struct {
	Dir string
}

// BasePath implements plugkit.FileSystemAdapter.
func (a DirAdapter) BasePath() (string, error) {
	if a.Dir == "" {
		return "", exceptions.DirectoryNotFound.New("vault directory is not set")
	}
	return a.Dir, nil
}
