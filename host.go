package plugkit

import "context"

// Host is everything a module needs from the host application. Each port is
// a separate interface so hosts and tests can provide them piecemeal.
type Host interface {
	Notifier
	CommandHost
	MenuHost
	SuggestHost
	EventHost
	CodeBlockHost
	IntervalHost
	VaultHost
}

// Command describes a command palette entry. Exactly one of Callback,
// EditorCallback and CheckCallback is set.
type Command struct {
	ID             string
	Name           string
	Callback       func(ctx context.Context) error
	EditorCallback func(ctx context.Context, editor Editor, view EditorContext) error

	// CheckCallback is called with checking set to ask whether the command
	// can run in view, which is nil when no editor is active, and with
	// checking unset to run it. It reports whether the command was available.
	CheckCallback func(ctx context.Context, view EditorContext, checking bool) (bool, error)
}

// CommandHost registers and removes commands. AddCommand returns the id the
// host assigned, which is what RemoveCommand expects.
type CommandHost interface {
	AddCommand(cmd Command) (string, error)
	RemoveCommand(id string)
}

// Editor is the active text editor.
type Editor interface {
	Selection() string
	ReplaceSelection(text string)
}

// EditorContext describes the view hosting the editor.
type EditorContext interface {
	FilePath() string
}

// File is an entry of the vault a menu was opened on.
type File struct {
	Path     string
	IsFolder bool
}

// Menu collects the items of a context menu being built.
type Menu interface {
	AddItem(build func(item MenuItem))
}

// MenuItem is one context menu entry.
type MenuItem interface {
	SetTitle(title string) MenuItem
	SetIcon(icon string) MenuItem
	// OnClick sets the action run when the item is chosen; the host receives
	// its error.
	OnClick(fn func(ctx context.Context) error) MenuItem
}

// FileMenuHandler is attached to the host's file-menu event. Hosts detach it
// by pointer identity.
type FileMenuHandler struct {
	Handle func(menu Menu, file File)
}

// FilesMenuHandler is attached to the host's files-menu event (a
// multi-selection). Hosts detach it by pointer identity.
type FilesMenuHandler struct {
	Handle func(menu Menu, files []File)
}

// MenuHost attaches and detaches context menu handlers.
type MenuHost interface {
	OnFileMenu(handler *FileMenuHandler)
	OffFileMenu(handler *FileMenuHandler)
	OnFilesMenu(handler *FilesMenuHandler)
	OffFilesMenu(handler *FilesMenuHandler)
}

// EditorSuggest is an opaque host suggestion provider.
type EditorSuggest any

// EventRef is an opaque reference to a host event subscription.
type EventRef any

// SuggestHost registers editor suggestion providers.
type SuggestHost interface {
	RegisterEditorSuggest(suggest EditorSuggest) error
}

// EventHost hands event subscriptions to the host for lifetime management.
type EventHost interface {
	RegisterEvent(ref EventRef) error
}

// CodeBlock is a fenced code block the host asks a processor to render.
type CodeBlock struct {
	Language   string
	Source     string
	SourcePath string
	// Output receives the rendered result; its concrete type is host-defined.
	Output any
}

// CodeBlockHandler renders one code block.
type CodeBlockHandler func(ctx context.Context, block CodeBlock) error

// CodeBlockHost registers code block processors by language.
type CodeBlockHost interface {
	RegisterCodeBlockProcessor(language string, handler CodeBlockHandler, sortOrder int) error
}

// IntervalHost runs a callback periodically for as long as the host keeps the
// module. Spec strings use the "@every 5m" form.
type IntervalHost interface {
	RegisterInterval(spec string, fn func(ctx context.Context) error) error
}

// VaultHost exposes the vault storage adapter.
type VaultHost interface {
	VaultAdapter() any
}

// FileSystemAdapter is implemented by vault adapters backed by a local
// directory.
type FileSystemAdapter interface {
	BasePath() (string, error)
}
