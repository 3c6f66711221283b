package plugkit

import (
	"context"
	"fmt"
)

// editorCall bundles the arguments of an editor command so it fits GuardFunc.
type editorCall struct {
	editor Editor
	view   EditorContext
}

// AddCommand registers a command palette entry once per id. Failures of the
// callback are reported under id; it is removed from the host on Unload.
func (m *BaseModule[T]) AddCommand(id, name string, callback func(ctx context.Context) error) error {
	if callback == nil {
		return m.fail(KindCommand, fmt.Errorf("%w: command %q", ErrCallbackNil, id))
	}
	guarded := guardAction(m.wrapper, LedgerKey(KindCommand, id), id, callback)
	return m.registerCommand(KindCommand, Command{ID: id, Name: name, Callback: guarded})
}

// AddEditorCommand registers a command bound to the active editor once per
// id. Failures are reported under id; it is removed from the host on Unload.
func (m *BaseModule[T]) AddEditorCommand(id, name string, callback func(ctx context.Context, editor Editor, view EditorContext) error) error {
	if callback == nil {
		return m.fail(KindEditorCommand, fmt.Errorf("%w: command %q", ErrCallbackNil, id))
	}
	guarded := guardFunc(m.wrapper, LedgerKey(KindEditorCommand, id), id, func(ctx context.Context, call editorCall) error {
		return callback(ctx, call.editor, call.view)
	})
	return m.registerCommand(KindEditorCommand, Command{
		ID:   id,
		Name: name,
		EditorCallback: func(ctx context.Context, editor Editor, view EditorContext) error {
			return guarded(ctx, editorCall{editor: editor, view: view})
		},
	})
}

// AddCheckCommand registers a command that is only offered while available
// reports true for the active view (nil when no editor is active), once per
// id. A nil available offers the command everywhere. Failures of callback are
// reported under id; it is removed from the host on Unload.
func (m *BaseModule[T]) AddCheckCommand(id, name string, available func(ctx context.Context, view EditorContext) bool, callback func(ctx context.Context, view EditorContext) error) error {
	if callback == nil {
		return m.fail(KindCheckCommand, fmt.Errorf("%w: command %q", ErrCallbackNil, id))
	}
	guarded := guardFunc(m.wrapper, LedgerKey(KindCheckCommand, id), id, callback)
	return m.registerCommand(KindCheckCommand, Command{
		ID:   id,
		Name: name,
		CheckCallback: func(ctx context.Context, view EditorContext, checking bool) (bool, error) {
			if available != nil && !available(ctx, view) {
				return false, nil
			}
			if checking {
				return true, nil
			}
			return true, guarded(ctx, view)
		},
	})
}

func (m *BaseModule[T]) registerCommand(kind string, cmd Command) error {
	_, err := m.ledger.Register(kind, cmd.ID, func() error {
		assigned, err := m.host.AddCommand(cmd)
		if err != nil {
			return err
		}
		m.mu.Lock()
		m.commands = append(m.commands, registeredCommand{kind: kind, id: cmd.ID, assigned: assigned})
		m.mu.Unlock()
		return nil
	})
	if err != nil {
		return m.fail(kind, fmt.Errorf("%w: command %q: %w", ErrRegistrationFail, cmd.ID, err))
	}
	return nil
}

// AddFileMenuItem adds an item titled title to the context menu of every file
// accepted by accept (all files when accept is nil), for as long as the
// module is loaded. Failures of the action are reported under title.
func (m *BaseModule[T]) AddFileMenuItem(title, icon string, accept func(File) bool, action func(ctx context.Context, file File) error) error {
	if action == nil {
		return m.fail(KindFileMenu, fmt.Errorf("%w: menu item %q", ErrCallbackNil, title))
	}
	guarded := guardFunc(m.wrapper, LedgerKey(KindFileMenu, title), title, action)
	handler := &FileMenuHandler{
		Handle: func(menu Menu, file File) {
			if !m.Loaded() || (accept != nil && !accept(file)) {
				return
			}
			menu.AddItem(func(item MenuItem) {
				item.SetTitle(title).
					SetIcon(icon).
					OnClick(func(ctx context.Context) error { return guarded(ctx, file) })
			})
		},
	}

	_, err := m.ledger.Register(KindFileMenu, title, func() error {
		m.host.OnFileMenu(handler)
		m.mu.Lock()
		m.fileMenus = append(m.fileMenus, registeredFileMenu{title: title, handler: handler})
		m.mu.Unlock()
		return nil
	})
	if err != nil {
		return m.fail(KindFileMenu, fmt.Errorf("%w: menu item %q: %w", ErrRegistrationFail, title, err))
	}
	return nil
}

// AddFilesMenuItem is AddFileMenuItem for menus opened on a multi-selection.
func (m *BaseModule[T]) AddFilesMenuItem(title, icon string, accept func([]File) bool, action func(ctx context.Context, files []File) error) error {
	if action == nil {
		return m.fail(KindFilesMenu, fmt.Errorf("%w: menu item %q", ErrCallbackNil, title))
	}
	guarded := guardFunc(m.wrapper, LedgerKey(KindFilesMenu, title), title, action)
	handler := &FilesMenuHandler{
		Handle: func(menu Menu, files []File) {
			if !m.Loaded() || (accept != nil && !accept(files)) {
				return
			}
			menu.AddItem(func(item MenuItem) {
				item.SetTitle(title).
					SetIcon(icon).
					OnClick(func(ctx context.Context) error { return guarded(ctx, files) })
			})
		},
	}

	_, err := m.ledger.Register(KindFilesMenu, title, func() error {
		m.host.OnFilesMenu(handler)
		m.mu.Lock()
		m.filesMenus = append(m.filesMenus, registeredFilesMenu{title: title, handler: handler})
		m.mu.Unlock()
		return nil
	})
	if err != nil {
		return m.fail(KindFilesMenu, fmt.Errorf("%w: menu item %q: %w", ErrRegistrationFail, title, err))
	}
	return nil
}

// RegisterEditorSuggest hands suggest to the host once per id.
func (m *BaseModule[T]) RegisterEditorSuggest(id string, suggest EditorSuggest) error {
	m.Logger().Debug("editorSuggest", id)
	return m.registerOnce(KindEditorSuggest, id, func() error {
		return m.host.RegisterEditorSuggest(suggest)
	})
}

// RegisterEvent hands an event subscription to the host once per id.
func (m *BaseModule[T]) RegisterEvent(id string, ref EventRef) error {
	m.Logger().Debug("eventRef", id)
	return m.registerOnce(KindEvent, id, func() error {
		return m.host.RegisterEvent(ref)
	})
}

// RegisterCodeBlockProcessor registers handler for fenced blocks in language,
// once per language. Failures are reported under "codeblock:<language>".
func (m *BaseModule[T]) RegisterCodeBlockProcessor(language string, handler CodeBlockHandler, sortOrder int) error {
	if handler == nil {
		return m.fail(KindCodeBlockProcessor, fmt.Errorf("%w: code block %q", ErrCallbackNil, language))
	}
	m.Logger().Debug("language", language, "sortOrder", sortOrder)
	guarded := guardFunc[CodeBlock](m.wrapper, LedgerKey(KindCodeBlockProcessor, language), "codeblock:"+language, handler)
	return m.registerOnce(KindCodeBlockProcessor, language, func() error {
		return m.host.RegisterCodeBlockProcessor(language, guarded, sortOrder)
	})
}

// RegisterInterval runs fn on the host schedule spec (for example
// "@every 5m"), once per id. Failures of fn are reported under id.
func (m *BaseModule[T]) RegisterInterval(id, spec string, fn func(ctx context.Context) error) error {
	if fn == nil {
		return m.fail(KindInterval, fmt.Errorf("%w: interval %q", ErrCallbackNil, id))
	}
	guarded := guardAction(m.wrapper, LedgerKey(KindInterval, id), id, fn)
	return m.registerOnce(KindInterval, id, func() error {
		return m.host.RegisterInterval(spec, guarded)
	})
}

func (m *BaseModule[T]) registerOnce(kind, id string, fn func() error) error {
	if _, err := m.ledger.Register(kind, id, fn); err != nil {
		return m.fail(kind, fmt.Errorf("%w: %s: %w", ErrRegistrationFail, LedgerKey(kind, id), err))
	}
	return nil
}
