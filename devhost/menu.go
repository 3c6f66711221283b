package devhost

import (
	"context"
	"strings"
	"sync"

	"github.com/GoCodeAlone/plugkit"
	"github.com/GoCodeAlone/plugkit/exceptions"
)

// Menu collects the items handlers add while a context menu is open.
type Menu struct {
	mu    sync.Mutex
	items []*MenuItem
}

// AddItem implements plugkit.Menu.
func (m *Menu) AddItem(build func(item plugkit.MenuItem)) {
	item := &MenuItem{}
	build(item)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, item)
}

// Items returns the items added so far.
func (m *Menu) Items() []*MenuItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MenuItem(nil), m.items...)
}

// Titles returns the item titles in order.
func (m *Menu) Titles() []string {
	items := m.Items()
	titles := make([]string, 0, len(items))
	for _, item := range items {
		titles = append(titles, item.Title)
	}
	return titles
}

// Click runs the action of the first item titled title.
func (m *Menu) Click(ctx context.Context, title string) error {
	for _, item := range m.Items() {
		if item.Title == title {
			return item.Click(ctx)
		}
	}
	return exceptions.NotFound.Newf("menu item %q not found", title)
}

// MenuItem is one recorded context menu entry.
type MenuItem struct {
	Title  string `json:"title"`
	Icon   string `json:"icon"`
	action func(ctx context.Context) error
}

// SetTitle implements plugkit.MenuItem.
func (i *MenuItem) SetTitle(title string) plugkit.MenuItem {
	i.Title = title
	return i
}

// SetIcon implements plugkit.MenuItem.
func (i *MenuItem) SetIcon(icon string) plugkit.MenuItem {
	i.Icon = icon
	return i
}

// OnClick implements plugkit.MenuItem.
func (i *MenuItem) OnClick(fn func(ctx context.Context) error) plugkit.MenuItem {
	i.action = fn
	return i
}

// Click runs the item's action, if any.
func (i *MenuItem) Click(ctx context.Context) error {
	if i.action == nil {
		return nil
	}
	return i.action(ctx)
}

// Buffer is an in-memory editor: a file's content and the current selection.
type Buffer struct {
	mu       sync.Mutex
	Path     string
	Content  string
	Selected string
}

// NewBuffer creates a buffer for path with selection selected in content.
func NewBuffer(path, content, selected string) *Buffer {
	return &Buffer{Path: path, Content: content, Selected: selected}
}

// Selection implements plugkit.Editor.
func (b *Buffer) Selection() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Selected
}

// ReplaceSelection implements plugkit.Editor. With nothing selected the text
// is appended; either way the inserted text becomes the selection.
func (b *Buffer) ReplaceSelection(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Selected != "" && strings.Contains(b.Content, b.Selected) {
		b.Content = strings.Replace(b.Content, b.Selected, text, 1)
	} else {
		b.Content += text
	}
	b.Selected = text
}

// Text returns the buffer content.
func (b *Buffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Content
}

// FilePath implements plugkit.EditorContext.
func (b *Buffer) FilePath() string {
	return b.Path
}

// Output is the element a code block processor renders into.
type Output struct {
	mu sync.Mutex
	sb strings.Builder
}

// SetText replaces the rendered text.
func (o *Output) SetText(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sb.Reset()
	o.sb.WriteString(text)
}

// AppendText adds to the rendered text.
func (o *Output) AppendText(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sb.WriteString(text)
}

func (o *Output) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sb.String()
}
