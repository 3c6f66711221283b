// Package sample is the sample extension: a handful of commands, menu items,
// a code block processor and an interval registered through BaseModule.
package sample

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/GoCodeAlone/plugkit"
	"github.com/GoCodeAlone/plugkit/exceptions"
)

// Name is the module and logger name.
const Name = "sample"

// Command ids.
const (
	CommandOpenModal        = "open-sample-modal-simple"
	CommandOpenModalComplex = "open-sample-modal-complex"
	CommandEditor           = "sample-editor-command"
	CommandFail             = "fail-sample-command"
)

// Other registration ids.
const (
	MenuCountWords      = "Count words"
	MenuCountWordsFiles = "Count words in selection"
	CodeBlockLanguage   = "sample"
	EventDOMClick       = "dom-click"
	SuggestID           = "sample-suggest"
	IntervalHeartbeat   = "heartbeat"
	HeartbeatSpec       = "@every 5m"
)

// EditorReplacement is what the editor command writes over the selection.
const EditorReplacement = "Sample Editor Command"

// Settings of the sample module.
type Settings struct {
	plugkit.BaseSettings `yaml:",inline"`

	MySetting string `yaml:"mySetting" toml:"mySetting" json:"mySetting" env:"MY_SETTING" default:"default" desc:"Free-form sample setting"`
}

// Validate checks the common settings and MySetting.
func (s *Settings) Validate() error {
	if err := s.BaseSettings.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(s.MySetting) == "" {
		return exceptions.ArgumentNullException.New("mySetting is empty")
	}
	return nil
}

// Suggest is the editor suggest handed to the host.
type Suggest struct {
	Trigger string
	Words   []string
}

// Module is the sample extension.
type Module struct {
	*plugkit.BaseModule[*Settings]

	countWords func(ctx context.Context, path string) (int, error)
	heartbeats atomic.Int64
}

// New creates the unloaded module.
func New(host plugkit.Host, opts ...plugkit.ModuleOption) *Module {
	m := &Module{}
	m.BaseModule = plugkit.NewBaseModule[*Settings](Name, host, m, opts...)
	m.countWords = plugkit.Guard(m.Wrapper(), "countWords", m.doCountWords)
	return m
}

// OnLoad registers everything the module offers.
func (m *Module) OnLoad() error {
	log := m.Logger()
	log.Begin(plugkit.SeverityTrace).Method("onload").Values(true).Execute()
	log.Begin(plugkit.SeverityDebug).Method("onload").Values(m.Settings().MySetting).Execute()

	return errors.Join(
		m.AddCommand(CommandOpenModal, "Open sample modal (simple)", m.openModal),
		m.AddCheckCommand(CommandOpenModalComplex, "Open sample modal (complex)", editingMarkdown, m.openModalFor),
		m.AddEditorCommand(CommandEditor, "Sample editor command", m.editorCommand),
		m.AddCommand(CommandFail, "Fail on purpose", m.failCommand),
		m.AddFileMenuItem(MenuCountWords, "hash", isMarkdown, m.countFileWords),
		m.AddFilesMenuItem(MenuCountWordsFiles, "hash", allMarkdown, m.countFilesWords),
		m.RegisterCodeBlockProcessor(CodeBlockLanguage, m.renderCodeBlock, 0),
		m.RegisterEvent(EventDOMClick, "click"),
		m.RegisterEditorSuggest(SuggestID, &Suggest{Trigger: "@", Words: []string{"sample", "plugkit"}}),
		m.RegisterInterval(IntervalHeartbeat, HeartbeatSpec, m.heartbeat),
	)
}

// OnUnload logs the unload.
func (m *Module) OnUnload() error {
	m.Logger().Info("Unloading sample module")
	return nil
}

// Heartbeats returns how many times the interval ran.
func (m *Module) Heartbeats() int64 {
	return m.heartbeats.Load()
}

// CountWords counts the words of the vault file at path.
func (m *Module) CountWords(ctx context.Context, path string) (int, error) {
	return m.countWords(ctx, path)
}

func (m *Module) openModal(ctx context.Context) error {
	m.Host().Present(plugkit.PlainFragment("Woah!"), plugkit.DefaultToastDuration(plugkit.SeverityInfo))
	return nil
}

func (m *Module) openModalFor(ctx context.Context, view plugkit.EditorContext) error {
	return m.openModal(ctx)
}

// editingMarkdown offers a command only while a markdown note is open.
func editingMarkdown(ctx context.Context, view plugkit.EditorContext) bool {
	return view != nil && isMarkdown(plugkit.File{Path: view.FilePath()})
}

func (m *Module) editorCommand(ctx context.Context, editor plugkit.Editor, view plugkit.EditorContext) error {
	m.Logger().Begin(plugkit.SeverityDebug).
		Method(CommandEditor).
		Values(view.FilePath(), editor.Selection()).
		Execute()
	editor.ReplaceSelection(EditorReplacement)
	return nil
}

func (m *Module) failCommand(ctx context.Context) error {
	return exceptions.InvalidOperationException.New("the sample command failed on purpose")
}

func (m *Module) countFileWords(ctx context.Context, file plugkit.File) error {
	n, err := m.CountWords(ctx, file.Path)
	if err != nil {
		return err
	}
	m.Logger().Begin(plugkit.SeverityInfo).
		ShowToast(true).
		Execute(fmt.Sprintf("%s: %d words", file.Path, n))
	return nil
}

func (m *Module) countFilesWords(ctx context.Context, files []plugkit.File) error {
	total := 0
	for _, file := range files {
		n, err := m.CountWords(ctx, file.Path)
		if err != nil {
			return err
		}
		total += n
	}
	m.Logger().Begin(plugkit.SeverityInfo).
		ShowToast(true).
		Execute(fmt.Sprintf("%d files: %d words", len(files), total))
	return nil
}

func (m *Module) doCountWords(ctx context.Context, path string) (int, error) {
	root := m.VaultPath()
	if root == "" {
		return 0, exceptions.DirectoryNotFound.New("vault has no local directory")
	}
	rel := filepath.FromSlash(path)
	if !filepath.IsLocal(rel) {
		return 0, exceptions.PermissionDenied.New("path leaves the vault: ", path)
	}
	data, err := os.ReadFile(filepath.Join(root, rel))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return 0, exceptions.FileNotFound.Wrap(err, "file not found: ", path)
	case errors.Is(err, fs.ErrPermission):
		return 0, exceptions.PermissionDenied.Wrap(err, "cannot read ", path)
	case err != nil:
		return 0, exceptions.FileRead.Wrap(err, "cannot read ", path)
	}
	return len(strings.Fields(string(data))), nil
}

// textOutput is the part of a host output element the processor needs.
type textOutput interface {
	SetText(text string)
}

func (m *Module) renderCodeBlock(ctx context.Context, block plugkit.CodeBlock) error {
	out, ok := block.Output.(textOutput)
	if !ok {
		return exceptions.InvalidTypeException.Newf("cannot render into %T", block.Output)
	}
	lines := strings.Split(strings.TrimRight(block.Source, "\n"), "\n")
	for i, line := range lines {
		lines[i] = fmt.Sprintf("%d. %s", i+1, strings.ToUpper(line))
	}
	out.SetText(strings.Join(lines, "\n"))
	return nil
}

func (m *Module) heartbeat(ctx context.Context) error {
	n := m.heartbeats.Add(1)
	m.Logger().Begin(plugkit.SeverityDebug).
		Method(IntervalHeartbeat).
		Values(n, time.Now().Format(time.RFC3339)).
		Execute()
	return nil
}

func isMarkdown(file plugkit.File) bool {
	return !file.IsFolder && strings.EqualFold(filepath.Ext(file.Path), ".md")
}

func allMarkdown(files []plugkit.File) bool {
	if len(files) == 0 {
		return false
	}
	for _, file := range files {
		if !isMarkdown(file) {
			return false
		}
	}
	return true
}
