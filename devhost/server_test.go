package devhost

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/plugkit"
)

func newTestServer(t *testing.T) (*Host, *Recorder, http.Handler) {
	t.Helper()
	h := New("notes")
	_, err := h.AddCommand(plugkit.Command{ID: "ok", Name: "OK", Callback: noop})
	require.NoError(t, err)
	_, err = h.AddCommand(plugkit.Command{ID: "fail", Callback: func(context.Context) error {
		return errors.New("boom")
	}})
	require.NoError(t, err)
	_, err = h.AddCommand(plugkit.Command{ID: "upper", EditorCallback: func(ctx context.Context, editor plugkit.Editor, view plugkit.EditorContext) error {
		editor.ReplaceSelection(strings.ToUpper(editor.Selection()))
		return nil
	}})
	require.NoError(t, err)

	h.OnFileMenu(&plugkit.FileMenuHandler{Handle: func(menu plugkit.Menu, file plugkit.File) {
		menu.AddItem(func(item plugkit.MenuItem) {
			item.SetTitle("Touch").SetIcon("hand").OnClick(func(context.Context) error {
				h.Present(plugkit.PlainFragment("touched "+file.Path), 0)
				return nil
			})
		})
	}})
	require.NoError(t, h.RegisterCodeBlockProcessor("echo", func(ctx context.Context, block plugkit.CodeBlock) error {
		block.Output.(*Output).SetText(block.SourcePath + ":" + block.Source)
		return nil
	}, 0))

	console := NewRecorder(0)
	console.Info(plugkit.Segment{Text: "[notes] [Info]"}, "ready")
	return h, console, NewRouter(h, console)
}

func do(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestServerHealth(t *testing.T) {
	_, _, handler := newTestServer(t)
	rec := do(t, handler, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	decode(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "notes", body["plugin"])
	assert.EqualValues(t, 3, body["commands"])
}

func TestServerCommands(t *testing.T) {
	_, _, handler := newTestServer(t)

	rec := do(t, handler, http.MethodGet, "/commands", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var commands []CommandInfo
	decode(t, rec, &commands)
	require.Len(t, commands, 3)
	assert.Equal(t, "notes:ok", commands[0].ID)
	assert.True(t, commands[2].Editor)

	rec = do(t, handler, http.MethodPost, "/commands/notes:ok", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, handler, http.MethodPost, "/commands/notes:upper", `{"path":"a.md","content":"say hi","selection":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp commandResponse
	decode(t, rec, &resp)
	assert.Equal(t, "say HI", resp.Content)
}

func TestServerCommandErrors(t *testing.T) {
	_, _, handler := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		msg    string
	}{
		{name: "unknown command", path: "/commands/notes:nope", status: http.StatusNotFound, msg: `command "notes:nope" not found`},
		{name: "editor without buffer", path: "/commands/notes:upper", status: http.StatusBadRequest},
		{name: "invalid buffer", path: "/commands/notes:upper", body: "{", status: http.StatusBadRequest},
		{name: "plain failure", path: "/commands/notes:fail", status: http.StatusInternalServerError, msg: "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, handler, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			var body map[string]string
			decode(t, rec, &body)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, body["error"])
			} else {
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}

func TestServerFileMenu(t *testing.T) {
	h, _, handler := newTestServer(t)

	rec := do(t, handler, http.MethodPost, "/menus/file", `{"path":"a.md","click":"Touch"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items []struct {
			Title string `json:"title"`
			Icon  string `json:"icon"`
		} `json:"items"`
		Clicked string `json:"clicked"`
	}
	decode(t, rec, &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Touch", resp.Items[0].Title)
	assert.Equal(t, "hand", resp.Items[0].Icon)
	assert.Equal(t, "Touch", resp.Clicked)
	require.Len(t, h.Notices(), 1)
	assert.Equal(t, "touched a.md", h.Notices()[0].Text)

	rec = do(t, handler, http.MethodPost, "/menus/file", `{"path":"a.md","click":"Nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, handler, http.MethodPost, "/menus/file", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServerNoticesAndConsole(t *testing.T) {
	h, _, handler := newTestServer(t)
	h.Present(plugkit.PlainFragment("hello"), plugkit.PersistentToast)

	rec := do(t, handler, http.MethodGet, "/notices", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var notices []Notice
	decode(t, rec, &notices)
	require.Len(t, notices, 1)
	assert.True(t, notices[0].Persistent)

	rec = do(t, handler, http.MethodGet, "/console", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var lines []Line
	decode(t, rec, &lines)
	require.Len(t, lines, 1)
	assert.Equal(t, "ready", lines[0].Message)

	rec = do(t, NewRouter(h, nil), http.MethodGet, "/console", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerCodeBlock(t *testing.T) {
	_, _, handler := newTestServer(t)

	rec := do(t, handler, http.MethodPost, "/codeblocks/echo", `{"source":"x","sourcePath":"a.md"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp codeBlockResponse
	decode(t, rec, &resp)
	assert.Equal(t, "echo", resp.Language)
	assert.Equal(t, "a.md:x", resp.Output)

	rec = do(t, handler, http.MethodPost, "/codeblocks/none", `{"source":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
