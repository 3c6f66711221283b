package devhost

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"

	"github.com/GoCodeAlone/plugkit"
	"github.com/GoCodeAlone/plugkit/exceptions"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NewRouter exposes h over HTTP:
//
//	GET  /healthz            liveness
//	GET  /commands           registered commands
//	POST /commands/{id}      run a command, editor commands take a buffer
//	POST /menus/file         open a file menu, optionally clicking an item
//	GET  /notices            recorded toasts
//	GET  /console            recorded console lines (when console is set)
//	POST /codeblocks/{lang}  render a code block
func NewRouter(h *Host, console *Recorder) http.Handler {
	s := &server{host: h, console: console}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/commands", func(r chi.Router) {
		r.Get("/", s.handleListCommands)
		r.Post("/{id}", s.handleExecuteCommand)
	})
	r.Post("/menus/file", s.handleFileMenu)
	r.Get("/notices", s.handleNotices)
	r.Get("/console", s.handleConsole)
	r.Post("/codeblocks/{lang}", s.handleCodeBlock)
	return r
}

type server struct {
	host    *Host
	console *Recorder
}

type bufferRequest struct {
	Path      string `json:"path"`
	Content   string `json:"content"`
	Selection string `json:"selection"`
}

type commandResponse struct {
	ID      string `json:"id"`
	Content string `json:"content,omitempty"`
}

type fileMenuRequest struct {
	Path     string `json:"path"`
	IsFolder bool   `json:"isFolder"`
	Click    string `json:"click,omitempty"`
}

type fileMenuResponse struct {
	Items   []*MenuItem `json:"items"`
	Clicked string      `json:"clicked,omitempty"`
}

type codeBlockRequest struct {
	Source     string `json:"source"`
	SourcePath string `json:"sourcePath"`
}

type codeBlockResponse struct {
	Language string `json:"language"`
	Output   string `json:"output"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"plugin":    s.host.PluginID(),
		"commands":  len(s.host.Commands()),
		"intervals": len(s.host.Intervals()),
	})
}

func (s *server) handleListCommands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.host.Commands())
}

func (s *server) handleExecuteCommand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var buffer *Buffer
	if r.ContentLength != 0 {
		var req bufferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, exceptions.BadRequest.Wrap(err, "invalid editor buffer"))
			return
		}
		buffer = NewBuffer(req.Path, req.Content, req.Selection)
	}

	if err := s.host.ExecuteCommand(r.Context(), id, buffer); err != nil {
		writeError(w, err)
		return
	}
	resp := commandResponse{ID: id}
	if buffer != nil {
		resp.Content = buffer.Text()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleFileMenu(w http.ResponseWriter, r *http.Request) {
	var req fileMenuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, exceptions.BadRequest.Wrap(err, "invalid file"))
		return
	}
	if req.Path == "" {
		writeError(w, exceptions.BadRequest.New("path is required"))
		return
	}

	menu := s.host.OpenFileMenu(plugkit.File{Path: req.Path, IsFolder: req.IsFolder})
	resp := fileMenuResponse{Items: menu.Items()}
	if req.Click != "" {
		if err := menu.Click(r.Context(), req.Click); err != nil {
			writeError(w, err)
			return
		}
		resp.Clicked = req.Click
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleNotices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.host.Notices())
}

func (s *server) handleConsole(w http.ResponseWriter, r *http.Request) {
	if s.console == nil {
		writeError(w, exceptions.NotFound.New("console is not recorded"))
		return
	}
	writeJSON(w, http.StatusOK, s.console.Lines())
}

func (s *server) handleCodeBlock(w http.ResponseWriter, r *http.Request) {
	lang := chi.URLParam(r, "lang")
	var req codeBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, exceptions.BadRequest.Wrap(err, "invalid code block"))
		return
	}
	out, err := s.host.RenderCodeBlock(r.Context(), lang, req.Source, req.SourcePath)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, codeBlockResponse{Language: lang, Output: out})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, exceptions.StatusCode(err), map[string]string{"error": err.Error()})
}
