package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ha1tch/deluxecanvas/internal/canvas"
	"github.com/ha1tch/deluxecanvas/internal/editor"
)

type ctxKey struct{}

// withEditor resolves {id} to a mounted editor or answers 404.
func (s *Server) withEditor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ed, err := s.sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, ed)))
	})
}

func editorFrom(r *http.Request) *editor.Editor {
	return r.Context().Value(ctxKey{}).(*editor.Editor)
}

type sessionResponse struct {
	ID    string       `json:"id"`
	State editor.State `json:"state"`
}

type actionResponse struct {
	Added  *bool        `json:"added,omitempty"`
	Undone *bool        `json:"undone,omitempty"`
	State  editor.State `json:"state"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	id, ed, err := s.sessions.Create()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/sessions/"+id)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id, State: ed.State()})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, actionResponse{State: editorFrom(r).State()})
}

func (s *Server) handleShape(w http.ResponseWriter, r *http.Request) {
	ed := editorFrom(r)
	added, err := ed.AddShape(chi.URLParam(r, "kind"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Added: &added, State: ed.State()})
}

type textRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	// The body is optional; an empty one inserts the placeholder.
	if !s.decodeJSON(w, r, &req, true) {
		return
	}
	ed := editorFrom(r)
	if err := ed.AddText(req.Text); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{State: ed.State()})
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "upload exceeds limit"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file field: " + err.Error()})
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		writeJSON(w, http.StatusUnsupportedMediaType, errorResponse{Error: "expected an image, got " + ct})
		return
	}

	ed := editorFrom(r)
	if err := ed.AddImage(file); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{State: ed.State()})
}

type strokeRequest struct {
	Points []canvas.Point `json:"points"`
}

func (s *Server) handleStroke(w http.ResponseWriter, r *http.Request) {
	var req strokeRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	ed := editorFrom(r)
	if err := ed.AddStroke(req.Points); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{State: ed.State()})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	ed := editorFrom(r)
	if err := ed.Clear(); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{State: ed.State()})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	ed := editorFrom(r)
	undone, err := ed.Undo()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Undone: &undone, State: ed.State()})
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	ed := editorFrom(r)
	var err error
	switch chi.URLParam(r, "tool") {
	case "pencil":
		_, err = ed.TogglePencil()
	case "brush":
		_, err = ed.ToggleBrush()
	default:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown tool"})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{State: ed.State()})
}

type brushRequest struct {
	Color string `json:"color"`
}

func (s *Server) handleBrush(w http.ResponseWriter, r *http.Request) {
	var req brushRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	ed := editorFrom(r)
	if err := ed.SetBrushColor(req.Color); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{State: ed.State()})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	data, err := editorFrom(r).Export(format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	name, ctype := "canvas.png", "image/png"
	if format == canvas.FormatJPEG || format == "jpg" {
		name, ctype = "canvas.jpg", "image/jpeg"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	data, err := editorFrom(r).Export(canvas.FormatPNG)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// decodeJSON reads a size-limited JSON body into v, answering 413 or 400 on
// failure. An empty body is accepted when optional is set.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes())
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body exceeds limit"})
		return false
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
	return false
}

type errorResponse struct {
	Error string `json:"error"`
}

// errorStatus maps domain errors onto HTTP status codes.
func errorStatus(err error) int {
	var decodeErr *canvas.DecodeError
	var exportErr *canvas.ExportError
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, canvas.ErrClosed):
		return http.StatusGone
	case errors.Is(err, canvas.ErrInvalidColor), errors.Is(err, editor.ErrEmptyStroke):
		return http.StatusBadRequest
	case errors.Is(err, editor.ErrNotDrawing):
		return http.StatusConflict
	case errors.As(err, &decodeErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &exportErr):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
