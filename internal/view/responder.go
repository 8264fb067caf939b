package view

import (
	"log/slog"
	"net/http"
)

// Responder writes rendered pages. Templates render into a buffer first so a
// failing template produces a clean 500 instead of a truncated page.
type Responder struct {
	engine *Engine
	logger *slog.Logger
}

// NewResponder wires an engine and logger together.
func NewResponder(engine *Engine, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{engine: engine, logger: logger}
}

// Render writes name with the given status.
func (r *Responder) Render(w http.ResponseWriter, status int, name string, data TemplateData) {
	body, err := r.engine.RenderBytes(name, data)
	if err != nil {
		r.logger.Error("render template", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// NotFound renders the not-found page for a missing record.
func (r *Responder) NotFound(w http.ResponseWriter, data TemplateData, page NotFoundPage) {
	if data.Title == "" {
		data.Title = "Not found"
	}
	data.Data = page
	r.Render(w, http.StatusNotFound, "pages/not_found.html", data)
}

// ServerError renders the generic error page.
func (r *Responder) ServerError(w http.ResponseWriter, data TemplateData, message string) {
	if message == "" {
		message = "Something went wrong"
	}
	data.Title = "Error"
	data.Data = message
	r.Render(w, http.StatusInternalServerError, "pages/error.html", data)
}
