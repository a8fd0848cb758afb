package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/kislikjeka/finpanel/internal/platform/flash"
	"github.com/kislikjeka/finpanel/internal/transport/web/components"
	"github.com/kislikjeka/finpanel/pkg/logger"
)

// Renderer executes the page templates
type Renderer struct {
	templates *template.Template
	logger    *logger.Logger
}

// NewRenderer parses every templates/*.html file of fsys with the
// component functions available
func NewRenderer(fsys fs.FS, log *logger.Logger) (*Renderer, error) {
	funcs := components.FuncMap()
	funcs["monthName"] = func(m int) string {
		if m < 1 || m > 12 {
			return ""
		}
		return time.Month(m).String()
	}
	funcs["flashClass"] = func(level flash.Level) string {
		if level == flash.LevelError {
			return "bg-red-500/10 border-red-500 text-red-400"
		}
		return "bg-green-500/10 border-green-500 text-green-400"
	}

	tmpl, err := template.New("").Funcs(funcs).ParseFS(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Renderer{
		templates: tmpl,
		logger:    log.WithField("component", "renderer"),
	}, nil
}

// Render writes the named template. The page is buffered so a template
// error still produces a clean 500.
func (rr *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := rr.templates.ExecuteTemplate(&buf, name, data); err != nil {
		rr.logger.WithContext(r.Context()).Error("template execution failed", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
