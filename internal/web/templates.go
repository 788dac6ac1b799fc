package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/erazemk/crudapp/internal/model"
	webembed "github.com/erazemk/crudapp/web"
)

// Templates holds parsed HTML templates, one per page, each combined with
// the shared layout.
type Templates struct {
	templates map[string]*template.Template
	log       *zap.Logger
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"formatTime": func(t time.Time) string {
			return t.Local().Format("2006-01-02 15:04")
		},
	}
}

var pages = []string{
	"home.html",
	"login.html",
	"register.html",
	"items.html",
	"item_form.html",
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates(log *zap.Logger) (*Templates, error) {
	return loadTemplates(webembed.TemplatesFS(), log)
}

func loadTemplates(tfs fs.FS, log *zap.Logger) (*Templates, error) {
	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template), log: log}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl, err := template.New(page).Funcs(FuncMap()).Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		if tmpl, err = tmpl.Parse(string(pageBytes)); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a page with the given status. Output is buffered so a
// template error never leaves a half-written page.
func (ts *Templates) Render(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		ts.log.Error("template not found", zap.String("template", name))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		ts.log.Error("failed to render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title     string
	User      *model.User
	CSRFField template.HTML
	Error     string
	Success   string
}
