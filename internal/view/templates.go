package view

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/fleetops/fleet-console/internal/nav"
	"github.com/fleetops/fleet-console/internal/shared"
	"github.com/fleetops/fleet-console/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	User        shared.User
	Sidebar     []nav.Section
	Data        any
}

// NewTemplateData fills the layout fields for the request: the session
// user, the pending flash and the sidebar for the current path.
func NewTemplateData(r *http.Request, title, csrfToken string, data any) TemplateData {
	sess := shared.SessionFromContext(r.Context())
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	user := sess.User()
	return TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		User:        user,
		Sidebar:     nav.Sidebar(user, r.URL.Path),
		Data:        data,
	}
}

// ReplaceFlash shows flash on this render. A flash already popped from the
// session is queued again for the next page.
func (d *TemplateData) ReplaceFlash(r *http.Request, flash *shared.FlashMessage) {
	if flash == nil {
		return
	}
	if d.Flash != nil {
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			sess.AddFlash(*d.Flash)
		}
	}
	d.Flash = flash
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"add":      func(a, b int) int { return a + b },
		"initials": initials,
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates,
		"templates/layouts/*.html",
		"templates/partials/*.html",
		"templates/pages/*.html",
		"templates/pages/lov/*.html",
	)
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}

// initials returns up to two upper-cased leading letters of name.
func initials(name string) string {
	var b strings.Builder
	count := 0
	for _, f := range strings.Fields(name) {
		if count == 2 {
			break
		}
		r, _ := utf8.DecodeRuneInString(f)
		b.WriteString(strings.ToUpper(string(r)))
		count++
	}
	return b.String()
}
