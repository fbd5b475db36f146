// Package web holds the embedded HTML templates and the gin renderer built from them.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/gin-gonic/gin/render"

	"github.com/noah-isme/student-complaints/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names accepted by the renderer.
const (
	PageHome            = "home"
	PageLogin           = "login"
	PageSignup          = "signup"
	PageSubmitComplaint = "submit_complaint"
	PageMyComplaint     = "my_complaint"
	PageSearchComplaint = "search_complaint"
	PageAdminLogin      = "admin_login"
	PageAdminDashboard  = "admin_dash"
	PageError           = "error"
)

var pages = []string{
	PageHome, PageLogin, PageSignup, PageSubmitComplaint, PageMyComplaint,
	PageSearchComplaint, PageAdminLogin, PageAdminDashboard, PageError,
}

var funcs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("2006-01-02 15:04")
	},
}

// View is the data every page receives. Data carries the page-specific payload.
type View struct {
	Username      string
	AdminLoggedIn bool
	Flashes       []session.Flash
	Error         string
	Data          any
}

// NewView builds a view for st, consuming its pending flashes.
func NewView(st *session.State, data any) View {
	v := View{Data: data}
	if st != nil {
		v.Username = st.Username
		v.AdminLoggedIn = st.AdminLoggedIn
		v.Flashes = st.ConsumeFlashes()
	}
	return v
}

// WithError sets an inline error shown above the page content.
func (v View) WithError(msg string) View {
	v.Error = msg
	return v
}

// Renderer implements gin's render.HTMLRender with one template set per page.
type Renderer struct {
	templates map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

// NewRenderer parses every page together with the shared layout and partials.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/complaint_table.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		r.templates[page] = tmpl
	}
	return r, nil
}

// Instance returns the render for page name. Unknown names fall back to the error page.
func (r *Renderer) Instance(name string, data any) render.Render {
	tmpl, ok := r.templates[name]
	if !ok {
		tmpl = r.templates[PageError]
	}
	return render.HTML{Template: tmpl, Name: "layout", Data: data}
}
