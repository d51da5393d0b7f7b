// Package view renders the dashboard's HTML pages.
package view

import (
	"embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/prbusiness/dashboard/internal/core/domain"
)

// Template names.
const (
	PageLogin     = "login"
	PageLoading   = "loading"
	PageShell     = "shell"
	PageFailure   = "failure"
	PageForbidden = "forbidden"
)

//go:embed templates/*.html
var templateFS embed.FS

// Section is the content area of a table page.
type Section struct {
	Path  string
	Label string
	// Dashboard is set on /dashboard, which lists the visible entries.
	Dashboard bool
}

// Page is the data every template receives.
type Page struct {
	Lang    string
	Msg     Messages
	Title   string
	User    *domain.User
	Nav     Nav
	Section Section
	Banner  string
	// PhoneNumber refills the login form after a failed attempt.
	PhoneNumber string
	// RefreshAfter is the loading page's meta-refresh delay in seconds.
	RefreshAfter int
	Status       int
}

// NewPage returns a Page localized to locale.
func NewPage(locale, titleKey string) Page {
	msg := Catalog(locale)
	return Page{Lang: locale, Msg: msg, Title: msg.T(titleKey)}
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	t, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: t}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
