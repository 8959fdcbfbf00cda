// Package view renders the board's HTML pages.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/labstack/echo/v4"

	"board/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names accepted by Renderer.Render.
const (
	IndexPage  = "index.html"
	LoginPage  = "login.html"
	VerifyPage = "verify.html"
	PostPage   = "post.html"
	ErrorPage  = "error.html"
)

var pages = []string{IndexPage, LoginPage, VerifyPage, PostPage, ErrorPage}

// Base carries what every page needs to know about the viewer.
type Base struct {
	Title     string
	Viewer    *model.User
	UTCOffset float64
}

// IndexData is rendered by the front page.
type IndexData struct {
	Base
	Posts []model.PostWithUsername
}

// VerifyData is rendered by the code entry page.
type VerifyData struct {
	Base
	UserID uint
}

// PostData is rendered by the single post page.
type PostData struct {
	Base
	Post *model.PostWithUsername
}

// ErrorData is rendered by the error page.
type ErrorData struct {
	Base
	Status  int
	Message string
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	templates map[string]*template.Template
}

var _ echo.Renderer = (*Renderer)(nil)

// New parses every page together with the shared layout.
func New() (*Renderer, error) {
	funcs := sprig.HtmlFuncMap()
	funcs["localTime"] = LocalTime
	funcs["offsetLabel"] = OffsetLabel
	funcs["offsetHour"] = offsetHour
	funcs["offsetMinute"] = offsetMinute

	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.templates[page] = tmpl
	}
	return r, nil
}

// Render writes the named page.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

// Zone returns a fixed zone for a UTC offset in hours.
func Zone(offset float64) *time.Location {
	return time.FixedZone(OffsetLabel(offset), int(math.Round(offset*3600)))
}

// LocalTime formats t in the viewer's zone.
func LocalTime(t time.Time, offset float64) string {
	return t.In(Zone(offset)).Format("01/02/2006, 03:04:05 PM MST")
}

// OffsetLabel renders an offset as UTC+hh:mm.
func OffsetLabel(offset float64) string {
	sign := "+"
	if offset < 0 {
		sign = "-"
	}
	minutes := int(math.Round(math.Abs(offset) * 60))
	return fmt.Sprintf("UTC%s%02d:%02d", sign, minutes/60, minutes%60)
}

func offsetHour(offset float64) int {
	return int(math.Trunc(offset))
}

func offsetMinute(offset float64) int {
	return int(math.Round(math.Abs(offset-math.Trunc(offset)) * 60))
}
