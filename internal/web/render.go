package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	ferrors "github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
)

//go:embed templates/*.html
var templateFS embed.FS

const baseTemplate = "templates/base.html"

var funcs = template.FuncMap{
	"genderLabel": func(g family.Gender) string { return g.Label() },
	"date": func(d family.Date) string {
		if d.IsZero() {
			return "Unknown"
		}
		return d.Format("January 2, 2006")
	},
	"year": func(d family.Date) string { return d.YearString() },
	"lower": strings.ToLower,
}

// parsePages parses each page template together with the base layout.
func parsePages() (map[string]*template.Template, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == baseTemplate {
			continue
		}
		t, err := template.New(path.Base(name)).Funcs(funcs).ParseFS(templateFS, baseTemplate, name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[strings.TrimSuffix(path.Base(name), ".html")] = t
	}
	return pages, nil
}

// page is the data every template receives.
type page struct {
	Title string
	Data  any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	t, ok := s.pages[name]
	if !ok {
		s.logger.Error("missing template", "name", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", page{Title: title, Data: data}); err != nil {
		s.logger.Error("render template", "name", name, "path", r.URL.Path, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorView struct {
	Message  string
	RetryURL string
}

// fail renders the generic error screen. Every failure looks the same to the
// user; the cause only goes to the log.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.Warn(msg, "path", r.URL.Path, "err", err)

	status := http.StatusBadGateway
	if ferrors.Is(err, ferrors.ErrCodeInvalidID) {
		status = http.StatusBadRequest
	}
	s.render(w, r, status, "error", "Error", errorView{
		Message:  msg,
		RetryURL: retryURL(r),
	})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request, msg string) {
	s.render(w, r, http.StatusNotFound, "notfound", "Not found", errorView{Message: msg})
}

// retryURL reloads the current page bypassing cached service responses.
func retryURL(r *http.Request) string {
	u := *r.URL
	q := u.Query()
	q.Set("refresh", "1")
	u.RawQuery = q.Encode()
	return u.RequestURI()
}

func refresh(r *http.Request) bool {
	return r.URL.Query().Get("refresh") != ""
}

func seeOther(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(data)
}

// ageOf formats a person's age for display.
func ageOf(p family.Person, now time.Time) string {
	age, ok := p.AgeAt(now)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d", age)
}
