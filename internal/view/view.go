// Package view renders the embedded HTML templates of the back-office.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/auth"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/billing"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	siteTitle = "Interventi - Finalmente Casa"

	// permission resolvers are set by the host app so templates can hide
	// actions the user may not perform
	canProfileResolver func(*http.Request, string, string) bool
	isAdminResolver    func(*http.Request) bool

	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}
)

func SetSiteTitle(title string) {
	if title != "" {
		siteTitle = title
	}
}

// SetCanProfileResolver sets the callback behind the "can" template func.
func SetCanProfileResolver(f func(*http.Request, string, string) bool) {
	canProfileResolver = f
}

// SetIsAdminResolver sets the callback behind the "isAdmin" template func.
func SetIsAdminResolver(f func(*http.Request) bool) {
	isAdminResolver = f
}

// Funcs returns the template helpers bound to r.
func Funcs(r *http.Request) template.FuncMap {
	lang := i18n.Default
	if r != nil {
		lang = i18n.LangFrom(r.Context())
	}
	return template.FuncMap{
		"t":    func(code string) string { return i18n.T(lang, code) },
		"lang": func() string { return lang },
		"can": func(resource, action string) bool {
			return r != nil && canProfileResolver != nil && canProfileResolver(r, resource, action)
		},
		"isAdmin": func() bool {
			return r != nil && isAdminResolver != nil && isAdminResolver(r)
		},
		"euro":      billing.Euro,
		"siteTitle": func() string { return siteTitle },
		"year":      func() int { return time.Now().Year() },
		// dict builds a map for sub-templates: {{ template "x" (dict "K" v) }}
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				if key, ok := values[i].(string); ok {
					m[key] = values[i+1]
				}
			}
			return m
		},
	}
}

// parse returns the page template wrapped in the layout, parsed once.
func parse(name string) (*template.Template, error) {
	tplCache.RLock()
	t, ok := tplCache.m[name]
	tplCache.RUnlock()
	if ok {
		return t, nil
	}
	t, err := template.New("layout.html").Funcs(Funcs(nil)).
		ParseFS(templateFS, "templates/layout.html", "templates/fields.html", "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	tplCache.Lock()
	tplCache.m[name] = t
	tplCache.Unlock()
	return t, nil
}

// Page is the data every template receives. Data holds the page specific
// view model.
type Page struct {
	Title      string
	IsLoggedIn bool
	Lang       string
	Data       any
}

// Render executes the named page inside the layout with the given status.
func Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) error {
	base, err := parse(name)
	if err != nil {
		return err
	}
	t, err := base.Clone()
	if err != nil {
		return err
	}
	t.Funcs(Funcs(r))

	_, loggedIn := auth.UserIDFromContext(r.Context())
	page := Page{Title: title, IsLoggedIn: loggedIn, Lang: i18n.LangFrom(r.Context()), Data: data}

	var buf bytes.Buffer
	if err := t.Execute(&buf, page); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}
