// Package handlers serves the back-office screens and their JSON API.
// Every handler answers JSON unless the client prefers text/html.
package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/forms"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/httpx"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/i18n"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/services"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/validation"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/view"
	"github.com/rs/zerolog"
)

func lang(r *http.Request) string { return i18n.LangFrom(r.Context()) }

func tr(r *http.Request, code string) string { return i18n.T(lang(r), code) }

// queryInt reads a non-negative integer query parameter; anything else is 0.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func queryID(r *http.Request, key string) uint {
	id, err := forms.ParseID(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return id
}

func listParams(r *http.Request) services.ListParams {
	return services.ListParams{
		Q:     r.URL.Query().Get("q"),
		Page:  queryInt(r, "page"),
		Limit: queryInt(r, "limit"),
	}
}

// pathID parses {id}; on failure it writes a 404 and returns false.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := forms.ParseID(r.PathValue("id"))
	if err != nil {
		writeError(w, r, services.ErrNotFound)
		return 0, false
	}
	return id, true
}

// writeError maps service errors to status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if v, ok := services.AsValidation(err); ok {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if errors.Is(err, services.ErrNotFound) {
		if httpx.WantsHTML(r) {
			http.Error(w, tr(r, "not_found"), http.StatusNotFound)
			return
		}
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
}

// render writes an HTML page, logging template failures.
func render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	if err := view.Render(w, r, status, name, title, data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("template", name).Msg("render failed")
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// pageLinks returns the previous and next page URLs keeping the other
// query parameters.
func pageLinks(r *http.Request, page, limit int, total int64) (prev, next string) {
	link := func(p int) string {
		q := r.URL.Query()
		q.Set("page", strconv.Itoa(p))
		return r.URL.Path + "?" + q.Encode()
	}
	if page > 1 {
		prev = link(page - 1)
	}
	if int64(page*limit) < total {
		next = link(page + 1)
	}
	return prev, next
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// fieldError returns the violation code of name, if any.
func fieldError(v validation.Violations, name string) string {
	if v == nil {
		return ""
	}
	return v[name]
}

func itoa(n int) string { return strconv.Itoa(n) }

func idString(id *uint) string {
	if id == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*id), 10)
}
