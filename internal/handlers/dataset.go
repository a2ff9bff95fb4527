package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/config"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/dataset"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/httpx"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/view"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// maxUpload bounds an imported file.
const maxUpload = 32 << 20

// DatasetHandler exports and imports one resource as CSV or XLSX.
type DatasetHandler struct {
	db *gorm.DB
}

func NewDatasetHandler(db *gorm.DB) *DatasetHandler {
	return &DatasetHandler{db: db}
}

// Export streams every record of the named resource.
func (h *DatasetHandler) Export(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := dataset.Lookup(name)
		if err != nil {
			writeError(w, r, err)
			return
		}
		f, err := dataset.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_format", nil)
			return
		}
		w.Header().Set("Content-Type", f.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, name, f))
		if err := dataset.Export(r.Context(), h.db, res, f, w); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Str("resource", name).Msg("export failed")
		}
	}
}

// ImportForm shows the upload page.
func (h *DatasetHandler) ImportForm(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, http.StatusOK, "import.html", tr(r, "action.import"), view.ImportPage{BasePath: "/" + name})
	}
}

// Import loads a multipart "file" upload or the raw request body. The
// format comes from ?format=, the form, or the file extension.
func (h *DatasetHandler) Import(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := dataset.Lookup(name)
		if err != nil {
			writeError(w, r, err)
			return
		}
		body, filename, err := upload(w, r)
		if err != nil {
			h.importError(w, r, name, "invalid_upload", err)
			return
		}
		defer body.Close()

		// raw bodies are never parsed as forms
		formValue := func(key string) string {
			if filename == "" {
				return ""
			}
			return r.FormValue(key)
		}
		format := r.URL.Query().Get("format")
		if format == "" {
			format = formValue("format")
		}
		if format == "" && filename != "" {
			format = strings.TrimPrefix(filepath.Ext(filename), ".")
		}
		f, err := dataset.ParseFormat(format)
		if err != nil {
			h.importError(w, r, name, "invalid_format", err)
			return
		}
		dryRun := config.ParseBool(r.URL.Query().Get("dry_run")) || config.ParseBool(formValue("dry_run"))

		result, err := dataset.Import(r.Context(), h.db, res, f, body, dryRun)
		if err != nil {
			if errors.Is(err, dataset.ErrMissingHeader) {
				h.importError(w, r, name, "missing_header", err)
				return
			}
			writeError(w, r, err)
			return
		}
		status := http.StatusOK
		if result.HasErrors() {
			status = http.StatusUnprocessableEntity
		}
		zerolog.Ctx(r.Context()).Info().Str("resource", name).Bool("dry_run", dryRun).
			Bool("committed", result.Committed).Int("rows", result.Total).Msg("import")
		if httpx.WantsHTML(r) {
			render(w, r, status, "import.html", tr(r, "action.import"), view.ImportPage{BasePath: "/" + name, Result: result})
			return
		}
		httpx.JSON(w, status, result)
	}
}

func (h *DatasetHandler) importError(w http.ResponseWriter, r *http.Request, name, code string, err error) {
	if httpx.WantsHTML(r) {
		render(w, r, http.StatusBadRequest, "import.html", tr(r, "action.import"), view.ImportPage{BasePath: "/" + name, Error: err.Error()})
		return
	}
	httpx.JSONError(w, http.StatusBadRequest, code, err.Error())
}

func upload(w http.ResponseWriter, r *http.Request) (io.ReadCloser, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, hdr, err := r.FormFile("file")
		if err != nil {
			return nil, "", err
		}
		return file, hdr.Filename, nil
	}
	return r.Body, "", nil
}
