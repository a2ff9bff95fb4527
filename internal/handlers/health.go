package handlers

import (
	"net/http"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/db"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/httpx"
	"gorm.io/gorm"
)

// Health answers as long as the process serves requests.
func Health(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready pings the database.
func Ready(conn *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context(), conn); err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "database_unavailable", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
	}
}
