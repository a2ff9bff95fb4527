package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/auth"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/forms"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/httpx"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

type loginPage struct {
	Email string
	Error string
}

// Login shows the form on GET and checks the credentials on POST.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		render(w, r, http.StatusOK, "login.html", tr(r, "login.title"), loginPage{})
		return
	}
	vals, err := forms.FromRequest(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	email := strings.TrimSpace(vals["email"])

	user, err := h.authenticate(email, vals["password"])
	if err != nil {
		if !errors.Is(err, errInvalidLogin) {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("login lookup failed")
		}
		if httpx.WantsHTML(r) {
			render(w, r, http.StatusUnauthorized, "login.html", tr(r, "login.title"), loginPage{Email: email, Error: "invalid_login"})
			return
		}
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_login", nil)
		return
	}

	auth.CreateSession(w, user.ID)
	zerolog.Ctx(r.Context()).Info().Uint("user_id", user.ID).Msg("login")
	if httpx.WantsHTML(r) {
		http.Redirect(w, r, "/interventions", http.StatusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

var errInvalidLogin = errors.New("invalid email or password")

func (h *AuthHandler) authenticate(email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, errInvalidLogin
	}
	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidLogin
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errInvalidLogin
	}
	return &user, nil
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	if httpx.WantsHTML(r) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
