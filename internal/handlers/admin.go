package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/forms"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/httpx"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/models"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/services"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/validation"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/view"
	"gorm.io/gorm"
)

// CacheInvalidator drops cached profiles after an admin change.
type CacheInvalidator interface {
	InvalidateUser(userID uint)
	InvalidateAll()
}

// AdminHandler manages profiles, their permissions and user assignment.
type AdminHandler struct {
	DB    *gorm.DB
	Cache CacheInvalidator
}

func NewAdminHandler(db *gorm.DB, cache CacheInvalidator) *AdminHandler {
	return &AdminHandler{DB: db, Cache: cache}
}

// Profiles lists every profile with its permissions and users.
func (h *AdminHandler) Profiles(w http.ResponseWriter, r *http.Request) {
	var profiles []models.Profile
	if err := h.DB.WithContext(r.Context()).Preload("Permissions").Preload("Users").Order("name").Find(&profiles).Error; err != nil {
		writeError(w, r, err)
		return
	}
	if httpx.WantsHTML(r) {
		render(w, r, http.StatusOK, "admin_profiles.html", tr(r, "nav.profiles"), map[string]any{"Profiles": profiles})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"profiles": profiles})
}

// CreateProfile adds a custom (non system) profile without permissions.
func (h *AdminHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	vals, err := forms.FromRequest(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	profile := models.Profile{
		Name:        strings.TrimSpace(vals["name"]),
		Description: strings.TrimSpace(vals["description"]),
	}
	v := make(validation.Violations)
	validation.Required("name", profile.Name, v)
	validation.MaxLen("name", profile.Name, 100, v)
	if !v.Empty() {
		writeError(w, r, &services.ValidationError{Violations: v})
		return
	}
	var n int64
	if err := h.DB.WithContext(r.Context()).Model(&models.Profile{}).Where("name = ?", profile.Name).Count(&n).Error; err != nil {
		writeError(w, r, err)
		return
	}
	if n > 0 {
		httpx.JSONError(w, http.StatusConflict, "name_already_exists", nil)
		return
	}
	if err := h.DB.WithContext(r.Context()).Create(&profile).Error; err != nil {
		writeError(w, r, err)
		return
	}
	if httpx.WantsHTML(r) {
		http.Redirect(w, r, "/admin/profiles/"+strconv.FormatUint(uint64(profile.ID), 10)+"/permissions", http.StatusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusCreated, profile)
}

// DeleteProfile refuses system profiles and profiles still assigned.
func (h *AdminHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r, "Users")
	if !ok {
		return
	}
	if profile.IsSystem {
		httpx.JSONError(w, http.StatusForbidden, "cannot_delete_system_profile", nil)
		return
	}
	if len(profile.Users) > 0 {
		httpx.JSONError(w, http.StatusConflict, "profile_has_users", nil)
		return
	}
	err := h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(profile).Association("Permissions").Clear(); err != nil {
			return err
		}
		return tx.Delete(profile).Error
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.Cache.InvalidateAll()
	if httpx.WantsHTML(r) {
		http.Redirect(w, r, "/admin/profiles", http.StatusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": profile.ID})
}

// EditPermissions shows the permission checkboxes grouped by resource.
func (h *AdminHandler) EditPermissions(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r, "Permissions")
	if !ok {
		return
	}
	var all []models.Permission
	if err := h.DB.WithContext(r.Context()).Order("resource_type, action").Find(&all).Error; err != nil {
		writeError(w, r, err)
		return
	}
	if !httpx.WantsHTML(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"profile": profile, "available": all})
		return
	}
	byResource := make(map[string][]models.Permission)
	for _, p := range all {
		byResource[p.ResourceType] = append(byResource[p.ResourceType], p)
	}
	current := make(map[uint]bool, len(profile.Permissions))
	for _, p := range profile.Permissions {
		current[p.ID] = true
	}
	render(w, r, http.StatusOK, "admin_permissions.html", profile.Name, map[string]any{
		"Profile":    profile,
		"ByResource": byResource,
		"Current":    current,
	})
}

// SavePermissions replaces the profile permissions with the posted ids.
// JSON bodies send {"permissions": [1, 2]}, forms repeat "permissions".
func (h *AdminHandler) SavePermissions(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}
	ids, err := permissionIDs(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	var perms []models.Permission
	if len(ids) > 0 {
		if err := h.DB.WithContext(r.Context()).Where("id IN ?", ids).Find(&perms).Error; err != nil {
			writeError(w, r, err)
			return
		}
	}
	if err := h.DB.WithContext(r.Context()).Model(profile).Association("Permissions").Replace(perms); err != nil {
		writeError(w, r, err)
		return
	}
	h.Cache.InvalidateAll()
	if httpx.WantsHTML(r) {
		http.Redirect(w, r, "/admin/profiles/"+r.PathValue("id")+"/permissions", http.StatusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"profile_id": profile.ID, "permissions": len(perms)})
}

func permissionIDs(r *http.Request) ([]uint, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Permissions []uint `json:"permissions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, err
		}
		return body.Permissions, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	raw := r.PostForm["permissions"]
	ids := make([]uint, 0, len(raw))
	for _, s := range raw {
		if id, err := forms.ParseID(s); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Users lists accounts with their profile.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	var users []models.User
	if err := h.DB.WithContext(r.Context()).Preload("Profile").Order("email").Find(&users).Error; err != nil {
		writeError(w, r, err)
		return
	}
	var profiles []models.Profile
	if err := h.DB.WithContext(r.Context()).Order("name").Find(&profiles).Error; err != nil {
		writeError(w, r, err)
		return
	}
	if !httpx.WantsHTML(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"users": users, "profiles": profiles})
		return
	}
	rows := make([]view.UserRow, len(users))
	for i, u := range users {
		rows[i] = view.UserRow{ID: u.ID, Email: u.Email, Name: u.Name}
		if u.ProfileID != nil {
			rows[i].ProfileID = *u.ProfileID
		}
	}
	render(w, r, http.StatusOK, "admin_users.html", tr(r, "nav.users"), map[string]any{"Users": rows, "Profiles": profiles})
}

// AssignProfile sets or clears (profile_id 0 or empty) a user's profile.
func (h *AdminHandler) AssignProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}
	vals, err := forms.FromRequest(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	var profileID *uint
	if s := strings.TrimSpace(vals["profile_id"]); s != "" && s != "0" {
		id, err := forms.ParseID(s)
		if err != nil {
			writeError(w, r, &services.ValidationError{Violations: validation.Violations{"profile_id": validation.CodeInvalidInteger}})
			return
		}
		var n int64
		if err := h.DB.WithContext(r.Context()).Model(&models.Profile{}).Where("id = ?", id).Count(&n).Error; err != nil {
			writeError(w, r, err)
			return
		}
		if n == 0 {
			writeError(w, r, &services.ValidationError{Violations: validation.Violations{"profile_id": validation.CodeNotFound}})
			return
		}
		profileID = &id
	}
	res := h.DB.WithContext(r.Context()).Model(&models.User{}).Where("id = ?", userID).Update("profile_id", profileID)
	if res.Error != nil {
		writeError(w, r, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		writeError(w, r, services.ErrNotFound)
		return
	}
	h.Cache.InvalidateUser(userID)
	if httpx.WantsHTML(r) {
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user_id": userID, "profile_id": profileID})
}

func (h *AdminHandler) profile(w http.ResponseWriter, r *http.Request, preload ...string) (*models.Profile, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	q := h.DB.WithContext(r.Context())
	for _, p := range preload {
		q = q.Preload(p)
	}
	var profile models.Profile
	if err := q.First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = services.ErrNotFound
		}
		writeError(w, r, err)
		return nil, false
	}
	return &profile, true
}
