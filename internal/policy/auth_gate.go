// Package policy binds the permission gate to the session user and the
// profiles stored in the database.
package policy

import (
	"context"
	"net/http"
	"time"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/auth"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/gate"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/httpx"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/i18n"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// DefaultCacheTTL is how long a resolved profile is reused.
const DefaultCacheTTL = 5 * time.Minute

// AuthGate is the application's single authorization point.
type AuthGate struct {
	Gate          *gate.Gate[uint]
	CacheResolver *gate.CachedResolver[uint]
}

func NewAuthGate(db *gorm.DB, cacheTTL time.Duration) *AuthGate {
	cached := gate.NewCachedResolver[uint](NewDBProfileResolver(db), cacheTTL)
	return &AuthGate{
		Gate:          gate.New[uint](cached),
		CacheResolver: cached,
	}
}

// Authorize checks the session user against resource:action.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resourceType string) error {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return gate.ErrUnauthorized
	}
	return ag.Gate.Authorize(ctx, userID, action, resourceType)
}

// CanProfile is used by templates to show or hide actions.
func (ag *AuthGate) CanProfile(ctx context.Context, action gate.Action, resourceType string) bool {
	return ag.Authorize(ctx, action, resourceType) == nil
}

// IsAdmin reports whether the session user holds "*:*".
func (ag *AuthGate) IsAdmin(ctx context.Context) bool {
	userID, ok := auth.UserIDFromContext(ctx)
	return ok && ag.Gate.IsSuperAdmin(ctx, userID)
}

// InvalidateUser drops the cached profile of one user, after reassignment.
func (ag *AuthGate) InvalidateUser(userID uint) {
	ag.CacheResolver.Invalidate(userID)
}

// InvalidateAll drops every cached profile, after a permission change.
func (ag *AuthGate) InvalidateAll() {
	ag.CacheResolver.InvalidateAll()
}

// RequirePermission returns middleware answering 401 for anonymous users and
// 403 when the profile lacks resource:action.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := ag.Authorize(r.Context(), action, resourceType); err != nil {
				deny(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin only lets "*:*" profiles through.
func (ag *AuthGate) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.UserIDFromContext(r.Context()); !ok {
				deny(w, r, gate.ErrUnauthorized)
				return
			}
			if !ag.IsAdmin(r.Context()) {
				deny(w, r, gate.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusForbidden, "forbidden"
	if err == gate.ErrUnauthorized {
		status, code = http.StatusUnauthorized, "unauthorized"
	}
	zerolog.Ctx(r.Context()).Debug().Str("path", r.URL.Path).Int("status", status).Msg("access denied")
	if httpx.WantsHTML(r) {
		if status == http.StatusUnauthorized {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		http.Error(w, i18n.T(i18n.LangFrom(r.Context()), code), status)
		return
	}
	httpx.JSONError(w, status, code, nil)
}
