package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/lcalzada-xor/wbrute/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/lcalzada-xor/wbrute/internal/core/ports"
)

// AuthHandler handles login and session endpoints
type AuthHandler struct {
	Service      ports.AuthService
	AuditService ports.AuditService
	// SecureCookie marks the session cookie HTTPS-only.
	SecureCookie bool
	SessionTTL   time.Duration
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service ports.AuthService, audit ports.AuditService) *AuthHandler {
	return &AuthHandler{
		Service:      service,
		AuditService: audit,
		SessionTTL:   24 * time.Hour,
	}
}

// HandleLogin exchanges credentials for a session cookie
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if !decodeJSON(w, r, &creds) {
		return
	}

	token, err := h.Service.Login(r.Context(), creds)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.SessionTTL.Seconds()),
	})

	if h.AuditService != nil {
		ctx := domain.ContextWithClientIP(r.Context(), middleware.ClientIP(r))
		if user, err := h.Service.ValidateToken(ctx, token); err == nil {
			ctx = domain.ContextWithUser(ctx, user)
		}
		h.AuditService.Log(ctx, domain.ActionLogin, creds.Username, "")
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_in", "token": token})
}

// HandleLogout drops the session
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.TokenFromRequest(r); token != "" {
		if h.AuditService != nil {
			if user, err := h.Service.ValidateToken(r.Context(), token); err == nil {
				ctx := domain.ContextWithUser(r.Context(), user)
				ctx = domain.ContextWithClientIP(ctx, middleware.ClientIP(r))
				h.AuditService.Log(ctx, domain.ActionLogout, user.Username, "")
			}
		}
		h.Service.Logout(r.Context(), token)
	}

	http.SetCookie(w, &http.Cookie{
		Name:   middleware.SessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// HandleMe returns the authenticated user
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := domain.UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
}

// HandleListUsers lists operator accounts, optionally filtered with ?role=
func (h *AuthHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	role := domain.Role(r.URL.Query().Get("role"))
	users, err := h.Service.ListUsers(r.Context(), role)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRole) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}
