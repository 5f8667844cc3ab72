package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/wbrute/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()

	// Rate limiters
	loginLimiter := middleware.NewRateLimiter(5, 1*time.Minute)  // 5 login attempts per minute
	attackLimiter := middleware.NewRateLimiter(10, 1*time.Minute) // 10 attack starts per minute

	// Public API (with rate limiting)
	r.Handle("/api/login", middleware.RateLimitMiddleware(loginLimiter)(http.HandlerFunc(s.AuthHandler.HandleLogin))).Methods(http.MethodPost)
	r.HandleFunc("/api/logout", s.AuthHandler.HandleLogout).Methods(http.MethodPost)

	// Protected API
	auth := middleware.AuthMiddleware(s.AuthService)
	protect := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}

	// RBAC Middleware Helper (Operator Level)
	requireOperator := middleware.RoleMiddleware(domain.RoleOperator)
	protectOp := func(h http.HandlerFunc) http.Handler {
		return auth(requireOperator(h))
	}
	requireAdmin := middleware.RoleMiddleware(domain.RoleAdmin)
	protectAdmin := func(h http.HandlerFunc) http.Handler {
		return auth(requireAdmin(h))
	}

	r.Handle("/ws", protect(s.WSManager.HandleWebSocket))
	r.Handle("/api/me", protect(s.AuthHandler.HandleMe)).Methods(http.MethodGet)

	// Adapters and target discovery
	r.Handle("/api/adapters", protect(s.AdapterHandler.HandleList)).Methods(http.MethodGet)
	r.Handle("/api/adapters/{id}/scan", protectOp(s.AdapterHandler.HandleScan)).Methods(http.MethodPost)
	r.Handle("/api/captures/import", protectOp(s.AdapterHandler.HandleImport)).Methods(http.MethodPost)

	// Attack lifecycle
	r.Handle("/api/attack/start", middleware.RateLimitMiddleware(attackLimiter)(protectOp(s.AttackHandler.HandleStart))).Methods(http.MethodPost)
	r.Handle("/api/attack/pause", protectOp(s.AttackHandler.HandlePause)).Methods(http.MethodPost)
	r.Handle("/api/attack/resume", protectOp(s.AttackHandler.HandleResume)).Methods(http.MethodPost)
	r.Handle("/api/attack/cancel", protectOp(s.AttackHandler.HandleCancel)).Methods(http.MethodPost)
	r.Handle("/api/attack/status", protect(s.AttackHandler.HandleStatus)).Methods(http.MethodGet)
	r.Handle("/api/attack/presets", protect(s.AttackHandler.HandlePresets)).Methods(http.MethodGet)

	// History and reports
	r.Handle("/api/attacks", protect(s.HistoryHandler.HandleList)).Methods(http.MethodGet)
	r.Handle("/api/attacks/{id}", protect(s.HistoryHandler.HandleGet)).Methods(http.MethodGet)
	r.Handle("/api/attacks/{id}/report", protectOp(s.HistoryHandler.HandleReport)).Methods(http.MethodGet)

	// Audit Logs
	r.Handle("/api/audit-logs", protectAdmin(s.AuditHandler.HandleGetLogs)).Methods(http.MethodGet)
	r.Handle("/api/users", protectAdmin(s.AuthHandler.HandleListUsers)).Methods(http.MethodGet)

	// Metrics endpoint (protected - requires authentication)
	r.Handle("/metrics", protect(promhttp.Handler().ServeHTTP)).Methods(http.MethodGet)

	return r
}
