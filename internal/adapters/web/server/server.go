package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/lcalzada-xor/wbrute/internal/adapters/web/handlers"
	"github.com/lcalzada-xor/wbrute/internal/adapters/web/websocket"
	"github.com/lcalzada-xor/wbrute/internal/core/ports"
	"github.com/lcalzada-xor/wbrute/internal/core/services/operations"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Dependencies groups the services exposed over HTTP.
type Dependencies struct {
	Operations     *operations.Service
	Discovery      ports.DiscoveryService
	History        ports.HistoryService
	Reporter       ports.AttackReporter
	AuthService    ports.AuthService
	AuditService   ports.AuditService
	AllowedOrigins []string
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	Addr        string
	AuthService ports.AuthService
	WSManager   *websocket.WSManager

	AttackHandler  *handlers.AttackHandler
	AdapterHandler *handlers.AdapterHandler
	HistoryHandler *handlers.HistoryHandler
	AuditHandler   *handlers.AuditHandler
	AuthHandler    *handlers.AuthHandler
	srv            *http.Server
}

// NewServer creates a new web server.
func NewServer(addr string, deps Dependencies) *Server {
	return &Server{
		Addr:        addr,
		AuthService: deps.AuthService,
		WSManager:   websocket.NewWSManager(deps.Operations, deps.AllowedOrigins),

		AttackHandler:  handlers.NewAttackHandler(deps.Operations),
		AdapterHandler: handlers.NewAdapterHandler(deps.Discovery),
		HistoryHandler: handlers.NewHistoryHandler(deps.History, deps.Reporter, deps.AuditService),
		AuditHandler:   handlers.NewAuditHandler(deps.AuditService),
		AuthHandler:    handlers.NewAuthHandler(deps.AuthService, deps.AuditService),
	}
}

// Handler returns the instrumented router.
func (s *Server) Handler() http.Handler {
	// "wbrute-server" is the name of the operation (span)
	return otelhttp.NewHandler(SetupRoutes(s), "wbrute-server")
}

// Run starts the server and the event broadcaster.
func (s *Server) Run(ctx context.Context) error {
	s.WSManager.Start(ctx)

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown implementation
	go func() {
		<-ctx.Done()
		log.Println("Web Server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Web Server shutdown error: %v", err)
		}
	}()

	log.Printf("Web server listening on %s", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
