package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/lcalzada-xor/wbrute/internal/adapters/candidates"
	"github.com/lcalzada-xor/wbrute/internal/adapters/capture"
	"github.com/lcalzada-xor/wbrute/internal/adapters/reporting"
	"github.com/lcalzada-xor/wbrute/internal/adapters/storage"
	webserver "github.com/lcalzada-xor/wbrute/internal/adapters/web/server"
	"github.com/lcalzada-xor/wbrute/internal/adapters/wireless/nmcli"
	"github.com/lcalzada-xor/wbrute/internal/adapters/wireless/simulated"
	"github.com/lcalzada-xor/wbrute/internal/config"
	"github.com/lcalzada-xor/wbrute/internal/core/ports"
	"github.com/lcalzada-xor/wbrute/internal/core/services/audit"
	"github.com/lcalzada-xor/wbrute/internal/core/services/auth"
	"github.com/lcalzada-xor/wbrute/internal/core/services/bruteforce"
	"github.com/lcalzada-xor/wbrute/internal/core/services/discovery"
	"github.com/lcalzada-xor/wbrute/internal/core/services/history"
	"github.com/lcalzada-xor/wbrute/internal/core/services/operations"
	reportingsvc "github.com/lcalzada-xor/wbrute/internal/core/services/reporting"
	"github.com/lcalzada-xor/wbrute/internal/telemetry"
)

// Application holds the core components of the application.
// It acts as the Facade for the entire system, orchestrating services and infrastructure.
type Application struct {
	Config       *config.Config
	Controller   *bruteforce.Controller
	Operations   *operations.Service
	Discovery    *discovery.Service
	History      *history.Service
	AuthService  *auth.AuthService
	AuditService *audit.AuditService
	WebServer    *webserver.Server

	store     *storage.SQLiteAdapter
	wordlists *candidates.WordlistDB
	provider  ports.AdapterProvider
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
	}

	if err := app.bootstrap(); err != nil {
		app.Close()
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}

	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	// 1. Foundation & Infrastructure
	telemetry.InitMetrics()

	if err := app.initStorage(); err != nil {
		return err
	}
	if err := app.initWordlists(); err != nil {
		return err
	}

	// 2. Wireless Backend
	if err := app.initProvider(); err != nil {
		return err
	}

	// 3. Domain Services
	app.AuditService = audit.NewAuditService(app.store)
	app.AuthService = auth.NewAuthService(app.store)
	if err := app.ensureDefaultAdmin(); err != nil {
		log.Printf("Warning: could not ensure default admin: %v", err)
	}

	app.History = history.NewService(app.store, app.AuditService)
	app.Discovery = discovery.NewService(app.provider, capture.NewPcapImporter(), app.AuditService, app.Config.ScanSettle)

	// 4. Attack Core
	coordinator := bruteforce.NewCoordinator(app.provider, bruteforce.WorkerConfig{
		PollInterval:   app.Config.PollInterval,
		ConnectTimeout: app.Config.ConnectTimeout,
		SettleDelay:    app.Config.SettleDelay,
	})
	app.Controller = bruteforce.NewController(coordinator, bruteforce.NewBroker(256))
	app.Controller.OnFinish(app.History.Record)

	app.Operations = operations.NewService(
		app.Controller,
		app.Discovery,
		candidates.NewResolver(app.wordlists),
		app.AuditService,
		app.Config.Presets,
	)

	// 5. Servers
	app.WebServer = webserver.NewServer(app.Config.Addr, webserver.Dependencies{
		Operations:     app.Operations,
		Discovery:      app.Discovery,
		History:        app.History,
		Reporter:       reporting.NewPDFExporter(reportingsvc.NewRecommendationEngine()),
		AuthService:    app.AuthService,
		AuditService:   app.AuditService,
		AllowedOrigins: app.Config.AllowedOrigins,
	})

	return nil
}

func (app *Application) initStorage() error {
	if err := os.MkdirAll(filepath.Dir(app.Config.DBPath), 0755); err != nil {
		return fmt.Errorf("failed to create DB directory: %w", err)
	}

	store, err := storage.NewSQLiteAdapter(app.Config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to init system storage: %w", err)
	}
	app.store = store
	return nil
}

func (app *Application) initWordlists() error {
	if app.Config.WordlistDB == "" {
		return nil
	}
	db, err := candidates.OpenWordlistDB(app.Config.WordlistDB)
	if err != nil {
		return fmt.Errorf("failed to open wordlist store: %w", err)
	}
	app.wordlists = db
	return nil
}

func (app *Application) initProvider() error {
	if app.Config.MockMode {
		log.Println("Mock Mode Active: using simulated adapters")
		app.provider = simulated.NewProvider(app.Config.Interfaces, nil, app.Config.MockConnectDelay)
		return nil
	}

	provider := nmcli.NewProvider(app.Config.NmcliPath, app.Config.ProfilePrefix)
	if err := provider.HealthCheck(context.Background()); err != nil {
		return err
	}
	app.provider = provider
	return nil
}

func (app *Application) ensureDefaultAdmin() error {
	password := app.Config.AdminPassword
	generated := password == ""
	if generated {
		password = uuid.New().String()[:12]
	}

	created, err := app.AuthService.EnsureAdmin(context.Background(), app.Config.AdminUser, password)
	if err != nil {
		return err
	}
	if created {
		if generated {
			log.Printf("Provisioned admin user %q with generated password %q (set WBRUTE_ADMIN_PASSWORD to choose one)", app.Config.AdminUser, password)
		} else {
			log.Printf("Provisioned admin user %q", app.Config.AdminUser)
		}
	}
	return nil
}

// Run serves the API until ctx is cancelled, then stops any running attack.
func (app *Application) Run(ctx context.Context) error {
	slog.Info("Starting wbrute components...", "addr", app.Config.Addr, "mock", app.Config.MockMode)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Web Server listening on %s", app.Config.Addr)
		if err := app.WebServer.Run(ctx); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	}()

	slog.Info("wbrute ready. Press Ctrl+C to terminate.")

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("Termination signal received")
	case runErr = <-errChan:
	}

	app.Shutdown()
	return runErr
}

// Shutdown cancels the active attack and waits for its workers to leave.
func (app *Application) Shutdown() {
	if app.Controller == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*app.Config.ConnectTimeout+5*time.Second)
	defer cancel()
	if err := app.Controller.Shutdown(ctx); err != nil {
		slog.Error("attack shutdown incomplete", "error", err)
	}
}

// Close releases storage handles.
func (app *Application) Close() {
	if app.wordlists != nil {
		if err := app.wordlists.Close(); err != nil {
			log.Printf("Error closing wordlist store: %v", err)
		}
	}
	if app.store != nil {
		if err := app.store.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}

// Wordlists returns the wordlist store, or nil when none is configured.
func (app *Application) Wordlists() *candidates.WordlistDB {
	return app.wordlists
}
