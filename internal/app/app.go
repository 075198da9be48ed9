package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/mailpilot/mailpilot/config"
	"github.com/mailpilot/mailpilot/internal/database"
	"github.com/mailpilot/mailpilot/internal/domain"
	httphandler "github.com/mailpilot/mailpilot/internal/http"
	"github.com/mailpilot/mailpilot/internal/repository"
	"github.com/mailpilot/mailpilot/internal/service"
	"github.com/mailpilot/mailpilot/pkg/logger"
	"github.com/mailpilot/mailpilot/pkg/mailer"
)

// App assembles the template builder service: database, asset storage,
// mailer, services and the HTTP surface.
type App struct {
	config *config.Config
	logger logger.Logger

	db     *sql.DB
	assets domain.AssetStorage
	mailer mailer.Mailer

	templateRepo    domain.TemplateRepository
	templateService domain.TemplateService

	mux    *http.ServeMux
	server *http.Server
}

// AppOption defines a functional option for configuring the App.
type AppOption func(*App)

// WithMockDB injects a database handle, skipping the real connection.
func WithMockDB(db *sql.DB) AppOption {
	return func(a *App) {
		a.db = db
	}
}

// WithMockAssetStorage injects an asset storage implementation.
func WithMockAssetStorage(s domain.AssetStorage) AppOption {
	return func(a *App) {
		a.assets = s
	}
}

// WithMockMailer injects a mailer implementation.
func WithMockMailer(m mailer.Mailer) AppOption {
	return func(a *App) {
		a.mailer = m
	}
}

// WithLogger injects a custom logger.
func WithLogger(l logger.Logger) AppOption {
	return func(a *App) {
		a.logger = l
	}
}

// NewApp creates a new application instance.
func NewApp(cfg *config.Config, opts ...AppOption) *App {
	a := &App{
		config: cfg,
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.NewLogger(cfg.LogLevel)
	}
	return a
}

func (a *App) InitDB() error {
	if a.db != nil {
		// Injected for tests.
		return database.EnsureSchema(a.db)
	}

	db, err := database.Connect(a.config.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	a.db = db

	if err := database.EnsureSchema(a.db); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

func (a *App) InitAssetStorage() error {
	if a.assets != nil {
		return nil
	}

	storage, err := repository.NewAssetStorage(repository.S3Config{
		Bucket:         a.config.Storage.S3Bucket,
		Region:         a.config.Storage.S3Region,
		AccessKeyID:    a.config.Storage.S3AccessKeyID,
		SecretKey:      a.config.Storage.S3SecretKey,
		Endpoint:       a.config.Storage.S3Endpoint,
		BaseURL:        a.config.Storage.S3BaseURL,
		ForcePathStyle: a.config.Storage.ForcePathStyle,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize asset storage: %w", err)
	}
	a.assets = storage
	return nil
}

func (a *App) InitMailer() error {
	if a.mailer != nil {
		return nil
	}

	cfg := &mailer.Config{
		SMTPHost:     a.config.SMTP.Host,
		SMTPPort:     a.config.SMTP.Port,
		SMTPUsername: a.config.SMTP.Username,
		SMTPPassword: a.config.SMTP.Password,
		FromEmail:    a.config.SMTP.FromEmail,
		FromName:     a.config.SMTP.FromName,
	}
	if a.config.IsDevelopment() {
		a.mailer = mailer.NewTestSMTPMailer(cfg)
	} else {
		a.mailer = mailer.NewSMTPMailer(cfg)
	}
	return nil
}

func (a *App) InitServices() {
	a.templateRepo = repository.NewTemplateRepository(a.db)
	a.templateService = service.NewTemplateService(a.templateRepo, a.assets, a.mailer, a.logger)
}

func (a *App) InitHandlers() {
	templateHandler := httphandler.NewTemplateHandler(a.templateService, a.logger)
	templateHandler.RegisterRoutes(a.mux)

	a.mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

// Initialize runs all initialization steps in order.
func (a *App) Initialize() error {
	if err := a.InitDB(); err != nil {
		return err
	}
	if err := a.InitAssetStorage(); err != nil {
		return err
	}
	if err := a.InitMailer(); err != nil {
		return err
	}
	a.InitServices()
	a.InitHandlers()
	return nil
}

// Handler returns the assembled HTTP handler.
func (a *App) Handler() http.Handler {
	return a.mux
}

// Start runs the HTTP server until it fails or is shut down.
func (a *App) Start() error {
	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	a.server = &http.Server{
		Addr:         addr,
		Handler:      a.mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	a.logger.WithField("addr", addr).Info("HTTP server listening")
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server and closes resources.
func (a *App) Shutdown(ctx context.Context) error {
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	a.logger.Info("Server shut down")
	return nil
}
