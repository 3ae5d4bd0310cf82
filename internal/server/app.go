// Package server wires the application together: it opens the configured
// database, runs migrations, builds the services and starts the HTTP API
// with graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"stashbox/internal/logging"
	"stashbox/internal/server/config"
	"stashbox/internal/server/httpapi"
	"stashbox/internal/server/repositories/repomanager"
	"stashbox/internal/server/services"
)

type App struct {
	config          *config.Config
	logger          logging.Logger
	db              *sql.DB
	manager         repomanager.RepositoryManager
	entryService    *services.EntryService
	categoryService *services.CategoryService
	tagService      *services.TagService
}

func NewApp(c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, rm, err := repomanager.Open(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	es := services.NewEntryService(db, rm)
	cs := services.NewCategoryService(db, rm)
	ts := services.NewTagService(db, rm)

	return &App{
		config:          c,
		logger:          logger,
		db:              db,
		manager:         rm,
		entryService:    es,
		categoryService: cs,
		tagService:      ts,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewServer(
		app.config.EndpointAddrHTTP,
		app.logger,
		app.entryService,
		app.categoryService,
		app.tagService,
		app.manager.Engine(),
		app.config.APIKey,
		app.config.TelegramWebhookSecret,
	)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "engine", app.manager.Engine())

	// Migrations must complete before the API accepts requests.
	if err := app.manager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	if app.config.MigrateOnly {
		app.logger.Info(ctx, "Migrations applied, exiting (migrate-only mode)")
		return app.db.Close()
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	return app.db.Close()
}
