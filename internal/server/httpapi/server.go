// Package httpapi exposes the entry, category and tag services over a JSON
// HTTP API, plus the Telegram webhook and quick-capture endpoints.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"stashbox/internal/logging"
	"stashbox/internal/server/services"
)

// Server is the HTTP front of the service. Auth is a static API key; the
// Telegram webhook authenticates separately with its shared secret.
type Server struct {
	address        string
	logger         logging.Logger
	entries        *services.EntryService
	categories     *services.CategoryService
	tags           *services.TagService
	engine         string
	apiKey         string
	telegramSecret string
}

func NewServer(
	address string,
	logger logging.Logger,
	es *services.EntryService,
	cs *services.CategoryService,
	ts *services.TagService,
	engine, apiKey, telegramSecret string,
) *Server {
	return &Server{
		address:        address,
		logger:         logger.With("module", "http_server"),
		entries:        es,
		categories:     cs,
		tags:           ts,
		engine:         engine,
		apiKey:         apiKey,
		telegramSecret: telegramSecret,
	}
}

// Run starts the HTTP server and shuts it down gracefully when ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.health)

	protected := func(h http.HandlerFunc) http.Handler {
		return s.requireAPIKey(http.HandlerFunc(h))
	}

	mux.Handle("POST /api/v1/entries", protected(s.createEntry))
	mux.Handle("GET /api/v1/entries", protected(s.listEntries))
	mux.Handle("GET /api/v1/entries/{id}", protected(s.getEntry))
	mux.Handle("PATCH /api/v1/entries/{id}", protected(s.updateEntry))
	mux.Handle("DELETE /api/v1/entries/{id}", protected(s.deleteEntry))
	mux.Handle("POST /api/v1/quick-capture", protected(s.quickCapture))

	mux.Handle("POST /api/v1/categories", protected(s.createCategory))
	mux.Handle("GET /api/v1/categories", protected(s.listCategories))
	mux.Handle("PATCH /api/v1/categories/{id}", protected(s.updateCategory))
	mux.Handle("DELETE /api/v1/categories/{id}", protected(s.deleteCategory))

	mux.Handle("POST /api/v1/tags", protected(s.createTag))
	mux.Handle("GET /api/v1/tags", protected(s.listTags))
	mux.Handle("DELETE /api/v1/tags/{id}", protected(s.deleteTag))

	// The webhook authenticates with its own shared secret, not the API key.
	mux.HandleFunc("POST /api/v1/integrations/telegram/update", s.telegramUpdate)

	return mux
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok", Database: s.engine})
}
