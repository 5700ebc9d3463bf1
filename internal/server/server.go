package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kintai-app/apiserver/config"
	"github.com/kintai-app/apiserver/internal/db"
	"github.com/kintai-app/apiserver/internal/handlers"
	"github.com/kintai-app/apiserver/internal/logging"
	"github.com/kintai-app/apiserver/internal/mq"
	"github.com/kintai-app/apiserver/internal/services"
	"github.com/kintai-app/apiserver/internal/storage"
	"github.com/kintai-app/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	events     *mq.EventPublisher
}

// New constructs a Server. Postgres is the preferred backend; when it
// is unreachable the server still starts and serves from the gist or
// local-file fallback.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		logging.Warn().Err(err).Msg("postgres unavailable, falling back to secondary storage")
		dbConn = nil
	}

	fileStore := store.NewFileStore(cfg.DataFile)
	var providers []store.Provider
	if dbConn != nil {
		providers = append(providers, store.NewAttendanceRepository(dbConn))
	}
	if cfg.Gist.Configured() {
		providers = append(providers, store.NewGistStore(cfg.Gist))
	}
	providers = append(providers, fileStore)
	chain := store.NewChain(fileStore, providers...)

	var userRepo services.UserRepository
	if dbConn != nil {
		userRepo = store.NewUserRepository(dbConn)
	} else {
		fileUsers, err := store.NewFileUserStore(cfg.UserFile)
		if err != nil {
			return nil, fmt.Errorf("open user file store: %w", err)
		}
		userRepo = fileUsers
	}
	userService := services.NewUserService(userRepo)

	backend, err := mq.NewBackendFromConfig(ctx, cfg.MQ)
	if err != nil {
		logging.Warn().Err(err).Msg("message broker unavailable, attendance events disabled")
		backend = nil
	}
	events := mq.NewEventPublisher(backend)

	var eventSink services.EventPublisher
	if events != nil {
		eventSink = events
	}
	attendanceService := services.NewAttendanceService(chain, eventSink)

	archive, err := storage.NewFromConfig(ctx, cfg.Archive)
	if err != nil {
		logging.Warn().Err(err).Msg("report archive unavailable, archiving disabled")
		archive = nil
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz(chain))
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, jwtSecret)
	})
	handlers.AttendanceRouter(router, attendanceService, userService, archive, jwtSecret)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		events:     events,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	logging.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.events != nil {
		_ = s.events.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
