package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/config"
	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/middleware"
	"github.com/Mazen-Mokhtar/logen-store-sub001/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type application struct {
	logger *slog.Logger

	router  chi.Router
	httpSrv *http.Server

	closers  []io.Closer
	starters []Starter
}

func New(logger *slog.Logger, cfg config.Config) *application {
	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(chimw.Recoverer)
	router.Use(middleware.Metrics)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Cors.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Idempotency-Key"},
	}))
	router.Use(middleware.Auth(cfg.JWT.Secret))

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	httpSrv := &http.Server{
		Handler: router,
		Addr:    net.JoinHostPort(cfg.Http.Host, cfg.Http.Port),
	}

	return &application{
		logger:  logger,
		httpSrv: httpSrv,
		router:  router,
	}
}

type HTTPHandler interface {
	Init(r chi.Router)
}

func (a *application) SetHTTPHandlers(handlers ...HTTPHandler) {
	for _, h := range handlers {
		h.Init(a.router)
	}
}

// SetHealthCheck mounts /health backed by the given probe (db ping).
func (a *application) SetHealthCheck(check func(ctx context.Context) error) {
	a.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := check(r.Context()); err != nil {
			utils.WriteError(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		utils.WriteJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	})
}

// Starter is a component that needs the application context at startup
// (cache warm-up, janitors).
type Starter interface {
	Start(ctx context.Context) error
}

func (a *application) SetStarters(starters ...Starter) {
	a.starters = starters
}

// SetClosers registers resources released on shutdown (kafka writer).
func (a *application) SetClosers(closers ...io.Closer) {
	a.closers = closers
}

func (a *application) Start(ctx context.Context) error {
	for _, s := range a.starters {
		if err := s.Start(ctx); err != nil {
			return err
		}
	}

	go a.startServer()

	a.logger.Info("application started")
	return nil
}

func (a *application) startServer() {
	a.logger.Info("starting http server", slog.String("addr", a.httpSrv.Addr))
	if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.logger.Error("failed to start http server", slog.Any("error", err))
		os.Exit(1)
	}
}

const gracefulShutdownTimeout = 5 * time.Second

func (a *application) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	if err := a.httpSrv.Shutdown(ctx); err != nil {
		a.logger.Error("failed to shutdown http server", slog.Any("error", err))
	}

	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Error("failed to close resource", slog.Any("error", err))
		}
	}

	a.logger.Info("application stopped")
	return nil
}
