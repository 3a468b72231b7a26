// Package dashboard serves the interactive dashboard API over a snapshot
// loaded at startup. Every endpoint is a read-only GET; each request runs the
// pure pipeline against the immutable snapshot, so there is no cross-request
// state to guard.
package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mineral-insights/mineralboard/internal/config"
	"github.com/mineral-insights/mineralboard/internal/health"
	"github.com/mineral-insights/mineralboard/internal/model"
)

// Server holds the loaded snapshot and the process metrics.
type Server struct {
	snap    *model.Snapshot
	metrics *health.Metrics
	cfg     config.ServerConfig
}

// New creates a dashboard server over a loaded snapshot.
func New(snap *model.Snapshot, metrics *health.Metrics, cfg config.ServerConfig) *Server {
	return &Server{snap: snap, metrics: metrics, cfg: cfg}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}))

	r.Get("/healthz", s.handleHealthz)
	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/ranking", s.handleRanking)
		r.Get("/health/data", s.handleDataHealth)
		r.Get("/charts/supply-demand.png", s.handleSupplyDemandChart)
		r.Get("/charts/gap.png", s.handleGapChart)
		r.Get("/charts/technology.png", s.handleTechChart)
		r.Get("/export/ranking.xlsx", s.handleExportXLSX)
		r.Get("/export/ranking.csv", s.handleExportCSV)
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	return r
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	zap.L().Info("starting server", zap.Int("port", s.cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server listen")
	}

	return nil
}

// logRequests logs every request and feeds the HTTP metrics, labeled by chi
// route pattern rather than raw path.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		elapsed := time.Since(start)
		s.metrics.ObserveRequest(route, ww.Status(), elapsed)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", elapsed),
		)
	})
}
