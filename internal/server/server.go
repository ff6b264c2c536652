package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dukerupert/feirinha/internal/categories"
	"github.com/dukerupert/feirinha/internal/handler"
	"github.com/dukerupert/feirinha/internal/lists"
	"github.com/dukerupert/feirinha/internal/markets"
	"github.com/dukerupert/feirinha/internal/middleware"
	ws "github.com/dukerupert/feirinha/internal/websocket"
)

const (
	placesRateLimit  = 30
	placesRateWindow = time.Minute
)

// Pinger reports whether durable storage is reachable; *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the components the HTTP surface is built on.
type Deps struct {
	Lists      *lists.Store
	Categories *categories.Store
	Markets    *markets.Store
	Places     handler.PlaceFinder
	Hub        *ws.Hub
	DB         Pinger
}

type Server struct {
	deps        Deps
	listH       *handler.ListHandler
	categoryH   *handler.CategoryHandler
	marketH     *handler.MarketHandler
	placesH     *handler.PlacesHandler
	backupH     *handler.BackupHandler
	rateLimiter *middleware.RateLimiter
	logger      *zap.Logger
}

func New(deps Deps, logger *zap.Logger) *Server {
	return &Server{
		deps:        deps,
		listH:       handler.NewListHandler(deps.Lists, deps.Categories, logger.Named("lists")),
		categoryH:   handler.NewCategoryHandler(deps.Categories),
		marketH:     handler.NewMarketHandler(deps.Markets, deps.Places, logger.Named("markets")),
		placesH:     handler.NewPlacesHandler(deps.Places, logger.Named("places")),
		backupH:     handler.NewBackupHandler(deps.Lists, deps.Categories, deps.Markets, logger.Named("backup")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(s.logger.Named("http")))

	r.Get("/health", s.healthHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", ws.HandleWebSocket(s.deps.Hub, s.logger.Named("websocket")))

	r.Route("/api", func(r chi.Router) {
		r.Route("/lists", s.listH.Routes)
		r.Route("/categories", s.categoryH.Routes)
		r.Route("/markets", s.marketH.Routes)
		r.Route("/places", func(r chi.Router) {
			r.Use(middleware.RateLimit(s.rateLimiter, middleware.RealIP, placesRateLimit, placesRateWindow))
			s.placesH.Routes(r)
		})
		r.Post("/backup", s.backupH.Backup)
		r.Post("/restore", s.backupH.Restore)
	})

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.deps.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.DB.PingContext(ctx); err != nil {
			s.logger.Warn("health check: database unreachable", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
			return
		}
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
