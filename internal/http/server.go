package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Clark-Hu/readlog/internal/config"
	"github.com/Clark-Hu/readlog/internal/identity"
	"github.com/Clark-Hu/readlog/internal/repository"
	"github.com/Clark-Hu/readlog/internal/store"
)

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg      config.Config
	store    *store.Store
	repo     *repository.Repository
	identity identity.Verifier
	logger   *zap.Logger
	router   chi.Router
	httpSrv  *http.Server
	now      func() time.Time
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, st *store.Store, repo *repository.Repository, verifier identity.Verifier, logger *zap.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:      cfg,
		store:    st,
		repo:     repo,
		identity: verifier,
		logger:   logger.Named("http"),
		router:   r,
		now:      time.Now,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)

	s.router.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/me", s.handleMe)

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", s.handleListReviews)
			r.Post("/", s.handleCreateReview)
			r.Get("/export.csv", s.handleExportReviews)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetReview)
				r.Put("/", s.handleUpdateReview)
				r.Delete("/", s.handleDeleteReview)
			})
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", s.handleListWishlist)
			r.Post("/", s.handleCreateWishlistItem)
			r.Put("/{id}", s.handleUpdateWishlistItem)
			r.Delete("/{id}", s.handleDeleteWishlistItem)
		})
		r.Post("/share", s.handleShare)

		r.Get("/analytics", s.handleAnalytics)

		r.Route("/goals", func(r chi.Router) {
			r.Get("/", s.handleListGoals)
			r.Get("/{year}", s.handleGetGoal)
			r.Put("/{year}", s.handlePutGoal)
		})

		r.Route("/follows", func(r chi.Router) {
			r.Get("/", s.handleListFollows)
			r.Put("/{userId}", s.handleFollow)
			r.Delete("/{userId}", s.handleUnfollow)
		})
		r.Get("/feed", s.handleFeed)
	})
}

// Start boots the HTTP server asynchronously.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.httpSrv.Addr))
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.store == nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	if err := s.store.HealthCheck(ctx); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	resp := healthResponse{Status: "ok"}
	if stat := s.store.Stats(); stat != nil {
		resp.TotalConns = stat.TotalConns()
		resp.IdleConns = stat.IdleConns()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type healthResponse struct {
	Status     string `json:"status"`
	TotalConns int32  `json:"totalConns"`
	IdleConns  int32  `json:"idleConns"`
}
