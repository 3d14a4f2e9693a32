// Package server is the HTTP surface of the site: the public reader
// API, the feeds, media, and the token-guarded admin API.
package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/halewell/halewell/internal/auth"
	"github.com/halewell/halewell/internal/blog"
	"github.com/halewell/halewell/internal/config"
	"github.com/halewell/halewell/internal/gen"
	"github.com/halewell/halewell/internal/media"
	"github.com/halewell/halewell/internal/observability"
	"github.com/halewell/halewell/internal/store"
)

const shutdownGrace = 10 * time.Second

// Server wires the domain services into a gin router.
type Server struct {
	cfg      config.Config
	blog     *blog.Service
	store    *store.Store
	engine   *gen.Engine
	pipeline *gen.Pipeline
	calendar *gen.Calendar
	media    *media.Store
	router   *gin.Engine
	log      zerolog.Logger
	started  time.Time
}

func New(cfg config.Config, blogSvc *blog.Service, st *store.Store,
	engine *gen.Engine, pipeline *gen.Pipeline, calendar *gen.Calendar,
	mediaStore *media.Store, log zerolog.Logger) *Server {

	s := &Server{
		cfg:      cfg,
		blog:     blogSvc,
		store:    st,
		engine:   engine,
		pipeline: pipeline,
		calendar: calendar,
		media:    mediaStore,
		log:      log.With().Str("component", "server").Logger(),
		started:  time.Now(),
	}
	s.router = s.buildRouter()
	return s
}

// Router exposes the underlying handler, used by tests.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(s.log))
	r.Use(observability.RequestMetrics())

	corsCfg := cors.DefaultConfig()
	if len(s.cfg.Site.CorsOrigins) > 0 {
		corsCfg.AllowOrigins = s.cfg.Site.CorsOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	s.registerPublicRoutes(r)
	s.registerAdminRoutes(r)
	return r
}

// Run serves until the context is cancelled or SIGINT/SIGTERM
// arrives, then drains connections.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    s.cfg.Site.Addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// respondError maps domain errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, blog.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, blog.ErrDuplicateSlug):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
