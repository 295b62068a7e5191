// Package server exposes the stored episodes, channels and viewer flags over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/Taichi-iskw/pod-digest/internal/repository"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Deps are the repositories read and written by the API
type Deps struct {
	Episodes repository.EpisodeRepository
	Channels repository.ChannelRepository
	Flags    repository.FlagRepository
}

// Options configures the HTTP server
type Options struct {
	// AllowedOrigins restricts CORS. Empty allows any origin.
	AllowedOrigins []string
	Debug          bool
}

// Server is the browse API
type Server struct {
	router *gin.Engine
	deps   Deps
	logger *zap.Logger
}

// New builds the router with logging, recovery and CORS middleware
func New(deps Deps, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}
	if len(opts.AllowedOrigins) > 0 {
		origins := opts.AllowedOrigins
		corsConfig.AllowOriginFunc = func(origin string) bool {
			return slices.Contains(origins, origin)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	s := &Server{router: router, deps: deps, logger: logger}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api")
	api.GET("/episodes", s.listEpisodes)
	api.GET("/episodes/:id", s.getEpisode)
	api.GET("/channels", s.listChannels)
	api.GET("/flags", s.getFlags)
	api.POST("/flags", s.updateFlags)
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// requestLogger logs each request using zap
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}
