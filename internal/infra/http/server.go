// Package http exposes the issuance and verification pipeline over a small
// JSON API.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"wipecert/internal/config"
	"wipecert/internal/domain"
	"wipecert/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Server struct {
	engine  *gin.Engine
	issue   *usecase.IssueCertificate
	resolve *usecase.ResolveCertificate
	log     zerolog.Logger

	listenAddr          string
	rateLimiter         domain.RateLimiter
	rateLimitRequests   int
	rateLimitWindow     time.Duration
	rateLimitFailClosed bool
	now                 func() time.Time

	httpServer *http.Server
}

type Deps struct {
	Issue       *usecase.IssueCertificate
	Resolve     *usecase.ResolveCertificate
	RateLimiter domain.RateLimiter
}

func NewServer(cfg config.Config, deps Deps, log zerolog.Logger) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:              engine,
		issue:               deps.Issue,
		resolve:             deps.Resolve,
		log:                 log,
		listenAddr:          cfg.ListenAddr,
		rateLimiter:         deps.RateLimiter,
		rateLimitRequests:   cfg.RateLimitRequests,
		rateLimitWindow:     cfg.RateLimitWindow,
		rateLimitFailClosed: cfg.RateLimitFailClosed,
		now:                 time.Now,
	}
	engine.Use(s.requestLogger())

	engine.GET("/healthz", s.handleHealth)
	api := engine.Group("/api/v1")
	api.POST("/certificates", s.handleIssue)
	api.GET("/certificates/:id/verify", s.rateLimit(routeVerify), s.handleVerify)
	api.GET("/certificates/:id", s.rateLimit(routeDetails), s.handleDetails)

	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()
	s.log.Info().Str("addr", s.listenAddr).Msg("http server listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"code": code, "message": message})
}
