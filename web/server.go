// ABOUTME: JSON HTTP API over the CRM views, analytics and lead generator
// ABOUTME: gin router with bearer-token auth and graceful shutdown
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/agency/gateway"
	"github.com/harperreed/agency/leadgen"
	"go.uber.org/zap"
)

// Options configures a Server.
type Options struct {
	JWTSecret string
	Backend   string
	Model     string
	// Streamer generates leads; nil disables the generator route.
	Streamer leadgen.TextStreamer
}

type Server struct {
	gw     gateway.Gateway
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

// NewServer serves every caller from gw, scoped to the principal named in
// each request's token.
func NewServer(gw gateway.Gateway, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{gw: gw, opts: opts, logger: logger, now: time.Now}
}

// Router builds the gin engine with every route mounted.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	r.GET("/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET(SignInPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Sign in with a bearer token. Run `agency token` to mint one.",
		})
	})

	v1 := r.Group("/v1")
	v1.Use(s.requireAuth())

	v1.GET("/settings", s.settings)

	s.mountPipeline(v1)
	s.mountActivities(v1)
	s.mountEntities(v1)
	s.mountTeam(v1)
	s.mountAnalytics(v1)
	s.mountAutomation(v1)
	s.mountLeads(v1)

	return r
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("web server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down web server")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

func (s *Server) settings(c *gin.Context) {
	p, err := session(c).Principal(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":    p,
		"backend": s.opts.Backend,
		"model":   s.opts.Model,
	})
}
