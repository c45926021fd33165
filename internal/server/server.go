package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/closai/internal/advisor"
	"github.com/spigell/closai/internal/ai"
	"github.com/spigell/closai/internal/wardrobe"
)

const shutdownTimeout = 10 * time.Second

// Deps are the services behind the HTTP API. Advisor, Narrator and Summarizer
// are optional; their endpoints answer 503 or degrade when they are missing.
type Deps struct {
	Store      *wardrobe.Store
	Advisor    *advisor.Advisor
	Narrator   ai.Narrator
	Summarizer ai.Summarizer
	Logger     *zap.Logger
}

// Server is the JSON API used by the closai web client.
type Server struct {
	router *gin.Engine
	deps   Deps
	logger *zap.Logger
}

func New(deps Deps, debug bool) (*Server, error) {
	if deps.Store == nil {
		return nil, errors.New("wardrobe store is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router: gin.New(),
		deps:   deps,
		logger: deps.Logger,
	}
	s.router.Use(gin.Recovery(), s.accessLog())
	s.setupRoutes()

	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	{
		api.GET("/health", s.health)
		api.GET("/profile", s.getProfile)
		api.POST("/profile", s.postProfile)
		api.POST("/recommend", s.recommend)
		api.POST("/fit-recommend", s.fitRecommend)
		api.POST("/summary", s.summary)
		api.GET("/advise", s.advise)
	}
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down http api")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
