// Package server exposes lesson sessions over HTTP: the streaming chat endpoint, the
// lesson catalog, the planner operations the editor UI drives, and reference lookups.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Conceptual-Machines/lesson-agents-go/agents/coordination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

// Server routes HTTP requests to a SessionManager
type Server struct {
	manager  *coordination.SessionManager
	gatherer prometheus.Gatherer
	now      func() time.Time
	newID    func() string
	engine   *gin.Engine
}

// Option customizes a Server
type Option func(*Server)

// WithGatherer serves the given registry at /metrics instead of the default one
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithClock overrides the timestamp given to user-created blocks
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// WithIDGenerator overrides the id given to user-created blocks that arrive without one
func WithIDGenerator(newID func() string) Option {
	return func(s *Server) {
		s.newID = newID
	}
}

// NewServer builds the router
func NewServer(manager *coordination.SessionManager, opts ...Option) *Server {
	s := &Server{
		manager:  manager,
		gatherer: prometheus.DefaultGatherer,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	api.POST("/chat", s.chat)
	api.GET("/voicings/:root/:quality", s.voicings)
	api.GET("/chords/:symbol", s.chord)

	lessons := api.Group("/lessons")
	lessons.POST("", s.createLesson)
	lessons.GET("", s.listLessons)
	lessons.GET("/:id", s.getLesson)
	lessons.PUT("/:id", s.renameLesson)
	lessons.DELETE("/:id", s.deleteLesson)

	lessons.PUT("/:id/order", s.reorderBlocks)
	lessons.POST("/:id/actions", s.applyAction)
	lessons.POST("/:id/blocks", s.addBlock)
	lessons.PATCH("/:id/blocks/:blockId", s.updateBlock)
	lessons.POST("/:id/blocks/:blockId/confirm-update", s.confirmUpdateBlock)
	lessons.DELETE("/:id/blocks/:blockId", s.requestRemoveBlock)
	lessons.POST("/:id/blocks/:blockId/confirm-remove", s.confirmRemoveBlock)
	lessons.POST("/:id/blocks/:blockId/pin", s.togglePin)

	return router
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🎸 Lesson server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("🛑 Shutting down lesson server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
