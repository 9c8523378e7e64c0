package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rickgao/tickerwatch/internal/metrics"
	"github.com/rickgao/tickerwatch/internal/subscription"
)

const healthTimeout = 5 * time.Second

// Pinger checks backing store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Registry is the read side of the subscription registry.
type Registry interface {
	Stats() subscription.Stats
	Snapshot() map[string][]string
}

// Schedule reports upcoming job triggers.
type Schedule interface {
	NextRuns() map[string]time.Time
}

// Server is the ops HTTP server.
type Server struct {
	store    Pinger
	registry Registry
	schedule Schedule
	metrics  *metrics.Metrics
	logger   *slog.Logger

	engine *gin.Engine
	http   *http.Server
}

// New builds the router. schedule and m may be nil.
func New(port int, store Pinger, registry Registry, schedule Schedule, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		store:    store,
		registry: registry,
		schedule: schedule,
		metrics:  m,
		logger:   logger,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", s.getHealth)
	r.GET("/metrics", gin.WrapH(m.Handler()))
	r.GET("/debug/subscriptions", s.getSubscriptions)
	r.GET("/debug/schedule", s.getSchedule)
	s.engine = r

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) ListenAndServe() error {
	s.logger.Info("starting ops server", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ops server: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) getHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status := http.StatusOK
	body := gin.H{"status": "healthy"}

	if err := s.store.Ping(ctx); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["store"] = gin.H{"status": "disconnected", "error": err.Error()}
	} else {
		body["store"] = "connected"
	}

	body["subscriptions"] = s.registry.Stats()

	c.JSON(status, body)
}

func (s *Server) getSubscriptions(c *gin.Context) {
	snapshot := s.registry.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"channels":      len(snapshot),
		"subscriptions": snapshot,
	})
}

func (s *Server) getSchedule(c *gin.Context) {
	if s.schedule == nil {
		c.JSON(http.StatusOK, gin.H{"next_runs": gin.H{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"next_runs": s.schedule.NextRuns()})
}
