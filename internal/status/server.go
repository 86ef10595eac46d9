package status

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func parseID(raw string) (uint32, error) {
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("status: invalid id %q: %w", raw, err)
	}
	return uint32(v), nil
}

// Server is the read-only status/metrics HTTP server for a serve
// process: one node's membership table rendered as JSON, plus the
// Prometheus scrape endpoint.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
}

// NewServer builds a Server with handler registered under its group and
// /metrics served by metricsHandler (typically promhttp.HandlerFor the
// process registry).
func NewServer(handler Handler, metricsHandler http.Handler) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	group := router.Group("/")
	handler.Register(group)

	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	} else {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	return &Server{
		router:     router,
		httpServer: &http.Server{Handler: router},
	}
}

// Serve blocks accepting connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("status: serve: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
