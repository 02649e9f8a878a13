package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/gin-gonic/gin"
)

// MetricsSource supplies the counters served by the ops server.
type MetricsSource interface {
	Snapshot(ctx context.Context) (map[string]int64, error)
}

// OpsServer serves operational endpoints on their own listener, apart from
// the public API. Bind it to a loopback or cluster-internal address.
type OpsServer struct {
	metrics MetricsSource
	logger  logging.Logger
	engine  *gin.Engine
	srv     *http.Server
}

func NewOpsServer(addr string, m MetricsSource, l logging.Logger) *OpsServer {
	s := &OpsServer{metrics: m, logger: l.With("module", "ops_http")}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery())
	s.engine.GET("/metrics", s.serveMetrics)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *OpsServer) Handler() http.Handler {
	return s.engine
}

func (s *OpsServer) Run(ctx context.Context) error {
	return serve(ctx, s.srv, s.logger)
}

func (s *OpsServer) serveMetrics(c *gin.Context) {
	snap, err := s.metrics.Snapshot(c.Request.Context())
	if err != nil {
		s.logger.Error(c.Request.Context(), "metrics snapshot failed", "error", err)
		c.JSON(http.StatusInternalServerError, errorBody{Code: "INTERNAL_ERROR", Message: "internal error"})
		return
	}
	c.JSON(http.StatusOK, snap)
}
