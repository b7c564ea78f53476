package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/loykin/restclient"
	"github.com/loykin/restclient/internal/common"
	"github.com/loykin/restclient/internal/constants"
	"golang.org/x/time/rate"
)

// Executor is the plugin surface the server exposes.
type Executor interface {
	Metadata() restclient.Metadata
	Execute(ctx context.Context, inputs []restclient.PluginParams) ([]restclient.PluginParams, error)
}

// Options configures a Server.
type Options struct {
	// RateLimit caps executions per second; zero uses the default, negative disables.
	RateLimit float64
	Burst     int
	// Store, when set, backs GET /runs.
	Store  *restclient.Store
	Logger *common.Logger
}

// Server is an HTTP harness around one plugin instance.
type Server struct {
	exec    Executor
	limiter *rate.Limiter
	store   *restclient.Store
	logger  *common.Logger
	engine  *gin.Engine
}

// New builds the gin engine for exec.
func New(exec Executor, opts Options) *Server {
	s := &Server{exec: exec, store: opts.Store, logger: opts.Logger}
	if s.logger == nil {
		s.logger = common.GetLogger()
	}
	s.logger = s.logger.WithComponent("server")

	limit := opts.RateLimit
	if limit == 0 {
		limit = constants.DefaultRateLimit
	}
	if limit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = constants.DefaultRateBurst
		}
		s.limiter = rate.NewLimiter(rate.Limit(limit), burst)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())
	engine.GET("/healthz", s.health)
	engine.GET("/metadata", s.metadata)
	engine.POST("/execute", s.execute)
	if s.store != nil {
		engine.GET("/runs", s.runs)
	}
	s.engine = engine
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine.Handler()
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = constants.DefaultServerAddr
	}
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) metadata(c *gin.Context) {
	c.JSON(http.StatusOK, s.exec.Metadata())
}

func (s *Server) execute(c *gin.Context) {
	var inputs []restclient.PluginParams
	if err := c.ShouldBindJSON(&inputs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON array of records: " + err.Error()})
		return
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(c.Request.Context()); err != nil {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
			return
		}
	}

	out, err := s.exec.Execute(c.Request.Context(), inputs)
	if err != nil {
		kind := restclient.KindOf(err)
		c.JSON(StatusFor(kind), gin.H{"error": err.Error(), "kind": kind.String()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) runs(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	runs, err := s.store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// StatusFor maps an error kind to the HTTP status returned by /execute.
func StatusFor(kind restclient.Kind) int {
	switch kind {
	case restclient.KindConfig, restclient.KindUnsupportedMethod:
		return http.StatusBadRequest
	case restclient.KindNumericType:
		return http.StatusUnprocessableEntity
	case restclient.KindFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
