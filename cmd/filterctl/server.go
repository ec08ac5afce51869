package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/codec"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/observability"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/query"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/schema"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/validate"
)

const (
	serviceName     = "filterctl"
	shutdownTimeout = 5 * time.Second
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// QueryResponse is the body of POST /v1/query.
type QueryResponse struct {
	QueryString string       `json:"queryString"`
	Filter      codec.Filter `json:"filter"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Schema string `json:"schema"`
	Fields int    `json:"fields"`
}

// service holds what the handlers share.
type service struct {
	schema  *schema.Config
	name    string
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	// metricsHandler serves GET /metrics when set.
	metricsHandler http.Handler
}

func newServeCmd(a *app) *cobra.Command {
	var addr string
	tcfg := telemetryConfig{ServiceName: serviceName}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve validate, normalize and query over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, name, err := a.loadSchema()
			if err != nil {
				return err
			}

			tel, err := setupTelemetry(cmd.Context(), tcfg)
			if err != nil {
				return err
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := tel.Shutdown(ctx); err != nil {
					a.logger.Warn("telemetry shutdown", "error", err)
				}
			}()

			gin.SetMode(gin.ReleaseMode)
			svc := &service{
				schema:         cfg,
				name:           name,
				logger:         a.logger,
				metrics:        observability.NewMetricsRecorder(),
				spans:          observability.NewSpanManager(),
				metricsHandler: tel.MetricsHandler,
			}
			return serve(cmd.Context(), addr, newRouter(svc), a.logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", ":8080", "listen address")
	flags.StringVar(&tcfg.TraceExporter, "trace-exporter", "none", "trace exporter: otlp, stdout or none")
	flags.StringVar(&tcfg.MetricExporter, "metric-exporter", "prometheus", "metric exporter: prometheus, stdout or none")
	flags.StringVar(&tcfg.OTLPEndpoint, "otlp-endpoint", "localhost:4317", "OTLP gRPC endpoint for traces")
	flags.BoolVar(&tcfg.OTLPInsecure, "otlp-insecure", true, "disable TLS for OTLP")
	return cmd
}

// serve runs handler on addr until ctx is cancelled, then shuts down
// gracefully.
func serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newRouter registers the service endpoints:
//
//	GET  /healthz
//	GET  /metrics            - Prometheus metrics, when enabled
//	GET  /v1/schema          - the loaded schema
//	POST /v1/validate        - FilterJSON in, validation result out
//	POST /v1/normalize       - FilterJSON in, canonical FilterJSON out
//	POST /v1/query           - FilterJSON in, query string out
//	GET  /v1/query/decode    - condition query string in, FilterJSON out
//
// /v1/validate accepts allow_empty_groups and allow_incomplete query
// parameters and answers 200 whether or not the filter is valid.
func newRouter(svc *service) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName), requestLogger(svc.logger))

	router.GET("/healthz", svc.handleHealth)
	if svc.metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(svc.metricsHandler))
	}
	v1 := router.Group("/v1")
	v1.GET("/schema", svc.handleSchema)
	v1.POST("/validate", svc.handleValidate)
	v1.POST("/normalize", svc.handleNormalize)
	v1.POST("/query", svc.handleQuery)
	v1.GET("/query/decode", svc.handleDecode)
	return router
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", float64(time.Since(start).Microseconds())/1000,
		)
	}
}

func (s *service) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Schema: s.name, Fields: len(s.schema.Fields)})
}

func (s *service) handleSchema(c *gin.Context) {
	c.JSON(http.StatusOK, s.schema)
}

func (s *service) handleValidate(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	opts := validate.Options{
		AllowEmptyGroups:          c.Query("allow_empty_groups") == "true",
		AllowIncompleteConditions: c.Query("allow_incomplete") == "true",
	}
	b, err := filterbuilder.New(s.schema,
		filterbuilder.WithSchemaName(s.name),
		filterbuilder.WithLogger(s.logger),
		filterbuilder.WithMetrics(s.metrics),
		filterbuilder.WithSpanManager(s.spans),
		filterbuilder.WithInitialFilter(f),
		filterbuilder.WithValidationOptions(opts),
	)
	if err != nil {
		s.logger.Error("open builder", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "INTERNAL"})
		return
	}
	c.JSON(http.StatusOK, b.Validate(c.Request.Context()))
}

func (s *service) handleNormalize(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, codec.Serialize(codec.Deserialize(f)))
}

func (s *service) handleQuery(c *gin.Context) {
	f, ok := bindFilter(c)
	if !ok {
		return
	}
	normalized := codec.Serialize(codec.Deserialize(f))
	c.JSON(http.StatusOK, QueryResponse{
		QueryString: query.GenerateQueryString(normalized),
		Filter:      query.GenerateRequestBody(normalized),
	})
}

func (s *service) handleDecode(c *gin.Context) {
	f, err := query.ParseQueryString(c.Request.URL.RawQuery)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "MALFORMED_QUERY"})
		return
	}
	c.JSON(http.StatusOK, f)
}

func bindFilter(c *gin.Context) (codec.Filter, bool) {
	var f codec.Filter
	if err := c.ShouldBindJSON(&f); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid filter: " + err.Error(), Code: "INVALID_REQUEST"})
		return codec.Filter{}, false
	}
	return f, true
}
