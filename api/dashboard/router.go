// Package dashboard exposes the filter and aggregate engine over HTTP.
package dashboard

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	coredash "github.com/kilianp07/bikedash/core/dashboard"
	"github.com/kilianp07/bikedash/core/dataset"
	coremetrics "github.com/kilianp07/bikedash/core/metrics"
	"github.com/kilianp07/bikedash/infra/cache"
	"github.com/kilianp07/bikedash/infra/chart"
	"github.com/kilianp07/bikedash/infra/logger"
)

// RequestIDHeader carries the request identifier on every response.
const RequestIDHeader = "X-Request-ID"

// Deps are the collaborators of the router. Only Dataset is required.
type Deps struct {
	Dataset     *dataset.Dataset
	Session     *coredash.Session
	Cache       cache.Cache
	CachePrefix string
	Metrics     coremetrics.MetricsSink
	Logger      logger.Logger
	Charts      chart.Options
	// Bins is the default histogram bin count.
	Bins int
}

// Router serves the dashboard API.
type Router struct {
	ds      *dataset.Dataset
	session *coredash.Session
	cache   cache.Cache
	prefix  string
	sink    coremetrics.MetricsSink
	log     logger.Logger
	charts  chart.Options
	bins    int
}

// NewRouter wires the HTTP handlers.
func NewRouter(d Deps) *gin.Engine {
	r := &Router{
		ds:      d.Dataset,
		session: d.Session,
		cache:   d.Cache,
		prefix:  d.CachePrefix,
		sink:    d.Metrics,
		log:     d.Logger,
		charts:  d.Charts,
		bins:    d.Bins,
	}
	if r.cache == nil {
		r.cache = cache.NopCache{}
	}
	if r.prefix == "" {
		r.prefix = "bikedash"
	}
	if r.sink == nil {
		r.sink = coremetrics.NopSink{}
	}
	if r.log == nil {
		r.log = logger.NopLogger{}
	}

	router := gin.New()
	router.Use(requestID(), r.requestLogger(), gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "records": r.ds.Len()})
	})

	api := router.Group("/api")
	{
		api.GET("/bounds", r.bounds)
		api.GET("/dashboard", r.instrument("dashboard", r.dashboard))
		api.GET("/summary", r.instrument("summary", r.summary))
		api.GET("/groups/:key", r.instrument("groups", r.groups))
		api.GET("/trend", r.instrument("trend", r.trend))
		api.GET("/histogram", r.instrument("histogram", r.histogram))
		api.GET("/charts/:file", r.instrument("charts", r.chart))
		api.GET("/export.csv", r.instrument("export", r.export))
		if r.session != nil {
			api.GET("/view", r.instrument("view", r.getView))
			api.PUT("/view", r.instrument("view_update", r.putView))
		}
	}
	return router
}

// requestID reuses a valid incoming identifier or generates a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (r *Router) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		r.log.Infow("request", map[string]any{
			"request_id": c.GetString(RequestIDHeader),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		})
	}
}

// handlerFunc returns the number of records its answer is based on.
type handlerFunc func(c *gin.Context) (int, error)

// instrument writes the error response of h and records a query event.
func (r *Router) instrument(endpoint string, h handlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		n, err := h(c)
		outcome := coremetrics.OutcomeOK
		if err != nil {
			status := writeError(c, err)
			outcome = coremetrics.OutcomeError
			if status < http.StatusInternalServerError {
				outcome = coremetrics.OutcomeRejected
			} else {
				r.log.Errorf("%s: %v", endpoint, err)
			}
		}
		ev := coremetrics.QueryEvent{
			Endpoint: endpoint,
			Outcome:  outcome,
			Records:  n,
			Duration: time.Since(start),
			Time:     start,
		}
		if rerr := r.sink.RecordQuery(ev); rerr != nil {
			r.log.Warnf("record query: %v", rerr)
		}
	}
}
