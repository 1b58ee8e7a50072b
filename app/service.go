package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	dashapi "github.com/kilianp07/bikedash/api/dashboard"
	"github.com/kilianp07/bikedash/app/plugins"
	"github.com/kilianp07/bikedash/config"
	"github.com/kilianp07/bikedash/core/dashboard"
	"github.com/kilianp07/bikedash/core/dataset"
	coremetrics "github.com/kilianp07/bikedash/core/metrics"
	"github.com/kilianp07/bikedash/infra/cache"
	"github.com/kilianp07/bikedash/infra/chart"
	"github.com/kilianp07/bikedash/infra/logger"
	"github.com/kilianp07/bikedash/infra/metrics"
	"github.com/kilianp07/bikedash/infra/mqtt"
	"github.com/kilianp07/bikedash/internal/eventbus"
)

// Service serves the dashboard API over a loaded dataset.
type Service struct {
	cfg       *config.Config
	Dataset   *dataset.Dataset
	Session   *dashboard.Session
	bus       *eventbus.Bus[dashboard.ViewChanged]
	sink      coremetrics.MetricsSink
	cache     cache.Cache
	publisher *mqtt.Publisher
	handler   http.Handler
	log       logger.Logger
}

// LoadDataset loads the configured dataset and records the load on sink.
func LoadDataset(ctx context.Context, cfg config.DatasetConfig, sink coremetrics.MetricsSink) (*dataset.Dataset, error) {
	log := logger.New("dataset")
	src, closeFn, err := plugins.NewSource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("dataset source: %w", err)
	}
	if closeFn != nil {
		defer func() {
			if err := closeFn(); err != nil {
				log.Warnf("close source: %v", err)
			}
		}()
	}
	start := time.Now()
	ds, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	b := ds.Bounds()
	log.Infow("dataset loaded", map[string]any{
		"source":  cfg.Source,
		"records": ds.Len(),
		"start":   b.Start.Format("2006-01-02"),
		"end":     b.End.Format("2006-01-02"),
	})
	if rec, ok := sink.(coremetrics.DatasetRecorder); ok {
		ev := coremetrics.DatasetEvent{
			Source:   cfg.Source,
			Records:  ds.Len(),
			Start:    b.Start,
			End:      b.End,
			Duration: time.Since(start),
			Time:     time.Now(),
		}
		if err := rec.RecordDataset(ev); err != nil {
			log.Warnf("record dataset: %v", err)
		}
	}
	return ds, nil
}

// New loads the dataset and wires the optional backends. Unreachable
// backends degrade to no-op implementations.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	ds, err := LoadDataset(ctx, cfg.Dataset, sink)
	if err != nil {
		return nil, err
	}

	bus := eventbus.New[dashboard.ViewChanged](eventbus.DefaultBuffer)
	session, err := dashboard.NewSession(ds, dashboard.Options{Bins: cfg.Server.Bins}, bus)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	svc := &Service{
		cfg:     cfg,
		Dataset: ds,
		Session: session,
		bus:     bus,
		sink:    sink,
		cache:   cache.New(ctx, cfg.Cache),
		log:     logg,
	}
	if cfg.MQTT.Broker != "" {
		pub, err := mqtt.NewPublisher(cfg.MQTT, ds.Bounds(), session)
		if err != nil {
			logg.Errorf("mqtt disabled: %v", err)
		} else {
			svc.publisher = pub
		}
	}

	gin.SetMode(cfg.Server.Mode)
	svc.handler = dashapi.NewRouter(dashapi.Deps{
		Dataset:     ds,
		Session:     session,
		Cache:       svc.cache,
		CachePrefix: fmt.Sprintf("%s:%d", cfg.Cache.Prefix, ds.Len()),
		Metrics:     sink,
		Logger:      logger.New("http"),
		Charts:      chart.Options{Width: cfg.Server.ChartWidth, Height: cfg.Server.ChartHeight},
		Bins:        cfg.Server.Bins,
	})
	return svc, nil
}

// Handler returns the HTTP handler of the API.
func (s *Service) Handler() http.Handler { return s.handler }

// Run serves the API and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartViewCollector(ctx, s.bus, s.sink, s.log)
	if s.publisher != nil {
		go s.publisher.Run(ctx, s.bus)
		if _, err := s.publisher.Publish(s.Session.Current()); err != nil {
			s.log.Errorf("initial snapshot: %v", err)
		}
	}
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.cfg.Server.Addr, Handler: s.handler, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.Server.ShutdownSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	if c, ok := s.cache.(*cache.RedisCache); ok {
		return c.Close()
	}
	return nil
}
