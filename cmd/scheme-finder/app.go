// cmd/scheme-finder/app.go
package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"scheme-finder/internal/common/analytics"
	"scheme-finder/internal/common/completion"
	"scheme-finder/internal/common/config"
	"scheme-finder/internal/common/database"
	"scheme-finder/internal/common/logger"
	discoverschemes "scheme-finder/internal/workers/welfare/discover-schemes"
	extractprofile "scheme-finder/internal/workers/welfare/extract-profile"
	resolveeligibility "scheme-finder/internal/workers/welfare/resolve-eligibility"
)

// app holds everything the commands share. close releases it in reverse
// order of construction.
type app struct {
	cfg     *config.Config
	zapLog  *zap.Logger
	log     logger.Logger
	sink    *analytics.Sink
	pingers []database.Pinger
	closers []func() error

	extractor  *extractprofile.Handler
	discoverer *discoverschemes.Handler
	resolver   *resolveeligibility.Handler
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func newApp(ctx context.Context, opts *cliOptions) (*app, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.NewZapAdapter(zapLog)
	a := &app{cfg: cfg, zapLog: zapLog, log: log}

	backend, err := completion.NewBackend(ctx, cfg.Completion)
	if err != nil {
		return nil, fmt.Errorf("completion backend: %w", err)
	}
	completer := completion.NewClient(backend, completion.ConfigFrom(cfg.Completion), log.With(map[string]interface{}{
		"component": "completion",
		"provider":  backend.Name(),
	}))

	store, pinger, closeStore, err := analytics.OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("analytics store: %w", err)
	}
	a.closers = append(a.closers, closeStore)
	if pinger != nil {
		a.pingers = append(a.pingers, pinger)
	}
	a.sink = analytics.NewSink(store, analytics.SinkConfig{
		BufferSize:   cfg.Analytics.BufferSize,
		WriteTimeout: config.GetDuration(cfg.Analytics.WriteTimeout),
	}, log.With(map[string]interface{}{"component": "analytics"}))

	a.extractor = extractprofile.NewHandler(&extractprofile.Config{
		Timeout:       config.GetDuration(config.GetWorkerConfig(cfg, extractprofile.TaskType).Timeout),
		MaxInputChars: extractprofile.LoadConfig().MaxInputChars,
	}, completer, a.sink, log).WithTextSource(extractprofile.PlainTextSource{})

	a.discoverer = discoverschemes.NewHandler(&discoverschemes.Config{
		Timeout:           config.GetDuration(config.GetWorkerConfig(cfg, discoverschemes.TaskType).Timeout),
		DefaultMaxResults: cfg.Discovery.DefaultMaxResults,
	}, completer, a.sink, log)

	a.resolver = resolveeligibility.NewHandler(&resolveeligibility.Config{
		Timeout:     config.GetDuration(config.GetWorkerConfig(cfg, resolveeligibility.TaskType).Timeout),
		Concurrency: cfg.Discovery.ResolveBatchLimit,
	}, completer, a.sink, log)

	log.Info("pipeline initialized", map[string]interface{}{
		"provider":       backend.Name(),
		"analyticsStore": cfg.Analytics.Store,
	})
	return a, nil
}

// close drains the analytics queue before releasing the stores it writes to.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.sink.Close(ctx); err != nil {
		a.log.Warn("analytics sink did not drain", map[string]interface{}{"error": err.Error()})
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	_ = a.zapLog.Sync()
}
