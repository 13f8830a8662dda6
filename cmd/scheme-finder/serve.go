// cmd/scheme-finder/serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"scheme-finder/internal/api"
	"scheme-finder/internal/common/camunda"
	"scheme-finder/internal/common/config"
	"scheme-finder/internal/common/logger"
	"scheme-finder/internal/common/observability"
	discoverschemes "scheme-finder/internal/workers/welfare/discover-schemes"
	extractprofile "scheme-finder/internal/workers/welfare/extract-profile"
	resolveeligibility "scheme-finder/internal/workers/welfare/resolve-eligibility"
)

func newServeCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when enabled, the Zeebe job workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *cliOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.close()

	obs := observability.New(a.cfg.App.Name)
	defer obs.Shutdown()

	workers, err := a.startWorkers(ctx, obs)
	if err != nil {
		return err
	}
	defer func() {
		for _, w := range workers {
			w.Stop()
		}
	}()

	handler := api.New(a.extractor, a.discoverer, a.resolver, a.log, a.pingers...)
	srv := &http.Server{
		Addr:              a.cfg.Server.Address,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", map[string]interface{}{"address": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received", nil)
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(a.cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("http server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	a.log.Info("scheme-finder stopped", nil)
	return nil
}

// startWorkers connects to the broker and opens one job worker per enabled
// task type. It is a no-op when camunda is disabled.
func (a *app) startWorkers(ctx context.Context, obs *observability.Observability) ([]*camunda.CamundaWorker, error) {
	if !a.cfg.Camunda.Enabled {
		a.log.Info("camunda disabled, running HTTP API only", nil)
		return nil, nil
	}

	var client *camunda.Client
	err := retryWithBackoff(func() error {
		var err error
		client, err = camunda.NewClient(ctx, a.cfg.Camunda)
		return err
	}, 5, 2*time.Second, a.log, "Zeebe client initialization")
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	a.pingers = append(a.pingers, client)

	handlers := map[string]camunda.JobHandler{
		extractprofile.TaskType:     a.extractor,
		discoverschemes.TaskType:    a.discoverer,
		resolveeligibility.TaskType: a.resolver,
	}

	var workers []*camunda.CamundaWorker
	for taskType, handler := range handlers {
		if !config.IsWorkerEnabled(a.cfg, taskType) {
			a.log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
			continue
		}
		w := camunda.NewWorker(client.GetClient(), taskType, config.GetWorkerConfig(a.cfg, taskType), handler, obs, a.log)
		w.Start()
		workers = append(workers, w)
	}
	return workers, nil
}

// retryWithBackoff attempts operation up to maxRetries times, doubling the
// delay after each failure.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(operationName+" failed, retrying", map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
