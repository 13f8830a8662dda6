// internal/workers/welfare/discover-schemes/handler.go
package discoverschemes

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"scheme-finder/internal/common/camunda"
	pipelineerrors "scheme-finder/internal/common/errors"
	"scheme-finder/internal/common/logger"
	"scheme-finder/internal/common/metrics"
	"scheme-finder/internal/common/validation"
	"scheme-finder/internal/models"
)

const (
	TaskType = "discover-schemes"
)

type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Recorder interface {
	Record(ctx context.Context, action, actorID string, metadata map[string]interface{}, err error)
}

type Handler struct {
	config       *Config
	completer    Completer
	sink         Recorder
	logger       logger.Logger
	errorHandler *pipelineerrors.JobErrorHandler
}

func NewHandler(config *Config, completer Completer, sink Recorder, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:       config,
		completer:    completer,
		sink:         sink,
		logger:       log,
		errorHandler: pipelineerrors.NewJobErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := camunda.DecodeVariables(job.Variables, validation.DiscoverSchemesInput, &input); err != nil {
		camunda.FailJob(ctx, h.errorHandler, client, job, err)
		return err
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		camunda.FailJob(ctx, h.errorHandler, client, job, err)
		return err
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}
	return nil
}

// Execute asks for candidate schemes. Popular mode is used when the caller
// asks for it or has no profile; completion errors are returned unchanged.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()

	maxResults := h.maxResults(input.MaxResults)
	mode := ModeProfile
	if input.Popular || input.Profile == nil {
		mode = ModePopular
	}

	userPrompt := popularPrompt(maxResults)
	if mode == ModeProfile {
		userPrompt = profilePrompt(input.Profile, maxResults)
	}

	raw, err := h.completer.Complete(ctx, systemPrompt(), userPrompt)
	metrics.StageDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StageOutcomes.WithLabelValues(TaskType, "error").Inc()
		h.logger.Error("scheme discovery failed", map[string]interface{}{
			"mode":  string(mode),
			"error": err.Error(),
		})
		h.sink.Record(ctx, models.ActionSchemeDiscoveryError, input.UserID, map[string]interface{}{
			"mode":       string(mode),
			"maxResults": maxResults,
		}, err)
		return nil, err
	}

	schemes := ParseSchemes(raw, mode == ModePopular)
	if len(schemes) > maxResults {
		schemes = schemes[:maxResults]
	}

	metrics.StageOutcomes.WithLabelValues(TaskType, "success").Inc()
	metrics.SchemesDiscovered.WithLabelValues(string(mode)).Observe(float64(len(schemes)))
	h.logger.Info("schemes discovered", map[string]interface{}{
		"mode":  string(mode),
		"count": len(schemes),
	})
	h.sink.Record(ctx, models.ActionSchemesDiscovered, input.UserID, map[string]interface{}{
		"mode":       string(mode),
		"count":      len(schemes),
		"maxResults": maxResults,
	}, nil)

	return &Output{Schemes: schemes, Mode: mode, Count: len(schemes)}, nil
}

func (h *Handler) maxResults(requested int) int {
	if requested <= 0 {
		requested = h.config.DefaultMaxResults
	}
	if requested <= 0 {
		requested = DefaultMaxResults
	}
	if requested > MaxResultsCap {
		requested = MaxResultsCap
	}
	return requested
}
