// internal/workers/welfare/resolve-eligibility/handler.go
package resolveeligibility

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"golang.org/x/sync/errgroup"

	"scheme-finder/internal/common/camunda"
	pipelineerrors "scheme-finder/internal/common/errors"
	"scheme-finder/internal/common/logger"
	"scheme-finder/internal/common/metrics"
	"scheme-finder/internal/common/validation"
	"scheme-finder/internal/models"
)

const (
	TaskType = "resolve-eligibility"
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
	if err := camunda.DecodeVariables(job.Variables, validation.ResolveEligibilityInput, &input); err != nil {
		camunda.FailJob(ctx, h.errorHandler, client, job, err)
		return err
	}

	// Resolution always yields a displayable result, so the job completes
	// even when the completion service failed.
	output, _ := h.Execute(ctx, &input)
	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}
	return nil
}

// Execute never returns an error: failures become the "unable to determine"
// result with Diagnostics.FailureCode set.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()
	result, err := h.resolve(ctx, input.Profile, input.Scheme)
	metrics.StageDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())

	meta := map[string]interface{}{
		"schemeId": input.Scheme.ID,
	}
	if err != nil {
		code := pipelineerrors.FromPipelineError(err).Code
		result = models.UndeterminedResult(input.Scheme.ID, string(code))
		meta["failureCode"] = string(code)

		metrics.StageOutcomes.WithLabelValues(TaskType, "error").Inc()
		h.logger.Error("eligibility resolution failed", map[string]interface{}{
			"schemeId":    input.Scheme.ID,
			"failureCode": string(code),
			"error":       err.Error(),
		})
		h.sink.Record(ctx, models.ActionEligibilityResolutionError, input.UserID, meta, err)
		return &Output{Result: result}, nil
	}

	meta["score"] = result.Score
	meta["inconsistent"] = result.Diagnostics.Inconsistent
	if result.Eligible != nil {
		meta["eligible"] = *result.Eligible
	}
	if result.Diagnostics.Inconsistent {
		h.logger.Warn("model reported eligible with score 0", map[string]interface{}{
			"schemeId": input.Scheme.ID,
		})
	}

	metrics.StageOutcomes.WithLabelValues(TaskType, "success").Inc()
	h.sink.Record(ctx, models.ActionEligibilityResolved, input.UserID, meta, nil)
	return &Output{Result: result}, nil
}

func (h *Handler) resolve(ctx context.Context, profile models.Profile, scheme models.Scheme) (models.EligibilityResult, error) {
	raw, err := h.completer.Complete(ctx, systemPrompt, userPrompt(profile, scheme))
	if err != nil {
		return models.EligibilityResult{}, err
	}
	result, err := ParseEligibility(raw)
	if err != nil {
		return models.EligibilityResult{}, err
	}
	result.SchemeID = scheme.ID
	return result, nil
}

// ResolveAll resolves each scheme independently with bounded concurrency.
// Results are in input order.
func (h *Handler) ResolveAll(ctx context.Context, input *BatchInput) *BatchOutput {
	results := make([]models.EligibilityResult, len(input.Schemes))

	var g errgroup.Group
	g.SetLimit(h.concurrency())
	for i := range input.Schemes {
		g.Go(func() error {
			output, _ := h.Execute(ctx, &Input{
				Profile: input.Profile,
				Scheme:  input.Schemes[i],
				UserID:  input.UserID,
			})
			results[i] = output.Result
			return nil
		})
	}
	_ = g.Wait()

	return &BatchOutput{Results: results}
}

func (h *Handler) concurrency() int {
	if h.config.Concurrency <= 0 {
		return 1
	}
	return h.config.Concurrency
}
