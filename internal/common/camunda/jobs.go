// internal/common/camunda/jobs.go
package camunda

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	pipelineerrors "scheme-finder/internal/common/errors"
	"scheme-finder/internal/common/metrics"
	"scheme-finder/internal/common/validation"
)

// DecodeVariables validates the job variables against schema and decodes
// them into out. Failures wrap ErrInvalidInput.
func DecodeVariables(variables string, schema *validation.Schema, out interface{}) error {
	if err := schema.ValidateJSON([]byte(variables)); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(variables), out); err != nil {
		return fmt.Errorf("%w: parse input: %v", pipelineerrors.ErrInvalidInput, err)
	}
	return nil
}

// CompleteJob sends the output as the job's result variables.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete job command: %w", err)
	}
	metrics.WorkerJobsCompleted.WithLabelValues(job.Type).Inc()
	return nil
}

// FailJob routes err through the shared job error handler.
func FailJob(ctx context.Context, handler *pipelineerrors.JobErrorHandler, client worker.JobClient, job entities.Job, err error) {
	code := pipelineerrors.FromPipelineError(err).Code
	metrics.WorkerJobsFailed.WithLabelValues(job.Type, string(code)).Inc()
	handler.HandleJobError(ctx, client, job, err)
}
