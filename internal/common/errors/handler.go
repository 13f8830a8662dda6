// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// JobErrorHandler turns a pipeline error into the matching Zeebe command:
// a FailJob with retries for transient codes, a ThrowError otherwise so the
// process model can route it to a boundary event.
type JobErrorHandler struct {
	logger Logger
}

func NewJobErrorHandler(logger Logger) *JobErrorHandler {
	return &JobErrorHandler{logger: logger}
}

func (h *JobErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := FromPipelineError(err)
	retries := GetRetryCount(stdErr.Code)

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(stdErr.Code),
		"message":          stdErr.Message,
		"details":          stdErr.Details,
		"retryable":        stdErr.Retryable,
		"retries":          retries,
		"workflowInstance": job.ProcessInstanceKey,
	})

	varsJSON, _ := json.Marshal(ToErrorVariables(stdErr))

	if stdErr.Retryable && retries > 0 && job.Retries > 1 {
		remaining := int32(retries)
		if job.Retries-1 < remaining {
			remaining = job.Retries - 1
		}
		cmd := client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(remaining).
			ErrorMessage(string(stdErr.Code) + ": " + stdErr.Details)
		if withVars, vErr := cmd.VariablesFromString(string(varsJSON)); vErr == nil {
			_, _ = withVars.Send(ctx)
			return
		}
		_, _ = cmd.Send(ctx)
		return
	}

	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(string(stdErr.Code)).
		ErrorMessage(stdErr.Message)
	if withVars, vErr := cmd.VariablesFromString(string(varsJSON)); vErr == nil {
		_, _ = withVars.Send(ctx)
		return
	}
	_, _ = cmd.Send(ctx)
}

// ToErrorVariables is the variable payload attached to failed jobs.
func ToErrorVariables(stdErr *StandardError) map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    string(stdErr.Code),
		"errorMessage": stdErr.Message,
		"errorDetails": stdErr.Details,
		"retryable":    stdErr.Retryable,
		"timestamp":    stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}
	return vars
}
