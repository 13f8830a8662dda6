// internal/workers/welfare/extract-profile/handler.go
package extractprofile

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

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
	TaskType = "extract-profile"
)

var (
	ErrNoTextExtracted  = pipelineerrors.ErrNoTextExtracted
	ErrExtractionFailed = pipelineerrors.ErrExtractionFailed
)

type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Recorder interface {
	Record(ctx context.Context, action, actorID string, metadata map[string]interface{}, err error)
}

// TextSource turns a document or audio payload into text (OCR, speech-to-text).
type TextSource interface {
	ExtractText(ctx context.Context, data []byte, mimeType string) (string, error)
}

type Handler struct {
	config       *Config
	completer    Completer
	sink         Recorder
	source       TextSource
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

// WithTextSource enables ExtractDocument.
func (h *Handler) WithTextSource(source TextSource) *Handler {
	h.source = source
	return h
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := camunda.DecodeVariables(job.Variables, validation.ExtractProfileInput, &input); err != nil {
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

// Execute extracts a Profile from free text. Every failure wraps
// ErrExtractionFailed together with its cause.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()
	output, err := h.execute(ctx, input.RawText)
	h.observe(ctx, input.UserID, len(input.RawText), output, err, start)
	return output, err
}

// ExtractDocument runs the TextSource first and then extracts from its text.
func (h *Handler) ExtractDocument(ctx context.Context, input *DocumentInput) (*Output, error) {
	start := time.Now()
	if h.source == nil {
		err := fmt.Errorf("%w: no text source configured", ErrExtractionFailed)
		h.observe(ctx, input.UserID, 0, nil, err, start)
		return nil, err
	}

	text, err := h.source.ExtractText(ctx, input.Data, input.MimeType)
	if err != nil {
		err = fmt.Errorf("%w: %w: %v", ErrExtractionFailed, ErrNoTextExtracted, err)
		h.observe(ctx, input.UserID, 0, nil, err, start)
		return nil, err
	}

	output, err := h.execute(ctx, text)
	h.observe(ctx, input.UserID, len(text), output, err, start)
	return output, err
}

func (h *Handler) execute(ctx context.Context, rawText string) (*Output, error) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, ErrNoTextExtracted)
	}
	text = truncate(text, h.config.MaxInputChars)

	raw, err := h.completer.Complete(ctx, systemPrompt(), userPrompt(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	profile, err := ParseProfile(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	h.logger.Info("profile extracted", map[string]interface{}{
		"knownFields": profile.KnownFields(),
	})
	return &Output{Profile: profile}, nil
}

func (h *Handler) observe(ctx context.Context, userID string, inputLen int, output *Output, err error, start time.Time) {
	metrics.StageDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.StageOutcomes.WithLabelValues(TaskType, "error").Inc()
		h.logger.Error("profile extraction failed", map[string]interface{}{
			"error": err.Error(),
		})
		h.sink.Record(ctx, models.ActionDocumentAnalysisError, userID, map[string]interface{}{
			"inputLength": inputLen,
		}, err)
		return
	}

	metrics.StageOutcomes.WithLabelValues(TaskType, "success").Inc()
	h.sink.Record(ctx, models.ActionDocumentAnalyzed, userID, map[string]interface{}{
		"inputLength": inputLen,
		"knownFields": output.Profile.KnownFields(),
	}, nil)
}

func truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
