// internal/api/respond.go
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	pipelineerrors "scheme-finder/internal/common/errors"
	"scheme-finder/internal/common/validation"
)

const maxRequestBytes = 1 << 20

type errorResponse struct {
	Error *pipelineerrors.StandardError `json:"error"`
}

// decode validates the body against schema before unmarshalling into out.
// It writes the error response itself and reports whether to continue.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, schema *validation.Schema, out interface{}) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, pipelineerrors.NewInvalidInputError(fmt.Sprintf("read body: %v", err)))
		return false
	}
	if err := schema.ValidateJSON(body); err != nil {
		writeError(w, pipelineerrors.FromPipelineError(err))
		return false
	}
	if err := json.Unmarshal(body, out); err != nil {
		writeError(w, pipelineerrors.NewInvalidInputError(err.Error()))
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	stdErr := pipelineerrors.FromPipelineError(err)
	h.logger.Error(msg, map[string]interface{}{
		"requestId": middleware.GetReqID(r.Context()),
		"path":      r.URL.Path,
		"errorCode": string(stdErr.Code),
		"error":     err.Error(),
	})
	writeError(w, stdErr)
}

func writeError(w http.ResponseWriter, stdErr *pipelineerrors.StandardError) {
	writeJSON(w, stdErr.HTTPStatus(), errorResponse{Error: stdErr})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
