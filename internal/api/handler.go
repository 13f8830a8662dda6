// internal/api/handler.go
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scheme-finder/internal/common/database"
	"scheme-finder/internal/common/logger"
	"scheme-finder/internal/common/validation"
	discoverschemes "scheme-finder/internal/workers/welfare/discover-schemes"
	extractprofile "scheme-finder/internal/workers/welfare/extract-profile"
	resolveeligibility "scheme-finder/internal/workers/welfare/resolve-eligibility"
)

type ProfileExtractor interface {
	Execute(ctx context.Context, input *extractprofile.Input) (*extractprofile.Output, error)
	ExtractDocument(ctx context.Context, input *extractprofile.DocumentInput) (*extractprofile.Output, error)
}

type SchemeDiscoverer interface {
	Execute(ctx context.Context, input *discoverschemes.Input) (*discoverschemes.Output, error)
}

type EligibilityResolver interface {
	Execute(ctx context.Context, input *resolveeligibility.Input) (*resolveeligibility.Output, error)
	ResolveAll(ctx context.Context, input *resolveeligibility.BatchInput) *resolveeligibility.BatchOutput
}

// Handler exposes the pipeline stages over JSON. It holds no state of its
// own beyond the stage handlers and the readiness dependencies.
type Handler struct {
	extractor  ProfileExtractor
	discoverer SchemeDiscoverer
	resolver   EligibilityResolver
	deps       []database.Pinger
	logger     logger.Logger
}

func New(extractor ProfileExtractor, discoverer SchemeDiscoverer, resolver EligibilityResolver, log logger.Logger, deps ...database.Pinger) *Handler {
	return &Handler{
		extractor:  extractor,
		discoverer: discoverer,
		resolver:   resolver,
		deps:       deps,
		logger:     log.With(map[string]interface{}{"component": "api"}),
	}
}

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	h.Register(r)
	return r
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Get("/ready", h.HandleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/profile/extract", h.HandleExtractProfile)
		r.Post("/profile/extract-document", h.HandleExtractDocument)
		r.Post("/schemes/discover", h.HandleDiscoverSchemes)
		r.Post("/eligibility/resolve", h.HandleResolveEligibility)
		r.Post("/eligibility/resolve-batch", h.HandleResolveBatch)
	})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// HandleReady pings every backing dependency and reports 503 if any fails.
func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failures := database.CheckAll(ctx, h.deps...)
	if len(failures) > 0 {
		h.logger.Warn("readiness check failed", map[string]interface{}{"failures": failures})
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":   "not ready",
			"failures": failures,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) HandleExtractProfile(w http.ResponseWriter, r *http.Request) {
	var input extractprofile.Input
	if !h.decode(w, r, validation.ExtractProfileInput, &input) {
		return
	}
	output, err := h.extractor.Execute(stageContext(r), &input)
	if err != nil {
		h.fail(w, r, "profile extraction failed", err)
		return
	}
	writeJSON(w, http.StatusOK, output)
}

func (h *Handler) HandleExtractDocument(w http.ResponseWriter, r *http.Request) {
	var input extractprofile.DocumentInput
	if !h.decode(w, r, validation.ExtractDocumentInput, &input) {
		return
	}
	output, err := h.extractor.ExtractDocument(stageContext(r), &input)
	if err != nil {
		h.fail(w, r, "document extraction failed", err)
		return
	}
	writeJSON(w, http.StatusOK, output)
}

func (h *Handler) HandleDiscoverSchemes(w http.ResponseWriter, r *http.Request) {
	var input discoverschemes.Input
	if !h.decode(w, r, validation.DiscoverSchemesInput, &input) {
		return
	}
	output, err := h.discoverer.Execute(stageContext(r), &input)
	if err != nil {
		h.fail(w, r, "scheme discovery failed", err)
		return
	}
	writeJSON(w, http.StatusOK, output)
}

// HandleResolveEligibility always answers 200 once the body is valid; a
// failed resolution is reported inside the result diagnostics.
func (h *Handler) HandleResolveEligibility(w http.ResponseWriter, r *http.Request) {
	var input resolveeligibility.Input
	if !h.decode(w, r, validation.ResolveEligibilityInput, &input) {
		return
	}
	output, err := h.resolver.Execute(stageContext(r), &input)
	if err != nil {
		h.fail(w, r, "eligibility resolution failed", err)
		return
	}
	writeJSON(w, http.StatusOK, output)
}

func (h *Handler) HandleResolveBatch(w http.ResponseWriter, r *http.Request) {
	var input resolveeligibility.BatchInput
	if !h.decode(w, r, validation.ResolveBatchInput, &input) {
		return
	}
	writeJSON(w, http.StatusOK, h.resolver.ResolveAll(stageContext(r), &input))
}

// stageContext keeps request values but not cancellation. A client that goes
// away leaves the completion to finish under its per-attempt timeout.
func stageContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}
