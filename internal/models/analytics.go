// internal/models/analytics.go
package models

import "time"

const AnonymousActor = "anonymous"

// Analytics actions emitted by the pipeline stages.
const (
	ActionDocumentAnalyzed           = "document_analyzed"
	ActionDocumentAnalysisError      = "document_analysis_error"
	ActionSchemesDiscovered          = "schemes_discovered"
	ActionSchemeDiscoveryError       = "scheme_discovery_error"
	ActionEligibilityResolved        = "eligibility_resolved"
	ActionEligibilityResolutionError = "eligibility_resolution_error"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

type AnalyticsEvent struct {
	ID           string                 `json:"id"`
	Action       string                 `json:"action"`
	ActorID      string                 `json:"actorId"`
	Metadata     map[string]interface{} `json:"metadata"`
	Outcome      string                 `json:"outcome"`
	ErrorMessage string                 `json:"errorMessage,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
}
