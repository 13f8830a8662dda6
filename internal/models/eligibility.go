// internal/models/eligibility.go
package models

const ReasonUndetermined = "unable to determine"

type Diagnostics struct {
	Inconsistent bool   `json:"inconsistent,omitempty"`
	FailureCode  string `json:"failureCode,omitempty"`
}

// EligibilityResult is the refined per-scheme determination. Eligible is nil
// when the resolver could not decide.
type EligibilityResult struct {
	SchemeID            string      `json:"schemeId,omitempty"`
	Eligible            *bool       `json:"eligible"`
	Reason              string      `json:"reason"`
	MissingRequirements []string    `json:"missingRequirements"`
	Score               int         `json:"score"`
	Diagnostics         Diagnostics `json:"diagnostics"`
}

// UndeterminedResult is returned whenever resolution cannot produce an answer.
func UndeterminedResult(schemeID, failureCode string) EligibilityResult {
	return EligibilityResult{
		SchemeID:            schemeID,
		Eligible:            nil,
		Reason:              ReasonUndetermined,
		MissingRequirements: []string{},
		Score:               0,
		Diagnostics:         Diagnostics{FailureCode: failureCode},
	}
}
