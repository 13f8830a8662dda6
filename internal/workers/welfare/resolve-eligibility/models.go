// internal/workers/welfare/resolve-eligibility/models.go
package resolveeligibility

import "scheme-finder/internal/models"

type Input struct {
	Profile models.Profile `json:"profile"`
	Scheme  models.Scheme  `json:"scheme"`
	UserID  string         `json:"userId,omitempty"`
}

type Output struct {
	Result models.EligibilityResult `json:"result"`
}

type BatchInput struct {
	Profile models.Profile  `json:"profile"`
	Schemes []models.Scheme `json:"schemes"`
	UserID  string          `json:"userId,omitempty"`
}

type BatchOutput struct {
	Results []models.EligibilityResult `json:"results"`
}
