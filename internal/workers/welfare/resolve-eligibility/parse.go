// internal/workers/welfare/resolve-eligibility/parse.go
package resolveeligibility

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"scheme-finder/internal/common/coerce"
	"scheme-finder/internal/common/completion"
	"scheme-finder/internal/models"
)

// ParseEligibility decodes a resolution response. The score is clamped into
// [0,100]; eligible=true with score 0 is kept as returned and flagged.
func ParseEligibility(raw string) (models.EligibilityResult, error) {
	var decoded interface{}
	if err := json.Unmarshal([]byte(completion.Sanitize(raw)), &decoded); err != nil {
		return models.EligibilityResult{}, fmt.Errorf("%w: %v", completion.ErrMalformedOutput, err)
	}
	obj, ok := decoded.(map[string]interface{})
	if !ok {
		return models.EligibilityResult{}, fmt.Errorf("%w: expected a JSON object", completion.ErrMalformedOutput)
	}

	_, hasEligible := obj["eligible"]
	_, hasScore := obj["score"]
	if !hasEligible && !hasScore {
		return models.EligibilityResult{}, fmt.Errorf("%w: response has neither eligible nor score", completion.ErrMalformedOutput)
	}

	result := models.EligibilityResult{
		Eligible:            eligible(obj["eligible"]),
		MissingRequirements: coerce.Strings(obj["missingRequirements"]),
		Score:               score(obj["score"]),
	}
	if reason, ok := obj["reason"].(string); ok {
		result.Reason = strings.TrimSpace(reason)
	}
	if result.Reason == "" && result.Eligible == nil {
		result.Reason = models.ReasonUndetermined
	}
	result.Diagnostics.Inconsistent = result.Eligible != nil && *result.Eligible && result.Score == 0
	return result, nil
}

func eligible(v interface{}) *bool {
	if b := coerce.Bool(v); b != nil {
		return b
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	switch flag, _ := models.ParseEligibilityFlag(s); flag {
	case models.FlagEligible:
		b := true
		return &b
	case models.FlagNotEligible:
		b := false
		return &b
	default:
		return nil
	}
}

func score(v interface{}) int {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case string:
		p := coerce.Float(strings.TrimSuffix(strings.TrimSpace(val), "%"))
		if p == nil {
			return 0
		}
		f = *p
	default:
		return 0
	}
	if math.IsNaN(f) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, f))))
}
