// internal/workers/welfare/discover-schemes/parse.go
package discoverschemes

import (
	"encoding/json"
	"strings"

	"scheme-finder/internal/common/coerce"
	"scheme-finder/internal/common/completion"
	"scheme-finder/internal/models"
)

// ParseSchemes decodes a discovery response. Anything other than a JSON array
// yields an empty list; invalid elements are dropped individually.
func ParseSchemes(raw string, popular bool) []models.Scheme {
	schemes := []models.Scheme{}

	var decoded interface{}
	if err := json.Unmarshal([]byte(completion.Sanitize(raw)), &decoded); err != nil {
		return schemes
	}
	items, ok := decoded.([]interface{})
	if !ok {
		return schemes
	}

	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if s, ok := parseScheme(obj, popular); ok {
			schemes = append(schemes, s)
		}
	}
	return schemes
}

func parseScheme(obj map[string]interface{}, popular bool) (models.Scheme, bool) {
	title := str(obj["title"])
	if title == "" {
		title = str(obj["name"])
	}
	if title == "" {
		return models.Scheme{}, false
	}

	category, _ := models.ParseSchemeCategory(str(obj["category"]))
	jurisdiction := models.ParseJurisdiction(str(obj["jurisdiction"]))

	s := models.Scheme{
		ID:                str(obj["id"]),
		Title:             title,
		Description:       str(obj["description"]),
		BenefitAmount:     str(obj["benefitAmount"]),
		Category:          category,
		Jurisdiction:      jurisdiction,
		EligibilityURL:    str(obj["eligibilityUrl"]),
		ApplicationURL:    str(obj["applicationUrl"]),
		EligibilityReason: str(obj["eligibilityReason"]),
		Requirements:      coerce.Strings(obj["requirements"]),
		Benefits:          coerce.Strings(obj["benefits"]),
		LastUpdated:       str(obj["lastUpdated"]),
	}
	if s.ID == "" {
		s.ID = models.SchemeID(jurisdiction, title)
	}

	s.Eligibility = flag(firstPresent(obj, "eligibility", "eligibilityFlag", "eligible"))
	switch {
	case popular:
		s.Eligibility = models.FlagUnknown
	case s.Eligibility != models.FlagUnknown && s.EligibilityReason == "":
		s.Eligibility = models.FlagUnknown
	}
	return s, true
}

// flag accepts the enum string, a boolean or null.
func flag(v interface{}) models.EligibilityFlag {
	switch val := v.(type) {
	case bool:
		if val {
			return models.FlagEligible
		}
		return models.FlagNotEligible
	case string:
		f, ok := models.ParseEligibilityFlag(val)
		if !ok {
			return models.FlagUnknown
		}
		return f
	default:
		return models.FlagUnknown
	}
}

func firstPresent(obj map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			return v
		}
	}
	return nil
}

func str(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		if p := coerce.String(val); p != nil {
			return *p
		}
	}
	return ""
}
