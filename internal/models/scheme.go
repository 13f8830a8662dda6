// internal/models/scheme.go
package models

import (
	"strings"

	"github.com/google/uuid"
)

type EligibilityFlag string

const (
	FlagEligible    EligibilityFlag = "eligible"
	FlagNotEligible EligibilityFlag = "not-eligible"
	FlagUnknown     EligibilityFlag = "unknown"
)

// ParseEligibilityFlag accepts the enum spelling plus the common variants
// returned by completion models ("not eligible", "ineligible", "yes", "no").
func ParseEligibilityFlag(s string) (EligibilityFlag, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eligible", "yes", "true":
		return FlagEligible, true
	case "not-eligible", "not eligible", "not_eligible", "ineligible", "no", "false":
		return FlagNotEligible, true
	case "unknown", "":
		return FlagUnknown, true
	default:
		return FlagUnknown, false
	}
}

type SchemeCategory string

const (
	SchemeAgriculture    SchemeCategory = "Agriculture"
	SchemeEducation      SchemeCategory = "Education"
	SchemeHealth         SchemeCategory = "Health"
	SchemeEmployment     SchemeCategory = "Employment"
	SchemeHousing        SchemeCategory = "Housing"
	SchemeSocialSecurity SchemeCategory = "Social Security"
	SchemeOther          SchemeCategory = "Other"
)

var SchemeCategories = []SchemeCategory{
	SchemeAgriculture, SchemeEducation, SchemeHealth, SchemeEmployment,
	SchemeHousing, SchemeSocialSecurity, SchemeOther,
}

func ParseSchemeCategory(s string) (SchemeCategory, bool) {
	norm := strings.ReplaceAll(strings.TrimSpace(s), "_", " ")
	for _, c := range SchemeCategories {
		if strings.EqualFold(norm, string(c)) {
			return c, true
		}
	}
	return SchemeOther, false
}

const JurisdictionCentral = "Central"

// Jurisdictions lists the Indian states and union territories a scheme can
// belong to besides Central.
var Jurisdictions = []string{
	"Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar", "Chhattisgarh", "Goa",
	"Gujarat", "Haryana", "Himachal Pradesh", "Jharkhand", "Karnataka", "Kerala",
	"Madhya Pradesh", "Maharashtra", "Manipur", "Meghalaya", "Mizoram", "Nagaland",
	"Odisha", "Punjab", "Rajasthan", "Sikkim", "Tamil Nadu", "Telangana", "Tripura",
	"Uttar Pradesh", "Uttarakhand", "West Bengal",
	"Andaman and Nicobar Islands", "Chandigarh", "Dadra and Nagar Haveli and Daman and Diu",
	"Delhi", "Jammu and Kashmir", "Ladakh", "Lakshadweep", "Puducherry",
}

// ParseJurisdiction matches a state or UT name case-insensitively. Anything
// unrecognised, including "central", "national" and "India", is Central.
func ParseJurisdiction(s string) string {
	norm := strings.TrimSpace(s)
	for _, j := range Jurisdictions {
		if strings.EqualFold(norm, j) {
			return j
		}
	}
	return JurisdictionCentral
}

// Scheme is a welfare program candidate as returned by discovery.
type Scheme struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	BenefitAmount     string          `json:"benefitAmount,omitempty"`
	Category          SchemeCategory  `json:"category"`
	Jurisdiction      string          `json:"jurisdiction"`
	EligibilityURL    string          `json:"eligibilityUrl,omitempty"`
	ApplicationURL    string          `json:"applicationUrl,omitempty"`
	Eligibility       EligibilityFlag `json:"eligibility"`
	EligibilityReason string          `json:"eligibilityReason,omitempty"`
	Requirements      []string        `json:"requirements"`
	Benefits          []string        `json:"benefits"`
	LastUpdated       string          `json:"lastUpdated,omitempty"`
}

var schemeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("scheme-finder/schemes"))

// SchemeID derives a stable identifier so the same model output always maps
// to the same scheme.
func SchemeID(jurisdiction, title string) string {
	key := strings.ToLower(strings.TrimSpace(jurisdiction)) + "|" + strings.ToLower(strings.TrimSpace(title))
	return uuid.NewSHA1(schemeNamespace, []byte(key)).String()
}
