// internal/workers/welfare/discover-schemes/prompt.go
package discoverschemes

import (
	"encoding/json"
	"fmt"
	"strings"

	"scheme-finder/internal/models"
)

const schemeShape = `{"id": string, "title": string, "description": string, "benefitAmount": string, ` +
	`"category": string, "jurisdiction": string, "eligibilityUrl": string, "applicationUrl": string, ` +
	`"eligibility": "eligible" | "not-eligible" | "unknown", "eligibilityReason": string, ` +
	`"requirements": [string], "benefits": [string], "lastUpdated": string}`

func systemPrompt() string {
	categories := make([]string, len(models.SchemeCategories))
	for i, c := range models.SchemeCategories {
		categories[i] = string(c)
	}

	var b strings.Builder
	b.WriteString("You are an expert on Indian central and state government welfare schemes.\n")
	b.WriteString("Return ONLY a JSON array. Each element has this shape:\n")
	b.WriteString(schemeShape + "\n")
	fmt.Fprintf(&b, "category is one of: %s.\n", strings.Join(categories, ", "))
	b.WriteString(`jurisdiction is the name of an Indian state or union territory, or "Central" for national schemes.` + "\n")
	b.WriteString("Only list schemes that actually exist. Do not add commentary or markdown.")
	return b.String()
}

func profilePrompt(profile *models.Profile, maxResults int) string {
	profileJSON, _ := json.MarshalIndent(profile, "", "  ")

	var b strings.Builder
	b.WriteString("Applicant profile (null means unknown):\n")
	b.Write(profileJSON)
	fmt.Fprintf(&b, "\n\nList up to %d schemes for which eligibility can be judged from this profile.\n", maxResults)
	b.WriteString(`For each, set "eligibility" to "eligible", "not-eligible" or "unknown" and always explain the decision in "eligibilityReason".` + "\n")
	b.WriteString(`Use "unknown" when the profile lacks the attribute the scheme depends on.`)
	return b.String()
}

func popularPrompt(maxResults int) string {
	return fmt.Sprintf(
		"List the %d most broadly relevant welfare schemes for Indian citizens, covering several categories.\n"+
			`No applicant profile is available, so set "eligibility" to "unknown" and leave "eligibilityReason" empty for every scheme.`,
		maxResults,
	)
}
