// internal/workers/welfare/resolve-eligibility/prompt.go
package resolveeligibility

import (
	"encoding/json"
	"strings"

	"scheme-finder/internal/models"
)

const systemPrompt = `You assess whether an applicant qualifies for one Indian government welfare scheme.
Return ONLY a JSON object:
{"eligible": true | false | null, "reason": string, "missingRequirements": [string], "score": integer 0-100}
"score" is how well the applicant matches the scheme criteria. Use null for "eligible" when the profile lacks the
attributes needed to decide, and list those attributes or documents in "missingRequirements".
Always explain the decision in "reason". Do not add commentary or markdown.`

func userPrompt(profile models.Profile, scheme models.Scheme) string {
	schemeJSON, _ := json.MarshalIndent(scheme, "", "  ")
	profileJSON, _ := json.MarshalIndent(profile, "", "  ")

	var b strings.Builder
	b.WriteString("Scheme:\n")
	b.Write(schemeJSON)
	b.WriteString("\n\nApplicant profile (null means unknown):\n")
	b.Write(profileJSON)
	return b.String()
}
