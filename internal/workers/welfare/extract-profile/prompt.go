// internal/workers/welfare/extract-profile/prompt.go
package extractprofile

import (
	"fmt"
	"strings"

	"scheme-finder/internal/models"
)

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%q", string(v))
	}
	return strings.Join(parts, ", ")
}

func systemPrompt() string {
	var b strings.Builder
	b.WriteString("You extract applicant details for Indian government welfare schemes from noisy text ")
	b.WriteString("(OCR output, speech transcripts or typed notes).\n")
	b.WriteString("Return ONLY a JSON object with exactly these keys:\n")
	b.WriteString(`{"name": string, "age": integer, "location": {"state": string, "district": string, "pincode": string}, `)
	b.WriteString(`"occupation": string, "annualIncome": number, "category": string, "gender": string, "maritalStatus": string, `)
	b.WriteString(`"isDisabled": boolean, "isMinority": boolean, "isBPL": boolean, "ownsLand": boolean, "education": string, `)
	b.WriteString(`"familySize": integer, "hasBankAccount": boolean, "hasAadhaar": boolean}` + "\n")
	fmt.Fprintf(&b, "category must be one of %s.\n", joinEnum(models.Categories))
	fmt.Fprintf(&b, "gender must be one of %s.\n", joinEnum(models.Genders))
	fmt.Fprintf(&b, "maritalStatus must be one of %s.\n", joinEnum(models.MaritalStatuses))
	b.WriteString("annualIncome is in rupees as a plain number.\n")
	b.WriteString("Use null for anything the text does not state. Never guess, never use false or 0 for unknown values.\n")
	b.WriteString("Do not add commentary or markdown.")
	return b.String()
}

func userPrompt(rawText string) string {
	return "Text:\n" + rawText
}
