// internal/workers/welfare/extract-profile/parse.go
package extractprofile

import (
	"encoding/json"
	"fmt"

	"scheme-finder/internal/common/coerce"
	"scheme-finder/internal/common/completion"
	"scheme-finder/internal/models"
)

// ParseProfile decodes completion output into a Profile. Unknown keys are
// ignored and values that do not fit a field become nil; only output that is
// not a JSON object is an error.
func ParseProfile(raw string) (models.Profile, error) {
	var decoded interface{}
	if err := json.Unmarshal([]byte(completion.Sanitize(raw)), &decoded); err != nil {
		return models.Profile{}, fmt.Errorf("%w: %v", completion.ErrMalformedOutput, err)
	}
	obj, ok := decoded.(map[string]interface{})
	if !ok {
		return models.Profile{}, fmt.Errorf("%w: expected a JSON object, got %s", completion.ErrMalformedOutput, jsonKind(decoded))
	}
	// Some models nest the answer under a single "profile" key.
	if inner, ok := obj["profile"].(map[string]interface{}); ok && len(obj) == 1 {
		obj = inner
	}

	p := models.Profile{
		Name:           coerce.String(obj["name"]),
		Age:            age(obj["age"]),
		Location:       location(obj),
		Occupation:     coerce.String(obj["occupation"]),
		AnnualIncome:   coerce.Float(obj["annualIncome"]),
		IsDisabled:     coerce.Bool(obj["isDisabled"]),
		IsMinority:     coerce.Bool(obj["isMinority"]),
		IsBPL:          coerce.Bool(obj["isBPL"]),
		OwnsLand:       coerce.Bool(obj["ownsLand"]),
		Education:      coerce.String(obj["education"]),
		FamilySize:     positive(coerce.Int(obj["familySize"])),
		HasBankAccount: coerce.Bool(obj["hasBankAccount"]),
		HasAadhaar:     coerce.Bool(obj["hasAadhaar"]),
	}

	if s, ok := obj["category"].(string); ok {
		if c, ok := models.ParseCategory(s); ok {
			p.Category = &c
		}
	}
	if s, ok := obj["gender"].(string); ok {
		if g, ok := models.ParseGender(s); ok {
			p.Gender = &g
		}
	}
	if s, ok := obj["maritalStatus"].(string); ok {
		if m, ok := models.ParseMaritalStatus(s); ok {
			p.MaritalStatus = &m
		}
	}
	return p, nil
}

func age(v interface{}) *int {
	a := coerce.Int(v)
	if a == nil || *a > 130 {
		return nil
	}
	return a
}

func positive(v *int) *int {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

func location(obj map[string]interface{}) *models.Location {
	src, nested := obj["location"].(map[string]interface{})
	if !nested {
		src = obj
	}
	loc := &models.Location{
		State:    coerce.String(src["state"]),
		District: coerce.String(src["district"]),
		Pincode:  coerce.String(src["pincode"]),
	}
	if loc.State == nil && loc.District == nil && loc.Pincode == nil {
		return nil
	}
	return loc
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case []interface{}:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
