// internal/models/profile.go
package models

import (
	"encoding/json"
	"strings"
)

type Category string

const (
	CategoryGeneral Category = "General"
	CategoryOBC     Category = "OBC"
	CategorySC      Category = "SC"
	CategoryST      Category = "ST"
	CategoryEWS     Category = "EWS"
)

var Categories = []Category{CategoryGeneral, CategoryOBC, CategorySC, CategoryST, CategoryEWS}

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

type MaritalStatus string

const (
	MaritalSingle    MaritalStatus = "Single"
	MaritalMarried   MaritalStatus = "Married"
	MaritalWidowed   MaritalStatus = "Widowed"
	MaritalDivorced  MaritalStatus = "Divorced"
	MaritalSeparated MaritalStatus = "Separated"
)

var MaritalStatuses = []MaritalStatus{MaritalSingle, MaritalMarried, MaritalWidowed, MaritalDivorced, MaritalSeparated}

// Location is the residential address as far as it is known.
type Location struct {
	State    *string `json:"state"`
	District *string `json:"district"`
	Pincode  *string `json:"pincode"`
}

// Profile is the sparse applicant record built from free text. A nil field
// means the value is unknown; zero values are real answers (an income of 0
// is not the same as no income given).
type Profile struct {
	Name           *string        `json:"name"`
	Age            *int           `json:"age"`
	Location       *Location      `json:"location"`
	Occupation     *string        `json:"occupation"`
	AnnualIncome   *float64       `json:"annualIncome"`
	Category       *Category      `json:"category"`
	Gender         *Gender        `json:"gender"`
	MaritalStatus  *MaritalStatus `json:"maritalStatus"`
	IsDisabled     *bool          `json:"isDisabled"`
	IsMinority     *bool          `json:"isMinority"`
	IsBPL          *bool          `json:"isBPL"`
	OwnsLand       *bool          `json:"ownsLand"`
	Education      *string        `json:"education"`
	FamilySize     *int           `json:"familySize"`
	HasBankAccount *bool          `json:"hasBankAccount"`
	HasAadhaar     *bool          `json:"hasAadhaar"`
}

// UnmarshalJSON canonicalises the enum fields. A value outside the closed
// vocabulary decodes as unknown rather than being carried through.
func (p *Profile) UnmarshalJSON(data []byte) error {
	type plain Profile
	aux := struct {
		*plain
		Category      *string `json:"category"`
		Gender        *string `json:"gender"`
		MaritalStatus *string `json:"maritalStatus"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	p.Category, p.Gender, p.MaritalStatus = nil, nil, nil
	if aux.Category != nil {
		if c, ok := ParseCategory(*aux.Category); ok {
			p.Category = &c
		}
	}
	if aux.Gender != nil {
		if g, ok := ParseGender(*aux.Gender); ok {
			p.Gender = &g
		}
	}
	if aux.MaritalStatus != nil {
		if m, ok := ParseMaritalStatus(*aux.MaritalStatus); ok {
			p.MaritalStatus = &m
		}
	}
	return nil
}

// KnownFields counts the populated fields, nested location fields included.
func (p *Profile) KnownFields() int {
	if p == nil {
		return 0
	}
	n := 0
	for _, set := range []bool{
		p.Name != nil, p.Age != nil, p.Occupation != nil, p.AnnualIncome != nil,
		p.Category != nil, p.Gender != nil, p.MaritalStatus != nil,
		p.IsDisabled != nil, p.IsMinority != nil, p.IsBPL != nil, p.OwnsLand != nil,
		p.Education != nil, p.FamilySize != nil, p.HasBankAccount != nil, p.HasAadhaar != nil,
	} {
		if set {
			n++
		}
	}
	if p.Location != nil {
		for _, set := range []bool{p.Location.State != nil, p.Location.District != nil, p.Location.Pincode != nil} {
			if set {
				n++
			}
		}
	}
	return n
}

// ParseCategory matches case-insensitively against the closed vocabulary.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, true
		}
	}
	return "", false
}

func ParseGender(s string) (Gender, bool) {
	for _, g := range Genders {
		if strings.EqualFold(strings.TrimSpace(s), string(g)) {
			return g, true
		}
	}
	return "", false
}

func ParseMaritalStatus(s string) (MaritalStatus, bool) {
	for _, m := range MaritalStatuses {
		if strings.EqualFold(strings.TrimSpace(s), string(m)) {
			return m, true
		}
	}
	return "", false
}
