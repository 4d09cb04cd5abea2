package models

import (
	"errors"
	"fmt"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type SocialCategory string

const (
	SocialCategoryGeneral SocialCategory = "general"
	SocialCategoryOBC     SocialCategory = "obc"
	SocialCategorySC      SocialCategory = "sc"
	SocialCategoryST      SocialCategory = "st"
	SocialCategoryEWS     SocialCategory = "ews"
)

type EducationLevel string

const (
	EducationNone            EducationLevel = "none"
	EducationPrimary         EducationLevel = "primary"
	EducationSecondary       EducationLevel = "secondary"
	EducationHigherSecondary EducationLevel = "higher_secondary"
	EducationGraduate        EducationLevel = "graduate"
	EducationPostgraduate    EducationLevel = "postgraduate"
)

var ErrInvalidProfile = errors.New("invalid profile")

// UserProfile is the citizen-supplied attribute record. Every field is
// optional; nil means "not provided".
type UserProfile struct {
	Name            *string         `json:"name,omitempty" yaml:"name,omitempty"`
	Age             *int            `json:"age,omitempty" yaml:"age,omitempty"`
	Gender          *Gender         `json:"gender,omitempty" yaml:"gender,omitempty"`
	AnnualIncome    *float64        `json:"annualIncome,omitempty" yaml:"annualIncome,omitempty"`
	State           *string         `json:"state,omitempty" yaml:"state,omitempty"`
	Category        *SocialCategory `json:"category,omitempty" yaml:"category,omitempty"`
	Occupation      *string         `json:"occupation,omitempty" yaml:"occupation,omitempty"`
	IsRural         *bool           `json:"isRural,omitempty" yaml:"isRural,omitempty"`
	HasLand         *bool           `json:"hasLand,omitempty" yaml:"hasLand,omitempty"`
	LandHolding     *float64        `json:"landHolding,omitempty" yaml:"landHolding,omitempty"`
	FamilyMembers   *int            `json:"familyMembers,omitempty" yaml:"familyMembers,omitempty"`
	HasDisability   *bool           `json:"hasDisability,omitempty" yaml:"hasDisability,omitempty"`
	IsWidow         *bool           `json:"isWidow,omitempty" yaml:"isWidow,omitempty"`
	IsSeniorCitizen *bool           `json:"isSeniorCitizen,omitempty" yaml:"isSeniorCitizen,omitempty"`
	HasBPLCard      *bool           `json:"hasBPLCard,omitempty" yaml:"hasBPLCard,omitempty"`
	Education       *EducationLevel `json:"education,omitempty" yaml:"education,omitempty"`
}

// Merge returns a copy of p with every field present in delta overwritten.
func (p UserProfile) Merge(delta UserProfile) UserProfile {
	out := p
	if delta.Name != nil {
		out.Name = delta.Name
	}
	if delta.Age != nil {
		out.Age = delta.Age
	}
	if delta.Gender != nil {
		out.Gender = delta.Gender
	}
	if delta.AnnualIncome != nil {
		out.AnnualIncome = delta.AnnualIncome
	}
	if delta.State != nil {
		out.State = delta.State
	}
	if delta.Category != nil {
		out.Category = delta.Category
	}
	if delta.Occupation != nil {
		out.Occupation = delta.Occupation
	}
	if delta.IsRural != nil {
		out.IsRural = delta.IsRural
	}
	if delta.HasLand != nil {
		out.HasLand = delta.HasLand
	}
	if delta.LandHolding != nil {
		out.LandHolding = delta.LandHolding
	}
	if delta.FamilyMembers != nil {
		out.FamilyMembers = delta.FamilyMembers
	}
	if delta.HasDisability != nil {
		out.HasDisability = delta.HasDisability
	}
	if delta.IsWidow != nil {
		out.IsWidow = delta.IsWidow
	}
	if delta.IsSeniorCitizen != nil {
		out.IsSeniorCitizen = delta.IsSeniorCitizen
	}
	if delta.HasBPLCard != nil {
		out.HasBPLCard = delta.HasBPLCard
	}
	if delta.Education != nil {
		out.Education = delta.Education
	}
	return out
}

// IsEmpty reports whether no field is set.
func (p UserProfile) IsEmpty() bool {
	return p == UserProfile{}
}

// Validate checks enumerated and numeric fields.
func (p UserProfile) Validate() error {
	if p.Age != nil && (*p.Age < 0 || *p.Age > 150) {
		return fmt.Errorf("%w: age %d out of range", ErrInvalidProfile, *p.Age)
	}
	if p.Gender != nil {
		switch *p.Gender {
		case GenderMale, GenderFemale, GenderOther:
		default:
			return fmt.Errorf("%w: gender %q", ErrInvalidProfile, *p.Gender)
		}
	}
	if p.Category != nil {
		switch *p.Category {
		case SocialCategoryGeneral, SocialCategoryOBC, SocialCategorySC, SocialCategoryST, SocialCategoryEWS:
		default:
			return fmt.Errorf("%w: category %q", ErrInvalidProfile, *p.Category)
		}
	}
	if p.Education != nil {
		switch *p.Education {
		case EducationNone, EducationPrimary, EducationSecondary,
			EducationHigherSecondary, EducationGraduate, EducationPostgraduate:
		default:
			return fmt.Errorf("%w: education %q", ErrInvalidProfile, *p.Education)
		}
	}
	if p.AnnualIncome != nil && *p.AnnualIncome < 0 {
		return fmt.Errorf("%w: annual income cannot be negative", ErrInvalidProfile)
	}
	if p.LandHolding != nil && *p.LandHolding < 0 {
		return fmt.Errorf("%w: land holding cannot be negative", ErrInvalidProfile)
	}
	if p.FamilyMembers != nil && *p.FamilyMembers < 0 {
		return fmt.Errorf("%w: family members cannot be negative", ErrInvalidProfile)
	}
	return nil
}

// Ptr returns a pointer to v. Used to build profile deltas.
func Ptr[T any](v T) *T {
	return &v
}
