package eligibility

import (
	"errors"
	"fmt"
	"sort"

	"scheme-eligibility/internal/models"
)

var ErrUnknownField = errors.New("unknown profile field")

// FieldAccessor reads one profile attribute as a typed scalar. The bool result
// is false when the attribute was not provided.
type FieldAccessor struct {
	Name string
	Kind models.ScalarKind
	Get  func(p *models.UserProfile) (models.Scalar, bool)
}

var fieldAccessors = map[string]FieldAccessor{
	"name":            stringField("name", func(p *models.UserProfile) *string { return p.Name }),
	"age":             intField("age", func(p *models.UserProfile) *int { return p.Age }),
	"gender":          enumField("gender", func(p *models.UserProfile) *models.Gender { return p.Gender }),
	"annualIncome":    floatField("annualIncome", func(p *models.UserProfile) *float64 { return p.AnnualIncome }),
	"state":           stringField("state", func(p *models.UserProfile) *string { return p.State }),
	"category":        enumField("category", func(p *models.UserProfile) *models.SocialCategory { return p.Category }),
	"occupation":      stringField("occupation", func(p *models.UserProfile) *string { return p.Occupation }),
	"isRural":         boolField("isRural", func(p *models.UserProfile) *bool { return p.IsRural }),
	"hasLand":         boolField("hasLand", func(p *models.UserProfile) *bool { return p.HasLand }),
	"landHolding":     floatField("landHolding", func(p *models.UserProfile) *float64 { return p.LandHolding }),
	"familyMembers":   intField("familyMembers", func(p *models.UserProfile) *int { return p.FamilyMembers }),
	"hasDisability":   boolField("hasDisability", func(p *models.UserProfile) *bool { return p.HasDisability }),
	"isWidow":         boolField("isWidow", func(p *models.UserProfile) *bool { return p.IsWidow }),
	"isSeniorCitizen": boolField("isSeniorCitizen", func(p *models.UserProfile) *bool { return p.IsSeniorCitizen }),
	"hasBPLCard":      boolField("hasBPLCard", func(p *models.UserProfile) *bool { return p.HasBPLCard }),
	"education":       enumField("education", func(p *models.UserProfile) *models.EducationLevel { return p.Education }),
}

func LookupField(name string) (FieldAccessor, bool) {
	f, ok := fieldAccessors[name]
	return f, ok
}

// FieldNames lists every field a criterion may reference, sorted.
func FieldNames() []string {
	names := make([]string, 0, len(fieldAccessors))
	for name := range fieldAccessors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateCriterion checks that a criterion references a known field and that
// its operator and value fit that field's type. The catalog calls this at load
// time so that misspelled fields never reach evaluation.
func ValidateCriterion(c models.EligibilityCriterion) error {
	field, ok := LookupField(c.Field)
	if !ok {
		return fmt.Errorf("criterion %s: %w %q", c.ID, ErrUnknownField, c.Field)
	}
	if !c.Operator.IsValid() {
		return fmt.Errorf("criterion %s: %w %q", c.ID, models.ErrUnknownOperator, c.Operator)
	}

	switch v := c.Value.(type) {
	case models.EqualsValue:
		if c.Operator != models.OperatorEquals && c.Operator != models.OperatorIncludes {
			return valueMismatch(c)
		}
		if v.Value.Kind != field.Kind {
			return fmt.Errorf("criterion %s: %w: field %s is %s, value is %s",
				c.ID, models.ErrMalformedValue, c.Field, field.Kind, v.Value.Kind)
		}
	case models.SetValue:
		if c.Operator != models.OperatorIncludes {
			return valueMismatch(c)
		}
		for _, s := range v.Values {
			if s.Kind != field.Kind {
				return fmt.Errorf("criterion %s: %w: field %s is %s, list holds %s",
					c.ID, models.ErrMalformedValue, c.Field, field.Kind, s.Kind)
			}
		}
	case models.ThresholdValue:
		if c.Operator != models.OperatorLessThan && c.Operator != models.OperatorGreaterThan {
			return valueMismatch(c)
		}
		if field.Kind != models.KindNumber {
			return fmt.Errorf("criterion %s: %w: %s needs a numeric field, %s is %s",
				c.ID, models.ErrMalformedValue, c.Operator, c.Field, field.Kind)
		}
	case models.RangeValue:
		if c.Operator != models.OperatorBetween {
			return valueMismatch(c)
		}
		if field.Kind != models.KindNumber {
			return fmt.Errorf("criterion %s: %w: between needs a numeric field, %s is %s",
				c.ID, models.ErrMalformedValue, c.Field, field.Kind)
		}
	default:
		return fmt.Errorf("criterion %s: %w: missing value", c.ID, models.ErrMalformedValue)
	}
	return nil
}

func valueMismatch(c models.EligibilityCriterion) error {
	return fmt.Errorf("criterion %s: %w: %T does not fit operator %s",
		c.ID, models.ErrMalformedValue, c.Value, c.Operator)
}

func stringField(name string, get func(*models.UserProfile) *string) FieldAccessor {
	return FieldAccessor{Name: name, Kind: models.KindString, Get: func(p *models.UserProfile) (models.Scalar, bool) {
		v := get(p)
		if v == nil {
			return models.Scalar{}, false
		}
		return models.StringScalar(*v), true
	}}
}

func enumField[T ~string](name string, get func(*models.UserProfile) *T) FieldAccessor {
	return FieldAccessor{Name: name, Kind: models.KindString, Get: func(p *models.UserProfile) (models.Scalar, bool) {
		v := get(p)
		if v == nil {
			return models.Scalar{}, false
		}
		return models.StringScalar(string(*v)), true
	}}
}

func intField(name string, get func(*models.UserProfile) *int) FieldAccessor {
	return FieldAccessor{Name: name, Kind: models.KindNumber, Get: func(p *models.UserProfile) (models.Scalar, bool) {
		v := get(p)
		if v == nil {
			return models.Scalar{}, false
		}
		return models.NumberScalar(float64(*v)), true
	}}
}

func floatField(name string, get func(*models.UserProfile) *float64) FieldAccessor {
	return FieldAccessor{Name: name, Kind: models.KindNumber, Get: func(p *models.UserProfile) (models.Scalar, bool) {
		v := get(p)
		if v == nil {
			return models.Scalar{}, false
		}
		return models.NumberScalar(*v), true
	}}
}

func boolField(name string, get func(*models.UserProfile) *bool) FieldAccessor {
	return FieldAccessor{Name: name, Kind: models.KindBool, Get: func(p *models.UserProfile) (models.Scalar, bool) {
		v := get(p)
		if v == nil {
			return models.Scalar{}, false
		}
		return models.BoolScalar(*v), true
	}}
}
