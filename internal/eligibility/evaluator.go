package eligibility

import (
	"fmt"

	"scheme-eligibility/internal/models"
)

// reasonSuffixes maps an operator to its {passed, failed} reason suffix.
var reasonSuffixes = map[models.Operator][2]string{
	models.OperatorEquals:      {"Verified", "Not matching"},
	models.OperatorLessThan:    {"Within limit", "Exceeds limit"},
	models.OperatorGreaterThan: {"Above minimum", "Below minimum"},
	models.OperatorIncludes:    {"Eligible category", "Category not eligible"},
	models.OperatorBetween:     {"Within range", "Outside range"},
}

// Evaluate checks one criterion against a profile. It never panics: a
// criterion that cannot be evaluated yields a failed result whose reason
// names the defect.
func Evaluate(c models.EligibilityCriterion, profile *models.UserProfile) models.RuleEvaluationResult {
	result, _ := Check(c, profile)
	return result
}

// Check is Evaluate plus the data defect, if any, that forced a failed result.
func Check(c models.EligibilityCriterion, profile *models.UserProfile) (models.RuleEvaluationResult, error) {
	if profile == nil {
		profile = &models.UserProfile{}
	}

	suffix, ok := reasonSuffixes[c.Operator]
	if !ok {
		err := fmt.Errorf("%w %q", models.ErrUnknownOperator, c.Operator)
		return indeterminate(c, err), err
	}

	field, ok := LookupField(c.Field)
	if !ok {
		err := fmt.Errorf("%w %q", ErrUnknownField, c.Field)
		return indeterminate(c, err), err
	}

	actual, present := field.Get(profile)
	passed, err := compare(c, actual, present)
	if err != nil {
		return indeterminate(c, err), err
	}

	reason := suffix[1]
	if passed {
		reason = suffix[0]
	}
	return models.RuleEvaluationResult{
		CriterionID: c.ID,
		Passed:      passed,
		Reason:      fmt.Sprintf("%s - %s", c.Description, reason),
	}, nil
}

func compare(c models.EligibilityCriterion, actual models.Scalar, present bool) (bool, error) {
	switch c.Operator {
	case models.OperatorEquals:
		v, ok := c.Value.(models.EqualsValue)
		if !ok {
			return false, shapeError(c)
		}
		return present && actual.Equal(v.Value), nil

	case models.OperatorLessThan, models.OperatorGreaterThan:
		v, ok := c.Value.(models.ThresholdValue)
		if !ok {
			return false, shapeError(c)
		}
		if !present || actual.Kind != models.KindNumber {
			return false, nil
		}
		if c.Operator == models.OperatorLessThan {
			return actual.Num < v.Limit, nil
		}
		return actual.Num > v.Limit, nil

	case models.OperatorIncludes:
		switch v := c.Value.(type) {
		case models.SetValue:
			if !present {
				return false, nil
			}
			for _, candidate := range v.Values {
				if actual.Equal(candidate) {
					return true, nil
				}
			}
			return false, nil
		case models.EqualsValue:
			return present && actual.Equal(v.Value), nil
		default:
			return false, shapeError(c)
		}

	case models.OperatorBetween:
		v, ok := c.Value.(models.RangeValue)
		if !ok {
			return false, shapeError(c)
		}
		if !present || actual.Kind != models.KindNumber {
			return false, nil
		}
		return v.Min <= actual.Num && actual.Num <= v.Max, nil
	}
	return false, fmt.Errorf("%w %q", models.ErrUnknownOperator, c.Operator)
}

func shapeError(c models.EligibilityCriterion) error {
	return fmt.Errorf("%w: %T for operator %s", models.ErrMalformedValue, c.Value, c.Operator)
}

func indeterminate(c models.EligibilityCriterion, err error) models.RuleEvaluationResult {
	return models.RuleEvaluationResult{
		CriterionID: c.ID,
		Passed:      false,
		Reason:      fmt.Sprintf("%s - Unable to evaluate: %v", c.Description, err),
	}
}
