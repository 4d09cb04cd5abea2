package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scheme-eligibility/internal/models"
)

func criterion(t *testing.T, id, field string, op models.Operator, raw interface{}, desc string) models.EligibilityCriterion {
	t.Helper()
	value, err := models.ParseCriterionValue(op, raw)
	require.NoError(t, err)
	return models.EligibilityCriterion{ID: id, Field: field, Operator: op, Value: value, Description: desc}
}

// ==========================
// Operator Semantics
// ==========================

func TestEvaluate_Operators(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		op         models.Operator
		value      interface{}
		profile    models.UserProfile
		wantPassed bool
		wantReason string
	}{
		{
			name:       "equals bool verified",
			field:      "hasLand",
			op:         models.OperatorEquals,
			value:      true,
			profile:    models.UserProfile{HasLand: models.Ptr(true)},
			wantPassed: true,
			wantReason: "Rule - Verified",
		},
		{
			name:       "equals bool not matching",
			field:      "hasLand",
			op:         models.OperatorEquals,
			value:      true,
			profile:    models.UserProfile{HasLand: models.Ptr(false)},
			wantReason: "Rule - Not matching",
		},
		{
			name:       "equals missing field is not equal to false",
			field:      "hasBPLCard",
			op:         models.OperatorEquals,
			value:      false,
			profile:    models.UserProfile{},
			wantReason: "Rule - Not matching",
		},
		{
			name:       "equals enum string",
			field:      "category",
			op:         models.OperatorEquals,
			value:      "ews",
			profile:    models.UserProfile{Category: models.Ptr(models.SocialCategoryEWS)},
			wantPassed: true,
			wantReason: "Rule - Verified",
		},
		{
			name:       "lessThan within limit",
			field:      "annualIncome",
			op:         models.OperatorLessThan,
			value:      500000,
			profile:    models.UserProfile{AnnualIncome: models.Ptr(250000.0)},
			wantPassed: true,
			wantReason: "Rule - Within limit",
		},
		{
			name:       "lessThan equal value exceeds limit",
			field:      "landHolding",
			op:         models.OperatorLessThan,
			value:      2,
			profile:    models.UserProfile{LandHolding: models.Ptr(2.0)},
			wantReason: "Rule - Exceeds limit",
		},
		{
			name:       "lessThan missing field fails",
			field:      "annualIncome",
			op:         models.OperatorLessThan,
			value:      500000,
			profile:    models.UserProfile{},
			wantReason: "Rule - Exceeds limit",
		},
		{
			name:       "greaterThan above minimum",
			field:      "age",
			op:         models.OperatorGreaterThan,
			value:      60,
			profile:    models.UserProfile{Age: models.Ptr(65)},
			wantPassed: true,
			wantReason: "Rule - Above minimum",
		},
		{
			name:       "greaterThan missing field fails",
			field:      "age",
			op:         models.OperatorGreaterThan,
			value:      0,
			profile:    models.UserProfile{},
			wantReason: "Rule - Below minimum",
		},
		{
			name:       "includes list member",
			field:      "category",
			op:         models.OperatorIncludes,
			value:      []interface{}{"sc", "st"},
			profile:    models.UserProfile{Category: models.Ptr(models.SocialCategoryST)},
			wantPassed: true,
			wantReason: "Rule - Eligible category",
		},
		{
			name:       "includes list non member",
			field:      "category",
			op:         models.OperatorIncludes,
			value:      []interface{}{"sc", "st"},
			profile:    models.UserProfile{Category: models.Ptr(models.SocialCategoryGeneral)},
			wantReason: "Rule - Category not eligible",
		},
		{
			name:       "includes scalar falls back to equals",
			field:      "gender",
			op:         models.OperatorIncludes,
			value:      "female",
			profile:    models.UserProfile{Gender: models.Ptr(models.GenderFemale)},
			wantPassed: true,
			wantReason: "Rule - Eligible category",
		},
		{
			name:       "between lower bound inclusive",
			field:      "age",
			op:         models.OperatorBetween,
			value:      []interface{}{18, 25},
			profile:    models.UserProfile{Age: models.Ptr(18)},
			wantPassed: true,
			wantReason: "Rule - Within range",
		},
		{
			name:       "between upper bound inclusive",
			field:      "age",
			op:         models.OperatorBetween,
			value:      []interface{}{18, 25},
			profile:    models.UserProfile{Age: models.Ptr(25)},
			wantPassed: true,
			wantReason: "Rule - Within range",
		},
		{
			name:       "between outside range",
			field:      "age",
			op:         models.OperatorBetween,
			value:      []interface{}{18, 25},
			profile:    models.UserProfile{Age: models.Ptr(26)},
			wantReason: "Rule - Outside range",
		},
		{
			name:       "between missing field fails",
			field:      "age",
			op:         models.OperatorBetween,
			value:      []interface{}{18, 25},
			profile:    models.UserProfile{},
			wantReason: "Rule - Outside range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := criterion(t, "c-1", tt.field, tt.op, tt.value, "Rule")
			result := Evaluate(c, &tt.profile)

			assert.Equal(t, "c-1", result.CriterionID)
			assert.Equal(t, tt.wantPassed, result.Passed)
			assert.Equal(t, tt.wantReason, result.Reason)
		})
	}
}

// ==========================
// Data Defects
// ==========================

func TestCheck_DataDefects(t *testing.T) {
	profile := &models.UserProfile{Age: models.Ptr(30)}

	tests := []struct {
		name      string
		criterion models.EligibilityCriterion
		wantErr   error
	}{
		{
			name: "unknown operator",
			criterion: models.EligibilityCriterion{
				ID: "x", Field: "age", Operator: "startsWith",
				Value: models.EqualsValue{Value: models.NumberScalar(1)}, Description: "Odd",
			},
			wantErr: models.ErrUnknownOperator,
		},
		{
			name: "unknown field",
			criterion: models.EligibilityCriterion{
				ID: "x", Field: "salary", Operator: models.OperatorLessThan,
				Value: models.ThresholdValue{Limit: 10}, Description: "Odd",
			},
			wantErr: ErrUnknownField,
		},
		{
			name: "between with threshold value",
			criterion: models.EligibilityCriterion{
				ID: "x", Field: "age", Operator: models.OperatorBetween,
				Value: models.ThresholdValue{Limit: 10}, Description: "Odd",
			},
			wantErr: models.ErrMalformedValue,
		},
		{
			name: "nil value",
			criterion: models.EligibilityCriterion{
				ID: "x", Field: "age", Operator: models.OperatorEquals, Description: "Odd",
			},
			wantErr: models.ErrMalformedValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result models.RuleEvaluationResult
			var err error
			assert.NotPanics(t, func() {
				result, err = Check(tt.criterion, profile)
			})

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, result.Passed)
			assert.Contains(t, result.Reason, "Odd - Unable to evaluate")
		})
	}
}

func TestEvaluate_NilProfile(t *testing.T) {
	c := criterion(t, "c", "hasLand", models.OperatorEquals, true, "Owns land")
	result := Evaluate(c, nil)
	assert.False(t, result.Passed)
	assert.Equal(t, "Owns land - Not matching", result.Reason)
}

// ==========================
// Field Validation
// ==========================

func TestValidateCriterion(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		op      models.Operator
		value   interface{}
		wantErr error
	}{
		{name: "valid bool equals", field: "hasLand", op: models.OperatorEquals, value: true},
		{name: "valid range", field: "age", op: models.OperatorBetween, value: []interface{}{18, 25}},
		{name: "valid set", field: "education", op: models.OperatorIncludes, value: []interface{}{"graduate", "postgraduate"}},
		{name: "misspelled field", field: "hasLnad", op: models.OperatorEquals, value: true, wantErr: ErrUnknownField},
		{name: "kind mismatch", field: "hasLand", op: models.OperatorEquals, value: "yes", wantErr: models.ErrMalformedValue},
		{name: "threshold on string field", field: "state", op: models.OperatorLessThan, value: 3, wantErr: models.ErrMalformedValue},
		{name: "set with mixed kinds", field: "category", op: models.OperatorIncludes, value: []interface{}{"sc", 1}, wantErr: models.ErrMalformedValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := criterion(t, "v", tt.field, tt.op, tt.value, "d")
			err := ValidateCriterion(c)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFieldNames_Sorted(t *testing.T) {
	names := FieldNames()
	assert.Len(t, names, 16)
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "landHolding")
}
