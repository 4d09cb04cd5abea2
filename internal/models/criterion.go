package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

type Operator string

const (
	OperatorEquals      Operator = "equals"
	OperatorLessThan    Operator = "lessThan"
	OperatorGreaterThan Operator = "greaterThan"
	OperatorIncludes    Operator = "includes"
	OperatorBetween     Operator = "between"
)

func (o Operator) IsValid() bool {
	switch o {
	case OperatorEquals, OperatorLessThan, OperatorGreaterThan, OperatorIncludes, OperatorBetween:
		return true
	}
	return false
}

var (
	ErrUnknownOperator = errors.New("unknown operator")
	ErrMalformedValue  = errors.New("malformed criterion value")
)

// CriterionValue is the operand of a criterion. Its concrete type is fixed by
// the operator when the catalog is loaded.
type CriterionValue interface {
	Raw() interface{}
	isCriterionValue()
}

// EqualsValue is the operand of equals, and of includes with a scalar.
type EqualsValue struct {
	Value Scalar
}

// ThresholdValue is the numeric limit of lessThan and greaterThan.
type ThresholdValue struct {
	Limit float64
}

// RangeValue is the inclusive [Min, Max] pair of between.
type RangeValue struct {
	Min float64
	Max float64
}

// SetValue is the list operand of includes.
type SetValue struct {
	Values []Scalar
}

func (v EqualsValue) Raw() interface{}    { return v.Value.Raw() }
func (v ThresholdValue) Raw() interface{} { return v.Limit }
func (v RangeValue) Raw() interface{}     { return []float64{v.Min, v.Max} }
func (v SetValue) Raw() interface{} {
	out := make([]interface{}, len(v.Values))
	for i, s := range v.Values {
		out[i] = s.Raw()
	}
	return out
}

func (EqualsValue) isCriterionValue()    {}
func (ThresholdValue) isCriterionValue() {}
func (RangeValue) isCriterionValue()     {}
func (SetValue) isCriterionValue()       {}

// ParseCriterionValue builds the tagged value for an operator from a decoded
// JSON/YAML value.
func ParseCriterionValue(op Operator, raw interface{}) (CriterionValue, error) {
	switch op {
	case OperatorEquals:
		s, err := ScalarFrom(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: equals: %v", ErrMalformedValue, err)
		}
		return EqualsValue{Value: s}, nil

	case OperatorLessThan, OperatorGreaterThan:
		s, err := ScalarFrom(raw)
		if err != nil || s.Kind != KindNumber {
			return nil, fmt.Errorf("%w: %s requires a number, got %v", ErrMalformedValue, op, raw)
		}
		return ThresholdValue{Limit: s.Num}, nil

	case OperatorIncludes:
		list, ok := raw.([]interface{})
		if !ok {
			s, err := ScalarFrom(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: includes: %v", ErrMalformedValue, err)
			}
			return EqualsValue{Value: s}, nil
		}
		values := make([]Scalar, 0, len(list))
		for _, item := range list {
			s, err := ScalarFrom(item)
			if err != nil {
				return nil, fmt.Errorf("%w: includes: %v", ErrMalformedValue, err)
			}
			values = append(values, s)
		}
		return SetValue{Values: values}, nil

	case OperatorBetween:
		list, ok := raw.([]interface{})
		if !ok || len(list) != 2 {
			return nil, fmt.Errorf("%w: between requires a [min, max] pair, got %v", ErrMalformedValue, raw)
		}
		lo, err1 := ScalarFrom(list[0])
		hi, err2 := ScalarFrom(list[1])
		if err1 != nil || err2 != nil || lo.Kind != KindNumber || hi.Kind != KindNumber {
			return nil, fmt.Errorf("%w: between bounds must be numbers, got %v", ErrMalformedValue, raw)
		}
		if lo.Num > hi.Num {
			return nil, fmt.Errorf("%w: between min %v exceeds max %v", ErrMalformedValue, lo.Num, hi.Num)
		}
		return RangeValue{Min: lo.Num, Max: hi.Num}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownOperator, op)
}

// EligibilityCriterion is one declarative rule owned by a scheme.
type EligibilityCriterion struct {
	ID          string
	Field       string
	Operator    Operator
	Value       CriterionValue
	Description string
}

type criterionJSON struct {
	ID          string      `json:"id"`
	Field       string      `json:"field"`
	Operator    Operator    `json:"operator"`
	Value       interface{} `json:"value"`
	Description string      `json:"description"`
}

func (c EligibilityCriterion) MarshalJSON() ([]byte, error) {
	var raw interface{}
	if c.Value != nil {
		raw = c.Value.Raw()
	}
	return json.Marshal(criterionJSON{
		ID:          c.ID,
		Field:       c.Field,
		Operator:    c.Operator,
		Value:       raw,
		Description: c.Description,
	})
}

func (c *EligibilityCriterion) UnmarshalJSON(data []byte) error {
	var aux criterionJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	value, err := ParseCriterionValue(aux.Operator, aux.Value)
	if err != nil {
		return fmt.Errorf("criterion %s: %w", aux.ID, err)
	}
	*c = EligibilityCriterion{
		ID:          aux.ID,
		Field:       aux.Field,
		Operator:    aux.Operator,
		Value:       value,
		Description: aux.Description,
	}
	return nil
}
