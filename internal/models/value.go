package models

import (
	"fmt"
	"strconv"
)

type ScalarKind int

const (
	KindString ScalarKind = iota + 1
	KindNumber
	KindBool
)

func (k ScalarKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	default:
		return "unknown"
	}
}

// Scalar is a single typed profile or criterion value.
type Scalar struct {
	Kind ScalarKind
	Str  string
	Num  float64
	Bool bool
}

func StringScalar(s string) Scalar { return Scalar{Kind: KindString, Str: s} }
func NumberScalar(n float64) Scalar { return Scalar{Kind: KindNumber, Num: n} }
func BoolScalar(b bool) Scalar { return Scalar{Kind: KindBool, Bool: b} }

// Equal is strict: values of different kinds are never equal.
func (s Scalar) Equal(o Scalar) bool {
	if s.Kind != o.Kind {
		return false
	}
	switch s.Kind {
	case KindString:
		return s.Str == o.Str
	case KindNumber:
		return s.Num == o.Num
	case KindBool:
		return s.Bool == o.Bool
	}
	return false
}

// Raw returns the plain Go value for serialization.
func (s Scalar) Raw() interface{} {
	switch s.Kind {
	case KindString:
		return s.Str
	case KindNumber:
		return s.Num
	case KindBool:
		return s.Bool
	}
	return nil
}

func (s Scalar) String() string {
	switch s.Kind {
	case KindString:
		return s.Str
	case KindNumber:
		return strconv.FormatFloat(s.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(s.Bool)
	}
	return "<invalid>"
}

// ScalarFrom converts a decoded JSON/YAML value into a Scalar.
func ScalarFrom(v interface{}) (Scalar, error) {
	switch t := v.(type) {
	case string:
		return StringScalar(t), nil
	case bool:
		return BoolScalar(t), nil
	case int:
		return NumberScalar(float64(t)), nil
	case int32:
		return NumberScalar(float64(t)), nil
	case int64:
		return NumberScalar(float64(t)), nil
	case uint64:
		return NumberScalar(float64(t)), nil
	case float32:
		return NumberScalar(float64(t)), nil
	case float64:
		return NumberScalar(t), nil
	default:
		return Scalar{}, fmt.Errorf("unsupported value type %T", v)
	}
}
