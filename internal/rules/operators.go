package rules

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cast"
)

// OperatorHandler evaluates one criterion operator.
type OperatorHandler interface {
	Check(userValue, criterionValue any) bool
}

var operatorHandlers = map[Operator]OperatorHandler{
	OpEquals:      equalsHandler{},
	OpNotEquals:   notEqualsHandler{},
	OpGreaterThan: numericCompareHandler{cmp: func(a, b float64) bool { return a > b }},
	OpLessThan:    numericCompareHandler{cmp: func(a, b float64) bool { return a < b }},
	OpContains:    containsHandler{},
	OpNotContains: notContainsHandler{},
	OpSemVerGt:    semverCompareHandler{cmp: func(a, b *semver.Version) bool { return a.GreaterThan(b) }},
	OpSemVerLt:    semverCompareHandler{cmp: func(a, b *semver.Version) bool { return a.LessThan(b) }},
}

// Match applies op to the user value and the criterion value. Unknown
// operators never match.
func Match(userValue any, op Operator, criterionValue any) bool {
	h, ok := operatorHandlers[op]
	if !ok {
		return false
	}
	return h.Check(userValue, criterionValue)
}

// IsKnownOperator reports whether op has a handler.
func IsKnownOperator(op Operator) bool {
	_, ok := operatorHandlers[op]
	return ok
}

type equalsHandler struct{}

func (equalsHandler) Check(userValue, criterionValue any) bool {
	return strictEquals(userValue, criterionValue)
}

type notEqualsHandler struct{}

func (notEqualsHandler) Check(userValue, criterionValue any) bool {
	return !strictEquals(userValue, criterionValue)
}

type numericCompareHandler struct {
	cmp func(a, b float64) bool
}

func (h numericCompareHandler) Check(userValue, criterionValue any) bool {
	user, ok := toNumber(userValue)
	if !ok {
		return false
	}
	criterion, ok := toNumber(criterionValue)
	if !ok {
		return false
	}
	return h.cmp(user, criterion)
}

type containsHandler struct{}

func (containsHandler) Check(userValue, criterionValue any) bool {
	if user, ok := userValue.(string); ok {
		criterion, ok := criterionValue.(string)
		return ok && strings.Contains(user, criterion)
	}
	user, ok := toSlice(userValue)
	if !ok {
		return false
	}
	criterion, ok := toSlice(criterionValue)
	return ok && containsAll(user, criterion)
}

type notContainsHandler struct{}

// Check negates contains only where contains is defined; mismatched types
// count as "does not contain".
func (notContainsHandler) Check(userValue, criterionValue any) bool {
	if user, ok := userValue.(string); ok {
		if criterion, ok := criterionValue.(string); ok {
			return !strings.Contains(user, criterion)
		}
		return true
	}
	user, ok := toSlice(userValue)
	if !ok {
		return true
	}
	criterion, ok := toSlice(criterionValue)
	if !ok {
		return true
	}
	return !containsAll(user, criterion)
}

type semverCompareHandler struct {
	cmp func(a, b *semver.Version) bool
}

func (h semverCompareHandler) Check(userValue, criterionValue any) bool {
	userStr, ok := userValue.(string)
	if !ok {
		return false
	}
	criterionStr, ok := criterionValue.(string)
	if !ok {
		return false
	}
	userVer, err := semver.NewVersion(userStr)
	if err != nil {
		return false
	}
	criterionVer, err := semver.NewVersion(criterionStr)
	if err != nil {
		return false
	}
	return h.cmp(userVer, criterionVer)
}

func containsAll(haystack, needles []any) bool {
	for _, needle := range needles {
		found := false
		for _, item := range haystack {
			if strictEquals(item, needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// strictEquals compares values of the same kind. Numbers compare by value
// across Go numeric types; slices, maps and values holding them never
// compare equal.
func strictEquals(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if af, ok := numericValue(a); ok {
		bf, ok := numericValue(b)
		return ok && af == bf
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || !va.Comparable() || !vb.Comparable() {
		return false
	}
	return va.Equal(vb)
}

// numericValue accepts only values that are numbers already.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		f, err := cast.ToFloat64E(n)
		return f, err == nil
	default:
		return 0, false
	}
}

// toNumber coerces numbers, numeric strings and booleans. Missing values and
// unparsable strings are not numbers.
func toNumber(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
		if v == "" {
			return 0, true
		}
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func toSlice(v any) ([]any, bool) {
	switch values := v.(type) {
	case []any:
		return values, true
	case []string:
		out := make([]any, len(values))
		for i, s := range values {
			out[i] = s
		}
		return out, true
	case []int:
		out := make([]any, len(values))
		for i, n := range values {
			out[i] = n
		}
		return out, true
	case []float64:
		out := make([]any, len(values))
		for i, n := range values {
			out[i] = n
		}
		return out, true
	default:
		return nil, false
	}
}
