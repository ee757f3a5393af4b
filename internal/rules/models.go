// Package rules matches targeting criteria against a user context.
package rules

import "fmt"

// Operator represents a comparison operator used in targeting criteria.
type Operator string

// Supported operators (string values for clean JSON serialization).
const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpSemVerGt    Operator = "semver_gt"
	OpSemVerLt    Operator = "semver_lt"
)

// Criterion is a single (field, operator, value) test. Field is a dot path
// into the user context, e.g. "user.plan".
type Criterion struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// Matches reports whether the criterion holds for ctx. A missing field is
// matched as nil.
func (c Criterion) Matches(ctx map[string]any) bool {
	userValue, _ := Lookup(ctx, c.Field)
	return Match(userValue, c.Operator, c.Value)
}

// String renders the criterion for diagnostics, e.g. "user.plan equals pro".
func (c Criterion) String() string {
	return fmt.Sprintf("%s %s %v", c.Field, c.Operator, c.Value)
}
