// Package toggle evaluates feature toggles for a user context.
//
// Evaluation is total: every input produces an Evaluation, and conditions
// that would conventionally be errors (missing audience, unknown strategy,
// unsatisfied dependency) become disabled results with a reason.
package toggle

import (
	"slices"
	"time"

	"github.com/offerhub/toggles/internal/rules"
)

// ToggleType classifies what a toggle's default value means.
type ToggleType string

const (
	TypeBoolean ToggleType = "boolean"
	TypeVariant ToggleType = "variant"
)

// Strategy is the rollout algorithm of a toggle.
type Strategy string

const (
	StrategyAll        Strategy = "all"
	StrategyPercentage Strategy = "percentage"
	StrategyUserGroup  Strategy = "user_group"
	StrategyAttributes Strategy = "attributes"
)

// AudienceType names the rule set of a target audience.
type AudienceType string

const (
	AudienceUserGroup  AudienceType = "user_group"
	AudienceAttributes AudienceType = "attributes"
)

// DependencyCondition is the state a dependency must be in.
type DependencyCondition string

const (
	ConditionEnabled  DependencyCondition = "enabled"
	ConditionDisabled DependencyCondition = "disabled"
)

// Reason is the machine-readable outcome of an evaluation.
type Reason string

const (
	ReasonNotActive             Reason = "NOT_ACTIVE"
	ReasonEnvironmentMismatch   Reason = "ENVIRONMENT_MISMATCH"
	ReasonDependencyNotMet      Reason = "DEPENDENCY_NOT_MET"
	ReasonRolloutAll            Reason = "ROLLOUT_ALL"
	ReasonPercentageIncluded    Reason = "PERCENTAGE_INCLUDED"
	ReasonPercentageExcluded    Reason = "PERCENTAGE_EXCLUDED"
	ReasonTargetingMatch        Reason = "TARGETING_MATCH"
	ReasonTargetingMiss         Reason = "TARGETING_MISS"
	ReasonMissingTargetAudience Reason = "MISSING_TARGET_AUDIENCE"
	ReasonUnknownStrategy       Reason = "UNKNOWN_STRATEGY"
)

// IsConfigurationError reports whether the reason points at a broken toggle
// definition rather than a decision about the user.
func (r Reason) IsConfigurationError() bool {
	return r == ReasonMissingTargetAudience || r == ReasonUnknownStrategy
}

// TargetAudience is a named rule set used by the user_group and attributes strategies.
type TargetAudience struct {
	Type     AudienceType      `json:"type"`
	Criteria []rules.Criterion `json:"criteria"`
}

// Dependency gates a toggle on the state of another toggle.
type Dependency struct {
	FeatureKey string              `json:"featureKey"`
	Condition  DependencyCondition `json:"condition"`
}

// FeatureToggle is a toggle definition. The evaluator only reads it.
type FeatureToggle struct {
	Key               string          `json:"key"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Type              ToggleType      `json:"type"`
	IsActive          bool            `json:"isActive"`
	Environment       string          `json:"environment"`
	RolloutStrategy   Strategy        `json:"rolloutStrategy"`
	RolloutPercentage *int            `json:"rolloutPercentage,omitempty"`
	TargetAudience    *TargetAudience `json:"targetAudience,omitempty"`
	Dependencies      []Dependency    `json:"dependencies,omitempty"`
	DefaultValue      any             `json:"defaultValue"`
}

// Percentage returns the rollout percentage, treating an absent value as 0.
func (t FeatureToggle) Percentage() int {
	if t.RolloutPercentage == nil {
		return 0
	}
	return *t.RolloutPercentage
}

// Clone returns a copy that shares no pointers or slices with t. Criterion
// values and the default value are copied shallowly.
func (t FeatureToggle) Clone() FeatureToggle {
	if t.RolloutPercentage != nil {
		p := *t.RolloutPercentage
		t.RolloutPercentage = &p
	}
	if t.TargetAudience != nil {
		audience := *t.TargetAudience
		audience.Criteria = slices.Clone(audience.Criteria)
		t.TargetAudience = &audience
	}
	t.Dependencies = slices.Clone(t.Dependencies)
	return t
}

// UserContext is an arbitrary, possibly nested, key/value map. Fields are
// read by dot path, e.g. "user.plan".
type UserContext map[string]any

// Evaluation is the result of evaluating one toggle. A zero Variant means no
// variant was assigned.
type Evaluation struct {
	IsEnabled       bool     `json:"isEnabled"`
	Variant         string   `json:"variant,omitempty"`
	Reason          string   `json:"reason,omitempty"`
	Code            Reason   `json:"code"`
	MatchedCriteria []string `json:"matchedCriteria,omitempty"`
}

// EvaluationRecord is one past evaluation, as kept by an evaluation history.
type EvaluationRecord struct {
	ToggleKey string    `json:"toggleKey"`
	Enabled   bool      `json:"enabled"`
	Variant   string    `json:"variant,omitempty"`
	Code      Reason    `json:"code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ToggleStats is the per-toggle slice of an analytics summary.
type ToggleStats struct {
	Evaluations   int       `json:"evaluations"`
	Enabled       int       `json:"enabled"`
	Disabled      int       `json:"disabled"`
	LastEvaluated time.Time `json:"lastEvaluated,omitzero"`
}

// Analytics aggregates an evaluation history.
type Analytics struct {
	TotalToggles        int                    `json:"totalToggles"`
	ActiveToggles       int                    `json:"activeToggles"`
	TotalEvaluations    int                    `json:"totalEvaluations"`
	EnabledCount        int                    `json:"enabledCount"`
	DisabledCount       int                    `json:"disabledCount"`
	VariantDistribution map[string]int         `json:"variantDistribution"`
	ErrorRate           float64                `json:"errorRate"`
	ByToggle            map[string]ToggleStats `json:"byToggle"`
}

// ValidationResult lists every problem found in a toggle definition.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}
