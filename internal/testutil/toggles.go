// Package testutil provides toggle builders shared by tests.
package testutil

import (
	"github.com/offerhub/toggles/internal/rules"
	"github.com/offerhub/toggles/internal/toggle"
)

// Environment is the environment the builders target.
const Environment = "production"

// ToggleOption mutates a toggle under construction.
type ToggleOption func(*toggle.FeatureToggle)

// NewToggle returns a valid, active boolean toggle with the "all" strategy.
func NewToggle(key string, opts ...ToggleOption) toggle.FeatureToggle {
	t := toggle.FeatureToggle{
		Key:             key,
		Name:            key + " feature",
		Category:        "general",
		Type:            toggle.TypeBoolean,
		IsActive:        true,
		Environment:     Environment,
		RolloutStrategy: toggle.StrategyAll,
		DefaultValue:    true,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Inactive marks the toggle inactive.
func Inactive() ToggleOption {
	return func(t *toggle.FeatureToggle) { t.IsActive = false }
}

// InEnvironment moves the toggle to env.
func InEnvironment(env string) ToggleOption {
	return func(t *toggle.FeatureToggle) { t.Environment = env }
}

// Percentage switches to the percentage strategy.
func Percentage(p int) ToggleOption {
	return func(t *toggle.FeatureToggle) {
		t.RolloutStrategy = toggle.StrategyPercentage
		t.RolloutPercentage = &p
	}
}

// UserGroup switches to the user_group strategy with the given criteria.
func UserGroup(criteria ...rules.Criterion) ToggleOption {
	return func(t *toggle.FeatureToggle) {
		t.RolloutStrategy = toggle.StrategyUserGroup
		t.TargetAudience = &toggle.TargetAudience{Type: toggle.AudienceUserGroup, Criteria: criteria}
	}
}

// Attributes switches to the attributes strategy with the given criteria.
func Attributes(criteria ...rules.Criterion) ToggleOption {
	return func(t *toggle.FeatureToggle) {
		t.RolloutStrategy = toggle.StrategyAttributes
		t.TargetAudience = &toggle.TargetAudience{Type: toggle.AudienceAttributes, Criteria: criteria}
	}
}

// DependsOn appends a dependency.
func DependsOn(key string, condition toggle.DependencyCondition) ToggleOption {
	return func(t *toggle.FeatureToggle) {
		t.Dependencies = append(t.Dependencies, toggle.Dependency{FeatureKey: key, Condition: condition})
	}
}

// Variant makes the toggle a variant toggle with the given default.
func Variant(name string) ToggleOption {
	return func(t *toggle.FeatureToggle) {
		t.Type = toggle.TypeVariant
		t.DefaultValue = name
	}
}

// Criterion is shorthand for a rules.Criterion.
func Criterion(field string, op rules.Operator, value any) rules.Criterion {
	return rules.Criterion{Field: field, Operator: op, Value: value}
}
