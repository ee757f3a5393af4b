package toggle

import (
	"github.com/offerhub/toggles/internal/validation"
)

// Validate checks a toggle definition and reports every violation found.
func Validate(t FeatureToggle) ValidationResult {
	result := validation.NewValidationResult()

	result.Merge(validation.RequireNonBlank("key", "Feature key", t.Key))
	result.Merge(validation.RequireNonBlank("name", "Feature name", t.Name))
	result.Merge(validation.RequirePresent("category", "Category", t.Category))
	result.Merge(validation.RequirePresent("type", "Type", string(t.Type)))

	switch t.RolloutStrategy {
	case StrategyPercentage:
		result.Merge(validation.ValidatePercentage("rolloutPercentage", t.Percentage()))
	case StrategyUserGroup, StrategyAttributes:
		if t.TargetAudience == nil {
			result.AddError("targetAudience", "Target audience is required for "+string(t.RolloutStrategy)+" strategy")
		}
	}

	return ValidationResult{
		IsValid: result.Valid,
		Errors:  result.Messages(),
	}
}

// Validate checks t like the package-level Validate and reports the outcome
// to validation observers.
func (e *Evaluator) Validate(t FeatureToggle) ValidationResult {
	result := Validate(t)
	if !result.IsValid {
		e.logger.Debug().
			Str("toggle", t.Key).
			Strs("errors", result.Errors).
			Msg("invalid feature toggle")
	}
	for _, o := range e.observers {
		if vo, ok := o.(ValidationObserver); ok {
			vo.ObserveValidation(t, result)
		}
	}
	return result
}
