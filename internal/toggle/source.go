package toggle

// Source resolves toggle definitions by key. It backs dependency lookups.
type Source interface {
	Lookup(key string) (FeatureToggle, bool)
}

// Toggles is a fixed set of toggles keyed by Key.
type Toggles map[string]FeatureToggle

// NewToggles indexes toggles by key; later duplicates replace earlier ones.
func NewToggles(toggles []FeatureToggle) Toggles {
	out := make(Toggles, len(toggles))
	for _, t := range toggles {
		out[t.Key] = t
	}
	return out
}

// Lookup implements Source.
func (ts Toggles) Lookup(key string) (FeatureToggle, bool) {
	t, ok := ts[key]
	return t, ok
}

// Observer is notified of each top-level evaluation. Observers must be safe
// for concurrent use and must not retain or modify the result's slices.
type Observer interface {
	Observe(t FeatureToggle, result Evaluation)
}

// BatchObserver is optionally implemented by observers that track batch sizes.
type BatchObserver interface {
	ObserveBatch(size int)
}

// ValidationObserver is optionally implemented by observers that track validation outcomes.
type ValidationObserver interface {
	ObserveValidation(t FeatureToggle, result ValidationResult)
}

// ErrorRateSource supplies the error rate reported by analytics summaries.
type ErrorRateSource interface {
	ErrorRate() float64
}
