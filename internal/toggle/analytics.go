package toggle

// Summarize aggregates an evaluation history. Toggles supply the toggle counts
// and the keys of the per-toggle breakdown; every record counts towards the
// totals. The error rate is the share of records caused by broken toggle
// definitions.
func Summarize(toggles []FeatureToggle, history []EvaluationRecord) Analytics {
	a := Analytics{
		TotalToggles:        len(toggles),
		VariantDistribution: make(map[string]int),
		ByToggle:            make(map[string]ToggleStats, len(toggles)),
	}
	for _, t := range toggles {
		if t.IsActive {
			a.ActiveToggles++
		}
		a.ByToggle[t.Key] = ToggleStats{}
	}

	configErrors := 0
	for _, rec := range history {
		a.TotalEvaluations++
		if rec.Enabled {
			a.EnabledCount++
		} else {
			a.DisabledCount++
		}
		if rec.Variant != "" {
			a.VariantDistribution[rec.Variant]++
		}
		if rec.Code.IsConfigurationError() {
			configErrors++
		}

		stats, ok := a.ByToggle[rec.ToggleKey]
		if !ok {
			continue
		}
		stats.Evaluations++
		if rec.Enabled {
			stats.Enabled++
		} else {
			stats.Disabled++
		}
		if rec.Timestamp.After(stats.LastEvaluated) {
			stats.LastEvaluated = rec.Timestamp
		}
		a.ByToggle[rec.ToggleKey] = stats
	}

	if a.TotalEvaluations > 0 {
		a.ErrorRate = float64(configErrors) / float64(a.TotalEvaluations)
	}
	return a
}

// AnalyticsSummary is Summarize with the error rate taken from the
// configured ErrorRateSource, when there is one.
func (e *Evaluator) AnalyticsSummary(toggles []FeatureToggle, history []EvaluationRecord) Analytics {
	a := Summarize(toggles, history)
	if e.errorRates != nil {
		a.ErrorRate = e.errorRates.ErrorRate()
	}
	return a
}
