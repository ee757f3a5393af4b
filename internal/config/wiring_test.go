package config

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offerhub/toggles/internal/history"
	"github.com/offerhub/toggles/internal/registry"
	"github.com/offerhub/toggles/internal/telemetry"
	"github.com/offerhub/toggles/internal/testutil"
	"github.com/offerhub/toggles/internal/toggle"
)

func TestConfiguredEvaluatorEndToEnd(t *testing.T) {
	cfg := validConfig()
	cfg.Environment = testutil.Environment
	cfg.BatchConcurrency = 4
	cfg.HistorySize = 3

	var logs bytes.Buffer
	logger := cfg.NewLogger(&logs)

	metrics, err := telemetry.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	reg := registry.New(registry.WithLogger(logger), registry.WithSizeRecorder(metrics))
	require.NoError(t, reg.Replace([]toggle.FeatureToggle{
		testutil.NewToggle("checkout"),
		testutil.NewToggle("new-checkout", testutil.DependsOn("checkout", toggle.ConditionEnabled)),
	}))

	rec := history.NewRecorder(cfg.HistorySize)
	eval := cfg.NewEvaluator(logger,
		toggle.WithSource(reg),
		toggle.WithObserver(rec),
		toggle.WithObserver(metrics),
		toggle.WithErrorRateSource(rec),
	)

	results := eval.BatchEvaluate(reg.List(), toggle.UserContext{"userId": "u1"})
	assert.True(t, results["checkout"].IsEnabled)
	assert.True(t, results["new-checkout"].IsEnabled)

	require.NoError(t, reg.Upsert(testutil.NewToggle("checkout", testutil.Inactive())))
	off, err := reg.Get("new-checkout")
	require.NoError(t, err)
	assert.Equal(t, toggle.ReasonDependencyNotMet, eval.Evaluate(off, nil).Code)

	broken := testutil.NewToggle("broken")
	broken.RolloutStrategy = "canary"
	eval.Evaluate(broken, nil)

	assert.Equal(t, 3, rec.Len())
	summary := eval.AnalyticsSummary(reg.List(), rec.Records())
	assert.Equal(t, 2, summary.TotalToggles)
	assert.Equal(t, 1, summary.ActiveToggles)
	assert.Equal(t, 3, summary.TotalEvaluations)
	assert.InDelta(t, 0.25, summary.ErrorRate, 1e-9)
	assert.Contains(t, logs.String(), "unknown rollout strategy")
}
