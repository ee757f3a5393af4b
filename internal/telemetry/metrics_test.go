package telemetry

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/offerhub/toggles/internal/registry"
	tu "github.com/offerhub/toggles/internal/testutil"
	"github.com/offerhub/toggles/internal/toggle"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	m, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewMetrics(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewMetrics(reg); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestMetrics_CountsEvaluations(t *testing.T) {
	m := newTestMetrics(t)
	eval := toggle.NewEvaluator(tu.Environment, toggle.WithObserver(m))

	eval.Evaluate(tu.NewToggle("a"), nil)
	eval.Evaluate(tu.NewToggle("b"), nil)
	eval.Evaluate(tu.NewToggle("c", tu.Inactive()), nil)

	if got := testutil.ToFloat64(m.evaluations.WithLabelValues("all", "ROLLOUT_ALL")); got != 2 {
		t.Errorf("ROLLOUT_ALL count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.evaluations.WithLabelValues("all", "NOT_ACTIVE")); got != 1 {
		t.Errorf("NOT_ACTIVE count = %v, want 1", got)
	}
}

func TestMetrics_BatchSize(t *testing.T) {
	m := newTestMetrics(t)
	eval := toggle.NewEvaluator(tu.Environment, toggle.WithObserver(m))
	eval.BatchEvaluate([]toggle.FeatureToggle{tu.NewToggle("a"), tu.NewToggle("b"), tu.NewToggle("c")}, nil)

	expected := `
# HELP toggle_batch_size Number of toggles per batch evaluation
# TYPE toggle_batch_size histogram
toggle_batch_size_bucket{le="1"} 0
toggle_batch_size_bucket{le="2"} 0
toggle_batch_size_bucket{le="4"} 1
toggle_batch_size_bucket{le="8"} 1
toggle_batch_size_bucket{le="16"} 1
toggle_batch_size_bucket{le="32"} 1
toggle_batch_size_bucket{le="64"} 1
toggle_batch_size_bucket{le="128"} 1
toggle_batch_size_bucket{le="256"} 1
toggle_batch_size_bucket{le="512"} 1
toggle_batch_size_bucket{le="+Inf"} 1
toggle_batch_size_sum 3
toggle_batch_size_count 1
`
	if err := testutil.CollectAndCompare(m.batchSize, strings.NewReader(expected)); err != nil {
		t.Fatal(err)
	}
}

func TestMetrics_ValidationFailures(t *testing.T) {
	m := newTestMetrics(t)
	eval := toggle.NewEvaluator(tu.Environment, toggle.WithObserver(m))

	eval.Validate(tu.NewToggle("ok"))
	bad := tu.NewToggle("bad")
	bad.Category = ""
	eval.Validate(bad)
	eval.Validate(bad)

	if got := testutil.ToFloat64(m.validationFailures.WithLabelValues("bad")); got != 2 {
		t.Errorf("failures for bad = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(m.validationFailures); got != 1 {
		t.Errorf("series = %d, want 1", got)
	}
}

func TestMetrics_RegistrySize(t *testing.T) {
	m := newTestMetrics(t)
	r := registry.New(registry.WithSizeRecorder(m))
	if err := r.Replace([]toggle.FeatureToggle{tu.NewToggle("a"), tu.NewToggle("b")}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if got := testutil.ToFloat64(m.registryToggles); got != 2 {
		t.Errorf("registry gauge = %v, want 2", got)
	}
	r.Delete("a")
	if got := testutil.ToFloat64(m.registryToggles); got != 1 {
		t.Errorf("registry gauge = %v, want 1", got)
	}
}
