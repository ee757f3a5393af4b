package toggle_test

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offerhub/toggles/internal/testutil"
	"github.com/offerhub/toggles/internal/toggle"
)

func TestBatchEvaluate_KeysResults(t *testing.T) {
	eval := newEvaluator()
	results := eval.BatchEvaluate([]toggle.FeatureToggle{
		testutil.NewToggle("a"),
		testutil.NewToggle("b", testutil.Inactive()),
	}, nil)

	require.Len(t, results, 2)
	assert.True(t, results["a"].IsEnabled)
	assert.False(t, results["b"].IsEnabled)
}

func TestBatchEvaluate_Empty(t *testing.T) {
	results := newEvaluator().BatchEvaluate(nil, nil)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestBatchEvaluate_LastDuplicateWins(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		eval := newEvaluator(toggle.WithBatchConcurrency(concurrency))
		toggles := []toggle.FeatureToggle{
			testutil.NewToggle("dup"),
			testutil.NewToggle("other"),
			testutil.NewToggle("dup", testutil.Inactive()),
		}
		for i := 0; i < 20; i++ {
			results := eval.BatchEvaluate(toggles, nil)
			require.Len(t, results, 2)
			assert.False(t, results["dup"].IsEnabled, "concurrency %d", concurrency)
			assert.Equal(t, toggle.ReasonNotActive, results["dup"].Code)
		}
	}
}

func TestBatchEvaluate_ConcurrentMatchesSequential(t *testing.T) {
	var toggles []toggle.FeatureToggle
	for i := 0; i < 64; i++ {
		toggles = append(toggles, testutil.NewToggle("t"+strconv.Itoa(i), testutil.Percentage(i)))
	}
	ctx := toggle.UserContext{"userId": "u-7"}

	sequential := newEvaluator().BatchEvaluate(toggles, ctx)
	parallel := newEvaluator(toggle.WithBatchConcurrency(8)).BatchEvaluate(toggles, ctx)
	assert.Equal(t, sequential, parallel)
}

func TestBatchEvaluate_ResolvesDependenciesWithinBatch(t *testing.T) {
	eval := newEvaluator()
	results := eval.BatchEvaluate([]toggle.FeatureToggle{
		testutil.NewToggle("child", testutil.DependsOn("parent", toggle.ConditionEnabled)),
		testutil.NewToggle("parent"),
		testutil.NewToggle("orphan", testutil.DependsOn("missing", toggle.ConditionEnabled)),
	}, nil)

	assert.True(t, results["child"].IsEnabled)
	assert.False(t, results["orphan"].IsEnabled)
}

func TestBatchEvaluate_ConfiguredSourceTakesPrecedence(t *testing.T) {
	src := toggle.NewToggles([]toggle.FeatureToggle{testutil.NewToggle("parent", testutil.Inactive())})
	eval := newEvaluator(toggle.WithSource(src))
	results := eval.BatchEvaluate([]toggle.FeatureToggle{
		testutil.NewToggle("child", testutil.DependsOn("parent", toggle.ConditionEnabled)),
		testutil.NewToggle("parent"),
	}, nil)

	assert.False(t, results["child"].IsEnabled)
	assert.True(t, results["parent"].IsEnabled)
}

type countingObserver struct {
	mu      sync.Mutex
	seen    int
	batches []int
}

func (o *countingObserver) Observe(toggle.FeatureToggle, toggle.Evaluation) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen++
}

func (o *countingObserver) ObserveBatch(size int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.batches = append(o.batches, size)
}

func TestBatchEvaluate_NotifiesObservers(t *testing.T) {
	obs := &countingObserver{}
	eval := newEvaluator(toggle.WithObserver(obs), toggle.WithBatchConcurrency(3))
	eval.BatchEvaluate([]toggle.FeatureToggle{
		testutil.NewToggle("a"), testutil.NewToggle("b"), testutil.NewToggle("c"), testutil.NewToggle("d"),
	}, nil)

	assert.Equal(t, 4, obs.seen)
	assert.Equal(t, []int{4}, obs.batches)
}
