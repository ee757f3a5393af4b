package toggle

import (
	"github.com/sourcegraph/conc/pool"
)

// BatchEvaluate evaluates every toggle for the same user context and keys the
// results by toggle key. On duplicate keys the later toggle wins.
//
// Without a configured Source, dependencies resolve against the batch itself.
func (e *Evaluator) BatchEvaluate(toggles []FeatureToggle, userCtx UserContext) map[string]Evaluation {
	src := e.source
	if src == nil {
		src = NewToggles(toggles)
	}

	results := make([]Evaluation, len(toggles))
	evaluateAt := func(i int) {
		results[i] = e.evaluate(toggles[i], userCtx, src)
		e.notify(toggles[i], results[i])
	}

	if e.batchConcurrency > 1 && len(toggles) > 1 {
		p := pool.New().WithMaxGoroutines(e.batchConcurrency)
		for i := range toggles {
			p.Go(func() { evaluateAt(i) })
		}
		p.Wait()
	} else {
		for i := range toggles {
			evaluateAt(i)
		}
	}

	for _, o := range e.observers {
		if bo, ok := o.(BatchObserver); ok {
			bo.ObserveBatch(len(toggles))
		}
	}

	// Assembled in input order so the last duplicate wins regardless of scheduling.
	out := make(map[string]Evaluation, len(toggles))
	for i, t := range toggles {
		out[t.Key] = results[i]
	}
	return out
}
