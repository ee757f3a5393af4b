package toggle

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	"github.com/offerhub/toggles/internal/rollout"
)

// Evaluator decides whether toggles are enabled in one environment.
// It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	environment      string
	hasher           rollout.Hasher
	source           Source
	observers        []Observer
	errorRates       ErrorRateSource
	batchConcurrency int
	logger           zerolog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithHasher sets the hash used for percentage bucketing.
func WithHasher(h rollout.Hasher) Option {
	return func(e *Evaluator) {
		if h != nil {
			e.hasher = h
		}
	}
}

// WithSource sets where dependency toggles are looked up.
func WithSource(src Source) Option {
	return func(e *Evaluator) {
		e.source = src
	}
}

// WithObserver adds an observer notified after each top-level evaluation.
func WithObserver(o Observer) Option {
	return func(e *Evaluator) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// WithErrorRateSource sets the collaborator that reports the analytics error rate.
func WithErrorRateSource(src ErrorRateSource) Option {
	return func(e *Evaluator) {
		e.errorRates = src
	}
}

// WithBatchConcurrency bounds the goroutines used by BatchEvaluate.
// Values below 2 evaluate sequentially.
func WithBatchConcurrency(n int) Option {
	return func(e *Evaluator) {
		e.batchConcurrency = n
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = l
	}
}

// NewEvaluator creates an evaluator for the given deployment environment.
func NewEvaluator(environment string, opts ...Option) *Evaluator {
	e := &Evaluator{
		environment:      environment,
		hasher:           rollout.RollingHash{},
		batchConcurrency: 1,
		logger:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Environment returns the environment toggles must belong to.
func (e *Evaluator) Environment() string {
	return e.environment
}

// Evaluate decides whether t is enabled for userCtx.
//
// Gates run in order and short-circuit on the first failure:
//  1. inactive toggle
//  2. environment mismatch
//  3. dependencies (AND, fail fast in list order)
//  4. rollout strategy
//
// The variant is attached only to enabled results.
func (e *Evaluator) Evaluate(t FeatureToggle, userCtx UserContext) Evaluation {
	result := e.evaluate(t, userCtx, e.source)
	e.notify(t, result)
	return result
}

func (e *Evaluator) notify(t FeatureToggle, result Evaluation) {
	for _, o := range e.observers {
		o.Observe(t, result)
	}
}

func (e *Evaluator) evaluate(t FeatureToggle, userCtx UserContext, src Source) Evaluation {
	r := &resolver{
		e:       e,
		userCtx: userCtx,
		src:     src,
		states:  make(map[string]depState),
	}
	result, _ := r.evaluate(t)
	return result
}

type depState int

const (
	depDisabled depState = iota
	depEnabled
	depCyclic
)

// resolver evaluates one top-level toggle. Each dependency key is evaluated
// at most once per resolver; chain holds the keys whose dependencies are
// currently being resolved.
type resolver struct {
	e       *Evaluator
	userCtx UserContext
	src     Source
	states  map[string]depState
	chain   []string
}

// evaluate runs the gates. The second result reports that a dependency cycle
// was reached, in which case every toggle on the path fails.
func (r *resolver) evaluate(t FeatureToggle) (Evaluation, bool) {
	e := r.e
	if !t.IsActive {
		return e.disabled(t, ReasonNotActive, "feature toggle is not active"), false
	}

	if t.Environment != e.environment {
		return e.disabled(t, ReasonEnvironmentMismatch,
			fmt.Sprintf("feature toggle is configured for environment %q, current environment is %q", t.Environment, e.environment)), false
	}

	if len(t.Dependencies) > 0 {
		r.chain = append(r.chain, t.Key)
		defer func() { r.chain = r.chain[:len(r.chain)-1] }()

		for _, dep := range t.Dependencies {
			state := r.dependencyState(dep.FeatureKey)
			if state == depCyclic {
				return e.disabled(t, ReasonDependencyNotMet,
					fmt.Sprintf("dependency %q is part of a dependency cycle", dep.FeatureKey)), true
			}
			if !conditionMet(dep.Condition, state == depEnabled) {
				return e.disabled(t, ReasonDependencyNotMet,
					fmt.Sprintf("dependency %q is not %s", dep.FeatureKey, dep.Condition)), false
			}
		}
	}

	switch t.RolloutStrategy {
	case StrategyAll:
		return e.enabled(t, Evaluation{Code: ReasonRolloutAll, Reason: "enabled for all users"}), false
	case StrategyPercentage:
		return e.evaluatePercentage(t, r.userCtx), false
	case StrategyUserGroup:
		return e.evaluateAudience(t, r.userCtx, AudienceUserGroup, true), false
	case StrategyAttributes:
		return e.evaluateAudience(t, r.userCtx, AudienceAttributes, false), false
	default:
		e.logger.Warn().
			Str("toggle", t.Key).
			Str("strategy", string(t.RolloutStrategy)).
			Msg("unknown rollout strategy")
		return e.disabled(t, ReasonUnknownStrategy, "unknown rollout strategy"), false
	}
}

func conditionMet(condition DependencyCondition, enabled bool) bool {
	switch condition {
	case ConditionEnabled:
		return enabled
	case ConditionDisabled:
		return !enabled
	default:
		return false
	}
}

// dependencyState evaluates the dependency's own definition with the same
// user context. Unknown toggles count as disabled.
func (r *resolver) dependencyState(key string) depState {
	if slices.Contains(r.chain, key) {
		r.e.logger.Warn().
			Str("toggle", r.chain[0]).
			Strs("chain", r.chain).
			Str("dependency", key).
			Msg("dependency cycle")
		return depCyclic
	}
	if state, ok := r.states[key]; ok {
		return state
	}
	if r.src == nil {
		return depDisabled
	}
	dep, ok := r.src.Lookup(key)
	if !ok {
		r.e.logger.Debug().Str("dependency", key).Msg("dependency not found")
		r.states[key] = depDisabled
		return depDisabled
	}

	result, cyclic := r.evaluate(dep)
	state := depDisabled
	switch {
	case cyclic:
		state = depCyclic
	case result.IsEnabled:
		state = depEnabled
	}
	r.states[key] = state
	return state
}

func (e *Evaluator) evaluatePercentage(t FeatureToggle, userCtx UserContext) Evaluation {
	percentage := t.Percentage()
	userID := userIDFromContext(userCtx)
	if rollout.IsRolledOut(e.hasher, t.Key, userID, percentage) {
		return e.enabled(t, Evaluation{
			Code:   ReasonPercentageIncluded,
			Reason: fmt.Sprintf("user is within the %d%% rollout", percentage),
		})
	}
	return e.disabled(t, ReasonPercentageExcluded, fmt.Sprintf("user is outside the %d%% rollout", percentage))
}

// evaluateAudience matches the audience criteria. requireAll selects AND
// semantics (user groups); otherwise one match is enough (attributes).
func (e *Evaluator) evaluateAudience(t FeatureToggle, userCtx UserContext, want AudienceType, requireAll bool) Evaluation {
	audience := t.TargetAudience
	if audience == nil || audience.Type != want {
		e.logger.Warn().
			Str("toggle", t.Key).
			Str("strategy", string(t.RolloutStrategy)).
			Msg("missing target audience")
		return e.disabled(t, ReasonMissingTargetAudience, fmt.Sprintf("target audience of type %q is required", want))
	}

	var matched []string
	for _, criterion := range audience.Criteria {
		if criterion.Matches(userCtx) {
			matched = append(matched, criterion.String())
		}
	}

	ok := len(matched) > 0
	if requireAll {
		ok = len(matched) == len(audience.Criteria)
	}
	if !ok {
		result := e.disabled(t, ReasonTargetingMiss, targetingMissReason(requireAll))
		result.MatchedCriteria = matched
		return result
	}
	return e.enabled(t, Evaluation{
		Code:            ReasonTargetingMatch,
		Reason:          fmt.Sprintf("user matches %d of %d criteria", len(matched), len(audience.Criteria)),
		MatchedCriteria: matched,
	})
}

func targetingMissReason(requireAll bool) string {
	if requireAll {
		return "user does not match all user group criteria"
	}
	return "user does not match any attribute criteria"
}

func (e *Evaluator) enabled(t FeatureToggle, result Evaluation) Evaluation {
	result.IsEnabled = true
	result.Variant = GetVariant(t)
	return result
}

func (e *Evaluator) disabled(t FeatureToggle, code Reason, reason string) Evaluation {
	e.logger.Debug().
		Str("toggle", t.Key).
		Str("code", string(code)).
		Msg(reason)
	return Evaluation{IsEnabled: false, Code: code, Reason: reason}
}

// userIDFromContext picks userId, then id, then the anonymous ID. Empty
// values fall through like missing ones.
func userIDFromContext(userCtx UserContext) string {
	for _, field := range []string{"userId", "id"} {
		v, ok := userCtx[field]
		if !ok || v == nil {
			continue
		}
		if id, err := cast.ToStringE(v); err == nil && id != "" {
			return id
		}
	}
	return rollout.AnonymousUserID
}
