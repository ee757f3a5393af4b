// Package registry holds the toggle definitions supplied by the caller and
// serves them as a toggle.Source for dependency resolution.
//
// Readers see immutable snapshots swapped atomically; writers are serialized.
// Nothing is persisted.
package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/offerhub/toggles/internal/toggle"
)

var (
	// ErrToggleNotFound is returned by Get for unknown keys.
	ErrToggleNotFound = errors.New("feature toggle not found")

	// ErrInvalidToggle wraps the validation messages of a rejected toggle.
	ErrInvalidToggle = errors.New("invalid feature toggle")
)

// Snapshot is an immutable view of the registry.
type Snapshot struct {
	ETag      string                          `json:"etag"`
	Toggles   map[string]toggle.FeatureToggle `json:"toggles"`
	UpdatedAt time.Time                       `json:"updatedAt"`
}

// SizeRecorder receives the number of toggles after every change.
type SizeRecorder interface {
	SetRegistrySize(n int)
}

// Registry is a concurrency-safe in-memory toggle source.
type Registry struct {
	current atomic.Pointer[Snapshot]
	writeMu sync.Mutex

	subsMu sync.Mutex
	subs   map[chan string]struct{}

	logger zerolog.Logger
	sizes  SizeRecorder
	now    func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithSizeRecorder reports the toggle count after every change.
func WithSizeRecorder(s SizeRecorder) Option {
	return func(r *Registry) { r.sizes = s }
}

// WithClock overrides the time source used for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		subs:   make(map[chan string]struct{}),
		logger: zerolog.Nop(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	r.current.Store(r.build(map[string]toggle.FeatureToggle{}))
	return r
}

// Snapshot returns the current snapshot. Callers must not modify it.
func (r *Registry) Snapshot() *Snapshot {
	return r.current.Load()
}

// Lookup implements toggle.Source. The returned toggle shares storage with the
// snapshot and must not be modified; use Get for a private copy.
func (r *Registry) Lookup(key string) (toggle.FeatureToggle, bool) {
	t, ok := r.current.Load().Toggles[key]
	return t, ok
}

// Get returns the toggle with the given key or ErrToggleNotFound.
func (r *Registry) Get(key string) (toggle.FeatureToggle, error) {
	t, ok := r.Lookup(key)
	if !ok {
		return toggle.FeatureToggle{}, fmt.Errorf("%w: %s", ErrToggleNotFound, key)
	}
	return t.Clone(), nil
}

// List returns copies of all toggles sorted by key.
func (r *Registry) List() []toggle.FeatureToggle {
	snap := r.current.Load()
	out := make([]toggle.FeatureToggle, 0, len(snap.Toggles))
	for _, t := range snap.Toggles {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Replace swaps the whole toggle set. Every toggle is validated first; if any
// is invalid nothing changes and the joined validation errors are returned.
// Later duplicates replace earlier ones. Toggles are copied, so later changes
// by the caller do not reach the registry.
func (r *Registry) Replace(toggles []toggle.FeatureToggle) error {
	var errs []error
	next := make(map[string]toggle.FeatureToggle, len(toggles))
	for _, t := range toggles {
		if err := validate(t); err != nil {
			errs = append(errs, err)
			continue
		}
		next[t.Key] = t.Clone()
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	r.publish(r.build(next))
	return nil
}

// Upsert validates and stores a copy of a single toggle.
func (r *Registry) Upsert(t toggle.FeatureToggle) error {
	if err := validate(t); err != nil {
		return err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	prev := r.current.Load().Toggles
	next := make(map[string]toggle.FeatureToggle, len(prev)+1)
	for k, v := range prev {
		next[k] = v
	}
	next[t.Key] = t.Clone()
	r.publish(r.build(next))
	return nil
}

// Delete removes a toggle. It reports whether the key existed.
func (r *Registry) Delete(key string) bool {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	prev := r.current.Load().Toggles
	if _, ok := prev[key]; !ok {
		return false
	}
	next := make(map[string]toggle.FeatureToggle, len(prev))
	for k, v := range prev {
		if k != key {
			next[k] = v
		}
	}
	r.publish(r.build(next))
	return true
}

// validate also requires the toggle to be JSON-encodable, since snapshots
// are fingerprinted by their encoding.
func validate(t toggle.FeatureToggle) error {
	result := toggle.Validate(t)
	if !result.IsValid {
		return fmt.Errorf("%w %q: %v", ErrInvalidToggle, t.Key, result.Errors)
	}
	if _, err := json.Marshal(t); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidToggle, t.Key, err)
	}
	return nil
}

func (r *Registry) build(toggles map[string]toggle.FeatureToggle) *Snapshot {
	blob, err := json.Marshal(toggles)
	if err != nil {
		r.logger.Error().Err(err).Msg("snapshot encoding failed")
	}
	sum := sha256.Sum256(blob)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return &Snapshot{ETag: etag, Toggles: toggles, UpdatedAt: r.now()}
}

// publish must be called with writeMu held.
func (r *Registry) publish(s *Snapshot) {
	r.current.Store(s)
	if r.sizes != nil {
		r.sizes.SetRegistrySize(len(s.Toggles))
	}
	r.logger.Debug().
		Int("toggles", len(s.Toggles)).
		Str("etag", s.ETag).
		Msg("registry updated")
	r.notify(s.ETag)
}
