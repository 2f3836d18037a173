package detect

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"mercator-hq/callisto/pkg/document"
)

// Engine detects entity spans in reconstructed page text. Implementations
// must be safe for concurrent use; the orchestrator calls one engine from
// many per-file workers at once.
type Engine interface {
	// Name identifies the engine in requests, results, and logs.
	Name() string

	// Cost is the engine's relative expense. The orchestrator drops
	// engines in descending cost when degrading hybrid detection.
	Cost() int

	// Detect returns spans for the requested entity types, offsets
	// relative to text. An empty entityTypes slice requests all types
	// the engine supports.
	Detect(ctx context.Context, text string, entityTypes []string) ([]document.EntitySpan, error)
}

// Errors returned by the registry and timeout wrapper.
var (
	ErrUnknownEngine = errors.New("unknown detection engine")
	ErrTimeout       = errors.New("detection engine timed out")
)

// Registry holds the configured engines. It is populated once at startup
// and read-only afterwards, so lookups need no locking; Register after
// Freeze panics.
type Registry struct {
	mu      sync.Mutex
	frozen  bool
	engines map[string]Engine
}

// NewRegistry creates an empty engine registry.
func NewRegistry() *Registry {
	return &Registry{engines: make(map[string]Engine)}
}

// Register adds an engine. Registration is an initialization-time
// operation; registering after Freeze or under a duplicate name panics.
func (r *Registry) Register(e Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		panic("detect: Register after Freeze")
	}
	if _, dup := r.engines[e.Name()]; dup {
		panic(fmt.Sprintf("detect: duplicate engine %q", e.Name()))
	}
	r.engines[e.Name()] = e
}

// Freeze marks the registry read-only. Called once startup wiring is done.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Get resolves names to engines, preserving request order. Unknown names
// return ErrUnknownEngine.
func (r *Registry) Get(names []string) ([]Engine, error) {
	out := make([]Engine, 0, len(names))
	for _, n := range names {
		e, ok := r.engines[n]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, n)
		}
		out = append(out, e)
	}
	return out, nil
}

// Names returns all registered engine names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.engines))
	for n := range r.engines {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SortByCost orders engines cheapest first, leaving the input untouched.
func SortByCost(engines []Engine) []Engine {
	out := make([]Engine, len(engines))
	copy(out, engines)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Cost() < out[j].Cost() })
	return out
}

// Cheapest returns the lowest-cost engine of the set, or nil for an empty
// set.
func Cheapest(engines []Engine) Engine {
	var best Engine
	for _, e := range engines {
		if best == nil || e.Cost() < best.Cost() {
			best = e
		}
	}
	return best
}
