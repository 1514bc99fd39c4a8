/*
strategy.go - Kind registry and reward dispatcher

PURPOSE:
  Resolves a task's reward specs to concrete strategies and applies each
  one independently. Adding a reward kind is a Register call, not a new
  subclass wired through an app-wide resolver.

PARTIAL-FAILURE SEMANTICS:
  Each spec's outcome is independent. An unknown kind, a missing
  coefficient, or an unreachable grant service fails that one spec and is
  recorded in its Applied result; the remaining specs still run, in the
  task's configured order.

IDEMPOTENCY BOUNDARY:
  The dispatcher does NOT deduplicate by task id. The surrounding workflow
  must guarantee that "done" is processed at most once per (task,
  ambassador) pair - approving the same completion twice pays twice. This
  is a deliberate boundary: the approval workflow owns that invariant and
  already has the state to enforce it.

SEE ALSO:
  - coin.go, role.go: The two built-in strategies
*/
package reward

import "context"

// =============================================================================
// STRATEGY - One unit of "grant a reward of kind K"
// =============================================================================

// Strategy applies one reward spec to one ambassador for one task.
type Strategy interface {
	// Apply fulfils the spec. The returned Applied must have Kind and OK
	// populated; Err set when OK is false.
	Apply(ctx context.Context, task Task, spec Spec, ambassador Ambassador, points string) Applied
}

// =============================================================================
// REGISTRY - kind -> strategy
// =============================================================================

type Registry struct {
	strategies map[Kind]Strategy
}

func NewRegistry() *Registry {
	return &Registry{strategies: make(map[Kind]Strategy)}
}

// Register binds a kind to a strategy, replacing any previous binding.
func (r *Registry) Register(kind Kind, s Strategy) {
	r.strategies[kind] = s
}

// Resolve returns the strategy for a kind.
func (r *Registry) Resolve(kind Kind) (Strategy, bool) {
	s, ok := r.strategies[kind]
	return s, ok
}

// =============================================================================
// DISPATCHER
// =============================================================================

// Dispatcher applies every reward spec of a completed task.
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// ApplyAll applies each of the task's reward specs exactly once, in the
// task's configured order, and reports one Applied per spec.
//
// Callers own completion idempotency: ApplyAll applied twice for the same
// (task, ambassador) credits twice.
func (d *Dispatcher) ApplyAll(ctx context.Context, task Task, ambassador Ambassador, points string) []Applied {
	results := make([]Applied, 0, len(task.Rewards))
	for _, spec := range task.Rewards {
		strategy, ok := d.registry.Resolve(spec.Kind)
		if !ok {
			results = append(results, Applied{
				Kind: spec.Kind,
				OK:   false,
				Err:  &UnsupportedKindError{Kind: spec.Kind},
			})
			continue
		}
		results = append(results, strategy.Apply(ctx, task, spec, ambassador, points))
	}
	return results
}
