package doctrine

import "fmt"

// Registry indexes Planners by doctrine ID.
//
// Invariant: each doctrine ID is registered at most once.
type Registry struct {
	planners map[string]*Planner
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{planners: make(map[string]*Planner)}
}

// Register creates and stores a Planner for d.
//
// Precondition: d and eval must not be nil.
// Postcondition: returns error on doctrine ID collision.
func (r *Registry) Register(d *Doctrine, eval PredicateEvaluator) error {
	if _, exists := r.planners[d.ID]; exists {
		return fmt.Errorf("doctrine.Registry: doctrine %q already registered", d.ID)
	}
	r.planners[d.ID] = NewPlanner(d, eval)
	return nil
}

// PlannerFor returns the Planner for doctrineID, or false if not registered.
func (r *Registry) PlannerFor(doctrineID string) (*Planner, bool) {
	p, ok := r.planners[doctrineID]
	return p, ok
}

// IDs returns the registered doctrine IDs in no particular order.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.planners))
	for id := range r.planners {
		out = append(out, id)
	}
	return out
}
