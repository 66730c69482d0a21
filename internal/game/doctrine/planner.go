package doctrine

import "fmt"

// PlannedAction is one primitive action produced by the planner. Target is
// a resolved actor ID; empty for hold and retreat.
type PlannedAction struct {
	Action string
	Target string
}

// Planner evaluates a doctrine for the active squad member and produces an
// ordered action plan for the current turn.
//
// Invariant: doctrine and eval must not be nil.
type Planner struct {
	doctrine *Doctrine
	eval     PredicateEvaluator
}

// NewPlanner constructs a Planner.
//
// Precondition: d and eval must not be nil.
func NewPlanner(d *Doctrine, eval PredicateEvaluator) *Planner {
	if d == nil {
		panic("doctrine.NewPlanner: doctrine must not be nil")
	}
	if eval == nil {
		panic("doctrine.NewPlanner: eval must not be nil")
	}
	return &Planner{doctrine: d, eval: eval}
}

// DoctrineID returns the ID of the doctrine this planner evaluates.
func (p *Planner) DoctrineID() string { return p.doctrine.ID }

// Plan decomposes the doctrine's root task against snap and returns an
// ordered plan.
//
// Precondition: snap and snap.Self must not be nil.
// Postcondition: returns a non-nil slice (may be empty); predicate
// evaluation errors are treated as precondition-false, never surfaced.
func (p *Planner) Plan(snap *Snapshot) ([]PlannedAction, error) {
	if snap == nil || snap.Self == nil {
		return nil, fmt.Errorf("doctrine.Planner.Plan: snap and snap.Self must not be nil")
	}

	taskQueue := []string{p.doctrine.Root}
	var result []PlannedAction

	const maxDepth = 32 // guard against cyclic decompositions
	steps := 0

	for len(taskQueue) > 0 && steps < maxDepth {
		steps++
		current := taskQueue[0]
		taskQueue = taskQueue[1:]

		// Primitive operator, resolve and emit.
		if op, ok := p.doctrine.OperatorByID(current); ok {
			target := snap.ResolveTarget(op.Target)
			result = append(result, PlannedAction{Action: op.Action, Target: target})
			continue
		}

		// Abstract task, find the first applicable method.
		method := p.findApplicableMethod(current, snap)
		if method == nil {
			continue
		}

		// Prepend subtasks to preserve ordered decomposition. Copy so the
		// doctrine's own slices are never extended in place.
		merged := make([]string, 0, len(method.Subtasks)+len(taskQueue))
		merged = append(merged, method.Subtasks...)
		taskQueue = append(merged, taskQueue...)
	}

	if result == nil {
		result = []PlannedAction{}
	}
	return result, nil
}

// findApplicableMethod returns the first Method for taskID whose
// precondition passes, or nil if none applies.
//
// Methods are tried in declaration order. An empty Precondition always
// passes.
func (p *Planner) findApplicableMethod(taskID string, snap *Snapshot) *Method {
	for _, m := range p.doctrine.MethodsForTask(taskID) {
		if m.Precondition == "" {
			return m
		}
		ok, _ := p.eval.Evaluate(m.Precondition, snap)
		if ok {
			return m
		}
	}
	return nil
}
