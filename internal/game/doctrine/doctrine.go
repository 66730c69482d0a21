// Package doctrine implements the Hierarchical Task Network (HTN) planner
// behind declarative squad doctrines.
//
// HTN planning decomposes abstract tasks into primitive operators via ordered
// methods. Method preconditions are named predicates evaluated against a
// combat snapshot; operators map to encounter actions.
package doctrine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Operator actions recognized by the planner and its consumers.
const (
	ActionAttack  = "attack"
	ActionAdvance = "advance"
	ActionRetreat = "retreat"
	ActionEscape  = "escape"
	ActionHold    = "hold"
)

// Task is an abstract goal that can be decomposed by methods.
//
// Precondition: ID must be non-empty.
type Task struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
}

// Method decomposes a task into an ordered list of subtasks or operator IDs.
//
// Precondition: TaskID, ID, and Subtasks must be non-empty.
// Precondition: Precondition is a predicate name; empty means always applicable.
type Method struct {
	TaskID       string   `yaml:"task"`
	ID           string   `yaml:"id"`
	Precondition string   `yaml:"precondition"` // predicate name; empty = always applicable
	Subtasks     []string `yaml:"subtasks"`
}

// Operator is a primitive action that maps directly to an encounter action.
//
// Precondition: ID must be non-empty and Action must be one of the Action
// constants.
type Operator struct {
	ID     string `yaml:"id"`
	Action string `yaml:"action"` // attack, advance, retreat, escape, hold
	Target string `yaml:"target"` // nearest_enemy, weakest_enemy, weakest_ally, self, or a literal actor ID
}

// Doctrine holds a full HTN domain loaded from a YAML file. Root names the
// task decomposition starts from.
//
// Invariant: all Task, Method, and Operator IDs are unique within their slice.
type Doctrine struct {
	ID          string      `yaml:"id"`
	Description string      `yaml:"description"`
	Root        string      `yaml:"root"`
	Tasks       []*Task     `yaml:"tasks"`
	Methods     []*Method   `yaml:"methods"`
	Operators   []*Operator `yaml:"operators"`
}

func validAction(action string) bool {
	switch action {
	case ActionAttack, ActionAdvance, ActionRetreat, ActionEscape, ActionHold:
		return true
	default:
		return false
	}
}

// Validate checks all required fields and cross-field constraints.
//
// Postcondition: nil return guarantees non-empty ID, a Root referencing a
// declared task, at least one Task with non-empty ID, all Method TaskIDs and
// IDs non-empty with non-empty Subtasks, all Operator IDs non-empty with
// recognized Actions, no duplicate IDs within any slice, and all
// cross-references valid.
func (d *Doctrine) Validate() error {
	if d.ID == "" {
		return errors.New("doctrine: ID must not be empty")
	}
	if d.Root == "" {
		return fmt.Errorf("doctrine %q: root task must not be empty", d.ID)
	}
	if len(d.Tasks) == 0 {
		return fmt.Errorf("doctrine %q: must have at least one task", d.ID)
	}
	for _, t := range d.Tasks {
		if t.ID == "" {
			return fmt.Errorf("doctrine %q: task has empty ID", d.ID)
		}
	}
	for _, m := range d.Methods {
		if m.TaskID == "" || m.ID == "" {
			return fmt.Errorf("doctrine %q: method missing task or ID", d.ID)
		}
		if len(m.Subtasks) == 0 {
			return fmt.Errorf("doctrine %q method %q: subtasks must not be empty", d.ID, m.ID)
		}
	}
	for _, op := range d.Operators {
		if op.ID == "" {
			return fmt.Errorf("doctrine %q: operator has empty ID", d.ID)
		}
		if !validAction(op.Action) {
			return fmt.Errorf("doctrine %q operator %q: unknown action %q", d.ID, op.ID, op.Action)
		}
	}

	taskIDs := make(map[string]struct{}, len(d.Tasks))
	for _, t := range d.Tasks {
		if _, dup := taskIDs[t.ID]; dup {
			return fmt.Errorf("doctrine %q: duplicate task ID %q", d.ID, t.ID)
		}
		taskIDs[t.ID] = struct{}{}
	}

	methodIDs := make(map[string]struct{}, len(d.Methods))
	for _, m := range d.Methods {
		if _, dup := methodIDs[m.ID]; dup {
			return fmt.Errorf("doctrine %q: duplicate method ID %q", d.ID, m.ID)
		}
		methodIDs[m.ID] = struct{}{}
	}

	operatorIDs := make(map[string]struct{}, len(d.Operators))
	for _, op := range d.Operators {
		if _, dup := operatorIDs[op.ID]; dup {
			return fmt.Errorf("doctrine %q: duplicate operator ID %q", d.ID, op.ID)
		}
		operatorIDs[op.ID] = struct{}{}
	}

	if _, ok := taskIDs[d.Root]; !ok {
		return fmt.Errorf("doctrine %q: root %q references unknown task", d.ID, d.Root)
	}
	for _, m := range d.Methods {
		if _, ok := taskIDs[m.TaskID]; !ok {
			return fmt.Errorf("doctrine %q method %q: task %q references unknown task", d.ID, m.ID, m.TaskID)
		}
	}

	// Subtasks may name either tasks or operators.
	validSubtasks := make(map[string]struct{}, len(d.Tasks)+len(d.Operators))
	for id := range taskIDs {
		validSubtasks[id] = struct{}{}
	}
	for id := range operatorIDs {
		validSubtasks[id] = struct{}{}
	}
	for _, m := range d.Methods {
		for _, sub := range m.Subtasks {
			if _, ok := validSubtasks[sub]; !ok {
				return fmt.Errorf("doctrine %q method %q: subtask %q is neither a task nor an operator", d.ID, m.ID, sub)
			}
		}
	}

	return nil
}

// OperatorByID returns the operator with the given ID, or false if not found.
func (d *Doctrine) OperatorByID(id string) (*Operator, bool) {
	for _, op := range d.Operators {
		if op.ID == id {
			return op, true
		}
	}
	return nil, false
}

// MethodsForTask returns all methods that decompose taskID, in declaration order.
func (d *Doctrine) MethodsForTask(taskID string) []*Method {
	var out []*Method
	for _, m := range d.Methods {
		if m.TaskID == taskID {
			out = append(out, m)
		}
	}
	return out
}

// yamlDoctrineFile wraps the YAML top-level key.
type yamlDoctrineFile struct {
	Doctrine *Doctrine `yaml:"doctrine"`
}

// LoadDoctrineFromBytes parses and validates a single doctrine from raw YAML.
func LoadDoctrineFromBytes(data []byte) (*Doctrine, error) {
	var f yamlDoctrineFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing doctrine YAML: %w", err)
	}
	if f.Doctrine == nil {
		return nil, errors.New("doctrine YAML missing top-level 'doctrine' key")
	}
	if err := f.Doctrine.Validate(); err != nil {
		return nil, err
	}
	return f.Doctrine, nil
}

// LoadDoctrines reads all *.yaml files from dir and returns parsed Doctrines.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns error if any YAML file fails to parse or validate.
// Postcondition: returns (nil, nil) if dir contains no .yaml files; callers
// should treat empty results as a configuration error if doctrines are
// required.
func LoadDoctrines(dir string) ([]*Doctrine, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("doctrine.LoadDoctrines: reading %q: %w", dir, err)
	}
	var doctrines []*Doctrine
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("doctrine.LoadDoctrines: reading %s: %w", e.Name(), err)
		}
		d, err := LoadDoctrineFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("doctrine.LoadDoctrines: %s: %w", e.Name(), err)
		}
		doctrines = append(doctrines, d)
	}
	return doctrines, nil
}
