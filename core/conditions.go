package core

import (
	"fmt"
	"strconv"
)

// Direction is the direction of a port.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// Condition is either a *PortCondition or a *PredicateCondition.
type Condition interface {
	isCondition()
	String() string
}

// PortCondition asks whether at least N tokens (input) or N free
// slots (output) are available on Port.
type PortCondition struct {
	Port      string
	Direction Direction
	N         int
}

func (*PortCondition) isCondition() {}

func (c *PortCondition) String() string {
	if c.Direction == Output {
		return "space(" + c.Port + ", " + strconv.Itoa(c.N) + ")"
	}
	return "tokens(" + c.Port + ", " + strconv.Itoa(c.N) + ")"
}

// PredicateCondition wraps a guard expression.
type PredicateCondition struct {
	Guard *Expr
}

func (*PredicateCondition) isCondition() {}

func (c *PredicateCondition) String() string {
	return "guard(" + c.Guard.String() + ")"
}

type portKey struct {
	port string
	dir  Direction
	n    int
}

// Conditions is the condition registry of one actor.
//
// Indexes are allocated in first-occurrence order, walking the
// actions in declaration order and, within an action, its input
// patterns, output expressions, and guards.  Backends depend on this
// order when they name conditions.
type Conditions struct {
	actor string
	all   []Condition
	ports map[portKey]int

	inputs  map[*InputPattern]int
	outputs map[*OutputExpression]int
	guards  map[*Expr]int

	// owners maps a predicate condition index to the action that
	// declared the guard.
	owners map[int]*Action
}

// NewConditions builds the registry for the given actor.
func NewConditions(a *Actor) *Conditions {
	cs := &Conditions{
		actor:   a.Name,
		ports:   make(map[portKey]int),
		inputs:  make(map[*InputPattern]int),
		outputs: make(map[*OutputExpression]int),
		guards:  make(map[*Expr]int),
		owners:  make(map[int]*Action),
	}
	for _, action := range a.Actions {
		for _, in := range action.Inputs {
			cs.inputs[in] = cs.port(in.Port, Input, in.N())
		}
		for _, out := range action.Outputs {
			cs.outputs[out] = cs.port(out.Port, Output, out.N())
		}
		for _, g := range action.Guards {
			if _, have := cs.guards[g]; have {
				continue
			}
			i := len(cs.all)
			cs.all = append(cs.all, &PredicateCondition{Guard: g})
			cs.guards[g] = i
			cs.owners[i] = action
		}
	}
	return cs
}

func (cs *Conditions) port(name string, dir Direction, n int) int {
	key := portKey{name, dir, n}
	if i, have := cs.ports[key]; have {
		return i
	}
	i := len(cs.all)
	cs.all = append(cs.all, &PortCondition{Port: name, Direction: dir, N: n})
	cs.ports[key] = i
	return i
}

// All returns the conditions in index order.
func (cs *Conditions) All() []Condition {
	acc := make([]Condition, len(cs.all))
	copy(acc, cs.all)
	return acc
}

// Len is the number of registered conditions.
func (cs *Conditions) Len() int {
	return len(cs.all)
}

// Get returns the condition with the given index.
func (cs *Conditions) Get(i int) (Condition, error) {
	if i < 0 || len(cs.all) <= i {
		return nil, &MissingCondition{Actor: cs.actor, What: "index " + strconv.Itoa(i)}
	}
	return cs.all[i], nil
}

// ForInput returns the condition of an input pattern and its index.
func (cs *Conditions) ForInput(in *InputPattern) (*PortCondition, int, error) {
	i, have := cs.inputs[in]
	if !have {
		return nil, 0, &MissingCondition{Actor: cs.actor, What: fmt.Sprintf("input pattern on %q", in.Port)}
	}
	return cs.all[i].(*PortCondition), i, nil
}

// ForOutput returns the condition of an output expression and its
// index.
func (cs *Conditions) ForOutput(out *OutputExpression) (*PortCondition, int, error) {
	i, have := cs.outputs[out]
	if !have {
		return nil, 0, &MissingCondition{Actor: cs.actor, What: fmt.Sprintf("output expression on %q", out.Port)}
	}
	return cs.all[i].(*PortCondition), i, nil
}

// ForGuard returns the condition of a guard and its index.
func (cs *Conditions) ForGuard(g *Expr) (*PredicateCondition, int, error) {
	i, have := cs.guards[g]
	if !have {
		return nil, 0, &MissingCondition{Actor: cs.actor, What: fmt.Sprintf("guard %q", g.String())}
	}
	return cs.all[i].(*PredicateCondition), i, nil
}

// Owner returns the action that declared the guard behind the given
// predicate condition index.  Backends need it to bind the action's
// input variables before evaluating the guard.
func (cs *Conditions) Owner(i int) (*Action, error) {
	a, have := cs.owners[i]
	if !have {
		return nil, &MissingCondition{Actor: cs.actor, What: "guard owner for index " + strconv.Itoa(i)}
	}
	return a, nil
}
