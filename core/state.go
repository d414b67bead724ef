package core

import (
	"sort"
	"strconv"
	"strings"
)

// StateID names an interned controller state.  It is only meaningful
// for the Controller that produced it.
type StateID int

// State is one point of the controller: the scheduler state plus what
// is known about ports and guards.
//
// A State is immutable once interned.  Nil port knowledge is never
// stored, so a missing entry and a nil entry are the same thing.
type State struct {
	Scheduler  []string
	Inputs     map[string]PortKnowledge
	Outputs    map[string]PortKnowledge
	Predicates map[int]bool

	key string
}

// NewState makes a candidate state.  The maps are copied and nil
// port knowledge is dropped.
func NewState(scheduler []string, inputs, outputs map[string]PortKnowledge, predicates map[int]bool) *State {
	s := &State{
		Scheduler:  append([]string(nil), scheduler...),
		Inputs:     normalize(inputs),
		Outputs:    normalize(outputs),
		Predicates: make(map[int]bool, len(predicates)),
	}
	sort.Strings(s.Scheduler)
	for i, b := range predicates {
		s.Predicates[i] = b
	}
	return s
}

func normalize(m map[string]PortKnowledge) map[string]PortKnowledge {
	acc := make(map[string]PortKnowledge, len(m))
	for p, k := range m {
		if !k.IsNil() {
			acc[p] = k
		}
	}
	return acc
}

// Key is the canonical representation used for interning.  Two
// states are equal exactly when their keys are.
func (s *State) Key() string {
	if s.key != "" {
		return s.key
	}
	var b strings.Builder
	for _, q := range s.Scheduler {
		b.WriteString(strconv.Quote(q))
	}
	b.WriteString("|")
	writePorts(&b, s.Inputs)
	b.WriteString("|")
	writePorts(&b, s.Outputs)
	b.WriteString("|")
	is := make([]int, 0, len(s.Predicates))
	for i := range s.Predicates {
		is = append(is, i)
	}
	sort.Ints(is)
	for _, i := range is {
		b.WriteString(strconv.Itoa(i))
		if s.Predicates[i] {
			b.WriteString("+")
		} else {
			b.WriteString("-")
		}
	}
	s.key = b.String()
	return s.key
}

func writePorts(b *strings.Builder, m map[string]PortKnowledge) {
	ps := make([]string, 0, len(m))
	for p := range m {
		ps = append(ps, p)
	}
	sort.Strings(ps)
	for _, p := range ps {
		b.WriteString(strconv.Quote(p))
		b.WriteString(m[p].String())
	}
}

func (s *State) String() string {
	return s.Key()
}

// port returns the knowledge about the port of the condition.
func (s *State) port(c *PortCondition) PortKnowledge {
	if c.Direction == Output {
		return s.Outputs[c.Port]
	}
	return s.Inputs[c.Port]
}

// PortCondition evaluates a port condition.
func (s *State) PortCondition(c *PortCondition) Knowledge {
	return s.port(c).Has(c.N)
}

// PredicateCondition evaluates the predicate condition with the given
// index.
func (s *State) PredicateCondition(i int) Knowledge {
	b, have := s.Predicates[i]
	if !have {
		return Unknown
	}
	return OfBool(b)
}

// WithPortCondition returns the candidate state in which c is known to
// have the given value.
func (s *State) WithPortCondition(c *PortCondition, value bool) *State {
	k := s.port(c)
	if value {
		k = k.WithLowerBound(c.N)
	} else {
		k = k.WithUpperBound(c.N - 1)
	}
	inputs, outputs := s.Inputs, s.Outputs
	if c.Direction == Output {
		outputs = with(outputs, c.Port, k)
	} else {
		inputs = with(inputs, c.Port, k)
	}
	return NewState(s.Scheduler, inputs, outputs, s.Predicates)
}

func with(m map[string]PortKnowledge, p string, k PortKnowledge) map[string]PortKnowledge {
	acc := make(map[string]PortKnowledge, len(m)+1)
	for q, v := range m {
		acc[q] = v
	}
	acc[p] = k
	return acc
}

// WithPredicate returns the candidate state in which the predicate
// condition with index i is known to have the given value.
func (s *State) WithPredicate(i int, value bool) *State {
	ps := make(map[int]bool, len(s.Predicates)+1)
	for j, b := range s.Predicates {
		ps[j] = b
	}
	ps[i] = value
	return NewState(s.Scheduler, s.Inputs, s.Outputs, ps)
}

// withoutAbsence forgets everything waiting could change: proven
// absence of tokens or space.
func withoutAbsence(m map[string]PortKnowledge) map[string]PortKnowledge {
	acc := make(map[string]PortKnowledge, len(m))
	for p, k := range m {
		if k.LowerBound() == 0 {
			continue
		}
		acc[p] = k.WithoutUpperBound()
	}
	return acc
}

// BitSet is a small set of condition indexes.
type BitSet []uint64

// Set adds i.
func (bs *BitSet) Set(i int) {
	for len(*bs) <= i/64 {
		*bs = append(*bs, 0)
	}
	(*bs)[i/64] |= 1 << uint(i%64)
}

// Has reports whether i is in the set.
func (bs BitSet) Has(i int) bool {
	if i < 0 || len(bs) <= i/64 {
		return false
	}
	return bs[i/64]&(1<<uint(i%64)) != 0
}

// Indexes returns the members in increasing order.
func (bs BitSet) Indexes() []int {
	acc := make([]int, 0, 8)
	for w, word := range bs {
		for b := 0; b < 64; b++ {
			if word&(1<<uint(b)) != 0 {
				acc = append(acc, w*64+b)
			}
		}
	}
	return acc
}
