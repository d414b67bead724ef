package core

import (
	"errors"
	"sort"
	"strings"
)

// KnowledgeKind is a category of knowledge a controller state can
// carry forward.
type KnowledgeKind string

const (
	InputKnowledge  KnowledgeKind = "input"
	OutputKnowledge KnowledgeKind = "output"
	GuardKnowledge  KnowledgeKind = "guards"

	// FineGuardKnowledge asks to forget only the guards an action
	// could have invalidated.  Not supported.
	FineGuardKnowledge KnowledgeKind = "guards-fine"
)

// KnowledgeKinds is a set of KnowledgeKind.
type KnowledgeKinds []KnowledgeKind

// Has reports whether k is in the set.
func (ks KnowledgeKinds) Has(k KnowledgeKind) bool {
	for _, x := range ks {
		if x == k {
			return true
		}
	}
	return false
}

func (ks KnowledgeKinds) String() string {
	ss := make([]string, len(ks))
	for i, k := range ks {
		ss[i] = string(k)
	}
	sort.Strings(ss)
	return strings.Join(ss, ",")
}

// ParseKnowledgeKinds parses a comma-separated list like
// "input,guards".  The empty string is the empty set.
func ParseKnowledgeKinds(s string) (KnowledgeKinds, error) {
	var acc KnowledgeKinds
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k := KnowledgeKind(part)
		switch k {
		case InputKnowledge, OutputKnowledge, GuardKnowledge, FineGuardKnowledge:
		default:
			return nil, errors.New("unknown knowledge kind '" + part + "'")
		}
		if !acc.Has(k) {
			acc = append(acc, k)
		}
	}
	return acc, nil
}

// KnowledgeRemoval says which knowledge is discarded, rather than
// carried forward, at each kind of controller transition.
type KnowledgeRemoval struct {
	OnExec KnowledgeKinds `json:"onExec,omitempty" yaml:"onExec,omitempty"`
	OnWait KnowledgeKinds `json:"onWait,omitempty" yaml:"onWait,omitempty"`
}

// Policy determines how many instructions a state gets when several
// are possible.
type Policy string

const (
	// AllInstructions keeps every Exec (or every Test).  More
	// than one Exec means the actor is nondeterministic.
	AllInstructions Policy = "all"

	// FirstInstruction keeps only the first instruction: the
	// lowest transition index for Exec, the first condition tested
	// for Test.
	FirstInstruction Policy = "first"
)

// Options configure translation.  The zero value forgets nothing and
// keeps all instructions.
type Options struct {
	Forget KnowledgeRemoval `json:"forget,omitempty" yaml:"forget,omitempty"`
	Policy Policy           `json:"policy,omitempty" yaml:"policy,omitempty"`
}

// Check reports configuration the synthesis can't honor.
func (o *Options) Check(actor string) error {
	if o.Forget.OnExec.Has(FineGuardKnowledge) {
		return &UnsupportedGuardRemoval{Actor: actor, Point: "exec"}
	}
	if o.Forget.OnWait.Has(FineGuardKnowledge) {
		return &UnsupportedGuardRemoval{Actor: actor, Point: "wait"}
	}
	switch o.Policy {
	case "", AllInstructions, FirstInstruction:
	default:
		return errors.New("unknown instruction policy '" + string(o.Policy) + "'")
	}
	return nil
}
