package core

// Snapshot is the fully expanded, serializable form of an
// ActorMachine's controller.  States are numbered by their position
// in Controller.StateList(), so state 0 is the initial state.
type Snapshot struct {
	Name        string                `json:"name"`
	Doc         string                `json:"doc,omitempty" yaml:",omitempty"`
	Fingerprint string                `json:"fingerprint,omitempty" yaml:",omitempty"`
	Compiled    string                `json:"compiled,omitempty" yaml:",omitempty"`
	Inputs      []*PortDecl           `json:"inputs,omitempty" yaml:",omitempty"`
	Outputs     []*PortDecl           `json:"outputs,omitempty" yaml:",omitempty"`
	Conditions  []*ConditionSnapshot  `json:"conditions,omitempty" yaml:",omitempty"`
	Transitions []*TransitionSnapshot `json:"transitions,omitempty" yaml:",omitempty"`
	States      []*StateSnapshot      `json:"states"`
}

type ConditionSnapshot struct {
	Kind      string `json:"kind"`
	Port      string `json:"port,omitempty" yaml:",omitempty"`
	Direction string `json:"direction,omitempty" yaml:",omitempty"`
	N         int    `json:"n,omitempty" yaml:",omitempty"`
	Guard     string `json:"guard,omitempty" yaml:",omitempty"`
}

// Label is a short human description of the condition.
func (c *ConditionSnapshot) Label() string {
	if c.Kind == "predicate" {
		return c.Guard
	}
	if c.Direction == Output.String() {
		return "space(" + c.Port + ", " + itoa(c.N) + ")"
	}
	return "tokens(" + c.Port + ", " + itoa(c.N) + ")"
}

type TransitionSnapshot struct {
	Tag         string         `json:"tag,omitempty" yaml:",omitempty"`
	InputRates  map[string]int `json:"inputRates,omitempty" yaml:"inputRates,omitempty"`
	OutputRates map[string]int `json:"outputRates,omitempty" yaml:"outputRates,omitempty"`
}

type StateSnapshot struct {
	Scheduler    []string                `json:"scheduler,omitempty" yaml:",omitempty"`
	Inputs       map[string]string       `json:"inputs,omitempty" yaml:",omitempty"`
	Outputs      map[string]string       `json:"outputs,omitempty" yaml:",omitempty"`
	Predicates   map[int]bool            `json:"predicates,omitempty" yaml:",omitempty"`
	Instructions []*InstructionSnapshot `json:"instructions"`
}

// InstructionSnapshot is an instruction with its targets given as
// state numbers.  Which fields are set depends on Kind.
type InstructionSnapshot struct {
	Kind       string `json:"kind"`
	Transition *int   `json:"transition,omitempty" yaml:",omitempty"`
	Condition  *int   `json:"condition,omitempty" yaml:",omitempty"`
	Target     *int   `json:"target,omitempty" yaml:",omitempty"`
	True       *int   `json:"true,omitempty" yaml:",omitempty"`
	False      *int   `json:"false,omitempty" yaml:",omitempty"`
	WaitingFor []int  `json:"waitingFor,omitempty" yaml:"waitingFor,omitempty"`
}

func intp(i int) *int {
	return &i
}

// Snapshot computes the whole controller and lowers it.
func (m *ActorMachine) Snapshot() (*Snapshot, error) {
	ids, err := m.Controller.StateList()
	if err != nil {
		return nil, err
	}
	num := make(map[StateID]int, len(ids))
	for i, id := range ids {
		num[id] = i
	}

	snap := &Snapshot{
		Name:    m.Name,
		Inputs:  m.InputPorts,
		Outputs: m.OutputPorts,
		States:  make([]*StateSnapshot, 0, len(ids)),
	}
	if m.Actor != nil {
		snap.Doc = m.Actor.Doc
	}

	for _, c := range m.Conditions.All() {
		switch vv := c.(type) {
		case *PortCondition:
			snap.Conditions = append(snap.Conditions, &ConditionSnapshot{
				Kind:      "port",
				Port:      vv.Port,
				Direction: vv.Direction.String(),
				N:         vv.N,
			})
		case *PredicateCondition:
			snap.Conditions = append(snap.Conditions, &ConditionSnapshot{
				Kind:  "predicate",
				Guard: vv.Guard.String(),
			})
		}
	}

	for _, t := range m.Transitions.All() {
		snap.Transitions = append(snap.Transitions, &TransitionSnapshot{
			Tag:         t.Tag,
			InputRates:  t.InputRates,
			OutputRates: t.OutputRates,
		})
	}

	for _, id := range ids {
		s, err := m.Controller.State(id)
		if err != nil {
			return nil, err
		}
		is, err := m.Controller.Instructions(id)
		if err != nil {
			return nil, err
		}
		ss := &StateSnapshot{
			Scheduler:    s.Scheduler,
			Inputs:       portStrings(s.Inputs),
			Outputs:      portStrings(s.Outputs),
			Instructions: make([]*InstructionSnapshot, 0, len(is)),
		}
		if len(s.Predicates) > 0 {
			ss.Predicates = s.Predicates
		}
		for _, instr := range is {
			switch vv := instr.(type) {
			case *Exec:
				ss.Instructions = append(ss.Instructions, &InstructionSnapshot{
					Kind:       ExecKind.String(),
					Transition: intp(vv.Transition),
					Target:     intp(num[vv.Target]),
				})
			case *Test:
				ss.Instructions = append(ss.Instructions, &InstructionSnapshot{
					Kind:      TestKind.String(),
					Condition: intp(vv.Condition),
					True:      intp(num[vv.True]),
					False:     intp(num[vv.False]),
				})
			case *Wait:
				ss.Instructions = append(ss.Instructions, &InstructionSnapshot{
					Kind:       WaitKind.String(),
					Target:     intp(num[vv.Target]),
					WaitingFor: vv.WaitingFor.Indexes(),
				})
			}
		}
		snap.States = append(snap.States, ss)
	}

	return snap, nil
}

func portStrings(m map[string]PortKnowledge) map[string]string {
	if len(m) == 0 {
		return nil
	}
	acc := make(map[string]string, len(m))
	for p, k := range m {
		acc[p] = k.String()
	}
	return acc
}
