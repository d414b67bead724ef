package core

// InstructionKind distinguishes the three instructions.
type InstructionKind int

const (
	ExecKind InstructionKind = iota
	TestKind
	WaitKind
)

func (k InstructionKind) String() string {
	switch k {
	case ExecKind:
		return "exec"
	case TestKind:
		return "test"
	default:
		return "wait"
	}
}

// Instruction is an *Exec, a *Test, or a *Wait.
type Instruction interface {
	Kind() InstructionKind

	// Targets returns the successor states.  For a Test, the true
	// target comes first.
	Targets() []StateID
}

// Exec fires a transition and continues at Target.
type Exec struct {
	Transition int
	Target     StateID
}

// Test evaluates a condition and branches.
type Test struct {
	Condition int
	True      StateID
	False     StateID
}

// Wait yields.  The controller resumes at Target.
//
// WaitingFor is advisory: the conditions whose change could enable
// an action that is currently blocked on tokens or space.
type Wait struct {
	Target     StateID
	WaitingFor BitSet
}

func (*Exec) Kind() InstructionKind { return ExecKind }
func (*Test) Kind() InstructionKind { return TestKind }
func (*Wait) Kind() InstructionKind { return WaitKind }

func (i *Exec) Targets() []StateID { return []StateID{i.Target} }
func (i *Test) Targets() []StateID { return []StateID{i.True, i.False} }
func (i *Wait) Targets() []StateID { return []StateID{i.Target} }

// Controller is the actor machine's controller.  States are interned
// into an arena owned by the Controller, and each state's
// instructions are computed on first request.
//
// A Controller is not safe for concurrent use.  Controllers of
// different actors share nothing.
type Controller struct {
	actor       string
	opts        Options
	conditions  *Conditions
	transitions *Transitions
	priorities  *Priorities
	schedule    *Schedule

	states       []*State
	index        map[string]StateID
	instructions map[StateID][]Instruction
	initial      StateID
}

func newController(a *Actor, opts Options, cs *Conditions, ts *Transitions) *Controller {
	c := &Controller{
		actor:        a.Name,
		opts:         opts,
		conditions:   cs,
		transitions:  ts,
		priorities:   NewPriorities(a),
		schedule:     NewSchedule(a),
		index:        make(map[string]StateID),
		instructions: make(map[StateID][]Instruction),
	}
	c.initial = c.Intern(NewState(c.schedule.Initial(), nil, nil, nil))
	return c
}

// Intern returns the id of the canonical state equal to s, adding s
// if there is none yet.
func (c *Controller) Intern(s *State) StateID {
	key := s.Key()
	if id, have := c.index[key]; have {
		return id
	}
	id := StateID(len(c.states))
	c.states = append(c.states, s)
	c.index[key] = id
	return id
}

// Initial is the state in which the actor starts.
func (c *Controller) Initial() StateID {
	return c.initial
}

// Options returns the options the controller was built with.
func (c *Controller) Options() Options {
	return c.opts
}

// Len is the number of states interned so far.
func (c *Controller) Len() int {
	return len(c.states)
}

// State returns the canonical state with the given id.
func (c *Controller) State(id StateID) (*State, error) {
	if id < 0 || int(id) >= len(c.states) {
		return nil, UnknownState
	}
	return c.states[id], nil
}

// Instructions returns the instructions of the given state, computing
// them the first time.  Normally there is exactly one.
func (c *Controller) Instructions(id StateID) ([]Instruction, error) {
	if is, have := c.instructions[id]; have {
		return is, nil
	}
	s, err := c.State(id)
	if err != nil {
		return nil, err
	}
	is, err := c.compute(s)
	if err != nil {
		return nil, err
	}
	c.instructions[id] = is
	return is, nil
}

// StateList computes the whole reachable controller and returns its
// states in breadth-first order from the initial state.  Backends
// number states by their position in this list.
func (c *Controller) StateList() ([]StateID, error) {
	seen := map[StateID]bool{c.initial: true}
	acc := []StateID{c.initial}
	for i := 0; i < len(acc); i++ {
		is, err := c.Instructions(acc[i])
		if err != nil {
			return nil, err
		}
		for _, instr := range is {
			for _, t := range instr.Targets() {
				if !seen[t] {
					seen[t] = true
					acc = append(acc, t)
				}
			}
		}
	}
	return acc, nil
}

func (c *Controller) compute(s *State) ([]Instruction, error) {
	eligible := c.schedule.Eligible(s.Scheduler)

	notDisabled := make([]*Action, 0, len(eligible))
	tags := make(map[string]bool, len(eligible))
	for _, a := range eligible {
		in, err := c.inputConditions(s, a)
		if err != nil {
			return nil, err
		}
		if in == False {
			continue
		}
		g, err := c.guardConditions(s, a)
		if err != nil {
			return nil, err
		}
		if g == False {
			continue
		}
		notDisabled = append(notDisabled, a)
		tags[a.Tag] = true
	}

	prioritized := c.priorities.Prioritized(s.Scheduler, tags)
	high := notDisabled[:0:0]
	for _, a := range notDisabled {
		if prioritized[a.Tag] {
			high = append(high, a)
		}
	}

	var acc []Instruction
	for _, a := range high {
		fireable, err := c.fireable(s, a)
		if err != nil {
			return nil, err
		}
		if !fireable {
			continue
		}
		exec, err := c.exec(s, a)
		if err != nil {
			return nil, err
		}
		acc = append(acc, exec)
	}
	if len(acc) > 0 {
		return c.choose(acc), nil
	}

	testable := high[:0:0]
	for _, a := range high {
		out, err := c.outputConditions(s, a)
		if err != nil {
			return nil, err
		}
		if out != False {
			testable = append(testable, a)
		}
	}

	tests, err := c.tests(s, testable)
	if err != nil {
		return nil, err
	}
	if len(tests) > 0 {
		return c.choose(tests), nil
	}

	wait, err := c.wait(s, eligible)
	if err != nil {
		return nil, err
	}
	return []Instruction{wait}, nil
}

func (c *Controller) choose(is []Instruction) []Instruction {
	if c.opts.Policy == FirstInstruction && len(is) > 1 {
		return is[:1]
	}
	return is
}

func (c *Controller) fireable(s *State, a *Action) (bool, error) {
	for _, f := range []func(*State, *Action) (Knowledge, error){
		c.inputConditions, c.guardConditions, c.outputConditions,
	} {
		k, err := f(s, a)
		if err != nil {
			return false, err
		}
		if k != True {
			return false, nil
		}
	}
	return true, nil
}

func (c *Controller) inputConditions(s *State, a *Action) (Knowledge, error) {
	k := True
	for _, in := range a.Inputs {
		cond, _, err := c.conditions.ForInput(in)
		if err != nil {
			return Unknown, err
		}
		if k = k.And(s.PortCondition(cond)); k == False {
			break
		}
	}
	return k, nil
}

func (c *Controller) outputConditions(s *State, a *Action) (Knowledge, error) {
	k := True
	for _, out := range a.Outputs {
		cond, _, err := c.conditions.ForOutput(out)
		if err != nil {
			return Unknown, err
		}
		if k = k.And(s.PortCondition(cond)); k == False {
			break
		}
	}
	return k, nil
}

func (c *Controller) guardConditions(s *State, a *Action) (Knowledge, error) {
	k := True
	for _, g := range a.Guards {
		_, i, err := c.conditions.ForGuard(g)
		if err != nil {
			return Unknown, err
		}
		if k = k.And(s.PredicateCondition(i)); k == False {
			break
		}
	}
	return k, nil
}

func (c *Controller) exec(s *State, a *Action) (Instruction, error) {
	t, err := c.transitions.Index(a)
	if err != nil {
		return nil, err
	}

	var inputs map[string]PortKnowledge
	if !c.opts.Forget.OnExec.Has(InputKnowledge) {
		inputs = copyPorts(s.Inputs)
		for _, in := range a.Inputs {
			cond, _, err := c.conditions.ForInput(in)
			if err != nil {
				return nil, err
			}
			inputs[cond.Port] = inputs[cond.Port].Add(-cond.N)
		}
	}

	var outputs map[string]PortKnowledge
	if !c.opts.Forget.OnExec.Has(OutputKnowledge) {
		outputs = copyPorts(s.Outputs)
		for _, out := range a.Outputs {
			cond, _, err := c.conditions.ForOutput(out)
			if err != nil {
				return nil, err
			}
			outputs[cond.Port] = outputs[cond.Port].Add(-cond.N)
		}
	}

	// Guard knowledge never survives an Exec: the body can change
	// anything a guard reads.
	target := NewState(c.schedule.Target(s.Scheduler, a), inputs, outputs, nil)

	return &Exec{Transition: t, Target: c.Intern(target)}, nil
}

func copyPorts(m map[string]PortKnowledge) map[string]PortKnowledge {
	acc := make(map[string]PortKnowledge, len(m))
	for p, k := range m {
		acc[p] = k
	}
	return acc
}

func (c *Controller) tests(s *State, testable []*Action) ([]Instruction, error) {
	var (
		acc  []Instruction
		seen = make(map[int]bool)
	)
	port := func(cond *PortCondition, i int) {
		if seen[i] || s.PortCondition(cond) != Unknown {
			return
		}
		seen[i] = true
		acc = append(acc, &Test{
			Condition: i,
			True:      c.Intern(s.WithPortCondition(cond, true)),
			False:     c.Intern(s.WithPortCondition(cond, false)),
		})
	}

	for _, a := range testable {
		for _, in := range a.Inputs {
			cond, i, err := c.conditions.ForInput(in)
			if err != nil {
				return nil, err
			}
			port(cond, i)
		}
	}
	for _, a := range testable {
		for _, out := range a.Outputs {
			cond, i, err := c.conditions.ForOutput(out)
			if err != nil {
				return nil, err
			}
			port(cond, i)
		}
	}
	for _, a := range testable {
		for _, g := range a.Guards {
			_, i, err := c.conditions.ForGuard(g)
			if err != nil {
				return nil, err
			}
			if seen[i] || s.PredicateCondition(i) != Unknown {
				continue
			}
			seen[i] = true
			acc = append(acc, &Test{
				Condition: i,
				True:      c.Intern(s.WithPredicate(i, true)),
				False:     c.Intern(s.WithPredicate(i, false)),
			})
		}
	}
	return acc, nil
}

func (c *Controller) wait(s *State, eligible []*Action) (Instruction, error) {
	var waitingFor BitSet
	for _, a := range eligible {
		in, err := c.inputConditions(s, a)
		if err != nil {
			return nil, err
		}
		out, err := c.outputConditions(s, a)
		if err != nil {
			return nil, err
		}
		if in != False && out != False {
			continue
		}
		for _, p := range a.Inputs {
			_, i, err := c.conditions.ForInput(p)
			if err != nil {
				return nil, err
			}
			waitingFor.Set(i)
		}
		for _, p := range a.Outputs {
			_, i, err := c.conditions.ForOutput(p)
			if err != nil {
				return nil, err
			}
			waitingFor.Set(i)
		}
	}

	forget := c.opts.Forget.OnWait
	var inputs, outputs map[string]PortKnowledge
	if !forget.Has(InputKnowledge) {
		inputs = withoutAbsence(s.Inputs)
	}
	if !forget.Has(OutputKnowledge) {
		outputs = withoutAbsence(s.Outputs)
	}
	var predicates map[int]bool
	if !forget.Has(GuardKnowledge) {
		predicates = s.Predicates
	}

	target := NewState(s.Scheduler, inputs, outputs, predicates)
	return &Wait{Target: c.Intern(target), WaitingFor: waitingFor}, nil
}
