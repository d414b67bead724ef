package core

// Stmt is a statement of a Transition body: *StmtRead, *StmtAssign,
// *StmtSource, or *StmtWrite.
type Stmt interface {
	isStmt()
}

// StmtRead consumes tokens from Port into Vars.
type StmtRead struct {
	Port   string   `json:"port"`
	Vars   []string `json:"vars"`
	Repeat int      `json:"repeat,omitempty"`
}

// StmtAssign assigns an action-local variable.
type StmtAssign struct {
	Var   string `json:"var"`
	Value *Expr  `json:"value"`
}

// StmtSource is an opaque action body.
type StmtSource struct {
	Source string `json:"source"`
}

// StmtWrite produces the values of Exprs on Port.
type StmtWrite struct {
	Port   string  `json:"port"`
	Exprs  []*Expr `json:"exprs"`
	Repeat int     `json:"repeat,omitempty"`
}

func (*StmtRead) isStmt()   {}
func (*StmtAssign) isStmt() {}
func (*StmtSource) isStmt() {}
func (*StmtWrite) isStmt()  {}

// Transition is the lowered form of one Action.
type Transition struct {
	Tag         string         `json:"tag,omitempty"`
	InputRates  map[string]int `json:"inputRates,omitempty"`
	OutputRates map[string]int `json:"outputRates,omitempty"`

	// Scopes lists the transient scopes the transition uses.
	Scopes []int  `json:"scopes,omitempty"`
	Body   []Stmt `json:"-"`
}

// Transitions is the transition registry of one actor: one
// Transition per Action, with the action's position as its index.
type Transitions struct {
	actor string
	all   []*Transition
	index map[*Action]int
}

// NewTransitions lowers every action of the actor.  The i-th action
// uses transient scope scopeOf(i).
func NewTransitions(a *Actor, scopeOf func(int) int) *Transitions {
	ts := &Transitions{
		actor: a.Name,
		all:   make([]*Transition, len(a.Actions)),
		index: make(map[*Action]int, len(a.Actions)),
	}
	for i, action := range a.Actions {
		ts.all[i] = lower(action, scopeOf(i))
		ts.index[action] = i
	}
	return ts
}

func lower(a *Action, scope int) *Transition {
	t := &Transition{
		Tag:         a.Tag,
		InputRates:  make(map[string]int, len(a.Inputs)),
		OutputRates: make(map[string]int, len(a.Outputs)),
		Scopes:      []int{scope},
		Body:        make([]Stmt, 0, len(a.Inputs)+len(a.Vars)+len(a.Outputs)+1),
	}
	for _, in := range a.Inputs {
		t.InputRates[in.Port] += in.N()
		t.Body = append(t.Body, &StmtRead{Port: in.Port, Vars: in.Vars, Repeat: in.Repeat})
	}
	for _, v := range a.Vars {
		if v.Value != nil {
			t.Body = append(t.Body, &StmtAssign{Var: v.Name, Value: v.Value})
		}
	}
	if a.Body != "" {
		t.Body = append(t.Body, &StmtSource{Source: a.Body})
	}
	for _, out := range a.Outputs {
		t.OutputRates[out.Port] += out.N()
		t.Body = append(t.Body, &StmtWrite{Port: out.Port, Exprs: out.Exprs, Repeat: out.Repeat})
	}
	return t
}

// All returns the transitions in index order.
func (ts *Transitions) All() []*Transition {
	acc := make([]*Transition, len(ts.all))
	copy(acc, ts.all)
	return acc
}

// Get returns the transition with the given index.
func (ts *Transitions) Get(i int) (*Transition, error) {
	if i < 0 || len(ts.all) <= i {
		return nil, &MissingTransition{Actor: ts.actor, Action: "#" + itoa(i)}
	}
	return ts.all[i], nil
}

// Index returns the transition index of the given action.
func (ts *Transitions) Index(a *Action) (int, error) {
	i, have := ts.index[a]
	if !have {
		tag := ""
		if a != nil {
			tag = a.Tag
		}
		return 0, &MissingTransition{Actor: ts.actor, Action: tag}
	}
	return i, nil
}

// Scope is a set of declarations that are initialized together.
// Persistent scopes live as long as the actor; transient scopes are
// (re)initialized by the transitions that use them.
type Scope struct {
	Persistent bool       `json:"persistent"`
	Decls      []*VarDecl `json:"decls,omitempty"`
}

// scopes makes scope 0 from the actor's parameters and variables and
// one transient scope per action holding its input and local
// variables.
func scopes(a *Actor) []*Scope {
	acc := make([]*Scope, 0, len(a.Actions)+1)
	persistent := &Scope{Persistent: true}
	persistent.Decls = append(persistent.Decls, a.ValueParameters...)
	persistent.Decls = append(persistent.Decls, a.Vars...)
	acc = append(acc, persistent)
	for _, action := range a.Actions {
		s := &Scope{}
		for _, in := range action.Inputs {
			for _, v := range in.Vars {
				s.Decls = append(s.Decls, &VarDecl{Name: v, Type: portType(a.InputPort(in.Port))})
			}
		}
		s.Decls = append(s.Decls, action.Vars...)
		acc = append(acc, s)
	}
	return acc
}

func portType(p *PortDecl) string {
	if p == nil {
		return ""
	}
	return p.Type
}
