package core

// PassActor is the smallest interesting actor: one action reading
// one token from In.
func PassActor() (*Actor, error) {
	a := &Actor{
		Name:       "pass",
		InputPorts: []*PortDecl{{Name: "In", Type: "int"}},
		Actions: []*Action{
			{
				Tag:    "pass",
				Inputs: []*InputPattern{{Port: "In", Vars: []string{"x"}}},
			},
		},
	}
	return a, a.Compile()
}

// TurnstileActor is the classic turnstile as an actor with a
// scheduler FSM.  A coin unlocks; a push while unlocked emits a
// passage and locks again; a push while locked is refused.
func TurnstileActor() (*Actor, error) {
	a := &Actor{
		Name: "turnstile",
		Doc:  "A *turnstile*: coins unlock, pushes pass.",
		InputPorts: []*PortDecl{
			{Name: "Coin", Type: "int"},
			{Name: "Push", Type: "int"},
		},
		OutputPorts: []*PortDecl{
			{Name: "Passed", Type: "int"},
		},
		Vars: []*VarDecl{
			{Name: "count", Type: "int", Value: NewExpr("0")},
		},
		Actions: []*Action{
			{
				Tag:    "coin",
				Inputs: []*InputPattern{{Port: "Coin", Vars: []string{"c"}}},
			},
			{
				Tag:     "push.pass",
				Inputs:  []*InputPattern{{Port: "Push", Vars: []string{"p"}}},
				Body:    "count = count + 1;",
				Outputs: []*OutputExpression{{Port: "Passed", Exprs: []*Expr{NewExpr("count")}}},
			},
			{
				Tag:    "push.refuse",
				Inputs: []*InputPattern{{Port: "Push", Vars: []string{"p"}}},
			},
		},
		Schedule: &ScheduleFSM{
			Initial: "locked",
			Transitions: []*ScheduleTransition{
				{From: "locked", Tags: []string{"coin"}, To: "unlocked"},
				{From: "locked", Tags: []string{"push.refuse"}, To: "locked"},
				{From: "unlocked", Tags: []string{"push.pass"}, To: "locked"},
				{From: "unlocked", Tags: []string{"coin"}, To: "unlocked"},
			},
		},
	}
	return a, a.Compile()
}

// SplitActor routes non-negative tokens to Pos and the rest to Neg.
// The guarded action has priority over the unguarded one.
func SplitActor() (*Actor, error) {
	a := &Actor{
		Name:        "split",
		InputPorts:  []*PortDecl{{Name: "In", Type: "int"}},
		OutputPorts: []*PortDecl{{Name: "Pos", Type: "int"}, {Name: "Neg", Type: "int"}},
		Actions: []*Action{
			{
				Tag:     "pos",
				Inputs:  []*InputPattern{{Port: "In", Vars: []string{"x"}}},
				Guards:  []*Expr{NewExpr("x >= 0")},
				Outputs: []*OutputExpression{{Port: "Pos", Exprs: []*Expr{NewExpr("x")}}},
			},
			{
				Tag:     "neg",
				Inputs:  []*InputPattern{{Port: "In", Vars: []string{"x"}}},
				Outputs: []*OutputExpression{{Port: "Neg", Exprs: []*Expr{NewExpr("x")}}},
			},
		},
		Priorities: [][]string{{"pos", "neg"}},
	}
	return a, a.Compile()
}
