package core

import (
	"errors"
	"testing"
)

func TestConditionOrder(t *testing.T) {
	a, err := SplitActor()
	if err != nil {
		t.Fatal(err)
	}
	cs := NewConditions(a)

	want := []string{
		"tokens(In, 1)",
		"space(Pos, 1)",
		"guard(x >= 0)",
		"space(Neg, 1)",
	}
	all := cs.All()
	if len(all) != len(want) {
		t.Fatalf("%d conditions, wanted %d", len(all), len(want))
	}
	for i, c := range all {
		if c.String() != want[i] {
			t.Errorf("condition_%d is %s, wanted %s", i, c, want[i])
		}
	}

	// Both actions read one token from In: one condition.
	_, i, err := cs.ForInput(a.Actions[1].Inputs[0])
	if err != nil {
		t.Fatal(err)
	}
	if i != 0 {
		t.Fatalf("shared input condition has index %d", i)
	}

	owner, err := cs.Owner(2)
	if err != nil {
		t.Fatal(err)
	}
	if owner != a.Actions[0] {
		t.Fatalf("guard owned by %q", owner.Tag)
	}
}

func TestMissingCondition(t *testing.T) {
	a, err := PassActor()
	if err != nil {
		t.Fatal(err)
	}
	cs := NewConditions(a)

	var missing *MissingCondition

	if _, _, err = cs.ForInput(&InputPattern{Port: "In", Vars: []string{"y"}}); !errors.As(err, &missing) {
		t.Fatalf("expected MissingCondition, got %v", err)
	}
	if _, _, err = cs.ForGuard(NewExpr("true")); !errors.As(err, &missing) {
		t.Fatalf("expected MissingCondition, got %v", err)
	}
	if _, err = cs.Get(7); !errors.As(err, &missing) {
		t.Fatalf("expected MissingCondition, got %v", err)
	}
}

func TestTransitions(t *testing.T) {
	a, err := TurnstileActor()
	if err != nil {
		t.Fatal(err)
	}
	ts := NewTransitions(a, func(i int) int { return i + 1 })

	if n := len(ts.All()); n != 3 {
		t.Fatalf("%d transitions", n)
	}
	i, err := ts.Index(a.Actions[1])
	if err != nil {
		t.Fatal(err)
	}
	if i != 1 {
		t.Fatalf("index %d", i)
	}
	tr, _ := ts.Get(1)
	if tr.InputRates["Push"] != 1 || tr.OutputRates["Passed"] != 1 {
		t.Fatalf("bad rates %v %v", tr.InputRates, tr.OutputRates)
	}
	if len(tr.Body) != 3 {
		t.Fatalf("body has %d statements", len(tr.Body))
	}
	if _, is := tr.Body[0].(*StmtRead); !is {
		t.Fatalf("first statement is a %T", tr.Body[0])
	}
	if _, is := tr.Body[2].(*StmtWrite); !is {
		t.Fatalf("last statement is a %T", tr.Body[2])
	}

	var missing *MissingTransition
	if _, err = ts.Index(&Action{Tag: "stranger"}); !errors.As(err, &missing) {
		t.Fatalf("expected MissingTransition, got %v", err)
	}
}
