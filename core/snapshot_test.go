package core

import (
	"encoding/json"
	"testing"
)

func TestSnapshot(t *testing.T) {
	a, err := PassActor()
	m := translate(t, a, err, nil)

	snap, err := m.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.States) != 3 {
		t.Fatalf("%d states", len(snap.States))
	}
	if len(snap.Conditions) != 1 || snap.Conditions[0].Label() != "tokens(In, 1)" {
		t.Fatalf("conditions %v", snap.Conditions)
	}

	test := snap.States[0].Instructions[0]
	if test.Kind != "test" || *test.Condition != 0 || *test.True != 1 || *test.False != 2 {
		t.Fatalf("initial instruction %#v", test)
	}
	exec := snap.States[1].Instructions[0]
	if exec.Kind != "exec" || *exec.Transition != 0 || *exec.Target != 0 {
		t.Fatalf("exec %#v", exec)
	}
	if snap.States[1].Inputs["In"] != "[1,*]" {
		t.Fatalf("true branch knowledge %v", snap.States[1].Inputs)
	}
	wait := snap.States[2].Instructions[0]
	if wait.Kind != "wait" || *wait.Target != 0 || len(wait.WaitingFor) != 1 {
		t.Fatalf("wait %#v", wait)
	}

	if _, err = json.Marshal(snap); err != nil {
		t.Fatal(err)
	}
}

func TestSnapshotPredicates(t *testing.T) {
	a, err := SplitActor()
	m := translate(t, a, err, nil)
	snap, err := m.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	guards := 0
	for _, c := range snap.Conditions {
		if c.Kind == "predicate" {
			guards++
			if c.Label() != "x >= 0" {
				t.Fatalf("guard label %q", c.Label())
			}
		}
	}
	if guards != 1 {
		t.Fatalf("%d guards", guards)
	}
	known := false
	for _, s := range snap.States {
		if len(s.Predicates) > 0 {
			known = true
		}
	}
	if !known {
		t.Fatal("no state knows the guard")
	}
}
