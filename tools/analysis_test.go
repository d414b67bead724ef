package tools

import (
	"reflect"
	"testing"

	"github.com/streamblocks/cal2am/core"
)

func TestAnalysis(t *testing.T) {
	a, err := Analyze(snapshot(t, core.PassActor))
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Errors) != 0 {
		t.Fatal(a.Errors)
	}
	if a.States != 3 || a.Execs != 1 || a.Tests != 1 || a.Waits != 1 {
		t.Fatalf("%d states, %d execs, %d tests, %d waits", a.States, a.Execs, a.Tests, a.Waits)
	}
	if !reflect.DeepEqual(a.WaitStates, []int{2}) {
		t.Fatalf("wait states %v", a.WaitStates)
	}
	if len(a.Unfired) != 0 || len(a.Untested) != 0 || len(a.Nondeterministic) != 0 {
		t.Fatalf("unexpected findings %#v", a)
	}
}

func TestAnalysisFindings(t *testing.T) {
	snap := snapshot(t, core.PassActor)
	snap.Transitions = append(snap.Transitions, &core.TransitionSnapshot{Tag: "ghost"})
	snap.States[1].Instructions[0].Target = nil
	bad := 9
	snap.States[2].Instructions[0].Target = &bad

	a, err := Analyze(snap)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Errors) != 2 {
		t.Fatalf("errors %v", a.Errors)
	}
	if !reflect.DeepEqual(a.Unfired, []string{"ghost"}) {
		t.Fatalf("unfired %v", a.Unfired)
	}
}
