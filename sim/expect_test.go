package sim_test

import (
	"context"
	"errors"
	"testing"

	"github.com/streamblocks/cal2am/interpreters/goja"
	"github.com/streamblocks/cal2am/network"
	"github.com/streamblocks/cal2am/sim"
)

func TestExpect(t *testing.T) {
	n, actors, err := network.Load("../network/testdata/pipeline.yaml")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	run := func() map[string][]interface{} {
		r, err := sim.NewRunner(ctx, n, machines(t, actors), goja.NewInterpreter(), 0)
		if err != nil {
			t.Fatal(err)
		}
		if err = r.Feed("router", "In", 3, -2, 5); err != nil {
			t.Fatal(err)
		}
		if _, err = r.Run(ctx, 0); err != nil {
			t.Fatal(err)
		}
		return r.DrainAll()
	}

	drained := run()
	if len(drained) != 1 {
		t.Fatalf("drained %v", drained)
	}

	bs, err := sim.Check(sim.Expectation{"double.Out": {6, "?last"}}, drained)
	if err != nil {
		t.Fatal(err)
	}
	if bs["?last"] != float64(10) {
		t.Fatalf("bound %v", bs)
	}

	var mismatch *sim.Mismatch
	if _, err = sim.Check(sim.Expectation{"double.Out": {6}}, drained); !errors.As(err, &mismatch) {
		t.Fatalf("expected a Mismatch, got %v", err)
	}
	if mismatch.Endpoint != "double.Out" {
		t.Fatalf("mismatch at %s", mismatch.Endpoint)
	}

	if _, err = sim.Check(sim.Expectation{"sink.Out": {}}, drained); err == nil {
		t.Fatal("unknown port accepted")
	}
}
