package tools

import (
	"strings"
	"testing"

	"github.com/streamblocks/cal2am/core"
)

func TestMermaid(t *testing.T) {
	snap := snapshot(t, core.TurnstileActor)

	out := &buffer{}
	if err := Mermaid(snap, out, nil); err != nil {
		t.Fatal(err)
	}
	g := out.String()
	if !strings.HasPrefix(g, "graph TB\n") {
		t.Fatalf("bad header in\n%s", g)
	}
	for _, want := range []string{
		`s0(("s0"))`,
		`exec coin`,
		`style i`,
		`-- true --> s`,
		`-. false .-> s`,
	} {
		if !strings.Contains(g, want) {
			t.Errorf("missing %q in\n%s", want, g)
		}
	}
}

func TestMermaidPlain(t *testing.T) {
	snap := snapshot(t, core.PassActor)
	out := &buffer{}
	if err := Mermaid(snap, out, &MermaidOpts{}); err != nil {
		t.Fatal(err)
	}
	g := out.String()
	if strings.Contains(g, "style ") || strings.Contains(g, "<br/>") {
		t.Fatalf("options ignored in\n%s", g)
	}
	if !strings.Contains(g, `i2_0((("wait")))`) {
		t.Fatalf("no wait in\n%s", g)
	}
}
