package tools

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	. "github.com/streamblocks/cal2am/core"

	"gopkg.in/yaml.v2"
)

// knowledge is what a state node shows about what it knows.
type knowledge struct {
	Scheduler  []string          `yaml:"scheduler,omitempty"`
	Inputs     map[string]string `yaml:"inputs,omitempty"`
	Outputs    map[string]string `yaml:"outputs,omitempty"`
	Predicates map[int]bool      `yaml:"guards,omitempty"`
}

// Dot makes a Graphviz dot file for the given controller.
//
// States are circles.  Each instruction is its own node: a box for an
// exec, a diamond for a test, and a double circle for a wait.  The
// false branch of a test is dashed.
//
// The optional from and to are state numbers during a step.  If
// non-negative, the edge between them is red and the to state is
// filled red.
func Dot(snap *Snapshot, w io.WriteCloser, from, to int) error {

	fmt.Fprintf(w, "digraph G {\n")
	fmt.Fprintf(w, `  graph [ordering=out,rankdir=TB,nodesep=0.3,ranksep=0.6,label="%s"]
  node [style="filled"]
  edge [fontsize = "10"]
`, escape(snap.Name))

	for i, s := range snap.States {
		label := fmt.Sprintf("s%d", i)
		bs, err := yaml.Marshal(&knowledge{
			Scheduler:  s.Scheduler,
			Inputs:     s.Inputs,
			Outputs:    s.Outputs,
			Predicates: s.Predicates,
		})
		if err != nil {
			return err
		}
		if k := strings.TrimSpace(string(bs)); k != "{}" {
			k = html(k)
			label += `<BR/><FONT POINT-SIZE="8">` +
				strings.Replace(k+"\n", "\n", `<BR ALIGN="LEFT"/>`, -1) +
				`</FONT>`
		}
		color, fillcolor, style := "black", "#99ddc8", "filled"
		if i == 0 {
			style += ",bold"
		}
		if i == to {
			color = "red"
			fillcolor = "#f98b8b"
		}
		fmt.Fprintf(w, "  s%d [shape=\"circle\", style=\"%s\", color=\"%s\", fillcolor=\"%s\", label=<%s> ]\n",
			i, style, color, fillcolor, label)
	}

	edge := func(src, dst string, color, style, label string) {
		fmt.Fprintf(w, "  %s -> %s [ color=\"%s\" style=\"%s\" label=<%s> ]\n",
			src, dst, color, style, label)
	}
	colorOf := func(i int, target *int) string {
		if i == from && target != nil && *target == to {
			return "red"
		}
		return "black"
	}

	for i, s := range snap.States {
		for j, instr := range s.Instructions {
			id := fmt.Sprintf("i%d_%d", i, j)
			switch instr.Kind {
			case ExecKind.String():
				tag := fmt.Sprintf("t%d", *instr.Transition)
				if *instr.Transition < len(snap.Transitions) && snap.Transitions[*instr.Transition].Tag != "" {
					tag += " " + snap.Transitions[*instr.Transition].Tag
				}
				fmt.Fprintf(w, "  %s [shape=\"box\", fillcolor=\"#2d93ad\", label=<exec %s> ]\n", id, html(tag))
				edge(fmt.Sprintf("s%d", i), id, "black", "solid", "")
				edge(id, fmt.Sprintf("s%d", *instr.Target), colorOf(i, instr.Target), "solid", "")
			case TestKind.String():
				label := fmt.Sprintf("c%d", *instr.Condition)
				if *instr.Condition < len(snap.Conditions) {
					label += " " + snap.Conditions[*instr.Condition].Label()
				}
				fmt.Fprintf(w, "  %s [shape=\"diamond\", fillcolor=\"#52aa5e\", label=<%s> ]\n", id, html(label))
				edge(fmt.Sprintf("s%d", i), id, "black", "solid", "")
				edge(id, fmt.Sprintf("s%d", *instr.True), colorOf(i, instr.True), "solid", "true")
				edge(id, fmt.Sprintf("s%d", *instr.False), colorOf(i, instr.False), "dashed", "false")
			case WaitKind.String():
				fmt.Fprintf(w, "  %s [shape=\"doublecircle\", fillcolor=\"#eeeeee\", label=<wait> ]\n", id)
				edge(fmt.Sprintf("s%d", i), id, "black", "solid", "")
				label := ""
				if len(instr.WaitingFor) > 0 {
					label = html(fmt.Sprintf("%v", instr.WaitingFor))
				}
				edge(id, fmt.Sprintf("s%d", *instr.Target), colorOf(i, instr.Target), "dotted", label)
			default:
				return fmt.Errorf("state %d has an instruction of kind %q", i, instr.Kind)
			}
		}
	}

	fmt.Fprintf(w, "}\n")
	return w.Close()
}

// PNG generates a PNG image based on output from Dot.
//
// This function with write two files: basename.dot and basename.png,
// where the basename is the given string.
func PNG(snap *Snapshot, basename string, from, to int) (string, error) {
	dotname := basename + ".dot"
	pngname := basename + ".png"

	dotfile, err := os.Create(dotname)
	if err != nil {
		return pngname, err
	}
	if err := Dot(snap, dotfile, from, to); err != nil {
		return pngname, err
	}
	if err := exec.Command("dot", "-Tpng", "-Gstart=1", "-o", pngname, dotname).Run(); err != nil {
		return pngname, err
	}
	return pngname, nil
}

func escape(s string) string {
	return strings.Replace(s, `"`, `\"`, -1)
}

func html(s string) string {
	s = strings.Replace(s, "&", `&amp;`, -1)
	s = strings.Replace(s, "<", `&lt;`, -1)
	s = strings.Replace(s, ">", `&gt;`, -1)
	return s
}
