/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package tools

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	. "github.com/streamblocks/cal2am/core"
	"github.com/streamblocks/cal2am/util"
)

type MermaidOpts struct {
	// ShowKnowledge will result in a state label that includes
	// the JSON representation of what the state knows.
	ShowKnowledge bool `json:"showKnowledge"`

	// ExecFill is the fill color of exec nodes.
	ExecFill string `json:"execFill,omitempty"`

	// TestFill is the fill color of test nodes.
	TestFill string `json:"testFill,omitempty"`
}

// Mermaid makes a Mermaid (https://mermaidjs.github.io/) input file
// for the given controller.
func Mermaid(snap *Snapshot, w io.WriteCloser, opts *MermaidOpts) error {

	if opts == nil {
		opts = &MermaidOpts{
			ShowKnowledge: true,
			ExecFill:      "#bcf2db",
			TestFill:      "#f2e8bc",
		}
	}

	util.Logf("mermaid processing %d states", len(snap.States))

	fmt.Fprintf(w, "graph TB\n")

	for i, s := range snap.States {
		label := fmt.Sprintf("s%d", i)
		if opts.ShowKnowledge {
			k := map[string]interface{}{}
			if len(s.Inputs) > 0 {
				k["in"] = s.Inputs
			}
			if len(s.Outputs) > 0 {
				k["out"] = s.Outputs
			}
			if len(s.Predicates) > 0 {
				k["guards"] = s.Predicates
			}
			if len(k) > 0 {
				bs, err := json.Marshal(k)
				if err != nil {
					return err
				}
				label += "<br/>" + strings.Replace(string(bs), `"`, `'`, -1)
			}
		}
		fmt.Fprintf(w, "  s%d((\"%s\"))\n", i, label)
	}

	for i, s := range snap.States {
		for j, instr := range s.Instructions {
			id := fmt.Sprintf("i%d_%d", i, j)
			switch instr.Kind {
			case ExecKind.String():
				tag := fmt.Sprintf("t%d", *instr.Transition)
				if *instr.Transition < len(snap.Transitions) && snap.Transitions[*instr.Transition].Tag != "" {
					tag = snap.Transitions[*instr.Transition].Tag
				}
				fmt.Fprintf(w, "  %s[\"exec %s\"]\n", id, tag)
				if opts.ExecFill != "" {
					fmt.Fprintf(w, "  style %s fill:%s\n", id, opts.ExecFill)
				}
				fmt.Fprintf(w, "  s%d --> %s\n", i, id)
				fmt.Fprintf(w, "  %s --> s%d\n", id, *instr.Target)
			case TestKind.String():
				label := fmt.Sprintf("c%d", *instr.Condition)
				if *instr.Condition < len(snap.Conditions) {
					label = snap.Conditions[*instr.Condition].Label()
				}
				label = strings.Replace(label, `"`, `'`, -1)
				fmt.Fprintf(w, "  %s{\"%s\"}\n", id, label)
				if opts.TestFill != "" {
					fmt.Fprintf(w, "  style %s fill:%s\n", id, opts.TestFill)
				}
				fmt.Fprintf(w, "  s%d --> %s\n", i, id)
				fmt.Fprintf(w, "  %s -- true --> s%d\n", id, *instr.True)
				fmt.Fprintf(w, "  %s -. false .-> s%d\n", id, *instr.False)
			case WaitKind.String():
				fmt.Fprintf(w, "  %s(((\"wait\")))\n", id)
				fmt.Fprintf(w, "  s%d --> %s\n", i, id)
				fmt.Fprintf(w, "  %s -.-> s%d\n", id, *instr.Target)
			default:
				return fmt.Errorf("state %d has an instruction of kind %q", i, instr.Kind)
			}
		}
	}

	fmt.Fprintf(w, "\n")
	util.Logf("mermaid gen done")

	return w.Close()
}
