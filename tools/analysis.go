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
	"fmt"
	"sort"

	"github.com/streamblocks/cal2am/core"
)

// MachineAnalysis summarizes a controller.
type MachineAnalysis struct {
	Errors       []string
	States       int
	Execs        int
	Tests        int
	Waits        int
	Instructions int

	// WaitStates are the states whose instructions include a wait.
	WaitStates []int

	// Unfired are tags of transitions that no exec reaches.
	Unfired []string

	// Untested are the labels of conditions that no test reads.
	Untested []string

	// Nondeterministic are the states with more than one
	// instruction.
	Nondeterministic []int
}

// Analyze walks every state of the snapshot and counts what it finds.
func Analyze(s *core.Snapshot) (*MachineAnalysis, error) {

	a := MachineAnalysis{
		States: len(s.States),
		Errors: make([]string, 0, 8),
	}

	fired := make(map[int]bool)
	tested := make(map[int]bool)

	target := func(i int, p *int) {
		if p == nil {
			a.Errors = append(a.Errors, fmt.Sprintf("state %d has an instruction without a target", i))
			return
		}
		if *p < 0 || len(s.States) <= *p {
			a.Errors = append(a.Errors, fmt.Sprintf("state %d targets unknown state %d", i, *p))
		}
	}

	for i, st := range s.States {
		a.Instructions += len(st.Instructions)
		if len(st.Instructions) == 0 {
			a.Errors = append(a.Errors, fmt.Sprintf("state %d has no instructions", i))
		}
		if 1 < len(st.Instructions) {
			a.Nondeterministic = append(a.Nondeterministic, i)
		}
		waits := false
		for _, instr := range st.Instructions {
			switch instr.Kind {
			case core.ExecKind.String():
				a.Execs++
				if instr.Transition != nil {
					fired[*instr.Transition] = true
				}
				target(i, instr.Target)
			case core.TestKind.String():
				a.Tests++
				if instr.Condition != nil {
					tested[*instr.Condition] = true
				}
				target(i, instr.True)
				target(i, instr.False)
			case core.WaitKind.String():
				a.Waits++
				waits = true
				target(i, instr.Target)
			default:
				a.Errors = append(a.Errors, fmt.Sprintf("state %d has an instruction of kind %q", i, instr.Kind))
			}
		}
		if waits {
			a.WaitStates = append(a.WaitStates, i)
		}
	}

	for i, t := range s.Transitions {
		if !fired[i] {
			name := t.Tag
			if name == "" {
				name = fmt.Sprintf("t%d", i)
			}
			a.Unfired = append(a.Unfired, name)
		}
	}
	for i, c := range s.Conditions {
		if !tested[i] {
			a.Untested = append(a.Untested, c.Label())
		}
	}
	sort.Strings(a.Unfired)
	sort.Strings(a.Untested)

	return &a, nil
}
