/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

package core

import (
	"fmt"
)

// Example demonstrates walking a controller.
func Example() {
	a := &Actor{
		Name:       "pass",
		InputPorts: []*PortDecl{{Name: "In"}},
		Actions: []*Action{
			{
				Tag:    "pass",
				Inputs: []*InputPattern{{Port: "In", Vars: []string{"x"}}},
			},
		},
	}
	if err := a.Compile(); err != nil {
		panic(err)
	}

	m, err := Translate(a, nil)
	if err != nil {
		panic(err)
	}

	ids, err := m.Controller.StateList()
	if err != nil {
		panic(err)
	}
	for _, id := range ids {
		s, _ := m.Controller.State(id)
		is, _ := m.Controller.Instructions(id)
		for _, instr := range is {
			fmt.Printf("%d %s %s %v\n", id, s, instr.Kind(), instr.Targets())
		}
	}

	// Output:
	// 0 __any__||| test [1 2]
	// 1 __any__|"In"[1,*]|| exec [0]
	// 2 __any__|"In"[0,0]|| wait [0]
}
