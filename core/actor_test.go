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

package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestTagMatches(t *testing.T) {
	tests := []struct {
		pattern, tag string
		want         bool
	}{
		{"a", "a", true},
		{"a", "a.b", true},
		{"a.b", "a.b.c", true},
		{"a", "ab", false},
		{"a.b", "a", false},
		{"", "a", false},
		{"a", "", false},
	}
	for _, tc := range tests {
		if got := TagMatches(tc.pattern, tc.tag); got != tc.want {
			t.Errorf("%q covers %q: %v", tc.pattern, tc.tag, got)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	in := func(port string, vars ...string) *InputPattern {
		return &InputPattern{Port: port, Vars: vars}
	}
	tests := []struct {
		description string
		actor       *Actor
		check       func(error) bool
	}{
		{
			description: "unknown input port",
			actor: &Actor{
				InputPorts: []*PortDecl{{Name: "In"}},
				Actions:    []*Action{{Tag: "a", Inputs: []*InputPattern{in("Out", "x")}}},
			},
			check: func(err error) bool {
				var e *UnknownPort
				return errors.As(err, &e) && e.Port == "Out"
			},
		},
		{
			description: "duplicate port",
			actor: &Actor{
				InputPorts:  []*PortDecl{{Name: "P"}},
				OutputPorts: []*PortDecl{{Name: "P"}},
			},
			check: func(err error) bool {
				var e *BadPort
				return errors.As(err, &e) && e.Duplicate
			},
		},
		{
			description: "empty pattern",
			actor: &Actor{
				InputPorts: []*PortDecl{{Name: "In"}},
				Actions:    []*Action{{Tag: "a", Inputs: []*InputPattern{in("In")}}},
			},
			check: func(err error) bool {
				var e *BadPattern
				return errors.As(err, &e) && !e.Duplicate
			},
		},
		{
			description: "port read twice",
			actor: &Actor{
				InputPorts: []*PortDecl{{Name: "In"}},
				Actions:    []*Action{{Tag: "a", Inputs: []*InputPattern{in("In", "x"), in("In", "y")}}},
			},
			check: func(err error) bool {
				var e *BadPattern
				return errors.As(err, &e) && e.Duplicate
			},
		},
		{
			description: "schedule without initial state",
			actor: &Actor{
				Schedule: &ScheduleFSM{},
			},
			check: func(err error) bool {
				var e *BadSchedule
				return errors.As(err, &e)
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			err := tc.actor.Compile()
			if !tc.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
			var nc *NotCompiled
			if _, err = Translate(tc.actor, nil); !errors.As(err, &nc) {
				t.Fatalf("translated a broken actor: %v", err)
			}
		})
	}
}

func TestCompileNilGuard(t *testing.T) {
	a := &Actor{
		Actions: []*Action{{Tag: "a", Guards: []*Expr{nil}}},
	}
	if err := a.Compile(); err != nil {
		t.Fatal(err)
	}
	if a.Actions[0].Guards[0].String() != "true" {
		t.Fatalf("nil guard became %q", a.Actions[0].Guards[0])
	}
	if err := a.Compile(); err != nil {
		t.Fatal(err)
	}
}

func TestActorJSON(t *testing.T) {
	js := `{
  "name": "double",
  "inputs": [{"name": "In", "type": "int"}],
  "outputs": [{"name": "Out", "type": "int"}],
  "parameters": [{"name": "k", "value": "2"}],
  "actions": [
    {
      "tag": "double",
      "inputs": [{"port": "In", "vars": ["x"]}],
      "guards": ["x != 0"],
      "outputs": [{"port": "Out", "exprs": ["k * x"], "repeat": 2}]
    }
  ]
}`
	var a Actor
	if err := json.Unmarshal([]byte(js), &a); err != nil {
		t.Fatal(err)
	}
	if err := a.Compile(); err != nil {
		t.Fatal(err)
	}
	if a.ValueParameters[0].Value.String() != "2" {
		t.Fatalf("parameter value %q", a.ValueParameters[0].Value)
	}
	action := a.Actions[0]
	if action.Guards[0].Source != "x != 0" {
		t.Fatalf("guard %q", action.Guards[0])
	}
	if n := action.Outputs[0].N(); n != 2 {
		t.Fatalf("output rate %d", n)
	}

	bs, err := json.Marshal(action.Guards)
	if err != nil {
		t.Fatal(err)
	}
	if string(bs) != `["x != 0"]` {
		t.Fatalf("guards marshalled as %s", bs)
	}
}
