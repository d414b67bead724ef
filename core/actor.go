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
	"strings"
)

// Actor is the front-end representation of a dataflow actor.
//
// An Actor is usually loaded from YAML or JSON.  Expressions and
// statements are opaque source text: this package never interprets
// them.  It only carries them into the ActorMachine.
//
// An Actor should be Compiled before it is Translated.
type Actor struct {
	// Name is the name of the actor entity, something like
	// "Filter".
	Name string `json:"name,omitempty" yaml:",omitempty"`

	// Doc is general documentation (Markdown) about this actor.
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	TypeParameters  []string   `json:"typeParameters,omitempty" yaml:"typeParameters,omitempty"`
	ValueParameters []*VarDecl `json:"parameters,omitempty" yaml:"parameters,omitempty"`

	InputPorts  []*PortDecl `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	OutputPorts []*PortDecl `json:"outputs,omitempty" yaml:"outputs,omitempty"`

	// Vars are the actor's state variables.  They end up in the
	// persistent scope.
	Vars []*VarDecl `json:"vars,omitempty" yaml:",omitempty"`

	// Actions in declaration order.  That order determines
	// transition indexes and condition indexes.
	Actions []*Action `json:"actions,omitempty" yaml:",omitempty"`

	// Priorities is a list of chains.  The chain [a, b, c]
	// declares a > b > c.
	Priorities [][]string `json:"priorities,omitempty" yaml:",omitempty"`

	// Schedule is the optional explicit scheduler FSM.
	Schedule *ScheduleFSM `json:"schedule,omitempty" yaml:",omitempty"`

	compiled bool
}

// PortDecl declares a port.
type PortDecl struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type,omitempty" yaml:",omitempty"`
}

// VarDecl is a variable declaration with an optional initial value.
type VarDecl struct {
	Name  string `json:"name" yaml:"name"`
	Type  string `json:"type,omitempty" yaml:",omitempty"`
	Value *Expr  `json:"value,omitempty" yaml:",omitempty"`
}

// Action is a guarded rule of an actor.
type Action struct {
	// Tag is a qualified identifier like "read.header".  Can be
	// empty.
	Tag     string              `json:"tag,omitempty" yaml:",omitempty"`
	Inputs  []*InputPattern     `json:"inputs,omitempty" yaml:",omitempty"`
	Outputs []*OutputExpression `json:"outputs,omitempty" yaml:",omitempty"`
	Guards  []*Expr             `json:"guards,omitempty" yaml:",omitempty"`

	// Vars are local declarations, evaluated after the input
	// variables are bound.
	Vars []*VarDecl `json:"vars,omitempty" yaml:",omitempty"`

	Body string `json:"body,omitempty" yaml:",omitempty"`
}

// InputPattern reads Repeat*len(Vars) tokens from Port.
type InputPattern struct {
	Port   string   `json:"port" yaml:"port"`
	Vars   []string `json:"vars,omitempty" yaml:",omitempty"`
	Repeat int      `json:"repeat,omitempty" yaml:",omitempty"`
}

// N is the number of tokens the pattern consumes.
func (p *InputPattern) N() int {
	return tokens(len(p.Vars), p.Repeat)
}

// OutputExpression writes Repeat*len(Exprs) tokens to Port.
type OutputExpression struct {
	Port   string  `json:"port" yaml:"port"`
	Exprs  []*Expr `json:"exprs,omitempty" yaml:",omitempty"`
	Repeat int     `json:"repeat,omitempty" yaml:",omitempty"`
}

// N is the number of tokens the expression produces.
func (o *OutputExpression) N() int {
	return tokens(len(o.Exprs), o.Repeat)
}

func tokens(width, repeat int) int {
	if repeat <= 0 {
		repeat = 1
	}
	return width * repeat
}

// Expr is an opaque expression.  Two Exprs are the same expression
// only if they are the same pointer.
type Expr struct {
	Source string
}

// NewExpr makes an Expr with the given source.
func NewExpr(src string) *Expr {
	return &Expr{Source: src}
}

func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	return e.Source
}

func (e *Expr) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Source)
}

func (e *Expr) UnmarshalJSON(bs []byte) error {
	return json.Unmarshal(bs, &e.Source)
}

func (e *Expr) MarshalYAML() (interface{}, error) {
	return e.Source, nil
}

func (e *Expr) UnmarshalYAML(unmarshal func(interface{}) error) error {
	return unmarshal(&e.Source)
}

// ScheduleFSM is an explicit scheduler state machine.
type ScheduleFSM struct {
	Initial     string                `json:"initial" yaml:"initial"`
	Transitions []*ScheduleTransition `json:"transitions,omitempty" yaml:",omitempty"`
}

// ScheduleTransition allows the actions matched by Tags in state From
// and moves the scheduler to To.
type ScheduleTransition struct {
	From string   `json:"from" yaml:"from"`
	Tags []string `json:"tags" yaml:"tags"`
	To   string   `json:"to" yaml:"to"`
}

// TagMatches reports whether the (prefix) tag pattern covers the
// given action tag.  "a" covers "a" and "a.b" but not "ab".
func TagMatches(pattern, tag string) bool {
	if pattern == "" || tag == "" {
		return false
	}
	if pattern == tag {
		return true
	}
	return strings.HasPrefix(tag, pattern+".")
}

// InputPort finds the input port with the given name.
func (a *Actor) InputPort(name string) *PortDecl {
	return findPort(a.InputPorts, name)
}

// OutputPort finds the output port with the given name.
func (a *Actor) OutputPort(name string) *PortDecl {
	return findPort(a.OutputPorts, name)
}

func findPort(ps []*PortDecl, name string) *PortDecl {
	for _, p := range ps {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Compile checks the actor for the structural problems that would
// otherwise surface as internal errors during synthesis.
//
// Compile is idempotent.
func (a *Actor) Compile() error {
	if a.compiled {
		return nil
	}

	seen := make(map[string]bool)
	for _, ps := range [][]*PortDecl{a.InputPorts, a.OutputPorts} {
		for _, p := range ps {
			if p == nil || p.Name == "" {
				return &BadPort{Actor: a.Name}
			}
			if seen[p.Name] {
				return &BadPort{Actor: a.Name, Port: p.Name, Duplicate: true}
			}
			seen[p.Name] = true
		}
	}

	for i, action := range a.Actions {
		if action == nil {
			action = &Action{}
			a.Actions[i] = action
		}
		read := make(map[string]bool)
		for _, in := range action.Inputs {
			if a.InputPort(in.Port) == nil {
				return &UnknownPort{Actor: a.Name, Action: action.Tag, Port: in.Port}
			}
			if in.N() <= 0 || in.Repeat < 0 {
				return &BadPattern{Actor: a.Name, Action: action.Tag, Port: in.Port}
			}
			if read[in.Port] {
				return &BadPattern{Actor: a.Name, Action: action.Tag, Port: in.Port, Duplicate: true}
			}
			read[in.Port] = true
		}
		written := make(map[string]bool)
		for _, out := range action.Outputs {
			if a.OutputPort(out.Port) == nil {
				return &UnknownPort{Actor: a.Name, Action: action.Tag, Port: out.Port}
			}
			if out.N() <= 0 || out.Repeat < 0 {
				return &BadPattern{Actor: a.Name, Action: action.Tag, Port: out.Port}
			}
			if written[out.Port] {
				return &BadPattern{Actor: a.Name, Action: action.Tag, Port: out.Port, Duplicate: true}
			}
			written[out.Port] = true
		}
		for j, g := range action.Guards {
			if g == nil {
				action.Guards[j] = NewExpr("true")
			}
		}
	}

	if s := a.Schedule; s != nil {
		if s.Initial == "" {
			return &BadSchedule{Actor: a.Name, Reason: "no initial state"}
		}
		for _, t := range s.Transitions {
			if t.From == "" || t.To == "" {
				return &BadSchedule{Actor: a.Name, Reason: "transition without source or destination"}
			}
		}
	}

	a.compiled = true
	return nil
}
