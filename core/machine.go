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

// ActorMachine is the compiled form of an Actor that every backend
// consumes: ports, parameters, scopes, the condition and transition
// registries, and the controller.
type ActorMachine struct {
	Name string

	InputPorts      []*PortDecl
	OutputPorts     []*PortDecl
	TypeParameters  []string
	ValueParameters []*VarDecl

	// Scopes[0] is the persistent scope.  Scopes[i+1] is the
	// transient scope of transition i.
	Scopes []*Scope

	Conditions  *Conditions
	Transitions *Transitions
	Controller  *Controller

	// Actor is the source of this machine.
	Actor *Actor
}

// Translate builds the ActorMachine for a compiled actor.
//
// The registries, priorities, and schedule are built here, once.
// The controller's states are built lazily as backends ask for them.
func Translate(a *Actor, opts *Options) (*ActorMachine, error) {
	if !a.compiled {
		return nil, &NotCompiled{Actor: a.Name}
	}
	if opts == nil {
		opts = &Options{}
	}
	if err := opts.Check(a.Name); err != nil {
		return nil, err
	}

	cs := NewConditions(a)
	ts := NewTransitions(a, func(i int) int { return i + 1 })

	return &ActorMachine{
		Name:            a.Name,
		InputPorts:      a.InputPorts,
		OutputPorts:     a.OutputPorts,
		TypeParameters:  a.TypeParameters,
		ValueParameters: a.ValueParameters,
		Scopes:          scopes(a),
		Conditions:      cs,
		Transitions:     ts,
		Controller:      newController(a, *opts, cs, ts),
		Actor:           a,
	}, nil
}

// Action returns the action behind the transition with the given
// index.
func (m *ActorMachine) Action(transition int) (*Action, error) {
	if transition < 0 || len(m.Actor.Actions) <= transition {
		return nil, &MissingTransition{Actor: m.Name, Action: "#" + itoa(transition)}
	}
	return m.Actor.Actions[transition], nil
}
