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

package network

import (
	"fmt"

	"github.com/streamblocks/cal2am/core"

	"github.com/Masterminds/semver/v3"
)

// SupportedVersions constrains the version a network file can
// declare.  An empty version is accepted.
var SupportedVersions = ">= 1.0.0, < 2.0.0"

// Network is a dataflow network: actor instances connected by FIFO
// channels.
type Network struct {
	Name    string `json:"name,omitempty" yaml:",omitempty"`
	Doc     string `json:"doc,omitempty" yaml:",omitempty"`
	Version string `json:"version,omitempty" yaml:",omitempty"`

	// Actors maps an actor name to where its definition lives.
	Actors map[string]*ActorSource `json:"actors" yaml:"actors"`

	Instances   []*Instance   `json:"instances" yaml:"instances"`
	Connections []*Connection `json:"connections,omitempty" yaml:",omitempty"`
}

// ActorSource is either a file name (relative to the network file)
// or an inline actor.
type ActorSource struct {
	File   string      `json:"file,omitempty" yaml:",omitempty"`
	Inline *core.Actor `json:"inline,omitempty" yaml:",omitempty"`
}

// Instance is a named use of an actor.
type Instance struct {
	Name  string `json:"name" yaml:"name"`
	Actor string `json:"actor" yaml:"actor"`

	// Parameters override the actor's value parameters.  Values
	// are expression sources.
	Parameters map[string]string `json:"parameters,omitempty" yaml:",omitempty"`
}

// Endpoint is a port of an instance.
type Endpoint struct {
	Instance string `json:"instance" yaml:"instance"`
	Port     string `json:"port" yaml:"port"`
}

func (e Endpoint) String() string {
	return e.Instance + "." + e.Port
}

// Connection is a FIFO channel from an output port to an input port.
type Connection struct {
	From Endpoint `json:"from" yaml:"from"`
	To   Endpoint `json:"to" yaml:"to"`

	// Capacity is the channel's capacity in tokens.  Zero means
	// the runner's default.
	Capacity int `json:"capacity,omitempty" yaml:",omitempty"`
}

func (c *Connection) String() string {
	return c.From.String() + " -> " + c.To.String()
}

type UnknownActor struct {
	Instance string
	Actor    string
}

func (e *UnknownActor) Error() string {
	return fmt.Sprintf("instance '%s' uses unknown actor '%s'", e.Instance, e.Actor)
}

type BadInstance struct {
	Instance string
	Reason   string
}

func (e *BadInstance) Error() string {
	return fmt.Sprintf("instance '%s': %s", e.Instance, e.Reason)
}

type BadConnection struct {
	Connection string
	Reason     string
}

func (e *BadConnection) Error() string {
	return fmt.Sprintf("connection %s: %s", e.Connection, e.Reason)
}

// CheckVersion checks the network's declared version against
// SupportedVersions.
func (n *Network) CheckVersion() error {
	if n.Version == "" {
		return nil
	}
	v, err := semver.NewVersion(n.Version)
	if err != nil {
		return fmt.Errorf("network '%s' version: %w", n.Name, err)
	}
	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("network '%s' version %s isn't %s", n.Name, v, SupportedVersions)
	}
	return nil
}

// Instance finds the instance with the given name.
func (n *Network) Instance(name string) *Instance {
	for _, i := range n.Instances {
		if i.Name == name {
			return i
		}
	}
	return nil
}

// Validate checks the network against the given actors (see Resolve).
func (n *Network) Validate(actors map[string]*core.Actor) error {
	if err := n.CheckVersion(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(n.Instances))
	for _, i := range n.Instances {
		if i.Name == "" {
			return &BadInstance{Reason: "no name"}
		}
		if seen[i.Name] {
			return &BadInstance{Instance: i.Name, Reason: "duplicate name"}
		}
		seen[i.Name] = true

		a, have := actors[i.Actor]
		if !have {
			return &UnknownActor{Instance: i.Name, Actor: i.Actor}
		}
		for p := range i.Parameters {
			if !hasParameter(a, p) {
				return &BadInstance{Instance: i.Name, Reason: "unknown parameter '" + p + "'"}
			}
		}
	}

	fed := make(map[Endpoint]bool)
	for _, c := range n.Connections {
		from, to := n.Instance(c.From.Instance), n.Instance(c.To.Instance)
		if from == nil {
			return &BadConnection{Connection: c.String(), Reason: "unknown instance '" + c.From.Instance + "'"}
		}
		if to == nil {
			return &BadConnection{Connection: c.String(), Reason: "unknown instance '" + c.To.Instance + "'"}
		}
		if actors[from.Actor].OutputPort(c.From.Port) == nil {
			return &BadConnection{Connection: c.String(), Reason: "'" + c.From.Port + "' isn't an output port"}
		}
		if actors[to.Actor].InputPort(c.To.Port) == nil {
			return &BadConnection{Connection: c.String(), Reason: "'" + c.To.Port + "' isn't an input port"}
		}
		if fed[c.To] {
			return &BadConnection{Connection: c.String(), Reason: "input port already connected"}
		}
		fed[c.To] = true
		if c.Capacity < 0 {
			return &BadConnection{Connection: c.String(), Reason: "negative capacity"}
		}
	}

	return nil
}

func hasParameter(a *core.Actor, name string) bool {
	for _, p := range a.ValueParameters {
		if p.Name == name {
			return true
		}
	}
	return false
}
