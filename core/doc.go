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

// Package core translates dataflow actors into actor machines.
//
// An Actor declares guarded, rate-annotated actions, optional
// priorities among them, and an optional scheduler FSM.  An
// ActorMachine is what every code generator consumes: the actor's
// ports and scopes, a registry of Conditions (port conditions and
// guards), a registry of Transitions (one per action), and a
// Controller.
//
// The Controller is a finite graph of States.  Each State records
// what is known about the conditions: a bound on the tokens or space
// on each port and the truth of each guard tested so far.  Each State
// has an Instruction: Exec fires a transition, Test evaluates one
// condition and branches, and Wait yields until something changes.
// States are interned, so equal knowledge always means the same
// state, and they are built on demand.
//
// To use this package, make an Actor (or load one from YAML or JSON).
// Then Compile() it.  Then Translate() it with some Options and walk
// the Controller from its Initial() state, or take a Snapshot().
package core
