package core

// The errors with an Actor field point at the actor being compiled.
// MissingCondition and MissingTransition are internal errors: they
// indicate a front-end bug, not a problem with the user's actor.

import (
	"errors"
	"fmt"
)

// NotCompiled occurs when an Actor is Translated before it has been
// Compile()ed.
type NotCompiled struct {
	Actor string
}

func (e *NotCompiled) Error() string {
	return `actor "` + e.Actor + `" not compiled`
}

// MissingCondition occurs when the condition registry is asked about
// a pattern, output expression, or guard it never registered.
type MissingCondition struct {
	Actor string
	What  string
}

func (e *MissingCondition) Error() string {
	return `no condition for ` + e.What + ` in actor "` + e.Actor + `"`
}

// MissingTransition occurs when the transition registry is asked
// about an action that isn't one of the actor's actions.
type MissingTransition struct {
	Actor  string
	Action string
}

func (e *MissingTransition) Error() string {
	return `no transition for action "` + e.Action + `" in actor "` + e.Actor + `"`
}

// UnsupportedGuardRemoval occurs when the knowledge removal
// configuration asks to forget only the guards that an action could
// have invalidated.
type UnsupportedGuardRemoval struct {
	Actor string
	Point string
}

func (e *UnsupportedGuardRemoval) Error() string {
	return fmt.Sprintf(`fine-grained guard knowledge removal on %s is not supported (actor "%s")`,
		e.Point, e.Actor)
}

// UnknownPort occurs when an action reads from or writes to a port
// the actor doesn't declare.
type UnknownPort struct {
	Actor  string
	Action string
	Port   string
}

func (e *UnknownPort) Error() string {
	return `action "` + e.Action + `" uses unknown port "` + e.Port + `" in actor "` + e.Actor + `"`
}

// BadPort occurs for an unnamed or duplicated port declaration.
type BadPort struct {
	Actor     string
	Port      string
	Duplicate bool
}

func (e *BadPort) Error() string {
	if e.Duplicate {
		return `port "` + e.Port + `" declared twice in actor "` + e.Actor + `"`
	}
	return `unnamed port in actor "` + e.Actor + `"`
}

// BadPattern occurs when an input pattern or output expression has a
// non-positive rate or when an action uses a port twice.
type BadPattern struct {
	Actor     string
	Action    string
	Port      string
	Duplicate bool
}

func (e *BadPattern) Error() string {
	if e.Duplicate {
		return `action "` + e.Action + `" uses port "` + e.Port + `" twice in actor "` + e.Actor + `"`
	}
	return `action "` + e.Action + `" has a non-positive rate on port "` + e.Port + `" in actor "` + e.Actor + `"`
}

// BadSchedule occurs when the scheduler FSM is malformed.
type BadSchedule struct {
	Actor  string
	Reason string
}

func (e *BadSchedule) Error() string {
	return `bad schedule in actor "` + e.Actor + `": ` + e.Reason
}

// UnknownState occurs when a StateID doesn't belong to a Controller.
var UnknownState = errors.New("unknown controller state")
