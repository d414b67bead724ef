package core

import "sort"

// AnyState is the single scheduler state of an actor without an
// explicit schedule.
const AnyState = "__any__"

// Schedule adapts the actor's scheduler FSM.  A scheduler state is a
// sorted set of FSM state names.
type Schedule struct {
	actions []*Action
	fsm     *ScheduleFSM

	// scheduled[i] is true if some FSM transition matches the tag
	// of actions[i].
	scheduled []bool
}

// NewSchedule makes the Schedule for the actor.
func NewSchedule(a *Actor) *Schedule {
	s := &Schedule{
		actions:   a.Actions,
		fsm:       a.Schedule,
		scheduled: make([]bool, len(a.Actions)),
	}
	if s.fsm == nil {
		return s
	}
	for i, action := range a.Actions {
		for _, t := range s.fsm.Transitions {
			if t.matches(action) {
				s.scheduled[i] = true
				break
			}
		}
	}
	return s
}

func (t *ScheduleTransition) matches(a *Action) bool {
	for _, tag := range t.Tags {
		if TagMatches(tag, a.Tag) {
			return true
		}
	}
	return false
}

// Initial is the scheduler state before any action fires.
func (s *Schedule) Initial() []string {
	if s.fsm == nil {
		return []string{AnyState}
	}
	return []string{s.fsm.Initial}
}

// Eligible returns, in declaration order, the actions the scheduler
// allows in the given state.  Actions that no FSM transition mentions
// are always eligible.
func (s *Schedule) Eligible(state []string) []*Action {
	acc := make([]*Action, 0, len(s.actions))
	for i, a := range s.actions {
		if s.fsm == nil || !s.scheduled[i] || s.allows(state, a) {
			acc = append(acc, a)
		}
	}
	return acc
}

func (s *Schedule) allows(state []string, a *Action) bool {
	for _, t := range s.fsm.Transitions {
		if contains(state, t.From) && t.matches(a) {
			return true
		}
	}
	return false
}

// Target returns the scheduler state after the action fires in the
// given state.
func (s *Schedule) Target(state []string, a *Action) []string {
	if s.fsm == nil {
		return state
	}
	to := make(map[string]bool)
	for _, t := range s.fsm.Transitions {
		if contains(state, t.From) && t.matches(a) {
			to[t.To] = true
		}
	}
	if len(to) == 0 {
		// Unscheduled action.
		return state
	}
	acc := make([]string, 0, len(to))
	for name := range to {
		acc = append(acc, name)
	}
	sort.Strings(acc)
	return acc
}

func contains(xs []string, x string) bool {
	for _, y := range xs {
		if x == y {
			return true
		}
	}
	return false
}
