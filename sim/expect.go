package sim

import (
	"fmt"
	"sort"

	"github.com/streamblocks/cal2am/match"
)

// Expectation maps an unconnected output port ("instance.port") to
// the patterns its tokens must match, in order.
type Expectation map[string][]interface{}

// Mismatch is returned by Check when a port's tokens don't match.
type Mismatch struct {
	Endpoint string
	Patterns []interface{}
	Tokens   []interface{}
}

func (e *Mismatch) Error() string {
	return fmt.Sprintf("%s produced %v, which doesn't match %v", e.Endpoint, e.Tokens, e.Patterns)
}

// DrainAll drains every unconnected output port.  Keys are
// "instance.port".
func (r *Runner) DrainAll() map[string][]interface{} {
	acc := make(map[string][]interface{}, len(r.sinks))
	for e, ch := range r.sinks {
		acc[e.String()] = ch.Drain()
	}
	return acc
}

// Check matches drained tokens against the expectation.  Pattern
// variables are shared across ports, so "?x" on two ports must be the
// same value.  Ports the expectation doesn't mention aren't checked.
func Check(exp Expectation, drained map[string][]interface{}) (match.Bindings, error) {
	endpoints := make([]string, 0, len(exp))
	for e := range exp {
		endpoints = append(endpoints, e)
	}
	sort.Strings(endpoints)

	bs := match.NewBindings()
	for _, e := range endpoints {
		tokens, have := drained[e]
		if !have {
			return nil, fmt.Errorf("%s isn't an unconnected output port", e)
		}
		next, err := match.Stream(exp[e], tokens, bs)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, &Mismatch{Endpoint: e, Patterns: exp[e], Tokens: tokens}
		}
		bs = next
	}
	return bs, nil
}

