package core

import (
	"sort"

	"github.com/streamblocks/cal2am/util"
)

// Priorities is the declared partial order over action tags.
type Priorities struct {
	// higher[t] is the set of tags with strictly higher priority
	// than t.
	higher map[string]map[string]bool

	// cyclic means the declaration isn't a partial order, so
	// Prioritized filters nothing.
	cyclic bool
}

// NewPriorities builds the (transitively closed) priority relation
// over the tags of the actor's actions.
func NewPriorities(a *Actor) *Priorities {
	p := &Priorities{
		higher: make(map[string]map[string]bool),
	}
	if len(a.Priorities) == 0 {
		return p
	}

	tags := actionTags(a)

	// above[x][y]: x > y, over concrete action tags.
	above := make(map[string]map[string]bool)
	for _, chain := range a.Priorities {
		for i := 0; i+1 < len(chain); i++ {
			for _, hi := range tags {
				if !TagMatches(chain[i], hi) {
					continue
				}
				for _, lo := range tags {
					if !TagMatches(chain[i+1], lo) {
						continue
					}
					if above[hi] == nil {
						above[hi] = make(map[string]bool)
					}
					above[hi][lo] = true
				}
			}
		}
	}

	// Warshall over the few tags an actor has.
	for _, k := range tags {
		for _, i := range tags {
			if !above[i][k] {
				continue
			}
			for _, j := range tags {
				if above[k][j] {
					above[i][j] = true
				}
			}
		}
	}

	for hi, los := range above {
		for lo := range los {
			if hi == lo {
				p.cyclic = true
			}
			if p.higher[lo] == nil {
				p.higher[lo] = make(map[string]bool)
			}
			p.higher[lo][hi] = true
		}
	}

	if p.cyclic {
		util.Logf("warning: priorities of actor %q are cyclic; ignoring them", a.Name)
	}

	return p
}

func actionTags(a *Actor) []string {
	seen := make(map[string]bool)
	acc := make([]string, 0, len(a.Actions))
	for _, action := range a.Actions {
		if action.Tag == "" || seen[action.Tag] {
			continue
		}
		seen[action.Tag] = true
		acc = append(acc, action.Tag)
	}
	sort.Strings(acc)
	return acc
}

// Cyclic reports whether the declared priorities contain a cycle.
func (p *Priorities) Cyclic() bool {
	return p.cyclic
}

// Prioritized returns the maximal elements of tags: the tags that no
// other candidate outranks.  The scheduler state is accepted for
// state-dependent priorities but is currently not consulted.
func (p *Priorities) Prioritized(state []string, tags map[string]bool) map[string]bool {
	acc := make(map[string]bool, len(tags))
	for t := range tags {
		if !p.cyclic && p.outranked(t, tags) {
			continue
		}
		acc[t] = true
	}
	return acc
}

func (p *Priorities) outranked(t string, tags map[string]bool) bool {
	for u := range p.higher[t] {
		if tags[u] {
			return true
		}
	}
	return false
}
