package core

import "strconv"

// Knowledge is what a controller state knows about a condition.
type Knowledge int

const (
	Unknown Knowledge = iota
	True
	False
)

func (k Knowledge) String() string {
	switch k {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// And is three-valued conjunction.
func (k Knowledge) And(other Knowledge) Knowledge {
	switch {
	case k == False || other == False:
		return False
	case k == Unknown || other == Unknown:
		return Unknown
	default:
		return True
	}
}

// OfBool lifts a bool.
func OfBool(b bool) Knowledge {
	if b {
		return True
	}
	return False
}

// OfNullable returns Unknown for nil.
func OfNullable(b *bool) Knowledge {
	if b == nil {
		return Unknown
	}
	return OfBool(*b)
}

// PortKnowledge bounds the number of tokens (input) or free slots
// (output) on one port.  The zero value is the nil knowledge: at
// least zero and no known ceiling.
type PortKnowledge struct {
	lower int

	// upper is valid only if bounded.
	upper   int
	bounded bool
}

// NewPortKnowledge makes PortKnowledge with the given bounds.  A nil
// upper means no known ceiling.
func NewPortKnowledge(lower int, upper *int) PortKnowledge {
	k := PortKnowledge{lower: lower}
	if upper != nil {
		k.upper, k.bounded = *upper, true
	}
	return k
}

// LowerBound is the guaranteed number of tokens or slots.
func (k PortKnowledge) LowerBound() int {
	return k.lower
}

// UpperBound returns the known ceiling, if any.
func (k PortKnowledge) UpperBound() (int, bool) {
	return k.upper, k.bounded
}

// IsNil reports whether k carries no information.
func (k PortKnowledge) IsNil() bool {
	return k.lower == 0 && !k.bounded
}

// Has answers "are at least n available?".
func (k PortKnowledge) Has(n int) Knowledge {
	if k.lower >= n {
		return True
	}
	if k.bounded && k.upper < n {
		return False
	}
	return Unknown
}

func (k PortKnowledge) WithLowerBound(n int) PortKnowledge {
	k.lower = n
	return k
}

func (k PortKnowledge) WithUpperBound(n int) PortKnowledge {
	k.upper, k.bounded = n, true
	return k
}

func (k PortKnowledge) WithoutUpperBound() PortKnowledge {
	k.upper, k.bounded = 0, false
	return k
}

// Add shifts both bounds by delta, clamping at zero.
func (k PortKnowledge) Add(delta int) PortKnowledge {
	k.lower = clamp(k.lower + delta)
	if k.bounded {
		k.upper = clamp(k.upper + delta)
	}
	return k
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func (k PortKnowledge) String() string {
	upper := "*"
	if k.bounded {
		upper = strconv.Itoa(k.upper)
	}
	return "[" + strconv.Itoa(k.lower) + "," + upper + "]"
}
