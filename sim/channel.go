package sim

import (
	"errors"
	"math"
)

var (
	Underflow = errors.New("not enough tokens")
	Overflow  = errors.New("not enough space")
)

// Channel is a FIFO queue of tokens.  A Channel is not safe for
// concurrent use.
type Channel struct {
	// Capacity zero means unbounded.
	Capacity int

	tokens []interface{}
}

func NewChannel(capacity int) *Channel {
	return &Channel{
		Capacity: capacity,
	}
}

// Len is the number of tokens available.
func (c *Channel) Len() int {
	return len(c.tokens)
}

// Space is the number of tokens that could be written.
func (c *Channel) Space() int {
	if c.Capacity <= 0 {
		return math.MaxInt32
	}
	return c.Capacity - len(c.tokens)
}

// Peek returns the first n tokens without consuming them.
func (c *Channel) Peek(n int) ([]interface{}, error) {
	if len(c.tokens) < n {
		return nil, Underflow
	}
	acc := make([]interface{}, n)
	copy(acc, c.tokens)
	return acc, nil
}

// Read consumes the first n tokens.
func (c *Channel) Read(n int) ([]interface{}, error) {
	acc, err := c.Peek(n)
	if err != nil {
		return nil, err
	}
	c.tokens = c.tokens[n:]
	return acc, nil
}

// Write appends all the tokens or none of them.
func (c *Channel) Write(xs ...interface{}) error {
	if c.Space() < len(xs) {
		return Overflow
	}
	c.tokens = append(c.tokens, xs...)
	return nil
}

// Drain consumes everything.
func (c *Channel) Drain() []interface{} {
	acc := c.tokens
	c.tokens = nil
	return acc
}
