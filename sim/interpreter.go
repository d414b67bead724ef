package sim

import (
	"context"
	"reflect"
)

// Kind says how source text is compiled.
type Kind int

const (
	// Expression source evaluates to a value: guards, variable
	// initializers, output expressions.
	Expression Kind = iota

	// Statements source is run for effect: action bodies.
	Statements
)

// Env maps variable names to values.
type Env map[string]interface{}

// Copy returns a shallow copy.
func (e Env) Copy() Env {
	acc := make(Env, len(e))
	for k, v := range e {
		acc[k] = v
	}
	return acc
}

// Interpreter runs the opaque expressions and statements of an actor.
type Interpreter interface {
	// Compile can return nil, in which case Exec gets nil.
	Compile(ctx context.Context, src string, kind Kind) (interface{}, error)

	// Exec runs compiled code in the given environment.  It
	// returns the value of the code and the environment as the
	// code left it.  The given Env isn't modified.
	Exec(ctx context.Context, env Env, compiled interface{}) (interface{}, Env, error)
}

// InterpretersMap maps names like "goja" to interpreters.
type InterpretersMap map[string]Interpreter

// iSlice will convert reflect.Slices to actual slices.
//
// Interpreters can return typed slices.
func iSlice(xs interface{}) ([]interface{}, bool) {
	if acc, is := xs.([]interface{}); is {
		return acc, true
	}
	v := reflect.ValueOf(xs)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		acc := make([]interface{}, v.Len())
		for i := 0; i < v.Len(); i++ {
			acc[i] = v.Index(i).Interface()
		}
		return acc, true
	}
	return nil, false
}
