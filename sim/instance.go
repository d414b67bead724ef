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

package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/streamblocks/cal2am/core"
	"github.com/streamblocks/cal2am/util"
)

// NoInterpreter is returned when an instance without an Interpreter
// needs to evaluate something.
var NoInterpreter = errors.New("no interpreter")

// DefaultLimit is the default number of firings an Instance performs
// in one Run.
var DefaultLimit = 1024

// Firing records one executed transition.
type Firing struct {
	Instance   string `json:"instance"`
	Transition int    `json:"transition"`
	Tag        string `json:"tag,omitempty"`
}

// Instance is one running actor machine: a program counter into the
// controller, the persistent variables, and the channels on the
// ports.
type Instance struct {
	Name    string
	Machine *core.ActorMachine

	// PC is the current controller state.
	PC core.StateID

	// Vars holds the persistent scope: parameters and state
	// variables.
	Vars Env

	Inputs  map[string]*Channel
	Outputs map[string][]*Channel

	// Limit bounds the firings of one Run.  Zero means
	// DefaultLimit.
	Limit int

	interp Interpreter
	exprs  map[*core.Expr]interface{}
	bodies map[int]interface{}
}

// NewInstance makes an instance at the controller's initial state.
//
// Parameters override the value parameters' initial expressions.
// Parameters and then state variables are evaluated in declaration
// order, each seeing the ones before it.
func NewInstance(ctx context.Context, name string, m *core.ActorMachine, interp Interpreter, params map[string]string) (*Instance, error) {
	i := &Instance{
		Name:    name,
		Machine: m,
		PC:      m.Controller.Initial(),
		Vars:    make(Env),
		Inputs:  make(map[string]*Channel),
		Outputs: make(map[string][]*Channel),
		interp:  interp,
		exprs:   make(map[*core.Expr]interface{}),
		bodies:  make(map[int]interface{}),
	}

	initialize := func(d *core.VarDecl, e *core.Expr) error {
		if e == nil {
			i.Vars[d.Name] = nil
			return nil
		}
		v, err := i.eval(ctx, e, i.Vars)
		if err != nil {
			return fmt.Errorf("%s: initializing '%s': %w", name, d.Name, err)
		}
		i.Vars[d.Name] = v
		return nil
	}

	for _, d := range m.ValueParameters {
		e := d.Value
		if src, have := params[d.Name]; have {
			e = core.NewExpr(src)
		}
		if err := initialize(d, e); err != nil {
			return nil, err
		}
	}
	if m.Actor != nil {
		for _, d := range m.Actor.Vars {
			if err := initialize(d, d.Value); err != nil {
				return nil, err
			}
		}
	}

	return i, nil
}

func (i *Instance) limit() int {
	if i.Limit <= 0 {
		return DefaultLimit
	}
	return i.Limit
}

// Run follows the controller from the current state until a Wait
// (or until the instance has fired Limit times).  Only the first
// instruction of each state is used.
func (i *Instance) Run(ctx context.Context) ([]Firing, error) {
	var acc []Firing
	for {
		if err := ctx.Err(); err != nil {
			return acc, err
		}
		is, err := i.Machine.Controller.Instructions(i.PC)
		if err != nil {
			return acc, err
		}
		if len(is) == 0 {
			return acc, fmt.Errorf("%s: state %d has no instruction", i.Name, i.PC)
		}
		switch instr := is[0].(type) {
		case *core.Test:
			ok, err := i.test(ctx, instr.Condition)
			if err != nil {
				return acc, err
			}
			if ok {
				i.PC = instr.True
			} else {
				i.PC = instr.False
			}
		case *core.Exec:
			if err := i.exec(ctx, instr.Transition); err != nil {
				return acc, err
			}
			tr, _ := i.Machine.Transitions.Get(instr.Transition)
			util.Logf("sim: %s fired %s", i.Name, tr.Tag)
			acc = append(acc, Firing{
				Instance:   i.Name,
				Transition: instr.Transition,
				Tag:        tr.Tag,
			})
			i.PC = instr.Target
			if len(acc) >= i.limit() {
				return acc, nil
			}
		case *core.Wait:
			i.PC = instr.Target
			return acc, nil
		default:
			return acc, fmt.Errorf("%s: unknown instruction %T", i.Name, instr)
		}
	}
}

func (i *Instance) input(port string) (*Channel, error) {
	c, have := i.Inputs[port]
	if !have {
		return nil, fmt.Errorf("%s: input port '%s' has no channel", i.Name, port)
	}
	return c, nil
}

// space is the free space of an output port: the least free space of
// its channels.
func (i *Instance) space(port string) (int, error) {
	cs := i.Outputs[port]
	if len(cs) == 0 {
		return 0, fmt.Errorf("%s: output port '%s' has no channel", i.Name, port)
	}
	n := cs[0].Space()
	for _, c := range cs[1:] {
		if s := c.Space(); s < n {
			n = s
		}
	}
	return n, nil
}

func (i *Instance) test(ctx context.Context, index int) (bool, error) {
	c, err := i.Machine.Conditions.Get(index)
	if err != nil {
		return false, err
	}
	switch c := c.(type) {
	case *core.PortCondition:
		if c.Direction == core.Input {
			ch, err := i.input(c.Port)
			if err != nil {
				return false, err
			}
			return c.N <= ch.Len(), nil
		}
		n, err := i.space(c.Port)
		if err != nil {
			return false, err
		}
		return c.N <= n, nil

	case *core.PredicateCondition:
		owner, err := i.Machine.Conditions.Owner(index)
		if err != nil {
			return false, err
		}
		env := i.Vars.Copy()
		for _, in := range owner.Inputs {
			ch, err := i.input(in.Port)
			if err != nil {
				return false, err
			}
			toks, err := ch.Peek(in.N())
			if err != nil {
				return false, fmt.Errorf("%s: guard '%s' on %s: %w", i.Name, c.Guard, in.Port, err)
			}
			bind(env, in.Vars, in.Repeat, toks)
		}
		for _, d := range owner.Vars {
			if d.Value == nil {
				continue
			}
			if env[d.Name], err = i.eval(ctx, d.Value, env); err != nil {
				return false, err
			}
		}
		v, err := i.eval(ctx, c.Guard, env)
		if err != nil {
			return false, err
		}
		b, is := v.(bool)
		if !is {
			return false, fmt.Errorf("%s: guard '%s' returned a %T", i.Name, c.Guard, v)
		}
		return b, nil

	default:
		return false, fmt.Errorf("%s: unknown condition %T", i.Name, c)
	}
}

func (i *Instance) exec(ctx context.Context, t int) error {
	tr, err := i.Machine.Transitions.Get(t)
	if err != nil {
		return err
	}

	env := i.Vars.Copy()
	for _, s := range tr.Body {
		switch s := s.(type) {
		case *core.StmtRead:
			ch, err := i.input(s.Port)
			if err != nil {
				return err
			}
			toks, err := ch.Read(len(s.Vars) * repeat(s.Repeat))
			if err != nil {
				return fmt.Errorf("%s: %s reading %s: %w", i.Name, tr.Tag, s.Port, err)
			}
			bind(env, s.Vars, s.Repeat, toks)

		case *core.StmtAssign:
			if env[s.Var], err = i.eval(ctx, s.Value, env); err != nil {
				return err
			}

		case *core.StmtSource:
			if i.interp == nil {
				return NoInterpreter
			}
			compiled, have := i.bodies[t]
			if !have {
				if compiled, err = i.interp.Compile(ctx, s.Source, Statements); err != nil {
					return fmt.Errorf("%s: %s body: %w", i.Name, tr.Tag, err)
				}
				i.bodies[t] = compiled
			}
			if _, env, err = i.interp.Exec(ctx, env, compiled); err != nil {
				return fmt.Errorf("%s: %s body: %w", i.Name, tr.Tag, err)
			}

		case *core.StmtWrite:
			toks, err := i.tokens(ctx, s, env)
			if err != nil {
				return fmt.Errorf("%s: %s writing %s: %w", i.Name, tr.Tag, s.Port, err)
			}
			if len(i.Outputs[s.Port]) == 0 {
				return fmt.Errorf("%s: output port '%s' has no channel", i.Name, s.Port)
			}
			for _, ch := range i.Outputs[s.Port] {
				if err := ch.Write(toks...); err != nil {
					return fmt.Errorf("%s: %s writing %s: %w", i.Name, tr.Tag, s.Port, err)
				}
			}
		}
	}

	for k := range i.Vars {
		i.Vars[k] = env[k]
	}
	return nil
}

func repeat(r int) int {
	if r <= 0 {
		return 1
	}
	return r
}

// bind assigns tokens to pattern variables.  Without a repeat, the
// j-th variable gets the j-th token.  With a repeat r, each variable
// gets a list of r tokens, taken round-robin.
func bind(env Env, vars []string, r int, toks []interface{}) {
	if r <= 1 {
		for j, v := range vars {
			env[v] = toks[j]
		}
		return
	}
	for j, v := range vars {
		list := make([]interface{}, r)
		for k := 0; k < r; k++ {
			list[k] = toks[k*len(vars)+j]
		}
		env[v] = list
	}
}

// tokens evaluates the expressions of a write.  With a repeat r, each
// expression must evaluate to a list of r values.
func (i *Instance) tokens(ctx context.Context, s *core.StmtWrite, env Env) ([]interface{}, error) {
	vals := make([]interface{}, len(s.Exprs))
	for j, e := range s.Exprs {
		v, err := i.eval(ctx, e, env)
		if err != nil {
			return nil, err
		}
		vals[j] = v
	}
	if s.Repeat <= 1 {
		return vals, nil
	}

	acc := make([]interface{}, 0, len(vals)*s.Repeat)
	lists := make([][]interface{}, len(vals))
	for j, v := range vals {
		list, is := iSlice(v)
		if !is || len(list) != s.Repeat {
			return nil, fmt.Errorf("'%s' isn't a list of %d values", s.Exprs[j], s.Repeat)
		}
		lists[j] = list
	}
	for k := 0; k < s.Repeat; k++ {
		for _, list := range lists {
			acc = append(acc, list[k])
		}
	}
	return acc, nil
}

func (i *Instance) eval(ctx context.Context, e *core.Expr, env Env) (interface{}, error) {
	if i.interp == nil {
		return nil, NoInterpreter
	}
	compiled, have := i.exprs[e]
	if !have {
		var err error
		if compiled, err = i.interp.Compile(ctx, e.Source, Expression); err != nil {
			return nil, fmt.Errorf("compiling '%s': %w", e.Source, err)
		}
		i.exprs[e] = compiled
	}
	v, _, err := i.interp.Exec(ctx, env, compiled)
	if err != nil {
		return nil, fmt.Errorf("evaluating '%s': %w", e.Source, err)
	}
	return v, nil
}
