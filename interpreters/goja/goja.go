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

// Package goja runs actor expressions and bodies as ECMAScript.
package goja

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/streamblocks/cal2am/sim"

	"github.com/dop251/goja"
	"github.com/gorhill/cronexpr"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by Exec if the execution is
	// interrupted.
	Interrupted = errors.New(InterruptedMessage)
)

// Interpreter implements sim.Interpreter using Goja, which is a
// Go implementation of ECMAScript 5.1+.
//
// Every variable of the environment is a global.  Expressions are
// evaluated for their value.  Statements are run for their effect
// on those globals.
//
// See https://github.com/dop251/goja.
type Interpreter struct {

	// Testing is used to expose or hide some runtime
	// capabilities.
	Testing bool

	// Prelude, if not empty, is run before every execution.  It
	// can define helper functions.
	Prelude string

	prelude *goja.Program
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// Compile calls goja.Compile.  An expression is parenthesized so
// that an object literal isn't taken for a block.
func (i *Interpreter) Compile(ctx context.Context, src string, kind sim.Kind) (interface{}, error) {
	code := src
	if kind == sim.Expression {
		code = "(" + src + "\n);"
	}

	obj, err := goja.Compile("", code, true)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + code)
	}

	return obj, nil
}

func protest(o *goja.Runtime, x interface{}) {
	panic(o.ToValue(x))
}

// RunProgram runs the program and turns a panic into an error.
func RunProgram(o *goja.Runtime, p *goja.Program) (v goja.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s", r)
		}
	}()
	return o.RunProgram(p)
}

// Exec implements the Interpreter method of the same name.
//
// The following properties are available from the runtime at _.
//
//    now(): the current time (RFC3339Nano).
//    cronNext(s): Return a string representing (RFC3999Nano) the
//      next time for the given crontab expression.
//    log(x): log the JSON representation of x.
//
// For testing only:
//
//    sleep(ms): sleep for the given number of milliseconds.
//
// The Testing flag must be set to see sleep().
func (i *Interpreter) Exec(ctx context.Context, env sim.Env, compiled interface{}) (interface{}, sim.Env, error) {
	p, is := compiled.(*goja.Program)
	if !is {
		return nil, nil, fmt.Errorf("Goja bad compilation: %T %#v", compiled, compiled)
	}

	o := goja.New()

	for k, v := range env {
		if err := o.Set(k, v); err != nil {
			return nil, nil, err
		}
	}

	if i.Testing {
		o.Set("sleep", func(ms int) {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		})
	}

	helpers := map[string]interface{}{}

	helpers["now"] = func() interface{} {
		return time.Now().UTC().Format(time.RFC3339Nano)
	}

	helpers["cronNext"] = func(x interface{}) interface{} {
		switch vv := x.(type) {
		case goja.Value:
			x = vv.Export()
		}
		cronExpr, is := x.(string)
		if !is {
			protest(o, "not a string")
		}

		c, err := cronexpr.Parse(cronExpr)
		if err != nil {
			protest(o, err.Error())
		}
		return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
	}

	helpers["log"] = func(x interface{}) interface{} {
		switch vv := x.(type) {
		case goja.Value:
			x = vv.Export()
		}
		js, err := json.Marshal(&x)
		if err != nil {
			log.Println("goja.log (can't marshal: " + err.Error() + ")")
		} else {
			log.Println(string(js))
		}

		return x
	}

	o.Set("_", helpers)

	if i.Prelude != "" {
		if i.prelude == nil {
			prelude, err := goja.Compile("prelude", i.Prelude, true)
			if err != nil {
				return nil, nil, err
			}
			i.prelude = prelude
		}
		if _, err := RunProgram(o, i.prelude); err != nil {
			return nil, nil, err
		}
	}

	// We want to make sure that the following goroutine is
	// terminated as soon as possible.
	ictx, cancel := context.WithCancel(ctx)
	go func() {
		<-ictx.Done()
		// If this Exec method calls cancel() after RunProgram
		// returns, then we'll never see this
		// InterruptedMessage, which is actually the behavior
		// we want.  In this case, we weren't actually interrupted.
		o.Interrupt(InterruptedMessage)
	}()

	v, err := RunProgram(o, p)
	cancel()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return nil, nil, Interrupted
		}
		return nil, nil, err
	}

	out := make(sim.Env, len(env))
	for k := range env {
		if x := o.Get(k); x != nil {
			out[k] = x.Export()
		} else {
			out[k] = nil
		}
	}

	return export(v), out, nil
}

func export(v goja.Value) interface{} {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	return v.Export()
}
