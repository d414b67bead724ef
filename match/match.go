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

// Package match matches tokens against patterns.
//
// A pattern is a token that can contain variables: strings starting
// with '?'.  A variable matches anything the first time and the same
// value after that.  '?' alone matches anything and binds nothing.  A
// variable like "?<n" is an inequality: when n is already bound, it
// matches numbers less than that binding.
//
// Unlike message patterns, token streams are ordered, so arrays match
// element by element and a stream of tokens matches a list of
// patterns in order.
package match

import (
	"strings"
)

// Bindings is a map from variables (strings starting with a '?') to
// their values.
type Bindings map[string]interface{}

func NewBindings() Bindings {
	return make(Bindings, 8)
}

// Extend adds the property; modifies and returns the Bindings.
func (bs Bindings) Extend(p string, v interface{}) Bindings {
	bs[p] = v
	return bs
}

// Copy makes a shallow copy of the Bindings.
func (bs Bindings) Copy() Bindings {
	acc := make(Bindings, len(bs))
	for k, v := range bs {
		acc[k] = v
	}
	return acc
}

// IsVariable reports if the string represents a pattern variable.
func IsVariable(s string) bool {
	return strings.HasPrefix(s, "?")
}

// IsAnonymousVariable detects a variable of the form '?'.
func IsAnonymousVariable(s string) bool {
	return s == "?"
}

// UnknownPatternType is an error that includes the thing that's
// causing the trouble.
type UnknownPatternType struct {
	Pattern interface{}
}

func (e *UnknownPatternType) Error() string {
	return "unknown pattern type"
}

// fudge is a hack to cast numbers to float64s.
func fudge(x interface{}) interface{} {
	switch vv := x.(type) {
	case float32:
		return float64(vv)
	case int64:
		return float64(vv)
	case int32:
		return float64(vv)
	case int:
		return float64(vv)
	case []int64:
		acc := make([]interface{}, len(vv))
		for i, y := range vv {
			acc[i] = float64(y)
		}
		return acc
	case map[interface{}]interface{}:
		acc := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			s, is := k.(string)
			if !is {
				return x
			}
			acc[s] = v
		}
		return acc
	default:
		return x
	}
}

// Match attempts to match the given token with the given pattern.
// The given bindings are not modified.  On success, the returned
// bindings extend them.  A nil result without an error means no
// match.
func Match(pattern, token interface{}, bs Bindings) (Bindings, error) {
	if bs == nil {
		bs = NewBindings()
	}
	return match(pattern, token, bs.Copy())
}

// Stream matches tokens against patterns one by one, threading the
// bindings.  The two must have the same length.
func Stream(patterns, tokens []interface{}, bs Bindings) (Bindings, error) {
	if len(patterns) != len(tokens) {
		return nil, nil
	}
	if bs == nil {
		bs = NewBindings()
	}
	bs = bs.Copy()
	for i, p := range patterns {
		var err error
		if bs, err = match(p, tokens[i], bs); bs == nil || err != nil {
			return nil, err
		}
	}
	return bs, nil
}

// match can modify the given bindings.
func match(pattern, token interface{}, bs Bindings) (Bindings, error) {
	pattern = fudge(pattern)
	token = fudge(token)

	switch vv := pattern.(type) {
	case nil:
		if token == nil {
			return bs, nil
		}
		return nil, nil

	case bool:
		if y, is := token.(bool); is && y == vv {
			return bs, nil
		}
		return nil, nil

	case float64:
		if y, is := token.(float64); is && y == vv {
			return bs, nil
		}
		return nil, nil

	case string:
		if !IsVariable(vv) {
			if y, is := token.(string); is && y == vv {
				return bs, nil
			}
			return nil, nil
		}
		if IsAnonymousVariable(vv) {
			return bs, nil
		}
		if using, ok := inequal(token, bs, vv); using {
			if !ok {
				return nil, nil
			}
			return bs, nil
		}
		if binding, found := bs[vv]; found {
			return match(binding, token, bs)
		}
		bs[vv] = token
		return bs, nil

	case map[string]interface{}:
		fm, is := token.(map[string]interface{})
		if !is {
			return nil, nil
		}
		for k, p := range vv {
			v, have := fm[k]
			if !have {
				return nil, nil
			}
			var err error
			if bs, err = match(p, v, bs); bs == nil || err != nil {
				return nil, err
			}
		}
		return bs, nil

	case []interface{}:
		fa, is := token.([]interface{})
		if !is || len(fa) != len(vv) {
			return nil, nil
		}
		for i, p := range vv {
			var err error
			if bs, err = match(p, fa[i], bs); bs == nil || err != nil {
				return nil, err
			}
		}
		return bs, nil

	default:
		return nil, &UnknownPatternType{pattern}
	}
}

// inequal handles variables like "?<n".  If v isn't an inequality
// whose bound is bound to a number, using is false.
func inequal(token interface{}, bs Bindings, v string) (using bool, ok bool) {
	if len(v) < 3 {
		return false, false
	}
	var ineq, name string
	for _, ie := range []string{"<=", ">=", "!=", ">", "<"} {
		if strings.HasPrefix(v[1:], ie) {
			ineq = ie
			name = "?" + v[1+len(ie):]
			break
		}
	}
	if ineq == "" {
		return false, false
	}
	b, is := fudge(bs[name]).(float64)
	if !is {
		return false, false
	}
	a, is := fudge(token).(float64)
	if !is {
		return true, false
	}
	switch ineq {
	case "<":
		return true, a < b
	case "<=":
		return true, a <= b
	case ">":
		return true, a > b
	case ">=":
		return true, a >= b
	default:
		return true, a != b
	}
}
