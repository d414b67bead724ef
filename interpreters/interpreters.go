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

package interpreters

import (
	"github.com/streamblocks/cal2am/interpreters/goja"
	"github.com/streamblocks/cal2am/sim"
)

// Standard returns the interpreters the simulator knows by name.
func Standard() sim.InterpretersMap {
	is := make(sim.InterpretersMap)

	es := goja.NewInterpreter()
	is["ecmascript"] = es
	is["ecmascript-5.1"] = es
	is["goja"] = es

	return is
}
