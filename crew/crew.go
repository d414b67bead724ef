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

// Package crew holds checkpoints of running networks: every
// instance's controller state, variables, and queued tokens.
package crew

import (
	"encoding/json"
	"os"
	"sync"
)

// Crew is a checkpoint of a whole network.
type Crew struct {
	sync.RWMutex

	Id       string              `json:"id"`
	Machines map[string]*Machine `json:"machines"`
}

func NewCrew(id string) *Crew {
	return &Crew{
		Id:       id,
		Machines: make(map[string]*Machine),
	}
}

// Copy gets a read lock and returns a copy of the crew.
func (c *Crew) Copy() *Crew {
	c.RLock()
	ms := make(map[string]*Machine, len(c.Machines))
	for id, m := range c.Machines {
		ms[id] = m.Copy()
	}
	acc := &Crew{
		Id:       c.Id,
		Machines: ms,
	}
	c.RUnlock()
	return acc
}

// Set records a machine under its id.
func (c *Crew) Set(m *Machine) {
	c.Lock()
	if c.Machines == nil {
		c.Machines = make(map[string]*Machine)
	}
	c.Machines[m.Id] = m
	c.Unlock()
}

// Get returns the machine with the given id (or nil).
func (c *Crew) Get(id string) *Machine {
	c.RLock()
	defer c.RUnlock()
	return c.Machines[id]
}

// Write writes the crew as JSON to the named file.
func (c *Crew) Write(filename string) error {
	c.RLock()
	js, err := json.MarshalIndent(c, "", "  ")
	c.RUnlock()
	if err != nil {
		return err
	}
	return os.WriteFile(filename, js, 0644)
}

// Read reads a crew written by Write.
func Read(filename string) (*Crew, error) {
	js, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	c := NewCrew("")
	if err = json.Unmarshal(js, c); err != nil {
		return nil, err
	}
	return c, nil
}
