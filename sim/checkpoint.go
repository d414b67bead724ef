package sim

import (
	"fmt"

	"github.com/streamblocks/cal2am/core"
	"github.com/streamblocks/cal2am/crew"
	"github.com/streamblocks/cal2am/network"
)

// BadCheckpoint is returned by Restore when a checkpoint doesn't fit
// the runner's network.
type BadCheckpoint struct {
	Instance string
	Reason   string
}

func (e *BadCheckpoint) Error() string {
	return fmt.Sprintf("checkpoint for %s: %s", e.Instance, e.Reason)
}

// fingerprint identifies the controller an instance runs.
func fingerprint(m *core.ActorMachine) (string, error) {
	opts := m.Controller.Options()
	return core.Fingerprint(m.Actor, &opts)
}

// Checkpoint captures every instance: its controller state (as a
// snapshot state number), its variables, and the tokens queued on
// its input ports.  Tokens waiting on unconnected output ports are
// recorded with the instance that wrote them.
//
// Controller states are numbered breadth-first, so taking a
// checkpoint builds the whole controller.
func (r *Runner) Checkpoint(id string) (*crew.Crew, error) {
	c := crew.NewCrew(id)
	for _, i := range r.Instances {
		ids, err := i.Machine.Controller.StateList()
		if err != nil {
			return nil, err
		}
		node := -1
		for n, sid := range ids {
			if sid == i.PC {
				node = n
				break
			}
		}
		if node < 0 {
			return nil, &BadCheckpoint{Instance: i.Name, Reason: fmt.Sprintf("state %d unreachable", i.PC)}
		}
		fp, err := fingerprint(i.Machine)
		if err != nil {
			return nil, err
		}
		s := &crew.State{
			Node:   node,
			Vars:   i.Vars.Copy(),
			Inputs: make(map[string][]interface{}),
		}
		for p, ch := range i.Inputs {
			if ch.Len() > 0 {
				s.Inputs[p] = append([]interface{}(nil), ch.tokens...)
			}
		}
		for p := range i.Outputs {
			ch, have := r.sinks[network.Endpoint{Instance: i.Name, Port: p}]
			if !have || ch.Len() == 0 {
				continue
			}
			if s.Outputs == nil {
				s.Outputs = make(map[string][]interface{})
			}
			s.Outputs[p] = append([]interface{}(nil), ch.tokens...)
		}
		c.Set(&crew.Machine{
			Id:    i.Name,
			Actor: fp,
			State: s,
		})
	}
	return c, nil
}

// Restore puts every instance named by the checkpoint back where the
// checkpoint found it.  Instances the checkpoint doesn't mention are
// left alone.  Nothing is changed if any machine doesn't fit.
func (r *Runner) Restore(c *crew.Crew) error {
	c = c.Copy()

	type restore struct {
		i  *Instance
		pc core.StateID
		s  *crew.State
	}
	var acc []restore

	for name, m := range c.Machines {
		i := r.byName[name]
		if i == nil {
			return &BadCheckpoint{Instance: name, Reason: "no such instance"}
		}
		if m.State == nil {
			return &BadCheckpoint{Instance: name, Reason: "no state"}
		}
		fp, err := fingerprint(i.Machine)
		if err != nil {
			return err
		}
		if m.Actor != "" && m.Actor != fp {
			return &BadCheckpoint{Instance: name, Reason: "different machine"}
		}
		ids, err := i.Machine.Controller.StateList()
		if err != nil {
			return err
		}
		if m.State.Node < 0 || len(ids) <= m.State.Node {
			return &BadCheckpoint{Instance: name, Reason: fmt.Sprintf("no state %d", m.State.Node)}
		}
		for p, ts := range m.State.Inputs {
			ch, have := i.Inputs[p]
			if !have {
				return &BadCheckpoint{Instance: name, Reason: "no input port " + p}
			}
			if ch.Capacity > 0 && ch.Capacity < len(ts) {
				return &BadCheckpoint{Instance: name, Reason: "too many tokens for " + p}
			}
		}
		for p := range m.State.Outputs {
			if _, have := r.sinks[network.Endpoint{Instance: name, Port: p}]; !have {
				return &BadCheckpoint{Instance: name, Reason: "no unconnected output port " + p}
			}
		}
		acc = append(acc, restore{i, ids[m.State.Node], m.State})
	}

	for _, x := range acc {
		x.i.PC = x.pc
		x.i.Vars = make(Env, len(x.s.Vars))
		for k, v := range x.s.Vars {
			x.i.Vars[k] = v
		}
		for p, ch := range x.i.Inputs {
			ch.tokens = x.s.Inputs[p]
		}
		for p, ch := range r.sinks {
			if p.Instance == x.i.Name {
				ch.tokens = x.s.Outputs[p.Port]
			}
		}
	}
	return nil
}
