package crew

// Machine is one instance's checkpoint.
type Machine struct {
	// Id is the instance name.
	Id string `json:"id,omitempty"`

	// Actor is the fingerprint of the actor and options that the
	// instance's controller was built from.  State numbers only
	// mean something for that controller.
	Actor string `json:"actor,omitempty"`

	State *State `json:"state"`
}

// State is where a machine is and what it holds.
type State struct {
	// Node is the controller state as numbered by the snapshot
	// (breadth-first order from the initial state).
	Node int `json:"node"`

	Vars map[string]interface{} `json:"vars,omitempty"`

	// Inputs are the queued tokens on each input port.
	Inputs map[string][]interface{} `json:"inputs,omitempty"`

	// Outputs are the tokens waiting on unconnected output ports.
	Outputs map[string][]interface{} `json:"outputs,omitempty"`
}

// Copy returns a new State.  Token and variable values are shared.
func (s *State) Copy() *State {
	if s == nil {
		return nil
	}
	acc := &State{
		Node:    s.Node,
		Vars:    make(map[string]interface{}, len(s.Vars)),
		Inputs:  copyQueues(s.Inputs),
		Outputs: copyQueues(s.Outputs),
	}
	for k, v := range s.Vars {
		acc.Vars[k] = v
	}
	return acc
}

func copyQueues(qs map[string][]interface{}) map[string][]interface{} {
	if qs == nil {
		return nil
	}
	acc := make(map[string][]interface{}, len(qs))
	for p, q := range qs {
		acc[p] = append([]interface{}(nil), q...)
	}
	return acc
}

// Update overlays the given machine data on the target machine.
//
// Not thread-safe.
func (m *Machine) Update(overlay *Machine) {
	if overlay.Id != "" {
		m.Id = overlay.Id
	}
	if overlay.Actor != "" {
		m.Actor = overlay.Actor
	}
	if overlay.State != nil {
		m.State = overlay.State.Copy()
	}
}

// Copy returns a new Machine with a copy of the state.
func (m *Machine) Copy() *Machine {
	return &Machine{
		Id:    m.Id,
		Actor: m.Actor,
		State: m.State.Copy(),
	}
}
