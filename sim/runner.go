package sim

import (
	"context"
	"fmt"

	"github.com/streamblocks/cal2am/core"
	"github.com/streamblocks/cal2am/network"
	"github.com/streamblocks/cal2am/util"
)

// Runner executes a network of actor machines on one goroutine.
//
// Each instance runs until it waits, in network order.  A round in
// which no instance fires ends the run.
type Runner struct {
	Instances []*Instance

	byName map[string]*Instance

	// feeds and sinks are the channels on unconnected ports.
	feeds map[network.Endpoint]*Channel
	sinks map[network.Endpoint]*Channel
}

// NewRunner instantiates the network.  Machines are keyed by the
// network's actor names.  Connections without a capacity get
// defaultCapacity (and zero means unbounded).  Unconnected input ports can
// be fed with Feed, and unconnected output ports collect tokens for
// Drain.
func NewRunner(ctx context.Context, n *network.Network, machines map[string]*core.ActorMachine, interp Interpreter, defaultCapacity int) (*Runner, error) {
	r := &Runner{
		Instances: make([]*Instance, 0, len(n.Instances)),
		byName:    make(map[string]*Instance, len(n.Instances)),
		feeds:     make(map[network.Endpoint]*Channel),
		sinks:     make(map[network.Endpoint]*Channel),
	}

	for _, ni := range n.Instances {
		m, have := machines[ni.Actor]
		if !have {
			return nil, &network.UnknownActor{Instance: ni.Name, Actor: ni.Actor}
		}
		i, err := NewInstance(ctx, ni.Name, m, interp, ni.Parameters)
		if err != nil {
			return nil, err
		}
		r.Instances = append(r.Instances, i)
		r.byName[i.Name] = i
	}

	for _, c := range n.Connections {
		from, to := r.byName[c.From.Instance], r.byName[c.To.Instance]
		if from == nil || to == nil {
			return nil, &network.BadConnection{Connection: c.String(), Reason: "unknown instance"}
		}
		capacity := c.Capacity
		if capacity == 0 {
			capacity = defaultCapacity
		}
		ch := NewChannel(capacity)
		from.Outputs[c.From.Port] = append(from.Outputs[c.From.Port], ch)
		to.Inputs[c.To.Port] = ch
	}

	for _, i := range r.Instances {
		for _, p := range i.Machine.InputPorts {
			if _, have := i.Inputs[p.Name]; !have {
				ch := NewChannel(0)
				i.Inputs[p.Name] = ch
				r.feeds[network.Endpoint{Instance: i.Name, Port: p.Name}] = ch
			}
		}
		for _, p := range i.Machine.OutputPorts {
			if len(i.Outputs[p.Name]) == 0 {
				ch := NewChannel(0)
				i.Outputs[p.Name] = []*Channel{ch}
				r.sinks[network.Endpoint{Instance: i.Name, Port: p.Name}] = ch
			}
		}
	}

	return r, nil
}

// Instance finds an instance by name.
func (r *Runner) Instance(name string) *Instance {
	return r.byName[name]
}

// Feed adds tokens to an unconnected input port.
func (r *Runner) Feed(instance, port string, tokens ...interface{}) error {
	ch, have := r.feeds[network.Endpoint{Instance: instance, Port: port}]
	if !have {
		return fmt.Errorf("%s.%s isn't an unconnected input port", instance, port)
	}
	return ch.Write(tokens...)
}

// Drain removes and returns the tokens produced on an unconnected
// output port.
func (r *Runner) Drain(instance, port string) ([]interface{}, error) {
	ch, have := r.sinks[network.Endpoint{Instance: instance, Port: port}]
	if !have {
		return nil, fmt.Errorf("%s.%s isn't an unconnected output port", instance, port)
	}
	return ch.Drain(), nil
}

// Run runs rounds until nothing fires or maxRounds rounds have run
// (maxRounds zero means no limit).  It returns every firing in order.
func (r *Runner) Run(ctx context.Context, maxRounds int) ([]Firing, error) {
	var acc []Firing
	for round := 0; maxRounds <= 0 || round < maxRounds; round++ {
		fired := 0
		for _, i := range r.Instances {
			fs, err := i.Run(ctx)
			acc = append(acc, fs...)
			if err != nil {
				return acc, err
			}
			fired += len(fs)
		}
		util.Logf("sim: round %d fired %d", round, fired)
		if fired == 0 {
			break
		}
	}
	return acc, nil
}
