package network

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/streamblocks/cal2am/core"
	"github.com/streamblocks/cal2am/storage"
)

func load(t *testing.T) (*Network, map[string]*core.Actor) {
	t.Helper()
	n, actors, err := Load("testdata/pipeline.yaml")
	if err != nil {
		t.Fatal(err)
	}
	return n, actors
}

func TestLoad(t *testing.T) {
	n, actors := load(t)
	if n.Name != "pipeline" || len(n.Instances) != 4 || len(n.Connections) != 3 {
		t.Fatalf("loaded %s with %d instances and %d connections", n.Name, len(n.Instances), len(n.Connections))
	}
	if len(actors) != 3 {
		t.Fatalf("%d actors", len(actors))
	}
	split := actors["split"]
	if split.Actions[0].Guards[0].Source != "x >= 0" {
		t.Fatalf("guard %q", split.Actions[0].Guards[0])
	}
	if len(split.Priorities) != 1 {
		t.Fatalf("priorities %v", split.Priorities)
	}
	if actors["pass"].Name != "pass" {
		t.Fatalf("inline actor named %q", actors["pass"].Name)
	}
	scale := actors["scale"]
	if scale.ValueParameters[0].Value.Source != "1" || scale.Actions[0].Vars[0].Value.Source != "k * x" {
		t.Fatal("lost an expression")
	}
	if n.Instance("double").Parameters["k"] != "2" {
		t.Fatal("lost a parameter")
	}

	if _, _, err := Load("testdata/nope.yaml"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected a missing file, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		description string
		mod         func(n *Network)
		check       func(error) bool
	}{
		{
			description: "unknown actor",
			mod: func(n *Network) {
				n.Instances = append(n.Instances, &Instance{Name: "x", Actor: "nope"})
			},
			check: func(err error) bool {
				var e *UnknownActor
				return errors.As(err, &e) && e.Actor == "nope"
			},
		},
		{
			description: "duplicate instance",
			mod: func(n *Network) {
				n.Instances = append(n.Instances, &Instance{Name: "sink", Actor: "pass"})
			},
			check: func(err error) bool {
				var e *BadInstance
				return errors.As(err, &e)
			},
		},
		{
			description: "unknown parameter",
			mod: func(n *Network) {
				n.Instance("sink").Parameters = map[string]string{"k": "1"}
			},
			check: func(err error) bool {
				var e *BadInstance
				return errors.As(err, &e)
			},
		},
		{
			description: "wrong direction",
			mod: func(n *Network) {
				n.Connections[0].From.Port = "In"
			},
			check: func(err error) bool {
				var e *BadConnection
				return errors.As(err, &e)
			},
		},
		{
			description: "fan-in",
			mod: func(n *Network) {
				n.Connections = append(n.Connections, &Connection{
					From: Endpoint{Instance: "double", Port: "Out"},
					To:   Endpoint{Instance: "sink", Port: "In"},
				})
			},
			check: func(err error) bool {
				var e *BadConnection
				return errors.As(err, &e)
			},
		},
		{
			description: "unsupported version",
			mod: func(n *Network) {
				n.Version = "2.0.0"
			},
			check: func(err error) bool {
				return err != nil
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			n, actors := load(t)
			tc.mod(n)
			if err := n.Validate(actors); !tc.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}

type memStorage struct {
	sync.Mutex
	snaps map[string]*core.Snapshot
	puts  int
}

func (s *memStorage) Open(ctx context.Context) error  { return nil }
func (s *memStorage) Close(ctx context.Context) error { return nil }

func (s *memStorage) Get(ctx context.Context, key string) (*core.Snapshot, error) {
	s.Lock()
	defer s.Unlock()
	snap, have := s.snaps[key]
	if !have {
		return nil, storage.NotFound
	}
	return snap, nil
}

func (s *memStorage) Put(ctx context.Context, key string, snap *core.Snapshot) error {
	s.Lock()
	defer s.Unlock()
	s.snaps[key] = snap
	s.puts++
	return nil
}

func (s *memStorage) Remove(ctx context.Context, key string) error {
	s.Lock()
	defer s.Unlock()
	delete(s.snaps, key)
	return nil
}

func (s *memStorage) Keys(ctx context.Context) ([]string, error) {
	s.Lock()
	defer s.Unlock()
	acc := make([]string, 0, len(s.snaps))
	for k := range s.snaps {
		acc = append(acc, k)
	}
	return acc, nil
}

func TestCompile(t *testing.T) {
	n, actors := load(t)
	store := &memStorage{snaps: make(map[string]*core.Snapshot)}
	ctx := context.Background()

	cs, err := n.Compile(ctx, actors, nil, 4, store)
	if err != nil {
		t.Fatal(err)
	}
	if len(cs) != 3 {
		t.Fatalf("%d compiled", len(cs))
	}
	for name, c := range cs {
		if c.Cached {
			t.Fatalf("%s cached on first compile", name)
		}
		if c.Snapshot.Fingerprint == "" || len(c.Snapshot.States) == 0 {
			t.Fatalf("%s: bad snapshot", name)
		}
	}
	if store.puts != 3 {
		t.Fatalf("%d puts", store.puts)
	}

	again, err := n.Compile(ctx, actors, nil, 2, store)
	if err != nil {
		t.Fatal(err)
	}
	for name, c := range again {
		if !c.Cached {
			t.Fatalf("%s not cached", name)
		}
		if c.Machine == nil {
			t.Fatalf("%s has no machine", name)
		}
	}

	opts := &core.Options{Policy: core.FirstInstruction}
	if _, err = n.Compile(ctx, actors, opts, 1, store); err != nil {
		t.Fatal(err)
	}
	if store.puts != 6 {
		t.Fatal("different options reused a snapshot")
	}
}

func TestCompileError(t *testing.T) {
	n, actors := load(t)
	opts := &core.Options{Forget: core.KnowledgeRemoval{OnExec: core.KnowledgeKinds{core.FineGuardKnowledge}}}
	_, err := n.Compile(context.Background(), actors, opts, 2, nil)
	var e *core.UnsupportedGuardRemoval
	if !errors.As(err, &e) {
		t.Fatalf("expected UnsupportedGuardRemoval, got %v", err)
	}
}
