package network

import (
	"context"
	"sync"

	"github.com/streamblocks/cal2am/core"
	"github.com/streamblocks/cal2am/storage"
	"github.com/streamblocks/cal2am/util"

	"golang.org/x/sync/errgroup"
)

// Compiled is the result of compiling one actor.
type Compiled struct {
	Machine  *core.ActorMachine
	Snapshot *core.Snapshot

	// Cached is true when the snapshot came from storage.
	Cached bool
}

// Compile translates every actor of the network and expands each
// controller into a Snapshot.
//
// Actors are independent, so up to workers of them are compiled at
// once.  Each actor is compiled once no matter how many instances
// use it.  If store isn't nil, snapshots are looked up by
// fingerprint before expanding a controller and stored afterwards.
func (n *Network) Compile(ctx context.Context, actors map[string]*core.Actor, opts *core.Options, workers int, store storage.Storage) (map[string]*Compiled, error) {
	if opts == nil {
		opts = &core.Options{}
	}
	if workers <= 0 {
		workers = 1
	}

	var (
		acc = make(map[string]*Compiled, len(actors))
		mu  sync.Mutex
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for name, a := range actors {
		name, a := name, a
		g.Go(func() error {
			c, err := CompileActor(ctx, a, opts, store)
			if err != nil {
				return err
			}
			mu.Lock()
			acc[name] = c
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return acc, nil
}

// CompileActor translates one actor and snapshots its controller,
// consulting the given storage (which can be nil).
func CompileActor(ctx context.Context, a *core.Actor, opts *core.Options, store storage.Storage) (*Compiled, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := core.Translate(a, opts)
	if err != nil {
		return nil, err
	}

	key, err := core.Fingerprint(a, opts)
	if err != nil {
		return nil, err
	}

	if store != nil {
		snap, err := store.Get(ctx, key)
		switch err {
		case nil:
			util.Logf("network: %s cached as %s", a.Name, key)
			return &Compiled{Machine: m, Snapshot: snap, Cached: true}, nil
		case storage.NotFound:
		default:
			return nil, err
		}
	}

	snap, err := m.Snapshot()
	if err != nil {
		return nil, err
	}
	snap.Fingerprint = key
	snap.Compiled = core.Timestamp()
	util.Logf("network: %s has %d states", a.Name, len(snap.States))

	if store != nil {
		if err = store.Put(ctx, key, snap); err != nil {
			return nil, err
		}
	}

	return &Compiled{Machine: m, Snapshot: snap}, nil
}
