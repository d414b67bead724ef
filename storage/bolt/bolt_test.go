package bolt

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/streamblocks/cal2am/core"
	"github.com/streamblocks/cal2am/storage"
)

func TestImpl(t *testing.T) {
	// Just confirm that this code compiles.
	var _ storage.Storage = &Storage{}
	var _ storage.Storage = &storage.NoopStorage{}
}

func snapshot(t *testing.T, f func() (*core.Actor, error)) *core.Snapshot {
	a, err := f()
	if err != nil {
		t.Fatal(err)
	}
	m, err := core.Translate(a, nil)
	if err != nil {
		t.Fatal(err)
	}
	snap, err := m.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

func TestBasics(t *testing.T) {
	dir, err := os.MkdirTemp("", "cal2am")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	s, err := NewStorage(filepath.Join(dir, "storage.db"))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Open(ctx); err != nil {
		t.Fatal(err)
	}

	defer func() {
		if err := s.Close(ctx); err != nil {
			t.Fatal(err)
		}
	}()

	if _, err := s.Get(ctx, "a"); err != storage.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}

	pass := snapshot(t, core.PassActor)
	if err := s.Put(ctx, "a", pass); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, "b", snapshot(t, core.TurnstileActor)); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "pass" || len(got.States) != len(pass.States) {
		t.Fatalf("got %s with %d states", got.Name, len(got.States))
	}
	if *got.States[0].Instructions[0].True != 1 {
		t.Fatal("lost an instruction target")
	}

	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("keys %v", keys)
	}

	if err := s.Remove(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "a"); err != storage.NotFound {
		t.Fatalf("expected NotFound after Remove, got %v", err)
	}
	if _, err := s.Get(ctx, "b"); err != nil {
		t.Fatal(err)
	}
}

// BenchmarkBolt is just for fun.  Bolt is slow.
func BenchmarkBolt(b *testing.B) {
	dir, err := os.MkdirTemp("", "cal2am")
	if err != nil {
		b.Fatal(err)
	}
	defer os.RemoveAll(dir)

	s, err := NewStorage(filepath.Join(dir, "storage.db"))
	if err != nil {
		b.Fatal(err)
	}

	ctx := context.Background()
	if err := s.Open(ctx); err != nil {
		b.Fatal(err)
	}
	defer s.Close(ctx)

	a, err := core.SplitActor()
	if err != nil {
		b.Fatal(err)
	}
	m, err := core.Translate(a, nil)
	if err != nil {
		b.Fatal(err)
	}
	snap, err := m.Snapshot()
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		var err error
		if i%2 == 0 {
			err = s.Put(ctx, "split", snap)
		} else {
			_, err = s.Get(ctx, "split")
		}
		if err != nil {
			b.Fatal(err)
		}
	}
}
