package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/streamblocks/cal2am/network"
	"github.com/streamblocks/cal2am/tools"
	"github.com/streamblocks/cal2am/util"

	"github.com/fsnotify/fsnotify"
)

// watcher recompiles whenever something in a directory changes.
type watcher struct {
	w *fsnotify.Watcher

	// quiet is how long the directory must be still before a
	// rebuild, so an editor's burst of writes yields one build.
	quiet time.Duration

	build func(ctx context.Context) error
}

func newWatcher(dir string, quiet time.Duration, build func(context.Context) error) (*watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err = w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	return &watcher{w: w, quiet: quiet, build: build}, nil
}

// loop builds once and then after every burst of changes until ctx is
// done.  Build errors are reported to out and don't stop the loop.
func (w *watcher) loop(ctx context.Context, out io.Writer) error {
	defer w.w.Close()

	report := func() {
		if err := w.build(ctx); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
	report()

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			util.Logf("watch: %s", ev)
			if timer == nil {
				timer = time.NewTimer(w.quiet)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.quiet)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			report()
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

func watchCmd(ctx context.Context, args []string, out io.Writer) error {
	var (
		nf    networkFlags
		isNet bool
		quiet time.Duration
		fs    = flag.NewFlagSet("watch", flag.ContinueOnError)
	)
	nf.add(fs)
	fs.BoolVar(&isNet, "network", false, "the file is a network rather than an actor")
	fs.DurationVar(&quiet, "quiet", 200*time.Millisecond, "wait for changes to settle this long")
	if err := fs.Parse(args); err != nil {
		return err
	}
	util.Logging = nf.verbose
	if nf.filename == "" {
		return fmt.Errorf("need a file to watch (-f)")
	}

	build := func(ctx context.Context) error {
		if isNet {
			net, compiled, err := nf.compile(ctx)
			if err != nil {
				return err
			}
			for _, name := range sortedNames(compiled) {
				fmt.Fprintf(out, "%s: %d states\n", name, len(compiled[name].Snapshot.States))
			}
			fmt.Fprintf(out, "%s: ok\n", net.Name)
			return nil
		}

		opts, err := nf.options()
		if err != nil {
			return err
		}
		a, err := network.LoadActor(nf.filename)
		if err != nil {
			return err
		}
		store, err := openStore(ctx, nf.db)
		if err != nil {
			return err
		}
		defer closeStore(ctx, store)
		c, err := network.CompileActor(ctx, a, opts, store)
		if err != nil {
			return err
		}
		analysis, err := tools.Analyze(c.Snapshot)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d states, %d execs, %d tests, %d waits, unfired %v\n",
			a.Name, analysis.States, analysis.Execs, analysis.Tests, analysis.Waits, analysis.Unfired)
		return nil
	}

	w, err := newWatcher(filepath.Dir(nf.filename), quiet, build)
	if err != nil {
		return err
	}
	return w.loop(ctx, out)
}
