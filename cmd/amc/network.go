package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/streamblocks/cal2am/core"
	"github.com/streamblocks/cal2am/crew"
	"github.com/streamblocks/cal2am/interpreters"
	"github.com/streamblocks/cal2am/network"
	"github.com/streamblocks/cal2am/sim"
	"github.com/streamblocks/cal2am/util"

	"github.com/jsccast/yaml"
)

type networkFlags struct {
	commonFlags
	db      string
	workers int
}

func (n *networkFlags) add(fs *flag.FlagSet) {
	n.commonFlags.add(fs)
	fs.StringVar(&n.db, "db", "", "snapshot cache (.sqlite for SQLite, otherwise BoltDB)")
	fs.IntVar(&n.workers, "j", runtime.NumCPU(), "actors to compile at once")
}

// compileNetwork loads the network file and compiles its actors.
func (n *networkFlags) compile(ctx context.Context) (*network.Network, map[string]*network.Compiled, error) {
	if n.filename == "" {
		return nil, nil, fmt.Errorf("need a network file (-f)")
	}
	opts, err := n.options()
	if err != nil {
		return nil, nil, err
	}
	net, actors, err := network.Load(n.filename)
	if err != nil {
		return nil, nil, err
	}
	if err = net.CheckVersion(); err != nil {
		return nil, nil, err
	}
	store, err := openStore(ctx, n.db)
	if err != nil {
		return nil, nil, err
	}
	defer closeStore(ctx, store)

	compiled, err := net.Compile(ctx, actors, opts, n.workers, store)
	if err != nil {
		return nil, nil, err
	}
	return net, compiled, nil
}

func sortedNames(m map[string]*network.Compiled) []string {
	acc := make([]string, 0, len(m))
	for name := range m {
		acc = append(acc, name)
	}
	sort.Strings(acc)
	return acc
}

func networkCmd(ctx context.Context, args []string, out io.Writer) error {
	var (
		nf  networkFlags
		dir string
		fs  = flag.NewFlagSet("network", flag.ContinueOnError)
	)
	nf.add(fs)
	fs.StringVar(&dir, "o", "", "directory for one snapshot JSON file per actor")
	if err := fs.Parse(args); err != nil {
		return err
	}
	util.Logging = nf.verbose

	net, compiled, err := nf.compile(ctx)
	if err != nil {
		return err
	}

	for _, name := range sortedNames(compiled) {
		c := compiled[name]
		cached := ""
		if c.Cached {
			cached = " (cached)"
		}
		fmt.Fprintf(out, "%s: %d states%s\n", name, len(c.Snapshot.States), cached)
		if dir == "" {
			continue
		}
		bs, err := json.MarshalIndent(c.Snapshot, "", "  ")
		if err != nil {
			return err
		}
		if err = os.WriteFile(filepath.Join(dir, name+".json"), bs, 0644); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "%s: %d instances, %d connections\n", net.Name, len(net.Instances), len(net.Connections))
	return nil
}

// feeds collects repeated -feed INSTANCE.PORT=JSON flags.
type feeds []string

func (f *feeds) String() string {
	return strings.Join(*f, " ")
}

func (f *feeds) Set(s string) error {
	*f = append(*f, s)
	return nil
}

// parseFeed parses "router.In=[1,2,3]".
func parseFeed(s string) (network.Endpoint, []interface{}, error) {
	var e network.Endpoint
	eq := strings.Index(s, "=")
	if eq < 0 {
		return e, nil, fmt.Errorf("feed '%s' isn't INSTANCE.PORT=JSON", s)
	}
	dot := strings.LastIndex(s[:eq], ".")
	if dot < 0 {
		return e, nil, fmt.Errorf("feed '%s' isn't INSTANCE.PORT=JSON", s)
	}
	e.Instance, e.Port = s[:dot], s[dot+1:eq]
	var tokens []interface{}
	if err := json.Unmarshal([]byte(s[eq+1:]), &tokens); err != nil {
		return e, nil, fmt.Errorf("feed '%s': %w", s, err)
	}
	return e, tokens, nil
}

func simCmd(ctx context.Context, args []string, out io.Writer) error {
	var (
		nf       networkFlags
		fed      feeds
		rounds   int
		capacity int
		trace    bool
		expect   string
		save     string
		resume   string
		fs       = flag.NewFlagSet("sim", flag.ContinueOnError)
	)
	nf.add(fs)
	fs.Var(&fed, "feed", "INSTANCE.PORT=JSON array of tokens (repeatable)")
	fs.IntVar(&rounds, "rounds", 0, "maximum rounds (0 means until quiet)")
	fs.IntVar(&capacity, "capacity", 0, "default channel capacity (0 means unbounded)")
	fs.BoolVar(&trace, "trace", false, "print every firing")
	fs.StringVar(&expect, "expect", "", "YAML file of token patterns for unconnected output ports")
	fs.StringVar(&save, "checkpoint", "", "write a checkpoint of the network to this file after the run")
	fs.StringVar(&resume, "resume", "", "restore the network from this checkpoint before feeding")
	if err := fs.Parse(args); err != nil {
		return err
	}
	util.Logging = nf.verbose

	net, compiled, err := nf.compile(ctx)
	if err != nil {
		return err
	}

	machines := make(map[string]*core.ActorMachine, len(compiled))
	for name, c := range compiled {
		machines[name] = c.Machine
	}

	r, err := sim.NewRunner(ctx, net, machines, interpreters.Standard()["goja"], capacity)
	if err != nil {
		return err
	}

	if resume != "" {
		c, err := crew.Read(resume)
		if err != nil {
			return err
		}
		if err = r.Restore(c); err != nil {
			return err
		}
	}

	for _, f := range fed {
		e, tokens, err := parseFeed(f)
		if err != nil {
			return err
		}
		if err = r.Feed(e.Instance, e.Port, tokens...); err != nil {
			return err
		}
	}

	firings, err := r.Run(ctx, rounds)
	if trace {
		for _, f := range firings {
			fmt.Fprintf(out, "fire %s %s\n", f.Instance, f.Tag)
		}
	}
	if err != nil {
		return err
	}

	if save != "" {
		c, err := r.Checkpoint(net.Name)
		if err != nil {
			return err
		}
		if err = c.Write(save); err != nil {
			return err
		}
	}

	drained := r.DrainAll()
	bs, err := json.Marshal(drained)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d firings\n%s\n", len(firings), bs)

	if expect == "" {
		return nil
	}
	exp, err := loadExpectation(expect)
	if err != nil {
		return err
	}
	bindings, err := sim.Check(exp, drained)
	if err != nil {
		return err
	}
	if bs, err = json.Marshal(bindings); err != nil {
		return err
	}
	fmt.Fprintf(out, "expectations met %s\n", bs)
	return nil
}

// loadExpectation reads a YAML (or JSON) map from "instance.port" to a
// list of token patterns.
func loadExpectation(filename string) (sim.Expectation, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var exp sim.Expectation
	if err = yaml.Unmarshal(bs, &exp); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return exp, nil
}
