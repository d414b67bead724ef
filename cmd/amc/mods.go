package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/streamblocks/cal2am/core"
	"github.com/streamblocks/cal2am/network"
	"github.com/streamblocks/cal2am/tools"

	"github.com/jsccast/yaml"
)

// Mods are the subcommands that work on a single actor.
var Mods = map[string]Mod{
	"compile": &Compiler{},
	"graph":   &Grapher{},
	"mermaid": &Mermaider{},
	"analyze": &Analyzer{},
	"html":    &Htmler{},
}

type Mod interface {
	F(ctx context.Context, a *core.Actor, opts *core.Options, out io.Writer) error
	Doc() string
	Flags() *flag.FlagSet
}

// nopCloser lets Dot and Mermaid write to out without closing it.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// create opens the named file, or returns out if filename is empty.
func create(filename string, out io.Writer) (io.WriteCloser, error) {
	if filename == "" {
		return nopCloser{out}, nil
	}
	return os.Create(filename)
}

func snapshot(a *core.Actor, opts *core.Options) (*core.Snapshot, error) {
	m, err := core.Translate(a, opts)
	if err != nil {
		return nil, err
	}
	return m.Snapshot()
}

type Compiler struct {
	Pretty bool
	YAML   bool
	DB     string
}

func (m *Compiler) Doc() string {
	return "Translates the actor and writes its controller as a snapshot."
}

func (m *Compiler) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	fs.BoolVar(&m.Pretty, "p", false, "pretty-print JSON")
	fs.BoolVar(&m.YAML, "y", false, "write YAML instead of JSON")
	fs.StringVar(&m.DB, "db", "", "snapshot cache (.sqlite for SQLite, otherwise BoltDB)")
	return fs
}

func (m *Compiler) F(ctx context.Context, a *core.Actor, opts *core.Options, out io.Writer) error {
	store, err := openStore(ctx, m.DB)
	if err != nil {
		return err
	}
	defer closeStore(ctx, store)

	c, err := network.CompileActor(ctx, a, opts, store)
	if err != nil {
		return err
	}

	var bs []byte
	switch {
	case m.YAML:
		bs, err = yaml.Marshal(c.Snapshot)
	case m.Pretty:
		bs, err = json.MarshalIndent(c.Snapshot, "", "  ")
	default:
		bs, err = json.Marshal(c.Snapshot)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n", strings.TrimSpace(string(bs)))
	return err
}

type Grapher struct {
	OutputFilename string
	PNG            string
	From, To       int
}

func (m *Grapher) Doc() string {
	return "Writes a Graphviz dot file for the controller."
}

func (m *Grapher) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("graph", flag.ContinueOnError)
	fs.StringVar(&m.OutputFilename, "o", "", "output filename (default stdout)")
	fs.StringVar(&m.PNG, "png", "", "basename for .dot and .png files (needs dot)")
	fs.IntVar(&m.From, "from", -1, "state to highlight a step from")
	fs.IntVar(&m.To, "to", -1, "state to highlight a step to")
	return fs
}

func (m *Grapher) F(ctx context.Context, a *core.Actor, opts *core.Options, out io.Writer) error {
	snap, err := snapshot(a, opts)
	if err != nil {
		return err
	}
	if m.PNG != "" {
		filename, err := tools.PNG(snap, m.PNG, m.From, m.To)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n", filename)
		return nil
	}
	w, err := create(m.OutputFilename, out)
	if err != nil {
		return err
	}
	return tools.Dot(snap, w, m.From, m.To) // Will Close w.
}

type Mermaider struct {
	OutputFilename string
	Plain          bool
}

func (m *Mermaider) Doc() string {
	return "Writes a Mermaid flowchart for the controller."
}

func (m *Mermaider) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("mermaid", flag.ContinueOnError)
	fs.StringVar(&m.OutputFilename, "o", "", "output filename (default stdout)")
	fs.BoolVar(&m.Plain, "plain", false, "no knowledge labels or fills")
	return fs
}

func (m *Mermaider) F(ctx context.Context, a *core.Actor, opts *core.Options, out io.Writer) error {
	snap, err := snapshot(a, opts)
	if err != nil {
		return err
	}
	w, err := create(m.OutputFilename, out)
	if err != nil {
		return err
	}
	var mopts *tools.MermaidOpts
	if m.Plain {
		mopts = &tools.MermaidOpts{}
	}
	return tools.Mermaid(snap, w, mopts)
}

type Analyzer struct {
}

func (m *Analyzer) Doc() string {
	return "Counts states and instructions and reports transitions that never fire."
}

func (m *Analyzer) Flags() *flag.FlagSet {
	return flag.NewFlagSet("analyze", flag.ContinueOnError)
}

func (m *Analyzer) F(ctx context.Context, a *core.Actor, opts *core.Options, out io.Writer) error {
	snap, err := snapshot(a, opts)
	if err != nil {
		return err
	}
	analysis, err := tools.Analyze(snap)
	if err != nil {
		return err
	}
	bs, err := yaml.Marshal(analysis)
	if err != nil {
		return err
	}
	_, err = out.Write(bs)
	return err
}

type Htmler struct {
	OutputFilename string
	Graph          bool
	CSS            string
}

func (m *Htmler) Doc() string {
	return "Writes an HTML page documenting the actor and its controller."
}

func (m *Htmler) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("html", flag.ContinueOnError)
	fs.StringVar(&m.OutputFilename, "o", "", "output filename (default stdout)")
	fs.BoolVar(&m.Graph, "graph", false, "embed the snapshot for a client-side graph")
	fs.StringVar(&m.CSS, "css", "", "comma-separated stylesheet URLs")
	return fs
}

func (m *Htmler) F(ctx context.Context, a *core.Actor, opts *core.Options, out io.Writer) error {
	snap, err := snapshot(a, opts)
	if err != nil {
		return err
	}
	var css []string
	if m.CSS != "" {
		css = strings.Split(m.CSS, ",")
	}
	w, err := create(m.OutputFilename, out)
	if err != nil {
		return err
	}
	if err = tools.RenderPage(a, snap, w, css, m.Graph); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
