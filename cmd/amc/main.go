// Package main is amc, the actor machine compiler.
//
// amc reads an actor (YAML or JSON) on stdin or from -f, translates
// it, and writes the controller as a snapshot, a graph, an analysis,
// or an HTML page.  The network, sim, and watch subcommands work on
// whole networks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"

	"github.com/streamblocks/cal2am/core"
	"github.com/streamblocks/cal2am/util"

	"github.com/jsccast/yaml"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	util.Logger.SetPrefix("amc ")

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	if len(args) < 1 {
		Usage(out)
		return fmt.Errorf("no subcommand")
	}

	switch args[0] {
	case "yamltojson":
		pretty := false
		switch len(args) {
		case 1:
		case 2:
			if args[1] != "-p" {
				return fmt.Errorf("unsupported args: %v", args)
			}
			pretty = true
		default:
			return fmt.Errorf("unsupported args: %v", args)
		}
		a, err := readActor(in, "")
		if err != nil {
			return err
		}
		var bs []byte
		if pretty {
			bs, err = json.MarshalIndent(a, "", "  ")
		} else {
			bs, err = json.Marshal(a)
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n", bs)
		return err

	case "jsontoyaml":
		bs, err := io.ReadAll(in)
		if err != nil {
			return err
		}
		var a core.Actor
		if err = json.Unmarshal(bs, &a); err != nil {
			return err
		}
		if bs, err = yaml.Marshal(&a); err != nil {
			return err
		}
		_, err = out.Write(bs)
		return err

	case "network":
		return networkCmd(ctx, args[1:], out)

	case "sim":
		return simCmd(ctx, args[1:], out)

	case "watch":
		return watchCmd(ctx, args[1:], out)

	case "help", "-h":
		Usage(out)
		return nil

	default:
		mod, have := Mods[args[0]]
		if !have {
			Usage(out)
			return fmt.Errorf("unknown subcommand \"%s\"", args[0])
		}

		var common commonFlags
		flags := mod.Flags()
		common.add(flags)
		if err := flags.Parse(args[1:]); err != nil {
			return err
		}
		util.Logging = common.verbose

		opts, err := common.options()
		if err != nil {
			return err
		}

		a, err := readActor(in, common.filename)
		if err != nil {
			return err
		}

		return mod.F(ctx, a, opts, out)
	}
}

// Usage prints every subcommand's flags.
func Usage(out io.Writer) {
	fmt.Fprintf(out, "Subcommands:\n\n")
	names := make([]string, 0, len(Mods))
	for name := range Mods {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		mod := Mods[name]
		fs := mod.Flags()
		var common commonFlags
		common.add(fs)
		fs.SetOutput(out)
		fmt.Fprintf(out, "%s: %s\n", name, mod.Doc())
		fs.PrintDefaults()
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "network: compile every actor of a network (see -h)\n\n")
	fmt.Fprintf(out, "sim: compile and run a network (see -h)\n\n")
	fmt.Fprintf(out, "watch: recompile an actor or network when its files change (see -h)\n\n")
	fmt.Fprintf(out, "yamltojson: actor YAML on stdin to JSON (-p to pretty-print)\n\n")
	fmt.Fprintf(out, "jsontoyaml: actor JSON on stdin to YAML\n\n")
}
