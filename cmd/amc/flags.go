package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/streamblocks/cal2am/core"
	"github.com/streamblocks/cal2am/network"
	"github.com/streamblocks/cal2am/storage"
	"github.com/streamblocks/cal2am/storage/bolt"
	"github.com/streamblocks/cal2am/storage/sqlite"
	"github.com/streamblocks/cal2am/util"
)

// commonFlags are the flags every subcommand takes.
type commonFlags struct {
	filename   string
	forgetExec string
	forgetWait string
	policy     string
	verbose    bool
}

func (c *commonFlags) add(fs *flag.FlagSet) {
	fs.StringVar(&c.filename, "f", "", "input filename (default stdin)")
	fs.StringVar(&c.forgetExec, "forget-exec", "", "knowledge to forget after exec (input,output,guards)")
	fs.StringVar(&c.forgetWait, "forget-wait", "", "knowledge to forget after wait (input,output,guards)")
	fs.StringVar(&c.policy, "policy", string(core.AllInstructions), "instructions per state (all or first)")
	fs.BoolVar(&c.verbose, "v", false, "verbose logging")
}

func (c *commonFlags) options() (*core.Options, error) {
	onExec, err := core.ParseKnowledgeKinds(c.forgetExec)
	if err != nil {
		return nil, err
	}
	onWait, err := core.ParseKnowledgeKinds(c.forgetWait)
	if err != nil {
		return nil, err
	}
	opts := &core.Options{
		Forget: core.KnowledgeRemoval{OnExec: onExec, OnWait: onWait},
		Policy: core.Policy(c.policy),
	}
	return opts, opts.Check("")
}

// readActor reads an actor from the named file (with inlines) or,
// when filename is empty, from in.
func readActor(in io.Reader, filename string) (*core.Actor, error) {
	var (
		bs  []byte
		err error
	)
	if filename == "" {
		bs, err = util.ReadAllWithInlines(in, ".")
	} else {
		bs, err = util.ReadFileWithInlines(filename)
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(bs)) == 0 {
		return nil, fmt.Errorf("no actor given")
	}
	a, err := network.ParseActor(bs)
	if err != nil {
		return nil, err
	}
	if a.Name == "" && filename != "" {
		a.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	return a, nil
}

// openStore opens the snapshot cache named by db.  Files ending in
// .sqlite or .sqlite3 use SQLite.  Anything else uses BoltDB.  An
// empty name means no cache.
func openStore(ctx context.Context, db string) (storage.Storage, error) {
	if db == "" {
		return nil, nil
	}
	var (
		s   storage.Storage
		err error
	)
	switch filepath.Ext(db) {
	case ".sqlite", ".sqlite3":
		s, err = sqlite.NewStorage(db)
	default:
		s, err = bolt.NewStorage(db)
	}
	if err != nil {
		return nil, err
	}
	if err = s.Open(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func closeStore(ctx context.Context, s storage.Storage) error {
	if s == nil {
		return nil
	}
	return s.Close(ctx)
}
