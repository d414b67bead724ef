package network

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/streamblocks/cal2am/core"
	"github.com/streamblocks/cal2am/util"

	"github.com/jsccast/yaml"
)

// ParseActor parses an actor in YAML (or JSON) and compiles it.
func ParseActor(bs []byte) (*core.Actor, error) {
	var a core.Actor
	if err := yaml.Unmarshal(bs, &a); err != nil {
		return nil, err
	}
	if err := a.Compile(); err != nil {
		return nil, err
	}
	return &a, nil
}

// LoadActor reads and parses an actor file.  '%inline("NAME")'
// in the file is replaced by the contents of NAME, relative to the
// file's directory.
func LoadActor(filename string) (*core.Actor, error) {
	bs, err := util.ReadFileWithInlines(filename)
	if err != nil {
		return nil, err
	}
	a, err := ParseActor(bs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return a, nil
}

// Parse parses a network in YAML (or JSON).
func Parse(bs []byte) (*Network, error) {
	var n Network
	if err := yaml.Unmarshal(bs, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// Load reads a network file and resolves its actors relative to the
// file's directory.  The network is validated.
func Load(filename string) (*Network, map[string]*core.Actor, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, err
	}
	n, err := Parse(bs)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filename, err)
	}
	actors, err := n.Resolve(filepath.Dir(filename))
	if err != nil {
		return nil, nil, err
	}
	if err = n.Validate(actors); err != nil {
		return nil, nil, err
	}
	return n, actors, nil
}

// Resolve loads (and compiles) every actor the network names.  The
// keys of the result are the network's actor names.
func (n *Network) Resolve(dir string) (map[string]*core.Actor, error) {
	acc := make(map[string]*core.Actor, len(n.Actors))
	for name, src := range n.Actors {
		if src == nil {
			return nil, fmt.Errorf("actor '%s' has no source", name)
		}
		var (
			a   *core.Actor
			err error
		)
		switch {
		case src.Inline != nil:
			a = src.Inline
			err = a.Compile()
		case src.File != "":
			filename := src.File
			if !filepath.IsAbs(filename) {
				filename = filepath.Join(dir, filename)
			}
			a, err = LoadActor(filename)
		default:
			err = fmt.Errorf("actor '%s' has neither file nor inline source", name)
		}
		if err != nil {
			return nil, err
		}
		if a.Name == "" {
			a.Name = name
		}
		acc[name] = a
	}
	return acc, nil
}
