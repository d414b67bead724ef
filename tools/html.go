package tools

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/streamblocks/cal2am/core"
	"github.com/streamblocks/cal2am/network"
	. "github.com/streamblocks/cal2am/util/testutil"

	md "github.com/russross/blackfriday/v2"
)

// RenderHTML writes an HTML fragment documenting the actor and its
// controller: the actor's doc (as Markdown), its actions, the
// conditions, and every state with its instructions.
func RenderHTML(a *core.Actor, snap *core.Snapshot, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}
	esc := html

	f(`<div class="actorDoc doc">%s</div>`, md.Run([]byte(a.Doc)))

	{ // Actions
		f(`<div class="actions"><table>`)
		for i, action := range a.Actions {
			f(`<tr class="action"><td><span id="t%d" class="tag">%s</span></td><td>`, i, esc(action.Tag))
			f(`<table>`)
			for _, p := range action.Inputs {
				f(`<tr><td>input</td><td><code>%s</code></td></tr>`, esc(JS(p)))
			}
			for _, g := range action.Guards {
				f(`<tr><td>guard</td><td><code>%s</code></td></tr>`, esc(g.String()))
			}
			for _, o := range action.Outputs {
				f(`<tr><td>output</td><td><code>%s</code></td></tr>`, esc(JS(o)))
			}
			if action.Body != "" {
				f(`<tr><td>body</td><td><div class="code"><pre>%s</pre></div></td></tr>`, esc(action.Body))
			}
			f(`</table>`)
			f(`</td></tr>`)
		}
		f(`</table></div>`)
	}

	{ // Conditions
		f(`<div class="conditions"><table>`)
		for i, c := range snap.Conditions {
			f(`<tr class="condition"><td><span id="c%d">c%d</span></td><td>%s</td><td><code>%s</code></td></tr>`,
				i, i, c.Kind, esc(c.Label()))
		}
		f(`</table></div>`)
	}

	{ // States
		f(`<div class="states"><table>`)
		for i, s := range snap.States {
			f(`<tr class="state"><td><span id="s%d" class="stateName">s%d</span></td><td>`, i, i)
			if len(s.Inputs)+len(s.Outputs)+len(s.Predicates) > 0 || len(s.Scheduler) > 0 {
				k := map[string]interface{}{
					"scheduler": s.Scheduler,
					"inputs":    s.Inputs,
					"outputs":   s.Outputs,
					"guards":    s.Predicates,
				}
				f(`<div class="knowledge"><code>%s</code></div>`, esc(JS(k)))
			}
			f(`<ol class="instructions">`)
			for _, instr := range s.Instructions {
				switch instr.Kind {
				case core.ExecKind.String():
					f(`<li>exec <a href="#t%d">%s</a> then <a href="#s%d">s%d</a></li>`,
						*instr.Transition, esc(snap.Transitions[*instr.Transition].Tag), *instr.Target, *instr.Target)
				case core.TestKind.String():
					f(`<li>test <a href="#c%d">c%d</a> true <a href="#s%d">s%d</a> false <a href="#s%d">s%d</a></li>`,
						*instr.Condition, *instr.Condition, *instr.True, *instr.True, *instr.False, *instr.False)
				case core.WaitKind.String():
					f(`<li>wait for %v then <a href="#s%d">s%d</a></li>`, instr.WaitingFor, *instr.Target, *instr.Target)
				default:
					return fmt.Errorf("state %d has an instruction of kind %q", i, instr.Kind)
				}
			}
			f(`</ol>`)
			f(`</td></tr>`)
		}
		f(`</table></div>`)
	}

	return nil
}

// RenderPage writes a complete HTML page for the actor and its
// controller.  When includeGraph is true, the page embeds the
// snapshot as JSON for a client-side renderer.
func RenderPage(a *core.Actor, snap *core.Snapshot, out io.Writer, cssFiles []string, includeGraph bool) error {

	if cssFiles == nil {
		cssFiles = []string{"/static/machine.css"}
	}

	js, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, html(a.Name))

	if includeGraph {
		fmt.Fprintf(out, `
  <script src="https://cdnjs.cloudflare.com/ajax/libs/cytoscape/3.2.8/cytoscape.min.js"></script>
  <script src="/static/machine.js"></script>
  <script>
  var thisMachine = %s;
  </script>
`, js)
	}

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, html(a.Name))

	if includeGraph {
		fmt.Fprintf(out, `<div id="graph"></div>`)
	}

	if err = RenderHTML(a, snap, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadAndRenderPage reads an actor (YAML or JSON, with inlines),
// translates it with the given options, and renders the page.
func ReadAndRenderPage(filename string, opts *core.Options, cssFiles []string, out io.Writer, includeGraph bool) error {
	a, err := network.LoadActor(filename)
	if err != nil {
		return err
	}
	if a.Name == "" {
		a.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	m, err := core.Translate(a, opts)
	if err != nil {
		return err
	}
	snap, err := m.Snapshot()
	if err != nil {
		return err
	}
	return RenderPage(a, snap, out, cssFiles, includeGraph)
}

// WritePage is ReadAndRenderPage to a file.
func WritePage(filename, htmlname string, opts *core.Options) error {
	out, err := os.Create(htmlname)
	if err != nil {
		return err
	}
	if err = ReadAndRenderPage(filename, opts, nil, out, false); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
