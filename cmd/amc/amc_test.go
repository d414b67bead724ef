package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/streamblocks/cal2am/core"
	"github.com/streamblocks/cal2am/util/testutil"
)

const passYAML = `
name: pass
inputs:
  - name: In
actions:
  - tag: pass
    inputs:
      - port: In
        vars: [x]
`

func amc(t *testing.T, in string, args ...string) string {
	t.Helper()
	out := &bytes.Buffer{}
	if err := run(context.Background(), args, strings.NewReader(in), out); err != nil {
		t.Fatalf("amc %v: %v", args, err)
	}
	return out.String()
}

func TestCompile(t *testing.T) {
	var snap core.Snapshot
	if err := json.Unmarshal([]byte(amc(t, passYAML, "compile")), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Name != "pass" || len(snap.States) != 3 {
		t.Fatalf("got %s", testutil.JS(snap))
	}
	if snap.Fingerprint == "" {
		t.Fatal("no fingerprint")
	}

	if out := amc(t, passYAML, "compile", "-y"); !strings.Contains(out, "states:") {
		t.Fatalf("not YAML: %s", out)
	}
}

func TestCompileCached(t *testing.T) {
	for _, db := range []string{"cache.db", "cache.sqlite"} {
		t.Run(db, func(t *testing.T) {
			db := filepath.Join(t.TempDir(), db)
			first := amc(t, passYAML, "compile", "-db", db)
			second := amc(t, passYAML, "compile", "-db", db)
			if first != second {
				t.Fatalf("cached snapshot differs:\n%s\n%s", first, second)
			}
		})
	}
}

func TestOptionsFlags(t *testing.T) {
	out := amc(t, passYAML, "analyze", "-policy", "first", "-forget-wait", "input,guards")
	if !strings.Contains(out, "states: 3") {
		t.Fatalf("got %s", out)
	}
	err := run(context.Background(), []string{"analyze", "-forget-exec", "guards-fine"},
		strings.NewReader(passYAML), &bytes.Buffer{})
	if err == nil {
		t.Fatal("guards-fine accepted")
	}
	err = run(context.Background(), []string{"analyze", "-policy", "random"},
		strings.NewReader(passYAML), &bytes.Buffer{})
	if err == nil {
		t.Fatal("bad policy accepted")
	}
}

func TestRenderers(t *testing.T) {
	if out := amc(t, passYAML, "graph"); !strings.HasPrefix(out, "digraph G {") {
		t.Fatalf("graph: %s", out)
	}
	if out := amc(t, passYAML, "mermaid", "-plain"); !strings.HasPrefix(out, "graph TB") {
		t.Fatalf("mermaid: %s", out)
	}
	if out := amc(t, passYAML, "html", "-css", "a.css,b.css"); !strings.Contains(out, `href="b.css"`) {
		t.Fatalf("html: %s", out)
	}

	filename := filepath.Join(t.TempDir(), "pass.dot")
	amc(t, passYAML, "graph", "-o", filename)
	bs, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(bs), "doublecircle") {
		t.Fatal("no wait in graph")
	}
}

func TestFile(t *testing.T) {
	out := amc(t, "", "analyze", "-f", "../../network/testdata/split.yaml")
	if !strings.Contains(out, "states:") {
		t.Fatalf("got %s", out)
	}
}

func TestConversions(t *testing.T) {
	js := amc(t, passYAML, "yamltojson")
	var a core.Actor
	if err := json.Unmarshal([]byte(js), &a); err != nil {
		t.Fatal(err)
	}
	if a.Name != "pass" || len(a.Actions) != 1 {
		t.Fatalf("got %s", js)
	}
	if y := amc(t, js, "jsontoyaml"); !strings.Contains(y, "name: pass") {
		t.Fatalf("got %s", y)
	}
}

func TestErrors(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"frob"},
		{"compile"},
		{"network"},
		{"sim", "-f", "../../network/testdata/pipeline.yaml", "-feed", "router.In"},
		{"sim", "-f", "../../network/testdata/pipeline.yaml", "-feed", "router.Out=[1]"},
		{"yamltojson", "-q"},
	} {
		if err := run(context.Background(), args, strings.NewReader(""), &bytes.Buffer{}); err == nil {
			t.Errorf("amc %v succeeded", args)
		}
	}
}

func TestNetwork(t *testing.T) {
	dir := t.TempDir()
	out := amc(t, "", "network", "-f", "../../network/testdata/pipeline.yaml", "-j", "2", "-o", dir)
	for _, want := range []string{"pass: 3 states", "pipeline: 4 instances, 3 connections"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %s", want, out)
		}
	}
	for _, name := range []string{"split", "scale", "pass"} {
		if _, err := os.Stat(filepath.Join(dir, name+".json")); err != nil {
			t.Error(err)
		}
	}
}

func TestSim(t *testing.T) {
	out := amc(t, "", "sim", "-f", "../../network/testdata/pipeline.yaml",
		"-feed", "router.In=[3,-2,5]", "-trace")
	for _, want := range []string{
		"fire router pos",
		"fire sink pass",
		"7 firings",
		`{"double.Out":[6,10]}`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %s", want, out)
		}
	}
}

func TestSimExpect(t *testing.T) {
	out := amc(t, "", "sim", "-f", "../../network/testdata/pipeline.yaml",
		"-feed", "router.In=[3,-2,5]", "-expect", "testdata/pipeline.expect.yaml")
	if !strings.Contains(out, `expectations met {"?last":10}`) {
		t.Fatalf("got %s", out)
	}

	err := run(context.Background(), []string{"sim", "-f", "../../network/testdata/pipeline.yaml",
		"-feed", "router.In=[3,-2,5]", "-expect", "testdata/pipeline.wrong.yaml"},
		strings.NewReader(""), &bytes.Buffer{})
	if err == nil {
		t.Fatal("wrong expectation met")
	}
}

func TestSimCheckpoint(t *testing.T) {
	cp := filepath.Join(t.TempDir(), "pipeline.json")
	out := amc(t, "", "sim", "-f", "../../network/testdata/pipeline.yaml",
		"-feed", "router.In=[3]", "-checkpoint", cp)
	if !strings.Contains(out, `{"double.Out":[6]}`) {
		t.Fatalf("got %s", out)
	}

	out = amc(t, "", "sim", "-f", "../../network/testdata/pipeline.yaml",
		"-feed", "router.In=[5]", "-resume", cp)
	if !strings.Contains(out, `{"double.Out":[6,10]}`) {
		t.Fatalf("resumed %s", out)
	}
}

func TestParseFeed(t *testing.T) {
	e, tokens, err := parseFeed("a.b.In=[1,\"x\"]")
	if err != nil {
		t.Fatal(err)
	}
	if e.Instance != "a.b" || e.Port != "In" || len(tokens) != 2 {
		t.Fatalf("got %v %v", e, tokens)
	}
	if _, _, err = parseFeed("In=[1]"); err == nil {
		t.Fatal("feed without instance accepted")
	}
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	builds := make(chan struct{}, 16)
	w, err := newWatcher(dir, 10*time.Millisecond, func(ctx context.Context) error {
		builds <- struct{}{}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.loop(ctx, &bytes.Buffer{})
	}()

	wait := func(what string) {
		select {
		case <-builds:
		case <-time.After(5 * time.Second):
			t.Fatalf("no build after %s", what)
		}
	}
	wait("start")

	if err := os.WriteFile(filepath.Join(dir, "actor.yaml"), []byte(passYAML), 0644); err != nil {
		t.Fatal(err)
	}
	wait("write")

	cancel()
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}
