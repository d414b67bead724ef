package tools

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderHTML(t *testing.T) {

	t.Run("withoutGraph", func(t *testing.T) {
		out := bytes.NewBuffer(make([]byte, 0, 1024*128))

		if err := ReadAndRenderPage("testdata/counter.yaml", nil, []string{"machine.css"}, out, false); err != nil {
			t.Fatal(err)
		}
		page := out.String()
		for _, want := range []string{
			"<title>counter</title>",
			"<strong>forwards</strong>",
			"x &lt; limit",
			"n = n + 1;",
			`<span id="s0" class="stateName">s0</span>`,
			`machine.css`,
		} {
			if !strings.Contains(page, want) {
				t.Errorf("missing %q", want)
			}
		}
		if strings.Contains(page, "thisMachine") {
			t.Error("graph included")
		}
	})

	t.Run("withGraph", func(t *testing.T) {
		out := bytes.NewBuffer(make([]byte, 0, 1024*128))

		if err := ReadAndRenderPage("testdata/counter.yaml", nil, nil, out, true); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out.String(), "var thisMachine = {") {
			t.Fatal("no graph data")
		}
	})

	t.Run("file", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "counter.html")
		if err := WritePage("../network/testdata/split.yaml", filename, nil); err != nil {
			t.Fatal(err)
		}
		bs, err := os.ReadFile(filename)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(bs), "Routes non-negative tokens") {
			t.Fatal("no doc")
		}
	})

	t.Run("missing", func(t *testing.T) {
		if err := ReadAndRenderPage("testdata/nope.yaml", nil, nil, &bytes.Buffer{}, false); err == nil {
			t.Fatal("expected an error")
		}
	})
}
