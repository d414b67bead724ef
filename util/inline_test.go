package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInline(t *testing.T) {
	input := `
body: %inline("count.js")
guard: %inline ("guard.js")
`
	want := `
body: COUNT.JS
guard: GUARD.JS
`

	find := func(name string) ([]byte, error) {
		return []byte(strings.ToUpper(name)), nil
	}

	got, err := Inline([]byte(input), find)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != want {
		t.Fatalf("got %s", got)
	}
}

func TestReadFileWithInlines(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "body.js"), []byte(`"count = count + 1;"`), 0644); err != nil {
		t.Fatal(err)
	}
	filename := filepath.Join(dir, "actor.yaml")
	if err := os.WriteFile(filename, []byte(`body: %inline("body.js")`), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFileWithInlines(filename)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `body: "count = count + 1;"` {
		t.Fatalf("got %s", got)
	}

	if err = os.WriteFile(filename, []byte(`body: %inline("missing.js")`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err = ReadFileWithInlines(filename); err == nil {
		t.Fatal("missing inline accepted")
	}
}
