package util

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestLogf(t *testing.T) {
	var buf bytes.Buffer
	was, wasLogging := Logger, Logging
	defer func() {
		Logger, Logging = was, wasLogging
	}()
	Logger = log.New(&buf, "test ", 0)

	Logging = false
	Logf("quiet %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("logged %q", buf.String())
	}

	Logging = true
	Logf("loud %d", 2)
	if got := strings.TrimSpace(buf.String()); got != "test loud 2" {
		t.Fatalf("logged %q", got)
	}
}
