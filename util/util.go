package util

import (
	"log"
	"os"
)

// Logging is a clumsy switch that affects what Logf does.
//
// If Logging is true, then Logf writes to Logger.
var Logging = false

// Logger receives what Logf writes.  Commands can give it a prefix
// or point it elsewhere.
var Logger = log.New(os.Stderr, "", log.LstdFlags)

// Logf calls Logger.Printf if Logging is true.
func Logf(format string, args ...interface{}) {
	if !Logging {
		return
	}
	Logger.Printf(format, args...)
}
