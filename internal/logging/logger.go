// Package logging provides the process-wide diagnostic sink shared by
// server and client, plus a per-component wrapper so each
// package's call sites don't hand-roll their own "server: "/"client: "
// prefix (and can't drift from one another on the separator or format).
package logging

import "log"

// Logf is the process-wide diagnostic sink. It defaults to log.Printf
// but may be replaced by SetLogger so tests or embedding applications
// can redirect or silence every component's output in one place.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the process-wide sink. Passing nil installs a
// no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// For returns a logging function scoped to component, prefixing every
// message it's given with "component: " before handing it to the
// process-wide sink. server and client each call this once
// at package scope instead of repeating their own prefix at every
// log call.
func For(component string) func(format string, v ...interface{}) {
	prefix := component + ": "
	return func(format string, v ...interface{}) {
		Logf(prefix+format, v...)
	}
}
