// Package errtrack reports unexpected errors to Rollbar. When no token is
// configured every call is a no-op, so callers never need to branch.
package errtrack

import (
	"github.com/rollbar/rollbar-go"
)

var enabled bool

// Configure initializes the Rollbar client. An empty token disables tracking.
func Configure(token, environment, codeVersion string) {
	if token == "" {
		return
	}

	rollbar.SetToken(token)
	rollbar.SetEnvironment(environment)
	rollbar.SetCodeVersion(codeVersion)
	enabled = true
}

// Error reports an error with optional extra context
func Error(err error, extras ...map[string]interface{}) {
	if !enabled || err == nil {
		return
	}

	args := make([]interface{}, 0, 1+len(extras))
	args = append(args, err)
	for _, extra := range extras {
		args = append(args, extra)
	}
	rollbar.Error(args...)
}

// Message reports a warning-level message
func Message(msg string) {
	if !enabled {
		return
	}
	rollbar.Message(rollbar.WARN, msg)
}

// Close flushes pending reports. Call on shutdown.
func Close() {
	if !enabled {
		return
	}
	rollbar.Close()
}
