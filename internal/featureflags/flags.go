// Package featureflags reads operational toggles from the environment.
// The server consults these at startup only; flipping a flag means a
// restart. Known flags: FLAG_DISABLE_ORDER_REAPER keeps stale PENDING
// checkout orders around instead of cancelling them, useful when
// investigating abandoned-checkout behavior in a live store.
package featureflags

import (
	"os"
	"strings"
)

// Enabled reports whether FLAG_<NAME> is set to a truthy value
// (1/true/yes/on, case-insensitive). Unset and unrecognized values are off.
func Enabled(name string) bool {
	v := os.Getenv("FLAG_" + strings.ToUpper(name))
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
