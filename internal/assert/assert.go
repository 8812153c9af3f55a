// Package assert provides contract checks that are only compiled in
// when building with the dynquery_debug tag.
package assert

import "fmt"

// That panics with the formatted message if cond is false and checks are enabled.
func That(cond bool, format string, args ...any) {
	if Enabled && !cond {
		panic(fmt.Sprintf("[FATAL] "+format, args...))
	}
}
