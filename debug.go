package qem

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
)

func assert(statement string, validity interface{}) {
	if debug_level() < 1 {
		return
	}
	var not_valid bool
	if lambda, ok := validity.(func() bool); ok {
		not_valid = !lambda()
	} else if boolean, ok := validity.(bool); ok {
		not_valid = !boolean
	}
	if not_valid {
		fmt.Fprint(os.Stderr, "\a") // bell
		red := color.New(color.FgRed).SprintFunc()
		panic(red("Assertion failed: " + statement))
	}
}

func debug_level() (debug_level int64) {
	debug_level, _ = strconv.ParseInt(os.Getenv("DEBUG_LEVEL"), 10, 64)
	return
}

// debugf reports progress on stderr when DEBUG_LEVEL reaches level, or for
// level 1 messages when the session was configured verbose.
func (m *Mesh) debugf(level int64, format string, args ...interface{}) {
	if debug_level() < level && !(m.verbose && level <= 1) {
		return
	}
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintln(os.Stderr, cyan("qem:"), fmt.Sprintf(format, args...))
}
