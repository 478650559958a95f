// Command abpctl is a thin CLI over the backplane library: it dispatches
// a WorkOrder against an in-process mock backend set, or inspects the
// capability manifests, mapping registry, and wire-protocol sequencing
// rules that drive that dispatch.
package main

import (
	"fmt"
	"os"
)

// exitCode is set by a subcommand's RunE before it returns, so main can
// report spec.md §6's exit codes even though cobra itself only knows
// success/failure. It defaults to 3 (fatal) and is only ever lowered by
// a subcommand that completes its own work and classifies the outcome.
var exitCode = 3

func main() {
	root := buildRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode)
	}
	os.Exit(exitCode)
}
