// Command stagectl exercises the menu lifecycle from the command line:
// parsing generator output, resolving replies, and building or running the
// elicitation prompt against a roster.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
