// Command tutorctl runs the conversation policy engine from the shell:
// classify messages, process turns, submit feedback and manage profiles.
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
