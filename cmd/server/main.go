// Package main implements the maika command: the webhook server that runs
// the conversational assistant's actions, plus maintenance commands for the
// progress database.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "maika: %v\n", err)
		os.Exit(1)
	}
}
