// Package main provides the emh CLI application.
// emh harmonizes ocean-observatory metadata, assembles datasets and
// checks them against the EMSO metadata specifications.
package main

import (
	"os"
)

var (
	// Version is set by build flags
	Version = "dev"
)

func main() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
