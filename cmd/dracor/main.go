// dracor queries the DraCor API from the command line.
//
// Usage:
//
//	dracor info
//	dracor corpora [--metrics]
//	dracor filter <corpus> <condition=value>...
//	dracor authors <corpus> [--limit n]
//	dracor summary <corpus>
//	dracor play <corpus> <play> [--metrics]
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
