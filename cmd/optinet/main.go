// Command optinet is the CLI driver for the reduction engine: it reads
// a lambda-calculus source program, reduces it to normal form on a
// pool of walkers, and prints the result and run statistics.
package main

import (
	"os"

	"github.com/vic/optinet/cmd/optinet/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
