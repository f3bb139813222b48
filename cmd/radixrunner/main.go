// Command radixrunner runs a lock-free radix clock with shadow counters.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/radixrunner/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
