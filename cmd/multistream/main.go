// Command multistream tees newline-delimited log records from stdin
// into several destinations, each with its own minimum level.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
