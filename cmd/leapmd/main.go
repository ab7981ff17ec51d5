// Package main provides the leapmd command-line entry point.
package main

import (
	"os"

	"github.com/leapstack-labs/leapmd/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
