// Package main is the entry point for the radsync CLI binary.
package main

import (
	"os"

	cli "radsync/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
