package main

import (
	"os"

	"github.com/louisbranch/ironmarch/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
