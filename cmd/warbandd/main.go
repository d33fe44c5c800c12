package main

import (
	"fmt"
	"os"

	"github.com/argus-labs/warband/cmd/warbandd/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
