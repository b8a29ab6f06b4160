package main

import (
	"fmt"
	"os"

	"github.com/wharflab/typelint/cmd/typelint/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cmd.ExitConfigError)
	}
}
