package main

import (
	"fmt"
	"os"

	"github.com/temirov/dep3audit/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the dep3audit command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
