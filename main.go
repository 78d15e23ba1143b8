package main

import (
	"fmt"
	"os"

	"github.com/temirov/mvninvoker/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the mvn-invoker command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(cli.ExitCode(executionError))
	}
}
