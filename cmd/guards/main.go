// Package main is the entry point for the guards CLI.
//
// Import Path: github.com/reflaxe-ocaml/guards/cmd/guards
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/reflaxe-ocaml/guards/internal/pkg/logger"
	"github.com/reflaxe-ocaml/guards/internal/report"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	defer func() { _ = logger.Sync() }()

	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)
	return exitCode(cmd.Execute(), cmd.ErrOrStderr())
}

// exitCode maps a command error to the process exit status. Check failures
// were already reported line by line; anything else is printed as FATAL.
func exitCode(err error, errOut io.Writer) int {
	if err == nil {
		return 0
	}
	if !errors.Is(err, errChecksFailed) {
		fmt.Fprintf(errOut, "%s FATAL: %v\n", report.Tag, err)
	}
	return 1
}
