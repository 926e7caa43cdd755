// Package main is the entry point for the deploypack CLI.
package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/jmsierra/deploypack/cmd/deploypack/commands"
	"github.com/jmsierra/deploypack/internal/errors"
)

func main() {
	err := commands.Execute()
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	var exitErr *errors.ExitError
	if stderrors.As(err, &exitErr) {
		if exitErr.Suggestion != "" {
			fmt.Fprintf(os.Stderr, "%s\n", exitErr.Suggestion)
		}
		os.Exit(exitErr.Code)
	}

	os.Exit(errors.ExitUser)
}
