// Command syto compiles declarative attribute-map filters to SQL.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/syto/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands print their own diagnostics; only surface bare errors
		// such as flag parsing failures.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
