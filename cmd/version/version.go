// Package version implements the version command.
package version

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// Version is set at build time with -ldflags "-X ...version.Version=...".
var Version = "unknown"

// GetCommand returns the CLI command that prints the program version.
func GetCommand() *cli.Command {
	return newCommand(os.Stdout)
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Program version",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintf(out, "netterm %s\n", Version)
			return err
		},
		Flags: []cli.Flag{},
	}
}
