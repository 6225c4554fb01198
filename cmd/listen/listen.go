// Package listen implements the listen command, which waits for clients
// and opens a terminal session with one of them at a time.
package listen

import (
	"context"
	"dominicbreuker/netterm/cmd/shared"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
)

// GetCommand returns the CLI command for listen mode.
func GetCommand() *cli.Command {
	return newCommand(shared.RunSession)
}

func newCommand(run shared.SessionFunc) *cli.Command {
	return &cli.Command{
		Name:        "listen",
		Usage:       "Listen for connections",
		Description: shared.GetBaseDescription(),
		ArgsUsage:   shared.GetArgsUsage(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() != 1 {
				return fmt.Errorf("must provide exactly one argument, got %d (%s)", args.Len(), strings.Join(args.Slice(), ", "))
			}

			proto, host, port, err := shared.ParseTransport(args.Get(0))
			if err != nil {
				return fmt.Errorf("parsing transport: %s", err)
			}

			cfg := shared.NewConfig(cmd, proto, host, port, true)
			return shared.Start(ctx, cmd, cfg, run)
		},
		Flags: shared.GetCommonFlags(),
	}
}
