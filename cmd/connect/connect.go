// Package connect implements the connect command, which opens a terminal
// session with a remote tcp or udp endpoint.
package connect

import (
	"context"
	"dominicbreuker/netterm/cmd/shared"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
)

// GetCommand returns the CLI command for connect mode.
func GetCommand() *cli.Command {
	return newCommand(shared.RunSession)
}

func newCommand(run shared.SessionFunc) *cli.Command {
	return &cli.Command{
		Name:        "connect",
		Usage:       "Connect to a remote host",
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
			if host == "" {
				return fmt.Errorf("parsing transport: %s: specify a host", args.Get(0))
			}

			cfg := shared.NewConfig(cmd, proto, host, port, false)
			return shared.Start(ctx, cmd, cfg, run)
		},
		Flags: shared.GetCommonFlags(),
	}
}
