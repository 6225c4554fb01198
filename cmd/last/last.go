// Package last implements the last command, which repeats the most recent
// connect or listen session.
package last

import (
	"context"
	"dominicbreuker/netterm/cmd/shared"
	"dominicbreuker/netterm/pkg/config"
	"fmt"

	"github.com/urfave/cli/v3"
)

// GetCommand returns the CLI command that re-runs the saved profile.
func GetCommand() *cli.Command {
	return newCommand(shared.RunSession)
}

func newCommand(run shared.SessionFunc) *cli.Command {
	return &cli.Command{
		Name:  "last",
		Usage: "Repeat the last session",
		Description: "Runs connect or listen again with the transport of the last session.\n" +
			"Without a saved session it connects to tcp://localhost:80.",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := shared.ProfilePath(cmd)
			if err != nil {
				return fmt.Errorf("locating profile: %s", err)
			}

			p, err := config.LoadProfile(path)
			if err != nil {
				return err
			}

			cfg := shared.NewConfig(cmd, 0, "", 0, false)
			if err := p.Apply(cfg); err != nil {
				return err
			}
			// the saved choice wins unless --clear asks for it explicitly
			cfg.Clear = p.Clear || cmd.Bool(shared.ClearFlag)

			return shared.Start(ctx, cmd, cfg, run)
		},
		Flags: shared.GetCommonFlags(),
	}
}
