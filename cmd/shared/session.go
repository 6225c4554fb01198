package shared

import (
	"context"
	"dominicbreuker/netterm/pkg/config"
	"dominicbreuker/netterm/pkg/entrypoint"
	"dominicbreuker/netterm/pkg/log"
	"fmt"

	"github.com/urfave/cli/v3"
)

// SessionFunc runs a connect or listen session with a validated config.
type SessionFunc func(ctx context.Context, cfg *config.Shared) error

// RunSession dispatches cfg to the connect or listen entrypoint.
func RunSession(ctx context.Context, cfg *config.Shared) error {
	if cfg.Listen {
		return entrypoint.Listen(ctx, cfg)
	}
	return entrypoint.Connect(ctx, cfg)
}

// NewConfig builds a session config from the common flags of cmd.
func NewConfig(cmd *cli.Command, proto config.Protocol, host string, port int, listen bool) *config.Shared {
	verbose := cmd.Bool(VerboseFlag)
	return &config.Shared{
		Protocol: proto,
		Host:     host,
		Port:     port,
		Listen:   listen,
		Verbose:  verbose,
		Raw:      cmd.Bool(RawFlag),
		Clear:    cmd.Bool(ClearFlag),
		LogFile:  cmd.String(LogFileFlag),
		Logger:   log.NewLogger(verbose),
	}
}

// Start validates cfg, remembers its parameters as the last profile and
// runs the session. Failing to save the profile is only a warning.
func Start(ctx context.Context, cmd *cli.Command, cfg *config.Shared, run SessionFunc) error {
	if errors := config.Validate(cfg); len(errors) > 0 {
		log.ErrorMsg("Argument validation errors:\n")
		for _, err := range errors {
			log.ErrorMsg(" - %s\n", err)
		}
		return fmt.Errorf("exiting")
	}

	if err := saveProfile(cmd, cfg); err != nil {
		cfg.Logger.WarnMsg("saving profile: %s\n", err)
	}

	return run(ctx, cfg)
}

// ProfilePath returns the profile location chosen with --profile, or the
// default one.
func ProfilePath(cmd *cli.Command) (string, error) {
	if path := cmd.String(ProfileFlag); path != "" {
		return path, nil
	}
	return config.ProfilePath()
}

func saveProfile(cmd *cli.Command, cfg *config.Shared) error {
	path, err := ProfilePath(cmd)
	if err != nil {
		return err
	}
	return config.SaveProfile(path, config.ProfileOf(cfg))
}
