package main

import (
	"context"
	"dominicbreuker/netterm/cmd/connect"
	"dominicbreuker/netterm/cmd/interfaces"
	"dominicbreuker/netterm/cmd/last"
	"dominicbreuker/netterm/cmd/listen"
	"dominicbreuker/netterm/cmd/shared"
	"dominicbreuker/netterm/cmd/version"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := shared.SetupSignalHandling(cancel)

	err := newApp().Run(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[!] Error: %s\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "netterm",
		Usage: "terminal for raw tcp and udp sessions",
		Commands: []*cli.Command{
			connect.GetCommand(),
			listen.GetCommand(),
			last.GetCommand(),
			interfaces.GetCommand(),
			version.GetCommand(),
		},
	}
}
