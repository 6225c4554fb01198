// Package interfaces implements the interfaces command, which lists the
// addresses a listener can bind to.
package interfaces

import (
	"context"
	"dominicbreuker/netterm/pkg/log"
	"dominicbreuker/netterm/pkg/socket"
	"dominicbreuker/netterm/pkg/transport"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// GetCommand returns the CLI command that lists local interfaces.
func GetCommand() *cli.Command {
	return newCommand(func() (transport.NetworkLister, func()) {
		p := socket.New(nil, log.NewLogger(false))
		return transport.New(p).Network, p.Shutdown
	}, os.Stdout)
}

func newCommand(newLister func() (transport.NetworkLister, func()), out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "interfaces",
		Usage: "List local addresses to listen on",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			lister, shutdown := newLister()
			defer shutdown()

			ifaces, err := lister.GetNetworkList().Wait(ctx)
			if err != nil {
				return fmt.Errorf("listing interfaces: %w", err)
			}

			printEntry(out, "127.0.0.1", "lo", "localhost IPv4")
			printEntry(out, "::1", "lo", "localhost IPv6")
			for _, iface := range ifaces {
				printEntry(out, iface.Address, iface.Name, "")
			}
			return nil
		},
		Flags: []cli.Flag{},
	}
}

func printEntry(w io.Writer, addr, iface, text string) {
	if text == "" {
		text = addr
	}
	fmt.Fprintf(w, "%-40s %s (%s)\n", addr, text, iface)
}
