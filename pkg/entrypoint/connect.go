package entrypoint

import (
	"context"
	"dominicbreuker/netterm/pkg/client"
	"dominicbreuker/netterm/pkg/config"
	"dominicbreuker/netterm/pkg/netcode"
	"fmt"
)

// Connect dials the configured host and runs an interactive session until
// ctx is done, stdin ends or the connection fails.
func Connect(ctx context.Context, cfg *config.Shared) error {
	return connect(ctx, cfg, realTransportFactory())
}

func connect(parent context.Context, cfg *config.Shared, newTransports transportFactory) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	set, shutdown := newTransports(cfg)
	defer shutdown()

	c, err := client.New(set, cfg.Protocol.String(), cfg.Host, cfg.Port, client.WithLogger(cfg.Logger))
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}
	defer c.Destroy()

	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer s.close()

	// registered before Connect so a greeting or an immediate close is seen
	errCh := make(chan netcode.Code, 1)
	c.AddErrorListener(func(code netcode.Code) {
		select {
		case errCh <- code:
		default:
		}
	})
	c.AddResponseListener(s.received)

	if err := c.Connect(ctx); err != nil {
		return fmt.Errorf("connecting to %s: %w", c.URI(), err)
	}
	cfg.Logger.InfoMsg("connected to %s\n", c.URI())

	inputDone := s.readInput(func(text string) {
		if err := c.SendMessage(ctx, text); err != nil {
			cfg.Logger.ErrorMsg("sending to %s: %s\n", c.URI(), err)
		}
	})

	select {
	case <-ctx.Done():
		cfg.Logger.VerboseMsg("connect: context cancelled, closing connection")
		return nil

	case err := <-inputDone:
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		return nil

	case code := <-errCh:
		if code == netcode.ConnectionClosed {
			cfg.Logger.InfoMsg("connection to %s closed\n", c.URI())
			return nil
		}
		return fmt.Errorf("connection to %s: %s", c.URI(), netcode.Describe(code))
	}
}
