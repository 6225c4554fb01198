package entrypoint

import (
	"context"
	"dominicbreuker/netterm/pkg/client"
	"dominicbreuker/netterm/pkg/config"
	"dominicbreuker/netterm/pkg/netcode"
	"dominicbreuker/netterm/pkg/server"
	"dominicbreuker/netterm/pkg/transport"
	"fmt"
	"net"
	"sync"
)

// Listen waits for one client at a time and runs an interactive session
// with it. When the client goes away the server resumes accepting. It
// returns when ctx is done, stdin ends or accepting fails.
func Listen(ctx context.Context, cfg *config.Shared) error {
	return listen(ctx, cfg, realTransportFactory())
}

// listenHost returns the host to bind and warnings about choices that
// are unlikely to work.
func listenHost(cfg *config.Shared) (string, []string) {
	host := cfg.Host
	if host == "localhost" {
		host = "127.0.0.1"
	}

	var warnings []string
	if host != "" && net.ParseIP(host) == nil {
		warnings = append(warnings, fmt.Sprintf("%q is not an IP address, listening wants one", host))
	}
	if cfg.Port < 1024 {
		warnings = append(warnings, "the OS usually does not allow listening on ports <1024")
	}
	if cfg.Protocol == config.ProtoUDP {
		warnings = append(warnings, "UDP listening not supported currently")
	}
	return host, warnings
}

func listen(parent context.Context, cfg *config.Shared, newTransports transportFactory) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	host, warnings := listenHost(cfg)
	for _, w := range warnings {
		cfg.Logger.WarnMsg("%s\n", w)
	}

	set, shutdown := newTransports(cfg)
	defer shutdown()

	srv, err := server.New(set, cfg.Protocol.String(), host, cfg.Port, server.WithLogger(cfg.Logger))
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer srv.Destroy()

	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer s.close()

	if err := srv.Listen(ctx); err != nil {
		return fmt.Errorf("listening at %s: %w", srv.URI(), err)
	}
	cfg.Logger.InfoMsg("listening at %s\n", srv.URI())
	cfg.Logger.InfoMsg("waiting for a client to connect ...\n")

	h := &handoff{ctx: ctx, cfg: cfg, set: set, srv: srv, s: s}
	defer h.drop()

	srv.AddAcceptListener(h.accept)

	errCh := make(chan netcode.Code, 1)
	srv.AddErrorListener(func(code netcode.Code) {
		select {
		case errCh <- code:
		default:
		}
	})

	inputDone := s.readInput(h.send)

	select {
	case <-ctx.Done():
		cfg.Logger.VerboseMsg("listen: context cancelled, closing server")
		return nil

	case err := <-inputDone:
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		return nil

	case code := <-errCh:
		return fmt.Errorf("accepting at %s: %s", srv.URI(), netcode.Describe(code))
	}
}

// handoff holds the single active client of a listening session.
type handoff struct {
	ctx context.Context
	cfg *config.Shared
	set *transport.Set
	srv *server.Server
	s   *session

	mu     sync.Mutex
	active *client.Client
}

func (h *handoff) accept(a server.Accepted) {
	c, err := client.New(h.set, h.srv.Protocol().String(), a.PeerAddress, a.PeerPort, client.WithLogger(h.cfg.Logger))
	if err != nil {
		h.cfg.Logger.ErrorMsg("adopting %s:%d: %s\n", a.PeerAddress, a.PeerPort, err)
		return
	}

	h.mu.Lock()
	prev := h.active
	h.active = c
	h.mu.Unlock()

	if prev != nil {
		prev.Destroy()
	}

	c.AddErrorListener(func(code netcode.Code) { h.lost(c, code) })
	c.AddResponseListener(h.s.received)

	c.FromHandle(a.Handle())
	h.cfg.Logger.InfoMsg("connected to %s\n", c.URI())
}

// lost tears down a failed client and resumes accepting.
func (h *handoff) lost(c *client.Client, code netcode.Code) {
	h.mu.Lock()
	if h.active == c {
		h.active = nil
	}
	h.mu.Unlock()

	c.Destroy()
	h.cfg.Logger.InfoMsg("%s\n", netcode.Describe(code))
	h.cfg.Logger.InfoMsg("waiting for another client to connect ...\n")

	if err := h.srv.SetPaused(h.ctx, false); err != nil {
		h.cfg.Logger.ErrorMsg("resuming %s: %s\n", h.srv.URI(), err)
	}
}

// send forwards input to the active client. Input without a client is
// dropped.
func (h *handoff) send(text string) {
	h.mu.Lock()
	c := h.active
	h.mu.Unlock()

	if c == nil {
		h.cfg.Logger.VerboseMsg("listen: no client connected, dropping %d bytes of input", len(text))
		return
	}
	if err := c.SendMessage(h.ctx, text); err != nil {
		h.cfg.Logger.ErrorMsg("sending to %s: %s\n", c.URI(), err)
	}
}

func (h *handoff) drop() {
	h.mu.Lock()
	c := h.active
	h.active = nil
	h.mu.Unlock()

	if c != nil {
		c.Destroy()
	}
}
