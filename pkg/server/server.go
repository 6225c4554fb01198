// Package server implements the Net Server: a listening TCP endpoint or a
// bound UDP endpoint.
//
// A TCP server pauses itself on every accept and hands the accepted socket
// to its accept listener. It resumes accepting only when the caller calls
// SetPaused(ctx, false); connections arriving meanwhile wait in the
// listen backlog of the operating system.
package server

import (
	"context"
	"dominicbreuker/netterm/pkg/config"
	"dominicbreuker/netterm/pkg/event"
	"dominicbreuker/netterm/pkg/format"
	"dominicbreuker/netterm/pkg/log"
	"dominicbreuker/netterm/pkg/netcode"
	"dominicbreuker/netterm/pkg/socket"
	"dominicbreuker/netterm/pkg/transport"
	"fmt"
	"sync"
)

// Accepted describes a connection accepted by a Server.
type Accepted struct {
	socket.Info
}

// Handle returns the accepted socket.
func (a Accepted) Handle() socket.ID {
	return a.SocketID
}

// Server ...
type Server struct {
	set     *transport.Set
	proto   config.Protocol
	host    string
	port    int
	backlog int
	logger  *log.Logger

	mu     sync.Mutex
	handle socket.ID
	accept event.Slot
	errs   event.Slot
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for diagnostics of the accept chain.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithBacklog sets the listen backlog hint passed to the platform.
func WithBacklog(n int) Option {
	return func(s *Server) { s.backlog = n }
}

// New creates an unbound server for proto ("tcp" or "udp") that will bind
// host and port.
func New(set *transport.Set, proto string, host string, port int, opts ...Option) (*Server, error) {
	p, err := config.ParseProtocol(proto)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	s := &Server{
		set:   set,
		proto: p,
		host:  host,
		port:  port,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Protocol returns the transport protocol of the server.
func (s *Server) Protocol() config.Protocol { return s.proto }

// Host returns the bind host.
func (s *Server) Host() string { return s.host }

// Port returns the bind port.
func (s *Server) Port() int { return s.port }

// Handle returns the listening socket, or socket.None.
func (s *Server) Handle() socket.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

// URI returns proto://host:port.
func (s *Server) URI() string {
	return format.URI(s.proto.String(), s.host, s.port)
}

func (s *Server) sock() transport.Socket {
	if s.proto == config.ProtoUDP {
		return s.set.UDP
	}
	return s.set.TCPServer
}

// Listen creates a socket and starts listening on it, or binds it for UDP.
// State of a previous Listen is destroyed first, including listeners.
// Errors of the platform are returned unchanged.
func (s *Server) Listen(ctx context.Context) error {
	info, err := s.sock().Create(socket.Properties{}).Wait(ctx)
	if err != nil {
		return err
	}

	s.Destroy()
	s.mu.Lock()
	s.handle = info.SocketID
	s.mu.Unlock()

	if s.proto == config.ProtoUDP {
		_, err = s.set.UDP.Bind(info.SocketID, s.host, s.port).Wait(ctx)
	} else {
		_, err = s.set.TCPServer.Listen(info.SocketID, s.host, s.port, s.backlog).Wait(ctx)
	}
	if err != nil {
		return err
	}

	s.logger.VerboseMsg("server: %s bound to socket %d", s.URI(), info.SocketID)
	return nil
}

// SetPaused stops or resumes accepting connections, or receiving
// datagrams for UDP.
func (s *Server) SetPaused(ctx context.Context, paused bool) error {
	_, err := s.sock().SetPaused(s.Handle(), paused).Wait(ctx)
	return err
}

// AddAcceptListener sets fn as the receiver of accepted connections,
// replacing any previous one. The server is paused before fn runs and
// stays paused until the caller resumes it. It does nothing for UDP.
func (s *Server) AddAcceptListener(fn func(Accepted)) {
	if s.proto == config.ProtoUDP {
		return
	}

	s.accept.Replace(func() *event.Subscription {
		return s.set.TCPServer.OnAccept(func(info socket.AcceptInfo) {
			if info.SocketID != s.Handle() {
				return
			}
			s.handOff(info, fn)
		})
	})
}

// handOff pauses the listener, then reports the accepted socket. The pause
// is issued before handOff returns, so the platform accepts nothing else
// in between. Failures are logged and the accept is dropped.
func (s *Server) handOff(info socket.AcceptInfo, fn func(Accepted)) {
	ctx := context.Background()

	if _, err := s.set.TCPServer.SetPaused(info.SocketID, true).Wait(ctx); err != nil {
		s.logger.ErrorMsg("pausing %s: %s\n", s.URI(), err)
		return
	}

	client, err := s.set.TCP.GetInfo(info.ClientSocketID).Wait(ctx)
	if err != nil {
		s.logger.ErrorMsg("inspecting accepted socket %d: %s\n", info.ClientSocketID, err)
		return
	}
	client.SocketID = info.ClientSocketID

	fn(Accepted{Info: client})
}

// AddErrorListener sets fn as the receiver of accept errors, replacing
// any previous one. It does nothing for UDP.
func (s *Server) AddErrorListener(fn func(netcode.Code)) {
	if s.proto == config.ProtoUDP {
		return
	}

	s.errs.Replace(func() *event.Subscription {
		return s.set.TCPServer.OnAcceptError(func(info socket.AcceptErrorInfo) {
			if info.SocketID != s.Handle() {
				return
			}
			fn(info.ResultCode)
		})
	})
}

// Disconnect stops listening. The socket stays open until Destroy. It does
// nothing for UDP.
func (s *Server) Disconnect() {
	s.disconnect(s.Handle())
}

func (s *Server) disconnect(h socket.ID) {
	if s.proto != config.ProtoTCP || h == socket.None {
		return
	}
	s.set.TCPServer.Disconnect(h)
}

// Destroy removes both listeners and releases the socket. It never fails
// and does nothing on an unbound server.
func (s *Server) Destroy() {
	s.mu.Lock()
	s.accept.Clear()
	s.errs.Clear()
	h := s.handle
	s.handle = socket.None
	s.mu.Unlock()

	if h == socket.None {
		return
	}

	s.disconnect(h)
	s.sock().Close(h)
	s.logger.VerboseMsg("server: %s released socket %d", s.URI(), h)
}
