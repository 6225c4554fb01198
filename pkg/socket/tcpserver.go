package socket

import (
	"context"
	"dominicbreuker/netterm/pkg/config"
	"dominicbreuker/netterm/pkg/event"
	"dominicbreuker/netterm/pkg/format"
	"dominicbreuker/netterm/pkg/netcode"
	"errors"
	"fmt"
	"net"
	"sync"
	"syscall"
)

// TCPServer is the API group for listening TCP sockets. Accepted
// connections become TCP sockets that start out paused.
type TCPServer struct {
	OnAccept      event.Signal[AcceptInfo]
	OnAcceptError event.Signal[AcceptErrorInfo]

	p *Platform

	mu      sync.Mutex
	sockets map[ID]*serverSocket
}

type serverSocket struct {
	id   ID
	name string

	mu     sync.Mutex
	cond   *sync.Cond
	ln     net.Listener
	paused bool
}

func (t *TCPServer) get(id ID) *serverSocket {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sockets[id]
}

// Create allocates a new listening socket.
func (t *TCPServer) Create(props Properties, cb Callback[CreateInfo]) {
	s := &serverSocket{id: t.p.newID(), name: props.Name}
	s.cond = sync.NewCond(&s.mu)

	t.mu.Lock()
	t.sockets[s.id] = s
	t.mu.Unlock()

	t.p.logger.VerboseMsg("tcpServer: created socket %d", s.id)
	cb(CreateInfo{SocketID: s.id}, nil)
}

// Listen binds host:port and starts accepting. An empty host listens on
// all interfaces. The backlog is left to the operating system.
func (t *TCPServer) Listen(id ID, host string, port int, backlog int, cb Callback[Empty]) {
	op := fmt.Sprintf("listen(tcp, %s)", format.Addr(host, port))

	s := t.get(id)
	if s == nil {
		cb(Empty{}, codeError(op, netcode.InvalidHandle))
		return
	}

	laddr, err := net.ResolveTCPAddr("tcp", format.Addr(host, port))
	if err != nil {
		cb(Empty{}, opError(op, err))
		return
	}

	s.mu.Lock()
	if s.ln != nil {
		s.mu.Unlock()
		cb(Empty{}, codeError(op, netcode.SocketIsConnected))
		return
	}

	listen := config.GetTCPListenerFunc(t.p.deps, listenTCPReuse)
	ln, err := listen("tcp", laddr)
	if err != nil {
		s.mu.Unlock()
		cb(Empty{}, opError(op, err))
		return
	}
	s.ln = ln
	s.mu.Unlock()

	t.p.logger.VerboseMsg("tcpServer: socket %d listening on %s", id, ln.Addr())
	go t.accept(s, ln)
	cb(Empty{}, nil)
}

// listenTCPReuse listens with SO_REUSEADDR so a restarted listener can bind
// a port whose previous connections are still in TIME_WAIT.
func listenTCPReuse(network string, laddr *net.TCPAddr) (net.Listener, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var serr error
			if err := c.Control(func(fd uintptr) { serr = setReuseAddr(fd) }); err != nil {
				return err
			}
			return serr
		},
	}
	return lc.Listen(context.Background(), network, laddr.String())
}

// accept runs until ln is closed or replaced. Each accepted connection is
// announced on the event loop before the next Accept, so a handler that
// pauses the listener stops further accepts.
func (t *TCPServer) accept(s *serverSocket, ln net.Listener) {
	for {
		if !s.waitAccepting(ln) {
			return
		}

		conn, err := ln.Accept()
		if err != nil {
			if !s.current(ln) || errors.Is(err, net.ErrClosed) {
				return
			}
			s.setPaused(true)
			code := netcode.FromError(err)
			t.p.logger.VerboseMsg("tcpServer: socket %d: accept error %s", s.id, netcode.Describe(code))
			t.p.dispatch(func() {
				t.OnAcceptError.Emit(AcceptErrorInfo{SocketID: s.id, ResultCode: code})
			})
			continue
		}

		if !s.current(ln) {
			_ = conn.Close()
			return
		}

		clientID := t.p.TCP.adopt(conn)
		t.p.logger.VerboseMsg("tcpServer: socket %d accepted %s as socket %d", s.id, conn.RemoteAddr(), clientID)
		t.p.dispatchWait(func() {
			t.OnAccept.Emit(AcceptInfo{SocketID: s.id, ClientSocketID: clientID})
		})
	}
}

func (s *serverSocket) waitAccepting(ln net.Listener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.paused && s.ln == ln {
		s.cond.Wait()
	}
	return s.ln == ln
}

func (s *serverSocket) current(ln net.Listener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ln == ln
}

func (s *serverSocket) setPaused(paused bool) {
	s.mu.Lock()
	s.paused = paused
	s.mu.Unlock()
	s.cond.Broadcast()
}

func (s *serverSocket) disconnect() {
	s.mu.Lock()
	ln := s.ln
	s.ln = nil
	s.mu.Unlock()
	s.cond.Broadcast()

	if ln != nil {
		_ = ln.Close()
	}
}

// SetPaused stops or resumes accepting connections. While paused, new
// connections wait in the operating system's backlog.
func (t *TCPServer) SetPaused(id ID, paused bool, cb Callback[Empty]) {
	s := t.get(id)
	if s == nil {
		cb(Empty{}, codeError("setPaused(tcpServer)", netcode.InvalidHandle))
		return
	}
	s.setPaused(paused)
	t.p.logger.VerboseMsg("tcpServer: socket %d paused=%t", id, paused)
	cb(Empty{}, nil)
}

// Disconnect stops listening. The socket stays allocated until Close.
func (t *TCPServer) Disconnect(id ID, cb Callback[Empty]) {
	s := t.get(id)
	if s == nil {
		cb(Empty{}, codeError("disconnect(tcpServer)", netcode.InvalidHandle))
		return
	}
	s.disconnect()
	cb(Empty{}, nil)
}

// Close stops listening and releases the socket.
func (t *TCPServer) Close(id ID, cb Callback[Empty]) {
	t.mu.Lock()
	s := t.sockets[id]
	delete(t.sockets, id)
	t.mu.Unlock()

	if s == nil {
		cb(Empty{}, codeError("close(tcpServer)", netcode.InvalidHandle))
		return
	}
	s.disconnect()
	t.p.logger.VerboseMsg("tcpServer: socket %d closed", id)
	cb(Empty{}, nil)
}

// GetInfo reports the state of a listening socket.
func (t *TCPServer) GetInfo(id ID, cb Callback[Info]) {
	s := t.get(id)
	if s == nil {
		cb(Info{}, codeError("getInfo(tcpServer)", netcode.InvalidHandle))
		return
	}
	cb(s.info(), nil)
}

// GetSockets reports every listening socket.
func (t *TCPServer) GetSockets(cb Callback[[]Info]) {
	t.mu.Lock()
	sockets := make([]*serverSocket, 0, len(t.sockets))
	for _, s := range t.sockets {
		sockets = append(sockets, s)
	}
	t.mu.Unlock()

	out := make([]Info, 0, len(sockets))
	for _, s := range sockets {
		out = append(out, s.info())
	}
	sortInfos(out)
	cb(out, nil)
}

func (s *serverSocket) info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := Info{SocketID: s.id, Name: s.name, Paused: s.paused, Connected: s.ln != nil}
	if s.ln != nil {
		info.LocalAddress, info.LocalPort = splitAddr(s.ln.Addr())
	}
	return info
}

func (t *TCPServer) closeAll() {
	t.mu.Lock()
	sockets := t.sockets
	t.sockets = make(map[ID]*serverSocket)
	t.mu.Unlock()

	for _, s := range sockets {
		s.disconnect()
	}
}
