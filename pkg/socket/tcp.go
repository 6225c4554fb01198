package socket

import (
	"dominicbreuker/netterm/pkg/config"
	"dominicbreuker/netterm/pkg/event"
	"dominicbreuker/netterm/pkg/format"
	"dominicbreuker/netterm/pkg/netcode"
	"fmt"
	"net"
	"sync"
	"time"
)

// TCP is the API group for TCP client sockets, including sockets accepted
// by a TCPServer.
type TCP struct {
	OnReceive      event.Signal[ReceiveInfo]
	OnReceiveError event.Signal[ReceiveErrorInfo]

	p *Platform

	mu      sync.Mutex
	sockets map[ID]*tcpSocket
}

type tcpSocket struct {
	id         ID
	name       string
	bufferSize int

	mu         sync.Mutex
	cond       *sync.Cond
	conn       net.Conn
	connecting bool
	paused     bool

	wmu sync.Mutex // serializes writes
}

func newTCPSocket(id ID, props Properties) *tcpSocket {
	s := &tcpSocket{id: id, name: props.Name, bufferSize: bufferSize(props)}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (t *TCP) get(id ID) *tcpSocket {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sockets[id]
}

// Create allocates a new, unconnected socket.
func (t *TCP) Create(props Properties, cb Callback[CreateInfo]) {
	s := newTCPSocket(t.p.newID(), props)

	t.mu.Lock()
	t.sockets[s.id] = s
	t.mu.Unlock()

	t.p.logger.VerboseMsg("tcp: created socket %d", s.id)
	cb(CreateInfo{SocketID: s.id}, nil)
}

// Connect dials host:port. The callback runs once the connection is
// established or has failed.
func (t *TCP) Connect(id ID, host string, port int, cb Callback[Empty]) {
	op := fmt.Sprintf("connect(tcp, %s)", format.Addr(host, port))

	s := t.get(id)
	if s == nil {
		cb(Empty{}, codeError(op, netcode.InvalidHandle))
		return
	}

	s.mu.Lock()
	if s.conn != nil || s.connecting {
		s.mu.Unlock()
		cb(Empty{}, codeError(op, netcode.SocketIsConnected))
		return
	}
	s.connecting = true
	s.mu.Unlock()

	dial := config.GetTCPDialerFunc(t.p.deps)

	go func() {
		conn, err := resolveAndDial(dial, host, port)

		s.mu.Lock()
		s.connecting = false
		if err == nil && t.get(id) == nil {
			// closed while dialing
			conn.Close()
			err = net.ErrClosed
		}
		if err != nil {
			s.mu.Unlock()
			t.p.logger.VerboseMsg("tcp: socket %d: %s failed: %s", id, op, err)
			cb(Empty{}, opError(op, err))
			return
		}
		s.conn = conn
		s.mu.Unlock()

		t.p.logger.VerboseMsg("tcp: socket %d connected to %s", id, conn.RemoteAddr())
		go t.read(s, conn)
		cb(Empty{}, nil)
	}()
}

func resolveAndDial(dial config.TCPDialerFunc, host string, port int) (net.Conn, error) {
	raddr, err := net.ResolveTCPAddr("tcp", format.Addr(host, port))
	if err != nil {
		return nil, err
	}
	return dial("tcp", nil, raddr)
}

// adopt registers an already established connection, paused.
func (t *TCP) adopt(conn net.Conn) ID {
	s := newTCPSocket(t.p.newID(), Properties{})
	s.conn = conn
	s.paused = true

	t.mu.Lock()
	t.sockets[s.id] = s
	t.mu.Unlock()

	go t.read(s, conn)
	return s.id
}

// read delivers data from conn until it fails or is replaced.
func (t *TCP) read(s *tcpSocket, conn net.Conn) {
	buf := make([]byte, s.bufferSize)

	for {
		if !s.waitReadable(conn) {
			return
		}

		n, err := conn.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			t.p.dispatch(func() {
				t.OnReceive.Emit(ReceiveInfo{SocketID: s.id, Data: data})
			})
		}

		if err != nil {
			if !s.current(conn) {
				return // disconnected or closed by us
			}
			s.setPaused(true)
			code := netcode.FromError(err)
			t.p.logger.VerboseMsg("tcp: socket %d: receive error %s", s.id, netcode.Describe(code))
			t.p.dispatch(func() {
				t.OnReceiveError.Emit(ReceiveErrorInfo{SocketID: s.id, ResultCode: code})
			})
			return
		}
	}
}

// waitReadable blocks while the socket is paused. It returns false once
// conn is no longer the socket's connection.
func (s *tcpSocket) waitReadable(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.paused && s.conn == conn {
		s.cond.Wait()
	}
	return s.conn == conn
}

func (s *tcpSocket) current(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn == conn
}

func (s *tcpSocket) setPaused(paused bool) {
	s.mu.Lock()
	s.paused = paused
	s.mu.Unlock()
	s.cond.Broadcast()
}

// disconnect drops the connection but keeps the socket.
func (s *tcpSocket) disconnect() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	s.cond.Broadcast()

	if conn != nil {
		_ = conn.Close()
	}
}

func (s *tcpSocket) connection() net.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// Send writes data to the connection. Sends on one socket are written in call order.
func (t *TCP) Send(id ID, data []byte, cb Callback[SendInfo]) {
	const op = "send(tcp)"

	s := t.get(id)
	if s == nil {
		cb(SendInfo{ResultCode: netcode.InvalidHandle}, codeError(op, netcode.InvalidHandle))
		return
	}
	conn := s.connection()
	if conn == nil {
		cb(SendInfo{ResultCode: netcode.SocketNotConnected}, codeError(op, netcode.SocketNotConnected))
		return
	}

	s.wmu.Lock()
	n, err := conn.Write(data)
	s.wmu.Unlock()

	if err != nil {
		e := opError(op, err)
		cb(SendInfo{ResultCode: e.Code, BytesSent: n}, e)
		return
	}
	cb(SendInfo{ResultCode: netcode.OK, BytesSent: n}, nil)
}

// SetPaused enables or disables data delivery.
func (t *TCP) SetPaused(id ID, paused bool, cb Callback[Empty]) {
	s := t.get(id)
	if s == nil {
		cb(Empty{}, codeError("setPaused(tcp)", netcode.InvalidHandle))
		return
	}
	s.setPaused(paused)
	cb(Empty{}, nil)
}

// SetKeepAlive enables or disables TCP keep-alive probes.
func (t *TCP) SetKeepAlive(id ID, enable bool, delay time.Duration, cb Callback[Empty]) {
	const op = "setKeepAlive(tcp)"

	tc, err := t.tcpConn(op, id)
	if err != nil {
		cb(Empty{}, err)
		return
	}
	if err := tc.SetKeepAlive(enable); err != nil {
		cb(Empty{}, opError(op, err))
		return
	}
	if enable && delay > 0 {
		if err := tc.SetKeepAlivePeriod(delay); err != nil {
			cb(Empty{}, opError(op, err))
			return
		}
	}
	cb(Empty{}, nil)
}

// SetNoDelay toggles Nagle's algorithm.
func (t *TCP) SetNoDelay(id ID, noDelay bool, cb Callback[Empty]) {
	const op = "setNoDelay(tcp)"

	tc, err := t.tcpConn(op, id)
	if err != nil {
		cb(Empty{}, err)
		return
	}
	if err := tc.SetNoDelay(noDelay); err != nil {
		cb(Empty{}, opError(op, err))
		return
	}
	cb(Empty{}, nil)
}

func (t *TCP) tcpConn(op string, id ID) (*net.TCPConn, error) {
	s := t.get(id)
	if s == nil {
		return nil, codeError(op, netcode.InvalidHandle)
	}
	conn := s.connection()
	if conn == nil {
		return nil, codeError(op, netcode.SocketNotConnected)
	}
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return nil, codeError(op, netcode.NotImplemented)
	}
	return tc, nil
}

// Disconnect closes the connection. The socket stays allocated until Close.
func (t *TCP) Disconnect(id ID, cb Callback[Empty]) {
	s := t.get(id)
	if s == nil {
		cb(Empty{}, codeError("disconnect(tcp)", netcode.InvalidHandle))
		return
	}
	s.disconnect()
	t.p.logger.VerboseMsg("tcp: socket %d disconnected", id)
	cb(Empty{}, nil)
}

// Close disconnects and releases the socket.
func (t *TCP) Close(id ID, cb Callback[Empty]) {
	t.mu.Lock()
	s := t.sockets[id]
	delete(t.sockets, id)
	t.mu.Unlock()

	if s == nil {
		cb(Empty{}, codeError("close(tcp)", netcode.InvalidHandle))
		return
	}
	s.disconnect()
	t.p.logger.VerboseMsg("tcp: socket %d closed", id)
	cb(Empty{}, nil)
}

// GetInfo reports the state of a socket.
func (t *TCP) GetInfo(id ID, cb Callback[Info]) {
	s := t.get(id)
	if s == nil {
		cb(Info{}, codeError("getInfo(tcp)", netcode.InvalidHandle))
		return
	}
	cb(s.info(), nil)
}

// GetSockets reports every open socket of this group.
func (t *TCP) GetSockets(cb Callback[[]Info]) {
	t.mu.Lock()
	sockets := make([]*tcpSocket, 0, len(t.sockets))
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

func (s *tcpSocket) info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := Info{
		SocketID:   s.id,
		Name:       s.name,
		BufferSize: s.bufferSize,
		Connected:  s.conn != nil,
		Paused:     s.paused,
	}
	if s.conn != nil {
		info.LocalAddress, info.LocalPort = splitAddr(s.conn.LocalAddr())
		info.PeerAddress, info.PeerPort = splitAddr(s.conn.RemoteAddr())
	}
	return info
}

func (t *TCP) closeAll() {
	t.mu.Lock()
	sockets := t.sockets
	t.sockets = make(map[ID]*tcpSocket)
	t.mu.Unlock()

	for _, s := range sockets {
		s.disconnect()
	}
}
