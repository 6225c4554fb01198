package socket

import (
	"dominicbreuker/netterm/pkg/config"
	"dominicbreuker/netterm/pkg/event"
	"dominicbreuker/netterm/pkg/format"
	"dominicbreuker/netterm/pkg/netcode"
	"fmt"
	"net"
	"slices"
	"sync"
	"syscall"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// UDP is the API group for datagram sockets. A socket receives nothing
// until it is bound; sending always names the destination.
type UDP struct {
	OnReceive      event.Signal[ReceiveInfo]
	OnReceiveError event.Signal[ReceiveErrorInfo]

	p *Platform

	mu      sync.Mutex
	sockets map[ID]*udpSocket
}

type udpSocket struct {
	id         ID
	name       string
	bufferSize int

	mu     sync.Mutex
	cond   *sync.Cond
	pc     net.PacketConn
	paused bool
	groups []string
}

func (u *UDP) get(id ID) *udpSocket {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.sockets[id]
}

// Create allocates a new, unbound socket.
func (u *UDP) Create(props Properties, cb Callback[CreateInfo]) {
	s := &udpSocket{id: u.p.newID(), name: props.Name, bufferSize: bufferSize(props)}
	s.cond = sync.NewCond(&s.mu)

	u.mu.Lock()
	u.sockets[s.id] = s
	u.mu.Unlock()

	u.p.logger.VerboseMsg("udp: created socket %d", s.id)
	cb(CreateInfo{SocketID: s.id}, nil)
}

// Bind binds the socket to host:port and starts receiving. Port 0 picks an
// ephemeral port, an empty host or 0.0.0.0 binds all interfaces.
func (u *UDP) Bind(id ID, host string, port int, cb Callback[Empty]) {
	op := fmt.Sprintf("bind(udp, %s)", format.Addr(host, port))

	s := u.get(id)
	if s == nil {
		cb(Empty{}, codeError(op, netcode.InvalidHandle))
		return
	}

	laddr, err := net.ResolveUDPAddr("udp", format.Addr(host, port))
	if err != nil {
		cb(Empty{}, opError(op, err))
		return
	}

	s.mu.Lock()
	if s.pc != nil {
		s.mu.Unlock()
		cb(Empty{}, codeError(op, netcode.SocketIsConnected))
		return
	}

	listen := config.GetUDPListenerFunc(u.p.deps)
	pc, err := listen("udp", laddr)
	if err != nil {
		s.mu.Unlock()
		cb(Empty{}, opError(op, err))
		return
	}
	s.pc = pc
	s.mu.Unlock()

	u.p.logger.VerboseMsg("udp: socket %d bound to %s", id, pc.LocalAddr())
	go u.read(s, pc)
	cb(Empty{}, nil)
}

func (u *UDP) read(s *udpSocket, pc net.PacketConn) {
	buf := make([]byte, s.bufferSize)

	for {
		if !s.waitReadable(pc) {
			return
		}

		n, from, err := pc.ReadFrom(buf)
		if err != nil {
			if !s.current(pc) {
				return
			}
			s.setPaused(true)
			code := netcode.FromError(err)
			u.p.logger.VerboseMsg("udp: socket %d: receive error %s", s.id, netcode.Describe(code))
			u.p.dispatch(func() {
				u.OnReceiveError.Emit(ReceiveErrorInfo{SocketID: s.id, ResultCode: code})
			})
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		addr, port := splitAddr(from)
		u.p.dispatch(func() {
			u.OnReceive.Emit(ReceiveInfo{SocketID: s.id, Data: data, RemoteAddress: addr, RemotePort: port})
		})
	}
}

func (s *udpSocket) waitReadable(pc net.PacketConn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.paused && s.pc == pc {
		s.cond.Wait()
	}
	return s.pc == pc
}

func (s *udpSocket) current(pc net.PacketConn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pc == pc
}

func (s *udpSocket) setPaused(paused bool) {
	s.mu.Lock()
	s.paused = paused
	s.mu.Unlock()
	s.cond.Broadcast()
}

func (s *udpSocket) conn() net.PacketConn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pc
}

func (s *udpSocket) close() {
	s.mu.Lock()
	pc := s.pc
	s.pc = nil
	s.groups = nil
	s.mu.Unlock()
	s.cond.Broadcast()

	if pc != nil {
		_ = pc.Close()
	}
}

// Send writes one datagram to host:port.
func (u *UDP) Send(id ID, data []byte, host string, port int, cb Callback[SendInfo]) {
	op := fmt.Sprintf("send(udp, %s)", format.Addr(host, port))

	pc, err := u.bound(op, id)
	if err != nil {
		cb(SendInfo{ResultCode: err.Code}, err)
		return
	}

	raddr, rerr := net.ResolveUDPAddr("udp", format.Addr(host, port))
	if rerr != nil {
		e := opError(op, rerr)
		cb(SendInfo{ResultCode: e.Code}, e)
		return
	}

	n, werr := pc.WriteTo(data, raddr)
	if werr != nil {
		e := opError(op, werr)
		cb(SendInfo{ResultCode: e.Code, BytesSent: n}, e)
		return
	}
	cb(SendInfo{ResultCode: netcode.OK, BytesSent: n}, nil)
}

func (u *UDP) bound(op string, id ID) (net.PacketConn, *Error) {
	s := u.get(id)
	if s == nil {
		return nil, codeError(op, netcode.InvalidHandle)
	}
	pc := s.conn()
	if pc == nil {
		return nil, codeError(op, netcode.SocketNotConnected)
	}
	return pc, nil
}

// SetPaused enables or disables datagram delivery.
func (u *UDP) SetPaused(id ID, paused bool, cb Callback[Empty]) {
	s := u.get(id)
	if s == nil {
		cb(Empty{}, codeError("setPaused(udp)", netcode.InvalidHandle))
		return
	}
	s.setPaused(paused)
	cb(Empty{}, nil)
}

// SetBroadcast allows or forbids sending to broadcast addresses.
func (u *UDP) SetBroadcast(id ID, enabled bool, cb Callback[Empty]) {
	const op = "setBroadcast(udp)"

	pc, err := u.bound(op, id)
	if err != nil {
		cb(Empty{}, err)
		return
	}

	sc, ok := pc.(syscall.Conn)
	if !ok {
		cb(Empty{}, codeError(op, netcode.NotImplemented))
		return
	}
	raw, rerr := sc.SyscallConn()
	if rerr != nil {
		cb(Empty{}, opError(op, rerr))
		return
	}

	var serr error
	if cerr := raw.Control(func(fd uintptr) { serr = setBroadcast(fd, enabled) }); cerr != nil {
		serr = cerr
	}
	if serr != nil {
		cb(Empty{}, opError(op, serr))
		return
	}
	cb(Empty{}, nil)
}

// JoinGroup joins the multicast group address on the default interface.
func (u *UDP) JoinGroup(id ID, address string, cb Callback[Empty]) {
	op := fmt.Sprintf("joinGroup(udp, %s)", address)
	u.membership(op, id, address, true, cb)
}

// LeaveGroup leaves a multicast group joined with JoinGroup.
func (u *UDP) LeaveGroup(id ID, address string, cb Callback[Empty]) {
	op := fmt.Sprintf("leaveGroup(udp, %s)", address)
	u.membership(op, id, address, false, cb)
}

func (u *UDP) membership(op string, id ID, address string, join bool, cb Callback[Empty]) {
	pc, err := u.bound(op, id)
	if err != nil {
		cb(Empty{}, err)
		return
	}

	ip := net.ParseIP(address)
	if ip == nil || !ip.IsMulticast() {
		cb(Empty{}, codeError(op, netcode.AddressInvalid))
		return
	}
	group := &net.UDPAddr{IP: ip}

	var merr error
	switch {
	case ip.To4() != nil && join:
		merr = ipv4.NewPacketConn(pc).JoinGroup(nil, group)
	case ip.To4() != nil:
		merr = ipv4.NewPacketConn(pc).LeaveGroup(nil, group)
	case join:
		merr = ipv6.NewPacketConn(pc).JoinGroup(nil, group)
	default:
		merr = ipv6.NewPacketConn(pc).LeaveGroup(nil, group)
	}
	if merr != nil {
		cb(Empty{}, opError(op, merr))
		return
	}

	s := u.get(id)
	if s != nil {
		s.mu.Lock()
		if join {
			if !slices.Contains(s.groups, address) {
				s.groups = append(s.groups, address)
			}
		} else {
			s.groups = slices.DeleteFunc(s.groups, func(g string) bool { return g == address })
		}
		s.mu.Unlock()
	}
	cb(Empty{}, nil)
}

// GetJoinedGroups lists the multicast groups joined by the socket.
func (u *UDP) GetJoinedGroups(id ID, cb Callback[[]string]) {
	s := u.get(id)
	if s == nil {
		cb(nil, codeError("getJoinedGroups(udp)", netcode.InvalidHandle))
		return
	}

	s.mu.Lock()
	groups := slices.Clone(s.groups)
	s.mu.Unlock()
	cb(groups, nil)
}

// SetMulticastTimeToLive sets the TTL (hop limit for IPv6) of outgoing
// multicast datagrams.
func (u *UDP) SetMulticastTimeToLive(id ID, ttl int, cb Callback[Empty]) {
	const op = "setMulticastTimeToLive(udp)"

	pc, err := u.bound(op, id)
	if err != nil {
		cb(Empty{}, err)
		return
	}

	var serr error
	if isIPv4(pc) {
		serr = ipv4.NewPacketConn(pc).SetMulticastTTL(ttl)
	} else {
		serr = ipv6.NewPacketConn(pc).SetMulticastHopLimit(ttl)
	}
	if serr != nil {
		cb(Empty{}, opError(op, serr))
		return
	}
	cb(Empty{}, nil)
}

// SetMulticastLoopbackMode controls whether the host receives its own
// multicast datagrams.
func (u *UDP) SetMulticastLoopbackMode(id ID, enabled bool, cb Callback[Empty]) {
	const op = "setMulticastLoopbackMode(udp)"

	pc, err := u.bound(op, id)
	if err != nil {
		cb(Empty{}, err)
		return
	}

	var serr error
	if isIPv4(pc) {
		serr = ipv4.NewPacketConn(pc).SetMulticastLoopback(enabled)
	} else {
		serr = ipv6.NewPacketConn(pc).SetMulticastLoopback(enabled)
	}
	if serr != nil {
		cb(Empty{}, opError(op, serr))
		return
	}
	cb(Empty{}, nil)
}

func isIPv4(pc net.PacketConn) bool {
	addr, ok := pc.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP == nil || addr.IP.IsUnspecified() {
		return true
	}
	return addr.IP.To4() != nil
}

// Close releases the socket.
func (u *UDP) Close(id ID, cb Callback[Empty]) {
	u.mu.Lock()
	s := u.sockets[id]
	delete(u.sockets, id)
	u.mu.Unlock()

	if s == nil {
		cb(Empty{}, codeError("close(udp)", netcode.InvalidHandle))
		return
	}
	s.close()
	u.p.logger.VerboseMsg("udp: socket %d closed", id)
	cb(Empty{}, nil)
}

// GetInfo reports the state of a socket.
func (u *UDP) GetInfo(id ID, cb Callback[Info]) {
	s := u.get(id)
	if s == nil {
		cb(Info{}, codeError("getInfo(udp)", netcode.InvalidHandle))
		return
	}
	cb(s.info(), nil)
}

// GetSockets reports every open socket of this group.
func (u *UDP) GetSockets(cb Callback[[]Info]) {
	u.mu.Lock()
	sockets := make([]*udpSocket, 0, len(u.sockets))
	for _, s := range u.sockets {
		sockets = append(sockets, s)
	}
	u.mu.Unlock()

	out := make([]Info, 0, len(sockets))
	for _, s := range sockets {
		out = append(out, s.info())
	}
	sortInfos(out)
	cb(out, nil)
}

func (s *udpSocket) info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := Info{SocketID: s.id, Name: s.name, BufferSize: s.bufferSize, Paused: s.paused}
	if s.pc != nil {
		info.LocalAddress, info.LocalPort = splitAddr(s.pc.LocalAddr())
	}
	return info
}

func (u *UDP) closeAll() {
	u.mu.Lock()
	sockets := u.sockets
	u.sockets = make(map[ID]*udpSocket)
	u.mu.Unlock()

	for _, s := range sockets {
		s.close()
	}
}
