package transport

import (
	"dominicbreuker/netterm/pkg/event"
	"dominicbreuker/netterm/pkg/socket"
)

type udp struct {
	api *socket.UDP
}

var _ DatagramTransport = (*udp)(nil)

func (u *udp) Create(props socket.Properties) *Future[socket.CreateInfo] {
	return Wrap1(u.api.Create)(props)
}

func (u *udp) Bind(id socket.ID, host string, port int) *Future[socket.Empty] {
	return Wrap3(u.api.Bind)(id, host, port)
}

func (u *udp) Send(id socket.ID, data []byte, host string, port int) *Future[socket.SendInfo] {
	return Wrap4(u.api.Send)(id, data, host, port)
}

func (u *udp) SetPaused(id socket.ID, paused bool) *Future[socket.Empty] {
	return Wrap2(u.api.SetPaused)(id, paused)
}

func (u *udp) SetBroadcast(id socket.ID, enabled bool) *Future[socket.Empty] {
	return Wrap2(u.api.SetBroadcast)(id, enabled)
}

func (u *udp) JoinGroup(id socket.ID, address string) *Future[socket.Empty] {
	return Wrap2(u.api.JoinGroup)(id, address)
}

func (u *udp) LeaveGroup(id socket.ID, address string) *Future[socket.Empty] {
	return Wrap2(u.api.LeaveGroup)(id, address)
}

func (u *udp) GetJoinedGroups(id socket.ID) *Future[[]string] {
	return Wrap1(u.api.GetJoinedGroups)(id)
}

func (u *udp) SetMulticastTimeToLive(id socket.ID, ttl int) *Future[socket.Empty] {
	return Wrap2(u.api.SetMulticastTimeToLive)(id, ttl)
}

func (u *udp) SetMulticastLoopbackMode(id socket.ID, enabled bool) *Future[socket.Empty] {
	return Wrap2(u.api.SetMulticastLoopbackMode)(id, enabled)
}

func (u *udp) Close(id socket.ID) *Future[socket.Empty] {
	return Wrap1(u.api.Close)(id)
}

func (u *udp) GetInfo(id socket.ID) *Future[socket.Info] {
	return Wrap1(u.api.GetInfo)(id)
}

func (u *udp) GetSockets() *Future[[]socket.Info] {
	return Wrap0(u.api.GetSockets)()
}

func (u *udp) OnReceive(fn func(socket.ReceiveInfo)) *event.Subscription {
	return u.api.OnReceive.Subscribe(fn)
}

func (u *udp) OnReceiveError(fn func(socket.ReceiveErrorInfo)) *event.Subscription {
	return u.api.OnReceiveError.Subscribe(fn)
}
