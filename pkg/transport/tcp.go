package transport

import (
	"dominicbreuker/netterm/pkg/event"
	"dominicbreuker/netterm/pkg/socket"
	"time"
)

type tcp struct {
	api *socket.TCP
}

var _ StreamTransport = (*tcp)(nil)

func (t *tcp) Create(props socket.Properties) *Future[socket.CreateInfo] {
	return Wrap1(t.api.Create)(props)
}

func (t *tcp) Connect(id socket.ID, host string, port int) *Future[socket.Empty] {
	return Wrap3(t.api.Connect)(id, host, port)
}

func (t *tcp) Send(id socket.ID, data []byte) *Future[socket.SendInfo] {
	return Wrap2(t.api.Send)(id, data)
}

func (t *tcp) SetPaused(id socket.ID, paused bool) *Future[socket.Empty] {
	return Wrap2(t.api.SetPaused)(id, paused)
}

func (t *tcp) SetKeepAlive(id socket.ID, enable bool, delay time.Duration) *Future[socket.Empty] {
	return Wrap3(t.api.SetKeepAlive)(id, enable, delay)
}

func (t *tcp) SetNoDelay(id socket.ID, noDelay bool) *Future[socket.Empty] {
	return Wrap2(t.api.SetNoDelay)(id, noDelay)
}

func (t *tcp) Disconnect(id socket.ID) *Future[socket.Empty] {
	return Wrap1(t.api.Disconnect)(id)
}

func (t *tcp) Close(id socket.ID) *Future[socket.Empty] {
	return Wrap1(t.api.Close)(id)
}

func (t *tcp) GetInfo(id socket.ID) *Future[socket.Info] {
	return Wrap1(t.api.GetInfo)(id)
}

func (t *tcp) GetSockets() *Future[[]socket.Info] {
	return Wrap0(t.api.GetSockets)()
}

func (t *tcp) OnReceive(fn func(socket.ReceiveInfo)) *event.Subscription {
	return t.api.OnReceive.Subscribe(fn)
}

func (t *tcp) OnReceiveError(fn func(socket.ReceiveErrorInfo)) *event.Subscription {
	return t.api.OnReceiveError.Subscribe(fn)
}

type tcpServer struct {
	api *socket.TCPServer
}

var _ ListenerTransport = (*tcpServer)(nil)

func (t *tcpServer) Create(props socket.Properties) *Future[socket.CreateInfo] {
	return Wrap1(t.api.Create)(props)
}

func (t *tcpServer) Listen(id socket.ID, host string, port int, backlog int) *Future[socket.Empty] {
	return Wrap4(t.api.Listen)(id, host, port, backlog)
}

func (t *tcpServer) SetPaused(id socket.ID, paused bool) *Future[socket.Empty] {
	return Wrap2(t.api.SetPaused)(id, paused)
}

func (t *tcpServer) Disconnect(id socket.ID) *Future[socket.Empty] {
	return Wrap1(t.api.Disconnect)(id)
}

func (t *tcpServer) Close(id socket.ID) *Future[socket.Empty] {
	return Wrap1(t.api.Close)(id)
}

func (t *tcpServer) GetInfo(id socket.ID) *Future[socket.Info] {
	return Wrap1(t.api.GetInfo)(id)
}

func (t *tcpServer) GetSockets() *Future[[]socket.Info] {
	return Wrap0(t.api.GetSockets)()
}

func (t *tcpServer) OnAccept(fn func(socket.AcceptInfo)) *event.Subscription {
	return t.api.OnAccept.Subscribe(fn)
}

func (t *tcpServer) OnAcceptError(fn func(socket.AcceptErrorInfo)) *event.Subscription {
	return t.api.OnAcceptError.Subscribe(fn)
}
