package server

import (
	"context"
	"dominicbreuker/netterm/mocks"
	"dominicbreuker/netterm/pkg/config"
	"dominicbreuker/netterm/pkg/netcode"
	"dominicbreuker/netterm/pkg/socket"
	"dominicbreuker/netterm/pkg/transport"
	"errors"
	"net"
	"reflect"
	"strconv"
	"testing"
	"time"
)

func newServer(t *testing.T, proto string) (*Server, *mocks.MockTransports) {
	t.Helper()
	m := mocks.NewMockTransports()
	s, err := New(m.Set(), proto, "127.0.0.1", 8080)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return s, m
}

func callStrings(m *mocks.MockTransports) []string {
	var out []string
	for _, c := range m.Calls() {
		out = append(out, c.String())
	}
	return out
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		proto   string
		wantErr bool
	}{
		{"tcp", false},
		{"udp", false},
		{"wss", true},
		{"", true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.proto, func(t *testing.T) {
			t.Parallel()

			s, err := New(mocks.NewMockTransports().Set(), tc.proto, "0.0.0.0", 9000)
			if (err != nil) != tc.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr {
				if !errors.Is(err, config.ErrUnsupportedProtocol) {
					t.Errorf("error %v does not wrap ErrUnsupportedProtocol", err)
				}
				return
			}
			if got, want := s.URI(), tc.proto+"://0.0.0.0:9000"; got != want {
				t.Errorf("URI() = %q, want %q", got, want)
			}
		})
	}
}

func TestListen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		proto string
		want  []string
	}{
		{"tcp", []string{"tcpServer.Create({ 0})", "tcpServer.Listen(1, 127.0.0.1, 8080, 0)"}},
		{"udp", []string{"udp.Create({ 0})", "udp.Bind(1, 127.0.0.1, 8080)"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.proto, func(t *testing.T) {
			t.Parallel()

			s, m := newServer(t, tc.proto)
			if err := s.Listen(context.Background()); err != nil {
				t.Fatalf("Listen() failed: %v", err)
			}
			if got := callStrings(m); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("calls = %v, want %v", got, tc.want)
			}
			if s.Handle() != 1 {
				t.Errorf("Handle() = %d, want 1", s.Handle())
			}
		})
	}
}

func TestListen_ErrorsUnchanged(t *testing.T) {
	t.Parallel()

	for _, op := range []string{"tcpServer.Create", "tcpServer.Listen"} {
		op := op
		t.Run(op, func(t *testing.T) {
			t.Parallel()

			s, m := newServer(t, "tcp")
			want := &socket.Error{Op: op, Code: netcode.AddressInUse}
			m.Fail(op, want)

			if err := s.Listen(context.Background()); err != want {
				t.Fatalf("Listen() error = %v, want %v", err, want)
			}
		})
	}
}

func TestAccept_PausesBeforeCallback(t *testing.T) {
	t.Parallel()

	s, m := newServer(t, "tcp")
	if err := s.Listen(context.Background()); err != nil {
		t.Fatalf("Listen() failed: %v", err)
	}
	m.SetInfo(5, socket.Info{PeerAddress: "10.1.1.1", PeerPort: 5555, Connected: true, Paused: true})

	var got []Accepted
	var callsAtCallback []string
	s.AddAcceptListener(func(a Accepted) {
		got = append(got, a)
		callsAtCallback = callStrings(m)
	})
	m.Reset()

	m.TCPServer.EmitAccept(1, 5)

	if len(got) != 1 {
		t.Fatalf("accept callback invoked %d times, want 1", len(got))
	}
	if got[0].Handle() != 5 || got[0].PeerAddress != "10.1.1.1" || got[0].PeerPort != 5555 {
		t.Errorf("unexpected accepted info: %+v", got[0])
	}

	want := []string{"tcpServer.SetPaused(1, true)", "tcp.GetInfo(5)"}
	if !reflect.DeepEqual(callsAtCallback, want) {
		t.Errorf("calls before callback = %v, want %v", callsAtCallback, want)
	}
	if m.Count("tcpServer.SetPaused") != 1 {
		t.Errorf("server resumed on its own: %v", m.Ops())
	}
}

func TestAccept_StaleListenerIgnored(t *testing.T) {
	t.Parallel()

	s, m := newServer(t, "tcp")
	if err := s.Listen(context.Background()); err != nil {
		t.Fatalf("Listen() failed: %v", err)
	}

	called := 0
	s.AddAcceptListener(func(Accepted) { called++ })
	s.AddErrorListener(func(netcode.Code) { called++ })
	m.Reset()

	m.TCPServer.EmitAccept(99, 5)
	m.TCPServer.EmitAcceptError(99, netcode.Failed)

	if called != 0 {
		t.Errorf("callbacks invoked %d times for another listener", called)
	}
	if calls := m.Calls(); len(calls) != 0 {
		t.Errorf("stale accept made calls: %v", calls)
	}
}

func TestAccept_ChainFailureDropsAccept(t *testing.T) {
	t.Parallel()

	tests := []struct {
		op      string
		wantOps []string
	}{
		{"tcpServer.SetPaused", []string{"tcpServer.SetPaused"}},
		{"tcp.GetInfo", []string{"tcpServer.SetPaused", "tcp.GetInfo"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.op, func(t *testing.T) {
			t.Parallel()

			s, m := newServer(t, "tcp")
			if err := s.Listen(context.Background()); err != nil {
				t.Fatalf("Listen() failed: %v", err)
			}
			called := false
			s.AddAcceptListener(func(Accepted) { called = true })
			m.Reset()
			m.Fail(tc.op, errors.New("boom"))

			m.TCPServer.EmitAccept(1, 5)

			if called {
				t.Error("accept callback invoked despite failure")
			}
			if got := m.Ops(); !reflect.DeepEqual(got, tc.wantOps) {
				t.Errorf("ops = %v, want %v", got, tc.wantOps)
			}
		})
	}
}

func TestAddErrorListener(t *testing.T) {
	t.Parallel()

	s, m := newServer(t, "tcp")
	if err := s.Listen(context.Background()); err != nil {
		t.Fatalf("Listen() failed: %v", err)
	}

	var a, b []netcode.Code
	s.AddErrorListener(func(c netcode.Code) { a = append(a, c) })
	s.AddErrorListener(func(c netcode.Code) { b = append(b, c) })
	m.TCPServer.EmitAcceptError(1, netcode.InsufficientResource)

	if len(a) != 0 || !reflect.DeepEqual(b, []netcode.Code{netcode.InsufficientResource}) {
		t.Errorf("a = %v, b = %v", a, b)
	}
}

func TestUDP_ListenersAreNoOps(t *testing.T) {
	t.Parallel()

	s, m := newServer(t, "udp")
	if err := s.Listen(context.Background()); err != nil {
		t.Fatalf("Listen() failed: %v", err)
	}
	m.Reset()

	s.AddAcceptListener(func(Accepted) { t.Error("accept callback on UDP server") })
	s.AddErrorListener(func(netcode.Code) { t.Error("error callback on UDP server") })

	if calls := m.Calls(); len(calls) != 0 {
		t.Fatalf("registration made calls: %v", calls)
	}
	if n := m.TCPServer.Accept.Subscribed(); n != 0 {
		t.Fatalf("accept event subscribed %d times", n)
	}
	if n := m.TCPServer.AcceptError.Subscribed(); n != 0 {
		t.Fatalf("accept error event subscribed %d times", n)
	}

	s.Disconnect()
	if calls := m.Calls(); len(calls) != 0 {
		t.Fatalf("UDP disconnect made calls: %v", calls)
	}
}

func TestSetPaused(t *testing.T) {
	t.Parallel()

	s, m := newServer(t, "tcp")
	if err := s.Listen(context.Background()); err != nil {
		t.Fatalf("Listen() failed: %v", err)
	}
	m.Reset()

	if err := s.SetPaused(context.Background(), false); err != nil {
		t.Fatalf("SetPaused() failed: %v", err)
	}
	if got := callStrings(m); !reflect.DeepEqual(got, []string{"tcpServer.SetPaused(1, false)"}) {
		t.Errorf("calls = %v", got)
	}
}

func TestDestroy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		proto string
		want  []string
	}{
		{"tcp", []string{"tcpServer.Disconnect(1)", "tcpServer.Close(1)"}},
		{"udp", []string{"udp.Close(1)"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.proto, func(t *testing.T) {
			t.Parallel()

			s, m := newServer(t, tc.proto)
			s.Destroy()
			if calls := m.Calls(); len(calls) != 0 {
				t.Fatalf("unbound Destroy made calls: %v", calls)
			}

			if err := s.Listen(context.Background()); err != nil {
				t.Fatalf("Listen() failed: %v", err)
			}
			s.AddAcceptListener(func(Accepted) {})
			m.Reset()

			s.Destroy()
			if got := callStrings(m); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("calls = %v, want %v", got, tc.want)
			}
			if n := m.TCPServer.Accept.Len(); n != 0 {
				t.Errorf("%d accept subscriptions survived Destroy", n)
			}

			m.Reset()
			s.Destroy()
			if calls := m.Calls(); len(calls) != 0 {
				t.Errorf("second Destroy made calls: %v", calls)
			}
		})
	}
}

func TestAccept_RealPlatform(t *testing.T) {
	t.Parallel()

	p := socket.New(nil, nil)
	defer p.Shutdown()
	set := transport.New(p)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	s, err := New(set, "tcp", "127.0.0.1", 0)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Destroy()
	if err := s.Listen(ctx); err != nil {
		t.Fatalf("Listen() failed: %v", err)
	}

	accepted := make(chan Accepted, 2)
	s.AddAcceptListener(func(a Accepted) { accepted <- a })

	info, err := set.TCPServer.GetInfo(s.Handle()).Wait(ctx)
	if err != nil {
		t.Fatalf("GetInfo() failed: %v", err)
	}
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(info.LocalPort))

	for i := 0; i < 2; i++ {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		defer conn.Close()
	}

	var first Accepted
	select {
	case first = <-accepted:
	case <-ctx.Done():
		t.Fatal("no accept")
	}
	if !first.Paused || !first.Connected || first.PeerAddress != "127.0.0.1" {
		t.Errorf("unexpected accepted info: %+v", first)
	}

	select {
	case a := <-accepted:
		t.Fatalf("accepted %+v while paused", a)
	case <-time.After(150 * time.Millisecond):
	}

	if err := s.SetPaused(ctx, false); err != nil {
		t.Fatalf("SetPaused() failed: %v", err)
	}
	select {
	case second := <-accepted:
		if second.Handle() == first.Handle() {
			t.Errorf("second accept reused handle %d", second.Handle())
		}
	case <-ctx.Done():
		t.Fatal("no accept after resume")
	}
}
