package interfaces

import (
	"bytes"
	"context"
	"dominicbreuker/netterm/mocks"
	"dominicbreuker/netterm/pkg/transport"
	"errors"
	"strings"
	"testing"
)

func TestGetCommand(t *testing.T) {
	t.Parallel()

	cmd := GetCommand()

	if cmd.Name != "interfaces" {
		t.Errorf("command name = %q; want %q", cmd.Name, "interfaces")
	}
	if cmd.Action == nil {
		t.Fatal("command action should not be nil")
	}
}

func TestInterfacesCommand(t *testing.T) {
	t.Parallel()

	m := mocks.NewMockTransports()
	closed := false
	var out bytes.Buffer

	cmd := newCommand(func() (transport.NetworkLister, func()) {
		return m, func() { closed = true }
	}, &out)

	if err := cmd.Run(context.Background(), []string{"interfaces"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("output = %q, want 3 lines", out.String())
	}
	wants := []string{"localhost IPv4 (lo)", "localhost IPv6 (lo)", "192.0.2.10 (eth0)"}
	for i, want := range wants {
		if !strings.HasSuffix(lines[i], want) {
			t.Errorf("line %d = %q, want suffix %q", i, lines[i], want)
		}
	}
	if !closed {
		t.Error("platform not shut down")
	}
}

func TestInterfacesCommand_Error(t *testing.T) {
	t.Parallel()

	m := mocks.NewMockTransports()
	boom := errors.New("boom")
	m.Fail("network.GetNetworkList", boom)

	cmd := newCommand(func() (transport.NetworkLister, func()) {
		return m, func() {}
	}, &bytes.Buffer{})

	if err := cmd.Run(context.Background(), []string{"interfaces"}); !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want %v", err, boom)
	}
}

func TestInterfacesCommand_RealPlatform(t *testing.T) {
	t.Parallel()

	cmd := GetCommand()
	if err := cmd.Run(context.Background(), []string{"interfaces"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}
