package shared

import (
	"dominicbreuker/netterm/pkg/config"
	"testing"
)

func TestParseTransport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		protocol config.Protocol
		host     string
		port     int
		err      bool
	}{
		{input: "tcp://localhost:123", protocol: config.ProtoTCP, host: "localhost", port: 123, err: false},
		{input: "udp://localhost:123", protocol: config.ProtoUDP, host: "localhost", port: 123, err: false},
		{input: "tcp://:123", protocol: config.ProtoTCP, host: "", port: 123, err: false},
		{input: "tcp://*:123", protocol: config.ProtoTCP, host: "", port: 123, err: false},
		{input: "udp://192.168.1.100:12345", protocol: config.ProtoUDP, host: "192.168.1.100", port: 12345, err: false},
		{input: "udp://*:12345", protocol: config.ProtoUDP, host: "", port: 12345, err: false},

		// error cases, protocols other than tcp and udp
		{input: "ws://localhost:123", err: true},
		{input: "wss://localhost:123", err: true},
		{input: "TCP://localhost:123", err: true},
		{input: "foobar://localhost:123", err: true},

		// error cases, bad ports
		{input: "tcp://localhost:0", err: true},
		{input: "tcp://localhost:-1", err: true},
		{input: "tcp://localhost:65536", err: true},
		{input: "tcp://localhost:999999999999999999", err: true},
		{input: "tcp://localhost:eighty", err: true},

		// error cases, bad format
		{input: "tcp://localhost:123:foobar", err: true},
		{input: "://localhost:123", err: true},
		{input: "localhost:123", err: true},
		{input: "tcp://localhost:", err: true},

		{input: "foobar", err: true},
		{input: "", err: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			protocol, host, port, err := ParseTransport(tt.input)
			if (err != nil) != tt.err {
				t.Fatalf("ParseTransport(%q) err = %v, want err=%t", tt.input, err, tt.err)
			}
			if tt.err {
				return
			}

			if protocol != tt.protocol || host != tt.host || port != tt.port {
				t.Errorf("ParseTransport(%q) = %s %q %d, want %s %q %d", tt.input, protocol, host, port, tt.protocol, tt.host, tt.port)
			}
		})
	}
}
