package config

import (
	"errors"
	"testing"
)

func TestParseProtocol(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Protocol
		wantErr bool
	}{
		{"tcp", ProtoTCP, false},
		{"udp", ProtoUDP, false},
		{"TCP", 0, true},
		{"ws", 0, true},
		{"", 0, true},
	}

	for _, tc := range tests {
		got, err := ParseProtocol(tc.input)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseProtocol(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrUnsupportedProtocol) {
			t.Errorf("ParseProtocol(%q) error = %v; want ErrUnsupportedProtocol", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("ParseProtocol(%q) = %v; want %v", tc.input, got, tc.want)
		}
	}
}

func TestProtocol_String(t *testing.T) {
	t.Parallel()

	if got := ProtoTCP.String(); got != "tcp" {
		t.Errorf("ProtoTCP.String() = %q", got)
	}
	if got := ProtoUDP.String(); got != "udp" {
		t.Errorf("ProtoUDP.String() = %q", got)
	}
	if got := Protocol(0).String(); got != "Protocol(0)" {
		t.Errorf("Protocol(0).String() = %q", got)
	}
}

func TestShared_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      Shared
		wantErrs int
	}{
		{"valid connect", Shared{Protocol: ProtoTCP, Host: "localhost", Port: 80}, 0},
		{"valid listen without host", Shared{Protocol: ProtoUDP, Port: 9000, Listen: true}, 0},
		{"connect without host", Shared{Protocol: ProtoTCP, Port: 80}, 1},
		{"bad protocol", Shared{Host: "h", Port: 80}, 1},
		{"bad port", Shared{Protocol: ProtoTCP, Host: "h", Port: 70000}, 1},
		{"everything wrong", Shared{}, 3},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if errs := tc.cfg.Validate(); len(errs) != tc.wantErrs {
				t.Errorf("Validate() = %v; want %d errors", errs, tc.wantErrs)
			}
		})
	}
}
