package config

import (
	"testing"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfgs     []ValidatableConfig
		wantErrs int
	}{
		{
			name:     "no configs",
			cfgs:     []ValidatableConfig{},
			wantErrs: 0,
		},
		{
			name: "one valid config",
			cfgs: []ValidatableConfig{
				&Shared{Protocol: ProtoTCP, Host: "localhost", Port: 8080},
			},
			wantErrs: 0,
		},
		{
			name: "one invalid config",
			cfgs: []ValidatableConfig{
				&Shared{Protocol: ProtoTCP, Host: "localhost", Port: 0},
			},
			wantErrs: 1,
		},
		{
			name: "multiple configs with errors",
			cfgs: []ValidatableConfig{
				&Shared{Protocol: ProtoTCP, Port: 0},
				&Shared{Protocol: ProtoUDP, Port: 1, Listen: true},
			},
			wantErrs: 2,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			errs := Validate(tc.cfgs...)
			if len(errs) != tc.wantErrs {
				t.Errorf("Validate() returned %d errors, want %d", len(errs), tc.wantErrs)
			}
		})
	}
}

func TestValidatePort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{"valid port 1", 1, false},
		{"valid port 8080", 8080, false},
		{"valid port 65535", 65535, false},
		{"invalid port 0", 0, true},
		{"invalid port -1", -1, true},
		{"invalid port 65536", 65536, true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := validatePort(tc.port)
			if (err != nil) != tc.wantErr {
				t.Errorf("validatePort(%d) error = %v, wantErr %v", tc.port, err, tc.wantErr)
			}
		})
	}
}

func TestValidateHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		host    string
		listen  bool
		wantErr bool
	}{
		{"name", "example.com", false, false},
		{"ipv6", "::1", false, false},
		{"empty when listening", "", true, false},
		{"empty when connecting", "", false, true},
		{"space", "bad host", false, true},
		{"path", "host/path", true, true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := validateHost(tc.host, tc.listen)
			if (err != nil) != tc.wantErr {
				t.Errorf("validateHost(%q, %t) error = %v, wantErr %v", tc.host, tc.listen, err, tc.wantErr)
			}
		})
	}
}
