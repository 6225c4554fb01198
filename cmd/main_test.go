package main

import (
	"testing"
)

func TestNewApp(t *testing.T) {
	t.Parallel()

	app := newApp()
	if app.Name != "netterm" {
		t.Errorf("app name = %q; want %q", app.Name, "netterm")
	}

	want := map[string]bool{"connect": false, "listen": false, "last": false, "interfaces": false, "version": false}
	for _, cmd := range app.Commands {
		if _, ok := want[cmd.Name]; !ok {
			t.Errorf("unexpected command %q", cmd.Name)
			continue
		}
		want[cmd.Name] = true
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing expected command: %q", name)
		}
	}
}
