package shared

import (
	"context"
	"dominicbreuker/netterm/pkg/config"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"
)

func TestGetBaseDescription(t *testing.T) {
	t.Parallel()

	desc := GetBaseDescription()

	for _, want := range []string{"tcp", "udp"} {
		if !strings.Contains(desc, want) {
			t.Errorf("description should mention %s", want)
		}
	}
	if strings.Contains(desc, "ws") {
		t.Error("description should not mention websockets")
	}
}

func TestGetArgsUsage(t *testing.T) {
	t.Parallel()

	if usage := GetArgsUsage(); !strings.Contains(usage, "transport") {
		t.Errorf("usage = %q, should mention transport", usage)
	}
}

func TestGetCommonFlags(t *testing.T) {
	t.Parallel()

	flagNames := make(map[string][]string)
	for _, flag := range GetCommonFlags() {
		if names := flag.Names(); len(names) > 0 {
			flagNames[names[0]] = names[1:]
		}
	}

	tests := []struct {
		name  string
		alias string
	}{
		{VerboseFlag, "v"},
		{RawFlag, "r"},
		{LogFileFlag, "l"},
		{ClearFlag, "c"},
		{ProfileFlag, ""},
	}

	for _, tt := range tests {
		aliases, ok := flagNames[tt.name]
		if !ok {
			t.Errorf("expected flag %q not found", tt.name)
			continue
		}
		if tt.alias != "" && (len(aliases) != 1 || aliases[0] != tt.alias) {
			t.Errorf("flag %q aliases = %v, want [%s]", tt.name, aliases, tt.alias)
		}
	}
}

// runWith parses args with the common flags and passes the result to fn.
func runWith(t *testing.T, args []string, fn func(ctx context.Context, cmd *cli.Command) error) error {
	t.Helper()

	cmd := &cli.Command{
		Name:   "test",
		Flags:  GetCommonFlags(),
		Action: fn,
	}
	return cmd.Run(context.Background(), append([]string{"test"}, args...))
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	var cfg *config.Shared
	err := runWith(t, []string{"-v", "-r", "-c", "-l", "session.log"}, func(ctx context.Context, cmd *cli.Command) error {
		cfg = NewConfig(cmd, config.ProtoUDP, "10.0.0.1", 4000, true)
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if cfg.Protocol != config.ProtoUDP || cfg.Host != "10.0.0.1" || cfg.Port != 4000 || !cfg.Listen {
		t.Errorf("endpoint = %s %s %d listen=%t", cfg.Protocol, cfg.Host, cfg.Port, cfg.Listen)
	}
	if !cfg.Verbose || !cfg.Raw || !cfg.Clear || cfg.LogFile != "session.log" {
		t.Errorf("flags = verbose=%t raw=%t clear=%t log=%q", cfg.Verbose, cfg.Raw, cfg.Clear, cfg.LogFile)
	}
	if cfg.Logger == nil || !cfg.Logger.Verbose() {
		t.Error("logger should be verbose")
	}
}

func TestStart(t *testing.T) {
	t.Parallel()

	t.Run("valid config is saved and run", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "profile.yaml")
		var ran *config.Shared

		err := runWith(t, []string{"--profile", path}, func(ctx context.Context, cmd *cli.Command) error {
			cfg := NewConfig(cmd, config.ProtoTCP, "example.com", 8080, false)
			return Start(ctx, cmd, cfg, func(ctx context.Context, cfg *config.Shared) error {
				ran = cfg
				return nil
			})
		})
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if ran == nil || ran.Host != "example.com" {
			t.Fatalf("session not run with config: %+v", ran)
		}

		p, err := config.LoadProfile(path)
		if err != nil {
			t.Fatalf("LoadProfile() error = %v", err)
		}
		want := config.Profile{Host: "example.com", Port: 8080, Proto: "tcp", Listen: false, Clear: false}
		if p != want {
			t.Errorf("saved profile = %+v, want %+v", p, want)
		}
	})

	t.Run("invalid config is neither saved nor run", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "profile.yaml")
		ran := false

		err := runWith(t, []string{"--profile", path}, func(ctx context.Context, cmd *cli.Command) error {
			cfg := NewConfig(cmd, config.ProtoTCP, "", 8080, false)
			return Start(ctx, cmd, cfg, func(context.Context, *config.Shared) error {
				ran = true
				return nil
			})
		})
		if err == nil {
			t.Fatal("Start() should fail without a host")
		}
		if ran {
			t.Error("session should not run")
		}

		p, _ := config.LoadProfile(path)
		if p != config.DefaultProfile() {
			t.Errorf("profile should not be saved, got %+v", p)
		}
	})
}

func TestSetupSignalHandling_Stop(t *testing.T) {
	cancelled := false
	stop := SetupSignalHandling(func() { cancelled = true })
	stop()

	if cancelled {
		t.Error("stopping should not cancel")
	}
}
