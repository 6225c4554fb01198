package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Profile is the set of connection parameters remembered between runs.
type Profile struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Proto  string `yaml:"proto"`
	Listen bool   `yaml:"listen"`
	Clear  bool   `yaml:"clear"`
}

// DefaultProfile is used when nothing was saved yet.
func DefaultProfile() Profile {
	return Profile{
		Host:   "localhost",
		Port:   80,
		Proto:  "tcp",
		Listen: false,
		Clear:  true,
	}
}

// ProfilePath returns the default location of the saved profile.
func ProfilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("os.UserConfigDir(): %w", err)
	}

	return filepath.Join(dir, "netterm", "profile.yaml"), nil
}

// LoadProfile reads the profile at path. Keys missing from the file keep
// their default values, and a missing file yields DefaultProfile.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return p, nil
		}
		return p, fmt.Errorf("reading profile: %w", err)
	}

	if err := yaml.Unmarshal(data, &p); err != nil {
		return DefaultProfile(), fmt.Errorf("parsing profile %s: %w", path, err)
	}

	return p, nil
}

// SaveProfile writes p to path, creating parent directories.
func SaveProfile(path string, p Profile) error {
	data, err := yaml.Marshal(&p)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating profile dir: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}

	return nil
}

// ProfileOf captures the parameters of cfg worth remembering.
func ProfileOf(cfg *Shared) Profile {
	return Profile{
		Host:   cfg.Host,
		Port:   cfg.Port,
		Proto:  cfg.Protocol.String(),
		Listen: cfg.Listen,
		Clear:  cfg.Clear,
	}
}

// Apply copies the profile into cfg.
func (p Profile) Apply(cfg *Shared) error {
	proto, err := ParseProtocol(p.Proto)
	if err != nil {
		return fmt.Errorf("profile: %w", err)
	}

	cfg.Protocol = proto
	cfg.Host = p.Host
	cfg.Port = p.Port
	cfg.Listen = p.Listen
	cfg.Clear = p.Clear
	return nil
}
