package config

import (
	"errors"
	"fmt"
	"strings"
)

// ValidatableConfig is implemented by configurations that can check themselves.
type ValidatableConfig interface {
	Validate() []error
}

// Validate collects the errors of all cfgs, in order.
func Validate(cfgs ...ValidatableConfig) []error {
	var out []error
	for _, cfg := range cfgs {
		out = append(out, cfg.Validate()...)
	}
	return out
}

func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%d not in [1, 65535]", port)
	}
	return nil
}

// validateHost accepts an empty host only when listening, where it
// means all interfaces.
func validateHost(host string, listen bool) error {
	if host == "" {
		if listen {
			return nil
		}
		return errors.New("required when connecting")
	}
	if strings.ContainsAny(host, " \t\r\n/") {
		return fmt.Errorf("%q is not a host name or address", host)
	}
	return nil
}
