// Package shared provides common CLI flag definitions and utility functions
// used across netterm's command-line interface.
package shared

import (
	"strings"

	"github.com/urfave/cli/v3"
)

const categoryCommon = "common"

// VerboseFlag is the name of the flag to enable verbose logging.
const VerboseFlag = "verbose"

// RawFlag is the name of the flag to send every keystroke immediately.
const RawFlag = "raw"

// LogFileFlag is the name of the flag to specify a transcript file.
const LogFileFlag = "log"

// ClearFlag is the name of the flag to clear the screen before the session.
const ClearFlag = "clear"

// ProfileFlag is the name of the flag to override where the last session
// parameters are stored.
const ProfileFlag = "profile"

// GetBaseDescription returns the base description text for transport
// specifications used in CLI commands.
func GetBaseDescription() string {
	return strings.Join([]string{
		"Specify transport like this: tcp://127.0.0.1:123 (supports tcp|udp)",
		"You can omit the host when listening to bind to all interfaces.",
	}, "\n")
}

// GetArgsUsage returns the arguments usage string for CLI commands.
func GetArgsUsage() string {
	return "transport"
}

// GetCommonFlags returns the flags shared by connect, listen and last.
func GetCommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:     VerboseFlag,
			Aliases:  []string{"v"},
			Usage:    "Verbose logging",
			Category: categoryCommon,
			Value:    false,
			Required: false,
		},
		&cli.BoolFlag{
			Name:     RawFlag,
			Aliases:  []string{"r"},
			Usage:    "Raw terminal mode, send every keystroke immediately",
			Category: categoryCommon,
			Value:    false,
			Required: false,
		},
		&cli.StringFlag{
			Name:     LogFileFlag,
			Aliases:  []string{"l"},
			Usage:    "Append everything sent and received to this file",
			Category: categoryCommon,
			Value:    "",
			Required: false,
		},
		&cli.BoolFlag{
			Name:     ClearFlag,
			Aliases:  []string{"c"},
			Usage:    "Clear the screen before the session starts",
			Category: categoryCommon,
			Value:    false,
			Required: false,
		},
		&cli.StringFlag{
			Name:     ProfileFlag,
			Usage:    "Where the last session parameters are stored, defaults to the user config dir",
			Category: categoryCommon,
			Value:    "",
			Required: false,
		},
	}
}
