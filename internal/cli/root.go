// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/huddle-tui/internal/config"
)

// Build metadata, set from main through ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// options holds the persistent flags shared by every command.
type options struct {
	configPath string
}

// NewRootCommand builds the huddle command tree. Running it without a
// subcommand starts the interactive client.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "huddle",
		Short: "Team chat in the terminal",
		Long: `huddle is a terminal client for workspace and channel based team chat.

Run it without arguments to open the interactive client. The subcommands
cover scripting: listing channels, posting a message, exporting a channel's
history, asking the assistant a one-off question and editing settings.`,
		Version:       versionString(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
	rootCmd.SetVersionTemplate("huddle {{.Version}}\n")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"config file (default $HUDDLE_HOME/config.toml)")

	rootCmd.AddCommand(
		newChannelsCmd(opts),
		newSendCmd(opts),
		newExportCmd(opts),
		newAskCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionString() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate)
}

// =============================================================================
// CONFIG RESOLUTION
// =============================================================================

// loadConfig loads the file named by --config, or the default TOML/JSON file.
// A default file that fails to decode is reported on warn and skipped.
func (o *options) loadConfig(warn io.Writer) (*config.Config, error) {
	if o.configPath != "" {
		return config.LoadFromPath(config.ExpandPath(o.configPath))
	}
	cfg, err := config.Load()
	if cfg == nil {
		return nil, err
	}
	if err != nil {
		fmt.Fprintf(warn, "warning: %v\n", err)
	}
	return cfg, nil
}

// configFile returns the file settings are read from and written to. Without
// --config it is the existing default file, TOML first.
func (o *options) configFile() (string, error) {
	if o.configPath != "" {
		return config.ExpandPath(o.configPath), nil
	}
	tomlPath, err := config.ConfigPathTOML()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath, nil
	}
	jsonPath, err := config.ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return jsonPath, nil
		}
	}
	return tomlPath, nil
}
