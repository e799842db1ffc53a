// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/huddle-tui/internal/config"
	"github.com/jeranaias/huddle-tui/internal/ui/styles"
)

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and edit settings",
		Long: `Show and edit settings. Keys use dot notation matching the file's
sections, for example ui.theme or assistant.model. Edits made while the
client is running are picked up without a restart for the ui section.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := opts.configFile()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "Print every setting",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := opts.loadConfig(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				for _, key := range config.GetAllKeys() {
					v, err := cfg.Get(key)
					if err != nil {
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, v)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one setting",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := opts.loadConfig(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				v, err := cfg.Get(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change one setting and save the file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigSet(cmd, opts, args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write a config file with default settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigInit(cmd, opts)
			},
		},
	)
	return cmd
}

func runConfigSet(cmd *cobra.Command, opts *options, key, value string) error {
	configureColor(cmd.OutOrStdout())
	cfg, err := opts.loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	path, err := opts.configFile()
	if err != nil {
		return err
	}
	if err := save(cfg, path); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), styles.RenderSuccess(fmt.Sprintf("%s = %s", key, value)))
	return nil
}

func runConfigInit(cmd *cobra.Command, opts *options) error {
	configureColor(cmd.OutOrStdout())
	path, err := opts.configFile()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := save(config.Default(), path); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), styles.RenderSuccess("Wrote "+path))
	return nil
}

// save writes cfg in the format the path's extension names.
func save(cfg *config.Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		return config.SaveJSON(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}
