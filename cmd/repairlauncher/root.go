// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"repairlauncher/internal/app"
	"repairlauncher/internal/config"
	"repairlauncher/internal/diag"
	"repairlauncher/internal/fsys"
	"repairlauncher/internal/launch"
	"repairlauncher/internal/notify"
	"repairlauncher/internal/paths"
	"repairlauncher/internal/proc"
	"repairlauncher/internal/registration"
)

var version = "dev"

type rootOptions struct {
	dataDir string
	debug   bool
}

// newRootCommand builds the command tree. The root command is the URL
// handler itself; everything else is a maintenance subcommand.
func newRootCommand(notifier notify.Notifier) *cobra.Command {
	cfg := config.DefaultConfig()
	opts := &rootOptions{dataDir: paths.DataDir(cfg.ProductName)}

	cmd := &cobra.Command{
		Use:           "repairlauncher [URL]",
		Short:         "Start repair tools from " + cfg.Scheme + ":// links",
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			layout := paths.NewLayout(opts.dataDir, cfg.LogFileName, cfg.CacheDirName)
			sink := diag.NewSink(layout.LogFile)
			strategy := launch.NewStrategy(cfg, fsys.New(), proc.New(), sink, layout.CacheDir)
			logger := initLogger(cmd, opts.debug)

			a := app.New(cfg, strategy, sink, notifier, app.WithDebugLogger(logger))
			if err := a.Run(cmd.Context(), args); err != nil {
				logger.Debug().Str("log", sink.Path()).Msg("failure recorded")
			}
			// Failures are logged and shown; the exit status stays normal.
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", opts.dataDir, "directory holding the log file and cache")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "write stage events to stderr")
	_ = cmd.PersistentFlags().MarkHidden("data-dir")
	_ = cmd.PersistentFlags().MarkHidden("debug")

	cmd.AddCommand(
		newRegisterCommand(cfg),
		newUnregisterCommand(cfg),
		newConfigCommand(cfg),
		newVersionCommand(),
	)
	return cmd
}

func initLogger(cmd *cobra.Command, debug bool) zerolog.Logger {
	if !debug {
		return zerolog.Nop()
	}
	out := zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}
	return zerolog.New(out).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

func handlerFor(cfg *config.Config, user bool) (registration.Handler, error) {
	exe, err := os.Executable()
	if err != nil {
		return registration.Handler{}, fmt.Errorf("locate executable: %w", err)
	}
	h := registration.Handler{
		Scheme:      cfg.Scheme,
		Description: "RepairTool Protocol",
		Executable:  exe,
	}
	if user {
		h.Scope = registration.ScopeUser
	}
	return h, nil
}

func newRegisterCommand(cfg *config.Config) *cobra.Command {
	var user bool
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register this executable as the " + cfg.Scheme + ":// handler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := handlerFor(cfg, user)
			if err != nil {
				return err
			}
			if err := registration.Register(h); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s:// for %s scope: %s\n", h.Scheme, h.Scope, h.CommandValue())
			return nil
		},
	}
	cmd.Flags().BoolVar(&user, "user", false, "register for the current user only")
	return cmd
}

func newUnregisterCommand(cfg *config.Config) *cobra.Command {
	var user bool
	cmd := &cobra.Command{
		Use:   "unregister",
		Short: "Remove the " + cfg.Scheme + ":// handler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h := registration.Handler{Scheme: cfg.Scheme}
			if user {
				h.Scope = registration.ScopeUser
			}
			if err := registration.Unregister(h); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "unregistered %s://\n", h.Scheme)
			return nil
		},
	}
	cmd.Flags().BoolVar(&user, "user", false, "remove the current user registration")
	return cmd
}

func newConfigCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the built-in policy and any warnings about it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := cfg.JSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), data)
			for _, w := range cfg.Validate() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "repairlauncher %s\n", version)
		},
	}
}
