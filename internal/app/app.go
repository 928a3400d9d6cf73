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

// Package app runs one protocol invocation end to end.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"

	"repairlauncher/internal/config"
	"repairlauncher/internal/diag"
	apperrors "repairlauncher/internal/errors"
	"repairlauncher/internal/launch"
	"repairlauncher/internal/notify"
	"repairlauncher/internal/security"
	"repairlauncher/internal/uri"
)

// Launcher is the part of the launch strategy the app drives.
type Launcher interface {
	Launch(ctx context.Context, target security.Target) (launch.Result, error)
}

// App wires the pipeline: normalize, validate, launch, report.
type App struct {
	cfg       *config.Config
	validator *security.Validator
	launcher  Launcher
	log       diag.Recorder
	notifier  notify.Notifier
	debug     zerolog.Logger
}

// Option customizes an App.
type Option func(*App)

// WithDebugLogger sends structured stage events to logger.
func WithDebugLogger(logger zerolog.Logger) Option {
	return func(a *App) {
		a.debug = logger
	}
}

// New builds an App. Nothing is touched on disk until Run.
func New(cfg *config.Config, launcher Launcher, log diag.Recorder, notifier notify.Notifier, opts ...Option) *App {
	a := &App{
		cfg:       cfg,
		validator: security.NewValidator(cfg),
		launcher:  launcher,
		log:       log,
		notifier:  notifier,
		debug:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run handles one invocation. Every failure is logged and shown to the user
// here; the returned error is informational and must not become an exit code.
func (a *App) Run(ctx context.Context, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.New(apperrors.CodeInternal, fmt.Sprintf("unexpected failure: %v", r))
			a.report(err, string(debug.Stack()))
		}
	}()

	result, err := a.run(ctx, args)
	if err != nil {
		a.report(err, "")
		return err
	}
	a.debug.Info().Str("tier", result.Tier.String()).Str("path", result.Path).Msg("target started")
	return nil
}

func (a *App) run(ctx context.Context, args []string) (launch.Result, error) {
	_ = a.log.Append("==== start ====")
	for _, w := range a.cfg.Validate() {
		_ = a.log.Append("config warning: " + w.String())
	}

	if len(args) == 0 {
		return launch.Result{}, apperrors.New(apperrors.CodeMissingArgument, "No URL argument.")
	}
	req := uri.Request{Raw: args[0]}
	_ = a.log.Append("raw=" + req.Raw)

	unc, err := uri.Normalize(req, a.cfg.Scheme)
	if err != nil {
		return launch.Result{}, err
	}
	a.debug.Debug().Str("unc", unc).Msg("normalized")

	target, err := a.validator.Resolve(unc)
	if err != nil {
		return launch.Result{}, err
	}
	_ = a.log.Append(fmt.Sprintf("target=%s host=%s ext=%s", target.UNCPath, target.Host, target.Extension))
	a.debug.Debug().Str("class", target.Class.String()).Str("dir", target.WorkingDirectory).Msg("validated")

	return a.launcher.Launch(ctx, target)
}

// report writes the full failure to the log and shows a one-line summary.
// Both effects are best-effort.
func (a *App) report(err error, stack string) {
	detail := Describe(err)
	if stack != "" {
		detail += "\n" + strings.TrimRight(stack, "\n")
	}
	_ = a.log.Append("fatal: " + detail)
	code := apperrors.CodeOf(err)
	a.debug.Error().Err(err).Str("code", string(code)).Bool("fatal", code.Fatal()).Msg("invocation failed")

	if nerr := a.notify("Start failed: " + err.Error()); nerr != nil {
		a.debug.Debug().Err(nerr).Msg("notification not shown")
	}
}

func (a *App) notify(message string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.New(apperrors.CodeNotificationFailed, fmt.Sprintf("notifier panicked: %v", r))
		}
	}()
	return a.notifier.Notify(a.cfg.ProductName, message)
}

// Describe renders err with its code and the chain of wrapped causes.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", apperrors.CodeOf(err), err.Error())
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		fmt.Fprintf(&b, "\n  caused by %T: %s", cause, cause.Error())
	}
	return b.String()
}
