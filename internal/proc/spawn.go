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

// Package proc starts child processes and lets them go. The launcher never
// waits on, signals, or reaps what it starts.
package proc

import (
	"context"
	"errors"
	"os/exec"
)

// Process describes one child to start.
type Process struct {
	Path string
	Dir  string
	// Args are appended to the command line verbatim, already quoted.
	Args []string
}

// Spawner starts a Process and returns once the OS has created it.
type Spawner struct{}

// New returns the OS process spawner.
func New() *Spawner {
	return &Spawner{}
}

// Spawn creates the process and releases it.
func (s *Spawner) Spawn(ctx context.Context, p Process) error {
	if p.Path == "" {
		return errors.New("no program to start")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd := exec.Command(p.Path)
	cmd.Dir = p.Dir
	configureCommand(cmd, p)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
