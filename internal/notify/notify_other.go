//go:build !windows

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

package notify

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	apperrors "repairlauncher/internal/errors"
)

// Terminal prints the message when a person is watching the terminal.
type Terminal struct {
	out        io.Writer
	isTerminal func() bool
}

// New returns the platform notifier.
func New() Notifier {
	return &Terminal{
		out: os.Stderr,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stderr.Fd()))
		},
	}
}

// Notify writes "title: message" to the terminal.
func (t *Terminal) Notify(title, message string) error {
	if !t.isTerminal() {
		return apperrors.Wrap(apperrors.CodeNotificationFailed, "stderr is not a terminal", ErrNoDisplay)
	}
	if _, err := fmt.Fprintf(t.out, "%s: %s\n", title, message); err != nil {
		return apperrors.Wrap(apperrors.CodeNotificationFailed, "write message", err)
	}
	return nil
}
