//go:build windows

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
	"golang.org/x/sys/windows"

	apperrors "repairlauncher/internal/errors"
)

// MessageBox shows an error dialog with a single OK button.
type MessageBox struct{}

// New returns the platform notifier.
func New() Notifier {
	return MessageBox{}
}

// Notify blocks until the dialog is dismissed.
func (MessageBox) Notify(title, message string) error {
	text, err := windows.UTF16PtrFromString(message)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeNotificationFailed, "encode message", err)
	}
	caption, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeNotificationFailed, "encode title", err)
	}
	if _, err := windows.MessageBox(0, text, caption, windows.MB_OK|windows.MB_ICONERROR|windows.MB_SETFOREGROUND); err != nil {
		return apperrors.Wrap(apperrors.CodeNotificationFailed, "show message box", err)
	}
	return nil
}
