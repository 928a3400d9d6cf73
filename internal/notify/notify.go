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

// Package notify shows a fatal message to the person who clicked the link.
package notify

import "errors"

// ErrNoDisplay is returned when there is nowhere to show a message.
var ErrNoDisplay = errors.New("no display available for notification")

// Notifier presents a single modal message. Callers treat failures as
// best-effort and discard them.
type Notifier interface {
	Notify(title, message string) error
}
