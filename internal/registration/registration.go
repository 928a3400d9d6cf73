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

// Package registration installs the launcher as the handler of its URL
// scheme.
package registration

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported is returned where the host has no scheme handler registry.
var ErrUnsupported = errors.New("protocol registration is only supported on Windows")

// Scope selects which registry hive receives the handler.
type Scope int

const (
	// ScopeMachine registers for all users and needs elevation.
	ScopeMachine Scope = iota
	// ScopeUser registers for the current user only.
	ScopeUser
)

func (s Scope) String() string {
	if s == ScopeUser {
		return "user"
	}
	return "machine"
}

// Handler describes one scheme registration.
type Handler struct {
	Scheme      string
	Description string
	Executable  string
	Scope       Scope
}

// Validate rejects handlers the shell would not accept.
func (h Handler) Validate() error {
	if h.Scheme == "" {
		return errors.New("scheme is empty")
	}
	for _, r := range h.Scheme {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return fmt.Errorf("scheme %q contains %q", h.Scheme, r)
		}
	}
	if h.Executable == "" {
		return errors.New("executable path is empty")
	}
	if strings.ContainsRune(h.Executable, '"') {
		return fmt.Errorf("executable path %q contains a quote", h.Executable)
	}
	return nil
}

// CommandValue is the shell\open\command default value: the quoted
// executable followed by the quoted URL placeholder.
func (h Handler) CommandValue() string {
	return `"` + h.Executable + `" "%1"`
}

// DisplayName is the default value of the scheme key.
func (h Handler) DisplayName() string {
	if h.Description != "" {
		return "URL:" + h.Description
	}
	return "URL:" + h.Scheme + " Protocol"
}

// keyPath is the scheme key relative to the hive root.
func (h Handler) keyPath() string {
	if h.Scope == ScopeUser {
		return `Software\Classes\` + h.Scheme
	}
	return h.Scheme
}

// commandKeyPaths lists the keys under the scheme key, parents first.
func commandKeyPaths(base string) []string {
	return []string{
		base + `\shell`,
		base + `\shell\open`,
		base + `\shell\open\command`,
	}
}
