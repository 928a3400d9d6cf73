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

package registration

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

func root(scope Scope) registry.Key {
	if scope == ScopeUser {
		return registry.CURRENT_USER
	}
	return registry.CLASSES_ROOT
}

// Register writes the scheme key and its open command, replacing any
// previous handler for the same scheme.
func Register(h Handler) error {
	if err := h.Validate(); err != nil {
		return err
	}
	hive := root(h.Scope)
	base := h.keyPath()

	key, _, err := registry.CreateKey(hive, base, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("create %s: %w", base, err)
	}
	defer key.Close()
	if err := key.SetStringValue("", h.DisplayName()); err != nil {
		return fmt.Errorf("set description: %w", err)
	}
	if err := key.SetStringValue("URL Protocol", ""); err != nil {
		return fmt.Errorf("set URL Protocol: %w", err)
	}

	paths := commandKeyPaths(base)
	for _, p := range paths {
		k, _, err := registry.CreateKey(hive, p, registry.SET_VALUE)
		if err != nil {
			return fmt.Errorf("create %s: %w", p, err)
		}
		k.Close()
	}

	cmd, err := registry.OpenKey(hive, paths[len(paths)-1], registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open command key: %w", err)
	}
	defer cmd.Close()
	if err := cmd.SetStringValue("", h.CommandValue()); err != nil {
		return fmt.Errorf("set command: %w", err)
	}
	return nil
}

// Unregister removes the scheme key. Missing keys are not an error.
func Unregister(h Handler) error {
	if h.Scheme == "" {
		return errors.New("scheme is empty")
	}
	hive := root(h.Scope)
	base := h.keyPath()

	paths := commandKeyPaths(base)
	for i := len(paths) - 1; i >= 0; i-- {
		if err := registry.DeleteKey(hive, paths[i]); err != nil && !errors.Is(err, registry.ErrNotExist) {
			return fmt.Errorf("delete %s: %w", paths[i], err)
		}
	}
	if err := registry.DeleteKey(hive, base); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", base, err)
	}
	return nil
}
