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

// Package security is the only authorization gate between a clicked link and
// process creation. A share path passes when both its host and its extension
// are on the allow-lists.
package security

import (
	"fmt"
	"strings"

	"repairlauncher/internal/config"
	apperrors "repairlauncher/internal/errors"
	"repairlauncher/internal/paths"
)

// Class groups extensions by how they are started.
type Class int

const (
	ClassUnknown Class = iota
	ClassExecutable
	ClassScript
)

func (c Class) String() string {
	switch c {
	case ClassExecutable:
		return "executable"
	case ClassScript:
		return "script"
	default:
		return "unknown"
	}
}

// Target is a validated share path. It is never modified after Resolve.
type Target struct {
	UNCPath          string
	Host             string
	Extension        string
	WorkingDirectory string
	Class            Class
}

// Validator checks share paths against the configured allow-lists.
type Validator struct {
	cfg *config.Config
}

// NewValidator binds a validator to a policy.
func NewValidator(cfg *config.Config) *Validator {
	return &Validator{cfg: cfg}
}

// ExtractHost returns the segment between the leading `\\` and the next
// separator.
func ExtractHost(unc string) (string, error) {
	if !strings.HasPrefix(unc, paths.RootPrefix) {
		return "", apperrors.New(apperrors.CodeIncompletePath, fmt.Sprintf("Incomplete path:\n%s", unc))
	}
	rest := unc[len(paths.RootPrefix):]
	end := strings.IndexByte(rest, paths.Separator)
	if end < 0 {
		return "", apperrors.New(apperrors.CodeIncompletePath, fmt.Sprintf("Incomplete path:\n%s", unc))
	}
	return rest[:end], nil
}

// Resolve validates unc and derives the launch target. The host is checked
// before the extension so host errors surface first.
func (v *Validator) Resolve(unc string) (Target, error) {
	host, err := ExtractHost(unc)
	if err != nil {
		return Target{}, err
	}
	if !containsOrdinalFold(v.cfg.AllowedHosts, host) {
		return Target{}, apperrors.New(apperrors.CodeHostNotAllowed, "Host not allowed: "+host)
	}

	ext := paths.Ext(unc)
	if ext == "" || !containsOrdinalFold(v.cfg.AllowedExtensions, ext) {
		return Target{}, apperrors.New(apperrors.CodeExtensionNotAllowed, "Extension not allowed: "+ext)
	}

	workDir := paths.Dir(unc)
	if workDir == "" {
		workDir = paths.RootPrefix
	}

	return Target{
		UNCPath:          unc,
		Host:             host,
		Extension:        ext,
		WorkingDirectory: workDir,
		Class:            v.Classify(ext),
	}, nil
}

// Classify maps an extension to its launch class.
func (v *Validator) Classify(ext string) Class {
	switch {
	case containsOrdinalFold(v.cfg.ExecutableExtensions, ext):
		return ClassExecutable
	case containsOrdinalFold(v.cfg.ScriptExtensions, ext):
		return ClassScript
	default:
		return ClassUnknown
	}
}

func containsOrdinalFold(list []string, value string) bool {
	for _, item := range list {
		if equalFoldASCII(item, value) {
			return true
		}
	}
	return false
}

// equalFoldASCII compares byte-wise, folding only ASCII letters. Unicode
// folding would let look-alikes such as U+212A KELVIN SIGN match "k".
func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
