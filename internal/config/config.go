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

package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Config represents the launcher policy. It is built once at startup and
// handed by pointer to the validator and the launch strategy; nothing
// mutates it afterwards.
type Config struct {
	Scheme               string        `json:"scheme"`
	ProductName          string        `json:"product_name"`
	LogFileName          string        `json:"log_file_name"`
	CacheDirName         string        `json:"cache_dir_name"`
	AllowedHosts         []string      `json:"allowed_hosts"`
	AllowedExtensions    []string      `json:"allowed_extensions"`
	ExecutableExtensions []string      `json:"executable_extensions"`
	ScriptExtensions     []string      `json:"script_extensions"`
	CacheFallback        CacheFallback `json:"cache_fallback"`
	Interpreter          Interpreter   `json:"interpreter"`
}

// CacheFallback enables the cache-copy tier per extension class.
type CacheFallback struct {
	Executables bool `json:"executables"`
	// Scripts usually reference sibling files that a flat cache copy lacks.
	Scripts bool `json:"scripts"`
}

// Interpreter describes how script-class targets are started.
type Interpreter struct {
	Program string `json:"program"`
	Switch  string `json:"switch"`
}

// DefaultConfig returns the compiled-in launcher policy.
func DefaultConfig() *Config {
	return &Config{
		Scheme:               "repairtool",
		ProductName:          "RepairLauncher",
		LogFileName:          "launcher.log",
		CacheDirName:         "cache",
		AllowedHosts:         []string{"10.103.127.177"},
		AllowedExtensions:    []string{".exe", ".bat", ".cmd"},
		ExecutableExtensions: []string{".exe"},
		ScriptExtensions:     []string{".bat", ".cmd"},
		CacheFallback: CacheFallback{
			Executables: true,
			Scripts:     false,
		},
		Interpreter: Interpreter{
			Program: "cmd.exe",
			Switch:  "/c",
		},
	}
}

// JSON renders the policy for display.
func (c *Config) JSON() (string, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ValidationWarning represents a non-fatal configuration issue
type ValidationWarning struct {
	Field   string
	Message string
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Field, w.Message)
}

// Validate checks the policy for common issues and returns warnings
func (c *Config) Validate() []ValidationWarning {
	var warnings []ValidationWarning

	if strings.TrimSpace(c.Scheme) == "" {
		warnings = append(warnings, ValidationWarning{
			Field:   "scheme",
			Message: "scheme is empty, raw arguments are used as-is",
		})
	}

	if len(c.AllowedHosts) == 0 {
		warnings = append(warnings, ValidationWarning{
			Field:   "allowed_hosts",
			Message: "no hosts are allowed, every request will be rejected",
		})
	}
	if len(c.AllowedExtensions) == 0 {
		warnings = append(warnings, ValidationWarning{
			Field:   "allowed_extensions",
			Message: "no extensions are allowed, every request will be rejected",
		})
	}

	for _, ext := range c.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			warnings = append(warnings, ValidationWarning{
				Field:   "allowed_extensions",
				Message: fmt.Sprintf("extension %q has no leading dot and can never match", ext),
			})
		}
	}

	check := func(field string, list []string) {
		for _, ext := range list {
			if !containsFold(c.AllowedExtensions, ext) {
				warnings = append(warnings, ValidationWarning{
					Field:   field,
					Message: fmt.Sprintf("extension %q is not in allowed_extensions", ext),
				})
			}
		}
	}
	check("executable_extensions", c.ExecutableExtensions)
	check("script_extensions", c.ScriptExtensions)

	for _, ext := range c.AllowedExtensions {
		if !containsFold(c.ExecutableExtensions, ext) && !containsFold(c.ScriptExtensions, ext) {
			warnings = append(warnings, ValidationWarning{
				Field:   "allowed_extensions",
				Message: fmt.Sprintf("extension %q has no launch class and can never start", ext),
			})
		}
	}

	if len(c.ScriptExtensions) > 0 && strings.TrimSpace(c.Interpreter.Program) == "" {
		warnings = append(warnings, ValidationWarning{
			Field:   "interpreter.program",
			Message: "script extensions are configured without an interpreter",
		})
	}

	return warnings
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}
