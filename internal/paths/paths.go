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

package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Separator is the separator of remote-style share paths. Share paths are
// built and split with it on every host OS so the launcher produces the same
// strings everywhere.
const Separator = '\\'

// RootPrefix opens every remote-style path.
const RootPrefix = `\\`

// MaxPathLength bounds decoded paths (the Windows extended-length limit).
const MaxPathLength = 32767

// ValidatePathString validates a decoded path before it is turned into a
// share path. Empty input is accepted; callers decide what empty means.
func ValidatePathString(path string, maxLen int) error {
	if strings.IndexByte(path, 0) != -1 {
		return fmt.Errorf("path contains null byte")
	}
	if !utf8.ValidString(path) {
		return fmt.Errorf("path is not valid UTF-8")
	}
	if maxLen > 0 && len(path) > maxLen {
		return fmt.Errorf("path exceeds maximum length of %d characters", maxLen)
	}
	return nil
}

// Base returns the final element of a share path.
func Base(path string) string {
	if i := strings.LastIndexByte(path, Separator); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Dir returns the parent of a share path, or "" when the path has no parent
// below the share root (for example `\\host\file.exe`).
func Dir(path string) string {
	if !strings.HasPrefix(path, RootPrefix) {
		if i := strings.LastIndexByte(path, Separator); i > 0 {
			return path[:i]
		}
		return ""
	}
	rest := path[len(RootPrefix):]
	hostEnd := strings.IndexByte(rest, Separator)
	if hostEnd < 0 {
		return ""
	}
	i := strings.LastIndexByte(rest, Separator)
	if i <= hostEnd {
		return ""
	}
	return path[:len(RootPrefix)+i]
}

// Ext returns the extension of the final element, including the leading dot,
// with ASCII letters lowercased. A name without a dot, or ending in a dot, has
// no extension.
func Ext(path string) string {
	name := Base(path)
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.Map(lowerASCII, name[i:])
}

func lowerASCII(r rune) rune {
	if 'A' <= r && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// HasPathPrefix returns true when path is within base.
func HasPathPrefix(path, base string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, ".."+string(os.PathSeparator)) && rel != "..")
}

// Layout is the on-disk layout the launcher writes to.
type Layout struct {
	DataDir  string
	LogFile  string
	CacheDir string
}

// NewLayout derives the log file and cache directory from a data directory.
func NewLayout(dataDir, logFileName, cacheDirName string) Layout {
	return Layout{
		DataDir:  dataDir,
		LogFile:  filepath.Join(dataDir, logFileName),
		CacheDir: filepath.Join(dataDir, cacheDirName),
	}
}

// DataDir returns the per-machine, all-users directory for product.
func DataDir(product string) string {
	return filepath.Join(machineDataRoot(), product)
}
