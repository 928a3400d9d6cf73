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

package fsys

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/u-root/u-root/pkg/core"
	corecp "github.com/u-root/u-root/pkg/core/cp"
	coremkdir "github.com/u-root/u-root/pkg/core/mkdir"
)

// Local is the filesystem seen by this process. Share paths are resolved by
// the OS redirector, so remote and local files go through the same calls.
type Local struct{}

// New returns the process filesystem.
func New() *Local {
	return &Local{}
}

// Exists reports whether path names an existing regular file. Directories
// and stat errors count as absent.
func (Local) Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// MkdirAll creates dir and any missing parents.
func (Local) MkdirAll(ctx context.Context, dir string) error {
	return runCoreCommand(ctx, coremkdir.New(), []string{"-p", dir})
}

// Copy copies src to dst, replacing dst if it exists.
func (Local) Copy(ctx context.Context, src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		return err
	}
	return runCoreCommand(ctx, corecp.New(), []string{"-f", src, dst})
}

func runCoreCommand(ctx context.Context, cmd core.Command, args []string) error {
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.SetIO(strings.NewReader(""), &stdout, &stderr)

	workdir, err := os.Getwd()
	if err != nil {
		workdir = os.TempDir()
	}
	cmd.SetWorkingDir(workdir)

	if err := cmd.RunContext(ctx, args...); err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg != "" {
			return fmt.Errorf("%v: %s", err, errMsg)
		}
		return err
	}
	return nil
}
