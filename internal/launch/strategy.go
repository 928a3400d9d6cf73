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

// Package launch starts a validated target, first from the share and then,
// if that is impossible, from a local cache copy.
package launch

import (
	"context"
	"fmt"
	"path/filepath"

	"repairlauncher/internal/config"
	"repairlauncher/internal/diag"
	apperrors "repairlauncher/internal/errors"
	"repairlauncher/internal/paths"
	"repairlauncher/internal/proc"
	"repairlauncher/internal/security"
)

// FileSystem is the subset of file operations the strategy needs.
type FileSystem interface {
	Exists(path string) bool
	MkdirAll(ctx context.Context, dir string) error
	Copy(ctx context.Context, src, dst string) error
}

// Spawner starts a process without waiting for it.
type Spawner interface {
	Spawn(ctx context.Context, p proc.Process) error
}

// Tier says where a started target ran from.
type Tier int

const (
	TierRemote Tier = iota + 1
	TierCache
)

func (t Tier) String() string {
	switch t {
	case TierRemote:
		return "remote"
	case TierCache:
		return "cache"
	default:
		return "none"
	}
}

// Result describes a successful launch.
type Result struct {
	Tier Tier
	Path string
	Dir  string
}

// outcome is the result of one launch attempt. A nil reason means started.
type outcome struct {
	reason error
}

func (o outcome) started() bool { return o.reason == nil }

// Strategy runs the remote-first, cache-second launch policy.
type Strategy struct {
	cfg      *config.Config
	fs       FileSystem
	spawner  Spawner
	log      diag.Recorder
	cacheDir string
}

// NewStrategy wires a strategy to its collaborators.
func NewStrategy(cfg *config.Config, fs FileSystem, spawner Spawner, log diag.Recorder, cacheDir string) *Strategy {
	return &Strategy{
		cfg:      cfg,
		fs:       fs,
		spawner:  spawner,
		log:      log,
		cacheDir: cacheDir,
	}
}

// Launch starts target. A failed start from the share is logged and turned
// into a cache attempt; only the final failure is returned.
func (s *Strategy) Launch(ctx context.Context, target security.Target) (Result, error) {
	if s.fs.Exists(target.UNCPath) {
		attempt := s.tryRemote(ctx, target)
		if attempt.started() {
			_ = s.log.Append("started from NAS")
			return Result{Tier: TierRemote, Path: target.UNCPath, Dir: target.WorkingDirectory}, nil
		}
		_ = s.log.Append("start from NAS failed: " + attempt.reason.Error())
	} else {
		_ = s.log.Append("not found on NAS")
	}

	if !s.fallbackEnabled(target.Class) {
		return Result{}, apperrors.New(apperrors.CodeFallbackDisabled, "File not found or cannot start from NAS.")
	}
	return s.launchFromCache(ctx, target)
}

func (s *Strategy) tryRemote(ctx context.Context, target security.Target) outcome {
	var p proc.Process
	switch target.Class {
	case security.ClassExecutable:
		p = proc.Process{Path: target.UNCPath, Dir: target.WorkingDirectory}
	case security.ClassScript:
		p = proc.Process{
			Path: s.cfg.Interpreter.Program,
			Dir:  target.WorkingDirectory,
			Args: []string{s.cfg.Interpreter.Switch, `"` + target.UNCPath + `"`},
		}
	default:
		return outcome{reason: apperrors.New(apperrors.CodeRemoteLaunchFailed,
			fmt.Sprintf("no launch rule for extension %s", target.Extension))}
	}
	if err := s.spawner.Spawn(ctx, p); err != nil {
		return outcome{reason: apperrors.Wrap(apperrors.CodeRemoteLaunchFailed, p.Path, err)}
	}
	return outcome{}
}

func (s *Strategy) fallbackEnabled(class security.Class) bool {
	switch class {
	case security.ClassExecutable:
		return s.cfg.CacheFallback.Executables
	case security.ClassScript:
		return s.cfg.CacheFallback.Scripts
	default:
		return false
	}
}

// launchFromCache copies the target into the cache directory, replacing any
// earlier copy of the same name, and starts the copy directly.
func (s *Strategy) launchFromCache(ctx context.Context, target security.Target) (Result, error) {
	if err := s.fs.MkdirAll(ctx, s.cacheDir); err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeLaunchFailed, "create cache directory", err)
	}

	name := paths.Base(target.UNCPath)
	local := filepath.Join(s.cacheDir, name)
	if name == "" || filepath.Dir(local) != filepath.Clean(s.cacheDir) || !paths.HasPathPrefix(local, s.cacheDir) {
		return Result{}, apperrors.New(apperrors.CodeLaunchFailed, fmt.Sprintf("invalid cache file name %q", name))
	}

	if err := s.fs.Copy(ctx, target.UNCPath, local); err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeLaunchFailed, "copy to cache", err)
	}
	if err := s.spawner.Spawn(ctx, proc.Process{Path: local, Dir: s.cacheDir}); err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeLaunchFailed, "start from cache", err)
	}

	_ = s.log.Append("started from cache: " + local)
	return Result{Tier: TierCache, Path: local, Dir: s.cacheDir}, nil
}
