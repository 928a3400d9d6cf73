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

package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"repairlauncher/internal/config"
	"repairlauncher/internal/diag"
	apperrors "repairlauncher/internal/errors"
	"repairlauncher/internal/launch"
	"repairlauncher/internal/proc"
	"repairlauncher/internal/security"
)

type memoryLog struct {
	lines []string
}

func (m *memoryLog) Append(message string) error {
	m.lines = append(m.lines, message)
	return nil
}

func (m *memoryLog) contains(substr string) bool {
	for _, line := range m.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

type failingLog struct{ calls int }

func (f *failingLog) Append(string) error {
	f.calls++
	return apperrors.New(apperrors.CodeLoggingFailed, "disk full")
}

type recordingNotifier struct {
	titles   []string
	messages []string
	err      error
	panics   bool
}

func (n *recordingNotifier) Notify(title, message string) error {
	if n.panics {
		panic("no desktop session")
	}
	n.titles = append(n.titles, title)
	n.messages = append(n.messages, message)
	return n.err
}

type recordingLauncher struct {
	targets []security.Target
	result  launch.Result
	err     error
	panics  bool
}

func (l *recordingLauncher) Launch(_ context.Context, target security.Target) (launch.Result, error) {
	if l.panics {
		panic("nil filesystem")
	}
	l.targets = append(l.targets, target)
	return l.result, l.err
}

func TestRunStartsValidatedTarget(t *testing.T) {
	log := &memoryLog{}
	notifier := &recordingNotifier{}
	launcher := &recordingLauncher{result: launch.Result{Tier: launch.TierRemote}}
	a := New(config.DefaultConfig(), launcher, log, notifier)

	if err := a.Run(context.Background(), []string{"repairtool://10.103.127.177/share/tool.exe"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(launcher.targets) != 1 {
		t.Fatalf("expected one launch, got %d", len(launcher.targets))
	}
	target := launcher.targets[0]
	if target.UNCPath != `\\10.103.127.177\share\tool.exe` || target.WorkingDirectory != `\\10.103.127.177\share` {
		t.Fatalf("unexpected target: %+v", target)
	}
	expected := []string{
		"==== start ====",
		"raw=repairtool://10.103.127.177/share/tool.exe",
		`target=\\10.103.127.177\share\tool.exe host=10.103.127.177 ext=.exe`,
	}
	if strings.Join(log.lines, "|") != strings.Join(expected, "|") {
		t.Fatalf("unexpected log records: %q", log.lines)
	}
	if len(notifier.messages) != 0 {
		t.Fatal("expected no notification on success")
	}
}

func TestRunHostNotAllowed(t *testing.T) {
	log := &memoryLog{}
	notifier := &recordingNotifier{}
	launcher := &recordingLauncher{}
	a := New(config.DefaultConfig(), launcher, log, notifier)

	err := a.Run(context.Background(), []string{"repairtool://evil.host/tool.exe"})
	if apperrors.CodeOf(err) != apperrors.CodeHostNotAllowed {
		t.Fatalf("expected host not allowed, got %v", err)
	}
	if len(launcher.targets) != 0 {
		t.Fatal("expected no launch for disallowed host")
	}
	if !log.contains("fatal: ") || !log.contains("Host not allowed: evil.host") {
		t.Fatalf("expected fatal record, got %q", log.lines)
	}
	if len(notifier.messages) != 1 || notifier.messages[0] != "Start failed: Host not allowed: evil.host" {
		t.Fatalf("unexpected notifications: %q", notifier.messages)
	}
	if notifier.titles[0] != "RepairLauncher" {
		t.Fatalf("unexpected title: %s", notifier.titles[0])
	}
}

func TestRunMissingArgument(t *testing.T) {
	log := &memoryLog{}
	notifier := &recordingNotifier{}
	launcher := &recordingLauncher{}

	err := New(config.DefaultConfig(), launcher, log, notifier).Run(context.Background(), nil)
	if apperrors.CodeOf(err) != apperrors.CodeMissingArgument {
		t.Fatalf("expected missing argument, got %v", err)
	}
	if !log.contains("No URL argument") {
		t.Fatalf("expected missing argument record, got %q", log.lines)
	}
	if len(notifier.messages) != 1 || !strings.Contains(notifier.messages[0], "No URL argument") {
		t.Fatalf("unexpected notifications: %q", notifier.messages)
	}
	if len(launcher.targets) != 0 {
		t.Fatal("expected no launch")
	}
}

func TestRunOnlyFirstArgumentIsUsed(t *testing.T) {
	launcher := &recordingLauncher{}
	a := New(config.DefaultConfig(), launcher, &memoryLog{}, &recordingNotifier{})

	args := []string{"repairtool://10.103.127.177/share/tool.exe", "repairtool://evil.host/x.exe"}
	if err := a.Run(context.Background(), args); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if launcher.targets[0].Host != "10.103.127.177" {
		t.Fatalf("expected first argument to be used, got %+v", launcher.targets[0])
	}
}

func TestRunExtensionNotAllowed(t *testing.T) {
	log := &memoryLog{}
	err := New(config.DefaultConfig(), &recordingLauncher{}, log, &recordingNotifier{}).
		Run(context.Background(), []string{"repairtool://10.103.127.177/share/payload.ps1"})
	if apperrors.CodeOf(err) != apperrors.CodeExtensionNotAllowed {
		t.Fatalf("expected extension not allowed, got %v", err)
	}
	if !log.contains("Extension not allowed: .ps1") {
		t.Fatalf("expected extension record, got %q", log.lines)
	}
}

func TestRunIncompletePath(t *testing.T) {
	log := &memoryLog{}
	err := New(config.DefaultConfig(), &recordingLauncher{}, log, &recordingNotifier{}).
		Run(context.Background(), []string{"repairtool://10.103.127.177"})
	if apperrors.CodeOf(err) != apperrors.CodeIncompletePath {
		t.Fatalf("expected incomplete path, got %v", err)
	}
	if !log.contains("Incomplete path:\n\\\\10.103.127.177") {
		t.Fatalf("expected incomplete path record, got %q", log.lines)
	}
}

func TestRunLaunchFailureIsReported(t *testing.T) {
	log := &memoryLog{}
	notifier := &recordingNotifier{}
	cause := errors.New("network path was not found")
	launcher := &recordingLauncher{err: apperrors.Wrap(apperrors.CodeLaunchFailed, "copy to cache", cause)}

	err := New(config.DefaultConfig(), launcher, log, notifier).
		Run(context.Background(), []string{"repairtool://10.103.127.177/share/tool.exe"})
	if !errors.Is(err, cause) {
		t.Fatalf("expected launch cause, got %v", err)
	}
	if !log.contains("caused by *errors.errorString: network path was not found") {
		t.Fatalf("expected cause chain in log, got %q", log.lines)
	}
	if notifier.messages[0] != "Start failed: copy to cache: network path was not found" {
		t.Fatalf("unexpected notification: %q", notifier.messages[0])
	}
}

func TestRunSurvivesLoggingAndNotificationFailures(t *testing.T) {
	log := &failingLog{}
	notifier := &recordingNotifier{err: errors.New("no desktop")}

	err := New(config.DefaultConfig(), &recordingLauncher{}, log, notifier).Run(context.Background(), nil)
	if apperrors.CodeOf(err) != apperrors.CodeMissingArgument {
		t.Fatalf("expected the original failure, got %v", err)
	}
	if log.calls == 0 {
		t.Fatal("expected logging to be attempted")
	}
}

func TestRunSurvivesNotifierPanic(t *testing.T) {
	err := New(config.DefaultConfig(), &recordingLauncher{}, &memoryLog{}, &recordingNotifier{panics: true}).
		Run(context.Background(), nil)
	if apperrors.CodeOf(err) != apperrors.CodeMissingArgument {
		t.Fatalf("expected the original failure, got %v", err)
	}
}

func TestRunRecoversPanic(t *testing.T) {
	log := &memoryLog{}
	notifier := &recordingNotifier{}
	err := New(config.DefaultConfig(), &recordingLauncher{panics: true}, log, notifier).
		Run(context.Background(), []string{"repairtool://10.103.127.177/share/tool.exe"})
	if apperrors.CodeOf(err) != apperrors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
	if !log.contains("unexpected failure: nil filesystem") || !log.contains("goroutine") {
		t.Fatalf("expected panic detail and stack in log, got %q", log.lines)
	}
	if len(notifier.messages) != 1 {
		t.Fatal("expected one notification")
	}
}

func TestRunLogsConfigWarnings(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AllowedExtensions = append(cfg.AllowedExtensions, ".msi")
	log := &memoryLog{}
	_ = New(cfg, &recordingLauncher{}, log, &recordingNotifier{}).Run(context.Background(), nil)
	if !log.contains("config warning: allowed_extensions") {
		t.Fatalf("expected config warning, got %q", log.lines)
	}
}

func TestDescribe(t *testing.T) {
	if Describe(nil) != "" {
		t.Fatal("expected empty description for nil")
	}
	got := Describe(apperrors.New(apperrors.CodeHostNotAllowed, "Host not allowed: x"))
	if got != "[host_not_allowed] Host not allowed: x" {
		t.Fatalf("unexpected description: %q", got)
	}
}

// End-to-end scenarios with the real strategy and sink over fake OS
// capabilities.

type shareFS struct {
	remote map[string]bool
	dirs   []string
	copies int
}

func (s *shareFS) Exists(path string) bool { return s.remote[path] }

func (s *shareFS) MkdirAll(_ context.Context, dir string) error {
	s.dirs = append(s.dirs, dir)
	return nil
}

func (s *shareFS) Copy(_ context.Context, src, _ string) error {
	s.copies++
	if !s.remote[src] && src != `\\10.103.127.177\share\tool.exe` {
		return errors.New("source not found")
	}
	return nil
}

type spawnRecorder struct {
	started []proc.Process
}

func (s *spawnRecorder) Spawn(_ context.Context, p proc.Process) error {
	s.started = append(s.started, p)
	return nil
}

func newScenario(t *testing.T, remote ...string) (*App, *shareFS, *spawnRecorder, string, string) {
	t.Helper()
	dir := t.TempDir()
	logPath := filepath.Join(dir, "launcher.log")
	cacheDir := filepath.Join(dir, "cache")
	cfg := config.DefaultConfig()
	fs := &shareFS{remote: map[string]bool{}}
	for _, r := range remote {
		fs.remote[r] = true
	}
	spawner := &spawnRecorder{}
	sink := diag.NewSink(logPath)
	strategy := launch.NewStrategy(cfg, fs, spawner, sink, cacheDir)
	return New(cfg, strategy, sink, &recordingNotifier{}), fs, spawner, logPath, cacheDir
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	return string(data)
}

func TestScenarioRemotePresent(t *testing.T) {
	a, _, spawner, logPath, _ := newScenario(t, `\\10.103.127.177\share\tool.exe`)
	if err := a.Run(context.Background(), []string{"repairtool://10.103.127.177/share/tool.exe"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spawner.started) != 1 || spawner.started[0].Path != `\\10.103.127.177\share\tool.exe` {
		t.Fatalf("unexpected processes: %+v", spawner.started)
	}
	if !strings.Contains(readLog(t, logPath), "started from NAS") {
		t.Fatal("expected started from NAS in log")
	}
}

func TestScenarioRemoteAbsentUsesCache(t *testing.T) {
	a, fs, spawner, logPath, cacheDir := newScenario(t)
	if err := a.Run(context.Background(), []string{"repairtool://10.103.127.177/share/tool.exe"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	local := filepath.Join(cacheDir, "tool.exe")
	if len(fs.dirs) != 1 || fs.dirs[0] != cacheDir {
		t.Fatalf("expected cache dir creation, got %v", fs.dirs)
	}
	if len(spawner.started) != 1 || spawner.started[0].Path != local {
		t.Fatalf("unexpected processes: %+v", spawner.started)
	}
	if !strings.Contains(readLog(t, logPath), "started from cache: "+local) {
		t.Fatal("expected started from cache in log")
	}
}

func TestScenarioScriptAbsentFallbackDisabled(t *testing.T) {
	a, fs, spawner, logPath, _ := newScenario(t)
	err := a.Run(context.Background(), []string{"repairtool://10.103.127.177/share/run.bat"})
	if apperrors.CodeOf(err) != apperrors.CodeFallbackDisabled {
		t.Fatalf("expected fallback disabled, got %v", err)
	}
	if fs.copies != 0 || len(fs.dirs) != 0 || len(spawner.started) != 0 {
		t.Fatal("expected no cache writes and no process")
	}
	if !strings.Contains(readLog(t, logPath), "cannot start") {
		t.Fatal("expected cannot start in log")
	}
}

func TestScenarioHostRejectedBeforeFilesystem(t *testing.T) {
	a, fs, spawner, logPath, _ := newScenario(t)
	_ = a.Run(context.Background(), []string{"repairtool://evil.host/tool.exe"})
	if fs.copies != 0 || len(fs.dirs) != 0 || len(spawner.started) != 0 {
		t.Fatal("expected no filesystem or process interaction")
	}
	content := readLog(t, logPath)
	if !strings.Contains(content, "Host not allowed: evil.host") {
		t.Fatalf("expected host record, got %q", content)
	}
	if !strings.HasSuffix(content, "\r\n") {
		t.Fatal("expected CRLF terminated records")
	}
}
