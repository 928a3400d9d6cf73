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

// Package diag writes the launcher's append-only diagnostic log.
//
// Every record is one line of the form
//
//	[2006-01-02 15:04:05] message
//
// terminated by CRLF. Each Append opens, writes and closes the file, so a
// crash never loses earlier records.
package diag

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	apperrors "repairlauncher/internal/errors"
)

// TimestampLayout is the record timestamp format (local time, seconds).
const TimestampLayout = "2006-01-02 15:04:05"

// Recorder accepts diagnostic records. Implementations are best-effort:
// callers discard the returned error.
type Recorder interface {
	Append(message string) error
}

// Sink appends records to a single log file.
type Sink struct {
	path string
	now  func() time.Time
}

// NewSink returns a sink writing to path. The parent directory is created on
// first use.
func NewSink(path string) *Sink {
	return &Sink{path: path, now: time.Now}
}

// Path returns the log file location.
func (s *Sink) Path() string {
	return s.path
}

// Append writes one record. Failures are returned for the caller to ignore.
func (s *Sink) Append(message string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.New(apperrors.CodeLoggingFailed, fmt.Sprintf("log append panicked: %v", r))
		}
	}()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return apperrors.Wrap(apperrors.CodeLoggingFailed, "create log directory", err)
	}
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeLoggingFailed, "open log file", err)
	}

	out := &crlfWriter{out: file}
	logger := zerolog.New(newRecordWriter(out))
	logger.Log().Str(zerolog.TimestampFieldName, s.now().Format(TimestampLayout)).Msg(message)

	closeErr := file.Close()
	if out.err != nil {
		return apperrors.Wrap(apperrors.CodeLoggingFailed, "write log record", out.err)
	}
	if closeErr != nil {
		return apperrors.Wrap(apperrors.CodeLoggingFailed, "close log file", closeErr)
	}
	return nil
}

// newRecordWriter renders zerolog events as "[timestamp] message".
func newRecordWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    true,
		PartsOrder: []string{zerolog.TimestampFieldName, zerolog.MessageFieldName},
		FormatTimestamp: func(i interface{}) string {
			return fmt.Sprintf("[%v]", i)
		},
		FormatMessage: func(i interface{}) string {
			if i == nil {
				return ""
			}
			return fmt.Sprintf("%s", i)
		},
	}
}

// crlfWriter rewrites line endings to CRLF. It keeps the first write error
// because zerolog drops it.
type crlfWriter struct {
	out io.Writer
	err error
}

func (w *crlfWriter) Write(p []byte) (int, error) {
	normalized := bytes.ReplaceAll(p, []byte("\r\n"), []byte("\n"))
	normalized = bytes.ReplaceAll(normalized, []byte("\n"), []byte("\r\n"))
	if _, err := w.out.Write(normalized); err != nil {
		if w.err == nil {
			w.err = err
		}
		return 0, err
	}
	return len(p), nil
}
