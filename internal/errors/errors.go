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

package errors

import (
	"errors"
	"fmt"
)

// Code identifies a class of launcher failure for programmatic handling.
type Code string

const (
	CodeMissingArgument     Code = "missing_argument"
	CodeMalformedURI        Code = "malformed_uri"
	CodeIncompletePath      Code = "incomplete_path"
	CodeHostNotAllowed      Code = "host_not_allowed"
	CodeExtensionNotAllowed Code = "extension_not_allowed"
	CodeRemoteLaunchFailed  Code = "remote_launch_failed"
	CodeFallbackDisabled    Code = "fallback_disabled"
	CodeLaunchFailed        Code = "launch_failed"
	CodeLoggingFailed       Code = "logging_failed"
	CodeNotificationFailed  Code = "notification_failed"
	CodeInternal            Code = "internal"
)

// Error wraps an underlying error with a code and message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		if e.Err != nil {
			return e.Err.Error()
		}
		return string(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Fatal reports whether the code ends the invocation. Remote launch failures
// feed the cache fallback, and logging and notification failures are always
// absorbed.
func (c Code) Fatal() bool {
	switch c {
	case CodeRemoteLaunchFailed, CodeLoggingFailed, CodeNotificationFailed:
		return false
	}
	return true
}

// New creates a new coded error with a message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a new coded error that wraps an underlying error.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the outermost coded error in the chain, or
// CodeInternal when err carries none.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) && coded != nil {
		return coded.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	for err != nil {
		var coded *Error
		if !errors.As(err, &coded) || coded == nil {
			return false
		}
		if coded.Code == code {
			return true
		}
		err = coded.Err
	}
	return false
}
