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

// Package uri turns a protocol-handler argument into a remote-style share path.
package uri

import (
	"fmt"
	"net/url"
	"strings"

	apperrors "repairlauncher/internal/errors"
	"repairlauncher/internal/paths"
)

// Request is the raw invocation argument.
type Request struct {
	Raw string
}

// StripScheme removes a leading "<scheme>://" from raw, ignoring case. The
// prefix is only matched at the start of the string; anything else is
// returned unchanged.
func StripScheme(raw, scheme string) string {
	if scheme == "" {
		return raw
	}
	prefix := scheme + "://"
	if len(raw) >= len(prefix) && strings.EqualFold(raw[:len(prefix)], prefix) {
		return raw[len(prefix):]
	}
	return raw
}

// Decode percent-decodes s with form rules ('+' is a space). Malformed
// escapes are kept literally instead of failing.
func Decode(s string) string {
	if decoded, err := url.QueryUnescape(s); err == nil {
		return decoded
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		case c == '+':
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Normalize converts a raw invocation into a share path of the form
// `\\host\rest`. It fails with CodeMalformedURI when the decoded text cannot
// name a file, and with CodeIncompletePath when no separator follows the host.
func Normalize(req Request, scheme string) (string, error) {
	decoded := Decode(StripScheme(req.Raw, scheme))
	if err := paths.ValidatePathString(decoded, paths.MaxPathLength); err != nil {
		return "", apperrors.Wrap(apperrors.CodeMalformedURI, "Malformed URL", err)
	}

	rest := strings.ReplaceAll(decoded, "/", string(paths.Separator))
	rest = strings.TrimLeft(rest, string(paths.Separator))
	unc := paths.RootPrefix + rest

	if strings.IndexByte(unc[len(paths.RootPrefix):], paths.Separator) < 0 {
		return "", apperrors.New(apperrors.CodeIncompletePath, fmt.Sprintf("Incomplete path:\n%s", unc))
	}
	return unc, nil
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
