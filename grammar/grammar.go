/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package grammar holds the structural vocabulary of the JSV format and the
// string quoting convention shared by the scanner and every codec.
package grammar

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Structural characters.
const (
	MapStart  = '{'
	MapEnd    = '}'
	ListStart = '['
	ListEnd   = ']'
	KeySep    = ':'
	ItemSep   = ','
	Quote     = '"'
)

// Empty is the quoted empty string. It is distinct from an omitted value.
const Empty = `""`

// structural lists every character that forces a string to be quoted.
const structural = `{}[]:,"`

// IsStructural reports whether c is one of the seven structural characters.
func IsStructural(c byte) bool {
	return strings.IndexByte(structural, c) >= 0
}

// NeedsQuote reports whether s must be quoted to survive a round trip: it
// is empty, contains a structural character, or starts or ends with a
// Unicode space, which is wider than what TrimSpace removes.
func NeedsQuote(s string) bool {
	if s == "" {
		return true
	}
	first, _ := utf8.DecodeRuneInString(s)
	last, _ := utf8.DecodeLastRuneInString(s)
	if unicode.IsSpace(first) || unicode.IsSpace(last) {
		return true
	}
	return strings.ContainsAny(s, structural)
}

// QuoteString wraps s in quotes, doubling embedded quotes.
func QuoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	AppendQuoted(&b, s)
	return b.String()
}

// Writer is satisfied by *bytes.Buffer and *strings.Builder.
type Writer interface {
	WriteByte(c byte) error
	WriteString(s string) (int, error)
}

// AppendQuoted writes the quoted form of s to b.
func AppendQuoted(b Writer, s string) {
	_ = b.WriteByte(Quote)
	for {
		i := strings.IndexByte(s, Quote)
		if i < 0 {
			break
		}
		_, _ = b.WriteString(s[:i+1])
		_ = b.WriteByte(Quote)
		s = s[i+1:]
	}
	_, _ = b.WriteString(s)
	_ = b.WriteByte(Quote)
}

// Escape returns s unchanged when it is safe as a bare token, otherwise
// its quoted form.
func Escape(s string) string {
	if !NeedsQuote(s) {
		return s
	}
	return QuoteString(s)
}

// Unescape turns a raw scalar unit back into its string value. A unit
// wrapped in quotes has them removed and doubled quotes collapsed; anything
// else is returned unchanged.
func Unescape(raw string) string {
	if len(raw) < 2 || raw[0] != Quote || raw[len(raw)-1] != Quote {
		return raw
	}
	inner := raw[1 : len(raw)-1]
	if strings.IndexByte(inner, Quote) < 0 {
		return inner
	}
	return strings.ReplaceAll(inner, `""`, `"`)
}

// IsQuoted reports whether raw is a quoted unit.
func IsQuoted(raw string) bool {
	return len(raw) >= 2 && raw[0] == Quote && raw[len(raw)-1] == Quote
}

// IsSpace reports whether c is insignificant whitespace between units.
func IsSpace(c byte) bool { return isSpace(c) }

// TrimSpace removes the insignificant whitespace around a unit. Only the
// four ASCII spaces count; any other space is part of the value.
func TrimSpace(s string) string { return strings.Trim(s, Spaces) }

// Spaces lists the insignificant whitespace bytes.
const Spaces = " \t\n\r"

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
