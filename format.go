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

package jsv

import (
	"strings"

	"dirpx.dev/jsv/apis"
	"dirpx.dev/jsv/grammar"
	"dirpx.dev/jsv/scanner"
)

// Format re-indents JSV text with one tab per nesting level. Quoted
// strings and bare tokens are kept verbatim, empty maps and lists stay on
// one line, and the result parses to the same value as text.
func Format(text string) (string, error) {
	c := scanner.New(text)
	unit, err := c.ConsumeValue()
	if err != nil {
		return "", err
	}
	c.SkipSpace()
	if !c.Eof() {
		return "", apis.Malformed(c.Pos, "unexpected text after value")
	}

	var b strings.Builder
	b.Grow(len(unit) * 2)
	depth := 0
	newline := func() {
		b.WriteByte('\n')
		for i := 0; i < depth; i++ {
			b.WriteByte('\t')
		}
	}

	quoted := false
	for i := 0; i < len(unit); i++ {
		ch := unit[i]
		if quoted {
			b.WriteByte(ch)
			if ch == grammar.Quote {
				quoted = false
			}
			continue
		}
		switch ch {
		case grammar.Quote:
			quoted = true
			b.WriteByte(ch)
		case grammar.MapStart, grammar.ListStart:
			b.WriteByte(ch)
			if j := nextNonSpace(unit, i+1); j < len(unit) && (unit[j] == grammar.MapEnd || unit[j] == grammar.ListEnd) {
				b.WriteByte(unit[j])
				i = j
				continue
			}
			depth++
			newline()
		case grammar.MapEnd, grammar.ListEnd:
			depth--
			newline()
			b.WriteByte(ch)
		case grammar.ItemSep:
			b.WriteByte(ch)
			newline()
		default:
			b.WriteByte(ch)
		}
	}
	return b.String(), nil
}

func nextNonSpace(s string, i int) int {
	for i < len(s) && grammar.IsSpace(s[i]) {
		i++
	}
	return i
}
