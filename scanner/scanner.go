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

// Package scanner carves single syntactic units out of JSV text.
//
// Every Consume method starts at the cursor, skips leading whitespace,
// consumes exactly one unit and returns its raw text, quotes and brackets
// included. Units are never interpreted here; codecs do that.
package scanner

import (
	"strings"

	"dirpx.dev/jsv/apis"
	"dirpx.dev/jsv/grammar"
)

// Cursor is a position into a text. It is owned by a single parse call.
type Cursor struct {
	Text string
	Pos  int
}

// New returns a cursor at the start of text.
func New(text string) *Cursor {
	return &Cursor{Text: text}
}

// Eof reports whether the cursor is past the last byte.
func (c *Cursor) Eof() bool { return c.Pos >= len(c.Text) }

// Peek returns the byte under the cursor, or 0 at end of input.
func (c *Cursor) Peek() byte {
	if c.Eof() {
		return 0
	}
	return c.Text[c.Pos]
}

// SkipSpace advances past insignificant whitespace.
func (c *Cursor) SkipSpace() {
	for c.Pos < len(c.Text) && grammar.IsSpace(c.Text[c.Pos]) {
		c.Pos++
	}
}

// ConsumeQuoted consumes a quoted string. A doubled quote is an escaped
// quote; a single quote, or a quote at end of input, closes the string.
func (c *Cursor) ConsumeQuoted() (string, error) {
	c.SkipSpace()
	start := c.Pos
	if c.Peek() != grammar.Quote {
		return "", apis.Malformed(start, "expected '\"'")
	}
	for i := start + 1; i < len(c.Text); i++ {
		if c.Text[i] != grammar.Quote {
			continue
		}
		if i+1 < len(c.Text) && c.Text[i+1] == grammar.Quote {
			i++
			continue
		}
		c.Pos = i + 1
		return c.Text[start:c.Pos], nil
	}
	return "", apis.Malformed(start, "unterminated quoted value")
}

// ConsumeList consumes a bracketed list, balancing nested brackets outside
// quoted regions.
func (c *Cursor) ConsumeList() (string, error) {
	return c.consumeBalanced(grammar.ListStart, grammar.ListEnd, "list")
}

// ConsumeMap consumes a bracketed map, balancing nested braces outside
// quoted regions.
func (c *Cursor) ConsumeMap() (string, error) {
	return c.consumeBalanced(grammar.MapStart, grammar.MapEnd, "map")
}

func (c *Cursor) consumeBalanced(open, close byte, what string) (string, error) {
	c.SkipSpace()
	start := c.Pos
	if c.Peek() != open {
		return "", apis.Malformed(start, what+" must start with '"+string(open)+"'")
	}
	depth := 0
	quoted := false
	for i := start; i < len(c.Text); i++ {
		ch := c.Text[i]
		if ch == grammar.Quote {
			quoted = !quoted
			continue
		}
		if quoted {
			continue
		}
		switch ch {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				c.Pos = i + 1
				return c.Text[start:c.Pos], nil
			}
		}
	}
	if quoted {
		return "", apis.Malformed(start, "unterminated quoted value in "+what)
	}
	return "", apis.Malformed(start, "unterminated "+what)
}

// ConsumeToken consumes a bare token up to the next item separator, map
// end or list end, which is left unconsumed. The token is trimmed; an
// empty token is the "omitted" value.
func (c *Cursor) ConsumeToken() string {
	c.SkipSpace()
	start := c.Pos
	for c.Pos < len(c.Text) {
		switch c.Text[c.Pos] {
		case grammar.ItemSep, grammar.MapEnd, grammar.ListEnd:
			return strings.TrimRight(c.Text[start:c.Pos], grammar.Spaces)
		}
		c.Pos++
	}
	return strings.TrimRight(c.Text[start:], grammar.Spaces)
}

// ConsumeKey consumes a map key and the key separator after it. The raw
// key is returned, still quoted if it was quoted.
func (c *Cursor) ConsumeKey() (string, error) {
	c.SkipSpace()
	start := c.Pos
	var key string
	if c.Peek() == grammar.Quote {
		k, err := c.ConsumeQuoted()
		if err != nil {
			return "", err
		}
		key = k
		c.SkipSpace()
	} else {
		for c.Pos < len(c.Text) && c.Text[c.Pos] != grammar.KeySep {
			switch c.Text[c.Pos] {
			case grammar.ItemSep, grammar.MapEnd, grammar.MapStart, grammar.ListStart, grammar.ListEnd:
				return "", apis.Malformed(c.Pos, "missing ':' after key")
			}
			c.Pos++
		}
		key = strings.TrimRight(c.Text[start:c.Pos], grammar.Spaces)
	}
	if c.Peek() != grammar.KeySep {
		return "", apis.Malformed(c.Pos, "missing ':' after key")
	}
	c.Pos++
	return key, nil
}

// ConsumeValue consumes one value unit, choosing the quoted, list, map or
// bare-token rule from the next non-whitespace byte.
func (c *Cursor) ConsumeValue() (string, error) {
	c.SkipSpace()
	switch c.Peek() {
	case grammar.Quote:
		return c.ConsumeQuoted()
	case grammar.ListStart:
		return c.ConsumeList()
	case grammar.MapStart:
		return c.ConsumeMap()
	default:
		return c.ConsumeToken(), nil
	}
}

// separator consumes the item separator between two units. It reports
// done=true at end of input.
func (c *Cursor) separator() (done bool, err error) {
	c.SkipSpace()
	if c.Eof() {
		return true, nil
	}
	if c.Peek() != grammar.ItemSep {
		return false, apis.Malformed(c.Pos, "expected ',' but found '"+string(c.Peek())+"'")
	}
	c.Pos++
	return false, nil
}
