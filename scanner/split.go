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

package scanner

import (
	"dirpx.dev/jsv/apis"
	"dirpx.dev/jsv/grammar"
)

// Pair is one raw key/value of a map unit.
type Pair struct {
	Key   string
	Value string
}

// Items splits a list unit into its top-level raw items. "[]" yields no
// items; a separator followed by nothing yields an empty (omitted) item.
func Items(raw string) ([]string, error) {
	inner, err := interior(raw, grammar.ListStart, grammar.ListEnd, "list")
	if err != nil {
		return nil, err
	}
	c := New(inner)
	c.SkipSpace()
	if c.Eof() {
		return []string{}, nil
	}
	var items []string
	for {
		v, err := c.ConsumeValue()
		if err != nil {
			return nil, shift(err, 1)
		}
		items = append(items, v)
		done, err := c.separator()
		if err != nil {
			return nil, shift(err, 1)
		}
		if done {
			return items, nil
		}
	}
}

// Pairs splits a map unit into its top-level raw key/value pairs. A
// trailing separator is tolerated.
func Pairs(raw string) ([]Pair, error) {
	inner, err := interior(raw, grammar.MapStart, grammar.MapEnd, "map")
	if err != nil {
		return nil, err
	}
	c := New(inner)
	var pairs []Pair
	for {
		c.SkipSpace()
		if c.Eof() {
			return pairs, nil
		}
		k, err := c.ConsumeKey()
		if err != nil {
			return nil, shift(err, 1)
		}
		v, err := c.ConsumeValue()
		if err != nil {
			return nil, shift(err, 1)
		}
		pairs = append(pairs, Pair{Key: k, Value: v})
		done, err := c.separator()
		if err != nil {
			return nil, shift(err, 1)
		}
		if done {
			return pairs, nil
		}
	}
}

// Unquote validates a scalar unit and returns its string value. A quoted
// unit must be a single well-formed quoted string.
func Unquote(raw string) (string, error) {
	if raw == "" || raw[0] != grammar.Quote {
		return raw, nil
	}
	c := New(raw)
	q, err := c.ConsumeQuoted()
	if err != nil {
		return "", err
	}
	c.SkipSpace()
	if !c.Eof() {
		return "", apis.Malformed(c.Pos, "unexpected text after quoted value")
	}
	return grammar.Unescape(q), nil
}

// interior checks that raw is exactly one balanced unit delimited by open
// and close and returns the text between them.
func interior(raw string, open, close byte, what string) (string, error) {
	raw = grammar.TrimSpace(raw)
	if raw == "" || raw[0] != open {
		return "", apis.Malformed(0, what+" must start with '"+string(open)+"'")
	}
	c := New(raw)
	unit, err := c.consumeBalanced(open, close, what)
	if err != nil {
		return "", err
	}
	c.SkipSpace()
	if !c.Eof() {
		return "", apis.Malformed(c.Pos, "unexpected text after "+what)
	}
	return unit[1 : len(unit)-1], nil
}

// shift moves the offset of a scanner error from interior to unit
// coordinates.
func shift(err error, by int) error {
	if e, ok := err.(*apis.Error); ok && e.Offset >= 0 {
		e.Offset += by
	}
	return err
}
