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

package strategy

import (
	"reflect"
	"sort"

	"dirpx.dev/jsv/apis"
	"dirpx.dev/jsv/grammar"
	"dirpx.dev/jsv/scanner"
)

// Map serves map[K]V other than sets. Entries are written in the order of
// their encoded keys, so output is deterministic. Keys whose encoded form
// is itself a map or list are quoted.
type Map struct{}

// NewMap returns the dictionary strategy.
func NewMap() *Map { return &Map{} }

var _ apis.Strategy = (*Map)(nil)

// Name implements apis.Strategy.
func (*Map) Name() string { return "map" }

// TryBuild implements apis.Strategy.
func (*Map) TryBuild(t reflect.Type, lk apis.Lookup) (apis.Codec, bool, error) {
	if t.Kind() != reflect.Map || isSet(t) {
		return nil, false, nil
	}
	key, err := lk.Codec(t.Key())
	if err != nil {
		return nil, true, wrapElem(t, "map key has no codec", err)
	}
	elem, err := lk.Codec(t.Elem())
	if err != nil {
		return nil, true, wrapElem(t, "map value has no codec", err)
	}
	return &mapCodec{t: t, key: key, elem: elem}, true, nil
}

type mapCodec struct {
	t    reflect.Type
	key  apis.Codec
	elem apis.Codec
}

func (c *mapCodec) Type() reflect.Type { return c.t }

func (c *mapCodec) Parse(s *apis.DecodeState, raw string) (reflect.Value, error) {
	if raw == "" {
		return reflect.Zero(c.t), nil
	}
	pairs, err := scanner.Pairs(raw)
	if err != nil {
		return reflect.Value{}, err
	}
	if err := s.Enter(c.t); err != nil {
		return reflect.Value{}, err
	}
	defer s.Leave()

	out := reflect.MakeMapWithSize(c.t, len(pairs))
	for i, p := range pairs {
		kv, err := parseKey(s, c.key, p.Key)
		if err != nil {
			return reflect.Value{}, apis.Element(c.t, i, err)
		}
		ev, err := c.elem.Parse(s, p.Value)
		if err != nil {
			return reflect.Value{}, apis.Element(c.t, i, err)
		}
		out.SetMapIndex(kv, ev)
	}
	return out, nil
}

func (c *mapCodec) Write(s *apis.EncodeState, v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	if err := s.Enter(c.t); err != nil {
		return err
	}
	defer s.Leave()

	type entry struct {
		key string
		val reflect.Value
	}
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k, err := writeKey(s, c.key, iter.Key())
		if err != nil {
			return apis.Element(c.t, len(entries), err)
		}
		entries = append(entries, entry{key: k, val: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	s.Buf.WriteByte(grammar.MapStart)
	for i, e := range entries {
		if i > 0 {
			s.Buf.WriteByte(grammar.ItemSep)
		}
		s.Buf.WriteString(e.key)
		s.Buf.WriteByte(grammar.KeySep)
		if err := c.elem.Write(s, e.val); err != nil {
			return apis.Element(c.t, i, err)
		}
	}
	s.Buf.WriteByte(grammar.MapEnd)
	return nil
}

// writeKey encodes a key as a scalar. A map or list form is quoted so
// the key scanner sees a single token.
func writeKey(s *apis.EncodeState, c apis.Codec, k reflect.Value) (string, error) {
	text, err := encodeString(s, c, k)
	if err != nil {
		return "", err
	}
	if text != "" && (text[0] == grammar.MapStart || text[0] == grammar.ListStart) {
		return grammar.QuoteString(text), nil
	}
	if text == "" {
		return grammar.Empty, nil
	}
	return text, nil
}

// parseKey undoes writeKey.
func parseKey(s *apis.DecodeState, c apis.Codec, raw string) (reflect.Value, error) {
	if grammar.IsQuoted(raw) {
		text, err := scanner.Unquote(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		if text != "" && (text[0] == grammar.MapStart || text[0] == grammar.ListStart) {
			return c.Parse(s, text)
		}
	}
	return c.Parse(s, raw)
}
