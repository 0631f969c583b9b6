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

// Set serves map[T]struct{}, written as a list sorted by encoded member.
type Set struct{}

// NewSet returns the set strategy.
func NewSet() *Set { return &Set{} }

var _ apis.Strategy = (*Set)(nil)

// Name implements apis.Strategy.
func (*Set) Name() string { return "set" }

func isSet(t reflect.Type) bool {
	e := t.Elem()
	return e.Kind() == reflect.Struct && e.NumField() == 0
}

// TryBuild implements apis.Strategy.
func (*Set) TryBuild(t reflect.Type, lk apis.Lookup) (apis.Codec, bool, error) {
	if t.Kind() != reflect.Map || !isSet(t) {
		return nil, false, nil
	}
	member, err := lk.Codec(t.Key())
	if err != nil {
		return nil, true, wrapElem(t, "set member has no codec", err)
	}
	return &setCodec{t: t, member: member}, true, nil
}

type setCodec struct {
	t      reflect.Type
	member apis.Codec
}

func (c *setCodec) Type() reflect.Type { return c.t }

func (c *setCodec) Parse(s *apis.DecodeState, raw string) (reflect.Value, error) {
	if raw == "" {
		return reflect.Zero(c.t), nil
	}
	items, err := scanner.Items(raw)
	if err != nil {
		return reflect.Value{}, err
	}
	if err := s.Enter(c.t); err != nil {
		return reflect.Value{}, err
	}
	defer s.Leave()

	present := reflect.Zero(c.t.Elem())
	out := reflect.MakeMapWithSize(c.t, len(items))
	for i, item := range items {
		mv, err := c.member.Parse(s, item)
		if err != nil {
			return reflect.Value{}, apis.Element(c.t, i, err)
		}
		out.SetMapIndex(mv, present)
	}
	return out, nil
}

func (c *setCodec) Write(s *apis.EncodeState, v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	if err := s.Enter(c.t); err != nil {
		return err
	}
	defer s.Leave()

	members := make([]string, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		text, err := encodeString(s, c.member, iter.Key())
		if err != nil {
			return apis.Element(c.t, len(members), err)
		}
		members = append(members, text)
	}
	sort.Strings(members)

	s.Buf.WriteByte(grammar.ListStart)
	for i, m := range members {
		if i > 0 {
			s.Buf.WriteByte(grammar.ItemSep)
		}
		s.Buf.WriteString(m)
	}
	s.Buf.WriteByte(grammar.ListEnd)
	return nil
}
