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

	"dirpx.dev/jsv/apis"
	"dirpx.dev/jsv/grammar"
	"dirpx.dev/jsv/scanner"
)

// Slice serves []T. "[]" parses to an empty non-nil slice, an omitted
// token to nil. A nil slice writes nothing.
type Slice struct{}

// NewSlice returns the ordered-collection strategy.
func NewSlice() *Slice { return &Slice{} }

var _ apis.Strategy = (*Slice)(nil)

// Name implements apis.Strategy.
func (*Slice) Name() string { return "slice" }

// TryBuild implements apis.Strategy.
func (*Slice) TryBuild(t reflect.Type, lk apis.Lookup) (apis.Codec, bool, error) {
	if t.Kind() != reflect.Slice {
		return nil, false, nil
	}
	elem, err := lk.Codec(t.Elem())
	if err != nil {
		return nil, true, wrapElem(t, "slice element has no codec", err)
	}
	return &sliceCodec{t: t, elem: elem}, true, nil
}

type sliceCodec struct {
	t    reflect.Type
	elem apis.Codec
}

func (c *sliceCodec) Type() reflect.Type { return c.t }

func (c *sliceCodec) Parse(s *apis.DecodeState, raw string) (reflect.Value, error) {
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

	out := reflect.MakeSlice(c.t, len(items), len(items))
	for i, item := range items {
		ev, err := c.elem.Parse(s, item)
		if err != nil {
			return reflect.Value{}, apis.Element(c.t, i, err)
		}
		out.Index(i).Set(ev)
	}
	return out, nil
}

func (c *sliceCodec) Write(s *apis.EncodeState, v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	if err := s.Enter(c.t); err != nil {
		return err
	}
	defer s.Leave()

	s.Buf.WriteByte(grammar.ListStart)
	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			s.Buf.WriteByte(grammar.ItemSep)
		}
		if err := c.elem.Write(s, v.Index(i)); err != nil {
			return apis.Element(c.t, i, err)
		}
	}
	s.Buf.WriteByte(grammar.ListEnd)
	return nil
}
