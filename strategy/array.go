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
	"encoding"
	"encoding/base64"
	"fmt"
	"reflect"

	"dirpx.dev/jsv/apis"
	"dirpx.dev/jsv/grammar"
	"dirpx.dev/jsv/scanner"
)

var (
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	byteType            = reflect.TypeFor[byte]()
)

// Array serves fixed-arity [N]T arrays and []byte, which is written as
// standard base64. Only slices of the builtin byte qualify: a slice of a
// named uint8 type such as an enum is a list like any other. Named arrays
// that parse themselves from text (uuid.UUID and friends) are left to the
// Text strategy.
type Array struct{}

// NewArray returns the array strategy.
func NewArray() *Array { return &Array{} }

var _ apis.Strategy = (*Array)(nil)

// Name implements apis.Strategy.
func (*Array) Name() string { return "array" }

// TryBuild implements apis.Strategy.
func (*Array) TryBuild(t reflect.Type, lk apis.Lookup) (apis.Codec, bool, error) {
	switch t.Kind() {
	case reflect.Slice:
		if t.Elem() == byteType && lk.Hooks(byteType).IsZero() {
			return bytesCodec(t), true, nil
		}
		return nil, false, nil
	case reflect.Array:
		if t.Name() != "" && reflect.PointerTo(t).Implements(textUnmarshalerType) {
			return nil, false, nil
		}
		elem, err := lk.Codec(t.Elem())
		if err != nil {
			return nil, true, wrapElem(t, "array element has no codec", err)
		}
		return &arrayCodec{t: t, elem: elem}, true, nil
	}
	return nil, false, nil
}

func bytesCodec(t reflect.Type) apis.Codec {
	return scalar(t,
		func(text string) (reflect.Value, error) {
			b, err := base64.StdEncoding.DecodeString(text)
			if err != nil {
				return reflect.Value{}, apis.MalformedValue(t, err)
			}
			return reflect.ValueOf(b).Convert(t), nil
		},
		func(v reflect.Value) (string, error) {
			return base64.StdEncoding.EncodeToString(v.Bytes()), nil
		},
	).nullable()
}

type arrayCodec struct {
	t    reflect.Type
	elem apis.Codec
}

func (c *arrayCodec) Type() reflect.Type { return c.t }

func (c *arrayCodec) Parse(s *apis.DecodeState, raw string) (reflect.Value, error) {
	out := reflect.New(c.t).Elem()
	if raw == "" {
		return out, nil
	}
	items, err := scanner.Items(raw)
	if err != nil {
		return reflect.Value{}, err
	}
	if len(items) > c.t.Len() {
		return reflect.Value{}, apis.MalformedValue(c.t, fmt.Errorf("%d items for an array of length %d", len(items), c.t.Len()))
	}
	if err := s.Enter(c.t); err != nil {
		return reflect.Value{}, err
	}
	defer s.Leave()
	for i, item := range items {
		ev, err := c.elem.Parse(s, item)
		if err != nil {
			return reflect.Value{}, apis.Element(c.t, i, err)
		}
		out.Index(i).Set(ev)
	}
	return out, nil
}

func (c *arrayCodec) Write(s *apis.EncodeState, v reflect.Value) error {
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
