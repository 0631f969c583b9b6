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
	"fmt"
	"reflect"

	"dirpx.dev/jsv/apis"
	"dirpx.dev/jsv/grammar"
	"dirpx.dev/jsv/scanner"
)

// funcCodec adapts a pair of closures to apis.Codec. Scalar codecs are
// small enough that a struct per codec would add nothing.
type funcCodec struct {
	t     reflect.Type
	parse func(s *apis.DecodeState, raw string) (reflect.Value, error)
	write func(s *apis.EncodeState, v reflect.Value) error
}

var _ apis.Codec = (*funcCodec)(nil)

func (c *funcCodec) Type() reflect.Type { return c.t }

func (c *funcCodec) Parse(s *apis.DecodeState, raw string) (reflect.Value, error) {
	if raw == "" {
		return reflect.Zero(c.t), nil
	}
	return c.parse(s, raw)
}

func (c *funcCodec) Write(s *apis.EncodeState, v reflect.Value) error {
	return c.write(s, v)
}

// scalar builds a codec for a type whose text form is a single string:
// parse receives the unescaped text, format returns the unescaped text.
func scalar(t reflect.Type, parse func(string) (reflect.Value, error), format func(reflect.Value) (string, error)) *funcCodec {
	return &funcCodec{
		t: t,
		parse: func(_ *apis.DecodeState, raw string) (reflect.Value, error) {
			text, err := scanner.Unquote(raw)
			if err != nil {
				return reflect.Value{}, err
			}
			return parse(text)
		},
		write: func(s *apis.EncodeState, v reflect.Value) error {
			text, err := format(v)
			if err != nil {
				return err
			}
			writeString(s, text)
			return nil
		},
	}
}

// writeString appends text, quoted when it could be misread as structure.
func writeString(s *apis.EncodeState, text string) {
	if grammar.NeedsQuote(text) {
		grammar.AppendQuoted(&s.Buf, text)
		return
	}
	s.Buf.WriteString(text)
}

// encodeString runs c.Write into the shared buffer and cuts the result back
// out, so keys can be sorted by their encoded text.
func encodeString(s *apis.EncodeState, c apis.Codec, v reflect.Value) (string, error) {
	mark := s.Buf.Len()
	if err := c.Write(s, v); err != nil {
		s.Buf.Truncate(mark)
		return "", err
	}
	text := string(s.Buf.Bytes()[mark:])
	s.Buf.Truncate(mark)
	return text, nil
}

// assignable converts the result of a user hook into a value of type t.
func assignable(t reflect.Type, out any) (reflect.Value, error) {
	if out == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(out)
	if v.Type().AssignableTo(t) {
		if v.Type() == t {
			return v, nil
		}
		nv := reflect.New(t).Elem()
		nv.Set(v)
		return nv, nil
	}
	return reflect.Value{}, &apis.Error{
		Kind:   apis.KindAssignment,
		Type:   t,
		Index:  -1,
		Offset: -1,
		Msg:    fmt.Sprintf("value of type %s is not assignable to %s", v.Type(), t),
	}
}

// addressable returns an addressable copy of v when v is not addressable,
// so pointer-receiver methods can be called on it.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v.Addr()
	}
	p := reflect.New(v.Type())
	p.Elem().Set(v)
	return p
}

// wrapElem reports the failure of a nested type while building t.
func wrapElem(t reflect.Type, what string, cause error) error {
	return &apis.Error{
		Kind:   apis.KindUnsupportedType,
		Type:   t,
		Index:  -1,
		Offset: -1,
		Msg:    what,
		Err:    cause,
	}
}

// nullable makes a nil slice or map write nothing, the omitted state.
func (c *funcCodec) nullable() *funcCodec {
	write := c.write
	c.write = func(s *apis.EncodeState, v reflect.Value) error {
		if v.IsNil() {
			return nil
		}
		return write(s, v)
	}
	return c
}
