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
	"fmt"
	"reflect"

	"dirpx.dev/jsv/apis"
)

var (
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
	stringerType      = reflect.TypeFor[fmt.Stringer]()
)

// Text serves types whose pointer implements encoding.TextUnmarshaler.
// They are written through encoding.TextMarshaler, else fmt.Stringer; a
// type with neither falls through.
type Text struct{}

// NewText returns the parse-from-text strategy.
func NewText() *Text { return &Text{} }

var _ apis.Strategy = (*Text)(nil)

// Name implements apis.Strategy.
func (*Text) Name() string { return "text" }

// TryBuild implements apis.Strategy.
func (*Text) TryBuild(t reflect.Type, _ apis.Lookup) (apis.Codec, bool, error) {
	if t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface {
		return nil, false, nil
	}
	if !reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return nil, false, nil
	}
	format := formatter(t)
	if format == nil {
		return nil, false, nil
	}
	return scalar(t,
		func(text string) (reflect.Value, error) {
			p := reflect.New(t)
			if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text)); err != nil {
				return reflect.Value{}, apis.MalformedValue(t, err)
			}
			return p.Elem(), nil
		},
		format,
	), true, nil
}

// formatter returns the text writer for t: TextMarshaler first, then
// Stringer, on the value or the pointer receiver. Nil if t has neither.
func formatter(t reflect.Type) func(reflect.Value) (string, error) {
	pt := reflect.PointerTo(t)
	switch {
	case t.Implements(textMarshalerType):
		return func(v reflect.Value) (string, error) {
			b, err := v.Interface().(encoding.TextMarshaler).MarshalText()
			return string(b), err
		}
	case pt.Implements(textMarshalerType):
		return func(v reflect.Value) (string, error) {
			b, err := addressable(v).Interface().(encoding.TextMarshaler).MarshalText()
			return string(b), err
		}
	case t.Implements(stringerType):
		return func(v reflect.Value) (string, error) {
			return v.Interface().(fmt.Stringer).String(), nil
		}
	case pt.Implements(stringerType):
		return func(v reflect.Value) (string, error) {
			return addressable(v).Interface().(fmt.Stringer).String(), nil
		}
	}
	return nil
}
