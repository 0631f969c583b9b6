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
)

var (
	marshalerType   = reflect.TypeFor[apis.Marshaler]()
	unmarshalerType = reflect.TypeFor[apis.Unmarshaler]()
)

// Self serves non-pointer types that implement both apis.Marshaler and
// apis.Unmarshaler, on the value or on the pointer receiver.
type Self struct{}

// NewSelf returns the self-codec strategy.
func NewSelf() *Self { return &Self{} }

var _ apis.Strategy = (*Self)(nil)

// Name implements apis.Strategy.
func (*Self) Name() string { return "self" }

// TryBuild implements apis.Strategy.
func (*Self) TryBuild(t reflect.Type, _ apis.Lookup) (apis.Codec, bool, error) {
	if t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface {
		return nil, false, nil
	}
	pt := reflect.PointerTo(t)
	if !pt.Implements(unmarshalerType) || !pt.Implements(marshalerType) {
		return nil, false, nil
	}
	valueMarshal := t.Implements(marshalerType)

	return &funcCodec{
		t: t,
		parse: func(_ *apis.DecodeState, raw string) (reflect.Value, error) {
			p := reflect.New(t)
			if err := p.Interface().(apis.Unmarshaler).UnmarshalJSV(raw); err != nil {
				return reflect.Value{}, apis.MalformedValue(t, err)
			}
			return p.Elem(), nil
		},
		write: func(s *apis.EncodeState, v reflect.Value) error {
			var m apis.Marshaler
			if valueMarshal {
				m = v.Interface().(apis.Marshaler)
			} else {
				m = addressable(v).Interface().(apis.Marshaler)
			}
			text, err := m.MarshalJSV()
			if err != nil {
				return &apis.Error{Kind: apis.KindUnsupportedType, Type: t, Index: -1, Offset: -1, Msg: "MarshalJSV failed", Err: err}
			}
			s.Buf.WriteString(text)
			return nil
		},
	}, true, nil
}
