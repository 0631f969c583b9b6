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
)

// Ctor serves types with a constructor registered through
// Registry.RegisterStringConstructor. It is the last step of the chain,
// so collections and structs with usable fields win over a constructor.
// Values are written through TextMarshaler or Stringer, else fmt.Sprint.
type Ctor struct{}

// NewCtor returns the string-constructor strategy.
func NewCtor() *Ctor { return &Ctor{} }

var _ apis.Strategy = (*Ctor)(nil)

// Name implements apis.Strategy.
func (*Ctor) Name() string { return "ctor" }

// TryBuild implements apis.Strategy.
func (*Ctor) TryBuild(t reflect.Type, lk apis.Lookup) (apis.Codec, bool, error) {
	ctor := lk.Hooks(t).Ctor
	if ctor == nil {
		return nil, false, nil
	}
	format := formatter(t)
	if format == nil {
		format = func(v reflect.Value) (string, error) {
			return fmt.Sprint(v.Interface()), nil
		}
	}
	return scalar(t,
		func(text string) (reflect.Value, error) {
			out, err := ctor(text)
			if err != nil {
				return reflect.Value{}, apis.MalformedValue(t, err)
			}
			return assignable(t, out)
		},
		format,
	), true, nil
}
