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

// Custom serves types with parse and write funcs registered through
// Registry.RegisterFuncs. It runs before every other strategy, so a
// registration overrides whatever the type would otherwise resolve to.
type Custom struct{}

// NewCustom returns the custom-funcs strategy.
func NewCustom() *Custom { return &Custom{} }

var _ apis.Strategy = (*Custom)(nil)

// Name implements apis.Strategy.
func (*Custom) Name() string { return "custom" }

// TryBuild implements apis.Strategy.
func (*Custom) TryBuild(t reflect.Type, lk apis.Lookup) (apis.Codec, bool, error) {
	h := lk.Hooks(t)
	if h.Parse == nil || h.Write == nil {
		return nil, false, nil
	}
	parse, write := h.Parse, h.Write
	return scalar(t,
		func(text string) (reflect.Value, error) {
			out, err := parse(text)
			if err != nil {
				return reflect.Value{}, apis.MalformedValue(t, err)
			}
			return assignable(t, out)
		},
		func(v reflect.Value) (string, error) {
			return write(v.Interface())
		},
	), true, nil
}
