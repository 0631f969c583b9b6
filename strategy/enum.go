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
	"strconv"

	"dirpx.dev/jsv/apis"
)

// Enum serves registered enums and every type of kind string.
//
// A registered enum writes the member name and parses it back by name.
// Unknown names are a hard failure; bare integers are accepted so values
// outside the member list, which are written numerically, round-trip.
type Enum struct{}

// NewEnum returns the enum and string strategy.
func NewEnum() *Enum { return &Enum{} }

var _ apis.Strategy = (*Enum)(nil)

// Name implements apis.Strategy.
func (*Enum) Name() string { return "enum" }

// TryBuild implements apis.Strategy.
func (*Enum) TryBuild(t reflect.Type, lk apis.Lookup) (apis.Codec, bool, error) {
	if members := lk.Hooks(t).Enum; members != nil {
		c, err := enumCodec(t, members)
		return c, true, err
	}
	if t.Kind() == reflect.String {
		return stringCodec(t), true, nil
	}
	return nil, false, nil
}

func stringCodec(t reflect.Type) apis.Codec {
	return scalar(t,
		func(text string) (reflect.Value, error) {
			return reflect.ValueOf(text).Convert(t), nil
		},
		func(v reflect.Value) (string, error) {
			return v.String(), nil
		},
	)
}

func enumCodec(t reflect.Type, members []apis.EnumMember) (apis.Codec, error) {
	signed := false
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		signed = true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return nil, apis.Unsupported(t, "enum must have an integer kind")
	}

	byName := make(map[string]int64, len(members))
	byValue := make(map[int64]string, len(members))
	for _, m := range members {
		byName[m.Name] = m.Value
		if _, dup := byValue[m.Value]; !dup {
			byValue[m.Value] = m.Name
		}
	}

	return scalar(t,
		func(text string) (reflect.Value, error) {
			n, ok := byName[text]
			v := reflect.New(t).Elem()
			if signed {
				if !ok {
					var err error
					if n, err = strconv.ParseInt(text, 10, 64); err != nil {
						return reflect.Value{}, apis.MalformedValue(t, fmt.Errorf("unknown member %q", text))
					}
				}
				if v.OverflowInt(n) {
					return reflect.Value{}, apis.MalformedValue(t, fmt.Errorf("value %d overflows %s", n, t))
				}
				v.SetInt(n)
				return v, nil
			}
			// Unsigned members are stored as the int64 bit pattern.
			u := uint64(n)
			if !ok {
				var err error
				if u, err = strconv.ParseUint(text, 10, 64); err != nil {
					return reflect.Value{}, apis.MalformedValue(t, fmt.Errorf("unknown member %q", text))
				}
			}
			if v.OverflowUint(u) {
				return reflect.Value{}, apis.MalformedValue(t, fmt.Errorf("value %d overflows %s", u, t))
			}
			v.SetUint(u)
			return v, nil
		},
		func(v reflect.Value) (string, error) {
			if signed {
				if name, ok := byValue[v.Int()]; ok {
					return name, nil
				}
				return strconv.FormatInt(v.Int(), 10), nil
			}
			if name, ok := byValue[int64(v.Uint())]; ok {
				return name, nil
			}
			return strconv.FormatUint(v.Uint(), 10), nil
		},
	), nil
}
