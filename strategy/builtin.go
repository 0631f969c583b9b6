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
	"strconv"
	"time"

	"dirpx.dev/jsv/apis"
	"dirpx.dev/jsv/grammar"
	"dirpx.dev/jsv/scanner"
)

var (
	timeType      = reflect.TypeFor[time.Time]()
	durationType  = reflect.TypeFor[time.Duration]()
	stringsType   = reflect.TypeFor[[]string]()
	intsType      = reflect.TypeFor[[]int]()
	stringMapType = reflect.TypeFor[map[string]string]()
)

// dateOnly is used for UTC midnight, the shortest lossless form.
const dateOnly = "2006-01-02"

// Builtin serves bool, the integer and float kinds, time.Time and
// time.Duration, plus fast paths for []string, []int and
// map[string]string that write and parse exactly like the generic
// collection codecs.
//
// Named numeric types that implement encoding.TextUnmarshaler are left to
// the Text strategy.
type Builtin struct{}

// NewBuiltin returns the built-in strategy.
func NewBuiltin() *Builtin { return &Builtin{} }

var _ apis.Strategy = (*Builtin)(nil)

// Name implements apis.Strategy.
func (*Builtin) Name() string { return "builtin" }

// TryBuild implements apis.Strategy.
func (*Builtin) TryBuild(t reflect.Type, _ apis.Lookup) (apis.Codec, bool, error) {
	switch t {
	case timeType:
		return timeCodec(), true, nil
	case durationType:
		return durationCodec(), true, nil
	case stringsType:
		return stringsCodec(), true, nil
	case intsType:
		return intsCodec(), true, nil
	case stringMapType:
		return stringMapCodec(), true, nil
	}

	if t.Name() != "" && t.PkgPath() != "" && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return nil, false, nil
	}
	switch t.Kind() {
	case reflect.Bool:
		return boolCodec(t), true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return intCodec(t), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return uintCodec(t), true, nil
	case reflect.Float32, reflect.Float64:
		return floatCodec(t), true, nil
	}
	return nil, false, nil
}

func boolCodec(t reflect.Type) apis.Codec {
	return scalar(t,
		func(text string) (reflect.Value, error) {
			b, err := strconv.ParseBool(text)
			if err != nil {
				return reflect.Value{}, apis.MalformedValue(t, err)
			}
			v := reflect.New(t).Elem()
			v.SetBool(b)
			return v, nil
		},
		func(v reflect.Value) (string, error) {
			return strconv.FormatBool(v.Bool()), nil
		},
	)
}

func intCodec(t reflect.Type) apis.Codec {
	return scalar(t,
		func(text string) (reflect.Value, error) {
			n, err := strconv.ParseInt(text, 10, t.Bits())
			if err != nil {
				return reflect.Value{}, apis.MalformedValue(t, err)
			}
			v := reflect.New(t).Elem()
			v.SetInt(n)
			return v, nil
		},
		func(v reflect.Value) (string, error) {
			return strconv.FormatInt(v.Int(), 10), nil
		},
	)
}

func uintCodec(t reflect.Type) apis.Codec {
	return scalar(t,
		func(text string) (reflect.Value, error) {
			n, err := strconv.ParseUint(text, 10, t.Bits())
			if err != nil {
				return reflect.Value{}, apis.MalformedValue(t, err)
			}
			v := reflect.New(t).Elem()
			v.SetUint(n)
			return v, nil
		},
		func(v reflect.Value) (string, error) {
			return strconv.FormatUint(v.Uint(), 10), nil
		},
	)
}

func floatCodec(t reflect.Type) apis.Codec {
	return scalar(t,
		func(text string) (reflect.Value, error) {
			f, err := strconv.ParseFloat(text, t.Bits())
			if err != nil {
				return reflect.Value{}, apis.MalformedValue(t, err)
			}
			v := reflect.New(t).Elem()
			v.SetFloat(f)
			return v, nil
		},
		func(v reflect.Value) (string, error) {
			return strconv.FormatFloat(v.Float(), 'g', -1, t.Bits()), nil
		},
	)
}

// timeLayouts are tried in order when parsing.
var timeLayouts = []string{time.RFC3339Nano, dateOnly, "2006-01-02T15:04:05.999999999"}

func timeCodec() apis.Codec {
	return scalar(timeType,
		func(text string) (reflect.Value, error) {
			var firstErr error
			for _, layout := range timeLayouts {
				tm, err := time.Parse(layout, text)
				if err == nil {
					return reflect.ValueOf(tm), nil
				}
				if firstErr == nil {
					firstErr = err
				}
			}
			return reflect.Value{}, apis.MalformedValue(timeType, firstErr)
		},
		func(v reflect.Value) (string, error) {
			tm := v.Interface().(time.Time)
			if tm.Location() == time.UTC && tm.Equal(tm.Truncate(24*time.Hour)) {
				return tm.Format(dateOnly), nil
			}
			return tm.Format(time.RFC3339Nano), nil
		},
	)
}

func durationCodec() apis.Codec {
	return scalar(durationType,
		func(text string) (reflect.Value, error) {
			d, err := time.ParseDuration(text)
			if err != nil {
				return reflect.Value{}, apis.MalformedValue(durationType, err)
			}
			return reflect.ValueOf(d), nil
		},
		func(v reflect.Value) (string, error) {
			return time.Duration(v.Int()).String(), nil
		},
	)
}

func stringsCodec() apis.Codec {
	return (&funcCodec{
		t: stringsType,
		parse: func(_ *apis.DecodeState, raw string) (reflect.Value, error) {
			items, err := scanner.Items(raw)
			if err != nil {
				return reflect.Value{}, err
			}
			out := make([]string, len(items))
			for i, item := range items {
				if out[i], err = scanner.Unquote(item); err != nil {
					return reflect.Value{}, apis.Element(stringsType, i, err)
				}
			}
			return reflect.ValueOf(out), nil
		},
		write: func(s *apis.EncodeState, v reflect.Value) error {
			s.Buf.WriteByte(grammar.ListStart)
			for i, item := range v.Interface().([]string) {
				if i > 0 {
					s.Buf.WriteByte(grammar.ItemSep)
				}
				writeString(s, item)
			}
			s.Buf.WriteByte(grammar.ListEnd)
			return nil
		},
	}).nullable()
}

func intsCodec() apis.Codec {
	return (&funcCodec{
		t: intsType,
		parse: func(_ *apis.DecodeState, raw string) (reflect.Value, error) {
			items, err := scanner.Items(raw)
			if err != nil {
				return reflect.Value{}, err
			}
			out := make([]int, len(items))
			for i, item := range items {
				if item == "" {
					continue
				}
				text, err := scanner.Unquote(item)
				if err == nil {
					out[i], err = strconv.Atoi(text)
				}
				if err != nil {
					return reflect.Value{}, apis.Element(intsType, i, apis.MalformedValue(intsType.Elem(), err))
				}
			}
			return reflect.ValueOf(out), nil
		},
		write: func(s *apis.EncodeState, v reflect.Value) error {
			s.Buf.WriteByte(grammar.ListStart)
			for i, n := range v.Interface().([]int) {
				if i > 0 {
					s.Buf.WriteByte(grammar.ItemSep)
				}
				s.Buf.WriteString(strconv.Itoa(n))
			}
			s.Buf.WriteByte(grammar.ListEnd)
			return nil
		},
	}).nullable()
}

func stringMapCodec() apis.Codec {
	return (&funcCodec{
		t: stringMapType,
		parse: func(_ *apis.DecodeState, raw string) (reflect.Value, error) {
			pairs, err := scanner.Pairs(raw)
			if err != nil {
				return reflect.Value{}, err
			}
			out := make(map[string]string, len(pairs))
			for i, p := range pairs {
				k, err := scanner.Unquote(p.Key)
				if err != nil {
					return reflect.Value{}, apis.Element(stringMapType, i, err)
				}
				if out[k], err = scanner.Unquote(p.Value); err != nil {
					return reflect.Value{}, apis.Element(stringMapType, i, err)
				}
			}
			return reflect.ValueOf(out), nil
		},
		write: func(s *apis.EncodeState, v reflect.Value) error {
			m := v.Interface().(map[string]string)
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			encoded := make(map[string]string, len(keys))
			for _, k := range keys {
				encoded[k] = grammar.Escape(k)
			}
			sort.Slice(keys, func(i, j int) bool { return encoded[keys[i]] < encoded[keys[j]] })

			s.Buf.WriteByte(grammar.MapStart)
			for i, k := range keys {
				if i > 0 {
					s.Buf.WriteByte(grammar.ItemSep)
				}
				s.Buf.WriteString(encoded[k])
				s.Buf.WriteByte(grammar.KeySep)
				writeString(s, m[k])
			}
			s.Buf.WriteByte(grammar.MapEnd)
			return nil
		},
	}).nullable()
}
