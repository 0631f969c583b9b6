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
	"strconv"

	"dirpx.dev/jsv/apis"
	"dirpx.dev/jsv/grammar"
	"dirpx.dev/jsv/scanner"
)

// Object serves the empty interface. Writing dispatches on the dynamic
// type. Parsing yields the unescaped text, or a map[string]any / []any /
// bool / int64 / float64 graph when Config.ConvertObjectTypes is set.
type Object struct{}

// NewObject returns the strategy for `any`.
func NewObject() *Object { return &Object{} }

var _ apis.Strategy = (*Object)(nil)

// Name implements apis.Strategy.
func (*Object) Name() string { return "object" }

// TryBuild implements apis.Strategy.
func (*Object) TryBuild(t reflect.Type, lk apis.Lookup) (apis.Codec, bool, error) {
	if t.Kind() != reflect.Interface || t.NumMethod() != 0 {
		return nil, false, nil
	}
	return &objectCodec{t: t, dynamic: lk.Dynamic()}, true, nil
}

type objectCodec struct {
	t       reflect.Type
	dynamic func(reflect.Type) (apis.Codec, error)
}

func (c *objectCodec) Type() reflect.Type { return c.t }

func (c *objectCodec) Parse(s *apis.DecodeState, raw string) (reflect.Value, error) {
	if raw == "" {
		return reflect.Zero(c.t), nil
	}
	var (
		x   any
		err error
	)
	if s.Config.ConvertObjectTypes {
		x, err = convertObject(s, raw)
	} else {
		x, err = identity(raw)
	}
	if err != nil || x == nil {
		return reflect.Zero(c.t), err
	}
	out := reflect.New(c.t).Elem()
	out.Set(reflect.ValueOf(x))
	return out, nil
}

func (c *objectCodec) Write(s *apis.EncodeState, v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	dv := v.Elem()
	dc, err := c.dynamic(dv.Type())
	if err != nil {
		return err
	}
	return dc.Write(s, dv)
}

// identity returns quoted scalars unescaped and everything else verbatim.
func identity(raw string) (any, error) {
	if grammar.IsQuoted(raw) {
		return scanner.Unquote(raw)
	}
	return raw, nil
}

func convertObject(s *apis.DecodeState, raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	switch raw[0] {
	case grammar.MapStart:
		pairs, err := scanner.Pairs(raw)
		if err != nil {
			return nil, err
		}
		if err := s.Enter(nil); err != nil {
			return nil, err
		}
		defer s.Leave()
		m := make(map[string]any, len(pairs))
		for _, p := range pairs {
			k, err := scanner.Unquote(p.Key)
			if err != nil {
				return nil, err
			}
			if m[k], err = convertObject(s, p.Value); err != nil {
				return nil, err
			}
		}
		return m, nil
	case grammar.ListStart:
		items, err := scanner.Items(raw)
		if err != nil {
			return nil, err
		}
		if err := s.Enter(nil); err != nil {
			return nil, err
		}
		defer s.Leave()
		l := make([]any, len(items))
		for i, item := range items {
			if l[i], err = convertObject(s, item); err != nil {
				return nil, apis.Element(nil, i, err)
			}
		}
		return l, nil
	case grammar.Quote:
		return scanner.Unquote(raw)
	}
	switch raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f, nil
	}
	return raw, nil
}
