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
	"dirpx.dev/jsv/policy"
	"dirpx.dev/jsv/scanner"
	uref "dirpx.dev/jsv/utils/reflect"
)

// Struct serves struct types as JSV objects over their exported fields.
//
// The property plan is computed once: every field is resolved to a codec
// and keys are matched through a lookup table normalized for
// Config.KeyMatch. Fields without a codec are dropped with a warning, or
// fail the whole type under policy.Fail. A struct left with no usable
// field falls through to the next strategy.
type Struct struct{}

// NewStruct returns the object strategy.
func NewStruct() *Struct { return &Struct{} }

var _ apis.Strategy = (*Struct)(nil)

// Name implements apis.Strategy.
func (*Struct) Name() string { return "struct" }

type property struct {
	name      string
	index     []int
	codec     apis.Codec
	omitEmpty bool
}

// TryBuild implements apis.Strategy.
func (*Struct) TryBuild(t reflect.Type, lk apis.Lookup) (apis.Codec, bool, error) {
	if t.Kind() != reflect.Struct {
		return nil, false, nil
	}
	fields, err := uref.Fields(t)
	if err != nil {
		return nil, true, apis.Unsupported(t, err.Error())
	}

	cfg := lk.Config()
	props := make([]property, 0, len(fields))
	for _, f := range fields {
		c, err := lk.Codec(f.Type)
		if err != nil {
			if cfg.UnsupportedProperty == policy.Fail {
				return nil, true, apis.Property(t, f.Name, err)
			}
			cfg.Log().Warn("jsv: skipping unsupported property",
				"type", t.String(), "property", f.Name, "error", err)
			continue
		}
		props = append(props, property{name: f.Name, index: f.Index, codec: c, omitEmpty: f.OmitEmpty})
	}
	if len(props) == 0 {
		return nil, false, nil
	}

	byKey := make(map[string]int, len(props))
	for i, p := range props {
		k := cfg.KeyMatch.Normalize(p.name)
		if _, taken := byKey[k]; !taken {
			byKey[k] = i
		}
	}
	return &structCodec{t: t, props: props, byKey: byKey, match: cfg.KeyMatch}, true, nil
}

type structCodec struct {
	t     reflect.Type
	props []property
	byKey map[string]int
	match policy.KeyMatch
}

func (c *structCodec) Type() reflect.Type { return c.t }

func (c *structCodec) Parse(s *apis.DecodeState, raw string) (reflect.Value, error) {
	out := reflect.New(c.t).Elem()
	if raw == "" {
		return out, nil
	}
	pairs, err := scanner.Pairs(raw)
	if err != nil {
		return reflect.Value{}, err
	}
	if err := s.Enter(c.t); err != nil {
		return reflect.Value{}, err
	}
	defer s.Leave()

	for _, pair := range pairs {
		key, err := scanner.Unquote(pair.Key)
		if err != nil {
			return reflect.Value{}, err
		}
		i, ok := c.byKey[c.match.Normalize(key)]
		if !ok {
			s.Config.Log().Debug("jsv: ignoring unknown key", "type", c.t.String(), "key", key)
			continue
		}
		p := c.props[i]
		val, err := p.codec.Parse(s, pair.Value)
		if err != nil {
			return reflect.Value{}, apis.Property(c.t, p.name, err)
		}
		dst, _ := uref.FieldByIndex(out, p.index, true)
		if err := assign(c.t, p.name, dst, val); err != nil {
			return reflect.Value{}, err
		}
	}
	return out, nil
}

func (c *structCodec) Write(s *apis.EncodeState, v reflect.Value) error {
	if err := s.Enter(c.t); err != nil {
		return err
	}
	defer s.Leave()

	cfg := s.Config
	first := true
	s.Buf.WriteByte(grammar.MapStart)
	for _, p := range c.props {
		fv, ok := uref.FieldByIndex(v, p.index, false)
		if !ok {
			continue
		}
		if uref.IsNil(fv) {
			if !cfg.IncludeNullValues {
				continue
			}
		} else if (p.omitEmpty || cfg.ExcludeDefaultValues) && fv.IsZero() {
			continue
		}
		if !first {
			s.Buf.WriteByte(grammar.ItemSep)
		}
		first = false
		writeString(s, p.name)
		s.Buf.WriteByte(grammar.KeySep)
		if err := p.codec.Write(s, fv); err != nil {
			return apis.Property(c.t, p.name, err)
		}
	}
	s.Buf.WriteByte(grammar.MapEnd)
	return nil
}

// assign stores val into dst, turning a type mismatch or reflect panic into
// a KindAssignment error.
func assign(t reflect.Type, name string, dst, val reflect.Value) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apis.Assignment(t, name, fmt.Sprint(r))
		}
	}()
	if !val.IsValid() {
		dst.SetZero()
		return nil
	}
	if !val.Type().AssignableTo(dst.Type()) {
		return apis.Assignment(t, name, fmt.Sprintf("cannot assign %s to %s", val.Type(), dst.Type()))
	}
	dst.Set(val)
	return nil
}
