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

// Pointer serves *T. An omitted token parses to nil, anything else is
// handed to the codec of T and stored behind a fresh pointer. A nil pointer
// writes nothing.
type Pointer struct{}

// NewPointer returns the nullable-wrapper strategy.
func NewPointer() *Pointer { return &Pointer{} }

var _ apis.Strategy = (*Pointer)(nil)

// Name implements apis.Strategy.
func (*Pointer) Name() string { return "pointer" }

// TryBuild implements apis.Strategy.
func (*Pointer) TryBuild(t reflect.Type, lk apis.Lookup) (apis.Codec, bool, error) {
	if t.Kind() != reflect.Pointer {
		return nil, false, nil
	}
	elem, err := lk.Codec(t.Elem())
	if err != nil {
		return nil, true, wrapElem(t, "pointer target has no codec", err)
	}
	return &pointerCodec{t: t, elem: elem}, true, nil
}

type pointerCodec struct {
	t    reflect.Type
	elem apis.Codec
}

func (c *pointerCodec) Type() reflect.Type { return c.t }

func (c *pointerCodec) Parse(s *apis.DecodeState, raw string) (reflect.Value, error) {
	if raw == "" {
		return reflect.Zero(c.t), nil
	}
	ev, err := c.elem.Parse(s, raw)
	if err != nil {
		return reflect.Value{}, err
	}
	p := reflect.New(c.t.Elem())
	p.Elem().Set(ev)
	return p, nil
}

func (c *pointerCodec) Write(s *apis.EncodeState, v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	if err := s.Enter(c.t); err != nil {
		return err
	}
	defer s.Leave()
	return c.elem.Write(s, v.Elem())
}
