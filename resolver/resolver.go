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

package resolver

import (
	"reflect"
	"slices"

	"dirpx.dev/jsv/apis"
)

// New returns a resolver that consults strategies in the given order.
// Nil entries are dropped. The chain itself is immutable, so the resolver
// is safe for concurrent use as long as each strategy's TryBuild is.
func New(strategies ...apis.Strategy) apis.Resolver {
	out := make([]apis.Strategy, 0, len(strategies))
	for _, s := range strategies {
		if s != nil {
			out = append(out, s)
		}
	}
	return chain{strats: out}
}

type chain struct {
	strats []apis.Strategy
}

// Build asks each strategy in turn. The first one to claim t owns the
// outcome: its error is final and later strategies are not consulted.
func (r chain) Build(t reflect.Type, lk apis.Lookup) (apis.Codec, string, error) {
	if t == nil {
		return nil, "", apis.Unsupported(nil, "nil type")
	}
	for _, s := range r.strats {
		c, ok, err := s.TryBuild(t, lk)
		if !ok {
			continue
		}
		if err != nil {
			return nil, s.Name(), err
		}
		lk.Config().Log().Debug("jsv: codec built", "type", t.String(), "strategy", s.Name())
		return c, s.Name(), nil
	}
	return nil, "", apis.Unsupported(t, "no codec strategy applies")
}

// Strategies returns a copy of the chain in priority order.
func (r chain) Strategies() []apis.Strategy {
	return slices.Clone(r.strats)
}
