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

package builder

import (
	"dirpx.dev/jsv/apis"
	"dirpx.dev/jsv/registry"
	"dirpx.dev/jsv/resolver"
	"dirpx.dev/jsv/strategy"
)

// New creates and returns a new instance of an apis.Builder.
func New() apis.Builder {
	return &builder{}
}

// builder is an empty struct to be used as a receiver for builder methods.
type builder struct{}

// BuildResolver returns the default resolution chain. The previous resolver
// carries no state and is ignored.
func (b *builder) BuildResolver(_ apis.Config, _ apis.Resolver) apis.Resolver {
	return resolver.New(
		strategy.NewCustom(),
		strategy.NewSelf(),
		strategy.NewPointer(),
		strategy.NewEnum(),
		strategy.NewObject(),
		strategy.NewArray(),
		strategy.NewBuiltin(),
		strategy.NewSlice(),
		strategy.NewMap(),
		strategy.NewSet(),
		strategy.NewText(),
		strategy.NewStruct(),
		strategy.NewCtor(),
	)
}

// BuildRegistry builds and returns a new apis.Registry based on the provided
// configuration and resolver. If a pre-existing registry is provided, its
// explicit registrations are copied into the new registry; built codecs are
// not, since they depend on the configuration they were built with.
func (b *builder) BuildRegistry(cfg apis.Config, res apis.Resolver, prev apis.Registry) apis.Registry {
	if res == nil {
		res = b.BuildResolver(cfg, nil)
	}
	nreg := registry.New(cfg, res)
	if prev != nil {
		for _, r := range prev.Registrations() {
			migrate(nreg, r)
		}
	}
	return nreg
}

func migrate(reg apis.Registry, r apis.Registration) {
	h := r.Hooks
	if h.Enum != nil {
		_ = reg.RegisterEnum(r.Type, h.Enum)
	}
	if h.Parse != nil && h.Write != nil {
		_ = reg.RegisterFuncs(r.Type, h.Parse, h.Write)
	}
	if h.Ctor != nil {
		_ = reg.RegisterStringConstructor(r.Type, h.Ctor)
	}
}
