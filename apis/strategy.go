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

package apis

import (
	"reflect"
)

// Strategy is one step of codec resolution. A Resolver chains strategies
// in priority order (custom hooks, pointers, enums, ..., constructors).
type Strategy interface {
	// Name identifies the strategy in registry entries and diagnostics.
	Name() string

	// TryBuild builds a codec for t. It returns handled=false to fall
	// through to the next strategy. A non-nil error with handled=true means
	// the strategy owns t but t cannot be supported (e.g. a slice whose
	// element type has no codec).
	TryBuild(t reflect.Type, lk Lookup) (c Codec, handled bool, err error)
}

// Lookup is the view of the registry that strategies see while building.
// Codec may return a placeholder for a type still under construction; the
// placeholder becomes usable once the outer build completes, so strategies
// must not call Parse or Write on codecs obtained during TryBuild.
type Lookup interface {
	// Codec resolves the codec for a nested type.
	Codec(t reflect.Type) (Codec, error)
	// Hooks returns the explicit registrations for t.
	Hooks(t reflect.Type) Hooks
	// Config returns the configuration the registry was built with.
	Config() Config
	// Dynamic returns a resolver that is safe to call from Parse and Write,
	// for codecs that only learn the concrete type at run time.
	Dynamic() func(t reflect.Type) (Codec, error)
}
