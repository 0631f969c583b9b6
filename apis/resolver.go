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

// Resolver coordinates strategies to build a codec for a type.
type Resolver interface {
	// Build runs strategies in order until one handles t. It returns a
	// KindUnsupportedType error if none does. The name of the strategy that
	// handled t is returned for diagnostics.
	Build(t reflect.Type, lk Lookup) (c Codec, strategy string, err error)

	// Strategies returns the chain in priority order.
	Strategies() []Strategy
}
