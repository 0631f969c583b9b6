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

// Codec is the paired parse/write functions for one Go type.
//
// Codecs are immutable once published by a Registry and safe for
// concurrent use.
type Codec interface {
	// Type returns the Go type this codec handles.
	Type() reflect.Type

	// Parse converts one raw syntactic unit into a value of Type().
	// An empty raw string is the "omitted" state and yields the zero value
	// (nil for pointers, slices and maps).
	Parse(s *DecodeState, raw string) (reflect.Value, error)

	// Write appends the JSV text of v, which must be of Type(), to s.
	Write(s *EncodeState, v reflect.Value) error
}

// Marshaler is implemented by types that write their own JSV text.
// The returned text is emitted verbatim and must be a single syntactic unit.
type Marshaler interface {
	MarshalJSV() (string, error)
}

// Unmarshaler is implemented by types that parse their own JSV text.
// UnmarshalJSV receives the raw unit exactly as it appeared in the payload.
type Unmarshaler interface {
	UnmarshalJSV(raw string) error
}
