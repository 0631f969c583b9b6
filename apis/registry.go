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
	"io"
	"reflect"
)

// Registry resolves, caches and runs codecs keyed by reflect.Type.
// Implementations must be safe for concurrent use; a published codec is
// never replaced until Reset.
type Registry interface {
	// Lookup returns the codec for t, building and caching it on first use.
	// A type that cannot be supported is cached as failed and returns the
	// same error on every call.
	Lookup(t reflect.Type) (Codec, error)

	// Serialize writes v as JSV text.
	Serialize(v any) (string, error)
	// SerializeTo writes v as JSV text to w. Nothing is written on error.
	SerializeTo(w io.Writer, v any) error
	// Parse parses text as a value of type t.
	Parse(text string, t reflect.Type) (any, error)
	// Unmarshal parses text into the value pointed to by out.
	Unmarshal(text string, out any) error

	// RegisterEnum associates member names with the values of a named
	// integer type.
	RegisterEnum(t reflect.Type, members []EnumMember) error
	// RegisterFuncs installs custom parse/write functions for t. Both are
	// required; they take precedence over every other strategy.
	RegisterFuncs(t reflect.Type, parse ParseFunc, write WriteFunc) error
	// RegisterStringConstructor installs a constructor used to build t from
	// its unescaped text when no earlier strategy handles t.
	RegisterStringConstructor(t reflect.Type, ctor ParseFunc) error

	// Registrations returns a snapshot of the explicit registrations.
	Registrations() []Registration
	// Entries returns a snapshot of the cached codecs (order is unspecified).
	Entries() []Entry
	// Count returns the number of cached entries, failed ones included.
	Count() int
	// Reset drops every cached codec. Registrations are kept.
	Reset()
}

// ParseFunc builds a value from unescaped text.
type ParseFunc func(text string) (any, error)

// WriteFunc renders a value as text; the result is escaped by the caller.
type WriteFunc func(v any) (string, error)

// EnumMember is one named value of an enum type.
type EnumMember struct {
	Name  string
	Value int64
}

// Hooks are the explicit registrations attached to one type.
type Hooks struct {
	Enum  []EnumMember
	Parse ParseFunc
	Write WriteFunc
	Ctor  ParseFunc
}

// IsZero reports whether no hook is set.
func (h Hooks) IsZero() bool {
	return h.Enum == nil && h.Parse == nil && h.Write == nil && h.Ctor == nil
}

// Registration is a (type, hooks) pair in a Registry snapshot.
type Registration struct {
	Type  reflect.Type
	Hooks Hooks
}

// Entry is a single cached codec in a Registry snapshot.
type Entry struct {
	// Type is the resolved type.
	Type reflect.Type
	// Strategy names the strategy that claimed the type; empty when none
	// did.
	Strategy string
	// Err is the cached failure, nil when the codec is ready.
	Err error
}
