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
	"log/slog"

	"dirpx.dev/jsv/policy"
)

// Config carries read-only knobs that influence how codecs are built and run.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// MaxDepth bounds the nesting depth of maps and lists on both the parse
	// and the write path. Acts as a safety guard against pathological input
	// and cyclic pointer graphs.
	MaxDepth int

	// KeyMatch selects how payload keys are matched to struct properties.
	KeyMatch policy.KeyMatch

	// UnsupportedProperty selects what happens to a struct field whose type
	// has no codec.
	UnsupportedProperty policy.Unsupported

	// ExcludeDefaultValues omits struct properties holding their type's
	// zero value when writing.
	ExcludeDefaultValues bool

	// IncludeNullValues writes nil pointers, slices, maps and interfaces as
	// empty tokens instead of omitting them.
	IncludeNullValues bool

	// ConvertObjectTypes makes the codec for `any` build map[string]any,
	// []any, bool, int64 and float64 values instead of returning the raw
	// unescaped text.
	ConvertObjectTypes bool

	// Logger receives build and parse diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Log returns c.Logger, or a logger that discards everything.
func (c Config) Log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return discard
}

var discard = slog.New(slog.DiscardHandler)
