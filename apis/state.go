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
	"bytes"
	"reflect"
)

// DefaultMaxDepth is used when Config.MaxDepth is not positive.
const DefaultMaxDepth = 64

// DecodeState is the per-call state threaded through codecs while parsing.
// It is created by the caller of the outermost Parse and never shared
// between goroutines.
type DecodeState struct {
	Config Config
	depth  int
}

// NewDecodeState returns a DecodeState for cfg.
func NewDecodeState(cfg Config) *DecodeState {
	return &DecodeState{Config: cfg}
}

// Enter records one more level of nesting for t and fails once the
// configured maximum depth is exceeded. Every successful Enter must be
// paired with Leave.
func (s *DecodeState) Enter(t reflect.Type) error {
	s.depth++
	if s.depth > maxDepth(s.Config) {
		s.depth--
		return &Error{Kind: KindMalformedInput, Type: t, Index: -1, Offset: -1, Msg: "maximum nesting depth exceeded"}
	}
	return nil
}

// Leave pops one level of nesting.
func (s *DecodeState) Leave() { s.depth-- }

// EncodeState is the per-call state threaded through codecs while writing.
// Codecs append to Buf; the façade only hands the buffer out once the whole
// value has been written.
type EncodeState struct {
	Config Config
	Buf    bytes.Buffer
	depth  int
}

// NewEncodeState returns an EncodeState for cfg.
func NewEncodeState(cfg Config) *EncodeState {
	return &EncodeState{Config: cfg}
}

// Enter records one more level of nesting for t. Writing a cyclic pointer
// graph trips this limit instead of recursing forever.
func (s *EncodeState) Enter(t reflect.Type) error {
	s.depth++
	if s.depth > maxDepth(s.Config) {
		s.depth--
		return &Error{Kind: KindUnsupportedType, Type: t, Index: -1, Offset: -1, Msg: "maximum nesting depth exceeded (cyclic value?)"}
	}
	return nil
}

// Leave pops one level of nesting.
func (s *EncodeState) Leave() { s.depth-- }

func maxDepth(cfg Config) int {
	if cfg.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return cfg.MaxDepth
}
