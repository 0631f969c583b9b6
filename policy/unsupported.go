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

package policy

import (
	"fmt"
	"strings"
)

// Unsupported selects what a struct codec does with a property whose type
// has no derivable codec.
//
// # Overview
//
// A struct codec is built once per type. While building it, every exported
// field is resolved to its own codec. When a field cannot be resolved (a
// func, a chan, an interface other than any, ...) the build consults this
// policy:
//
//   - Skip: the field is left out of the property plan and a warning is
//     logged. Parsing and writing the owning type still work; the field
//     keeps its zero value.
//   - Fail: the owning type itself becomes unsupported.
//
// Skip is the default.
type Unsupported int

const (
	// Skip drops unresolvable properties from the plan with a diagnostic.
	Skip Unsupported = iota

	// Fail makes the owning struct type unsupported.
	Fail
)

// String returns "Skip", "Fail" or "Unknown(<n>)".
func (u Unsupported) String() string {
	switch u {
	case Skip:
		return "Skip"
	case Fail:
		return "Fail"
	default:
		return fmt.Sprintf("Unknown(%d)", u)
	}
}

// ParseUnsupported parses "Skip" or "Fail" (case-insensitive).
func ParseUnsupported(s string) (Unsupported, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Skip, fmt.Errorf("policy: empty unsupported-property policy")
	}

	switch strings.ToLower(trimmed) {
	case "skip":
		return Skip, nil
	case "fail":
		return Fail, nil
	default:
		return Skip, fmt.Errorf("policy: unknown unsupported-property policy %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (u Unsupported) MarshalText() ([]byte, error) {
	switch u {
	case Skip, Fail:
		return []byte(u.String()), nil
	default:
		return nil, fmt.Errorf("policy: cannot marshal unknown unsupported-property policy %d", u)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Unsupported) UnmarshalText(text []byte) error {
	value, err := ParseUnsupported(string(text))
	if err != nil {
		return err
	}
	*u = value
	return nil
}
