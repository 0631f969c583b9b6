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

// KeyMatch controls how map keys in a JSV payload are matched against
// the properties of a struct type.
//
// # Overview
//
// KeyMatch is consulted once per struct type, when its property plan is
// built: property names are normalized into the plan's lookup table, and
// every incoming key is normalized the same way before the lookup.
//
// # Values
//
//   - Exact: byte-for-byte comparison of key and property name.
//   - IgnoreCase: Unicode case-folded comparison.
//   - Lenient: case-folded comparison that also ignores '-' and '_',
//     so "first_name", "first-name" and "FirstName" all match.
//
// # Contract
//
//   - KeyMatch values are plain integers and safe for concurrent use.
//   - The zero value is Exact.
//   - Unknown keys never produce an error, whatever the mode.
type KeyMatch int

const (
	// Exact matches keys to property names byte-for-byte.
	Exact KeyMatch = iota

	// IgnoreCase matches keys to property names ignoring case.
	//
	// Two properties whose names differ only by case make the lookup
	// ambiguous; the property declared first wins.
	IgnoreCase

	// Lenient matches keys ignoring case, '-' and '_'.
	//
	// This is the most forgiving mode and is intended for payloads produced
	// by systems with different naming conventions (snake_case, kebab-case,
	// camelCase). Collisions are resolved like IgnoreCase.
	Lenient
)

// String returns a human-readable representation of the KeyMatch value.
//
// For unknown or out-of-range values, String returns "Unknown(<n>)" and
// never panics.
func (m KeyMatch) String() string {
	switch m {
	case Exact:
		return "Exact"
	case IgnoreCase:
		return "IgnoreCase"
	case Lenient:
		return "Lenient"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

var separators = strings.NewReplacer("-", "", "_", "")

// Normalize folds name into the canonical lookup form for mode m.
//
// Exact returns name unchanged. IgnoreCase lower-cases it. Lenient
// lower-cases it and strips '-' and '_'.
func (m KeyMatch) Normalize(name string) string {
	switch m {
	case IgnoreCase:
		return strings.ToLower(name)
	case Lenient:
		return separators.Replace(strings.ToLower(name))
	default:
		return name
	}
}

// ParseKeyMatch parses a textual representation of a KeyMatch.
//
// Accepted (case-insensitive, whitespace-trimmed) inputs are "Exact",
// "IgnoreCase" and "Lenient". Any other input results in a non-nil error
// and Exact.
func ParseKeyMatch(s string) (KeyMatch, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Exact, fmt.Errorf("policy: empty key match")
	}

	switch strings.ToLower(trimmed) {
	case "exact":
		return Exact, nil
	case "ignorecase":
		return IgnoreCase, nil
	case "lenient":
		return Lenient, nil
	default:
		return Exact, fmt.Errorf("policy: unknown key match %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
//
// Unknown values are rejected rather than persisted as "Unknown(n)".
func (m KeyMatch) MarshalText() ([]byte, error) {
	switch m {
	case Exact, IgnoreCase, Lenient:
		return []byte(m.String()), nil
	default:
		return nil, fmt.Errorf("policy: cannot marshal unknown key match %d", m)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
//
// On failure *m is left unchanged.
func (m *KeyMatch) UnmarshalText(text []byte) error {
	value, err := ParseKeyMatch(string(text))
	if err != nil {
		return err
	}
	*m = value
	return nil
}
