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

// Package jsv provides a global, process-wide JSV text codec.
//
// JSV is a compact JSON-like text format: maps are written {key:value,...},
// lists [item,...], and scalars bare unless they contain one of the
// structural characters { } [ ] : , " or are empty, in which case they are
// quoted and embedded quotes are doubled. There is no literal null; an
// absent value is simply omitted.
//
//	type Person struct {
//		Name string
//		Age  int
//		Tags []string
//	}
//
//	s, _ := jsv.Serialize(Person{Name: "Jimi Hendrix", Age: 27, Tags: []string{"a,b"}})
//	// {Name:Jimi Hendrix,Age:27,Tags:["a,b"]}
//
//	p, _ := jsv.Parse[Person](s)
//
// # Design
//
// The core of jsv is a read-mostly global snapshot (state). The snapshot
// holds four things:
//
//   - Config: knobs that control how codecs are built and run (nesting
//     depth limit, key matching, null and default handling, logging).
//
//   - Resolver: the ordered chain of strategies that derives a codec for a
//     Go type. The first strategy that claims a type wins:
//     custom funcs, MarshalJSV/UnmarshalJSV, pointers, enums and strings,
//     any, arrays and []byte, built-in scalars and time types, slices,
//     maps, sets, encoding.TextUnmarshaler, structs, string constructors.
//
//   - Registry: the process-wide cache of codecs keyed by reflect.Type,
//     plus explicit registrations (enums, custom funcs, constructors).
//     Codecs are built once per type, on first use, and reused
//     afterwards. Types that cannot be supported are cached as failures.
//
//   - Builder: a pluggable factory that constructs Resolver and Registry
//     instances for a given Config and migrates registrations from the
//     previous registry.
//
// All of these live inside a single immutable struct called state.
// The package holds an atomic pointer to the current state. Readers load
// that pointer, use it, and never mutate it. Writers build a brand-new
// state and atomically swap it in, so Serialize and Parse never take a
// package-level lock.
//
// # Registration
//
// Registrations must happen before a type is first serialized or parsed;
// afterwards they fail with registry.ErrAlreadyResolved:
//
//	type Color int
//
//	_ = jsv.RegisterEnum[Color](jsv.Member("Red", Color(0)), jsv.Member("Blue", Color(1)))
//
// # Pinning
//
// SetRegistry and SetResolver install a layer and pin it: SetConfig and
// SetBuilder stop rebuilding a pinned layer until it is unpinned. SetAll is
// the hard reset used by tests.
//
// # Errors
//
// Every failure is an *apis.Error whose Kind is one of
// apis.KindUnsupportedType, apis.KindMalformedInput, apis.KindAssignment or
// apis.KindElement, and errors.Is matches the corresponding apis.Err*
// sentinel. Unknown keys in a payload are never errors.
package jsv
