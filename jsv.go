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

package jsv

import (
	"errors"
	"io"
	"reflect"
	"sync"
	"sync/atomic"

	"dirpx.dev/jsv/apis"
	"dirpx.dev/jsv/builder"
	"dirpx.dev/jsv/config"
)

// init initializes the global state.
func init() {
	// Initialize state with default cfg, res and reg.
	s := &state{cfg: config.DefaultConfig()}
	b := builder.New()
	s.res = b.BuildResolver(s.cfg, nil)
	s.reg = b.BuildRegistry(s.cfg, s.res, nil)
	s.bld = b
	// Store the initial state atomically.
	st.Store(s)
}

var (
	// ErrNilRegistry is returned when a builder returns a nil registry.
	ErrNilRegistry = errors.New("jsv: builder returned nil registry")
	// ErrNilResolver is returned when a builder returns a nil resolver.
	ErrNilResolver = errors.New("jsv: builder returned nil resolver")
)

// Serialize returns the JSV text of v using the global registry.
func Serialize(v any) (string, error) {
	return st.Load().reg.Serialize(v)
}

// SerializeTo writes the JSV text of v to w. Nothing is written on error.
func SerializeTo(w io.Writer, v any) error {
	return st.Load().reg.SerializeTo(w, v)
}

// Marshal is Serialize returning bytes.
func Marshal(v any) ([]byte, error) {
	s, err := Serialize(v)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// Parse parses text as a T. Empty text yields the zero T.
func Parse[T any](text string) (T, error) {
	var out T
	err := st.Load().reg.Unmarshal(text, &out)
	return out, err
}

// ParseType parses text as a value of type t.
func ParseType(text string, t reflect.Type) (any, error) {
	return st.Load().reg.Parse(text, t)
}

// Unmarshal parses text into the value out points to.
func Unmarshal(text string, out any) error {
	return st.Load().reg.Unmarshal(text, out)
}

// Integer is the constraint for enum types.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Member names one value of an enum type.
func Member[T Integer](name string, value T) apis.EnumMember {
	return apis.EnumMember{Name: name, Value: int64(value)}
}

// RegisterEnum registers the members of enum type T with the global
// registry. It must be called before T is first serialized or parsed.
func RegisterEnum[T Integer](members ...apis.EnumMember) error {
	return st.Load().reg.RegisterEnum(reflect.TypeFor[T](), members)
}

// RegisterFuncs registers custom parse and write functions for T with the
// global registry. They take precedence over every other way T could be
// handled.
func RegisterFuncs[T any](parse func(string) (T, error), write func(T) (string, error)) error {
	if parse == nil || write == nil {
		return st.Load().reg.RegisterFuncs(reflect.TypeFor[T](), nil, nil)
	}
	return st.Load().reg.RegisterFuncs(reflect.TypeFor[T](),
		func(s string) (any, error) { return parse(s) },
		func(v any) (string, error) { return write(v.(T)) },
	)
}

// RegisterStringConstructor registers a constructor that builds T from a
// single string with the global registry.
func RegisterStringConstructor[T any](ctor func(string) (T, error)) error {
	if ctor == nil {
		return st.Load().reg.RegisterStringConstructor(reflect.TypeFor[T](), nil)
	}
	return st.Load().reg.RegisterStringConstructor(reflect.TypeFor[T](),
		func(s string) (any, error) { return ctor(s) },
	)
}

// SetAll explicitly sets all global state components.
//
// Nil arguments leave the corresponding component unchanged; registry and
// resolver are rebuilt by the builder when not given. Pins are reset to
// reflect which layers were passed explicitly.
func SetAll(cfg *apis.Config, reg apis.Registry, res apis.Resolver, bld apis.Builder) {
	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := st.Load()

	// Configuration
	ncfg := old.cfg
	if cfg != nil {
		ncfg = *cfg
	}

	// Builder
	nbld := old.bld
	if bld != nil {
		nbld = bld
	}

	// Resolver
	nres := res
	npres := true
	if nres == nil {
		nres = nbld.BuildResolver(ncfg, old.res)
		npres = false
	}

	// Registry
	nreg := reg
	npreg := true
	if nreg == nil {
		nreg = nbld.BuildRegistry(ncfg, nres, old.reg)
		npreg = false
	}

	publish(&state{cfg: ncfg, reg: nreg, res: nres, bld: nbld, preg: npreg, pres: npres})
}

// Config returns the global configuration.
func Config() apis.Config {
	return st.Load().cfg
}

// SetConfig sets the global configuration to cfg and rebuilds the layers
// that are not pinned. Explicit registrations carry over; built codecs do
// not.
func SetConfig(cfg apis.Config) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	rebuild(old, cfg, old.bld, old.preg, old.pres)
}

// Registry returns the global registry.
func Registry() apis.Registry {
	return st.Load().reg
}

// SetRegistry sets and pins the global registry.
func SetRegistry(reg apis.Registry) {
	if reg == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	publish(&state{cfg: old.cfg, reg: reg, res: old.res, bld: old.bld, preg: true, pres: old.pres})
}

// Resolver returns the global resolver.
func Resolver() apis.Resolver {
	return st.Load().res
}

// SetResolver sets and pins the global resolver. An unpinned registry is
// rebuilt around it.
func SetResolver(res apis.Resolver) {
	if res == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	nreg := old.reg
	if !old.preg {
		nreg = old.bld.BuildRegistry(old.cfg, res, old.reg)
	}
	publish(&state{cfg: old.cfg, reg: nreg, res: res, bld: old.bld, preg: old.preg, pres: true})
}

// Builder returns the global builder.
func Builder() apis.Builder {
	return st.Load().bld
}

// SetBuilder sets the global builder to b and rebuilds the layers that are
// not pinned.
func SetBuilder(b apis.Builder) {
	if b == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	rebuild(old, old.cfg, b, old.preg, old.pres)
}

// IsRegistryPinned reports whether the global registry is pinned.
func IsRegistryPinned() bool { return st.Load().preg }

// IsResolverPinned reports whether the global resolver is pinned.
func IsResolverPinned() bool { return st.Load().pres }

// PinRegistry stops the global registry from being rebuilt.
func PinRegistry() { setPins(func(s *state) { s.preg = true }) }

// UnpinRegistry lets the global registry be rebuilt again.
func UnpinRegistry() { setPins(func(s *state) { s.preg = false }) }

// PinResolver stops the global resolver from being rebuilt.
func PinResolver() { setPins(func(s *state) { s.pres = true }) }

// UnpinResolver lets the global resolver be rebuilt again.
func UnpinResolver() { setPins(func(s *state) { s.pres = false }) }

func setPins(f func(*state)) {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	f(&next)
	st.Store(&next)
}

// rebuild derives a new state from old; callers hold buildMu.
func rebuild(old *state, cfg apis.Config, b apis.Builder, preg, pres bool) {
	nres := old.res
	if !pres {
		nres = b.BuildResolver(cfg, old.res)
	}
	nreg := old.reg
	if !preg {
		nreg = b.BuildRegistry(cfg, nres, old.reg)
	}
	publish(&state{cfg: cfg, reg: nreg, res: nres, bld: b, preg: preg, pres: pres})
}

// publish checks s and stores it; callers hold buildMu.
func publish(s *state) {
	// Ensure non-nil reg and res.
	if s.reg == nil {
		panic(ErrNilRegistry)
	}
	if s.res == nil {
		panic(ErrNilResolver)
	}
	st.Store(s)
}

// buildMu serializes writers (reconfigurations/swaps) so we never publish
// partially-built snapshots.
var buildMu sync.Mutex

// st is the global state.
var st atomic.Pointer[state]

// state is the global state snapshot.
// Immutable snapshot published atomically via st.Store; never mutate fields
// of a published state. Writers create a new state and swap it atomically.
type state struct {
	// cfg is the global configuration.
	cfg apis.Config
	// reg is the global registry.
	reg apis.Registry
	// res is the global resolver.
	res apis.Resolver
	// bld is the global builder.
	bld apis.Builder
	// preg indicates whether the reg is pinned.
	preg bool
	// pres indicates whether the res is pinned.
	pres bool
}
