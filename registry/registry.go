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

package registry

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"dirpx.dev/jsv/apis"
	"dirpx.dev/jsv/config"
	"dirpx.dev/jsv/grammar"
)

var (
	// ErrNilType is returned when a nil reflect.Type is provided.
	ErrNilType = errors.New("jsv(registry): nil reflect.Type provided")
	// ErrNilFunc is returned when a registration is missing a function.
	ErrNilFunc = errors.New("jsv(registry): nil function provided")
	// ErrInvalidEnum is returned for an enum registration that is not a
	// non-empty list of uniquely named members of an integer type.
	ErrInvalidEnum = errors.New("jsv(registry): invalid enum registration")
	// ErrConflictingRegistration indicates an attempt to re-register
	// a type with different hooks.
	ErrConflictingRegistration = errors.New("jsv(registry): conflicting type registration")
	// ErrAlreadyResolved indicates a registration for a type whose codec
	// has already been built, or is being built by a concurrent lookup.
	ErrAlreadyResolved = errors.New("jsv(registry): type already resolved")
	// ErrInvalidTarget is returned by Unmarshal for a nil or non-pointer
	// target.
	ErrInvalidTarget = errors.New("jsv(registry): unmarshal target must be a non-nil pointer")
)

// New constructs a Registry that builds codecs with res under cfg.
func New(cfg apis.Config, res apis.Resolver) apis.Registry {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = config.DefaultMaxDepth
	}
	return &registry{
		cfg:      cfg,
		res:      res,
		hooks:    make(map[reflect.Type]apis.Hooks),
		inflight: make(map[reflect.Type]int),
	}
}

// registry is an apis.Registry backed by sync.Map.
//
// Hits are a single lock-free Load. A miss runs a private build session
// (see session) and publishes its slots with LoadOrStore, so unrelated
// types build concurrently and exactly one codec is ever visible per type.
type registry struct {
	// cfg is the configuration codecs are built and run with.
	cfg apis.Config
	// res is the strategy chain.
	res apis.Resolver
	// m maps reflect.Type to *slot.
	m sync.Map
	// count tracks the number of published entries.
	count atomic.Int64

	// mu guards hooks and inflight.
	mu    sync.RWMutex
	hooks map[reflect.Type]apis.Hooks
	// inflight counts the sessions that have read a type's hooks and
	// not yet published.
	inflight map[reflect.Type]int
}

// Lookup returns the codec for t, building and caching it on first use.
// A type that cannot be supported is cached as failed and keeps returning
// the same error.
func (r *registry) Lookup(t reflect.Type) (apis.Codec, error) {
	if t == nil {
		return nil, apis.Unsupported(nil, "nil type")
	}
	if v, ok := r.m.Load(t); ok {
		return v.(*slot).codec()
	}
	s := newSession(r)
	defer s.done()
	s.resolve(t)
	return s.publish(t).codec()
}

// Serialize writes v as JSV text. A nil v yields "". On error no partial
// text is returned.
func (r *registry) Serialize(v any) (string, error) {
	st, err := r.encode(v)
	if err != nil {
		return "", err
	}
	return st.Buf.String(), nil
}

// SerializeTo writes the JSV text of v to w. Nothing is written on error.
func (r *registry) SerializeTo(w io.Writer, v any) error {
	st, err := r.encode(v)
	if err != nil {
		return err
	}
	_, err = st.Buf.WriteTo(w)
	return err
}

func (r *registry) encode(v any) (st *apis.EncodeState, err error) {
	st = apis.NewEncodeState(r.cfg)
	if v == nil {
		return st, nil
	}
	rv := reflect.ValueOf(v)
	c, err := r.Lookup(rv.Type())
	if err != nil {
		return nil, err
	}
	defer func() {
		if p := recover(); p != nil {
			st, err = nil, &apis.Error{Kind: apis.KindUnsupportedType, Type: rv.Type(), Index: -1, Offset: -1, Msg: fmt.Sprint(p)}
		}
	}()
	if err := c.Write(st, rv); err != nil {
		return nil, err
	}
	return st, nil
}

// Parse parses text as a value of type t. Empty or whitespace-only text
// yields the zero value of t.
func (r *registry) Parse(text string, t reflect.Type) (any, error) {
	v, err := r.parse(text, t)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// Unmarshal parses text into the value out points to.
func (r *registry) Unmarshal(text string, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrInvalidTarget
	}
	v, err := r.parse(text, rv.Type().Elem())
	if err != nil {
		return err
	}
	rv.Elem().Set(v)
	return nil
}

func (r *registry) parse(text string, t reflect.Type) (v reflect.Value, err error) {
	c, err := r.Lookup(t)
	if err != nil {
		return reflect.Value{}, err
	}
	text = grammar.TrimSpace(text)
	if text == "" {
		return reflect.Zero(t), nil
	}
	defer func() {
		if p := recover(); p != nil {
			v, err = reflect.Value{}, &apis.Error{Kind: apis.KindAssignment, Type: t, Index: -1, Offset: -1, Msg: fmt.Sprint(p)}
		}
	}()
	v, err = c.Parse(apis.NewDecodeState(r.cfg), text)
	if err != nil {
		return reflect.Value{}, err
	}
	if !v.IsValid() {
		return reflect.Zero(t), nil
	}
	return v, nil
}

// RegisterEnum registers the members of the integer type t.
func (r *registry) RegisterEnum(t reflect.Type, members []apis.EnumMember) error {
	if t == nil {
		return ErrNilType
	}
	if err := validateEnum(t, members); err != nil {
		return err
	}
	members = slices.Clone(members)
	return r.register(t, func(h *apis.Hooks) bool {
		if h.Enum != nil {
			return slices.Equal(h.Enum, members)
		}
		h.Enum = members
		return true
	})
}

// RegisterFuncs registers custom parse and write functions for t. Funcs
// cannot be compared, so registering them twice is always a conflict.
func (r *registry) RegisterFuncs(t reflect.Type, parse apis.ParseFunc, write apis.WriteFunc) error {
	if t == nil {
		return ErrNilType
	}
	if parse == nil || write == nil {
		return ErrNilFunc
	}
	return r.register(t, func(h *apis.Hooks) bool {
		if h.Parse != nil {
			return false
		}
		h.Parse, h.Write = parse, write
		return true
	})
}

// RegisterStringConstructor registers a constructor that builds t from a
// single string.
func (r *registry) RegisterStringConstructor(t reflect.Type, ctor apis.ParseFunc) error {
	if t == nil {
		return ErrNilType
	}
	if ctor == nil {
		return ErrNilFunc
	}
	return r.register(t, func(h *apis.Hooks) bool {
		if h.Ctor != nil {
			return false
		}
		h.Ctor = ctor
		return true
	})
}

// register applies merge to the hooks of t. merge reports false on a
// conflict with an earlier registration.
func (r *registry) register(t reflect.Type, merge func(*apis.Hooks) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := r.hooks[t]
	before := h
	if !merge(&h) {
		return ErrConflictingRegistration
	}
	if sameHooks(before, h) {
		return nil // idempotent re-registration
	}
	if _, built := r.m.Load(t); built || r.inflight[t] > 0 {
		return ErrAlreadyResolved
	}
	r.hooks[t] = h
	return nil
}

// Registrations returns a snapshot of explicit registrations.
func (r *registry) Registrations() []apis.Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]apis.Registration, 0, len(r.hooks))
	for t, h := range r.hooks {
		out = append(out, apis.Registration{Type: t, Hooks: h})
	}
	return out
}

// Entries returns a snapshot of published codecs for diagnostics (order is
// unspecified).
func (r *registry) Entries() []apis.Entry {
	entries := make([]apis.Entry, 0, r.Count())
	r.m.Range(func(key, value any) bool {
		s := value.(*slot)
		entries = append(entries, apis.Entry{Type: key.(reflect.Type), Strategy: s.strategy, Err: s.err})
		return true
	})
	return entries
}

// Count returns the number of published entries, failed ones included.
func (r *registry) Count() int {
	return int(r.count.Load())
}

// Reset drops every built codec. Registrations are kept.
func (r *registry) Reset() {
	r.m.Clear()
	r.count.Store(0)
}

func (r *registry) hooksFor(t reflect.Type) apis.Hooks {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hooks[t]
}

// acquire returns the hooks of t and marks t in flight.
func (r *registry) acquire(t reflect.Type) apis.Hooks {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inflight[t]++
	return r.hooks[t]
}

func (r *registry) release(types map[reflect.Type]struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for t := range types {
		if r.inflight[t]--; r.inflight[t] <= 0 {
			delete(r.inflight, t)
		}
	}
}

func validateEnum(t reflect.Type, members []apis.EnumMember) error {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return fmt.Errorf("%w: %s is not an integer type", ErrInvalidEnum, t)
	}
	if len(members) == 0 {
		return fmt.Errorf("%w: no members for %s", ErrInvalidEnum, t)
	}
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if m.Name == "" || seen[m.Name] {
			return fmt.Errorf("%w: empty or duplicate member name %q for %s", ErrInvalidEnum, m.Name, t)
		}
		seen[m.Name] = true
	}
	return nil
}

// sameHooks reports whether a merge left the hooks unchanged. Funcs are
// only ever set once, so comparing their presence is enough.
func sameHooks(a, b apis.Hooks) bool {
	return slices.Equal(a.Enum, b.Enum) &&
		(a.Parse == nil) == (b.Parse == nil) &&
		(a.Write == nil) == (b.Write == nil) &&
		(a.Ctor == nil) == (b.Ctor == nil)
}
