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
	"reflect"

	"dirpx.dev/jsv/apis"
)

// slot is the published cell for one type. During a build it doubles as a
// placeholder handed to codecs that refer back to a type still under
// construction; it is filled in before the session publishes it.
type slot struct {
	t        reflect.Type
	c        apis.Codec
	strategy string
	err      error
}

var _ apis.Codec = (*slot)(nil)

func (s *slot) codec() (apis.Codec, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.c, nil
}

func (s *slot) Type() reflect.Type { return s.t }

func (s *slot) Parse(st *apis.DecodeState, raw string) (reflect.Value, error) {
	if s.err != nil {
		return reflect.Value{}, s.err
	}
	return s.c.Parse(st, raw)
}

func (s *slot) Write(st *apis.EncodeState, v reflect.Value) error {
	if s.err != nil {
		return s.err
	}
	return s.c.Write(st, v)
}

// session is one cold build. It is owned by a single goroutine, so it needs
// no locking; the only shared state it touches is the registry's sync.Map.
type session struct {
	reg   *registry
	slots map[reflect.Type]*slot
	order []*slot
	// read holds the types whose hooks this session has observed; they
	// are reported in flight until the session is done.
	read map[reflect.Type]struct{}
}

func newSession(r *registry) *session {
	return &session{reg: r, slots: make(map[reflect.Type]*slot), read: make(map[reflect.Type]struct{})}
}

// done releases the in-flight marks taken by the session.
func (s *session) done() {
	if len(s.read) > 0 {
		s.reg.release(s.read)
	}
}

var _ apis.Lookup = (*session)(nil)

// resolve returns the published slot for t, the session's own slot if t is
// already being built, or builds t into a new slot.
func (s *session) resolve(t reflect.Type) *slot {
	if v, ok := s.reg.m.Load(t); ok {
		return v.(*slot)
	}
	if sl, ok := s.slots[t]; ok {
		return sl
	}
	sl := &slot{t: t}
	s.slots[t] = sl
	s.order = append(s.order, sl)
	mark := len(s.order)

	c, name, err := s.reg.res.Build(t, s)
	sl.strategy = name
	if err != nil {
		sl.err = err
		s.discard(mark)
	} else {
		sl.c = c
	}
	return sl
}

// discard forgets every slot created from order[mark] on. These were
// built while a type that has since failed was still a placeholder, so
// they may hold it as a working codec. Forgotten types are rebuilt on
// their next resolve and then see the failure.
func (s *session) discard(mark int) {
	for _, d := range s.order[mark:] {
		delete(s.slots, d.t)
	}
	clear(s.order[mark:])
	s.order = s.order[:mark]
}

// publish stores every slot built by the session and returns the slot that
// ended up published for root. A slot another goroutine published first
// wins; the session's copy stays referenced only by its own codecs, which
// behave identically.
func (s *session) publish(root reflect.Type) *slot {
	for _, sl := range s.order {
		if _, loaded := s.reg.m.LoadOrStore(sl.t, sl); !loaded {
			s.reg.count.Add(1)
			if sl.err != nil {
				s.reg.cfg.Log().Debug("jsv: type unsupported", "type", sl.t.String(), "error", sl.err)
			}
		}
	}
	if v, ok := s.reg.m.Load(root); ok {
		return v.(*slot)
	}
	// Reset raced with the build.
	if sl, ok := s.slots[root]; ok {
		return sl
	}
	return s.resolve(root)
}

// Codec implements apis.Lookup.
func (s *session) Codec(t reflect.Type) (apis.Codec, error) {
	sl := s.resolve(t)
	if sl.err != nil {
		return nil, sl.err
	}
	return sl, nil
}

// Hooks implements apis.Lookup. The first read of a type marks it in
// flight so that a registration cannot land between this read and publish.
func (s *session) Hooks(t reflect.Type) apis.Hooks {
	if _, ok := s.read[t]; ok {
		return s.reg.hooksFor(t)
	}
	s.read[t] = struct{}{}
	return s.reg.acquire(t)
}

// Config implements apis.Lookup.
func (s *session) Config() apis.Config { return s.reg.cfg }

// Dynamic implements apis.Lookup.
func (s *session) Dynamic() func(reflect.Type) (apis.Codec, error) { return s.reg.Lookup }
