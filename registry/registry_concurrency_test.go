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

package registry_test

import (
	"reflect"
	"runtime"
	"sync"
	"testing"

	"dirpx.dev/jsv/apis"
	"dirpx.dev/jsv/config"
)

// A few named types to avoid anonymous/unnamed pitfalls.
type T0 struct{ A int }
type T1 struct{ A []T1 }
type T2 struct{ A map[string]T2 }
type T3 struct{ A *T3 }
type T4 struct{ A, B string }
type T5 struct{ A [2]T4 }
type T6 struct{ A T5 }
type T7 struct{ A []*T7 }
type T8 struct{ A map[int]struct{} }
type T9 struct{ A any }

var hammerTypes = []reflect.Type{
	reflect.TypeFor[T0](), reflect.TypeFor[T1](), reflect.TypeFor[T2](),
	reflect.TypeFor[T3](), reflect.TypeFor[T4](), reflect.TypeFor[T5](),
	reflect.TypeFor[T6](), reflect.TypeFor[T7](), reflect.TypeFor[T8](),
	reflect.TypeFor[T9](),
}

// TestConcurrentFirstLookup verifies that concurrent first requests for the
// same types all observe one published codec per type.
func TestConcurrentFirstLookup(t *testing.T) {
	reg := newRegistry()

	workers := runtime.GOMAXPROCS(0) * 4
	results := make([][]apis.Codec, workers)

	var start sync.WaitGroup
	start.Add(1)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			start.Wait()
			out := make([]apis.Codec, len(hammerTypes))
			for i := range hammerTypes {
				// Walk the types in a different order per worker.
				j := (i + id) % len(hammerTypes)
				c, err := reg.Lookup(hammerTypes[j])
				if err != nil {
					t.Errorf("lookup %v: %v", hammerTypes[j], err)
					return
				}
				out[j] = c
			}
			results[id] = out
		}(w)
	}
	start.Done()
	wg.Wait()
	if t.Failed() {
		return
	}

	for id := 1; id < workers; id++ {
		for i := range hammerTypes {
			if results[id][i] != results[0][i] {
				t.Fatalf("worker %d observed a divergent codec for %v", id, hammerTypes[i])
			}
		}
	}
	for _, tt := range hammerTypes {
		c, _ := reg.Lookup(tt)
		if c != results[0][indexOf(tt)] {
			t.Fatalf("published codec for %v changed after the race", tt)
		}
	}
}

func indexOf(t reflect.Type) int {
	for i, tt := range hammerTypes {
		if tt == t {
			return i
		}
	}
	return -1
}

// TestConcurrentSerializeAndReset verifies that Serialize, Entries, Count
// and Reset are race-free under concurrent use.
func TestConcurrentSerializeAndReset(t *testing.T) {
	reg := newRegistry()
	values := []any{
		T0{A: 1},
		T1{A: []T1{{}}},
		T2{A: map[string]T2{"k": {}}},
		T4{A: "a", B: "b,c"},
		T6{},
		T8{A: map[int]struct{}{1: {}}},
		T9{A: []any{1, "x"}},
	}

	wg := sync.WaitGroup{}
	workers := runtime.GOMAXPROCS(0) * 4

	// Readers
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				v := values[i%len(values)]
				s, err := reg.Serialize(v)
				if err != nil {
					t.Errorf("serialize %T: %v", v, err)
					return
				}
				if _, err := reg.Parse(s, reflect.TypeOf(v)); err != nil {
					t.Errorf("parse %T from %q: %v", v, s, err)
					return
				}
				_ = reg.Count()
				_ = reg.Entries()
			}
		}()
	}

	// Resetters
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			reg.Reset()
			runtime.Gosched()
		}
	}()

	wg.Wait()
}

// TestConcurrentIndependentRegistries checks that registries built with
// different configurations do not share cached codecs.
func TestConcurrentIndependentRegistries(t *testing.T) {
	plain := newRegistry()
	nulls, _ := newCounted(config.NewConfig(config.WithIncludeNullValues(true)))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if s, _ := plain.Serialize(T3{}); s != "{}" {
				t.Errorf("plain: %q", s)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if s, _ := nulls.Serialize(T3{}); s != "{A:}" {
				t.Errorf("nulls: %q", s)
				return
			}
		}
	}()
	wg.Wait()
}
