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

package reflect

import (
	"errors"
	"reflect"
	"sort"
	"strings"
)

var (
	// ErrReflectNilType is returned when a nil reflect.Type is provided.
	ErrReflectNilType = errors.New("reflect: nil reflect.Type provided")
	// ErrReflectNotStruct is returned when Fields is called on a non-struct type.
	ErrReflectNotStruct = errors.New("reflect: type is not a struct")
)

// MaxEmbedDepth bounds how deep embedded structs are flattened.
const MaxEmbedDepth = 8

// Field describes one serializable property of a struct, after embedded
// fields have been promoted.
type Field struct {
	// Name is the property name used on the wire.
	Name string
	// GoName is the Go field name, for diagnostics.
	GoName string
	// Index is the field path for reflect.Value.FieldByIndex.
	Index []int
	// Type is the field type.
	Type reflect.Type
	// OmitEmpty is set by the ",omitempty" tag option.
	OmitEmpty bool
	// ViaPointer is set when Index crosses an embedded pointer.
	ViaPointer bool

	depth  int
	tagged bool
}

// Fields returns the exported properties of struct type t in declaration
// order.
//
// Naming follows the `jsv` struct tag, then the `json` tag, then the Go
// field name; a tag of "-" drops the field. Untagged embedded structs (or
// pointers to structs) have their fields promoted. When several promoted
// fields share a name the shallowest wins; at equal depth a tagged field
// wins, and otherwise all of them are dropped.
func Fields(t reflect.Type) ([]Field, error) {
	if t == nil {
		return nil, ErrReflectNilType
	}
	if t.Kind() != reflect.Struct {
		return nil, ErrReflectNotStruct
	}

	var all []Field
	collect(t, nil, 0, false, &all, map[reflect.Type]bool{})

	byName := make(map[string][]int, len(all))
	for i, f := range all {
		byName[f.Name] = append(byName[f.Name], i)
	}

	out := make([]Field, 0, len(all))
	for i, f := range all {
		if dominant(all, byName[f.Name]) == i {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return lessIndex(out[i].Index, out[j].Index) })
	return out, nil
}

func collect(t reflect.Type, index []int, depth int, viaPtr bool, out *[]Field, seen map[reflect.Type]bool) {
	if depth > MaxEmbedDepth || seen[t] {
		return
	}
	seen[t] = true
	defer delete(seen, t)

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name, omitEmpty, tagged, skip := parseTag(sf)
		if skip {
			continue
		}

		idx := make([]int, len(index)+1)
		copy(idx, index)
		idx[len(index)] = i

		if sf.Anonymous && !tagged {
			et := sf.Type
			ptr := false
			if et.Kind() == reflect.Pointer {
				if !sf.IsExported() {
					continue
				}
				et = et.Elem()
				ptr = true
			}
			if et.Kind() == reflect.Struct {
				collect(et, idx, depth+1, viaPtr || ptr, out, seen)
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}

		*out = append(*out, Field{
			Name:       name,
			GoName:     sf.Name,
			Index:      idx,
			Type:       sf.Type,
			OmitEmpty:  omitEmpty,
			ViaPointer: viaPtr,
			depth:      depth,
			tagged:     tagged,
		})
	}
}

func parseTag(sf reflect.StructField) (name string, omitEmpty, tagged, skip bool) {
	tag, ok := sf.Tag.Lookup("jsv")
	if !ok {
		tag, ok = sf.Tag.Lookup("json")
	}
	if tag == "-" {
		return "", false, false, true
	}
	name = sf.Name
	if ok {
		parts := strings.Split(tag, ",")
		if n := strings.TrimSpace(parts[0]); n != "" {
			name = n
			tagged = true
		}
		for _, opt := range parts[1:] {
			if strings.TrimSpace(opt) == "omitempty" {
				omitEmpty = true
			}
		}
	}
	return name, omitEmpty, tagged, false
}

// dominant returns the index in all of the field that owns the name shared
// by candidates, or -1 when the name is ambiguous.
func dominant(all []Field, candidates []int) int {
	if len(candidates) == 1 {
		return candidates[0]
	}
	best := -1
	ambiguous := false
	for _, c := range candidates {
		if best < 0 {
			best = c
			continue
		}
		b, f := all[best], all[c]
		switch {
		case f.depth < b.depth, f.depth == b.depth && f.tagged && !b.tagged:
			best, ambiguous = c, false
		case f.depth == b.depth && f.tagged == b.tagged:
			ambiguous = true
		}
	}
	if ambiguous {
		return -1
	}
	return best
}

func lessIndex(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// FieldByIndex returns the field of struct value v at index. When alloc is
// true, nil embedded pointers along the path are allocated; otherwise a nil
// pointer yields ok=false.
func FieldByIndex(v reflect.Value, index []int, alloc bool) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !alloc {
					return reflect.Value{}, false
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

// IsNil reports whether v holds a nil pointer, slice, map or interface.
func IsNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return v.IsNil()
	}
	return false
}
