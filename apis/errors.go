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
	"errors"
	"reflect"
	"strconv"
	"strings"
)

// ErrorKind classifies every failure the codec can report.
type ErrorKind uint8

const (
	// KindUnsupportedType means no codec can be derived for a type.
	KindUnsupportedType ErrorKind = iota + 1
	// KindMalformedInput means the text violates the grammar.
	KindMalformedInput
	// KindAssignment means a parsed value could not be stored into its target.
	KindAssignment
	// KindElement means one element of a collection failed to parse.
	KindElement
)

var (
	// ErrUnsupportedType matches errors of kind KindUnsupportedType via errors.Is.
	ErrUnsupportedType = errors.New("jsv: unsupported type")
	// ErrMalformedInput matches errors of kind KindMalformedInput via errors.Is.
	ErrMalformedInput = errors.New("jsv: malformed input")
	// ErrAssignment matches errors of kind KindAssignment via errors.Is.
	ErrAssignment = errors.New("jsv: property assignment failed")
	// ErrElement matches errors of kind KindElement via errors.Is.
	ErrElement = errors.New("jsv: collection element failed")
)

// String returns a short name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindUnsupportedType:
		return "unsupported type"
	case KindMalformedInput:
		return "malformed input"
	case KindAssignment:
		return "assignment failure"
	case KindElement:
		return "element failure"
	default:
		return "unknown(" + strconv.Itoa(int(k)) + ")"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindUnsupportedType:
		return ErrUnsupportedType
	case KindMalformedInput:
		return ErrMalformedInput
	case KindAssignment:
		return ErrAssignment
	case KindElement:
		return ErrElement
	default:
		return nil
	}
}

// Error is the single error type produced by codecs, registries and the
// scanner. Context fields are optional; Index and Offset are -1 when unset.
type Error struct {
	Kind     ErrorKind
	Type     reflect.Type
	Property string
	Index    int
	Offset   int
	Msg      string
	Err      error
}

// Error renders the kind, the context and the cause on one line.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("jsv: ")
	b.WriteString(e.Kind.String())
	if e.Type != nil {
		b.WriteString(" in ")
		b.WriteString(e.Type.String())
	}
	if e.Property != "" {
		b.WriteString(".")
		b.WriteString(e.Property)
	}
	if e.Index >= 0 {
		b.WriteString(" at item ")
		b.WriteString(strconv.Itoa(e.Index))
	}
	if e.Offset >= 0 {
		b.WriteString(" at offset ")
		b.WriteString(strconv.Itoa(e.Offset))
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// Unsupported returns a KindUnsupportedType error for t.
func Unsupported(t reflect.Type, msg string) *Error {
	return &Error{Kind: KindUnsupportedType, Type: t, Index: -1, Offset: -1, Msg: msg}
}

// Malformed returns a KindMalformedInput error at offset off.
func Malformed(off int, msg string) *Error {
	return &Error{Kind: KindMalformedInput, Index: -1, Offset: off, Msg: msg}
}

// MalformedValue returns a KindMalformedInput error for a token that does
// not parse as t.
func MalformedValue(t reflect.Type, cause error) *Error {
	return &Error{Kind: KindMalformedInput, Type: t, Index: -1, Offset: -1, Err: cause}
}

// Element wraps the failure of item i of a collection of type t.
func Element(t reflect.Type, i int, cause error) *Error {
	return &Error{Kind: KindElement, Type: t, Index: i, Offset: -1, Err: cause}
}

// Property wraps the failure of property name of type t. The kind of the
// cause is kept so errors.Is keeps matching the cause's sentinel.
func Property(t reflect.Type, name string, cause error) *Error {
	kind := KindMalformedInput
	var inner *Error
	if errors.As(cause, &inner) {
		kind = inner.Kind
	}
	return &Error{Kind: kind, Type: t, Property: name, Index: -1, Offset: -1, Err: cause}
}

// Assignment returns a KindAssignment error for property name of type t.
func Assignment(t reflect.Type, name string, msg string) *Error {
	return &Error{Kind: KindAssignment, Type: t, Property: name, Index: -1, Offset: -1, Msg: msg}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
