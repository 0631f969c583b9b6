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

package strategy_test

import (
	"errors"
	"fmt"
	"net/netip"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/jsv/apis"
	"dirpx.dev/jsv/builder"
	"dirpx.dev/jsv/config"
	"dirpx.dev/jsv/policy"
	"dirpx.dev/jsv/strategy"
)

// lookup is a minimal apis.Lookup backed by a real registry.
type lookup struct {
	reg   apis.Registry
	cfg   apis.Config
	hooks map[reflect.Type]apis.Hooks
}

func newLookup(opts ...config.Option) *lookup {
	cfg := config.NewConfig(opts...)
	return &lookup{
		reg:   builder.New().BuildRegistry(cfg, nil, nil),
		cfg:   cfg,
		hooks: map[reflect.Type]apis.Hooks{},
	}
}

func (l *lookup) Codec(t reflect.Type) (apis.Codec, error) { return l.reg.Lookup(t) }
func (l *lookup) Hooks(t reflect.Type) apis.Hooks          { return l.hooks[t] }
func (l *lookup) Config() apis.Config                      { return l.cfg }
func (l *lookup) Dynamic() func(reflect.Type) (apis.Codec, error) {
	return l.reg.Lookup
}

type (
	level   int
	label   string
	Stamp   struct{ At time.Time }
	bare    struct{ hidden int }
	textual int
	named   [4]byte
	flag    uint8
	mask    uint64
)

func (t textual) String() string { return fmt.Sprintf("T%d", int(t)) }

func (t *textual) UnmarshalText(b []byte) error {
	_, err := fmt.Sscanf(string(b), "T%d", (*int)(t))
	return err
}

func (n named) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%d.%d.%d.%d", n[0], n[1], n[2], n[3])), nil
}

func (n *named) UnmarshalText(b []byte) error {
	_, err := fmt.Sscanf(string(b), "%d.%d.%d.%d", &n[0], &n[1], &n[2], &n[3])
	return err
}

func TestTryBuild_Claims(t *testing.T) {
	tests := []struct {
		name  string
		s     apis.Strategy
		t     reflect.Type
		claim bool
	}{
		{"pointer/ptr", strategy.NewPointer(), reflect.TypeFor[*int](), true},
		{"pointer/int", strategy.NewPointer(), reflect.TypeFor[int](), false},
		{"enum/string", strategy.NewEnum(), reflect.TypeFor[label](), true},
		{"enum/unregistered", strategy.NewEnum(), reflect.TypeFor[level](), false},
		{"object/any", strategy.NewObject(), reflect.TypeFor[any](), true},
		{"object/stringer", strategy.NewObject(), reflect.TypeFor[fmt.Stringer](), false},
		{"array/bytes", strategy.NewArray(), reflect.TypeFor[[]byte](), true},
		{"array/fixed", strategy.NewArray(), reflect.TypeFor[[2]string](), true},
		{"array/named-bytes", strategy.NewArray(), reflect.TypeFor[[]flag](), false},
		{"array/text", strategy.NewArray(), reflect.TypeFor[named](), false},
		{"array/uuid", strategy.NewArray(), reflect.TypeFor[uuid.UUID](), false},
		{"builtin/time", strategy.NewBuiltin(), reflect.TypeFor[time.Time](), true},
		{"builtin/level", strategy.NewBuiltin(), reflect.TypeFor[level](), true},
		{"builtin/textual", strategy.NewBuiltin(), reflect.TypeFor[textual](), false},
		{"builtin/complex", strategy.NewBuiltin(), reflect.TypeFor[complex128](), false},
		{"slice/ints", strategy.NewSlice(), reflect.TypeFor[[]int8](), true},
		{"slice/named-bytes", strategy.NewSlice(), reflect.TypeFor[[]flag](), true},
		{"map/dict", strategy.NewMap(), reflect.TypeFor[map[string]bool](), true},
		{"map/set", strategy.NewMap(), reflect.TypeFor[map[string]struct{}](), false},
		{"set/set", strategy.NewSet(), reflect.TypeFor[map[int]struct{}](), true},
		{"text/textual", strategy.NewText(), reflect.TypeFor[textual](), true},
		{"text/addr", strategy.NewText(), reflect.TypeFor[netip.Addr](), true},
		{"text/int", strategy.NewText(), reflect.TypeFor[int](), false},
		{"struct/stamp", strategy.NewStruct(), reflect.TypeFor[Stamp](), true},
		{"struct/unexported", strategy.NewStruct(), reflect.TypeFor[bare](), false},
		{"ctor/none", strategy.NewCtor(), reflect.TypeFor[bare](), false},
		{"custom/none", strategy.NewCustom(), reflect.TypeFor[bare](), false},
		{"self/none", strategy.NewSelf(), reflect.TypeFor[bare](), false},
	}

	lk := newLookup()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok, err := tt.s.TryBuild(tt.t, lk)
			require.NoError(t, err)
			assert.Equal(t, tt.claim, ok)
			if ok {
				assert.Equal(t, tt.t, c.Type())
			}
		})
	}
}

func TestTryBuild_NestedFailure(t *testing.T) {
	lk := newLookup()
	for _, s := range []apis.Strategy{strategy.NewSlice(), strategy.NewPointer()} {
		var typ reflect.Type
		if s.Name() == "slice" {
			typ = reflect.TypeFor[[]chan int]()
		} else {
			typ = reflect.TypeFor[*func()]()
		}
		_, ok, err := s.TryBuild(typ, lk)
		assert.True(t, ok, s.Name())
		assert.True(t, errors.Is(err, apis.ErrUnsupportedType), s.Name())
	}
}

func TestEnum_Registered(t *testing.T) {
	lk := newLookup()
	lt := reflect.TypeFor[level]()
	lk.hooks[lt] = apis.Hooks{Enum: []apis.EnumMember{{Name: "Debug", Value: -4}, {Name: "Info", Value: 0}}}

	c, ok, err := strategy.NewEnum().TryBuild(lt, lk)
	require.NoError(t, err)
	require.True(t, ok)

	st := apis.NewEncodeState(lk.cfg)
	require.NoError(t, c.Write(st, reflect.ValueOf(level(-4))))
	assert.Equal(t, "Debug", st.Buf.String())

	v, err := c.Parse(apis.NewDecodeState(lk.cfg), `"Info"`)
	require.NoError(t, err)
	assert.Equal(t, level(0), v.Interface())

	v, err = c.Parse(apis.NewDecodeState(lk.cfg), "12")
	require.NoError(t, err)
	assert.Equal(t, level(12), v.Interface())

	_, err = c.Parse(apis.NewDecodeState(lk.cfg), "Trace")
	assert.True(t, errors.Is(err, apis.ErrMalformedInput))

	// A float kind cannot be an enum.
	ft := reflect.TypeFor[float64]()
	lk.hooks[ft] = apis.Hooks{Enum: []apis.EnumMember{{Name: "One", Value: 1}}}
	_, ok, err = strategy.NewEnum().TryBuild(ft, lk)
	assert.True(t, ok)
	assert.True(t, errors.Is(err, apis.ErrUnsupportedType))
}

func TestEnum_UnsignedHighBit(t *testing.T) {
	lk := newLookup()
	mt := reflect.TypeFor[mask]()
	top := mask(1 << 63)
	lk.hooks[mt] = apis.Hooks{Enum: []apis.EnumMember{{Name: "None", Value: 0}, {Name: "Top", Value: int64(top)}}}

	c, ok, err := strategy.NewEnum().TryBuild(mt, lk)
	require.NoError(t, err)
	require.True(t, ok)

	tests := []struct {
		in   mask
		wire string
	}{
		{0, "None"},
		{top, "Top"},
		{top + 1, "9223372036854775809"},
		{^mask(0), "18446744073709551615"},
	}
	for _, tt := range tests {
		st := apis.NewEncodeState(lk.cfg)
		require.NoError(t, c.Write(st, reflect.ValueOf(tt.in)))
		assert.Equal(t, tt.wire, st.Buf.String())

		v, err := c.Parse(apis.NewDecodeState(lk.cfg), tt.wire)
		require.NoError(t, err, "parse %q", tt.wire)
		assert.Equal(t, tt.in, v.Interface())
	}

	_, err = c.Parse(apis.NewDecodeState(lk.cfg), "-1")
	assert.True(t, errors.Is(err, apis.ErrMalformedInput))

	ft := reflect.TypeFor[flag]()
	lk.hooks[ft] = apis.Hooks{Enum: []apis.EnumMember{{Name: "On", Value: 1}}}
	c, _, err = strategy.NewEnum().TryBuild(ft, lk)
	require.NoError(t, err)
	_, err = c.Parse(apis.NewDecodeState(lk.cfg), "256")
	assert.True(t, errors.Is(err, apis.ErrMalformedInput))
}

func TestText(t *testing.T) {
	reg := newLookup().reg

	s, err := reg.Serialize([]textual{1, 22})
	require.NoError(t, err)
	assert.Equal(t, "[T1,T22]", s)

	s, err = reg.Serialize(map[named]int{{10, 0, 0, 1}: 1})
	require.NoError(t, err)
	assert.Equal(t, "{10.0.0.1:1}", s)

	v, err := reg.Parse(s, reflect.TypeFor[map[named]int]())
	require.NoError(t, err)
	assert.Equal(t, map[named]int{{10, 0, 0, 1}: 1}, v)

	addr := netip.MustParseAddr("::1")
	s, err = reg.Serialize(addr)
	require.NoError(t, err)
	assert.Equal(t, `"::1"`, s)
	back, err := reg.Parse(s, reflect.TypeFor[netip.Addr]())
	require.NoError(t, err)
	assert.Equal(t, addr, back)

	_, err = reg.Parse("X9", reflect.TypeFor[textual]())
	assert.True(t, errors.Is(err, apis.ErrMalformedInput))
}

func TestStruct_KeyMatch(t *testing.T) {
	type user struct {
		FirstName string
		Age       int    `jsv:"age"`
		Email     string `json:"e_mail,omitempty"`
	}
	tests := []struct {
		mode policy.KeyMatch
		in   string
		want user
	}{
		{policy.Exact, "{FirstName:Jimi,age:27,e_mail:j@x}", user{"Jimi", 27, "j@x"}},
		{policy.Exact, "{firstname:Jimi,AGE:27}", user{}},
		{policy.IgnoreCase, "{firstname:Jimi,AGE:27}", user{FirstName: "Jimi", Age: 27}},
		{policy.IgnoreCase, "{first_name:Jimi}", user{}},
		{policy.Lenient, "{first_name:Jimi,A-G-E:27,EMail:j@x}", user{"Jimi", 27, "j@x"}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String()+"/"+tt.in, func(t *testing.T) {
			reg := newLookup(config.WithKeyMatch(tt.mode)).reg
			v, err := reg.Parse(tt.in, reflect.TypeFor[user]())
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestStruct_WriteRules(t *testing.T) {
	type inner struct{ V int }
	type rec struct {
		Name  string
		Count int `jsv:",omitempty"`
		Ptr   *inner
		List  []int
		Skip  string `jsv:"-"`
		Any   any
	}
	v := rec{Name: "", Skip: "never"}

	tests := []struct {
		name string
		opts []config.Option
		want string
	}{
		{"default", nil, `{Name:""}`},
		{"nulls", []config.Option{config.WithIncludeNullValues(true)}, `{Name:"",Ptr:,List:,Any:}`},
		{"defaults", []config.Option{config.WithExcludeDefaultValues(true)}, `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newLookup(tt.opts...).reg
			s, err := reg.Serialize(v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s)

			back, err := reg.Parse(s, reflect.TypeFor[rec]())
			require.NoError(t, err)
			assert.Equal(t, rec{}, back)
		})
	}

	s, err := newLookup().reg.Serialize(rec{Count: 3, Ptr: &inner{V: 1}, List: []int{}, Any: "x,y"})
	require.NoError(t, err)
	assert.Equal(t, `{Name:"",Count:3,Ptr:{V:1},List:[],Any:"x,y"}`, s)
}

func TestStruct_EmbeddedPromotion(t *testing.T) {
	type Base struct {
		ID      int
		Created time.Time
	}
	type doc struct {
		Base
		*Stamp
		Title string
	}
	at := time.Date(2020, 1, 2, 3, 4, 5, 600, time.UTC)
	want := doc{Base: Base{ID: 1, Created: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)}, Title: "t"}
	reg := newLookup().reg

	s, err := reg.Serialize(want)
	require.NoError(t, err)
	assert.Equal(t, "{ID:1,Created:2020-01-02,Title:t}", s)

	got, err := reg.Parse(`{ID:1,Created:2020-01-02,At:"`+at.Format(time.RFC3339Nano)+`",Title:t}`, reflect.TypeFor[doc]())
	require.NoError(t, err)
	d := got.(doc)
	require.NotNil(t, d.Stamp)
	assert.True(t, at.Equal(d.At))
	assert.Equal(t, "t", d.Title)
}

func TestStruct_StructKeys(t *testing.T) {
	type key struct{ A, B int }
	reg := newLookup().reg
	want := map[key]string{{1, 2}: "x", {0, 1}: "y"}

	s, err := reg.Serialize(want)
	require.NoError(t, err)
	assert.Equal(t, `{"{A:0,B:1}":y,"{A:1,B:2}":x}`, s)

	got, err := reg.Parse(s, reflect.TypeFor[map[key]string]())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTime(t *testing.T) {
	reg := newLookup().reg
	tt := reflect.TypeFor[time.Time]()
	for in, want := range map[string]time.Time{
		"2021-06-01":                  time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC),
		`"2021-06-01T12:00:00Z"`:      time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC),
		`"2021-06-01T12:00:00.5Z"`:    time.Date(2021, 6, 1, 12, 0, 0, 5e8, time.UTC),
		`"2021-06-01T12:00:00"`:       time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC),
		`"2021-06-01T14:00:00+02:00"`: time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC),
	} {
		v, err := reg.Parse(in, tt)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(v.(time.Time)), "%s: got %v", in, v)
	}

	_, err := reg.Parse("yesterday", tt)
	assert.True(t, errors.Is(err, apis.ErrMalformedInput))

	local := time.Date(2021, 6, 1, 0, 0, 0, 0, time.FixedZone("X", 3600))
	s, err := reg.Serialize(local)
	require.NoError(t, err)
	assert.Equal(t, `"2021-06-01T00:00:00+01:00"`, s)
}

func TestBytes(t *testing.T) {
	reg := newLookup().reg
	bt := reflect.TypeFor[[]byte]()

	s, err := reg.Serialize([]byte{})
	require.NoError(t, err)
	assert.Equal(t, `""`, s)
	v, err := reg.Parse(s, bt)
	require.NoError(t, err)
	assert.Equal(t, []byte{}, v)

	_, err = reg.Parse("!!", bt)
	assert.True(t, errors.Is(err, apis.ErrMalformedInput))
}

func TestFastPathsMatchGeneric(t *testing.T) {
	type strs []string
	type dict map[string]string
	reg := newLookup().reg

	for _, pair := range [][2]any{
		{[]string{"a", "", "b,c", `q"q`}, strs{"a", "", "b,c", `q"q`}},
		{map[string]string{"z": "1", "": "e", "a b": "{x}"}, dict{"z": "1", "": "e", "a b": "{x}"}},
	} {
		fast, err := reg.Serialize(pair[0])
		require.NoError(t, err)
		generic, err := reg.Serialize(pair[1])
		require.NoError(t, err)
		assert.Equal(t, generic, fast)

		back, err := reg.Parse(fast, reflect.TypeOf(pair[0]))
		require.NoError(t, err)
		assert.Equal(t, pair[0], back)
	}

	ints, err := reg.Parse("[1,,3]", reflect.TypeFor[[]int]())
	require.NoError(t, err)
	generic, err := reg.Parse("[1,,3]", reflect.TypeFor[[]int32]())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 3}, ints)
	assert.Equal(t, []int32{1, 0, 3}, generic)
}

func TestObject_Convert(t *testing.T) {
	reg := newLookup(config.WithConvertObjectTypes(true)).reg
	v, err := reg.Parse(`[1,-2.5e3,"3",yes,{k:[]}]`, reflect.TypeFor[any]())
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), -2500.0, "3", "yes", map[string]any{"k": []any{}}}, v)

	deep := strings.Repeat("[", 100) + strings.Repeat("]", 100)
	_, err = reg.Parse(deep, reflect.TypeFor[any]())
	assert.True(t, errors.Is(err, apis.ErrMalformedInput))
}
