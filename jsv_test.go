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

package jsv_test

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/jsv"
	"dirpx.dev/jsv/apis"
	"dirpx.dev/jsv/builder"
	"dirpx.dev/jsv/config"
	"dirpx.dev/jsv/registry"
)

// fresh installs a registry with no registrations and no cached codecs.
func fresh(t *testing.T) {
	t.Helper()
	cfg := config.DefaultConfig()
	jsv.SetAll(&cfg, builder.New().BuildRegistry(cfg, nil, nil), nil, builder.New())
	jsv.UnpinRegistry()
}

type person struct {
	Name string
	Age  int
}

type tagged struct {
	Tags []string
}

type line struct {
	SKU   string
	Qty   int
	Attrs map[string]string
}

type order struct {
	ID    int
	Lines []line
	Note  *string
}

type node struct {
	Name     string
	Children []node
}

type shape interface {
	Area() float64
}

func TestParse_Person(t *testing.T) {
	p, err := jsv.Parse[person]("{Name:Jimi,Age:27}")
	require.NoError(t, err)
	assert.Equal(t, person{Name: "Jimi", Age: 27}, p)
}

func TestParse_IntList(t *testing.T) {
	l, err := jsv.Parse[[]int]("[1,2,3]")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, l)

	generic, err := jsv.Parse[[]int64]("[1,2,3]")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, generic)
}

func TestParse_StringIntMap(t *testing.T) {
	m, err := jsv.Parse[map[string]int]("{a:1,b:2}")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, m)
}

func TestQuoting(t *testing.T) {
	const s = `He said "hi",bye`
	out, err := jsv.Serialize(s)
	require.NoError(t, err)
	assert.Equal(t, `"He said ""hi"",bye"`, out)

	back, err := jsv.Parse[string](out)
	require.NoError(t, err)
	assert.Equal(t, s, back)

	for _, in := range []string{"", " padded ", "{}[]:,\"", `""`, "plain", "a:b", "tab\there"} {
		out, err := jsv.Serialize(in)
		require.NoError(t, err)
		back, err := jsv.Parse[string](out)
		require.NoError(t, err)
		assert.Equal(t, in, back, "round trip of %q via %q", in, out)
	}
}

func TestQuoting_UnicodeSpace(t *testing.T) {
	for _, in := range []string{"a\f", "\va", "x\u00a0", "\u0085y", "\u2003"} {
		out, err := jsv.Serialize(in)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, `"`), "%q written bare as %q", in, out)

		back, err := jsv.Parse[string](out)
		require.NoError(t, err)
		assert.Equal(t, in, back, "round trip of %q via %q", in, out)

		list, err := jsv.Serialize([]string{in, "b"})
		require.NoError(t, err)
		items, err := jsv.Parse[[]string](list)
		require.NoError(t, err)
		assert.Equal(t, []string{in, "b"}, items)
	}
}

func TestParse_EmptyTags(t *testing.T) {
	v, err := jsv.Parse[tagged]("{Tags:[]}")
	require.NoError(t, err)
	require.NotNil(t, v.Tags)
	assert.Empty(t, v.Tags)

	s, err := jsv.Serialize(tagged{Tags: []string{}})
	require.NoError(t, err)
	assert.Equal(t, "{Tags:[]}", s)

	s, err = jsv.Serialize([]int{})
	require.NoError(t, err)
	assert.Equal(t, "[]", s)
}

func TestUnsupportedType_Cached(t *testing.T) {
	fresh(t)
	st := reflect.TypeFor[shape]()

	_, err := jsv.ParseType("{}", st)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apis.ErrUnsupportedType))
	count := jsv.Registry().Count()

	_, err2 := jsv.ParseType("{}", st)
	require.Error(t, err2)
	assert.True(t, errors.Is(err2, apis.ErrUnsupportedType))
	assert.Equal(t, err.Error(), err2.Error())
	assert.Equal(t, count, jsv.Registry().Count(), "failed entry must not be rebuilt")

	var found bool
	for _, e := range jsv.Registry().Entries() {
		if e.Type == st {
			found = true
			assert.Error(t, e.Err)
		}
	}
	assert.True(t, found, "failed entry must be cached")

	_, err = jsv.Serialize(struct{ f func() }{})
	assert.True(t, errors.Is(err, apis.ErrUnsupportedType))
}

func TestUnknownKeysIgnored(t *testing.T) {
	p, err := jsv.Parse[person]("{Name:Jimi,Extra:{a:[1,2]},format:jsv,Age:27}")
	require.NoError(t, err)
	assert.Equal(t, person{Name: "Jimi", Age: 27}, p)
}

func TestRoundTrip_ThreeLevels(t *testing.T) {
	note := "fragile, {handle} with care"
	want := order{
		ID: 7,
		Lines: []line{
			{SKU: "A-1", Qty: 2, Attrs: map[string]string{"color": "red", "size": "L"}},
			{SKU: "B:2", Qty: 1},
		},
		Note: &note,
	}
	s, err := jsv.Serialize(want)
	require.NoError(t, err)
	assert.Equal(t, `{ID:7,Lines:[{SKU:A-1,Qty:2,Attrs:{color:red,size:L}},{SKU:"B:2",Qty:1}],Note:"fragile, {handle} with care"}`, s)

	got, err := jsv.Parse[order](s)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRoundTrip_SelfReferential(t *testing.T) {
	want := node{Name: "root", Children: []node{
		{Name: "a"},
		{Name: "b", Children: []node{{Name: "c"}}},
	}}
	s, err := jsv.Serialize(want)
	require.NoError(t, err)
	assert.Equal(t, "{Name:root,Children:[{Name:a},{Name:b,Children:[{Name:c}]}]}", s)

	got, err := jsv.Parse[node](s)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestOmittedVersusEmpty(t *testing.T) {
	type opt struct {
		S *string
		N *int
		L []int
	}
	v, err := jsv.Parse[opt](`{S:"",N:,L:}`)
	require.NoError(t, err)
	require.NotNil(t, v.S)
	assert.Equal(t, "", *v.S)
	assert.Nil(t, v.N)
	assert.Nil(t, v.L)

	list, err := jsv.Parse[[]string](`[a,,""]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "", ""}, list)

	zero, err := jsv.Parse[person]("  ")
	require.NoError(t, err)
	assert.Equal(t, person{}, zero)
}

func TestScalars(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"bool", true, "true"},
		{"int8", int8(-5), "-5"},
		{"uint64", uint64(18446744073709551615), "18446744073709551615"},
		{"float", 1.5, "1.5"},
		{"float32", float32(0.1), "0.1"},
		{"date", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "2024-03-05"},
		{"datetime", time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC), `"2024-03-05T10:30:00Z"`},
		{"duration", 90 * time.Minute, "1h30m0s"},
		{"bytes", []byte("hi"), "aGk="},
		{"array", [3]int{1, 2, 3}, "[1,2,3]"},
		{"set", map[string]struct{}{"b": {}, "a": {}}, "[a,b]"},
		{"intmap", map[int]string{2: "b", 10: "a", 1: "c"}, "{1:c,10:a,2:b}"},
		{"any", map[string]any{"a": 1, "b": []any{"x", true}}, "{a:1,b:[x,true]}"},
		{"uuid", uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := jsv.Serialize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s)

			if tt.name == "any" {
				return
			}
			back, err := jsv.ParseType(s, reflect.TypeOf(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.in, back)
		})
	}
}

func TestArrayArity(t *testing.T) {
	a, err := jsv.Parse[[3]int]("[1,2]")
	require.NoError(t, err)
	assert.Equal(t, [3]int{1, 2, 0}, a)

	_, err = jsv.Parse[[3]int]("[1,2,3,4]")
	assert.True(t, errors.Is(err, apis.ErrMalformedInput))
}

func TestMalformed(t *testing.T) {
	for _, in := range []string{"[1,2", "{Name:Jimi", `{Name:"Jimi}`, "Name:Jimi", "{Name}"} {
		_, err := jsv.Parse[person](in)
		if strings.HasPrefix(in, "[") {
			_, err = jsv.Parse[[]int](in)
		}
		assert.True(t, errors.Is(err, apis.ErrMalformedInput), "%q: %v", in, err)
	}

	_, err := jsv.Parse[int]("abc")
	assert.True(t, errors.Is(err, apis.ErrMalformedInput))
}

func TestElementFailure(t *testing.T) {
	_, err := jsv.Parse[[]int]("[1,x,3]")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apis.ErrElement))

	var e *apis.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, 1, e.Index)

	_, err = jsv.Parse[person]("{Name:Jimi,Age:old}")
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "Age", e.Property)
	assert.Equal(t, reflect.TypeFor[person](), e.Type)
	assert.Contains(t, err.Error(), "Age")
}

type loop struct {
	Next *loop
}

func TestCyclicValue(t *testing.T) {
	l := &loop{}
	l.Next = l
	_, err := jsv.Serialize(l)
	assert.True(t, errors.Is(err, apis.ErrUnsupportedType))
}

func TestMarshalAndSerializeTo(t *testing.T) {
	b, err := jsv.Marshal(person{Name: "Jimi", Age: 27})
	require.NoError(t, err)
	assert.Equal(t, "{Name:Jimi,Age:27}", string(b))

	var buf bytes.Buffer
	require.NoError(t, jsv.SerializeTo(&buf, []string{"a b", "c"}))
	assert.Equal(t, "[a b,c]", buf.String())

	buf.Reset()
	assert.Error(t, jsv.SerializeTo(&buf, make(chan int)))
	assert.Zero(t, buf.Len(), "no partial output on error")

	var p person
	require.NoError(t, jsv.Unmarshal("{Age:3}", &p))
	assert.Equal(t, 3, p.Age)
	assert.ErrorIs(t, jsv.Unmarshal("{}", p), registry.ErrInvalidTarget)
}

type suit int

func TestRegisterEnum(t *testing.T) {
	fresh(t)
	require.NoError(t, jsv.RegisterEnum[suit](
		jsv.Member("Hearts", suit(0)),
		jsv.Member("Spades", suit(1)),
	))

	s, err := jsv.Serialize([]suit{1, 0, 7})
	require.NoError(t, err)
	assert.Equal(t, "[Spades,Hearts,7]", s)

	back, err := jsv.Parse[[]suit](s)
	require.NoError(t, err)
	assert.Equal(t, []suit{1, 0, 7}, back)

	_, err = jsv.Parse[suit]("Clubs")
	assert.True(t, errors.Is(err, apis.ErrMalformedInput))

	// Same members again are accepted even after first use.
	require.NoError(t, jsv.RegisterEnum[suit](jsv.Member("Hearts", suit(0)), jsv.Member("Spades", suit(1))))
	assert.ErrorIs(t, jsv.RegisterEnum[suit](jsv.Member("Hearts", suit(1))), registry.ErrConflictingRegistration)
}

type level uint8

func TestRegisterEnum_ByteKind(t *testing.T) {
	fresh(t)
	require.NoError(t, jsv.RegisterEnum[level](
		jsv.Member("Low", level(1)),
		jsv.Member("High", level(2)),
	))

	s, err := jsv.Serialize([]level{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "[Low,High]", s)

	back, err := jsv.Parse[[]level]("[Low,High]")
	require.NoError(t, err)
	assert.Equal(t, []level{1, 2}, back)

	// Plain bytes keep the base64 form.
	s, err = jsv.Serialize([]byte{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "AQI=", s)
}

type celsius float64

func TestRegisterFuncs(t *testing.T) {
	fresh(t)
	require.NoError(t, jsv.RegisterFuncs(
		func(s string) (celsius, error) {
			f, err := strconv.ParseFloat(strings.TrimSuffix(s, "C"), 64)
			return celsius(f), err
		},
		func(c celsius) (string, error) { return strconv.FormatFloat(float64(c), 'f', 1, 64) + "C", nil },
	))

	s, err := jsv.Serialize(map[string]celsius{"in": 21.5})
	require.NoError(t, err)
	assert.Equal(t, "{in:21.5C}", s)

	back, err := jsv.Parse[map[string]celsius](s)
	require.NoError(t, err)
	assert.Equal(t, map[string]celsius{"in": 21.5}, back)

	err = jsv.RegisterFuncs(
		func(s string) (celsius, error) { return 0, nil },
		func(c celsius) (string, error) { return "", nil },
	)
	assert.ErrorIs(t, err, registry.ErrConflictingRegistration)

	assert.ErrorIs(t, jsv.RegisterFuncs[person](nil, nil), registry.ErrNilFunc)
}

func TestRegisterAfterUse(t *testing.T) {
	fresh(t)
	type late int
	_, err := jsv.Serialize(late(1))
	require.NoError(t, err)

	err = jsv.RegisterEnum[late](jsv.Member("One", late(1)))
	assert.ErrorIs(t, err, registry.ErrAlreadyResolved)
}

type email struct {
	user, domain string
}

func (e email) String() string { return e.user + "@" + e.domain }

type csv []string

func TestRegisterStringConstructor(t *testing.T) {
	fresh(t)
	parse := func(s string) (email, error) {
		u, d, ok := strings.Cut(s, "@")
		if !ok {
			return email{}, fmt.Errorf("no @ in %q", s)
		}
		return email{user: u, domain: d}, nil
	}
	require.NoError(t, jsv.RegisterStringConstructor(parse))

	s, err := jsv.Serialize([]email{{"jimi", "example.com"}})
	require.NoError(t, err)
	assert.Equal(t, "[jimi@example.com]", s)

	back, err := jsv.Parse[[]email](s)
	require.NoError(t, err)
	assert.Equal(t, []email{{"jimi", "example.com"}}, back)

	_, err = jsv.Parse[email]("nobody")
	assert.True(t, errors.Is(err, apis.ErrMalformedInput))

	// A collection with a constructor is still written as a collection.
	require.NoError(t, jsv.RegisterStringConstructor(func(s string) (csv, error) {
		return csv(strings.Split(s, ";")), nil
	}))
	s, err = jsv.Serialize(csv{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "[a,b]", s)
}

type version struct {
	Major, Minor int
}

func (v version) MarshalJSV() (string, error) {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor), nil
}

func (v *version) UnmarshalJSV(raw string) error {
	_, err := fmt.Sscanf(raw, "%d.%d", &v.Major, &v.Minor)
	return err
}

func TestSelfCodec(t *testing.T) {
	type release struct {
		Name    string
		Version version
	}
	want := release{Name: "jsv", Version: version{1, 4}}
	s, err := jsv.Serialize(want)
	require.NoError(t, err)
	assert.Equal(t, "{Name:jsv,Version:1.4}", s)

	got, err := jsv.Parse[release](s)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAny(t *testing.T) {
	fresh(t)
	v, err := jsv.Parse[any](`{a:1,b:[x,"y,z"]}`)
	require.NoError(t, err)
	assert.Equal(t, `{a:1,b:[x,"y,z"]}`, v)

	v, err = jsv.Parse[any](`"a,b"`)
	require.NoError(t, err)
	assert.Equal(t, "a,b", v)

	jsv.SetConfig(config.NewConfig(config.WithConvertObjectTypes(true)))
	t.Cleanup(func() { jsv.SetConfig(config.DefaultConfig()) })
	v, err = jsv.Parse[any](`{a:1,b:[x,"y,z",true,2.5,],c:{}}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": int64(1),
		"b": []any{"x", "y,z", true, 2.5, nil},
		"c": map[string]any{},
	}, v)
}

func TestFormat(t *testing.T) {
	out, err := jsv.Format(`{a:1,b:[x,"y,{z}"],c:{},d:[]}`)
	require.NoError(t, err)
	assert.Equal(t, "{\n\ta:1,\n\tb:[\n\t\tx,\n\t\t\"y,{z}\"\n\t],\n\tc:{},\n\td:[]\n}", out)

	type doc struct {
		A int
		B []string
	}
	back, err := jsv.Parse[doc]("{\n\tA:1,\n\tB:[\n\t\tx\n\t]\n}")
	require.NoError(t, err)
	assert.Equal(t, doc{A: 1, B: []string{"x"}}, back)

	_, err = jsv.Format("{a:1")
	assert.True(t, errors.Is(err, apis.ErrMalformedInput))
	_, err = jsv.Format("{a:1} x")
	assert.True(t, errors.Is(err, apis.ErrMalformedInput))
}
