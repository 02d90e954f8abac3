package jsonv

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/corrfill/errors"
)

func TestParse_Kinds(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
	}{
		{`null`, KindNull},
		{`true`, KindBool},
		{`false`, KindBool},
		{`42`, KindNumber},
		{`-1.5e3`, KindNumber},
		{`"text"`, KindString},
		{`[]`, KindArray},
		{`[1, "a", null]`, KindArray},
		{`{}`, KindObject},
		{`  {"a": {"b": [1]}}  `, KindObject},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind())
		})
	}
}

func TestParse_PreservesKeyOrder(t *testing.T) {
	v := MustParse(`{"zeta": 1, "alpha": 2, "Mid": {"y": 1, "x": 2}}`)

	assert.Equal(t, []string{"zeta", "alpha", "Mid"}, v.Object().Keys())
	mid, ok := v.Object().Get("Mid")
	require.True(t, ok)
	assert.Equal(t, []string{"y", "x"}, mid.Object().Keys())
}

func TestParse_DuplicateKeyKeepsFirstPositionLastValue(t *testing.T) {
	v := MustParse(`{"a": 1, "b": 2, "a": 3}`)

	assert.Equal(t, []string{"a", "b"}, v.Object().Keys())
	a, _ := v.Object().Get("a")
	lit, _ := a.Literal()
	assert.Equal(t, "3", lit)
}

func TestParse_StringEscapes(t *testing.T) {
	v := MustParse(`{"k\"ey": "line\nbreak é \/"}`)

	val, ok := v.Object().Get(`k"ey`)
	require.True(t, ok)
	s, ok := val.AsString()
	require.True(t, ok)
	assert.Equal(t, "line\nbreak é /", s)
}

func TestParse_LoneSurrogates(t *testing.T) {
	v, err := Parse([]byte(`{"a":"\ud800","b":"x\udc00\u0041","k\ud800":{"n":1}}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "k\uFFFD"}, v.Object().Keys())
	a, _ := v.Object().Get("a")
	s, _ := a.AsString()
	assert.Equal(t, "\uFFFD", s)
	b, _ := v.Object().Get("b")
	s, _ = b.AsString()
	assert.Equal(t, "x\uFFFDA", s)
	k, _ := v.Object().Get("k\uFFFD")
	assert.Equal(t, `{"n":1}`, k.String())
}

func TestParse_NumberLiteralKept(t *testing.T) {
	for _, lit := range []string{"0", "42", "-7", "1.50", "1e10", "12345678901234567890"} {
		v := MustParse(lit)
		got, ok := v.Literal()
		require.True(t, ok)
		assert.Equal(t, lit, got)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, input := range []string{
		``,
		`   `,
		`{"a": }`,
		`[1, 2`,
		`{"a": 1} trailing`,
		`01`,
		`-`,
		`nul`,
		`{"a":1,}`,
		`{"a":{"b":2,},"c":3}`,
		`[1,2,]`,
		"{\"a\":\"tab\there\"}",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse([]byte(input))
			require.Error(t, err)
			assert.True(t, errors.IsInvalidRequestError(err), "got %v", err)
		})
	}
}

func TestMarshalJSON_RoundTripsOrderAndLiterals(t *testing.T) {
	src := `{"b":1.50,"a":[true,null,"x/y <tag>"],"c":{"z":{},"y":[]}}`
	v := MustParse(src)

	out, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, src, string(out))
}

func TestMarshalIndent(t *testing.T) {
	v := MustParse(`{"greeting":"Troy","code":7,"flag":null,"list":[]}`)

	out, err := MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"greeting\": \"Troy\",\n  \"code\": 7,\n  \"flag\": null,\n  \"list\": []\n}", string(out))
}

func TestUnmarshalJSON_InsideStruct(t *testing.T) {
	var doc struct {
		Name string `json:"name"`
		Data Value  `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"name":"n","data":{"y":1,"x":2}}`), &doc))

	assert.Equal(t, "n", doc.Name)
	assert.Equal(t, []string{"y", "x"}, doc.Data.Object().Keys())
}

func TestClone_SharesNoContainers(t *testing.T) {
	orig := MustParse(`{"a":{"b":[1,2]}}`)
	clone := orig.Clone()
	require.True(t, orig.Equal(clone))

	inner, _ := clone.Object().Get("a")
	inner.Object().Set("b", String("changed"))
	clone.Object().Set("new", Null())

	assert.Equal(t, `{"a":{"b":[1,2]}}`, orig.String())
	assert.Equal(t, `{"a":{"b":"changed"},"new":null}`, clone.String())
}

func TestEqual(t *testing.T) {
	assert.True(t, MustParse(`{"a":[1,"x"]}`).Equal(MustParse(`{ "a" : [ 1 , "x" ] }`)))
	assert.False(t, MustParse(`{"a":1,"b":2}`).Equal(MustParse(`{"b":2,"a":1}`)), "member order matters")
	assert.False(t, MustParse(`1.0`).Equal(MustParse(`1`)), "literal text matters")
	assert.False(t, MustParse(`"1"`).Equal(MustParse(`1`)))
	assert.True(t, Null().Equal(Value{}))
}

func TestObject_SetKeepsPosition(t *testing.T) {
	o := NewObject()
	o.Set("a", Number("1"))
	o.Set("b", Number("2"))
	o.Set("a", Number("3"))

	assert.Equal(t, []string{"a", "b"}, o.Keys())
	assert.Equal(t, `{"a":3,"b":2}`, ObjectValue(o).String())
}

func TestAccessorsOnWrongKind(t *testing.T) {
	v := String("x")

	_, ok := v.AsBool()
	assert.False(t, ok)
	_, ok = v.Literal()
	assert.False(t, ok)
	assert.Nil(t, v.Elems())
	assert.Nil(t, v.Object())
	assert.Equal(t, 0, v.Object().Len())

	_, ok = Number("1").AsString()
	assert.False(t, ok)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "object", KindObject.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestReadWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/out/nested/doc.json"

	doc := MustParse(`{"z":1,"a":["x/y",true]}`)
	require.NoError(t, WriteFile(path, doc))

	back, err := ReadFile(path)
	require.NoError(t, err)
	assert.True(t, doc.Equal(back))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"z\": 1,\n  \"a\": [\n    \"x/y\",\n    true\n  ]\n}\n", string(raw))
}

func TestReadFile_Errors(t *testing.T) {
	_, err := ReadFile(t.TempDir() + "/missing.json")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))

	bad := t.TempDir() + "/bad.json"
	require.NoError(t, os.WriteFile(bad, []byte(`{"a":`), 0644))
	_, err = ReadFile(bad)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidRequestError(err))
	assert.Contains(t, err.Error(), bad)
}
