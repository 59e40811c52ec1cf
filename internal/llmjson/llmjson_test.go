package llmjson

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"plain":                        "plain",
		"```json\n{\"a\":1}\n```":      `{"a":1}`,
		"```\n[1,2]\n```":              "[1,2]",
		"Sure!\n```json\n[3]\n```\nok": "[3]",
		"```[4]```":                    "[4]",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripFences(in), "input %q", in)
	}
}

func TestExtract_Object(t *testing.T) {
	raw, err := Extract(`Here you go: {"name":"a}b","score":0.5} trailing {"x":1}`, '{')
	require.NoError(t, err)
	assert.Equal(t, `{"name":"a}b","score":0.5}`, raw)
}

func TestExtract_NestedArray(t *testing.T) {
	raw, err := Extract(`[[1,2],[3,"]"]] and more`, '[')
	require.NoError(t, err)
	assert.Equal(t, `[[1,2],[3,"]"]]`, raw)
}

func TestExtract_EscapedQuote(t *testing.T) {
	raw, err := Extract(`{"name":"say \"}\" now"}`, '{')
	require.NoError(t, err)
	assert.Equal(t, `{"name":"say \"}\" now"}`, raw)
}

func TestExtract_Missing(t *testing.T) {
	_, err := Extract("no json here", '[')
	assert.ErrorIs(t, err, ErrNoJSON)

	_, err = Extract(`[{"name":"a"`, '[')
	assert.ErrorIs(t, err, ErrNoJSON)

	_, err = Extract("{}", '(')
	assert.Error(t, err)
}

func TestDecodeArray(t *testing.T) {
	res := DecodeArray[item]("```json\n[{\"name\":\"a\",\"score\":0.9},{\"name\":\"b\",\"score\":0.1}]\n```")
	require.True(t, res.OK(), "reason: %v", res.Reason)
	assert.Equal(t, []item{{"a", 0.9}, {"b", 0.1}}, res.Value)
}

func TestDecodeArray_WrongShape(t *testing.T) {
	res := DecodeArray[item](`[{"name": 5}]`)
	assert.False(t, res.OK())
	assert.Contains(t, res.Reason.Error(), "decoding model JSON")
}

func TestDecodeObject(t *testing.T) {
	res := DecodeObject[item](`{"name":"x","score":1}`)
	require.True(t, res.OK())
	assert.Equal(t, item{"x", 1}, res.Value)

	res = DecodeObject[item](`[1,2,3]`)
	assert.False(t, res.OK())
	assert.True(t, errors.Is(res.Reason, ErrNoJSON))
}

func TestDecodeArrayOrObject(t *testing.T) {
	res := DecodeArrayOrObject[item](`{"name":"solo"}`)
	require.True(t, res.OK())
	assert.Equal(t, []item{{Name: "solo"}}, res.Value)

	res = DecodeArrayOrObject[item](`[{"name":"a"},{"name":"b"}]`)
	require.True(t, res.OK())
	assert.Len(t, res.Value, 2)

	res = DecodeArrayOrObject[item](`nothing`)
	assert.False(t, res.OK())
}

func TestCompact(t *testing.T) {
	assert.Equal(t, `{"a":1}`, Compact("{ \"a\" : 1 }"))
	assert.Equal(t, "not json", Compact("not json"))
}
