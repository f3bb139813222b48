package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalScalars(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"true", true, `true`},
		{"false", false, `false`},
		{"int", 42, `42`},
		{"negative int64", int64(-7), `-7`},
		{"max uint64", ^uint64(0), `18446744073709551615`},
		{"uint32", uint32(4095), `4095`},
		{"string", "hello", `"hello"`},
		{"html not escaped", "<a&b>", `"<a&b>"`},
		{"quote and backslash", `a"b\c`, `"a\"b\\c"`},
		{"line separator literal", "a\u2028b", "\"a\u2028b\""},
		{"escaped backslash before u2028 text", `\u2028`, `"\\u2028"`},
		{"empty array", []any{}, `[]`},
		{"empty object", map[string]any{}, `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonicalSortsKeys(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"b": 2,
		"a": 1,
		"c": []any{"z", "y"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2,"c":["z","y"]}`, string(got))
}

func TestMarshalCanonicalUTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as a surrogate pair (0xD83D...) which sorts before
	// U+FB01 (0xFB01) in UTF-16 even though its code point is larger.
	got, err := MarshalCanonical(map[string]any{
		"\ufb01":     1,
		"\U0001F600": 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"\ufb01\":1}", string(got))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	decomposed := "e\u0301"
	got, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(got))
}

func TestMarshalCanonicalRejects(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.ErrorIs(t, err, errNull)

	_, err = MarshalCanonical(1.5)
	assert.ErrorIs(t, err, errFloat)

	_, err = MarshalCanonical(map[string]any{"x": []any{nil}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `value for key "x"`)
	assert.Contains(t, err.Error(), "array[0]")

	_, err = MarshalCanonical(struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}

func TestMarshalCanonicalShadowState(t *testing.T) {
	got, err := MarshalCanonical(ShadowState{
		Slot:          1,
		Enabled:       true,
		SourceDigit:   5,
		Divisor:       2,
		OverflowCount: 1,
		Count:         3,
	})
	require.NoError(t, err)
	assert.Equal(t,
		`{"count":3,"divisor":2,"enabled":true,"overflow_count":1,"slot":1,"source_digit":5}`,
		string(got))
}
