package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func knownCodes(codes ...string) func(string) bool {
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return func(code string) bool { return set[code] }
}

var known = knownCodes("11050", "10050", "10000", "2000")

func TestParseConsumesEveryToken(t *testing.T) {
	inputs := [][]string{
		{},
		{"11050"},
		{"11050", "3", "10050", "2"},
		{"abc", "11050"},
		{"11050", "abc"},
		{"11050", "2000", "3"},
		{"11050,1,", "10000", ",3,,10050"},
		{"99999", "x", "11050", "0", "10050", "-2", "12abc"},
		{"11050", "10050", "10000"},
	}
	for _, in := range inputs {
		res := Parse(in, 1000, known)
		assert.Equal(t, len(Normalize(in)), res.Consumed, "input %v", in)
	}
}

func TestParseQuantities(t *testing.T) {
	t.Run("explicit quantities", func(t *testing.T) {
		res := Parse([]string{"11050", "3", "10050", "2"}, 1000, known)
		assert.Equal(t, []LineItem{{"11050", 3}, {"10050", 2}}, res.Items)
		assert.Empty(t, res.Invalid)
	})

	t.Run("missing quantity defaults to one", func(t *testing.T) {
		res := Parse([]string{"11050"}, 1000, known)
		assert.Equal(t, []LineItem{{"11050", 1}}, res.Items)
	})

	t.Run("out of range quantity is the next code", func(t *testing.T) {
		res := Parse([]string{"11050", "2000", "3"}, 1000, known)
		assert.Equal(t, []LineItem{{"11050", 1}, {"2000", 3}}, res.Items)
		assert.Empty(t, res.Invalid)
	})

	t.Run("commas and spaces are interchangeable", func(t *testing.T) {
		res := Parse([]string{"11050,1,", "10000", ",3,,10050"}, 1000, known)
		assert.Equal(t, []LineItem{{"11050", 1}, {"10000", 3}, {"10050", 1}}, res.Items)
	})

	t.Run("leading integer quantity", func(t *testing.T) {
		res := Parse([]string{"11050", "4pzs"}, 1000, known)
		assert.Equal(t, []LineItem{{"11050", 4}}, res.Items)
	})
}

func TestParseInvalidEntries(t *testing.T) {
	t.Run("bad code then valid code", func(t *testing.T) {
		res := Parse([]string{"abc", "11050"}, 1000, known)
		assert.Equal(t, []LineItem{{"11050", 1}}, res.Items)
		require.Len(t, res.Invalid, 1)
		assert.Equal(t, InvalidEntry{Token: "abc", Reason: InvalidTokenFormat}, res.Invalid[0])
	})

	t.Run("bad quantity consumes both tokens", func(t *testing.T) {
		res := Parse([]string{"11050", "abc"}, 1000, known)
		assert.Empty(t, res.Items)
		require.Len(t, res.Invalid, 1)
		assert.Equal(t, InvalidEntry{Token: "11050", Reason: InvalidQuantityToken, Quantity: "abc"}, res.Invalid[0])
	})

	t.Run("unknown code", func(t *testing.T) {
		res := Parse([]string{"123", "12abc"}, 1000, known)
		assert.Empty(t, res.Items)
		assert.Equal(t, []InvalidEntry{
			{Token: "123", Reason: UnknownProductCode},
			{Token: "12abc", Reason: UnknownProductCode},
		}, res.Invalid)
	})

	t.Run("zero or negative quantity", func(t *testing.T) {
		res := Parse([]string{"11050", "0", "10050", "-2", "10000"}, 1000, known)
		assert.Equal(t, []LineItem{{"10000", 1}}, res.Items)
		assert.Equal(t, []InvalidEntry{
			{Token: "11050", Reason: InvalidQuantityToken, Quantity: "0"},
			{Token: "10050", Reason: InvalidQuantityToken, Quantity: "-2"},
		}, res.Invalid)
	})
}

func TestInvalidEntryString(t *testing.T) {
	assert.Equal(t, `"abc" (no es un código válido)`, InvalidEntry{Token: "abc", Reason: InvalidTokenFormat}.String())
	assert.Equal(t, `"123" (código de producto no válido)`, InvalidEntry{Token: "123", Reason: UnknownProductCode}.String())
	assert.Equal(t, `"11050" (cantidad inválida: "abc")`,
		InvalidEntry{Token: "11050", Reason: InvalidQuantityToken, Quantity: "abc"}.String())
}

func TestLeadingInt(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"42", 42, true},
		{"+7", 7, true},
		{"-3", -3, true},
		{"12abc", 12, true},
		{"abc", 0, false},
		{"-", 0, false},
		{"", 0, false},
		{"99999999999999999999999", 9223372036854775807, true},
	}
	for _, tc := range cases {
		got, ok := leadingInt(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.in)
		}
	}
}
