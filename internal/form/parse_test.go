package form

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a, b ,,c", []string{"a", "b", "c"}},
		{"", []string{}},
		{" , ,", []string{}},
		{"classic", []string{"classic"}},
		{"x, x, y", []string{"x", "x", "y"}},
		{"Ursula K. Le Guin,  Frank Herbert ", []string{"Ursula K. Le Guin", "Frank Herbert"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := SplitList(tt.in)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJoinListRoundTrip(t *testing.T) {
	values := []string{"b", "a", "b"}
	assert.Equal(t, "b, a, b", JoinList(values))
	assert.Equal(t, values, SplitList(JoinList(values)))
}

func TestParseYear(t *testing.T) {
	y, err := ParseYear(" 2022 ")
	require.NoError(t, err)
	assert.Equal(t, 2022, y)

	for _, bad := range []string{"", "abc", "20x2", "-1", "10000", "2022.5"} {
		t.Run(bad, func(t *testing.T) {
			_, err := ParseYear(bad)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidField))

			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, "year", fe.Field)
		})
	}
}

func TestParseOptionalInt(t *testing.T) {
	v, err := ParseOptionalInt("pages", "")
	require.NoError(t, err)
	assert.Nil(t, v, "empty input omits the field")

	v, err = ParseOptionalInt("pages", "  320")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 320, *v)

	_, err = ParseOptionalInt("pages", "many")
	assert.ErrorContains(t, err, `pages: "many" is not a whole number`)

	_, err = ParseOptionalInt("runtime", "-5")
	assert.ErrorContains(t, err, "must not be negative")
}

func TestParseID(t *testing.T) {
	id, err := ParseID("itemId", "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-3", "4a"} {
		_, err := ParseID("itemId", bad)
		assert.Error(t, err, bad)
	}
}
