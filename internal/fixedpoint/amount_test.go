package fixedpoint

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		scale Scale
		raw   string
	}{
		{name: "whole", input: "10", scale: Wad, raw: "10000000000000000000"},
		{name: "fraction", input: "0.5", scale: Wad, raw: "500000000000000000"},
		{name: "padded", input: "  1.25 ", scale: Ray, raw: "1250000000000000000000000000"},
		{name: "smallest wad", input: "0.000000000000000001", scale: Wad, raw: "1"},
		{name: "exponent", input: "1e3", scale: Wad, raw: "1000000000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input, tt.scale)
			require.NoError(t, err)
			assert.Equal(t, tt.raw, got.Raw().String())
			assert.Equal(t, tt.scale, got.Scale())
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, input := range []string{"", "abc", "-1", "1.0000000000000000001", "1,5"} {
		_, err := Parse(input, Wad)
		require.Error(t, err, "input %q", input)
		assert.True(t, errors.Is(err, ErrParse), "input %q", input)

		var pe *ParseError
		assert.True(t, errors.As(err, &pe))
	}
}

func TestParseSignedAcceptsNegative(t *testing.T) {
	got, err := ParseSigned("-2.5", Wad)
	require.NoError(t, err)
	assert.True(t, got.IsNegative())
	assert.Equal(t, "-2.5", got.String())
}

func TestAddSubRoundTrip(t *testing.T) {
	inputs := []string{"0", "1", "0.000000000000000001", "123456789.123456789123456789", "99999999999999999999.5"}
	for _, x := range inputs {
		for _, y := range inputs {
			a := MustParse(x, Wad)
			b := MustParse(y, Wad)
			assert.True(t, a.Add(b).Sub(b).Equal(a), "(%s + %s) - %s", x, y, y)
		}
	}
}

func TestMixedScalePanics(t *testing.T) {
	wad := FromInt(1, Wad)
	ray := FromInt(1, Ray)

	assert.Panics(t, func() { wad.Add(ray) })
	assert.Panics(t, func() { wad.Sub(ray) })
	assert.Panics(t, func() { wad.Cmp(ray) })
}

func TestMulDiv(t *testing.T) {
	collateral := MustParse("10", Wad)
	price := MustParse("1500.5", Ray)

	product := collateral.Mul(price)
	assert.Equal(t, Rad, product.Scale())
	assert.Equal(t, "15005", product.String())

	value := product.RoundDown(Wad)
	assert.Equal(t, "15005", value.String())

	third := FromInt(1, Wad).DivAt(FromInt(3, Wad), Wad)
	assert.Equal(t, "0.333333333333333333", third.String())

	thirdUp := FromInt(1, Wad).DivAtUp(FromInt(3, Wad), Wad)
	assert.Equal(t, "0.333333333333333334", thirdUp.String())

	exact := FromInt(6, Wad).DivAtUp(FromInt(3, Wad), Wad)
	assert.Equal(t, "2", exact.String())

	assert.Panics(t, func() { collateral.Div(Zero(Wad)) })
}

func TestRescale(t *testing.T) {
	a := MustParse("1.5", Wad)
	assert.Equal(t, "1.5", a.Rescale(Ray).String())
	assert.Equal(t, Ray, a.Rescale(Ray).Scale())

	fine := MustParse("1.000000000000000000000000001", Ray)
	assert.Panics(t, func() { fine.Rescale(Wad) })
	assert.Equal(t, "1", fine.RoundDown(Wad).String())
	assert.Equal(t, "1.000000000000000001", fine.RoundUp(Wad).String())
}

func TestMaxZero(t *testing.T) {
	assert.True(t, MustParse("-3", Wad).MaxZero().IsZero())
	assert.Equal(t, "3", MustParse("3", Wad).MaxZero().String())
	assert.Equal(t, "5", Max(FromInt(5, Wad), FromInt(2, Wad)).String())
	assert.Equal(t, "2", Min(FromInt(5, Wad), FromInt(2, Wad)).String())
}

func TestPow(t *testing.T) {
	assert.Equal(t, "1", MustParse("1.1", Ray).Pow(0).String())
	assert.Equal(t, "1.21", MustParse("1.1", Ray).Pow(2).String())
	assert.Equal(t, "1.331", MustParse("1.1", Ray).Pow(3).String())
	assert.Equal(t, "1.024", MustParse("1.002", Ray).Pow(12).RoundDown(3).String())
}

func TestFromBig(t *testing.T) {
	a, err := FromBig(big.NewInt(42), Wad)
	require.NoError(t, err)
	assert.Equal(t, "0.000000000000000042", a.String())

	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err = FromBig(tooBig, Wad)
	assert.ErrorIs(t, err, ErrParse)

	_, err = FromBig(big.NewInt(-1), Wad)
	assert.ErrorIs(t, err, ErrParse)
}

func TestFormat(t *testing.T) {
	a := MustParse("1234.56789", Wad)
	assert.Equal(t, "1234.56", a.Format(2))
	assert.Equal(t, "1234.56789000", a.FormatFixed(8))
	assert.Equal(t, "1234", a.Format(0))

	b, err := a.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1234.56789"`, string(b))
}

func TestZeroValueAmount(t *testing.T) {
	var a Amount
	assert.True(t, a.IsZero())
	assert.Equal(t, "0", a.String())
	assert.Equal(t, "0", a.Raw().String())
}
