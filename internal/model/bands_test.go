package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRevenueBandFor(t *testing.T) {
	tests := []struct {
		name string
		usd  float64
		want RevenueBand
	}{
		{"zero", 0, RevenueBand0To500K},
		{"just under 500K", 499_999, RevenueBand0To500K},
		{"exactly 500K", 500_000, RevenueBand500KTo5M},
		{"42M press release", 42_000_000, RevenueBand25MTo75M},
		{"boundary 75M", 75_000_000, RevenueBand75MTo200M},
		{"200M", 200_000_000, RevenueBand200MTo1B},
		{"billion plus", 3_400_000_000, RevenueBand1BPlus},
		{"negative", -1, RevenueBandUnknown},
		{"nan", math.NaN(), RevenueBandUnknown},
		{"inf", math.Inf(1), RevenueBandUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RevenueBandFor(tc.usd))
		})
	}
}

func TestRevenueBandMonotonic(t *testing.T) {
	// band(usd1) <= band(usd2) whenever usd1 < usd2, and every non-negative
	// finite value maps to exactly one band.
	values := []float64{0, 1, 499_999, 500_000, 4_999_999, 5_000_000,
		24_999_999, 25_000_000, 74_999_999, 75_000_000, 199_999_999,
		200_000_000, 999_999_999, 1_000_000_000, 5e12}

	prev := -1
	for _, v := range values {
		band := RevenueBandFor(v)
		assert.NotEqual(t, RevenueBandUnknown, band, "value %v must map to a band", v)
		ord := band.Ordinal()
		assert.GreaterOrEqual(t, ord, prev, "band order regressed at %v", v)
		prev = ord
	}
}

func TestRevenueBandOrdinalAndBounds(t *testing.T) {
	bands := AllRevenueBands()
	for i, b := range bands {
		assert.Equal(t, i, b.Ordinal())
		if i > 0 {
			assert.Equal(t, bands[i-1].CeilingUSD(), b.FloorUSD())
		}
	}
	assert.Equal(t, -1, RevenueBandUnknown.Ordinal())
	assert.True(t, math.IsInf(RevenueBand1BPlus.CeilingUSD(), 1))
}

func TestRevenueBandNext(t *testing.T) {
	assert.Equal(t, RevenueBand500KTo5M, RevenueBand0To500K.Next())
	assert.Equal(t, RevenueBand1BPlus, RevenueBand1BPlus.Next())
	assert.Equal(t, RevenueBandUnknown, RevenueBandUnknown.Next())
}

func TestEmployeeBandFor(t *testing.T) {
	tests := []struct {
		count int
		want  EmployeeBand
	}{
		{0, EmployeeBandUnknown},
		{-5, EmployeeBandUnknown},
		{1, EmployeeBand1To10},
		{10, EmployeeBand1To10},
		{11, EmployeeBand11To50},
		{200, EmployeeBand51To200},
		{1001, EmployeeBand1KTo5K},
		{5000, EmployeeBand1KTo5K},
		{12000, EmployeeBand10KPlus},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, EmployeeBandFor(tc.count), "count %d", tc.count)
	}
}

func TestParseEmployeeBand(t *testing.T) {
	tests := []struct {
		text string
		want EmployeeBand
	}{
		{"51-200 employees", EmployeeBand51To200},
		{"1,001-5,000 Employees", EmployeeBand1KTo5K},
		{"10,000+ employees on LinkedIn", EmployeeBand10KPlus},
		{"11 to 50", EmployeeBand11To50},
		{"about 340 staff", EmployeeBand201To500},
		{"no numbers here", EmployeeBandUnknown},
		{"", EmployeeBandUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseEmployeeBand(tc.text))
		})
	}
}
