package format

import (
	"math"
	"testing"
)

func TestAbbreviate(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected string
	}{
		{"Zero", 0, "$0.00"},
		{"Below one thousand", 999, "$999.00"},
		{"Fractional below one thousand", 12.345, "$12.35"},
		{"Thousands", 1_500, "$1.50 mil"},
		{"Exactly one thousand", 1_000, "$1.00 mil"},
		{"Millions", 2_500_000, "$2.50 millones"},
		{"Thousands of millions", 3_250_000_000, "$3.25 mil millones"},
		{"Billions", 1_200_000_000_000, "$1.20 billones"},
		{"Negative thousands", -1_500, "-$1.50 mil"},
		{"Negative small", -42.5, "-$42.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Abbreviate(tt.amount); got != tt.expected {
				t.Errorf("Abbreviate(%v) = %q, expected %q", tt.amount, got, tt.expected)
			}
		})
	}
}

func TestAbbreviateNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got := Abbreviate(v); got != "n/d" {
			t.Errorf("Abbreviate(%v) = %q, expected n/d", v, got)
		}
	}
}

func TestCurrency(t *testing.T) {
	tests := map[float64]string{
		0:          "$0.00",
		999.999:    "$1,000.00",
		1234.5:     "$1,234.50",
		-1234567.1: "-$1,234,567.10",
	}
	for amount, expected := range tests {
		if got := Currency(amount); got != expected {
			t.Errorf("Currency(%v) = %q, expected %q", amount, got, expected)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := map[float64]string{
		50:     "+50.0%",
		-20:    "-20.0%",
		0:      "+0.0%",
		12.345: "+12.3%",
	}
	for pct, expected := range tests {
		if got := Percent(pct); got != expected {
			t.Errorf("Percent(%v) = %q, expected %q", pct, got, expected)
		}
	}
}

func TestCount(t *testing.T) {
	tests := map[int64]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
	}
	for n, expected := range tests {
		if got := Count(n); got != expected {
			t.Errorf("Count(%d) = %q, expected %q", n, got, expected)
		}
	}
}
