package format

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type magnitude struct {
	floor  float64
	suffix string
}

// Breakpoints are checked from largest to smallest.
var magnitudes = []magnitude{
	{1e12, "billones"},
	{1e9, "mil millones"},
	{1e6, "millones"},
	{1e3, "mil"},
}

// Abbreviate renders an amount as an abbreviated currency string, e.g.
// 2500000 becomes "$2.50 millones". Amounts under one thousand use the full
// Currency form. Negative amounts keep a leading sign ("-$1.50 mil").
func Abbreviate(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "n/d"
	}

	abs := math.Abs(amount)
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	for _, m := range magnitudes {
		if abs >= m.floor {
			return fmt.Sprintf("%s$%.2f %s", sign, abs/m.floor, m.suffix)
		}
	}
	return Currency(amount)
}

// Percent renders a signed percentage with one decimal, e.g. "+12.5%".
func Percent(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return "n/d"
	}
	return fmt.Sprintf("%+.1f%%", pct)
}

var countPrinter = message.NewPrinter(language.English)

// Count renders an integer with thousands separators, e.g. "12,345".
func Count(n int64) string {
	return countPrinter.Sprintf("%d", n)
}
