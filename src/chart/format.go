package chart

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const rupee = "₹"

// IsIndex reports whether symbol names an index (caret prefix).
func IsIndex(symbol string) bool {
	return strings.HasPrefix(symbol, "^")
}

// FormatCurrency renders a price for symbol: indices as plain en-IN numbers
// (up to three fraction digits), everything else as rupees with two digits.
func FormatCurrency(symbol string, v float64) string {
	if IsIndex(symbol) {
		return FormatIndianNumber(v, 0, 3)
	}
	s := FormatIndianNumber(v, 2, 2)
	if strings.HasPrefix(s, "-") {
		return "-" + rupee + s[1:]
	}
	return rupee + s
}

// FormatIndianNumber groups the integer part the en-IN way (last three
// digits, then pairs) and keeps between minFrac and maxFrac fraction digits.
func FormatIndianNumber(v float64, minFrac, maxFrac int) string {
	d := decimal.NewFromFloat(v).Round(int32(maxFrac))
	neg := d.IsNegative()
	s := d.Abs().StringFixed(int32(maxFrac))

	intPart, frac, _ := strings.Cut(s, ".")
	for len(frac) > minFrac && strings.HasSuffix(frac, "0") {
		frac = frac[:len(frac)-1]
	}

	out := groupIndian(intPart)
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(append(groups, tail), ",")
}

// -----------------------------------------------------------------------------

// TickLabel formats an axis tick: clock time for intraday ranges, month and
// day otherwise.
func TickLabel(tsMillis int64, intraday bool, loc *time.Location) string {
	t := time.UnixMilli(tsMillis).In(loc)
	if intraday {
		return t.Format("15:04")
	}
	return t.Format("Jan 2")
}

// TooltipLabel formats the hover label of one sample.
func TooltipLabel(tsMillis int64, intraday bool, loc *time.Location) string {
	t := time.UnixMilli(tsMillis).In(loc)
	if intraday {
		return t.Format("Mon, Jan 2, 2006, 15:04")
	}
	return t.Format("Monday, January 2, 2006")
}

// FormatChange renders "+x.xx (+y.yy%)".
func FormatChange(change, percent float64) string {
	return signed(change) + " (" + signed(percent) + "%)"
}

// signed takes its sign from the rounded value so -0.001 prints as +0.00.
func signed(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.Sign() < 0 {
		return d.StringFixed(2)
	}
	return "+" + d.Abs().StringFixed(2)
}
