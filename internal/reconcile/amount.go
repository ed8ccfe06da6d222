package reconcile

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// nonNumeric matches everything hledger decorates an amount with.
var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// ParseAmount strips commodity symbols, thousands separators and spaces from
// an hledger amount and parses what is left as an exact decimal.
func ParseAmount(amount string) (decimal.Decimal, error) {
	return decimal.NewFromString(nonNumeric.ReplaceAllString(amount, ""))
}

// Negate flips the sign of an amount string while keeping its commodity
// decoration in place: "$100.00" <-> "$-100.00", "5 EUR" <-> "-5 EUR".
// The minus always sits just before the first digit, which is hledger's
// canonical form. An input with the sign ahead of the commodity is therefore
// normalized on the way back: "-$100.00" -> "$100.00" -> "$-100.00".
func Negate(amount string) string {
	start := strings.IndexAny(amount, "-0123456789.")
	if start < 0 {
		return amount
	}
	if amount[start] == '-' {
		return amount[:start] + amount[start+1:]
	}
	return amount[:start] + "-" + amount[start:]
}

// EqualUnderNegation reports whether b is the negation of a. Both sides are
// compared as exact decimals; ok is false when either fails to parse, in
// which case the textual negation is compared instead.
func EqualUnderNegation(a, b string) (equal bool, ok bool) {
	da, errA := ParseAmount(a)
	db, errB := ParseAmount(b)
	if errA != nil || errB != nil {
		return strings.TrimSpace(Negate(a)) == strings.TrimSpace(b), false
	}
	return da.Neg().Equal(db), true
}
