package journal

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a lenient exact-decimal money field. Upstream journal sources
// carry amounts as JSON numbers, quoted decimal strings, or garbage, so the
// parse verdict is recorded once at decode time and never re-checked.
// The zero value is a valid zero amount.
type Amount struct {
	dec     decimal.Decimal
	raw     string
	invalid bool
}

// Dec wraps a decimal in a valid Amount.
func Dec(d decimal.Decimal) Amount {
	return Amount{dec: d}
}

// MustAmount parses s and panics on failure. Intended for literals in
// tests and sample data.
func MustAmount(s string) Amount {
	a := ParseAmount(s)
	if !a.Valid() {
		panic("journal: invalid amount literal " + s)
	}
	return a
}

// ParseAmount parses a decimal string into an Amount. A string that does
// not parse yields an invalid Amount carrying the raw input.
func ParseAmount(s string) Amount {
	trimmed := strings.TrimSpace(s)
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Amount{raw: s, invalid: true}
	}
	return Amount{dec: d, raw: s}
}

// Valid reports whether the amount parsed as a decimal.
func (a Amount) Valid() bool { return !a.invalid }

// Raw returns the original input for invalid amounts, or the source string
// the amount was parsed from.
func (a Amount) Raw() string { return a.raw }

// Decimal returns the parsed value, or exact zero for invalid amounts.
func (a Amount) Decimal() decimal.Decimal {
	if a.invalid {
		return decimal.Zero
	}
	return a.dec
}

func (a Amount) String() string {
	if a.invalid {
		return a.raw
	}
	return a.dec.String()
}

// UnmarshalJSON accepts numbers, quoted decimal strings, and null. It never
// returns an error: an unparseable token produces an invalid Amount so the
// aggregator can warn and zero it instead of rejecting the document.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*a = Amount{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var q string
		if err := json.Unmarshal(b, &q); err != nil {
			*a = Amount{raw: s, invalid: true}
			return nil
		}
		*a = ParseAmount(q)
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		*a = Amount{raw: s, invalid: true}
		return nil
	}
	*a = Amount{dec: d, raw: s}
	return nil
}

// MarshalJSON renders the amount as a quoted decimal string, preserving the
// raw token for invalid amounts.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}
