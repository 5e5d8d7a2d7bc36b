package journal

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
		want  string
	}{
		{"plain integer", "100", true, "100"},
		{"decimal places", "25.75", true, "25.75"},
		{"negative", "-10.50", true, "-10.5"},
		{"surrounding whitespace", " 42 ", true, "42"},
		{"garbage", "ABC", false, "0"},
		{"empty string", "", false, "0"},
		{"mixed", "12x", false, "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := ParseAmount(tc.input)
			assert.Equal(t, tc.valid, a.Valid())
			assert.True(t, a.Decimal().Equal(decimal.RequireFromString(tc.want)),
				"got %s, want %s", a.Decimal(), tc.want)
			if !tc.valid {
				assert.Equal(t, tc.input, a.Raw())
			}
		})
	}
}

func TestAmountZeroValue(t *testing.T) {
	var a Amount
	assert.True(t, a.Valid())
	assert.True(t, a.Decimal().IsZero())
}

func TestAmountUnmarshalJSON(t *testing.T) {
	var p Posting
	require.NoError(t, json.Unmarshal(
		[]byte(`{"account":"Cash","debit":"ABC","credit":"10"}`), &p))

	assert.False(t, p.Debit.Valid())
	assert.Equal(t, "ABC", p.Debit.Raw())
	assert.True(t, p.Debit.Decimal().IsZero())

	assert.True(t, p.Credit.Valid())
	assert.True(t, p.Credit.Decimal().Equal(decimal.RequireFromString("10")))
}

func TestAmountUnmarshalJSONNumberAndNull(t *testing.T) {
	var p Posting
	require.NoError(t, json.Unmarshal(
		[]byte(`{"account":"Cash","debit":25.75,"credit":null}`), &p))

	assert.True(t, p.Debit.Valid())
	assert.True(t, p.Debit.Decimal().Equal(decimal.RequireFromString("25.75")))
	assert.True(t, p.Credit.Valid())
	assert.True(t, p.Credit.Decimal().IsZero())
}

func TestAmountMarshalRoundTrip(t *testing.T) {
	p := Posting{Account: "Cash", Debit: MustAmount("50.00"), Credit: ParseAmount("bogus")}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var back Posting
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Debit.Valid())
	assert.True(t, back.Debit.Decimal().Equal(decimal.RequireFromString("50")))
	// Invalid amounts keep their raw token through a round trip.
	assert.False(t, back.Credit.Valid())
	assert.Equal(t, "bogus", back.Credit.Raw())
}
