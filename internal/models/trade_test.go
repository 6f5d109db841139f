package models

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var btcUSD = MustCurrencyPair("BTC", "USD")

func newTestTrade(t *testing.T, id, price, amount string) Trade {
	t.Helper()
	trade, err := NewTradeBuilder().
		Type(Bid).
		OriginalAmount(decimal.RequireFromString(amount)).
		CurrencyPair(btcUSD).
		Price(decimal.RequireFromString(price)).
		Timestamp(time.Unix(1358237006, 0).UTC()).
		ID(id).
		Build()
	require.NoError(t, err)
	return trade
}

func TestTrade_IdentityEquality(t *testing.T) {
	a := newTestTrade(t, "42", "16.634", "1.5")
	b := newTestTrade(t, "42", "99.99", "0.01")
	c := newTestTrade(t, "43", "16.634", "1.5")

	assert.True(t, a.Equal(b), "same id must be equal regardless of price and amount")
	assert.True(t, b.Equal(a))
	assert.False(t, a.Equal(c), "different ids must differ even with identical fields")
	assert.Equal(t, a.Key(), b.Key())
}

func TestTrade_NoIDIsNeverEqual(t *testing.T) {
	a := newTestTrade(t, "", "16.634", "1.5")
	b := newTestTrade(t, "", "16.634", "1.5")

	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(a))
}

func TestTradeBuilder_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		builder *TradeBuilder
		field   string
	}{
		{
			name:    "Missing type",
			builder: NewTradeBuilder().OriginalAmount(decimal.NewFromInt(1)).Price(decimal.NewFromInt(1)).CurrencyPair(btcUSD),
			field:   "type",
		},
		{
			name:    "Zero amount",
			builder: NewTradeBuilder().Type(Ask).OriginalAmount(decimal.Zero).Price(decimal.NewFromInt(1)).CurrencyPair(btcUSD),
			field:   "originalAmount",
		},
		{
			name:    "Negative price",
			builder: NewTradeBuilder().Type(Ask).OriginalAmount(decimal.NewFromInt(1)).Price(decimal.NewFromInt(-1)).CurrencyPair(btcUSD),
			field:   "price",
		},
		{
			name:    "Missing pair",
			builder: NewTradeBuilder().Type(Ask).OriginalAmount(decimal.NewFromInt(1)).Price(decimal.NewFromInt(1)),
			field:   "currencyPair",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			trade, err := tc.builder.Build()

			assert.ErrorIs(t, err, ErrInvalidTrade)
			var tradeErr *InvalidTradeError
			require.True(t, errors.As(err, &tradeErr))
			assert.Equal(t, tc.field, tradeErr.Field)
			assert.Equal(t, Trade{}, trade)
		})
	}
}

func TestNewTrade_AllowsMissingIDAndTimestamp(t *testing.T) {
	trade, err := NewTrade(Ask, decimal.RequireFromString("0.5"), btcUSD, decimal.RequireFromString("100"), time.Time{}, "")

	require.NoError(t, err)
	assert.Equal(t, "", trade.ID())
	assert.True(t, trade.Timestamp().IsZero())
	assert.Equal(t, Ask, trade.Type())
}

func TestTradeBuilderFrom_RoundTrip(t *testing.T) {
	original := newTestTrade(t, "1001", "16.634", "2.25")

	copied, err := TradeBuilderFrom(original).Build()
	require.NoError(t, err)

	assert.True(t, copied.Equal(original))
	assert.Equal(t, original.Type(), copied.Type())
	assert.True(t, original.Price().Equal(copied.Price()))
	assert.True(t, original.OriginalAmount().Equal(copied.OriginalAmount()))
	assert.Equal(t, original.CurrencyPair(), copied.CurrencyPair())
	assert.Equal(t, original.Timestamp(), copied.Timestamp())

	// Copy-then-override leaves the source untouched.
	changed, err := TradeBuilderFrom(original).Price(decimal.NewFromInt(17)).Build()
	require.NoError(t, err)
	assert.Equal(t, "17", changed.Price().String())
	assert.Equal(t, "16.634", original.Price().String())
}

func TestParseOrderType(t *testing.T) {
	for in, expected := range map[string]OrderType{"bid": Bid, "BUY": Bid, "ask": Ask, "sell": Ask} {
		got, err := ParseOrderType(in)
		assert.NoError(t, err)
		assert.Equal(t, expected, got)
	}
	_, err := ParseOrderType("hold")
	assert.Error(t, err)
}
