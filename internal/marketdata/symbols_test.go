package marketdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketdata/internal/models"
)

func TestSymbolSet(t *testing.T) {
	set := NewSymbolSet(
		models.MustCurrencyPair("BTC", "USD"),
		models.MustCurrencyPair("BTC", "EUR"),
		models.MustCurrencyPair("BTC", "USD"),
	)

	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains(models.MustCurrencyPair("BTC", "EUR")))
	assert.False(t, set.Contains(models.MustCurrencyPair("LTC", "USD")))

	pairs := set.Pairs()
	require.Len(t, pairs, 2)
	assert.Equal(t, "BTC/EUR", pairs[0].String())

	// Pairs hands out a copy.
	pairs[0] = models.MustCurrencyPair("ETH", "USD")
	assert.Equal(t, "BTC/EUR", set.Pairs()[0].String())
}

func TestParseSymbolSet(t *testing.T) {
	set, err := ParseSymbolSet([]string{"btc/usd", "ETH-USDT"})
	require.NoError(t, err)
	assert.True(t, set.Contains(models.MustCurrencyPair("ETH", "USDT")))

	_, err = ParseSymbolSet([]string{"BTCUSD"})
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	set := NewSymbolSet(models.MustCurrencyPair("BTC", "USD"))

	testCases := []struct {
		name    string
		base    string
		counter string
		wantErr bool
	}{
		{"Supported", "BTC", "USD", false},
		{"LowerCase", "btc", "usd", false},
		{"EmptyBase", "", "USD", true},
		{"EmptyCounter", "BTC", " ", true},
		{"UnsupportedPair", "LTC", "USD", true},
		{"SameCurrency", "BTC", "BTC", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pair, err := Verify("campbx", set, tc.base, tc.counter)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				assert.True(t, pair.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "BTC/USD", pair.String())
		})
	}
}
