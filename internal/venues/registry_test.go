package venues

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"marketdata/internal/config"
)

func TestNewRegistry_OnlyEnabledVenues(t *testing.T) {
	// Arrange
	cfg := config.Config{Venues: map[string]config.Venue{
		"mtgox":   {Enabled: true},
		"campbx":  {Enabled: false},
		"binance": {Enabled: true, Symbols: []string{"BTC/USDT", "ETH/BTC"}},
	}}

	// Act
	registry, err := NewRegistry(cfg, zap.NewNop())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"binance", "mtgox"}, registry.Venues())

	svc, ok := registry.Get("binance")
	require.True(t, ok)
	assert.Len(t, svc.GetExchangeSymbols(), 2)
}

func TestNewService_Errors(t *testing.T) {
	_, err := NewService("kraken", config.Venue{}, zap.NewNop())
	assert.EqualError(t, err, `unknown venue "kraken"`)

	_, err = NewService("binance", config.Venue{Symbols: []string{"BTCUSDT"}}, zap.NewNop())
	assert.ErrorContains(t, err, "venues.binance.symbols")
}

func TestNewService_DefaultSymbols(t *testing.T) {
	svc, err := NewService("campbx", config.Venue{}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "campbx", svc.Venue())
	assert.Len(t, svc.GetExchangeSymbols(), 1)
}
