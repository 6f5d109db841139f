// Package campbx implements market data polling for the CampBX exchange.
package campbx

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"marketdata/internal/marketdata"
	"marketdata/internal/models"
)

// AdaptTicker converts a raw ticker into the canonical Ticker.
func AdaptTicker(raw Ticker, counter, base string) (models.Ticker, error) {
	if raw.Error != "" {
		return models.Ticker{}, &marketdata.VenueError{Venue: VenueName, Operation: marketdata.OpTicker, Message: raw.Error}
	}

	pair, err := marketdata.AdaptPair(VenueName, base, counter)
	if err != nil {
		return models.Ticker{}, err
	}

	b := models.NewTickerBuilder().CurrencyPair(pair)
	if raw.LastTrade.Valid {
		b.Last(raw.LastTrade.Decimal)
	}
	if raw.BestBid.Valid {
		b.Bid(raw.BestBid.Decimal)
	}
	if raw.BestAsk.Valid {
		b.Ask(raw.BestAsk.Decimal)
	}

	ticker, err := b.Build()
	if err != nil {
		return models.Ticker{}, marketdata.NewAdapterError(VenueName, "incomplete ticker", err)
	}
	return ticker, nil
}

// AdaptOrderBook converts raw depth into an OrderBook with bids descending and asks
// ascending. CampBX does not stamp its levels.
func AdaptOrderBook(raw OrderBook, counter, base string) (models.OrderBook, error) {
	if raw.Error != "" {
		return models.OrderBook{}, &marketdata.VenueError{Venue: VenueName, Operation: marketdata.OpFullOrderBook, Message: raw.Error}
	}

	pair, err := marketdata.AdaptPair(VenueName, base, counter)
	if err != nil {
		return models.OrderBook{}, err
	}

	asks, err := adaptOrders(raw.Asks, models.Ask, pair)
	if err != nil {
		return models.OrderBook{}, err
	}
	bids, err := adaptOrders(raw.Bids, models.Bid, pair)
	if err != nil {
		return models.OrderBook{}, err
	}

	return models.NewOrderBook(time.Time{}, asks, bids), nil
}

func adaptOrders(levels [][]decimal.Decimal, side models.OrderType, pair models.CurrencyPair) ([]models.LimitOrder, error) {
	orders := make([]models.LimitOrder, 0, len(levels))
	for i, level := range levels {
		if len(level) < 2 {
			return nil, marketdata.NewAdapterError(VenueName, fmt.Sprintf("%s level %d has %d fields, want [price, amount]", side, i, len(level)), nil)
		}
		orders = append(orders, models.LimitOrder{
			Type:         side,
			Amount:       level[1],
			CurrencyPair: pair,
			LimitPrice:   level[0],
		})
	}
	return orders, nil
}
