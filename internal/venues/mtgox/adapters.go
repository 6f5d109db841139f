// Package mtgox implements market data polling for the Mt.Gox v0 API.
package mtgox

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"marketdata/internal/marketdata"
	"marketdata/internal/models"
)

// AdaptTicker converts a raw ticker. Buy and sell are the best bid and ask.
func AdaptTicker(raw TickerResponse, counter, base string) (models.Ticker, error) {
	if raw.Error != "" {
		return models.Ticker{}, &marketdata.VenueError{Venue: VenueName, Operation: marketdata.OpTicker, Message: raw.Error}
	}
	if raw.Ticker == nil {
		return models.Ticker{}, marketdata.NewAdapterError(VenueName, "ticker object missing", nil)
	}

	pair, err := marketdata.AdaptPair(VenueName, base, counter)
	if err != nil {
		return models.Ticker{}, err
	}

	t := raw.Ticker
	b := models.NewTickerBuilder().CurrencyPair(pair)
	if t.Last.Valid {
		b.Last(t.Last.Decimal)
	}
	if t.Buy.Valid {
		b.Bid(t.Buy.Decimal)
	}
	if t.Sell.Valid {
		b.Ask(t.Sell.Decimal)
	}
	b.High(t.High.Decimal).Low(t.Low.Decimal).Volume(t.Vol.Decimal)

	ticker, err := b.Build()
	if err != nil {
		return models.Ticker{}, marketdata.NewAdapterError(VenueName, "incomplete ticker", err)
	}
	return ticker, nil
}

// AdaptOrderBook converts partial or full depth. op names the calling operation for
// the unavailable signal.
func AdaptOrderBook(raw Depth, counter, base, op string) (models.OrderBook, error) {
	if raw.Error != "" {
		return models.OrderBook{}, &marketdata.VenueError{Venue: VenueName, Operation: op, Message: raw.Error}
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

	return models.NewOrderBook(latestStamp(asks, bids), asks, bids), nil
}

func adaptOrders(levels [][]decimal.Decimal, side models.OrderType, pair models.CurrencyPair) ([]models.LimitOrder, error) {
	orders := make([]models.LimitOrder, 0, len(levels))
	for i, level := range levels {
		if len(level) < 2 || len(level) > 3 {
			return nil, marketdata.NewAdapterError(VenueName, fmt.Sprintf("%s level %d has %d fields", side, i, len(level)), nil)
		}
		order := models.LimitOrder{
			Type:         side,
			Amount:       level[1],
			CurrencyPair: pair,
			LimitPrice:   level[0],
		}
		if len(level) == 3 {
			order.Timestamp = time.UnixMicro(level[2].IntPart()).UTC()
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func latestStamp(sides ...[]models.LimitOrder) time.Time {
	var latest time.Time
	for _, orders := range sides {
		for _, o := range orders {
			if o.Timestamp.After(latest) {
				latest = o.Timestamp
			}
		}
	}
	return latest
}

// AdaptTrades converts the trade history, oldest first.
func AdaptTrades(raw TradesResponse, counter, base string) (models.Trades, error) {
	if raw.Error != "" {
		return models.Trades{}, &marketdata.VenueError{Venue: VenueName, Operation: marketdata.OpTrades, Message: raw.Error}
	}

	pair, err := marketdata.AdaptPair(VenueName, base, counter)
	if err != nil {
		return models.Trades{}, err
	}

	trades := make([]models.Trade, 0, len(raw.Trades))
	for _, rt := range raw.Trades {
		side, err := models.ParseOrderType(rt.TradeType)
		if err != nil {
			return models.Trades{}, marketdata.NewAdapterError(VenueName, "trade "+rt.TID.String(), err)
		}
		trade, err := models.NewTradeBuilder().
			Type(side).
			OriginalAmount(rt.Amount).
			CurrencyPair(pair).
			Price(rt.Price).
			Timestamp(time.Unix(rt.Date, 0).UTC()).
			ID(rt.TID.String()).
			Build()
		if err != nil {
			return models.Trades{}, marketdata.NewAdapterError(VenueName, "trade "+rt.TID.String(), err)
		}
		trades = append(trades, trade)
	}
	return models.NewTrades(trades), nil
}
