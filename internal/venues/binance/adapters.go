// Package binance implements market data polling for Binance spot on top of the
// go-binance SDK.
package binance

import (
	"fmt"
	"strconv"
	"time"

	gbinance "github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"

	"marketdata/internal/marketdata"
	"marketdata/internal/models"
)

// AdaptTicker converts 24h rolling statistics into a Ticker.
func AdaptTicker(raw *gbinance.PriceChangeStats, counter, base string) (models.Ticker, error) {
	if raw == nil {
		return models.Ticker{}, marketdata.NewAdapterError(VenueName, "empty ticker statistics", nil)
	}
	pair, err := marketdata.AdaptPair(VenueName, base, counter)
	if err != nil {
		return models.Ticker{}, err
	}

	var p parser
	last := p.required("lastPrice", raw.LastPrice)
	bid := p.required("bidPrice", raw.BidPrice)
	ask := p.required("askPrice", raw.AskPrice)
	high := p.optional("highPrice", raw.HighPrice)
	low := p.optional("lowPrice", raw.LowPrice)
	volume := p.optional("volume", raw.Volume)
	if p.err != nil {
		return models.Ticker{}, p.err
	}

	return models.NewTickerBuilder().
		CurrencyPair(pair).
		Last(last).
		Bid(bid).
		Ask(ask).
		High(high).
		Low(low).
		Volume(volume).
		Timestamp(fromMillis(raw.CloseTime)).
		Build()
}

// AdaptOrderBook converts a depth snapshot. Binance already sorts its levels; the
// canonical ordering is enforced regardless.
func AdaptOrderBook(raw *gbinance.DepthResponse, counter, base string) (models.OrderBook, error) {
	if raw == nil {
		return models.OrderBook{}, marketdata.NewAdapterError(VenueName, "empty depth", nil)
	}
	pair, err := marketdata.AdaptPair(VenueName, base, counter)
	if err != nil {
		return models.OrderBook{}, err
	}

	var p parser
	asks := make([]models.LimitOrder, 0, len(raw.Asks))
	for _, level := range raw.Asks {
		asks = append(asks, models.LimitOrder{
			Type:         models.Ask,
			Amount:       p.required("ask quantity", level.Quantity),
			CurrencyPair: pair,
			LimitPrice:   p.required("ask price", level.Price),
		})
	}
	bids := make([]models.LimitOrder, 0, len(raw.Bids))
	for _, level := range raw.Bids {
		bids = append(bids, models.LimitOrder{
			Type:         models.Bid,
			Amount:       p.required("bid quantity", level.Quantity),
			CurrencyPair: pair,
			LimitPrice:   p.required("bid price", level.Price),
		})
	}
	if p.err != nil {
		return models.OrderBook{}, p.err
	}

	return models.NewOrderBook(time.Time{}, asks, bids), nil
}

// AdaptTrades converts public trades. A buyer-maker trade was hit by a seller, so it is
// reported as an ASK.
func AdaptTrades(raw []*gbinance.Trade, counter, base string) (models.Trades, error) {
	pair, err := marketdata.AdaptPair(VenueName, base, counter)
	if err != nil {
		return models.Trades{}, err
	}

	trades := make([]models.Trade, 0, len(raw))
	for _, rt := range raw {
		var p parser
		price := p.required("price", rt.Price)
		qty := p.required("qty", rt.Quantity)
		if p.err != nil {
			return models.Trades{}, p.err
		}

		side := models.Bid
		if rt.IsBuyerMaker {
			side = models.Ask
		}

		trade, err := models.NewTradeBuilder().
			Type(side).
			OriginalAmount(qty).
			CurrencyPair(pair).
			Price(price).
			Timestamp(fromMillis(rt.Time)).
			ID(strconv.FormatInt(rt.ID, 10)).
			Build()
		if err != nil {
			return models.Trades{}, marketdata.NewAdapterError(VenueName, fmt.Sprintf("trade %d", rt.ID), err)
		}
		trades = append(trades, trade)
	}
	return models.NewTrades(trades), nil
}

// AdaptUserTrades converts the account's own fills, commission included.
func AdaptUserTrades(raw []*gbinance.TradeV3, counter, base string) ([]models.UserTrade, error) {
	pair, err := marketdata.AdaptPair(VenueName, base, counter)
	if err != nil {
		return nil, err
	}

	out := make([]models.UserTrade, 0, len(raw))
	for _, rt := range raw {
		var p parser
		price := p.required("price", rt.Price)
		qty := p.required("qty", rt.Quantity)
		commission := p.optional("commission", rt.Commission)
		if p.err != nil {
			return nil, p.err
		}

		side := models.Ask
		if rt.IsBuyer {
			side = models.Bid
		}

		b := models.NewUserTradeBuilder().
			Type(side).
			OriginalAmount(qty).
			CurrencyPair(pair).
			Price(price).
			Timestamp(fromMillis(rt.Time)).
			ID(strconv.FormatInt(rt.ID, 10)).
			OrderID(strconv.FormatInt(rt.OrderID, 10))
		if rt.CommissionAsset != "" {
			b.Fee(commission, models.NewCurrency(rt.CommissionAsset))
		}

		trade, err := b.Build()
		if err != nil {
			return nil, marketdata.NewAdapterError(VenueName, fmt.Sprintf("user trade %d", rt.ID), err)
		}
		out = append(out, trade)
	}
	return out, nil
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// parser collects the first decimal parse failure so adapters can read several
// fields before checking.
type parser struct {
	err error
}

func (p *parser) required(field, value string) decimal.Decimal {
	if p.err != nil {
		return decimal.Decimal{}
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		p.err = marketdata.NewAdapterError(VenueName, fmt.Sprintf("field %s=%q", field, value), err)
	}
	return d
}

func (p *parser) optional(field, value string) decimal.Decimal {
	if value == "" {
		return decimal.Decimal{}
	}
	return p.required(field, value)
}
