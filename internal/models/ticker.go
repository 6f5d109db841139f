package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Ticker is a venue's current best bid/ask and last trade summary for one pair.
// Optional figures a venue does not report (high, low, volume) are zero.
type Ticker struct {
	CurrencyPair CurrencyPair
	Last         decimal.Decimal
	Bid          decimal.Decimal
	Ask          decimal.Decimal
	High         decimal.Decimal
	Low          decimal.Decimal
	Volume       decimal.Decimal
	Timestamp    time.Time
}

func (t Ticker) String() string {
	return fmt.Sprintf("Ticker[currencyPair=%s, last=%s, bid=%s, ask=%s, high=%s, low=%s, volume=%s, timestamp=%s]",
		t.CurrencyPair, t.Last, t.Bid, t.Ask, t.High, t.Low, t.Volume, formatTimestamp(t.Timestamp))
}

// TickerBuilder stages a Ticker; Build requires the pair and the last/bid/ask prices.
type TickerBuilder struct {
	t              Ticker
	hasLast        bool
	hasBid, hasAsk bool
}

func NewTickerBuilder() *TickerBuilder { return &TickerBuilder{} }

func (b *TickerBuilder) CurrencyPair(p CurrencyPair) *TickerBuilder {
	b.t.CurrencyPair = p
	return b
}

func (b *TickerBuilder) Last(v decimal.Decimal) *TickerBuilder {
	b.t.Last, b.hasLast = v, true
	return b
}

func (b *TickerBuilder) Bid(v decimal.Decimal) *TickerBuilder {
	b.t.Bid, b.hasBid = v, true
	return b
}

func (b *TickerBuilder) Ask(v decimal.Decimal) *TickerBuilder {
	b.t.Ask, b.hasAsk = v, true
	return b
}

func (b *TickerBuilder) High(v decimal.Decimal) *TickerBuilder {
	b.t.High = v
	return b
}

func (b *TickerBuilder) Low(v decimal.Decimal) *TickerBuilder {
	b.t.Low = v
	return b
}

func (b *TickerBuilder) Volume(v decimal.Decimal) *TickerBuilder {
	b.t.Volume = v
	return b
}

func (b *TickerBuilder) Timestamp(ts time.Time) *TickerBuilder {
	b.t.Timestamp = ts
	return b
}

// Build returns the Ticker or an error naming the first missing mandatory field.
func (b *TickerBuilder) Build() (Ticker, error) {
	switch {
	case b.t.CurrencyPair.IsZero():
		return Ticker{}, fmt.Errorf("ticker: currency pair is required")
	case !b.hasLast:
		return Ticker{}, fmt.Errorf("ticker: last price is required")
	case !b.hasBid:
		return Ticker{}, fmt.Errorf("ticker: bid price is required")
	case !b.hasAsk:
		return Ticker{}, fmt.Errorf("ticker: ask price is required")
	}
	return b.t, nil
}
