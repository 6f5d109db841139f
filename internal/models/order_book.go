package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// LimitOrder is one resting order (or aggregated price level) in an order book.
type LimitOrder struct {
	Type         OrderType
	Amount       decimal.Decimal
	CurrencyPair CurrencyPair
	ID           string
	Timestamp    time.Time
	LimitPrice   decimal.Decimal
}

func (o LimitOrder) String() string {
	return fmt.Sprintf("LimitOrder[type=%s, amount=%s, currencyPair=%s, limitPrice=%s, id=%s, timestamp=%s]",
		o.Type, o.Amount, o.CurrencyPair, o.LimitPrice, o.ID, formatTimestamp(o.Timestamp))
}

// OrderBook holds asks sorted by ascending price and bids sorted by descending price.
type OrderBook struct {
	Timestamp time.Time
	Asks      []LimitOrder
	Bids      []LimitOrder
}

// NewOrderBook copies and sorts both sides. Venue ordering is never trusted.
func NewOrderBook(ts time.Time, asks, bids []LimitOrder) OrderBook {
	a := append([]LimitOrder(nil), asks...)
	b := append([]LimitOrder(nil), bids...)

	sort.SliceStable(a, func(i, j int) bool { return a[i].LimitPrice.LessThan(a[j].LimitPrice) })
	sort.SliceStable(b, func(i, j int) bool { return b[i].LimitPrice.GreaterThan(b[j].LimitPrice) })

	return OrderBook{Timestamp: ts, Asks: a, Bids: b}
}

// BestAsk returns the lowest ask, if any.
func (ob OrderBook) BestAsk() (LimitOrder, bool) {
	if len(ob.Asks) == 0 {
		return LimitOrder{}, false
	}
	return ob.Asks[0], true
}

// BestBid returns the highest bid, if any.
func (ob OrderBook) BestBid() (LimitOrder, bool) {
	if len(ob.Bids) == 0 {
		return LimitOrder{}, false
	}
	return ob.Bids[0], true
}
