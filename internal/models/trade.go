package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one execution reported by a venue's public trade feed or implied by its order book.
//
// Trades are immutable once built. Two trades are Equal only when both carry the same
// non-empty venue ID; price, amount and the other fields play no part in identity.
type Trade struct {
	id             string
	orderType      OrderType
	originalAmount decimal.Decimal
	currencyPair   CurrencyPair
	price          decimal.Decimal
	timestamp      time.Time
}

// NewTrade builds a Trade from its mandatory fields. id may be empty and timestamp may be
// the zero time when the venue does not report them.
func NewTrade(orderType OrderType, originalAmount decimal.Decimal, pair CurrencyPair,
	price decimal.Decimal, timestamp time.Time, id string) (Trade, error) {
	return NewTradeBuilder().
		Type(orderType).
		OriginalAmount(originalAmount).
		CurrencyPair(pair).
		Price(price).
		Timestamp(timestamp).
		ID(id).
		Build()
}

// ID is the venue-assigned identifier, "" when the venue supplies none.
func (t Trade) ID() string { return t.id }

// Type is the side of the book that was taken.
func (t Trade) Type() OrderType { return t.orderType }

// OriginalAmount is the traded quantity in base currency.
func (t Trade) OriginalAmount() decimal.Decimal { return t.originalAmount }

// CurrencyPair is the pair the trade executed on.
func (t Trade) CurrencyPair() CurrencyPair { return t.currencyPair }

// Price is the execution price in counter currency.
func (t Trade) Price() decimal.Decimal { return t.price }

// Timestamp is the venue server time of the trade; zero when not reported.
func (t Trade) Timestamp() time.Time { return t.timestamp }

// Equal reports trade identity: both IDs must be present and equal.
func (t Trade) Equal(o Trade) bool {
	return t.id != "" && t.id == o.id
}

// Key returns the identity key of the trade for map-based deduplication.
// It is "" for trades without an ID, which therefore never collide.
func (t Trade) Key() string {
	return t.id
}

func (t Trade) String() string {
	return fmt.Sprintf("Trade[type=%s, originalAmount=%s, currencyPair=%s, price=%s, timestamp=%s, id=%s]",
		t.orderType, t.originalAmount, t.currencyPair, t.price, formatTimestamp(t.timestamp), t.id)
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return "<none>"
	}
	return ts.UTC().Format(time.RFC3339Nano)
}

// TradeBuilder stages the fields of a Trade. Nothing is created until Build succeeds.
type TradeBuilder struct {
	orderType      OrderType
	originalAmount decimal.Decimal
	currencyPair   CurrencyPair
	price          decimal.Decimal
	timestamp      time.Time
	id             string
}

// NewTradeBuilder returns an empty builder.
func NewTradeBuilder() *TradeBuilder {
	return &TradeBuilder{}
}

// TradeBuilderFrom returns a builder pre-populated with every field of t.
func TradeBuilderFrom(t Trade) *TradeBuilder {
	return NewTradeBuilder().
		Type(t.orderType).
		OriginalAmount(t.originalAmount).
		CurrencyPair(t.currencyPair).
		Price(t.price).
		Timestamp(t.timestamp).
		ID(t.id)
}

func (b *TradeBuilder) Type(orderType OrderType) *TradeBuilder {
	b.orderType = orderType
	return b
}

func (b *TradeBuilder) OriginalAmount(amount decimal.Decimal) *TradeBuilder {
	b.originalAmount = amount
	return b
}

func (b *TradeBuilder) CurrencyPair(pair CurrencyPair) *TradeBuilder {
	b.currencyPair = pair
	return b
}

func (b *TradeBuilder) Price(price decimal.Decimal) *TradeBuilder {
	b.price = price
	return b
}

func (b *TradeBuilder) Timestamp(ts time.Time) *TradeBuilder {
	b.timestamp = ts
	return b
}

func (b *TradeBuilder) ID(id string) *TradeBuilder {
	b.id = id
	return b
}

// Build validates the staged fields and returns the finished Trade.
func (b *TradeBuilder) Build() (Trade, error) {
	if err := b.validate(); err != nil {
		return Trade{}, err
	}
	return Trade{
		id:             b.id,
		orderType:      b.orderType,
		originalAmount: b.originalAmount,
		currencyPair:   b.currencyPair,
		price:          b.price,
		timestamp:      b.timestamp,
	}, nil
}

func (b *TradeBuilder) validate() error {
	if !b.orderType.Valid() {
		return &InvalidTradeError{Field: "type", Reason: "must be BID or ASK"}
	}
	if !b.originalAmount.IsPositive() {
		return &InvalidTradeError{Field: "originalAmount", Reason: fmt.Sprintf("must be positive, got %s", b.originalAmount)}
	}
	if !b.price.IsPositive() {
		return &InvalidTradeError{Field: "price", Reason: fmt.Sprintf("must be positive, got %s", b.price)}
	}
	if b.currencyPair.IsZero() {
		return &InvalidTradeError{Field: "currencyPair", Reason: "is required"}
	}
	return nil
}
