package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Fee is the commission a venue charged for a user trade.
type Fee struct {
	Amount   decimal.Decimal
	Currency Currency
}

// Equal compares fees by decimal value and currency. Two nil fees are equal.
func (f *Fee) Equal(o *Fee) bool {
	if f == nil || o == nil {
		return f == nil && o == nil
	}
	return f.Amount.Equal(o.Amount) && f.Currency == o.Currency
}

func (f *Fee) String() string {
	if f == nil {
		return "<none>"
	}
	return f.Amount.String() + " " + f.Currency.String()
}

// UserTrade is a trade from the authenticated user's own history. It embeds the public
// Trade and adds the order it executed against and the fee charged for it.
type UserTrade struct {
	Trade
	orderID string
	fee     *Fee
}

// OrderID is the venue ID of the order this trade filled, "" when unknown.
func (u UserTrade) OrderID() string { return u.orderID }

// Fee returns a copy of the charged fee, or nil when the venue did not report one.
func (u UserTrade) Fee() *Fee {
	if u.fee == nil {
		return nil
	}
	f := *u.fee
	return &f
}

// Equal extends trade identity with the order ID and fee, which disambiguate trade IDs
// that repeat across books inside one account history.
func (u UserTrade) Equal(o UserTrade) bool {
	return u.Trade.Equal(o.Trade) &&
		u.orderID == o.orderID &&
		u.fee.Equal(o.fee)
}

// Key returns a deduplication key that agrees with Equal.
func (u UserTrade) Key() string {
	if u.id == "" {
		return ""
	}
	return fmt.Sprintf("%s|%s|%s", u.id, u.orderID, u.fee)
}

func (u UserTrade) String() string {
	return fmt.Sprintf("UserTrade[type=%s, originalAmount=%s, currencyPair=%s, price=%s, timestamp=%s, id=%s, orderId=%s, fee=%s]",
		u.orderType, u.originalAmount, u.currencyPair, u.price, formatTimestamp(u.timestamp), u.id, u.orderID, u.fee)
}

// UserTradeBuilder stages a UserTrade. Its mutators mirror TradeBuilder so chains keep
// the *UserTradeBuilder type.
type UserTradeBuilder struct {
	trade   TradeBuilder
	orderID string
	fee     *Fee
}

// NewUserTradeBuilder returns an empty builder.
func NewUserTradeBuilder() *UserTradeBuilder {
	return &UserTradeBuilder{}
}

// UserTradeBuilderFrom copies every field of u, including order ID and fee.
func UserTradeBuilderFrom(u UserTrade) *UserTradeBuilder {
	b := &UserTradeBuilder{
		trade:   *TradeBuilderFrom(u.Trade),
		orderID: u.orderID,
	}
	if u.fee != nil {
		b.Fee(u.fee.Amount, u.fee.Currency)
	}
	return b
}

func (b *UserTradeBuilder) Type(orderType OrderType) *UserTradeBuilder {
	b.trade.Type(orderType)
	return b
}

func (b *UserTradeBuilder) OriginalAmount(amount decimal.Decimal) *UserTradeBuilder {
	b.trade.OriginalAmount(amount)
	return b
}

func (b *UserTradeBuilder) CurrencyPair(pair CurrencyPair) *UserTradeBuilder {
	b.trade.CurrencyPair(pair)
	return b
}

func (b *UserTradeBuilder) Price(price decimal.Decimal) *UserTradeBuilder {
	b.trade.Price(price)
	return b
}

func (b *UserTradeBuilder) Timestamp(ts time.Time) *UserTradeBuilder {
	b.trade.Timestamp(ts)
	return b
}

func (b *UserTradeBuilder) ID(id string) *UserTradeBuilder {
	b.trade.ID(id)
	return b
}

func (b *UserTradeBuilder) OrderID(orderID string) *UserTradeBuilder {
	b.orderID = orderID
	return b
}

// Fee sets amount and currency together; a fee never carries one without the other.
func (b *UserTradeBuilder) Fee(amount decimal.Decimal, currency Currency) *UserTradeBuilder {
	b.fee = &Fee{Amount: amount, Currency: currency}
	return b
}

// NoFee clears a previously staged fee.
func (b *UserTradeBuilder) NoFee() *UserTradeBuilder {
	b.fee = nil
	return b
}

// Build validates the trade fields and the fee and returns the finished UserTrade.
func (b *UserTradeBuilder) Build() (UserTrade, error) {
	t, err := b.trade.Build()
	if err != nil {
		return UserTrade{}, err
	}
	if b.fee != nil {
		if b.fee.Amount.IsNegative() {
			return UserTrade{}, &InvalidTradeError{Field: "feeAmount", Reason: fmt.Sprintf("must not be negative, got %s", b.fee.Amount)}
		}
		if b.fee.Currency == "" {
			return UserTrade{}, &InvalidTradeError{Field: "feeCurrency", Reason: "is required when a fee amount is set"}
		}
	}

	u := UserTrade{Trade: t, orderID: b.orderID}
	if b.fee != nil {
		f := *b.fee
		u.fee = &f
	}
	return u, nil
}
