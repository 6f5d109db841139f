package models

import "strings"

// Currency is an upper-cased currency or asset symbol, e.g. "BTC".
type Currency string

// Well-known currencies used by the bundled venues.
const (
	BTC  Currency = "BTC"
	ETH  Currency = "ETH"
	LTC  Currency = "LTC"
	BNB  Currency = "BNB"
	USD  Currency = "USD"
	USDT Currency = "USDT"
	EUR  Currency = "EUR"
	GBP  Currency = "GBP"
	JPY  Currency = "JPY"
	AUD  Currency = "AUD"
	CAD  Currency = "CAD"
	CHF  Currency = "CHF"
	CNY  Currency = "CNY"
	PLN  Currency = "PLN"
	RUB  Currency = "RUB"
	SEK  Currency = "SEK"
)

// NewCurrency normalizes a raw venue symbol into a Currency.
func NewCurrency(symbol string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(symbol)))
}

func (c Currency) String() string {
	return string(c)
}
