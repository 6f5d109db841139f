package mtgox

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// TickerResponse is the raw data/ticker.php payload.
type TickerResponse struct {
	Ticker *Ticker `json:"ticker"`
	Error  string  `json:"error"`
}

// Ticker holds the figures of a TickerResponse.
type Ticker struct {
	High decimal.NullDecimal `json:"high"`
	Low  decimal.NullDecimal `json:"low"`
	Vol  decimal.NullDecimal `json:"vol"`
	Buy  decimal.NullDecimal `json:"buy"`
	Sell decimal.NullDecimal `json:"sell"`
	Last decimal.NullDecimal `json:"last"`
}

// Depth is the raw getDepth.php / fullDepth.php payload. Levels are
// [price, amount] or [price, amount, stamp] tuples, the stamp in microseconds.
type Depth struct {
	Asks  [][]decimal.Decimal `json:"asks"`
	Bids  [][]decimal.Decimal `json:"bids"`
	Error string              `json:"error"`
}

// Trade is one record of the getTrades.php payload.
type Trade struct {
	Date      int64           `json:"date"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
	TID       json.Number     `json:"tid"`
	TradeType string          `json:"trade_type"`
}

// TradesResponse is the getTrades.php payload: a bare array of trades, or an
// object carrying an error.
type TradesResponse struct {
	Trades []Trade
	Error  string
}

func (r *TradesResponse) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			Error  string  `json:"error"`
			Trades []Trade `json:"return"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		r.Error, r.Trades = obj.Error, obj.Trades
		return nil
	}
	return json.Unmarshal(data, &r.Trades)
}
