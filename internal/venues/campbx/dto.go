package campbx

import "github.com/shopspring/decimal"

// Ticker is the raw /api/xticker.php payload.
type Ticker struct {
	LastTrade decimal.NullDecimal `json:"Last Trade"`
	BestBid   decimal.NullDecimal `json:"Best Bid"`
	BestAsk   decimal.NullDecimal `json:"Best Ask"`
	Error     string              `json:"Error"`
}

// OrderBook is the raw /api/xdepth.php payload. Levels are [price, amount] tuples.
type OrderBook struct {
	Bids  [][]decimal.Decimal `json:"Bids"`
	Asks  [][]decimal.Decimal `json:"Asks"`
	Error string              `json:"Error"`
}
