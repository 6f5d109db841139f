package models

import "sort"

// Trades is an oldest-first list of trades for one pair.
type Trades struct {
	Trades []Trade
	// LastID is the ID of the newest trade, usable as a "since" cursor.
	LastID string
}

// NewTrades copies trades and orders them oldest-first. When any trade lacks a timestamp
// the venue order is kept as is.
func NewTrades(trades []Trade) Trades {
	out := append([]Trade(nil), trades...)
	if allTimestamped(out) {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Timestamp().Before(out[j].Timestamp())
		})
	}

	var lastID string
	if n := len(out); n > 0 {
		lastID = out[n-1].ID()
	}
	return Trades{Trades: out, LastID: lastID}
}

func allTimestamped(trades []Trade) bool {
	for _, t := range trades {
		if t.Timestamp().IsZero() {
			return false
		}
	}
	return true
}

// Len returns the number of trades.
func (t Trades) Len() int { return len(t.Trades) }
