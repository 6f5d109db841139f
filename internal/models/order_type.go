package models

import (
	"fmt"
	"strings"
)

// OrderType is the side of the book an order rests on or a trade was taken from.
type OrderType int

const (
	// Bid is the buy side.
	Bid OrderType = iota + 1
	// Ask is the sell side.
	Ask
)

func (t OrderType) String() string {
	switch t {
	case Bid:
		return "BID"
	case Ask:
		return "ASK"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether t is Bid or Ask.
func (t OrderType) Valid() bool {
	return t == Bid || t == Ask
}

// ParseOrderType accepts the spellings venues use for the two sides.
func ParseOrderType(s string) (OrderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bid", "buy", "b":
		return Bid, nil
	case "ask", "sell", "s":
		return Ask, nil
	}
	return 0, fmt.Errorf("unknown order type %q", s)
}
