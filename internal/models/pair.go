package models

import (
	"fmt"
	"sort"
	"strings"
)

// CurrencyPair is an ordered (base, counter) trading pair such as BTC/USD.
// It is a comparable value: two pairs are equal iff both symbols match in order,
// so BTC/USD and USD/BTC are different keys.
type CurrencyPair struct {
	base    Currency
	counter Currency
}

// NewCurrencyPair normalizes both symbols and rejects empty or identical ones.
func NewCurrencyPair(base, counter string) (CurrencyPair, error) {
	b := NewCurrency(base)
	c := NewCurrency(counter)

	switch {
	case b == "":
		return CurrencyPair{}, &InvalidPairError{Base: base, Counter: counter, Reason: "base symbol is empty"}
	case c == "":
		return CurrencyPair{}, &InvalidPairError{Base: base, Counter: counter, Reason: "counter symbol is empty"}
	case b == c:
		return CurrencyPair{}, &InvalidPairError{Base: base, Counter: counter, Reason: "base and counter are the same"}
	}

	return CurrencyPair{base: b, counter: c}, nil
}

// MustCurrencyPair is NewCurrencyPair for static symbol tables. It panics on invalid input.
func MustCurrencyPair(base, counter string) CurrencyPair {
	p, err := NewCurrencyPair(base, counter)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseCurrencyPair parses "BTC/USD", "BTC-USD" or "BTC_USD".
func ParseCurrencyPair(s string) (CurrencyPair, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '-' || r == '_'
	})
	if len(parts) != 2 {
		return CurrencyPair{}, &InvalidPairError{Base: s, Reason: "expected BASE/COUNTER"}
	}
	return NewCurrencyPair(parts[0], parts[1])
}

// Base returns the traded (base) currency.
func (p CurrencyPair) Base() Currency { return p.base }

// Counter returns the pricing (counter) currency.
func (p CurrencyPair) Counter() Currency { return p.counter }

// IsZero reports whether p is the zero value, i.e. was never constructed.
func (p CurrencyPair) IsZero() bool { return p.base == "" && p.counter == "" }

// String returns the pair in "BASE/COUNTER" form.
func (p CurrencyPair) String() string {
	return fmt.Sprintf("%s/%s", p.base, p.counter)
}

// Symbol returns the concatenated form used by most exchange APIs, e.g. "BTCUSD".
func (p CurrencyPair) Symbol() string {
	return string(p.base) + string(p.counter)
}

// ComparePairs orders pairs by base, then counter. It returns -1, 0 or +1.
func ComparePairs(a, b CurrencyPair) int {
	if c := strings.Compare(string(a.base), string(b.base)); c != 0 {
		return c
	}
	return strings.Compare(string(a.counter), string(b.counter))
}

// SortPairs sorts pairs in place using ComparePairs.
func SortPairs(pairs []CurrencyPair) {
	sort.Slice(pairs, func(i, j int) bool {
		return ComparePairs(pairs[i], pairs[j]) < 0
	})
}
