package marketdata

import (
	"strings"

	"marketdata/internal/models"
)

// SymbolSet is an immutable set of the pairs a venue supports.
type SymbolSet struct {
	pairs map[models.CurrencyPair]struct{}
	list  []models.CurrencyPair
}

// NewSymbolSet builds a set from pairs, dropping duplicates.
func NewSymbolSet(pairs ...models.CurrencyPair) SymbolSet {
	s := SymbolSet{pairs: make(map[models.CurrencyPair]struct{}, len(pairs))}
	for _, p := range pairs {
		if _, ok := s.pairs[p]; ok {
			continue
		}
		s.pairs[p] = struct{}{}
		s.list = append(s.list, p)
	}
	models.SortPairs(s.list)
	return s
}

// ParseSymbolSet builds a set from "BASE/COUNTER" strings, typically read from config.
func ParseSymbolSet(symbols []string) (SymbolSet, error) {
	pairs := make([]models.CurrencyPair, 0, len(symbols))
	for _, s := range symbols {
		p, err := models.ParseCurrencyPair(s)
		if err != nil {
			return SymbolSet{}, err
		}
		pairs = append(pairs, p)
	}
	return NewSymbolSet(pairs...), nil
}

// Contains reports whether p is supported.
func (s SymbolSet) Contains(p models.CurrencyPair) bool {
	_, ok := s.pairs[p]
	return ok
}

// Pairs returns a sorted copy of the supported pairs.
func (s SymbolSet) Pairs() []models.CurrencyPair {
	return append([]models.CurrencyPair(nil), s.list...)
}

// Len returns the number of supported pairs.
func (s SymbolSet) Len() int { return len(s.list) }

// Verify is the validation step run before any fetch: both symbols must be present and
// the pair must belong to the venue's symbol set.
func Verify(venue string, set SymbolSet, base, counter string) (models.CurrencyPair, error) {
	if strings.TrimSpace(base) == "" {
		return models.CurrencyPair{}, &InvalidArgumentError{Venue: venue, Base: base, Counter: counter, Reason: "tradable identifier cannot be empty"}
	}
	if strings.TrimSpace(counter) == "" {
		return models.CurrencyPair{}, &InvalidArgumentError{Venue: venue, Base: base, Counter: counter, Reason: "currency cannot be empty"}
	}

	pair, err := models.NewCurrencyPair(base, counter)
	if err != nil {
		return models.CurrencyPair{}, &InvalidArgumentError{Venue: venue, Base: base, Counter: counter, Reason: "currency pair is not valid", Err: err}
	}
	if !set.Contains(pair) {
		return models.CurrencyPair{}, &InvalidArgumentError{Venue: venue, Base: base, Counter: counter, Reason: "currency pair is not supported: " + pair.String()}
	}
	return pair, nil
}
