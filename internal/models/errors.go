package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPair is matched by every *InvalidPairError.
	ErrInvalidPair = errors.New("invalid currency pair")
	// ErrInvalidTrade is matched by every *InvalidTradeError.
	ErrInvalidTrade = errors.New("invalid trade")
)

// InvalidPairError reports a (base, counter) combination that cannot form a CurrencyPair.
type InvalidPairError struct {
	Base    string
	Counter string
	Reason  string
}

func (e *InvalidPairError) Error() string {
	return fmt.Sprintf("invalid currency pair %q/%q: %s", e.Base, e.Counter, e.Reason)
}

func (e *InvalidPairError) Is(target error) bool {
	return target == ErrInvalidPair
}

// InvalidTradeError reports a trade that failed validation when it was finalized.
type InvalidTradeError struct {
	Field  string
	Reason string
}

func (e *InvalidTradeError) Error() string {
	return fmt.Sprintf("invalid trade: %s %s", e.Field, e.Reason)
}

func (e *InvalidTradeError) Is(target error) bool {
	return target == ErrInvalidTrade
}
