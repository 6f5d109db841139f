package database

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Trade categories stored in the trade_category column.
const (
	CategoryTrade     = "TRADE"
	CategoryUserTrade = "USER_TRADE"
)

// TradeRecord is the stored form of a public or user trade. Both share one table and
// are told apart by Category. Decimals are kept as text so no precision is lost.
type TradeRecord struct {
	gorm.Model
	Venue       string              `gorm:"not null;uniqueIndex:idx_trade_identity"`
	Category    string              `gorm:"column:trade_category;not null;uniqueIndex:idx_trade_identity"`
	TradeID     *string             `gorm:"uniqueIndex:idx_trade_identity"` // NULL when the venue gives no ID
	Base        string              `gorm:"not null;uniqueIndex:idx_trade_identity"`
	Counter     string              `gorm:"not null;uniqueIndex:idx_trade_identity"`
	OrderType   string              `gorm:"not null"`
	Amount      decimal.Decimal     `gorm:"type:text;not null"`
	Price       decimal.Decimal     `gorm:"type:text;not null"`
	Timestamp   *time.Time          `gorm:"index"`
	OrderID     string
	FeeAmount   decimal.NullDecimal `gorm:"type:text"`
	FeeCurrency string
}

func (TradeRecord) TableName() string { return "trades" }

// TickerRecord is one ticker snapshot.
type TickerRecord struct {
	gorm.Model
	Venue     string          `gorm:"not null;index:idx_ticker_pair"`
	Base      string          `gorm:"not null;index:idx_ticker_pair"`
	Counter   string          `gorm:"not null;index:idx_ticker_pair"`
	Last      decimal.Decimal `gorm:"type:text;not null"`
	Bid       decimal.Decimal `gorm:"type:text;not null"`
	Ask       decimal.Decimal `gorm:"type:text;not null"`
	High      decimal.Decimal `gorm:"type:text"`
	Low       decimal.Decimal `gorm:"type:text"`
	Volume    decimal.Decimal `gorm:"type:text"`
	Timestamp *time.Time
}

func (TickerRecord) TableName() string { return "tickers" }
