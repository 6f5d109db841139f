package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"marketdata/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// Store persists canonical market data through gorm.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an opened, migrated database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// PairStat counts the stored public trades of one venue and pair.
type PairStat struct {
	Venue      string    `json:"venue"`
	Pair       string    `json:"pair"`
	TradeCount int64     `json:"trade_count"`
	FirstTrade time.Time `json:"first_trade"`
	LastTrade  time.Time `json:"last_trade"`
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func optionalTime(ts time.Time) *time.Time {
	if ts.IsZero() {
		return nil
	}
	utc := ts.UTC()
	return &utc
}

func tradeRecord(venue, category string, t models.Trade) TradeRecord {
	pair := t.CurrencyPair()
	return TradeRecord{
		Venue:     venue,
		Category:  category,
		TradeID:   optionalID(t.ID()),
		Base:      pair.Base().String(),
		Counter:   pair.Counter().String(),
		OrderType: t.Type().String(),
		Amount:    t.OriginalAmount(),
		Price:     t.Price(),
		Timestamp: optionalTime(t.Timestamp()),
	}
}

// SaveTrades stores public trades and returns how many were new. Trades already stored
// under the same venue, pair and ID are skipped.
func (s *Store) SaveTrades(ctx context.Context, venue string, trades []models.Trade) (int64, error) {
	if len(trades) == 0 {
		return 0, nil
	}
	records := make([]TradeRecord, 0, len(trades))
	for _, t := range trades {
		records = append(records, tradeRecord(venue, CategoryTrade, t))
	}
	return s.insertIgnoringDuplicates(ctx, records)
}

// SaveUserTrades stores the account's own trades, fee and order included.
func (s *Store) SaveUserTrades(ctx context.Context, venue string, trades []models.UserTrade) (int64, error) {
	if len(trades) == 0 {
		return 0, nil
	}
	records := make([]TradeRecord, 0, len(trades))
	for _, t := range trades {
		r := tradeRecord(venue, CategoryUserTrade, t.Trade)
		r.OrderID = t.OrderID()
		if fee := t.Fee(); fee != nil {
			r.FeeAmount.Decimal, r.FeeAmount.Valid = fee.Amount, true
			r.FeeCurrency = fee.Currency.String()
		}
		records = append(records, r)
	}
	return s.insertIgnoringDuplicates(ctx, records)
}

func (s *Store) insertIgnoringDuplicates(ctx context.Context, records []TradeRecord) (int64, error) {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&records)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to save trades: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ListTrades returns up to limit of the most recent public trades, oldest first.
// A non-positive limit returns all of them.
func (s *Store) ListTrades(ctx context.Context, venue string, pair models.CurrencyPair, limit int) (models.Trades, error) {
	var records []TradeRecord
	q := s.db.WithContext(ctx).
		Where("venue = ? AND trade_category = ? AND base = ? AND counter = ?",
			venue, CategoryTrade, pair.Base().String(), pair.Counter().String()).
		Order("timestamp DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return models.Trades{}, fmt.Errorf("failed to list trades: %w", err)
	}

	trades := make([]models.Trade, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		t, err := records[i].toTrade()
		if err != nil {
			return models.Trades{}, err
		}
		trades = append(trades, t)
	}
	return models.NewTrades(trades), nil
}

// ListUserTrades returns the stored user trades of a pair, oldest first.
func (s *Store) ListUserTrades(ctx context.Context, venue string, pair models.CurrencyPair) ([]models.UserTrade, error) {
	var records []TradeRecord
	err := s.db.WithContext(ctx).
		Where("venue = ? AND trade_category = ? AND base = ? AND counter = ?",
			venue, CategoryUserTrade, pair.Base().String(), pair.Counter().String()).
		Order("timestamp ASC").Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user trades: %w", err)
	}

	out := make([]models.UserTrade, 0, len(records))
	for _, r := range records {
		t, err := r.toUserTrade()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// CountTrades returns the number of stored public trades for a venue and pair.
func (s *Store) CountTrades(ctx context.Context, venue string, pair models.CurrencyPair) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&TradeRecord{}).
		Where("venue = ? AND trade_category = ? AND base = ? AND counter = ?",
			venue, CategoryTrade, pair.Base().String(), pair.Counter().String()).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return count, nil
}

// Stats summarises the stored public trades per venue and pair.
func (s *Store) Stats(ctx context.Context) ([]PairStat, error) {
	var rows []struct {
		Venue   string
		Base    string
		Counter string
		Count   int64
	}
	err := s.db.WithContext(ctx).Model(&TradeRecord{}).
		Select("venue, base, counter, COUNT(*) AS count").
		Where("trade_category = ?", CategoryTrade).
		Group("venue, base, counter").
		Order("venue, base, counter").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	stats := make([]PairStat, 0, len(rows))
	for _, row := range rows {
		stat := PairStat{Venue: row.Venue, Pair: row.Base + "/" + row.Counter, TradeCount: row.Count}

		var first, last TradeRecord
		base := s.db.WithContext(ctx).
			Where("venue = ? AND trade_category = ? AND base = ? AND counter = ? AND timestamp IS NOT NULL",
				row.Venue, CategoryTrade, row.Base, row.Counter)
		if err := base.Session(&gorm.Session{}).Order("timestamp ASC").Limit(1).Find(&first).Error; err != nil {
			return nil, fmt.Errorf("failed to compute stats: %w", err)
		}
		if err := base.Session(&gorm.Session{}).Order("timestamp DESC").Limit(1).Find(&last).Error; err != nil {
			return nil, fmt.Errorf("failed to compute stats: %w", err)
		}
		if first.Timestamp != nil {
			stat.FirstTrade = first.Timestamp.UTC()
		}
		if last.Timestamp != nil {
			stat.LastTrade = last.Timestamp.UTC()
		}
		stats = append(stats, stat)
	}
	return stats, nil
}

// SaveTicker stores a ticker snapshot.
func (s *Store) SaveTicker(ctx context.Context, venue string, t models.Ticker) error {
	record := TickerRecord{
		Venue:     venue,
		Base:      t.CurrencyPair.Base().String(),
		Counter:   t.CurrencyPair.Counter().String(),
		Last:      t.Last,
		Bid:       t.Bid,
		Ask:       t.Ask,
		High:      t.High,
		Low:       t.Low,
		Volume:    t.Volume,
		Timestamp: optionalTime(t.Timestamp),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to save ticker: %w", err)
	}
	return nil
}

// LatestTicker returns the most recently stored ticker for a venue and pair.
func (s *Store) LatestTicker(ctx context.Context, venue string, pair models.CurrencyPair) (models.Ticker, error) {
	var record TickerRecord
	err := s.db.WithContext(ctx).
		Where("venue = ? AND base = ? AND counter = ?", venue, pair.Base().String(), pair.Counter().String()).
		Order("id DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Ticker{}, ErrNotFound
	}
	if err != nil {
		return models.Ticker{}, fmt.Errorf("failed to load ticker: %w", err)
	}

	b := models.NewTickerBuilder().
		CurrencyPair(pair).
		Last(record.Last).
		Bid(record.Bid).
		Ask(record.Ask).
		High(record.High).
		Low(record.Low).
		Volume(record.Volume)
	if record.Timestamp != nil {
		b.Timestamp(record.Timestamp.UTC())
	}
	return b.Build()
}

func (r TradeRecord) builder() (*models.TradeBuilder, error) {
	pair, err := models.NewCurrencyPair(r.Base, r.Counter)
	if err != nil {
		return nil, fmt.Errorf("stored trade %d: %w", r.ID, err)
	}
	side, err := models.ParseOrderType(r.OrderType)
	if err != nil {
		return nil, fmt.Errorf("stored trade %d: %w", r.ID, err)
	}

	b := models.NewTradeBuilder().
		Type(side).
		OriginalAmount(r.Amount).
		CurrencyPair(pair).
		Price(r.Price)
	if r.TradeID != nil {
		b.ID(*r.TradeID)
	}
	if r.Timestamp != nil {
		b.Timestamp(r.Timestamp.UTC())
	}
	return b, nil
}

func (r TradeRecord) toTrade() (models.Trade, error) {
	b, err := r.builder()
	if err != nil {
		return models.Trade{}, err
	}
	return b.Build()
}

func (r TradeRecord) toUserTrade() (models.UserTrade, error) {
	b, err := r.builder()
	if err != nil {
		return models.UserTrade{}, err
	}
	trade, err := b.Build()
	if err != nil {
		return models.UserTrade{}, err
	}

	ub := models.UserTradeBuilderFrom(models.UserTrade{Trade: trade}).OrderID(r.OrderID)
	if r.FeeAmount.Valid {
		ub.Fee(r.FeeAmount.Decimal, models.Currency(r.FeeCurrency))
	}
	return ub.Build()
}
