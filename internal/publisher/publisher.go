// Package publisher forwards polled market data to downstream consumers.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"marketdata/internal/config"
	"marketdata/internal/models"
)

// Publisher receives every new trade and ticker the poller collects.
type Publisher interface {
	PublishTrades(ctx context.Context, venue string, trades []models.Trade) error
	PublishTicker(ctx context.Context, venue string, ticker models.Ticker) error
	Close() error
}

// TradeMessage is the JSON value of a trade message. Decimals are encoded as strings.
type TradeMessage struct {
	Venue     string          `json:"venue"`
	Pair      string          `json:"pair"`
	ID        string          `json:"id,omitempty"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Price     decimal.Decimal `json:"price"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`
}

// TickerMessage is the JSON value of a ticker message.
type TickerMessage struct {
	Venue     string          `json:"venue"`
	Pair      string          `json:"pair"`
	Last      decimal.Decimal `json:"last"`
	Bid       decimal.Decimal `json:"bid"`
	Ask       decimal.Decimal `json:"ask"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Volume    decimal.Decimal `json:"volume"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`
}

// MessageWriter is the subset of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes trades and tickers to two Kafka topics, keyed by venue and pair
// so each pair stays ordered within its partition.
type KafkaPublisher struct {
	writer       MessageWriter
	tradesTopic  string
	tickersTopic string
	logger       *zap.Logger
}

var _ Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher writing to the configured brokers.
func NewKafkaPublisher(cfg config.Publisher, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	return newKafkaPublisher(writer, cfg.TradesTopic, cfg.TickersTopic, logger)
}

func newKafkaPublisher(writer MessageWriter, tradesTopic, tickersTopic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer:       writer,
		tradesTopic:  tradesTopic,
		tickersTopic: tickersTopic,
		logger:       logger,
	}
}

// MessageKey is the partition key of a venue's pair.
func MessageKey(venue string, pair models.CurrencyPair) []byte {
	return []byte(venue + ":" + pair.String())
}

func optionalTime(ts time.Time) *time.Time {
	if ts.IsZero() {
		return nil
	}
	return &ts
}

// NewTradeMessage builds the message value of a trade.
func NewTradeMessage(venue string, t models.Trade) TradeMessage {
	return TradeMessage{
		Venue:     venue,
		Pair:      t.CurrencyPair().String(),
		ID:        t.ID(),
		Type:      t.Type().String(),
		Amount:    t.OriginalAmount(),
		Price:     t.Price(),
		Timestamp: optionalTime(t.Timestamp()),
	}
}

// NewTickerMessage builds the message value of a ticker.
func NewTickerMessage(venue string, t models.Ticker) TickerMessage {
	return TickerMessage{
		Venue:     venue,
		Pair:      t.CurrencyPair.String(),
		Last:      t.Last,
		Bid:       t.Bid,
		Ask:       t.Ask,
		High:      t.High,
		Low:       t.Low,
		Volume:    t.Volume,
		Timestamp: optionalTime(t.Timestamp),
	}
}

func (p *KafkaPublisher) PublishTrades(ctx context.Context, venue string, trades []models.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(trades))
	for _, t := range trades {
		payload, err := json.Marshal(NewTradeMessage(venue, t))
		if err != nil {
			return fmt.Errorf("failed to encode trade %s: %w", t.ID(), err)
		}
		msgs = append(msgs, kafka.Message{
			Topic: p.tradesTopic,
			Key:   MessageKey(venue, t.CurrencyPair()),
			Value: payload,
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.logger.Error("Failed to publish trades", zap.String("venue", venue), zap.Int("count", len(msgs)), zap.Error(err))
		return fmt.Errorf("failed to publish trades: %w", err)
	}
	p.logger.Debug("Published trades", zap.String("venue", venue), zap.Int("count", len(msgs)))
	return nil
}

func (p *KafkaPublisher) PublishTicker(ctx context.Context, venue string, ticker models.Ticker) error {
	payload, err := json.Marshal(NewTickerMessage(venue, ticker))
	if err != nil {
		return fmt.Errorf("failed to encode ticker: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.tickersTopic,
		Key:   MessageKey(venue, ticker.CurrencyPair),
		Value: payload,
	})
	if err != nil {
		p.logger.Error("Failed to publish ticker", zap.String("venue", venue), zap.Error(err))
		return fmt.Errorf("failed to publish ticker: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards everything. It is used when publishing is disabled.
type NopPublisher struct{}

var _ Publisher = NopPublisher{}

func (NopPublisher) PublishTrades(context.Context, string, []models.Trade) error { return nil }
func (NopPublisher) PublishTicker(context.Context, string, models.Ticker) error  { return nil }
func (NopPublisher) Close() error                                               { return nil }

// New returns a KafkaPublisher when publishing is enabled and a NopPublisher otherwise.
func New(cfg config.Publisher, logger *zap.Logger) Publisher {
	if !cfg.Enabled {
		return NopPublisher{}
	}
	return NewKafkaPublisher(cfg, logger)
}
