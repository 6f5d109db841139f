// Package poller drives the venue services on an interval and hands their results to
// the store and the publisher.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"marketdata/internal/config"
	"marketdata/internal/marketdata"
	"marketdata/internal/models"
	"marketdata/internal/publisher"
)

const engineName = "marketdata-poller"

// NewCollector returns the collector registered under name.
func NewCollector(name string) (Collector, error) {
	switch name {
	case "trades":
		return NewTradesCollector(), nil
	case "ticker":
		return NewTickerCollector(), nil
	case "user_trades":
		return NewUserTradesCollector(), nil
	default:
		return nil, fmt.Errorf("unknown collector %q", name)
	}
}

// TargetsFor lists every pair of every registered venue, ordered by venue and then pair.
func TargetsFor(registry *marketdata.Registry) []Target {
	var targets []Target
	for _, venue := range registry.Venues() {
		svc, _ := registry.Get(venue)
		pairs := append([]models.CurrencyPair(nil), svc.GetExchangeSymbols()...)
		models.SortPairs(pairs)
		for _, pair := range pairs {
			targets = append(targets, Target{Venue: venue, Pair: pair})
		}
	}
	return targets
}

// Engine is the polling loop. Each cycle runs every collector once over all targets.
type Engine struct {
	UUID      string
	Name      string
	StartTime time.Time

	logger     *zap.Logger
	interval   time.Duration
	collectors []Collector
	cc         CollectorContext

	mu        sync.RWMutex
	lastCycle time.Time
}

// NewEngine creates an engine polling every venue in registry with the collectors named
// in cfg.
func NewEngine(logger *zap.Logger, cfg config.Poller, registry *marketdata.Registry, store Store, pub publisher.Publisher) (*Engine, error) {
	collectors := make([]Collector, 0, len(cfg.Collectors))
	for _, name := range cfg.Collectors {
		c, err := NewCollector(name)
		if err != nil {
			return nil, err
		}
		collectors = append(collectors, c)
	}
	if len(collectors) == 0 {
		return nil, fmt.Errorf("no collectors configured")
	}

	return &Engine{
		UUID:       uuid.NewString(),
		Name:       engineName,
		StartTime:  time.Now().UTC(),
		logger:     logger,
		interval:   time.Duration(cfg.TickInterval) * time.Second,
		collectors: collectors,
		cc: CollectorContext{
			Logger:       logger,
			Registry:     registry,
			Targets:      TargetsFor(registry),
			Store:        store,
			Publisher:    pub,
			Capabilities: NewCapabilities(),
			Stats:        &Stats{},
			TradesLimit:  cfg.TradesLimit,
		},
	}, nil
}

// Run initializes the collectors, runs a first cycle straight away and then one per
// interval until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("Initializing polling engine...",
		zap.String("uuid", e.UUID),
		zap.Int("targets", len(e.cc.Targets)))
	for _, c := range e.collectors {
		if err := c.Initialize(ctx, e.cc); err != nil {
			return fmt.Errorf("failed to initialize collector %s: %w", c.Name(), err)
		}
	}
	e.logger.Info("Engine initialized successfully.")

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.logger.Info("Starting polling loop", zap.Duration("interval", e.interval))
	e.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Stopping polling engine...")
			return nil
		case <-ticker.C:
			e.RunCycle(ctx)
		}
	}
}

// RunCycle runs every collector once.
func (e *Engine) RunCycle(ctx context.Context) {
	for _, c := range e.collectors {
		if ctx.Err() != nil {
			return
		}
		if err := c.Collect(ctx, e.cc); err != nil {
			e.logger.Error("Collection cycle had failures", zap.String("collector", c.Name()), zap.Error(err))
		}
	}

	e.cc.Stats.Cycles.Add(1)
	e.mu.Lock()
	e.lastCycle = time.Now().UTC()
	e.mu.Unlock()
}

// EngineStatus is what the status endpoint reports.
type EngineStatus struct {
	UUID       string        `json:"uuid"`
	Name       string        `json:"name"`
	Collectors []string      `json:"collectors"`
	Targets    int           `json:"targets"`
	StartTime  string        `json:"start_time"`
	Uptime     string        `json:"uptime"`
	LastCycle  string        `json:"last_cycle,omitempty"`
	Stats      StatsSnapshot `json:"stats"`
}

func (e *Engine) Status() EngineStatus {
	names := make([]string, 0, len(e.collectors))
	for _, c := range e.collectors {
		names = append(names, c.Name())
	}

	status := EngineStatus{
		UUID:       e.UUID,
		Name:       e.Name,
		Collectors: names,
		Targets:    len(e.cc.Targets),
		StartTime:  e.StartTime.Format(time.RFC3339),
		Uptime:     time.Since(e.StartTime).String(),
		Stats:      e.cc.Stats.Snapshot(),
	}

	e.mu.RLock()
	if !e.lastCycle.IsZero() {
		status.LastCycle = e.lastCycle.Format(time.RFC3339)
	}
	e.mu.RUnlock()
	return status
}
