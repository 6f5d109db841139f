// Package venues builds the venue services enabled in the configuration.
package venues

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"marketdata/internal/config"
	"marketdata/internal/logger"
	"marketdata/internal/marketdata"
	"marketdata/internal/restclient"
	"marketdata/internal/venues/binance"
	"marketdata/internal/venues/campbx"
	"marketdata/internal/venues/mtgox"
)

// NewService creates the service of one configured venue.
func NewService(name string, cfg config.Venue, log *zap.Logger) (marketdata.Service, error) {
	venueLog := logger.ForVenue(log, name)

	switch name {
	case campbx.VenueName:
		if cfg.BaseURL == "" {
			cfg.BaseURL = campbx.DefaultBaseURL
		}
		return campbx.NewService(restclient.NewRestClient(name, cfg, venueLog), venueLog), nil
	case mtgox.VenueName:
		if cfg.BaseURL == "" {
			cfg.BaseURL = mtgox.DefaultBaseURL
		}
		return mtgox.NewService(restclient.NewRestClient(name, cfg, venueLog), venueLog), nil
	case binance.VenueName:
		symbols, err := marketdata.ParseSymbolSet(cfg.Symbols)
		if err != nil {
			return nil, fmt.Errorf("venues.%s.symbols: %w", name, err)
		}
		return binance.NewService(binance.NewClient(cfg), symbols, venueLog), nil
	default:
		return nil, fmt.Errorf("unknown venue %q", name)
	}
}

// NewRegistry registers a service for every enabled venue in cfg.
func NewRegistry(cfg config.Config, log *zap.Logger) (*marketdata.Registry, error) {
	names := cfg.EnabledVenues()
	sort.Strings(names)

	registry, err := marketdata.NewRegistry()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		svc, err := NewService(name, cfg.Venues[name], log)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(svc); err != nil {
			return nil, err
		}
		log.Info("Venue enabled", zap.String("venue", name), zap.Int("symbols", len(svc.GetExchangeSymbols())))
	}
	return registry, nil
}
