package marketdata

import (
	"errors"

	"go.uber.org/zap"

	"marketdata/internal/models"
)

// AdaptPair builds the pair an adapter attaches to its output. A failure here means the
// adapter was handed symbols the service should have rejected.
func AdaptPair(venue, base, counter string) (models.CurrencyPair, error) {
	pair, err := models.NewCurrencyPair(base, counter)
	if err != nil {
		return models.CurrencyPair{}, NewAdapterError(venue, "cannot build currency pair", err)
	}
	return pair, nil
}

// WarnIfUnavailable logs a venue-reported error at warning level and returns err as is.
func WarnIfUnavailable(logger *zap.Logger, pair models.CurrencyPair, err error) error {
	var venueErr *VenueError
	if errors.As(err, &venueErr) {
		logger.Warn("Venue reported an error",
			zap.String("venue", venueErr.Venue),
			zap.String("operation", venueErr.Operation),
			zap.String("pair", pair.String()),
			zap.String("venue_message", venueErr.Message),
		)
	}
	return err
}
