package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"marketdata/internal/database"
	"marketdata/internal/marketdata"
	"marketdata/internal/models"
	"marketdata/internal/publisher"
)

const (
	defaultTradesLimit = 100
	maxTradesLimit     = 1000
)

// TradeStore is the read side of the database the API serves.
type TradeStore interface {
	ListTrades(ctx context.Context, venue string, pair models.CurrencyPair, limit int) (models.Trades, error)
	Stats(ctx context.Context) ([]database.PairStat, error)
	LatestTicker(ctx context.Context, venue string, pair models.CurrencyPair) (models.Ticker, error)
	ListUserTrades(ctx context.Context, venue string, pair models.CurrencyPair) ([]models.UserTrade, error)
}

// UserTradeMessage is a stored fill of the account, as the API returns it.
type UserTradeMessage struct {
	publisher.TradeMessage
	OrderID     string           `json:"order_id,omitempty"`
	FeeAmount   *decimal.Decimal `json:"fee_amount,omitempty"`
	FeeCurrency string           `json:"fee_currency,omitempty"`
}

func newUserTradeMessage(venue string, u models.UserTrade) UserTradeMessage {
	msg := UserTradeMessage{TradeMessage: publisher.NewTradeMessage(venue, u.Trade), OrderID: u.OrderID()}
	if fee := u.Fee(); fee != nil {
		msg.FeeAmount = &fee.Amount
		msg.FeeCurrency = fee.Currency.String()
	}
	return msg
}

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log      *zap.Logger
	store    TradeStore
	registry *marketdata.Registry
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, store TradeStore, registry *marketdata.Registry) *APIHandler {
	return &APIHandler{log: log, store: store, registry: registry}
}

// Routes registers the API endpoints on mux.
func (h *APIHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/trades", h.TradesHandler)
	mux.HandleFunc("/api/user-trades", h.UserTradesHandler)
	mux.HandleFunc("/api/stats", h.StatsHandler)
	mux.HandleFunc("/api/ticker", h.TickerHandler)
	mux.HandleFunc("/api/ticker/latest", h.LatestTickerHandler)
	mux.HandleFunc("/api/symbols", h.SymbolsHandler)
}

// TradesHandler returns the most recent stored trades of a venue and pair.
func (h *APIHandler) TradesHandler(w http.ResponseWriter, r *http.Request) {
	venue, pair, ok := h.venueAndPair(w, r)
	if !ok {
		return
	}

	limit := defaultTradesLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxTradesLimit)
	}

	trades, err := h.store.ListTrades(r.Context(), venue, pair, limit)
	if err != nil {
		h.log.Error("Failed to get trades from database", zap.Error(err))
		http.Error(w, "Failed to get trades", http.StatusInternalServerError)
		return
	}

	out := make([]publisher.TradeMessage, 0, trades.Len())
	for _, t := range trades.Trades {
		out = append(out, publisher.NewTradeMessage(venue, t))
	}
	h.writeJSON(w, http.StatusOK, out)
}

// UserTradesHandler returns the account's stored fills of a venue and pair, oldest first.
func (h *APIHandler) UserTradesHandler(w http.ResponseWriter, r *http.Request) {
	venue, pair, ok := h.venueAndPair(w, r)
	if !ok {
		return
	}

	trades, err := h.store.ListUserTrades(r.Context(), venue, pair)
	if err != nil {
		h.log.Error("Failed to get user trades from database", zap.Error(err))
		http.Error(w, "Failed to get user trades", http.StatusInternalServerError)
		return
	}

	out := make([]UserTradeMessage, 0, len(trades))
	for _, t := range trades {
		out = append(out, newUserTradeMessage(venue, t))
	}
	h.writeJSON(w, http.StatusOK, out)
}

// StatsHandler returns the stored trade counts per venue and pair.
func (h *APIHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		h.log.Error("Failed to get trade statistics", zap.Error(err))
		http.Error(w, "Failed to calculate statistics", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// TickerHandler fetches a live ticker through the venue service.
func (h *APIHandler) TickerHandler(w http.ResponseWriter, r *http.Request) {
	venue := r.URL.Query().Get("venue")
	svc, ok := h.registry.Get(venue)
	if !ok {
		http.Error(w, "unknown venue", http.StatusNotFound)
		return
	}
	base, counter, ok := splitPair(w, r)
	if !ok {
		return
	}

	ticker, err := svc.GetTicker(r.Context(), base, counter)
	if err != nil {
		h.log.Info("Live ticker request failed", zap.String("venue", venue), zap.Error(err))
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	h.writeJSON(w, http.StatusOK, publisher.NewTickerMessage(svc.Venue(), *ticker))
}

// LatestTickerHandler returns the last ticker snapshot the poller stored.
func (h *APIHandler) LatestTickerHandler(w http.ResponseWriter, r *http.Request) {
	venue, pair, ok := h.venueAndPair(w, r)
	if !ok {
		return
	}

	ticker, err := h.store.LatestTicker(r.Context(), venue, pair)
	if errors.Is(err, database.ErrNotFound) {
		http.Error(w, "no ticker stored", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("Failed to get ticker from database", zap.Error(err))
		http.Error(w, "Failed to get ticker", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, publisher.NewTickerMessage(venue, ticker))
}

// SymbolsHandler lists the supported pairs of one venue, or of all of them.
func (h *APIHandler) SymbolsHandler(w http.ResponseWriter, r *http.Request) {
	if venue := r.URL.Query().Get("venue"); venue != "" {
		svc, ok := h.registry.Get(venue)
		if !ok {
			http.Error(w, "unknown venue", http.StatusNotFound)
			return
		}
		h.writeJSON(w, http.StatusOK, pairStrings(svc.GetExchangeSymbols()))
		return
	}

	all := make(map[string][]string)
	for _, name := range h.registry.Venues() {
		svc, _ := h.registry.Get(name)
		all[name] = pairStrings(svc.GetExchangeSymbols())
	}
	h.writeJSON(w, http.StatusOK, all)
}

// statusFor maps the outcome of a live venue call to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, marketdata.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, marketdata.ErrNotSupported):
		return http.StatusNotImplemented
	case marketdata.Outcome(err) == marketdata.ResultUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func (h *APIHandler) venueAndPair(w http.ResponseWriter, r *http.Request) (string, models.CurrencyPair, bool) {
	venue := r.URL.Query().Get("venue")
	if venue == "" {
		http.Error(w, "venue is required", http.StatusBadRequest)
		return "", models.CurrencyPair{}, false
	}
	pair, err := models.ParseCurrencyPair(r.URL.Query().Get("pair"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", models.CurrencyPair{}, false
	}
	return venue, pair, true
}

// splitPair leaves validation of the symbols to the venue service.
func splitPair(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	pair, err := models.ParseCurrencyPair(r.URL.Query().Get("pair"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", "", false
	}
	return pair.Base().String(), pair.Counter().String(), true
}

func pairStrings(pairs []models.CurrencyPair) []string {
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p.String())
	}
	return out
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to write response", zap.Error(err))
	}
}
