package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"tradejournal/internal/analytics"
	"tradejournal/internal/app"
	"tradejournal/internal/autocalc"
	"tradejournal/internal/domain"
	"tradejournal/internal/ports"
	"tradejournal/internal/position"
)

// Journal is the part of the journal service the API serves.
type Journal interface {
	Trades() []*domain.Trade
	Trade(id string) (*domain.Trade, error)
	CreateTrade(ctx context.Context, trade *domain.Trade) (*domain.Trade, error)
	UpdateTrade(ctx context.Context, id string, patch domain.TradePatch) (*domain.Trade, error)
	DeleteTrade(ctx context.Context, id string) error
	AddCloseEvent(ctx context.Context, id string, ev domain.CloseEvent) (*domain.Trade, error)
	CloseTrade(ctx context.Context, id string, fc domain.FinalClose) (*domain.Trade, error)

	OpenTrades() []position.OpenTradeView
	ClosedTrades() []position.ClosedTradeView
	HistoryTotal() float64
	Summary(groupBy domain.GroupBy) map[string]float64
	WinLoss() map[string]analytics.DayStats
	ClosedOnDay(dayKey string) []analytics.DayItem
	Stats(ctx context.Context) (*analytics.PerformanceMetrics, error)

	Capital(ctx context.Context) (app.CapitalReport, error)
	SetCapital(ctx context.Context, capital string) error

	CustomFieldNames(ctx context.Context) (domain.CustomFieldNames, error)
	AddCustomField(ctx context.Context, kind domain.FieldKind, name string) error
	RemoveCustomField(ctx context.Context, kind domain.FieldKind, name string) error

	Strategies(ctx context.Context) ([]*domain.Strategy, error)
	CreateStrategy(ctx context.Context, strategy *domain.Strategy) (*domain.Strategy, error)
	StrategyHistory(ctx context.Context, strategyID string) (analytics.StrategyHistory, error)
	RulesFollowed(ctx context.Context, tradeID string) (float64, bool, error)

	PreviewResult(in autocalc.Inputs) (string, bool)
}

// Handler handles journal HTTP requests
type Handler struct {
	journal Journal
	log     zerolog.Logger
}

// NewHandler creates a new journal handler
func NewHandler(journal Journal, log zerolog.Logger) *Handler {
	return &Handler{
		journal: journal,
		log:     log.With().Str("handler", "journal").Logger(),
	}
}

// RegisterRoutes registers the journal routes under the given router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/trades", func(r chi.Router) {
		r.Get("/", h.HandleListTrades)
		r.Post("/", h.HandleCreateTrade)
		r.Get("/open", h.HandleOpenTrades)
		r.Get("/closed", h.HandleClosedTrades)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGetTrade)
			r.Patch("/", h.HandleUpdateTrade)
			r.Delete("/", h.HandleDeleteTrade)
			r.Post("/close-events", h.HandleAddCloseEvent)
			r.Post("/close", h.HandleCloseTrade)
			r.Get("/rules-followed", h.HandleRulesFollowed)
		})
	})

	r.Get("/summary", h.HandleSummary)
	r.Get("/calendar/winloss", h.HandleWinLoss)
	r.Get("/calendar/days/{day}", h.HandleDay)
	r.Get("/stats", h.HandleStats)

	r.Get("/capital", h.HandleGetCapital)
	r.Put("/capital", h.HandleSetCapital)

	r.Get("/custom-fields", h.HandleGetCustomFields)
	r.Post("/custom-fields", h.HandleAddCustomField)
	r.Delete("/custom-fields/{kind}/{name}", h.HandleRemoveCustomField)

	r.Get("/strategies", h.HandleListStrategies)
	r.Post("/strategies", h.HandleCreateStrategy)
	r.Get("/strategies/{id}/history", h.HandleStrategyHistory)

	r.Post("/autocalc", h.HandleAutoCalc)
}

// HandleHealth reports liveness
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Trades ---

// HandleListTrades returns every trade
func (h *Handler) HandleListTrades(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.journal.Trades())
}

// HandleOpenTrades returns open trades with remaining quantities
func (h *Handler) HandleOpenTrades(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.journal.OpenTrades())
}

// HandleClosedTrades returns the closed history, most recent first, and its total
func (h *Handler) HandleClosedTrades(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"trades": h.journal.ClosedTrades(),
		"total":  h.journal.HistoryTotal(),
	})
}

// HandleGetTrade returns one trade
func (h *Handler) HandleGetTrade(w http.ResponseWriter, r *http.Request) {
	t, err := h.journal.Trade(chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, t)
}

// HandleCreateTrade records a new trade
func (h *Handler) HandleCreateTrade(w http.ResponseWriter, r *http.Request) {
	var t domain.Trade
	if !h.decode(w, r, &t) {
		return
	}
	created, err := h.journal.CreateTrade(r.Context(), &t)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

// HandleUpdateTrade applies a partial update
func (h *Handler) HandleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	var patch domain.TradePatch
	if !h.decode(w, r, &patch) {
		return
	}
	updated, err := h.journal.UpdateTrade(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

// HandleDeleteTrade removes a trade
func (h *Handler) HandleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	if err := h.journal.DeleteTrade(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddCloseEvent records a partial close
func (h *Handler) HandleAddCloseEvent(w http.ResponseWriter, r *http.Request) {
	var ev domain.CloseEvent
	if !h.decode(w, r, &ev) {
		return
	}
	updated, err := h.journal.AddCloseEvent(r.Context(), chi.URLParam(r, "id"), ev)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, updated)
}

// HandleCloseTrade fully closes a trade
func (h *Handler) HandleCloseTrade(w http.ResponseWriter, r *http.Request) {
	var fc domain.FinalClose
	if !h.decode(w, r, &fc) {
		return
	}
	updated, err := h.journal.CloseTrade(r.Context(), chi.URLParam(r, "id"), fc)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

// HandleRulesFollowed returns the share of strategy rules the trade applied
func (h *Handler) HandleRulesFollowed(w http.ResponseWriter, r *http.Request) {
	pct, ok, err := h.journal.RulesFollowed(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	resp := map[string]interface{}{"percentage": nil}
	if ok {
		resp["percentage"] = pct
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// --- Aggregates ---

// HandleSummary aggregates realized results by day, month, year or total
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("groupBy")
	if raw == "" {
		raw = string(domain.GroupByDay)
	}
	groupBy, ok := domain.ParseGroupBy(raw)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "groupBy must be one of day, month, year, total")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"groupBy": groupBy,
		"summary": h.journal.Summary(groupBy),
	})
}

// HandleWinLoss returns the per-day win/loss calendar
func (h *Handler) HandleWinLoss(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.journal.WinLoss())
}

// HandleDay lists the closes booked on a DD-MM-YYYY day
func (h *Handler) HandleDay(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.journal.ClosedOnDay(chi.URLParam(r, "day")))
}

// HandleStats returns performance metrics
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.journal.Stats(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// --- Capital ---

// HandleGetCapital returns the capital and the realized share of it
func (h *Handler) HandleGetCapital(w http.ResponseWriter, r *http.Request) {
	report, err := h.journal.Capital(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// HandleSetCapital stores a new capital value
func (h *Handler) HandleSetCapital(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Capital string `json:"capital"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.journal.SetCapital(r.Context(), req.Capital); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.HandleGetCapital(w, r)
}

// --- Custom fields ---

// HandleGetCustomFields returns the registered custom field names
func (h *Handler) HandleGetCustomFields(w http.ResponseWriter, r *http.Request) {
	names, err := h.journal.CustomFieldNames(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, names)
}

// HandleAddCustomField registers a custom field name
func (h *Handler) HandleAddCustomField(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind string `json:"kind"`
		Name string `json:"name"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	kind, ok := domain.ParseFieldKind(req.Kind)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "kind must be open or close")
		return
	}
	if err := h.journal.AddCustomField(r.Context(), kind, req.Name); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.HandleGetCustomFields(w, r)
}

// HandleRemoveCustomField unregisters a custom field name
func (h *Handler) HandleRemoveCustomField(w http.ResponseWriter, r *http.Request) {
	kind, ok := domain.ParseFieldKind(chi.URLParam(r, "kind"))
	if !ok {
		h.writeError(w, http.StatusBadRequest, "kind must be open or close")
		return
	}
	if err := h.journal.RemoveCustomField(r.Context(), kind, chi.URLParam(r, "name")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Strategies ---

// HandleListStrategies returns all strategies
func (h *Handler) HandleListStrategies(w http.ResponseWriter, r *http.Request) {
	strategies, err := h.journal.Strategies(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, strategies)
}

// HandleCreateStrategy stores a new strategy
func (h *Handler) HandleCreateStrategy(w http.ResponseWriter, r *http.Request) {
	var s domain.Strategy
	if !h.decode(w, r, &s) {
		return
	}
	created, err := h.journal.CreateStrategy(r.Context(), &s)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

// HandleStrategyHistory returns the closed trades of a strategy
func (h *Handler) HandleStrategyHistory(w http.ResponseWriter, r *http.Request) {
	hist, err := h.journal.StrategyHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, hist)
}

// --- Auto calculation ---

// HandleAutoCalc computes the result for the posted form values
func (h *Handler) HandleAutoCalc(w http.ResponseWriter, r *http.Request) {
	var in autocalc.Inputs
	if !h.decode(w, r, &in) {
		return
	}
	result, ok := h.journal.PreviewResult(in)
	resp := map[string]interface{}{"result": nil}
	if ok {
		resp["result"] = result
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// writeServiceError maps service errors onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, ports.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ports.ErrDuplicateEntry):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ports.ErrInvalidRequest):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ports.ErrTimeout):
		h.log.Warn().Err(err).Msg("Journal request timed out")
		h.writeError(w, http.StatusGatewayTimeout, "request timed out")
	case errors.Is(err, ports.ErrContextCanceled):
		h.writeError(w, http.StatusServiceUnavailable, "request canceled")
	default:
		h.log.Error().Err(err).Msg("Journal request failed")
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
