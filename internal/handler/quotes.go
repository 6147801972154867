package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mpoksari/catering-api/internal/checkout"
	"github.com/mpoksari/catering-api/internal/pricing"
)

// QuoteHandler prices anonymous requests with the standard tiers.
type QuoteHandler struct {
	engine *pricing.Engine
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(engine *pricing.Engine) *QuoteHandler {
	return &QuoteHandler{engine: engine}
}

// RegisterRoutes registers quote endpoints on the given Chi router.
func (h *QuoteHandler) RegisterRoutes(r chi.Router) {
	r.Post("/quotes/simple", h.Simple)
	r.Post("/quotes/build", h.Build)
	r.Post("/build/adjust", h.Adjust)
}

// --- Request / Response types ---

type simpleQuoteRequest struct {
	EntryID string `json:"entry_id"`
	Pax     int    `json:"pax"`
}

type buildQuoteRequest struct {
	Selection pricing.Selection `json:"selection"`
	Pax       int               `json:"pax"`
}

type adjustRequest struct {
	Selection pricing.Selection `json:"selection"`
	EntryID   string            `json:"entry_id"`
	Delta     int               `json:"delta"`
}

type quoteResponse struct {
	Quote        *pricing.Result `json:"quote"`
	Summary      string          `json:"summary"`
	ItemsSummary string          `json:"items_summary"`
}

type adjustResponse struct {
	Selection pricing.Selection `json:"selection"`
	Notice    pricing.Notice    `json:"notice"`
}

func toQuoteResponse(res *pricing.Result) quoteResponse {
	return quoteResponse{
		Quote:        res,
		Summary:      checkout.Summary(res),
		ItemsSummary: checkout.ItemsSummary(res),
	}
}

// --- Handlers ---

// Simple prices one packaged menu entry.
func (h *QuoteHandler) Simple(w http.ResponseWriter, r *http.Request) {
	var req simpleQuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.EntryID == "" {
		writeError(w, http.StatusBadRequest, "entry_id is required")
		return
	}

	res, err := h.engine.QuoteSimple(req.EntryID, req.Pax)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteResponse(res))
}

// Build prices a build-your-own selection.
func (h *QuoteHandler) Build(w http.ResponseWriter, r *http.Request) {
	var req buildQuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.engine.QuoteBuild(req.Selection, req.Pax)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteResponse(res))
}

// Adjust applies a quantity change to a selection and returns the new
// selection with a notice. A refused change is still a 200.
func (h *QuoteHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Delta < -pricing.MaxPax || req.Delta > pricing.MaxPax {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("delta must be within ±%d", pricing.MaxPax))
		return
	}
	for id, qty := range req.Selection {
		if qty < 0 || qty > pricing.MaxPax {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid quantity for %s", id))
			return
		}
	}
	if req.Selection == nil {
		req.Selection = pricing.Selection{}
	}

	sel, notice, err := h.engine.Adjust(req.Selection, req.EntryID, req.Delta)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, adjustResponse{Selection: sel, Notice: notice})
}
