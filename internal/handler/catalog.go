package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mpoksari/catering-api/internal/catalog"
	"github.com/mpoksari/catering-api/internal/enum"
	"github.com/mpoksari/catering-api/internal/loyalty"
)

// CatalogHandler serves the read-only menu and ingredient tables.
type CatalogHandler struct {
	idx *catalog.Index
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(idx *catalog.Index) *CatalogHandler {
	return &CatalogHandler{idx: idx}
}

// RegisterRoutes registers catalog endpoints on the given Chi router.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/catalog/categories", h.Categories)
	r.Get("/catalog/items", h.List)
	r.Get("/catalog/items/{id}", h.Get)
	r.Get("/build/items", h.BuildItems)
	r.Get("/rewards", h.Rewards)
}

type categoryResponse struct {
	Category enum.Category `json:"category"`
	Count    int           `json:"count"`
}

// Categories returns the categories that have at least one entry.
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats := h.idx.ListCategories()
	resp := make([]categoryResponse, len(cats))
	for i, c := range cats {
		resp[i] = categoryResponse{Category: c, Count: len(h.idx.ListByCategory(c))}
	}
	writeJSON(w, http.StatusOK, resp)
}

// List returns catalog entries, optionally narrowed by ?category=.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	c := enum.Category(r.URL.Query().Get("category"))
	if c == "" {
		writeJSON(w, http.StatusOK, h.idx.All())
		return
	}
	if !c.Valid() {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}
	writeJSON(w, http.StatusOK, h.idx.ListByCategory(c))
}

// Get returns a single entry.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.idx.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// BuildItems returns the entries usable in the build-your-own tool.
func (h *CatalogHandler) BuildItems(w http.ResponseWriter, r *http.Request) {
	out := []catalog.Entry{}
	for _, e := range h.idx.All() {
		if e.PricingMode == enum.PricingPerUnit {
			out = append(out, e)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// Rewards returns the points redemption catalogue.
func (h *CatalogHandler) Rewards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, loyalty.Rewards)
}
