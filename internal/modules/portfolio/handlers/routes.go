package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all portfolio routes.
// POST /portfolio/log-entry belongs to the trade log handler.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/portfolio", h.HandleListPortfolios)
	r.Post("/portfolio", h.HandleCreatePortfolio)
	r.Get("/portfolio/{id}/allocation", h.HandleGetAllocation)
}
